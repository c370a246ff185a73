package pset

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

const cfiHeader = "import FWCore.ParameterSet.Config as cms\n"

// Serialize renders the module in its canonical _cfi.py form.
func (m *Module) Serialize() []byte {
	var b bytes.Buffer
	b.WriteString(cfiHeader)
	b.WriteString("\n")
	b.WriteString(m.label)
	b.WriteString(" = cms.")
	b.WriteString(string(m.kind))
	b.WriteString("(")
	b.WriteString(quote(m.typ))
	// the type argument is followed by a comma, so every parameter line starts with one
	for _, p := range m.params {
		b.WriteString(",\n    ")
		b.WriteString(p.Name)
		b.WriteString(" = ")
		b.WriteString(literal(p))
	}
	if len(m.params) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(")\n")
	return b.Bytes()
}

func literal(p Param) string {
	ctor := "cms."
	if p.Untracked {
		ctor += "untracked."
	}
	return ctor + string(p.Value.Kind()) + "(" + p.Value.args() + ")"
}

// FormatDouble renders f as the shortest decimal that reads back to the same
// float64, always carrying a decimal point or an exponent (1.0, 1.479, 1e-05).
func FormatDouble(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "float('inf')"
	case math.IsInf(f, -1):
		return "float('-inf')"
	case math.IsNaN(f):
		return "float('nan')"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		// two-digit exponent with explicit sign, as in 1e-05 and 1e+16
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		if len(digits) < 2 {
			digits = strings.Repeat("0", 2-len(digits)) + digits
		}
		return mant + "e" + sign + digits
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func quote(s string) string {
	return strconv.Quote(s)
}

// unquote decodes the body of a single- or double-quoted literal, escapes
// included. Both quote characters may appear escaped or bare.
func unquote(body string) (string, error) {
	var b strings.Builder
	b.WriteByte('"')
	escaped := false
	for _, r := range body {
		switch {
		case escaped:
			escaped = false
			if r == '\'' {
				b.WriteRune(r)
				continue
			}
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\\':
			escaped = true
		case r == '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return strconv.Unquote(b.String())
}
