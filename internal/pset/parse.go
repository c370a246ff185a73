package pset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
)

type token struct {
	typ  tokenType
	text string
	line int
	col  int
}

func (t token) String() string {
	if t.typ == tokEOF {
		return "end of input"
	}
	return strconv.Quote(t.text)
}

type lexer struct {
	src  []rune
	pos  int
	line int
	col  int
}

func (l *lexer) errorf(line, col int, format string, args ...any) error {
	return fmt.Errorf("%w: %d:%d: %s", ErrSyntax, line, col, fmt.Sprintf(format, args...))
}

func (l *lexer) peekRune() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		r := l.src[l.pos]
		switch {
		case r == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance()
			}
		case unicode.IsSpace(r) || r == '\\':
			l.advance()
		default:
			return
		}
	}
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	line, col := l.line, l.col
	if l.pos >= len(l.src) {
		return token{typ: tokEOF, line: line, col: col}, nil
	}
	r := l.peekRune()
	switch {
	case r == '_' || unicode.IsLetter(r):
		start := l.pos
		for l.pos < len(l.src) && (l.src[l.pos] == '_' || unicode.IsLetter(l.src[l.pos]) || unicode.IsDigit(l.src[l.pos])) {
			l.advance()
		}
		return token{typ: tokIdent, text: string(l.src[start:l.pos]), line: line, col: col}, nil
	case r == '-' || r == '+' || unicode.IsDigit(r) || (r == '.' && l.pos+1 < len(l.src) && unicode.IsDigit(l.src[l.pos+1])):
		start := l.pos
		l.advance()
		for l.pos < len(l.src) {
			c := l.src[l.pos]
			if unicode.IsDigit(c) || c == '.' || c == 'e' || c == 'E' || c == 'x' || c == 'X' ||
				((c == '-' || c == '+') && (l.src[l.pos-1] == 'e' || l.src[l.pos-1] == 'E')) ||
				(c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
				l.advance()
				continue
			}
			break
		}
		return token{typ: tokNumber, text: string(l.src[start:l.pos]), line: line, col: col}, nil
	case r == '"' || r == '\'':
		quoteRune := l.advance()
		var raw strings.Builder
		for {
			if l.pos >= len(l.src) || l.peekRune() == '\n' {
				return token{}, l.errorf(line, col, "unterminated string")
			}
			c := l.advance()
			if c == quoteRune {
				break
			}
			raw.WriteRune(c)
			if c == '\\' {
				if l.pos >= len(l.src) {
					return token{}, l.errorf(line, col, "unterminated string")
				}
				raw.WriteRune(l.advance())
			}
		}
		text, err := unquote(raw.String())
		if err != nil {
			return token{}, l.errorf(line, col, "invalid string literal: %v", err)
		}
		return token{typ: tokString, text: text, line: line, col: col}, nil
	case strings.ContainsRune("().,=[]", r):
		l.advance()
		return token{typ: tokPunct, text: string(r), line: line, col: col}, nil
	}
	return token{}, l.errorf(line, col, "unexpected character %q", r)
}

type parser struct {
	lex *lexer
	tok token
}

func newParser(data []byte) (*parser, error) {
	p := &parser{lex: &lexer{src: []rune(string(data)), line: 1, col: 1}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return p.lex.errorf(p.tok.line, p.tok.col, format, args...)
}

func (p *parser) isPunct(s string) bool { return p.tok.typ == tokPunct && p.tok.text == s }

func (p *parser) expectPunct(s string) error {
	if !p.isPunct(s) {
		return p.errorf("expected %q, found %s", s, p.tok)
	}
	return p.advance()
}

func (p *parser) expectIdent(want string) (string, error) {
	if p.tok.typ != tokIdent || (want != "" && p.tok.text != want) {
		if want == "" {
			return "", p.errorf("expected identifier, found %s", p.tok)
		}
		return "", p.errorf("expected %q, found %s", want, p.tok)
	}
	s := p.tok.text
	return s, p.advance()
}

func (p *parser) expectString() (string, error) {
	if p.tok.typ != tokString {
		return "", p.errorf("expected string, found %s", p.tok)
	}
	s := p.tok.text
	return s, p.advance()
}

// Parse reads a module declared in _cfi.py form. The import line is optional.
func Parse(data []byte) (*Module, error) {
	p, err := newParser(data)
	if err != nil {
		return nil, err
	}
	if p.tok.typ == tokIdent && p.tok.text == "import" {
		if err := p.skipImport(); err != nil {
			return nil, err
		}
	}
	m, err := p.module()
	if err != nil {
		return nil, err
	}
	if p.tok.typ != tokEOF {
		return nil, p.errorf("unexpected %s after module declaration", p.tok)
	}
	return m, nil
}

// skipImport consumes "import a.b.c as cms".
func (p *parser) skipImport() error {
	if err := p.advance(); err != nil {
		return err
	}
	for {
		if _, err := p.expectIdent(""); err != nil {
			return err
		}
		if !p.isPunct(".") {
			break
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
	if _, err := p.expectIdent("as"); err != nil {
		return err
	}
	_, err := p.expectIdent("cms")
	return err
}

func (p *parser) module() (*Module, error) {
	label, err := p.expectIdent("")
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("="); err != nil {
		return nil, err
	}
	if _, err := p.expectIdent("cms"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("."); err != nil {
		return nil, err
	}
	kind, err := p.expectIdent("")
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	typ, err := p.expectString()
	if err != nil {
		return nil, err
	}
	var params []Param
	for p.isPunct(",") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.isPunct(")") {
			break
		}
		param, err := p.param()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return NewModule(ModuleKind(kind), typ, label, params...), nil
}

func (p *parser) param() (Param, error) {
	name, err := p.expectIdent("")
	if err != nil {
		return Param{}, err
	}
	if err := p.expectPunct("="); err != nil {
		return Param{}, err
	}
	v, untracked, err := p.value()
	if err != nil {
		return Param{}, fmt.Errorf("parameter %s: %w", name, err)
	}
	return Param{Name: name, Value: v, Untracked: untracked}, nil
}

// value parses cms[.untracked].<type>(<args>).
func (p *parser) value() (Value, bool, error) {
	if _, err := p.expectIdent("cms"); err != nil {
		return nil, false, err
	}
	if err := p.expectPunct("."); err != nil {
		return nil, false, err
	}
	typeName, err := p.expectIdent("")
	if err != nil {
		return nil, false, err
	}
	untracked := false
	if typeName == "untracked" {
		untracked = true
		if err := p.expectPunct("."); err != nil {
			return nil, false, err
		}
		if typeName, err = p.expectIdent(""); err != nil {
			return nil, false, err
		}
	}
	kind, err := ParseKind(typeName)
	if err != nil {
		return nil, false, p.errorf("unknown parameter type %q", typeName)
	}
	if err := p.expectPunct("("); err != nil {
		return nil, false, err
	}
	v, err := p.args(kind)
	if err != nil {
		return nil, false, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, false, err
	}
	return v, untracked, nil
}

func (p *parser) args(kind Kind) (Value, error) {
	switch kind {
	case KindBool:
		word, err := p.expectIdent("")
		if err != nil {
			return nil, err
		}
		switch word {
		case "True":
			return Bool(true), nil
		case "False":
			return Bool(false), nil
		}
		return nil, p.errorf("expected True or False, found %q", word)
	case KindInt32:
		n, err := p.integer(32, true)
		return Int32(n), err
	case KindUInt32:
		n, err := p.integer(32, false)
		return UInt32(n), err
	case KindInt64:
		n, err := p.integer(64, true)
		return Int64(n), err
	case KindUInt64:
		n, err := p.integer(64, false)
		return UInt64(n), err
	case KindDouble:
		f, err := p.double()
		return Double(f), err
	case KindString:
		s, err := p.expectString()
		return String(s), err
	case KindVDouble:
		out := VDouble{}
		err := p.list(func() error {
			f, err := p.double()
			out = append(out, f)
			return err
		})
		return out, err
	case KindVInt32:
		out := VInt32{}
		err := p.list(func() error {
			n, err := p.integer(32, true)
			out = append(out, int32(n))
			return err
		})
		return out, err
	case KindVString:
		out := VString{}
		err := p.list(func() error {
			s, err := p.expectString()
			out = append(out, s)
			return err
		})
		return out, err
	case KindInputTag:
		return p.inputTag()
	case KindVInputTag:
		out := VInputTag{}
		err := p.list(func() error {
			if p.tok.typ == tokString {
				s, err := p.expectString()
				out = append(out, splitTag(s))
				return err
			}
			v, _, err := p.value()
			if err != nil {
				return err
			}
			t, ok := v.(InputTag)
			if !ok {
				return p.errorf("VInputTag element must be an InputTag, found %s", v.Kind())
			}
			out = append(out, t)
			return nil
		})
		return out, err
	}
	return nil, p.errorf("unsupported parameter type %s", kind)
}

// list parses a possibly empty, comma separated sequence up to the closing parenthesis.
func (p *parser) list(item func() error) error {
	for !p.isPunct(")") {
		if err := item(); err != nil {
			return err
		}
		if !p.isPunct(",") {
			break
		}
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) inputTag() (Value, error) {
	if p.isPunct(")") {
		return InputTag{}, nil
	}
	first, err := p.expectString()
	if err != nil {
		return nil, err
	}
	if !p.isPunct(",") {
		return splitTag(first), nil
	}
	parts := []string{first}
	for p.isPunct(",") && len(parts) < 3 {
		if err := p.advance(); err != nil {
			return nil, err
		}
		s, err := p.expectString()
		if err != nil {
			return nil, err
		}
		parts = append(parts, s)
	}
	return Tag(parts[0], parts[1:]...), nil
}

// splitTag reads the "label:instance:process" shorthand.
func splitTag(s string) InputTag {
	parts := strings.SplitN(s, ":", 3)
	return Tag(parts[0], parts[1:]...)
}

func (p *parser) integer(bits int, signed bool) (int64, error) {
	if p.tok.typ != tokNumber {
		return 0, p.errorf("expected integer, found %s", p.tok)
	}
	n, err := parseInteger(p.tok.text, bits, signed)
	if err != nil {
		return 0, p.errorf("invalid integer %q", p.tok.text)
	}
	return n, p.advance()
}

// parseInteger reads a decimal or 0x-prefixed hexadecimal literal. Decimal
// literals with a leading zero are rejected, as Python does.
func parseInteger(text string, bits int, signed bool) (int64, error) {
	sign, digits := "", text
	if strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		sign, digits = digits[:1], digits[1:]
	}
	base := 10
	switch {
	case strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X"):
		base, digits = 16, digits[2:]
	case len(digits) > 1 && digits[0] == '0':
		return 0, fmt.Errorf("leading zero in decimal literal %q", text)
	}
	if digits == "" || strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		return 0, fmt.Errorf("malformed integer %q", text)
	}
	if signed {
		if sign == "+" {
			sign = ""
		}
		return strconv.ParseInt(sign+digits, base, bits)
	}
	if sign == "-" {
		return 0, fmt.Errorf("negative unsigned integer %q", text)
	}
	u, err := strconv.ParseUint(digits, base, bits)
	return int64(u), err
}

func (p *parser) double() (float64, error) {
	if p.tok.typ == tokIdent && p.tok.text == "float" {
		return p.specialFloat()
	}
	if p.tok.typ != tokNumber {
		return 0, p.errorf("expected number, found %s", p.tok)
	}
	f, err := strconv.ParseFloat(p.tok.text, 64)
	if err != nil {
		return 0, p.errorf("invalid number %q", p.tok.text)
	}
	return f, p.advance()
}

// specialFloat parses float('inf'), float('-inf') and float('nan').
func (p *parser) specialFloat() (float64, error) {
	if err := p.advance(); err != nil {
		return 0, err
	}
	if err := p.expectPunct("("); err != nil {
		return 0, err
	}
	s, err := p.expectString()
	if err != nil {
		return 0, err
	}
	var f float64
	switch strings.ToLower(s) {
	case "inf", "+inf", "infinity":
		f = math.Inf(1)
	case "-inf", "-infinity":
		f = math.Inf(-1)
	case "nan":
		f = math.NaN()
	default:
		return 0, p.errorf("invalid float literal %q", s)
	}
	return f, p.expectPunct(")")
}
