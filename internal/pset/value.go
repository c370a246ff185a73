package pset

import (
	"fmt"
	"math"
	"strings"
)

// Kind identifies the type of a parameter value as written in a configuration file.
type Kind string

const (
	KindBool      Kind = "bool"
	KindInt32     Kind = "int32"
	KindUInt32    Kind = "uint32"
	KindInt64     Kind = "int64"
	KindUInt64    Kind = "uint64"
	KindDouble    Kind = "double"
	KindString    Kind = "string"
	KindVDouble   Kind = "vdouble"
	KindVInt32    Kind = "vint32"
	KindVString   Kind = "vstring"
	KindInputTag  Kind = "InputTag"
	KindVInputTag Kind = "VInputTag"
)

var kinds = map[Kind]struct{}{
	KindBool: {}, KindInt32: {}, KindUInt32: {}, KindInt64: {}, KindUInt64: {},
	KindDouble: {}, KindString: {}, KindVDouble: {}, KindVInt32: {}, KindVString: {},
	KindInputTag: {}, KindVInputTag: {},
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := kinds[k]; !ok {
		return "", fmt.Errorf("%w: unknown parameter type %q", ErrSyntax, s)
	}
	return k, nil
}

// IsVector reports whether values of kind k hold an ordered sequence.
func (k Kind) IsVector() bool {
	switch k {
	case KindVDouble, KindVInt32, KindVString, KindVInputTag:
		return true
	}
	return false
}

// IsReference reports whether values of kind k point at other modules.
func (k Kind) IsReference() bool {
	return k == KindInputTag || k == KindVInputTag
}

// Value is a typed parameter value.
type Value interface {
	Kind() Kind
	// args renders the value as the argument list of its cms constructor.
	args() string
	equal(Value) bool
}

type (
	Bool    bool
	Int32   int32
	UInt32  uint32
	Int64   int64
	UInt64  uint64
	Double  float64
	String  string
	VDouble []float64
	VInt32  []int32
	VString []string
	// VInputTag is an ordered list of references.
	VInputTag []InputTag
)

// InputTag is a symbolic reference to the product of another module.
// Instance and Process are optional.
type InputTag struct {
	Label    string `json:"label" yaml:"label" mapstructure:"label"`
	Instance string `json:"instance,omitempty" yaml:"instance,omitempty" mapstructure:"instance"`
	Process  string `json:"process,omitempty" yaml:"process,omitempty" mapstructure:"process"`
}

// Tag builds an InputTag from its label and optional instance and process.
func Tag(label string, rest ...string) InputTag {
	t := InputTag{Label: label}
	if len(rest) > 0 {
		t.Instance = rest[0]
	}
	if len(rest) > 1 {
		t.Process = rest[1]
	}
	return t
}

// String renders the tag in the colon form used by the framework ("label:instance:process").
func (t InputTag) String() string {
	switch {
	case t.Process != "":
		return t.Label + ":" + t.Instance + ":" + t.Process
	case t.Instance != "":
		return t.Label + ":" + t.Instance
	}
	return t.Label
}

// IsEmpty reports whether the tag references nothing.
func (t InputTag) IsEmpty() bool { return t.Label == "" }

func (Bool) Kind() Kind      { return KindBool }
func (Int32) Kind() Kind     { return KindInt32 }
func (UInt32) Kind() Kind    { return KindUInt32 }
func (Int64) Kind() Kind     { return KindInt64 }
func (UInt64) Kind() Kind    { return KindUInt64 }
func (Double) Kind() Kind    { return KindDouble }
func (String) Kind() Kind    { return KindString }
func (VDouble) Kind() Kind   { return KindVDouble }
func (VInt32) Kind() Kind    { return KindVInt32 }
func (VString) Kind() Kind   { return KindVString }
func (InputTag) Kind() Kind  { return KindInputTag }
func (VInputTag) Kind() Kind { return KindVInputTag }

func (v Bool) args() string {
	if v {
		return "True"
	}
	return "False"
}
func (v Int32) args() string  { return fmt.Sprintf("%d", int32(v)) }
func (v UInt32) args() string { return fmt.Sprintf("%d", uint32(v)) }
func (v Int64) args() string  { return fmt.Sprintf("%d", int64(v)) }
func (v UInt64) args() string { return fmt.Sprintf("%d", uint64(v)) }
func (v Double) args() string { return FormatDouble(float64(v)) }
func (v String) args() string { return quote(string(v)) }

func (v VDouble) args() string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = FormatDouble(f)
	}
	return strings.Join(parts, ", ")
}

func (v VInt32) args() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, ", ")
}

func (v VString) args() string {
	parts := make([]string, len(v))
	for i, s := range v {
		parts[i] = quote(s)
	}
	return strings.Join(parts, ", ")
}

func (v InputTag) args() string {
	switch {
	case v.Process != "":
		return quote(v.Label) + "," + quote(v.Instance) + "," + quote(v.Process)
	case v.Instance != "":
		return quote(v.Label) + "," + quote(v.Instance)
	}
	return quote(v.Label)
}

func (v VInputTag) args() string {
	parts := make([]string, len(v))
	for i, t := range v {
		parts[i] = "cms.InputTag(" + t.args() + ")"
	}
	return strings.Join(parts, ", ")
}

func (v Bool) equal(o Value) bool   { w, ok := o.(Bool); return ok && v == w }
func (v Int32) equal(o Value) bool  { w, ok := o.(Int32); return ok && v == w }
func (v UInt32) equal(o Value) bool { w, ok := o.(UInt32); return ok && v == w }
func (v Int64) equal(o Value) bool  { w, ok := o.(Int64); return ok && v == w }
func (v UInt64) equal(o Value) bool { w, ok := o.(UInt64); return ok && v == w }
func (v Double) equal(o Value) bool {
	w, ok := o.(Double)
	return ok && sameFloat(float64(v), float64(w))
}
func (v String) equal(o Value) bool { w, ok := o.(String); return ok && v == w }

func (v InputTag) equal(o Value) bool {
	w, ok := o.(InputTag)
	return ok && v == w
}

func (v VDouble) equal(o Value) bool {
	w, ok := o.(VDouble)
	if !ok || len(v) != len(w) {
		return false
	}
	for i := range v {
		if !sameFloat(v[i], w[i]) {
			return false
		}
	}
	return true
}

// sameFloat is == except that NaN equals NaN.
func sameFloat(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

func (v VInt32) equal(o Value) bool {
	w, ok := o.(VInt32)
	return ok && sliceEqual(v, w)
}

func (v VString) equal(o Value) bool {
	w, ok := o.(VString)
	return ok && sliceEqual(v, w)
}

func (v VInputTag) equal(o Value) bool {
	w, ok := o.(VInputTag)
	return ok && sliceEqual(v, w)
}

func sliceEqual[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// cloneValue copies the backing array of vector values so callers cannot mutate a module.
func cloneValue(v Value) Value {
	switch t := v.(type) {
	case VDouble:
		return append(VDouble(nil), t...)
	case VInt32:
		return append(VInt32(nil), t...)
	case VString:
		return append(VString(nil), t...)
	case VInputTag:
		return append(VInputTag(nil), t...)
	}
	return v
}
