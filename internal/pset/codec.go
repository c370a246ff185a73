package pset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// moduleDoc is the structured (JSON/YAML) shape of a module.
type moduleDoc struct {
	Kind   ModuleKind `json:"kind" yaml:"kind"`
	Type   string     `json:"type" yaml:"type"`
	Label  string     `json:"label" yaml:"label"`
	ID     string     `json:"pset_id,omitempty" yaml:"pset_id,omitempty"`
	Params []paramDoc `json:"params" yaml:"params"`
}

type paramDoc struct {
	Name      string `json:"name" yaml:"name"`
	Type      Kind   `json:"type" yaml:"type"`
	Untracked bool   `json:"untracked,omitempty" yaml:"untracked,omitempty"`
	Value     any    `json:"value" yaml:"value"`
}

func (m *Module) doc() moduleDoc {
	d := moduleDoc{
		Kind:   m.kind,
		Type:   m.typ,
		Label:  m.label,
		ID:     m.ID(),
		Params: make([]paramDoc, len(m.params)),
	}
	for i, p := range m.params {
		d.Params[i] = paramDoc{Name: p.Name, Type: p.Value.Kind(), Untracked: p.Untracked, Value: docValue(p.Value)}
	}
	return d
}

func fromDoc(d moduleDoc) (*Module, error) {
	if d.Label == "" {
		return nil, fmt.Errorf("%w: module label is empty", ErrSyntax)
	}
	if d.Kind == "" {
		d.Kind = EDFilter
	}
	params := make([]Param, len(d.Params))
	for i, pd := range d.Params {
		kind, err := ParseKind(string(pd.Type))
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", pd.Name, err)
		}
		v, err := ValueFromAny(kind, pd.Value)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", pd.Name, err)
		}
		params[i] = Param{Name: pd.Name, Value: v, Untracked: pd.Untracked}
	}
	return NewModule(d.Kind, d.Type, d.Label, params...), nil
}

// MarshalJSON encodes the module with its parameters in declaration order.
func (m *Module) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.doc())
}

// UnmarshalJSON decodes numbers exactly, so 64-bit integers keep every digit.
func (m *Module) UnmarshalJSON(data []byte) error {
	var d moduleDoc
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&d); err != nil {
		return err
	}
	out, err := fromDoc(d)
	if err != nil {
		return err
	}
	*m = *out
	return nil
}

func (m *Module) MarshalYAML() (any, error) {
	return m.doc(), nil
}

func (m *Module) UnmarshalYAML(node *yaml.Node) error {
	var d moduleDoc
	if err := node.Decode(&d); err != nil {
		return err
	}
	out, err := fromDoc(d)
	if err != nil {
		return err
	}
	*m = *out
	return nil
}

// ValueFromAny coerces a loosely typed value (as decoded from JSON or YAML) into
// a Value of the given kind.
func ValueFromAny(kind Kind, v any) (Value, error) {
	switch kind {
	case KindBool:
		b, err := cast.ToBoolE(v)
		return Bool(b), mismatch(kind, v, err)
	case KindInt32:
		n, err := toSigned(v, 32)
		return Int32(n), mismatch(kind, v, err)
	case KindUInt32:
		n, err := toUnsigned(v, 32)
		return UInt32(n), mismatch(kind, v, err)
	case KindInt64:
		n, err := toSigned(v, 64)
		return Int64(n), mismatch(kind, v, err)
	case KindUInt64:
		n, err := toUnsigned(v, 64)
		return UInt64(n), mismatch(kind, v, err)
	case KindDouble:
		f, err := toFloat(v)
		return Double(f), mismatch(kind, v, err)
	case KindString:
		s, err := cast.ToStringE(v)
		return String(s), mismatch(kind, v, err)
	case KindVDouble:
		out, err := convertSlice(v, toFloat)
		return VDouble(out), mismatch(kind, v, err)
	case KindVInt32:
		out, err := convertSlice(v, func(e any) (int32, error) {
			n, err := toSigned(e, 32)
			return int32(n), err
		})
		return VInt32(out), mismatch(kind, v, err)
	case KindVString:
		out, err := convertSlice(v, cast.ToStringE)
		return VString(out), mismatch(kind, v, err)
	case KindInputTag:
		t, err := tagFromAny(v)
		return t, mismatch(kind, v, err)
	case KindVInputTag:
		out, err := convertSlice(v, tagFromAny)
		return VInputTag(out), mismatch(kind, v, err)
	}
	return nil, fmt.Errorf("%w: unsupported parameter type %q", ErrTypeMismatch, kind)
}

func mismatch(kind Kind, v any, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: cannot use %v (%T) as %s: %v", ErrTypeMismatch, v, v, kind, err)
}

func convertSlice[T any](v any, conv func(any) (T, error)) ([]T, error) {
	if v == nil {
		return []T{}, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	out := make([]T, rv.Len())
	for i := range out {
		t, err := conv(rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = t
	}
	return out, nil
}

func tagFromAny(v any) (InputTag, error) {
	switch t := v.(type) {
	case InputTag:
		return t, nil
	case *InputTag:
		return *t, nil
	case string:
		return splitTag(t), nil
	}
	fields, err := cast.ToStringMapStringE(v)
	if err != nil {
		return InputTag{}, err
	}
	if fields["label"] == "" {
		return InputTag{}, fmt.Errorf("input tag has no label")
	}
	return InputTag{Label: fields["label"], Instance: fields["instance"], Process: fields["process"]}, nil
}

// docValue is plain(v) with non-finite doubles spelled as strings ("inf",
// "-inf", "nan"), which JSON cannot carry as numbers.
func docValue(v Value) any {
	switch t := v.(type) {
	case Double:
		if s, ok := nonFinite(float64(t)); ok {
			return s
		}
	case VDouble:
		var out []any
		for i, f := range t {
			s, ok := nonFinite(f)
			if !ok {
				continue
			}
			if out == nil {
				out = make([]any, len(t))
				for j, g := range t {
					out[j] = g
				}
			}
			out[i] = s
		}
		if out != nil {
			return out
		}
	}
	return plain(v)
}

func nonFinite(f float64) (string, bool) {
	switch {
	case math.IsInf(f, 1):
		return "inf", true
	case math.IsInf(f, -1):
		return "-inf", true
	case math.IsNaN(f):
		return "nan", true
	}
	return "", false
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case json.Number:
		return strconv.ParseFloat(t.String(), 64)
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	}
	return cast.ToFloat64E(v)
}

// toSigned converts v to an integer of the given width. Fractional or
// out-of-range values are errors, never truncated or wrapped.
func toSigned(v any, bits int) (int64, error) {
	switch t := v.(type) {
	case json.Number:
		return signedFromText(t.String(), bits)
	case string:
		return signedFromText(strings.TrimSpace(t), bits)
	case float64:
		return signedFromFloat(t, bits)
	case float32:
		return signedFromFloat(float64(t), bits)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < -1<<(bits-1) || n > 1<<(bits-1)-1 {
			return 0, fmt.Errorf("%d overflows int%d", n, bits)
		}
		return n, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > 1<<(bits-1)-1 {
			return 0, fmt.Errorf("%d overflows int%d", u, bits)
		}
		return int64(u), nil
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, err
	}
	return toSigned(n, bits)
}

// toUnsigned is toSigned for unsigned widths.
func toUnsigned(v any, bits int) (uint64, error) {
	switch t := v.(type) {
	case json.Number:
		return unsignedFromText(t.String(), bits)
	case string:
		return unsignedFromText(strings.TrimSpace(t), bits)
	case float64:
		return unsignedFromFloat(t, bits)
	case float32:
		return unsignedFromFloat(float64(t), bits)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := rv.Int()
		if n < 0 {
			return 0, fmt.Errorf("%d is negative", n)
		}
		return checkUnsigned(uint64(n), bits)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return checkUnsigned(rv.Uint(), bits)
	}
	n, err := cast.ToUint64E(v)
	if err != nil {
		return 0, err
	}
	return checkUnsigned(n, bits)
}

func checkUnsigned(u uint64, bits int) (uint64, error) {
	if bits < 64 && u > 1<<bits-1 {
		return 0, fmt.Errorf("%d overflows uint%d", u, bits)
	}
	return u, nil
}

func signedFromText(s string, bits int) (int64, error) {
	n, err := parseInteger(s, bits, true)
	if err == nil {
		return n, nil
	}
	if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
		return signedFromFloat(f, bits)
	}
	return 0, err
}

func unsignedFromText(s string, bits int) (uint64, error) {
	n, err := parseInteger(s, bits, false)
	if err == nil {
		return uint64(n), nil
	}
	if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
		return unsignedFromFloat(f, bits)
	}
	return 0, err
}

func signedFromFloat(f float64, bits int) (int64, error) {
	limit := math.Ldexp(1, bits-1)
	if f != math.Trunc(f) || f < -limit || f >= limit {
		return 0, fmt.Errorf("%v is not an int%d", f, bits)
	}
	return int64(f), nil
}

func unsignedFromFloat(f float64, bits int) (uint64, error) {
	if f != math.Trunc(f) || f < 0 || f >= math.Ldexp(1, bits) {
		return 0, fmt.Errorf("%v is not a uint%d", f, bits)
	}
	return uint64(f), nil
}
