package pset

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// ModuleKind is the framework base class a module is declared with (cms.EDFilter, cms.EDProducer, ...).
type ModuleKind string

const (
	EDFilter     ModuleKind = "EDFilter"
	EDProducer   ModuleKind = "EDProducer"
	EDAnalyzer   ModuleKind = "EDAnalyzer"
	OutputModule ModuleKind = "OutputModule"
	ESProducer   ModuleKind = "ESProducer"
	ESSource     ModuleKind = "ESSource"
	Source       ModuleKind = "Source"
)

// Param is one named parameter of a module.
type Param struct {
	Name      string
	Value     Value
	Untracked bool
}

// Module is the parameter record of one configured module instance.
// It is immutable after NewModule returns.
type Module struct {
	kind   ModuleKind
	typ    string
	label  string
	params []Param
	index  map[string]int
}

// NewModule builds a module record. Parameters keep the given order; a repeated
// name replaces the earlier value in place.
func NewModule(kind ModuleKind, moduleType, label string, params ...Param) *Module {
	m := &Module{
		kind:   kind,
		typ:    moduleType,
		label:  label,
		params: make([]Param, 0, len(params)),
		index:  make(map[string]int, len(params)),
	}
	for _, p := range params {
		p.Value = cloneValue(p.Value)
		if i, ok := m.index[p.Name]; ok {
			m.params[i] = p
			continue
		}
		m.index[p.Name] = len(m.params)
		m.params = append(m.params, p)
	}
	return m
}

// Kind returns the module's base class.
func (m *Module) Kind() ModuleKind { return m.kind }

// Type returns the registered plugin type the framework instantiates.
func (m *Module) Type() string { return m.typ }

// Label returns the instance name.
func (m *Module) Label() string { return m.label }

// Len returns the number of parameters.
func (m *Module) Len() int { return len(m.params) }

// Params returns a copy of the parameters in declaration order.
func (m *Module) Params() []Param {
	out := make([]Param, len(m.params))
	for i, p := range m.params {
		p.Value = cloneValue(p.Value)
		out[i] = p
	}
	return out
}

// Names returns the parameter names in declaration order.
func (m *Module) Names() []string {
	out := make([]string, len(m.params))
	for i, p := range m.params {
		out[i] = p.Name
	}
	return out
}

// Has reports whether the module declares name.
func (m *Module) Has(name string) bool {
	_, ok := m.index[name]
	return ok
}

// Get returns the value of the named parameter.
func (m *Module) Get(name string) (Value, error) {
	i, ok := m.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownParameter, m.label, name)
	}
	return cloneValue(m.params[i].Value), nil
}

// IsTracked reports whether name is a tracked parameter. Unknown names are reported as untracked.
func (m *Module) IsTracked(name string) bool {
	i, ok := m.index[name]
	return ok && !m.params[i].Untracked
}

// References returns every InputTag held by the module, in declaration order.
func (m *Module) References() []InputTag {
	var out []InputTag
	for _, p := range m.params {
		switch v := p.Value.(type) {
		case InputTag:
			out = append(out, v)
		case VInputTag:
			out = append(out, v...)
		}
	}
	return out
}

// Equal reports whether two modules declare the same kind, type, label and
// parameters in the same order.
func (m *Module) Equal(o *Module) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.kind != o.kind || m.typ != o.typ || m.label != o.label || len(m.params) != len(o.params) {
		return false
	}
	for i, p := range m.params {
		q := o.params[i]
		if p.Name != q.Name || p.Untracked != q.Untracked || !p.Value.equal(q.Value) {
			return false
		}
	}
	return true
}

// ID returns the parameter-set identifier: the hex MD5 digest of the canonical serialization.
func (m *Module) ID() string {
	sum := md5.Sum(m.Serialize())
	return hex.EncodeToString(sum[:])
}

// AsMap returns the parameters as plain Go values keyed by name, suitable for
// decoding into a typed struct.
func (m *Module) AsMap() map[string]any {
	out := make(map[string]any, len(m.params))
	for _, p := range m.params {
		out[p.Name] = plain(p.Value)
	}
	return out
}

func plain(v Value) any {
	switch t := v.(type) {
	case Bool:
		return bool(t)
	case Int32:
		return int32(t)
	case UInt32:
		return uint32(t)
	case Int64:
		return int64(t)
	case UInt64:
		return uint64(t)
	case Double:
		return float64(t)
	case String:
		return string(t)
	case VDouble:
		return []float64(append(VDouble(nil), t...))
	case VInt32:
		return []int32(append(VInt32(nil), t...))
	case VString:
		return []string(append(VString(nil), t...))
	case InputTag:
		return t
	case VInputTag:
		return []InputTag(append(VInputTag(nil), t...))
	}
	return nil
}

// Parameter constructors.

func BoolParam(name string, v bool) Param      { return Param{Name: name, Value: Bool(v)} }
func Int32Param(name string, v int32) Param    { return Param{Name: name, Value: Int32(v)} }
func UInt32Param(name string, v uint32) Param  { return Param{Name: name, Value: UInt32(v)} }
func Int64Param(name string, v int64) Param    { return Param{Name: name, Value: Int64(v)} }
func UInt64Param(name string, v uint64) Param  { return Param{Name: name, Value: UInt64(v)} }
func DoubleParam(name string, v float64) Param { return Param{Name: name, Value: Double(v)} }
func StringParam(name string, v string) Param  { return Param{Name: name, Value: String(v)} }
func VDoubleParam(name string, v ...float64) Param {
	return Param{Name: name, Value: VDouble(v)}
}
func VInt32Param(name string, v ...int32) Param   { return Param{Name: name, Value: VInt32(v)} }
func VStringParam(name string, v ...string) Param { return Param{Name: name, Value: VString(v)} }

// TagParam builds an InputTag parameter from a label and optional instance and process.
func TagParam(name, label string, rest ...string) Param {
	return Param{Name: name, Value: Tag(label, rest...)}
}

func VTagParam(name string, tags ...InputTag) Param {
	return Param{Name: name, Value: VInputTag(tags)}
}

// Untracked marks p as an untracked parameter.
func Untracked(p Param) Param {
	p.Untracked = true
	return p
}
