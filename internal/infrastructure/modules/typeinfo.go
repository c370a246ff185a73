package modules

import "github.com/akave-ai/hltmenu/internal/pset"

// ParamSpec describes one parameter accepted by a module type.
type ParamSpec struct {
	Name        string    `json:"name"`
	Type        pset.Kind `json:"type"`
	Required    bool      `json:"required"`
	Untracked   bool      `json:"untracked,omitempty"`
	Description string    `json:"description"`
}

// TypeInfo describes a module type and the parameters it declares.
// Returned by Factory.ConfigSpec() and exposed via GET /types and GET /types/:type.
type TypeInfo struct {
	Type        string          `json:"type"`
	Kind        pset.ModuleKind `json:"kind"`
	Description string          `json:"description"`
	Params      []ParamSpec     `json:"params"`
}

// Param returns the spec of the named parameter.
func (ti TypeInfo) Param(name string) (ParamSpec, bool) {
	for _, p := range ti.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}
