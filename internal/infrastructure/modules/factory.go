package modules

import "github.com/akave-ai/hltmenu/internal/pset"

// Factory describes one module type known to the menu.
// Each type package (quadeta, ...) implements and registers a Factory.
// ConfigSpec declares which parameters the type accepts.
type Factory interface {
	Name() string
	ConfigSpec() TypeInfo
	// ValidateParams checks the semantic constraints of a module whose
	// parameters already match ConfigSpec.
	ValidateParams(m *pset.Module) error
}
