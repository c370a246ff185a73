package modules

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/akave-ai/hltmenu/internal/pset"
)

// Registry holds registered module factories. The server and the CLI use it to
// check module records before they are stored or published.
// Type packages (e.g. quadeta) register their factory in init().
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// GlobalRegistry is populated by the init functions of the type packages.
var GlobalRegistry = NewRegistry()

// NewRegistry returns a new Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory for a module type.
func (r *Registry) Register(factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[factory.Name()] = factory
}

// Lookup returns the factory for the given module type.
func (r *Registry) Lookup(name string) (Factory, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModuleType, name)
	}
	return factory, nil
}

// Validate checks m against the schema of its type, then runs the factory's
// semantic checks. Schema errors are collected and joined.
func (r *Registry) Validate(m *pset.Module) error {
	factory, err := r.Lookup(m.Type())
	if err != nil {
		return err
	}
	if err := CheckSchema(factory.ConfigSpec(), m); err != nil {
		return err
	}
	return factory.ValidateParams(m)
}

// CheckSchema reports every parameter of m that is unknown to spec or has the
// wrong type, and every required parameter m lacks.
func CheckSchema(spec TypeInfo, m *pset.Module) error {
	var errs []error
	if spec.Kind != "" && m.Kind() != spec.Kind {
		errs = append(errs, fmt.Errorf("%w: %s is declared as %s, %s expects %s", ErrSchemaMismatch, m.Label(), m.Kind(), spec.Type, spec.Kind))
	}
	for _, p := range m.Params() {
		ps, ok := spec.Param(p.Name)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s has no parameter %q", ErrSchemaMismatch, spec.Type, p.Name))
			continue
		}
		if p.Value.Kind() != ps.Type {
			errs = append(errs, fmt.Errorf("%w: %s.%s is %s, expected %s", ErrSchemaMismatch, m.Label(), p.Name, p.Value.Kind(), ps.Type))
		}
	}
	for _, ps := range spec.Params {
		if ps.Required && !m.Has(ps.Name) {
			errs = append(errs, fmt.Errorf("%w: %s is missing required parameter %q", ErrSchemaMismatch, m.Label(), ps.Name))
		}
	}
	return errors.Join(errs...)
}

// ListRegistered returns all registered module type names, sorted.
func (r *Registry) ListRegistered() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetTypeInfo returns the config spec for the given module type. ok is false if the type is not registered.
func (r *Registry) GetTypeInfo(name string) (info TypeInfo, ok bool) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return TypeInfo{}, false
	}
	return factory.ConfigSpec(), true
}

// AllTypesInfo returns config specs for all registered module types, ordered by type name.
func (r *Registry) AllTypesInfo() []TypeInfo {
	names := r.ListRegistered()
	out := make([]TypeInfo, 0, len(names))
	for _, name := range names {
		if info, ok := r.GetTypeInfo(name); ok {
			out = append(out, info)
		}
	}
	return out
}

// SchemaProvider is implemented by factories that can describe their
// parameters as a JSON schema.
type SchemaProvider interface {
	JSONSchema() any
}

// GetSchema returns the JSON schema of a module type when its factory provides one.
func (r *Registry) GetSchema(name string) (any, error) {
	factory, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	sp, ok := factory.(SchemaProvider)
	if !ok {
		return nil, fmt.Errorf("module type %s does not publish a schema", name)
	}
	return sp.JSONSchema(), nil
}
