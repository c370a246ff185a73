// Package menu groups module records into a trigger menu and checks that the
// references between them resolve.
package menu

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/akave-ai/hltmenu/internal/menu/hlt75e33"
	"github.com/akave-ai/hltmenu/internal/pset"
)

var (
	// ErrDuplicateLabel is returned when two modules share a label.
	ErrDuplicateLabel = errors.New("duplicate module label")
	// ErrUnresolvedReference is returned when an InputTag names a module absent from the menu.
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrUnknownModule is returned when a label is not part of the menu.
	ErrUnknownModule = errors.New("unknown module")
)

// Menu is an ordered set of module records keyed by label.
type Menu struct {
	Name string

	mu       sync.RWMutex
	order    []string
	modules  map[string]*pset.Module
	stored   map[string]struct{}
	external map[string]struct{}
}

// New returns an empty menu. External labels are produced outside the menu and
// are treated as resolved.
func New(name string, external ...string) *Menu {
	m := &Menu{
		Name:     name,
		modules:  make(map[string]*pset.Module),
		stored:   make(map[string]struct{}),
		external: make(map[string]struct{}, len(external)),
	}
	for _, label := range external {
		m.external[label] = struct{}{}
	}
	return m
}

// Default returns the menu built from the records shipped in hlt75e33.
func Default() *Menu {
	m := New(hlt75e33.MenuName, hlt75e33.External...)
	all := hlt75e33.All()
	labels := make([]string, 0, len(all))
	for label := range all {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		// labels come from map keys, so Add cannot fail
		_ = m.Add(all[label]())
	}
	return m
}

// Add appends a module to the menu.
func (m *Menu) Add(mod *pset.Module) error {
	return m.add(mod, false)
}

// AddStored appends a module that was loaded from the module store. Only
// stored modules are dropped by RemoveStored.
func (m *Menu) AddStored(mod *pset.Module) error {
	return m.add(mod, true)
}

func (m *Menu) add(mod *pset.Module, stored bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.modules[mod.Label()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateLabel, mod.Label())
	}
	m.modules[mod.Label()] = mod
	m.order = append(m.order, mod.Label())
	if stored {
		m.stored[mod.Label()] = struct{}{}
	}
	return nil
}

// IsStored reports whether the module with the given label came from the
// module store.
func (m *Menu) IsStored(label string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.stored[label]
	return ok
}

// Replace adds mod or swaps the module with the same label in place.
func (m *Menu) Replace(mod *pset.Module) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.modules[mod.Label()]; !ok {
		m.order = append(m.order, mod.Label())
	}
	m.modules[mod.Label()] = mod
	delete(m.stored, mod.Label())
}

// Remove drops the module with the given label.
func (m *Menu) Remove(label string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remove(label)
}

// RemoveStored drops the module with the given label only when it came from
// the module store. A menu module sharing the label is left in place.
func (m *Menu) RemoveStored(label string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stored[label]; !ok {
		return false
	}
	return m.remove(label)
}

func (m *Menu) remove(label string) bool {
	if _, ok := m.modules[label]; !ok {
		return false
	}
	delete(m.modules, label)
	delete(m.stored, label)
	for i, l := range m.order {
		if l == label {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the module with the given label.
func (m *Menu) Get(label string) (*pset.Module, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mod, ok := m.modules[label]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, label)
	}
	return mod, nil
}

// Labels returns the module labels in insertion order.
func (m *Menu) Labels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

// Modules returns the modules in insertion order.
func (m *Menu) Modules() []*pset.Module {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*pset.Module, len(m.order))
	for i, label := range m.order {
		out[i] = m.modules[label]
	}
	return out
}

// Len returns the number of modules.
func (m *Menu) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// Dependencies returns the distinct labels referenced by the named module, in
// declaration order.
func (m *Menu) Dependencies(label string) ([]string, error) {
	mod, err := m.Get(label)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, ref := range mod.References() {
		if ref.IsEmpty() {
			continue
		}
		if _, ok := seen[ref.Label]; ok {
			continue
		}
		seen[ref.Label] = struct{}{}
		out = append(out, ref.Label)
	}
	return out, nil
}

// Unresolved describes one reference that does not resolve.
type Unresolved struct {
	Module    string `json:"module"`
	Parameter string `json:"parameter"`
	Label     string `json:"label"`
}

// Unresolved lists every reference whose label is neither a module of the menu
// nor an external label. Empty tags are optional inputs and are skipped.
func (m *Menu) Unresolved() []Unresolved {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Unresolved
	for _, label := range m.order {
		for _, p := range m.modules[label].Params() {
			var tags []pset.InputTag
			switch v := p.Value.(type) {
			case pset.InputTag:
				tags = []pset.InputTag{v}
			case pset.VInputTag:
				tags = v
			default:
				continue
			}
			for _, tag := range tags {
				if tag.IsEmpty() || m.resolves(tag.Label) {
					continue
				}
				out = append(out, Unresolved{Module: label, Parameter: p.Name, Label: tag.Label})
			}
		}
	}
	return out
}

func (m *Menu) resolves(label string) bool {
	if _, ok := m.modules[label]; ok {
		return true
	}
	_, ok := m.external[label]
	return ok
}

// Resolve returns ErrUnresolvedReference, joined per miss, when any reference
// of the menu does not resolve.
func (m *Menu) Resolve() error {
	var errs []error
	for _, u := range m.Unresolved() {
		errs = append(errs, fmt.Errorf("%w: %s.%s -> %s", ErrUnresolvedReference, u.Module, u.Parameter, u.Label))
	}
	return errors.Join(errs...)
}
