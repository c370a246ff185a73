package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/akave-ai/hltmenu/internal/pset"
)

// ModuleRecord is a stored module of a menu. Body holds the canonical
// configuration fragment; the other columns are derived from it.
type ModuleRecord struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Menu      string    `db:"menu" json:"menu"`
	Label     string    `db:"label" json:"label"`
	Type      string    `db:"type" json:"type"`
	Kind      string    `db:"kind" json:"kind"`
	PSetID    string    `db:"pset_id" json:"pset_id"`
	Body      string    `db:"body" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NewModuleRecord describes mod as a record of the named menu.
func NewModuleRecord(menu string, mod *pset.Module) *ModuleRecord {
	return &ModuleRecord{
		Menu:   menu,
		Label:  mod.Label(),
		Type:   mod.Type(),
		Kind:   string(mod.Kind()),
		PSetID: mod.ID(),
		Body:   string(mod.Serialize()),
	}
}

// Module parses the stored body.
func (r *ModuleRecord) Module() (*pset.Module, error) {
	return pset.Parse([]byte(r.Body))
}
