package repository

import (
	"context"
	"errors"

	"github.com/akave-ai/hltmenu/internal/model"
)

// ErrDuplicateLabel is returned by Create when the menu already stores a module
// with the same label.
var ErrDuplicateLabel = errors.New("module label already stored")

// ModuleStore persists module records per menu. GetByLabel returns nil, nil
// when the label is not stored.
type ModuleStore interface {
	Create(ctx context.Context, rec *model.ModuleRecord) error
	List(ctx context.Context, menu string) ([]model.ModuleRecord, error)
	GetByLabel(ctx context.Context, menu, label string) (*model.ModuleRecord, error)
	DeleteByLabel(ctx context.Context, menu, label string) (bool, error)
}
