package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akave-ai/hltmenu/internal/model"
)

// MemoryStore keeps records in process. The server uses it when no database
// is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]model.ModuleRecord
	now     func() time.Time
}

var _ ModuleStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]model.ModuleRecord),
		now:     time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, rec *model.ModuleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.records[rec.Menu] {
		if existing.Label == rec.Label {
			return fmt.Errorf("%w: %s/%s", ErrDuplicateLabel, rec.Menu, rec.Label)
		}
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = s.now().UTC()
	s.records[rec.Menu] = append(s.records[rec.Menu], *rec)
	return nil
}

func (s *MemoryStore) List(_ context.Context, menu string) ([]model.ModuleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.ModuleRecord(nil), s.records[menu]...), nil
}

func (s *MemoryStore) GetByLabel(_ context.Context, menu, label string) (*model.ModuleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records[menu] {
		if rec.Label == label {
			return &rec, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) DeleteByLabel(_ context.Context, menu, label string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.records[menu]
	for i, rec := range list {
		if rec.Label == label {
			s.records[menu] = append(list[:i:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
