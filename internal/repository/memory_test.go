package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akave-ai/hltmenu/internal/menu/hlt75e33"
	"github.com/akave-ai/hltmenu/internal/model"
	"github.com/akave-ai/hltmenu/internal/pset"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	filter := hlt75e33.HltEle26WP70GsfTrackIsoUnseededFilter()
	rec := model.NewModuleRecord(hlt75e33.MenuName, filter)
	require.NoError(t, store.Create(ctx, rec))
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Equal(t, filter.ID(), rec.PSetID)
	assert.Equal(t, "EDFilter", rec.Kind)

	err := store.Create(ctx, model.NewModuleRecord(hlt75e33.MenuName, filter))
	require.ErrorIs(t, err, ErrDuplicateLabel)

	// the same label is free in another menu
	require.NoError(t, store.Create(ctx, model.NewModuleRecord("other", filter)))

	got, err := store.GetByLabel(ctx, hlt75e33.MenuName, filter.Label())
	require.NoError(t, err)
	require.NotNil(t, got)
	mod, err := got.Module()
	require.NoError(t, err)
	assert.True(t, mod.Equal(filter))

	missing, err := store.GetByLabel(ctx, hlt75e33.MenuName, "hltNothing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := store.List(ctx, hlt75e33.MenuName)
	require.NoError(t, err)
	require.Len(t, list, 1)

	deleted, err := store.DeleteByLabel(ctx, hlt75e33.MenuName, filter.Label())
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = store.DeleteByLabel(ctx, hlt75e33.MenuName, filter.Label())
	require.NoError(t, err)
	assert.False(t, deleted)

	list, err = store.List(ctx, "other")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMemoryStoreKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, label := range []string{"hltB", "hltA", "hltC"} {
		mod := pset.NewModule(pset.EDProducer, "Producer", label)
		require.NoError(t, store.Create(ctx, model.NewModuleRecord("m", mod)))
	}
	_, err := store.DeleteByLabel(ctx, "m", "hltA")
	require.NoError(t, err)

	list, err := store.List(ctx, "m")
	require.NoError(t, err)
	labels := make([]string, len(list))
	for i, rec := range list {
		labels[i] = rec.Label
	}
	assert.Equal(t, []string{"hltB", "hltC"}, labels)
}
