package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/artifact-search/internal/core/domain"
)

func TestHistoryStore_RecentNewestFirst(t *testing.T) {
	store := NewHistoryStore(0)
	ctx := context.Background()

	for i := range 4 {
		require.NoError(t, store.Save(ctx, domain.SearchRecord{
			ID:        fmt.Sprintf("r%d", i),
			CreatedAt: time.Unix(int64(i), 0),
		}))
	}

	got, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r3", got[0].ID)
	assert.Equal(t, "r2", got[1].ID)

	all, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestHistoryStore_CapacityDropsOldest(t *testing.T) {
	store := NewHistoryStore(3)
	ctx := context.Background()

	for i := range 5 {
		require.NoError(t, store.Save(ctx, domain.SearchRecord{ID: fmt.Sprintf("r%d", i)}))
	}

	got, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "r4", got[0].ID)
	assert.Equal(t, "r2", got[2].ID)
}

func TestHistoryStore_SaveCopiesSlices(t *testing.T) {
	store := NewHistoryStore(10)
	ctx := context.Background()

	apps := []domain.AppSource{domain.SourceFigma}
	require.NoError(t, store.Save(ctx, domain.SearchRecord{ID: "a", TargetApps: apps}))
	apps[0] = domain.SourceNotion

	got, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceFigma, got[0].TargetApps[0])
}

func TestHistoryStore_EmptyAndClose(t *testing.T) {
	store := NewHistoryStore(10)

	got, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, store.Close())
}
