package history

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "sitesearch/internal/domain/search"
)

func TestInMemoryRepository_RecentNewestFirst(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Record(ctx, domain.Record{
			Term:      "term-" + strconv.Itoa(i),
			CreatedAt: time.Now().UTC(),
		}))
	}

	records, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "term-2", records[0].Term)
	assert.Equal(t, "term-0", records[2].Term)
	for _, rec := range records {
		assert.NotEmpty(t, rec.ID)
	}
}

func TestInMemoryRepository_LimitApplied(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Record(ctx, domain.Record{Term: strconv.Itoa(i)}))
	}

	records, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "4", records[0].Term)
	assert.Equal(t, "3", records[1].Term)
}

func TestInMemoryRepository_CapEvictsOldest(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for i := 0; i < inMemoryCap+10; i++ {
		require.NoError(t, repo.Record(ctx, domain.Record{Term: strconv.Itoa(i)}))
	}

	records, err := repo.Recent(ctx, inMemoryCap*2)
	require.NoError(t, err)
	assert.Len(t, records, inMemoryCap)
	assert.Equal(t, strconv.Itoa(inMemoryCap+9), records[0].Term)
}
