package readables_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"hardboiled/models"
	"hardboiled/readables"
	"hardboiled/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func article(id, author, issue int64) models.Record {
	return models.Record{
		Type:   models.ArticleType,
		Fields: map[string]any{"id": id, "author": author, "issue": issue},
	}
}

func TestResolve(t *testing.T) {
	fetchers := map[schema.EntityKind]readables.Fetcher{
		schema.UserEntity: func(ctx context.Context, id int64) (any, error) {
			if id == 99 {
				return nil, errors.New("user gone")
			}
			return &models.User{Id: id, Slug: "marlowe"}, nil
		},
		schema.IssueEntity: func(ctx context.Context, id int64) (any, error) {
			return &models.Issue{Id: id, Slug: "issue-1"}, nil
		},
	}
	resolver := readables.NewResolver(schema.Default(), fetchers, 4)

	records := []models.Record{
		article(1, 3, 10),
		article(2, 99, 10),
		{Type: models.PostType, Fields: map[string]any{"id": int64(5), "author": nil}},
	}
	require.NoError(t, resolver.Resolve(context.Background(), records))

	assert.Equal(t, &models.User{Id: 3, Slug: "marlowe"}, records[0].Fields["author"])
	assert.Equal(t, &models.Issue{Id: 10, Slug: "issue-1"}, records[0].Fields["issue"])
	assert.Empty(t, records[0].Unresolved)

	// A failed fetch keeps the raw id and is marked, the rest still resolves
	assert.Equal(t, int64(99), records[1].Fields["author"])
	assert.Equal(t, []string{"author"}, records[1].Unresolved)
	assert.Equal(t, &models.Issue{Id: 10, Slug: "issue-1"}, records[1].Fields["issue"])

	// Null foreign keys are left alone
	assert.Nil(t, records[2].Fields["author"])
	assert.Empty(t, records[2].Unresolved)
}

func TestResolveBoundsConcurrency(t *testing.T) {
	var inFlight, maxInFlight, calls atomic.Int64
	fetch := func(ctx context.Context, id int64) (any, error) {
		calls.Add(1)
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return id, nil
	}
	fetchers := map[schema.EntityKind]readables.Fetcher{
		schema.UserEntity:  fetch,
		schema.IssueEntity: fetch,
	}
	resolver := readables.NewResolver(schema.Default(), fetchers, 2)

	records := make([]models.Record, 10)
	for i := range records {
		records[i] = article(int64(i), int64(i), int64(i))
	}
	require.NoError(t, resolver.Resolve(context.Background(), records))

	assert.Equal(t, int64(20), calls.Load())
	assert.LessOrEqual(t, maxInFlight.Load(), int64(2))
}

func TestResolveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetch := func(ctx context.Context, id int64) (any, error) {
		cancel()
		return nil, ctx.Err()
	}
	fetchers := map[schema.EntityKind]readables.Fetcher{
		schema.UserEntity:  fetch,
		schema.IssueEntity: fetch,
	}
	resolver := readables.NewResolver(schema.Default(), fetchers, 1)

	err := resolver.Resolve(ctx, []models.Record{article(1, 2, 3)})
	assert.ErrorIs(t, err, context.Canceled)
}
