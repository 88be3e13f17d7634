package query_test

import (
	"context"
	"errors"
	"testing"

	"hardboiled/models"
	"hardboiled/query"
	"hardboiled/schema"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("missing")

type fakeStore struct {
	tags  map[string]*models.Tag
	users map[string]*models.User
	err   error
}

func (s *fakeStore) TagBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	if s.err != nil {
		return nil, s.err
	}
	if tag, ok := s.tags[slug]; ok {
		return tag, nil
	}
	return nil, errMissing
}

func (s *fakeStore) UserBySlug(ctx context.Context, slug string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if user, ok := s.users[slug]; ok {
		return user, nil
	}
	return nil, errMissing
}

func (s *fakeStore) IsNotFound(err error) bool {
	return errors.Is(err, errMissing)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tags:  map[string]*models.Tag{"noir": {Id: 7, Name: "Noir", Slug: "noir"}},
		users: map[string]*models.User{"marlowe": {Id: 3, Name: "Philip Marlowe", Slug: "marlowe"}},
	}
}

func tableNames(tables []schema.Table) []string {
	return lo.Map(tables, func(t schema.Table, _ int) string { return t.Name })
}

func TestCompile(t *testing.T) {
	reg := schema.Default()

	tests := []struct {
		name     string
		filter   query.Filter
		tag      bool
		author   bool
		notFound bool
		tables   []string
	}{
		{
			name:   "no filter",
			filter: query.Filter{},
			tables: []string{"posts", "issues", "articles"},
		},
		{
			name:   "known tag",
			filter: query.Filter{TagSlug: "noir"},
			tag:    true,
			tables: []string{"posts", "issues", "articles"},
		},
		{
			name:   "known author leaves out issues",
			filter: query.Filter{AuthorSlug: "marlowe"},
			author: true,
			tables: []string{"posts", "articles"},
		},
		{
			name:     "unknown tag",
			filter:   query.Filter{TagSlug: "cozy"},
			notFound: true,
			tables:   []string{"posts", "issues", "articles"},
		},
		{
			name:     "unknown author",
			filter:   query.Filter{AuthorSlug: "nobody"},
			notFound: true,
			tables:   []string{"posts", "issues", "articles"},
		},
		{
			name:   "tag wins over author",
			filter: query.Filter{TagSlug: "noir", AuthorSlug: "marlowe"},
			tag:    true,
			tables: []string{"posts", "issues", "articles"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := query.Compile(context.Background(), newFakeStore(), tt.filter)
			require.NoError(t, err)

			assert.Equal(t, tt.tag, p.Tag != nil)
			assert.Equal(t, tt.author, p.Author != nil)
			assert.Equal(t, tt.notFound, p.NotFound)
			assert.Equal(t, tt.tables, tableNames(p.Tables(reg)))
		})
	}
}

func TestCompileStoreError(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection refused")

	_, err := query.Compile(context.Background(), store, query.Filter{TagSlug: "noir"})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.err)

	// No lookup happens without a filter
	p, err := query.Compile(context.Background(), store, query.Filter{})
	require.NoError(t, err)
	assert.False(t, p.NotFound)
}

func TestFilterKind(t *testing.T) {
	assert.Equal(t, "none", query.Filter{}.Kind())
	assert.Equal(t, "tag", query.Filter{TagSlug: "noir"}.Kind())
	assert.Equal(t, "author", query.Filter{AuthorSlug: "marlowe"}.Kind())
	assert.True(t, query.Filter{}.Empty())
	assert.False(t, query.Filter{AuthorSlug: "marlowe"}.Empty())
}
