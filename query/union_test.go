package query_test

import (
	"context"
	"strings"
	"testing"

	"hardboiled/query"
	"hardboiled/schema"

	"github.com/huandu/go-sqlbuilder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func builderFor(t *testing.T, filter query.Filter, flavor sqlbuilder.Flavor) *query.ReadablesQueryBuilder {
	t.Helper()
	p, err := query.Compile(context.Background(), newFakeStore(), filter)
	require.NoError(t, err)
	return query.NewReadablesQueryBuilder(schema.Default(), p, flavor)
}

func TestColumns(t *testing.T) {
	b := builderFor(t, query.Filter{}, sqlbuilder.SQLite)
	assert.Equal(t, []string{
		"readable_type",
		"id", "uuid", "title", "slug", "image", "html", "series", "published_at", "updated_at",
		"featured", "article_length", "article_num",
		"author_id", "published_by", "issue_id",
	}, b.Columns())
}

func TestBuild(t *testing.T) {
	b := builderFor(t, query.Filter{}, sqlbuilder.SQLite)
	sql, args := b.Build(15, 30)

	assert.True(t, strings.HasPrefix(sql, "SELECT * FROM ("))
	assert.Equal(t, 2, strings.Count(sql, "UNION ALL"))
	assert.Contains(t, sql, "'post' AS readable_type")
	assert.Contains(t, sql, "'issue' AS readable_type")
	assert.Contains(t, sql, "'article' AS readable_type")

	// Posts have no series and no issue, so those are typed NULLs
	assert.Contains(t, sql, "CAST(NULL AS TEXT) AS series")
	assert.Contains(t, sql, "CAST(NULL AS BIGINT) AS issue_id")
	assert.Contains(t, sql, "posts.featured AS featured")
	assert.Contains(t, sql, "CAST(NULL AS BOOLEAN) AS featured")

	// Articles are listed whatever the status of their issue
	assert.NotContains(t, sql, "JOIN issues")
	assert.Contains(t, sql, "posts.status = ?")
	assert.Contains(t, sql, "issues.status = ?")
	assert.NotContains(t, sql, "articles.status")
	assert.Equal(t, []interface{}{"published", "published"}, args[:2])

	// Ordering and paging apply once, to the whole union
	assert.Equal(t, 1, strings.Count(sql, "ORDER BY"))
	assert.Contains(t, sql, ") AS readables ORDER BY published_at IS NULL, published_at DESC, updated_at DESC, readable_type ASC, id DESC")
	assert.True(t, strings.HasSuffix(sql, "LIMIT 15 OFFSET 30"), sql)
}

func TestBuildPages(t *testing.T) {
	b := builderFor(t, query.Filter{}, sqlbuilder.SQLite)

	first, _ := b.Build(1, 0)
	second, _ := b.Build(1, 1)
	assert.True(t, strings.HasSuffix(first, "LIMIT 1 OFFSET 0"), first)
	assert.True(t, strings.HasSuffix(second, "LIMIT 1 OFFSET 1"), second)
}

func TestBuildTagFilter(t *testing.T) {
	b := builderFor(t, query.Filter{TagSlug: "noir"}, sqlbuilder.SQLite)
	sql, args := b.Build(15, 0)

	assert.Contains(t, sql, "JOIN posts_tags ON posts_tags.post_id = posts.id")
	assert.Contains(t, sql, "JOIN issues_tags ON issues_tags.issue_id = issues.id")
	assert.Contains(t, sql, "JOIN articles_tags ON articles_tags.article_id = articles.id")
	assert.Equal(t, []interface{}{
		"published", int64(7),
		"published", int64(7),
		int64(7),
	}, args)
}

func TestBuildAuthorFilter(t *testing.T) {
	b := builderFor(t, query.Filter{AuthorSlug: "marlowe"}, sqlbuilder.SQLite)
	sql, _ := b.Build(15, 0)

	assert.Equal(t, 1, strings.Count(sql, "UNION ALL"))
	assert.NotContains(t, sql, "FROM issues")
	assert.Contains(t, sql, "posts.author_id = ?")
	assert.Contains(t, sql, "articles.author_id = ?")
}

func TestBuildCount(t *testing.T) {
	b := builderFor(t, query.Filter{TagSlug: "noir"}, sqlbuilder.SQLite)
	sql, args := b.BuildCount()

	assert.True(t, strings.HasPrefix(sql, "SELECT COUNT(*) FROM ("))
	assert.Contains(t, sql, ") AS readables")
	assert.Equal(t, 2, strings.Count(sql, "UNION ALL"))
	assert.NotContains(t, sql, "ORDER BY")
	assert.NotContains(t, sql, "LIMIT")

	// Same predicate as the data query
	dataSQL, dataArgs := b.Build(15, 0)
	assert.Equal(t, dataArgs, args)
	for _, join := range []string{"posts_tags", "issues_tags", "articles_tags"} {
		assert.Equal(t, strings.Contains(dataSQL, join), strings.Contains(sql, join), join)
	}
}

func TestBuildPostgres(t *testing.T) {
	b := builderFor(t, query.Filter{TagSlug: "noir"}, sqlbuilder.PostgreSQL)
	sql, args := b.Build(15, 30)

	assert.Len(t, args, 5)
	assert.Contains(t, sql, "$1")
	assert.Contains(t, sql, "$5")
	assert.NotContains(t, sql, "?")
	assert.Contains(t, sql, "ORDER BY published_at IS NULL, published_at DESC")
	assert.Contains(t, sql, "LIMIT 15 OFFSET 30")
}

func TestEmpty(t *testing.T) {
	assert.False(t, builderFor(t, query.Filter{}, sqlbuilder.SQLite).Empty())
	assert.True(t, builderFor(t, query.Filter{TagSlug: "cozy"}, sqlbuilder.SQLite).Empty())
}
