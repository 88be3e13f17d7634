package query

import (
	"hardboiled/schema"

	"github.com/huandu/go-sqlbuilder"
)

// PublishedStatus is the only status visible in the feed
const PublishedStatus = "published"

// StatusFilter restricts rows to published ones. Tables without a status
// column, like articles, are not restricted.
type StatusFilter struct {
	Status string
}

func (f *StatusFilter) ApplyFilter(sb *sqlbuilder.SelectBuilder, t schema.Table) {
	if t.StatusColumn != "" {
		sb.Where(sb.Equal(t.Name+"."+t.StatusColumn, f.Status))
	}
}

func (f *StatusFilter) Includes(t schema.Table) bool {
	return true
}

// TagFilter restricts rows to those associated with a tag
type TagFilter struct {
	TagId int64
}

func (f *TagFilter) ApplyFilter(sb *sqlbuilder.SelectBuilder, t schema.Table) {
	sb.Join(t.TagTable, t.TagTable+"."+t.TagColumn+" = "+t.Name+"."+t.PrimaryKey)
	sb.Where(sb.Equal(t.TagTable+".tag_id", f.TagId))
}

func (f *TagFilter) Includes(t schema.Table) bool {
	return true
}

// AuthorFilter restricts rows to one author. Tables without an author
// column are left out of the query.
type AuthorFilter struct {
	AuthorId int64
}

func (f *AuthorFilter) ApplyFilter(sb *sqlbuilder.SelectBuilder, t schema.Table) {
	sb.Where(sb.Equal(t.Name+"."+t.AuthorColumn, f.AuthorId))
}

func (f *AuthorFilter) Includes(t schema.Table) bool {
	return t.HasAuthor()
}

var _ FilterStrategy = (*StatusFilter)(nil)
var _ FilterStrategy = (*TagFilter)(nil)
var _ FilterStrategy = (*AuthorFilter)(nil)
