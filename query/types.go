package query

import (
	"context"

	"hardboiled/models"
	"hardboiled/schema"

	"github.com/huandu/go-sqlbuilder"
)

// FilterStrategy adds JOIN and WHERE conditions to one branch of the union
type FilterStrategy interface {
	// ApplyFilter adds filter conditions for table t to the query builder
	ApplyFilter(sb *sqlbuilder.SelectBuilder, t schema.Table)
	// Includes reports whether table t can take part in the filtered query
	Includes(t schema.Table) bool
}

// EntityStore resolves filter slugs. Lookups that match nothing return an
// error for which IsNotFound reports true.
type EntityStore interface {
	TagBySlug(ctx context.Context, slug string) (*models.Tag, error)
	UserBySlug(ctx context.Context, slug string) (*models.User, error)
	IsNotFound(err error) bool
}

// Filter is the filter requested by the caller. At most one slug is used.
type Filter struct {
	TagSlug    string
	AuthorSlug string
}

func (f Filter) Empty() bool {
	return f.TagSlug == "" && f.AuthorSlug == ""
}

// Kind names the filter for logs and metrics
func (f Filter) Kind() string {
	switch {
	case f.TagSlug != "":
		return "tag"
	case f.AuthorSlug != "":
		return "author"
	default:
		return "none"
	}
}
