package query

import (
	"context"
	"fmt"

	"hardboiled/models"
	"hardboiled/schema"

	"github.com/huandu/go-sqlbuilder"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// Predicate is a compiled feed filter. The same value is applied to the data
// query and the count query.
type Predicate struct {
	Filter  Filter
	filters []FilterStrategy

	// Resolved filter entities, nil when not requested or not found
	Tag    *models.Tag
	Author *models.User

	// NotFound is set when a slug was requested but did not resolve
	NotFound bool
}

// Compile resolves the requested filter slug and builds the per-table
// filters. Unknown slugs yield a NotFound predicate, not an error.
func Compile(ctx context.Context, store EntityStore, filter Filter) (*Predicate, error) {
	p := &Predicate{
		Filter:  filter,
		filters: []FilterStrategy{&StatusFilter{Status: PublishedStatus}},
	}

	switch {
	case filter.TagSlug != "":
		tag, err := store.TagBySlug(ctx, filter.TagSlug)
		if err != nil {
			if store.IsNotFound(err) {
				log.WithField("tag", filter.TagSlug).Info("Tag filter did not resolve")
				p.NotFound = true
				return p, nil
			}
			return nil, fmt.Errorf("resolve tag %q: %w", filter.TagSlug, err)
		}
		p.Tag = tag
		p.filters = append(p.filters, &TagFilter{TagId: tag.Id})

	case filter.AuthorSlug != "":
		author, err := store.UserBySlug(ctx, filter.AuthorSlug)
		if err != nil {
			if store.IsNotFound(err) {
				log.WithField("author", filter.AuthorSlug).Info("Author filter did not resolve")
				p.NotFound = true
				return p, nil
			}
			return nil, fmt.Errorf("resolve author %q: %w", filter.AuthorSlug, err)
		}
		p.Author = author
		p.filters = append(p.filters, &AuthorFilter{AuthorId: author.Id})
	}

	return p, nil
}

// Includes reports whether every filter accepts table t
func (p *Predicate) Includes(t schema.Table) bool {
	return lo.EveryBy(p.filters, func(f FilterStrategy) bool { return f.Includes(t) })
}

// Apply adds every filter for table t to sb
func (p *Predicate) Apply(sb *sqlbuilder.SelectBuilder, t schema.Table) {
	for _, f := range p.filters {
		f.ApplyFilter(sb, t)
	}
}

// Tables returns the registry tables taking part in the filtered query
func (p *Predicate) Tables(reg *schema.Registry) []schema.Table {
	return lo.Filter(reg.Tables, func(t schema.Table, _ int) bool { return p.Includes(t) })
}
