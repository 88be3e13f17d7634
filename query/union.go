package query

import (
	"fmt"

	"hardboiled/schema"

	"github.com/huandu/go-sqlbuilder"
	"github.com/samber/lo"
)

// ReadablesQueryBuilder builds the UNION ALL data query and its count query
// over every table of the registry accepted by the predicate
type ReadablesQueryBuilder struct {
	registry  *schema.Registry
	predicate *Predicate
	flavor    sqlbuilder.Flavor
}

func NewReadablesQueryBuilder(registry *schema.Registry, predicate *Predicate, flavor sqlbuilder.Flavor) *ReadablesQueryBuilder {
	return &ReadablesQueryBuilder{
		registry:  registry,
		predicate: predicate,
		flavor:    flavor,
	}
}

// Columns returns the result columns of the data query in select order
func (b *ReadablesQueryBuilder) Columns() []string {
	cols := []string{schema.TypeColumn}
	cols = append(cols, lo.Map(b.registry.Columns, func(c schema.Column, _ int) string { return c.Name })...)
	cols = append(cols, lo.Map(b.registry.Discriminants, func(d schema.Discriminant, _ int) string { return d.Column })...)
	cols = append(cols, b.registry.ForeignKeys()...)
	return cols
}

// Empty reports whether no table can satisfy the predicate
func (b *ReadablesQueryBuilder) Empty() bool {
	return b.predicate.NotFound || len(b.predicate.Tables(b.registry)) == 0
}

func (b *ReadablesQueryBuilder) branchColumns(t schema.Table) []string {
	cols := []string{fmt.Sprintf("'%s' AS %s", t.Type, schema.TypeColumn)}

	for _, c := range b.registry.Columns {
		if t.Has(c.Name) {
			cols = append(cols, qualified(t.Name, c.Name))
		} else {
			cols = append(cols, typedNull(c.Type, c.Name))
		}
	}

	for _, d := range b.registry.Discriminants {
		if t.Discriminant == d.Column {
			cols = append(cols, qualified(t.Name, d.Column))
		} else {
			cols = append(cols, typedNull(d.SQLType, d.Column))
		}
	}

	for _, fk := range b.registry.ForeignKeys() {
		if _, ok := t.Relation(fk); ok {
			cols = append(cols, qualified(t.Name, fk))
		} else {
			cols = append(cols, typedNull("BIGINT", fk))
		}
	}

	return cols
}

func (b *ReadablesQueryBuilder) branch(t schema.Table, cols ...string) *sqlbuilder.SelectBuilder {
	sb := b.flavor.NewSelectBuilder()
	sb.Select(cols...).From(t.Name)
	b.predicate.Apply(sb, t)
	return sb
}

func (b *ReadablesQueryBuilder) union(branch func(t schema.Table) sqlbuilder.Builder) *sqlbuilder.UnionBuilder {
	tables := b.predicate.Tables(b.registry)
	branches := lo.Map(tables, func(t schema.Table, _ int) sqlbuilder.Builder { return branch(t) })

	ub := b.flavor.NewUnionBuilder()
	ub.UnionAll(branches...)
	return ub
}

// Build returns the paginated data query. Ordering and pagination apply to
// the union as a whole, so a page can mix record types. They sit on an outer
// SELECT since the union builder drops OFFSET for some flavors.
func (b *ReadablesQueryBuilder) Build(limit int, offset int) (string, []interface{}) {
	ub := b.union(func(t schema.Table) sqlbuilder.Builder {
		return b.branch(t, b.branchColumns(t)...)
	})

	sb := b.flavor.NewSelectBuilder()
	sb.Select("*").From(sb.BuilderAs(ub, "readables"))

	// Unpublished rows sort last on every driver. Type and id keep the order
	// total so pages never overlap on ties.
	sb.OrderBy("published_at IS NULL", "published_at DESC", "updated_at DESC", schema.TypeColumn+" ASC", "id DESC")
	sb.Limit(limit)
	sb.Offset(offset)

	return sb.Build()
}

// BuildCount returns a query counting the rows the data query can page over
func (b *ReadablesQueryBuilder) BuildCount() (string, []interface{}) {
	ub := b.union(func(t schema.Table) sqlbuilder.Builder {
		return b.branch(t, qualified(t.Name, t.PrimaryKey))
	})

	cb := b.flavor.NewSelectBuilder()
	cb.Select("COUNT(*)").From(cb.BuilderAs(ub, "readables"))

	return cb.Build()
}

func qualified(table, column string) string {
	return table + "." + column + " AS " + column
}

func typedNull(sqlType, alias string) string {
	return "CAST(NULL AS " + sqlType + ") AS " + alias
}
