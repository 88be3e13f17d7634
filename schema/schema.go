// Package schema describes the tables that take part in the readables feed
package schema

import (
	"fmt"

	"hardboiled/models"

	"github.com/samber/lo"
)

// EntityKind names the kind of entity a foreign key points at
type EntityKind string

const (
	UserEntity  EntityKind = "user"
	IssueEntity EntityKind = "issue"
)

// TypeColumn is the literal per-branch column carrying the record type
const TypeColumn = "readable_type"

// Column is a shared output column. Tables that lack it select a typed NULL.
type Column struct {
	Name  string // alias in the union
	Field string // canonical output field
	Type  string // SQL type for the NULL placeholder

	// Unix seconds in storage, time.Time in records
	Timestamp bool
}

// Discriminant is a column only meaningful for one record type
type Discriminant struct {
	Column  string
	Type    models.RecordType
	SQLType string
}

// Relation maps an output field to the foreign key that materializes it
type Relation struct {
	Field  string
	Column string
	Kind   EntityKind
}

type Table struct {
	Name       string
	PrimaryKey string
	Type       models.RecordType

	// Shared column aliases this table supplies; the rest are NULL
	Columns []string

	Discriminant string
	Relations    []Relation

	// Status column restricted to "published"; tables without one are
	// always visible
	StatusColumn string

	TagTable  string
	TagColumn string

	// Empty when rows of this table have no author
	AuthorColumn string
}

func (t Table) Has(column string) bool {
	return lo.Contains(t.Columns, column)
}

func (t Table) HasAuthor() bool {
	return t.AuthorColumn != ""
}

func (t Table) Relation(column string) (Relation, bool) {
	return lo.Find(t.Relations, func(r Relation) bool { return r.Column == column })
}

// Registry is the static description of every participating table
type Registry struct {
	Columns       []Column
	Discriminants []Discriminant
	Tables        []Table
}

// ForeignKeys returns every relation column across all tables, deduplicated,
// in table order.
func (r *Registry) ForeignKeys() []string {
	var cols []string
	for _, t := range r.Tables {
		for _, rel := range t.Relations {
			cols = append(cols, rel.Column)
		}
	}
	return lo.Uniq(cols)
}

func (r *Registry) Table(typ models.RecordType) (Table, bool) {
	return lo.Find(r.Tables, func(t Table) bool { return t.Type == typ })
}

func (r *Registry) Column(name string) (Column, bool) {
	return lo.Find(r.Columns, func(c Column) bool { return c.Name == name })
}

// Validate checks that the registry can classify every row it produces
func (r *Registry) Validate() error {
	if len(r.Tables) == 0 {
		return fmt.Errorf("registry has no tables")
	}
	seenTypes := map[models.RecordType]bool{}
	seenDiscriminants := map[string]bool{}
	for _, t := range r.Tables {
		if seenTypes[t.Type] {
			return fmt.Errorf("record type %q registered twice", t.Type)
		}
		seenTypes[t.Type] = true

		d, ok := lo.Find(r.Discriminants, func(d Discriminant) bool { return d.Column == t.Discriminant })
		if !ok {
			return fmt.Errorf("table %s: unknown discriminant %q", t.Name, t.Discriminant)
		}
		if d.Type != t.Type {
			return fmt.Errorf("table %s: discriminant %q indicates %s", t.Name, d.Column, d.Type)
		}
		if seenDiscriminants[d.Column] {
			return fmt.Errorf("discriminant %q shared by more than one table", d.Column)
		}
		seenDiscriminants[d.Column] = true

		for _, c := range t.Columns {
			if _, ok := r.Column(c); !ok {
				return fmt.Errorf("table %s: unknown column %q", t.Name, c)
			}
		}
		if t.TagTable == "" || t.TagColumn == "" {
			return fmt.Errorf("table %s: missing tag association", t.Name)
		}
	}
	if len(seenDiscriminants) != len(r.Discriminants) {
		return fmt.Errorf("registry has discriminants without a table")
	}
	return nil
}

// Default is the registry for the posts, issues and articles tables
func Default() *Registry {
	return &Registry{
		Columns: []Column{
			{Name: "id", Field: "id", Type: "BIGINT"},
			{Name: "uuid", Field: "uuid", Type: "TEXT"},
			{Name: "title", Field: "title", Type: "TEXT"},
			{Name: "slug", Field: "slug", Type: "TEXT"},
			{Name: "image", Field: "image", Type: "TEXT"},
			{Name: "html", Field: "html", Type: "TEXT"},
			{Name: "series", Field: "series", Type: "TEXT"},
			{Name: "published_at", Field: "publishedAt", Type: "BIGINT", Timestamp: true},
			{Name: "updated_at", Field: "updatedAt", Type: "BIGINT", Timestamp: true},
		},
		Discriminants: []Discriminant{
			{Column: "featured", Type: models.PostType, SQLType: "BOOLEAN"},
			{Column: "article_length", Type: models.IssueType, SQLType: "BIGINT"},
			{Column: "article_num", Type: models.ArticleType, SQLType: "BIGINT"},
		},
		Tables: []Table{
			{
				Name:         "posts",
				PrimaryKey:   "id",
				Type:         models.PostType,
				Columns:      []string{"id", "uuid", "title", "slug", "image", "html", "published_at", "updated_at"},
				Discriminant: "featured",
				Relations: []Relation{
					{Field: "author", Column: "author_id", Kind: UserEntity},
				},
				StatusColumn: "status",
				TagTable:     "posts_tags",
				TagColumn:    "post_id",
				AuthorColumn: "author_id",
			},
			{
				Name:         "issues",
				PrimaryKey:   "id",
				Type:         models.IssueType,
				Columns:      []string{"id", "uuid", "title", "slug", "image", "html", "series", "published_at", "updated_at"},
				Discriminant: "article_length",
				Relations: []Relation{
					{Field: "publishedBy", Column: "published_by", Kind: UserEntity},
				},
				StatusColumn: "status",
				TagTable:     "issues_tags",
				TagColumn:    "issue_id",
			},
			{
				Name:         "articles",
				PrimaryKey:   "id",
				Type:         models.ArticleType,
				Columns:      []string{"id", "uuid", "title", "slug", "image", "html", "series", "published_at", "updated_at"},
				Discriminant: "article_num",
				Relations: []Relation{
					{Field: "author", Column: "author_id", Kind: UserEntity},
					{Field: "issue", Column: "issue_id", Kind: IssueEntity},
				},
				TagTable:     "articles_tags",
				TagColumn:    "article_id",
				AuthorColumn: "author_id",
			},
		},
	}
}
