package models

import (
	"encoding/json"
	"time"
)

// RecordType identifies which table a readable row came from
type RecordType string

const (
	PostType    RecordType = "post"
	IssueType   RecordType = "issue"
	ArticleType RecordType = "article"
)

// User is the public projection of an author. Email is never loaded.
type User struct {
	Id      int64   `json:"id"`
	Uuid    string  `json:"uuid"`
	Name    string  `json:"name"`
	Slug    string  `json:"slug"`
	Image   *string `json:"image"`
	Bio     *string `json:"bio"`
	Website *string `json:"website"`
}

type Tag struct {
	Id          int64   `json:"id"`
	Uuid        string  `json:"uuid"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
}

// Issue is the materialized parent of an article
type Issue struct {
	Id            int64      `json:"id"`
	Uuid          string     `json:"uuid"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Image         *string    `json:"image"`
	Series        *string    `json:"series"`
	ArticleLength int64      `json:"articleLength"`
	Status        string     `json:"status"`
	PublishedAt   *time.Time `json:"publishedAt"`
}

// Record is one normalized row of the readables feed
type Record struct {
	Type   RecordType
	Fields map[string]any
	// Relation fields that could not be materialized and still hold the raw id
	Unresolved []string
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+2)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["type"] = r.Type
	if len(r.Unresolved) > 0 {
		out["unresolved"] = r.Unresolved
	}
	return json.Marshal(out)
}

type Pagination struct {
	Page  int  `json:"page"`
	Limit int  `json:"limit"`
	Pages int  `json:"pages"`
	Total int  `json:"total"`
	Next  *int `json:"next"`
	Prev  *int `json:"prev"`
}

// Filters describes the filter entity a page was restricted to
type Filters struct {
	Tag    *Tag  `json:"tag,omitempty"`
	Author *User `json:"author,omitempty"`
}

type PageResult struct {
	Records    []Record   `json:"readables"`
	Pagination Pagination `json:"pagination"`
	Filters    Filters    `json:"filters"`

	// Set when a filter slug was requested but did not resolve
	filterRequested bool
}

// MarkFilterRequested records that the page was asked for with a filter
func (p *PageResult) MarkFilterRequested() {
	p.filterRequested = true
}

// FilterNotFound reports whether a filter was requested but its entity does
// not exist. Callers use this to answer 404.
func (p *PageResult) FilterNotFound() bool {
	return p.filterRequested && p.Filters.Tag == nil && p.Filters.Author == nil
}
