package readables

import (
	"context"
	"strconv"
	"strings"

	"hardboiled/models"
	"hardboiled/query"
)

// ParsePage parses a page parameter. Anything but a positive integer is page 1.
func ParsePage(s string) int {
	page, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 1
	}
	return NormalizePage(page)
}

// ParseLimit parses a limit parameter, falling back to def
func ParseLimit(s string, def int) int {
	limit, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return NormalizeLimit(limit, def)
}

func NormalizePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

func NormalizeLimit(limit int, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}

// Paginate derives the pagination block. An empty feed is page 1 of 1;
// next and prev are only set when there is more than one page. Limits below
// one count as one.
func Paginate(page, limit, total int) models.Pagination {
	if limit < 1 {
		limit = 1
	}
	pages := (total + limit - 1) / limit
	if pages == 0 {
		pages = 1
	}

	p := models.Pagination{
		Page:  page,
		Limit: limit,
		Pages: pages,
		Total: total,
	}

	if pages > 1 {
		if page < pages {
			next := page + 1
			p.Next = &next
		}
		if page > 1 {
			prev := page - 1
			p.Prev = &prev
		}
	}

	return p
}

// count runs the count query mirroring the data query's predicate
func (e *Engine) count(ctx context.Context, builder *query.ReadablesQueryBuilder) (int, error) {
	sql, args := builder.BuildCount()

	var total int
	if err := e.querier.QueryRowContext(ctx, sql, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
