// Package readables aggregates posts, issues and articles into one
// reverse-chronological, paginated feed.
package readables

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"hardboiled/config"
	"hardboiled/models"
	"hardboiled/query"
	"hardboiled/schema"

	"github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Querier executes the composed feed queries
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Flavor() sqlbuilder.Flavor
}

// Store is everything the engine reads from
type Store interface {
	Querier
	query.EntityStore
	EntityReader
}

type Engine struct {
	registry   *schema.Registry
	store      Store
	querier    Querier
	classifier *Classifier
	resolver   *Resolver
	cfg        config.Feed
}

func New(registry *schema.Registry, store Store, cfg config.Feed) (*Engine, error) {
	if err := registry.Validate(); err != nil {
		return nil, err
	}
	if cfg.DefaultLimit < 1 {
		cfg.DefaultLimit = config.Default().Feed.DefaultLimit
	}
	return &Engine{
		registry:   registry,
		store:      store,
		querier:    store,
		classifier: NewClassifier(registry),
		resolver:   NewResolver(registry, FetchersFor(store), cfg.RelationConcurrency),
		cfg:        cfg,
	}, nil
}

// GetFeedPage returns one fully resolved page of the feed. It fails only
// when a required query fails or a row cannot be classified; an unknown
// filter slug gives a valid empty page.
func (e *Engine) GetFeedPage(ctx context.Context, filter query.Filter, page int, limit int) (*models.PageResult, error) {
	start := time.Now()
	page = NormalizePage(page)
	limit = NormalizeLimit(limit, e.cfg.DefaultLimit)
	if e.cfg.MaxLimit > 0 && limit > e.cfg.MaxLimit {
		limit = e.cfg.MaxLimit
	}

	feedRequests.WithLabelValues(filter.Kind()).Inc()

	// The filter id is needed by both queries, so it resolves first
	predicate, err := query.Compile(ctx, e.store, filter)
	if err != nil {
		return nil, storeError("resolve filter", err)
	}

	result := &models.PageResult{
		Records: []models.Record{},
		Filters: models.Filters{Tag: predicate.Tag, Author: predicate.Author},
	}
	if !filter.Empty() {
		result.MarkFilterRequested()
	}

	builder := query.NewReadablesQueryBuilder(e.registry, predicate, e.querier.Flavor())
	if builder.Empty() {
		result.Pagination = Paginate(page, limit, 0)
		return result, nil
	}

	var total int
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		timer := time.Now()
		n, err := e.count(gctx, builder)
		feedQueryDuration.WithLabelValues("count").Observe(time.Since(timer).Seconds())
		if err != nil {
			return storeError("count readables", err)
		}
		total = n
		return nil
	})

	g.Go(func() error {
		records, err := e.records(gctx, builder, limit, limit*(page-1))
		if err != nil {
			return err
		}
		result.Records = records
		return nil
	})

	if err := g.Wait(); err != nil {
		log.WithFields(log.Fields{
			"filter": filter.Kind(),
			"page":   page,
			"limit":  limit,
			"error":  err,
		}).Error("Error getting readables page")
		return nil, err
	}

	result.Pagination = Paginate(page, limit, total)

	log.WithFields(log.Fields{
		"filter":  filter.Kind(),
		"page":    page,
		"limit":   limit,
		"total":   total,
		"records": len(result.Records),
		"latency": time.Since(start),
	}).Info("Got readables page")

	return result, nil
}

func (e *Engine) records(ctx context.Context, builder *query.ReadablesQueryBuilder, limit, offset int) ([]models.Record, error) {
	stmt, args := builder.Build(limit, offset)

	timer := time.Now()
	rows, err := e.querier.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, storeError("query readables", err)
	}
	records, err := e.classifier.ClassifyRows(rows)
	rows.Close()
	feedQueryDuration.WithLabelValues("data").Observe(time.Since(timer).Seconds())

	if err != nil {
		var classErr *ClassificationError
		if errors.As(err, &classErr) {
			log.WithFields(log.Fields{
				"sql":   stmt,
				"error": err,
			}).Error("Readable row could not be classified")
			return nil, err
		}
		return nil, storeError("read readables", err)
	}

	if err := e.resolver.Resolve(ctx, records); err != nil {
		return nil, err
	}

	return records, nil
}
