package readables

import (
	"context"
	"fmt"

	"hardboiled/models"
	"hardboiled/schema"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Fetcher loads the entity a foreign key points at
type Fetcher func(ctx context.Context, id int64) (any, error)

// EntityReader is the fetch-by-id side of the store
type EntityReader interface {
	UserByID(ctx context.Context, id int64) (*models.User, error)
	IssueByID(ctx context.Context, id int64) (*models.Issue, error)
}

// FetchersFor returns a fetcher for every entity kind the registry refers to
func FetchersFor(store EntityReader) map[schema.EntityKind]Fetcher {
	return map[schema.EntityKind]Fetcher{
		schema.UserEntity: func(ctx context.Context, id int64) (any, error) {
			user, err := store.UserByID(ctx, id)
			if err != nil {
				return nil, err
			}
			return user, nil
		},
		schema.IssueEntity: func(ctx context.Context, id int64) (any, error) {
			issue, err := store.IssueByID(ctx, id)
			if err != nil {
				return nil, err
			}
			return issue, nil
		},
	}
}

// Resolver replaces raw foreign keys in records with the entities they
// point at. Nothing is cached between calls.
type Resolver struct {
	registry    *schema.Registry
	fetchers    map[schema.EntityKind]Fetcher
	concurrency int
}

func NewResolver(registry *schema.Registry, fetchers map[schema.EntityKind]Fetcher, concurrency int) *Resolver {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Resolver{
		registry:    registry,
		fetchers:    fetchers,
		concurrency: concurrency,
	}
}

type fetchTask struct {
	record   int
	relation schema.Relation
	id       int64
}

// Resolve fetches every relation of every record concurrently and waits for
// all of them. A failed fetch keeps the raw id and marks the field as
// unresolved; only cancellation of ctx fails the call.
func (r *Resolver) Resolve(ctx context.Context, records []models.Record) error {
	var tasks []fetchTask
	for i, record := range records {
		table, ok := r.registry.Table(record.Type)
		if !ok {
			continue
		}
		for _, rel := range table.Relations {
			id, ok := record.Fields[rel.Field].(int64)
			if !ok {
				continue
			}
			tasks = append(tasks, fetchTask{record: i, relation: rel, id: id})
		}
	}

	if len(tasks) == 0 {
		return nil
	}

	entities := make([]any, len(tasks))
	errs := make([]error, len(tasks))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, task := range tasks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			fetch, ok := r.fetchers[task.relation.Kind]
			if !ok {
				errs[i] = fmt.Errorf("no fetcher for %s", task.relation.Kind)
				return nil
			}
			entities[i], errs[i] = fetch(ctx, task.id)
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	// Records are only written after the barrier, so fetches never share a map
	for i, task := range tasks {
		record := &records[task.record]
		if errs[i] != nil {
			log.WithFields(log.Fields{
				"type":  record.Type,
				"field": task.relation.Field,
				"id":    task.id,
				"error": errs[i],
			}).Warn("Could not resolve relation")
			relationFailures.WithLabelValues(task.relation.Field).Inc()
			record.Unresolved = append(record.Unresolved, task.relation.Field)
			continue
		}
		record.Fields[task.relation.Field] = entities[i]
	}

	return nil
}
