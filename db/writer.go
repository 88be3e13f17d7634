package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hardboiled/models"

	"github.com/google/uuid"
	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// Writer loads content into the store. It backs the seed command and test
// fixtures; editing single resources is not its job.
type Writer struct {
	db     *sql.DB
	driver Driver
}

func NewWriter(ctx context.Context, dsn string) (*Writer, error) {
	db, driver, err := connection(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Writer{db: db, driver: driver}, nil
}

func (writer *Writer) Close() error {
	return writer.db.Close()
}

// Seed inserts all content in one transaction, resolving slug references
// between the entities it creates.
func (writer *Writer) Seed(ctx context.Context, content models.Content) error {
	tx, err := writer.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin error: %w", err)
	}
	defer tx.Rollback()

	s := &seeder{
		tx:     tx,
		flavor: writer.driver.Flavor(),
		users:  map[string]int64{},
		tags:   map[string]int64{},
		issues: map[string]int64{},
	}

	for _, u := range content.Users {
		id, err := s.insert(ctx, "users", map[string]any{
			"uuid": uuid.NewString(), "name": u.Name, "slug": u.Slug, "email": u.Email,
			"image": u.Image, "bio": u.Bio, "website": u.Website,
		})
		if err != nil {
			return fmt.Errorf("insert user %s: %w", u.Slug, err)
		}
		s.users[u.Slug] = id
	}

	for _, t := range content.Tags {
		id, err := s.insert(ctx, "tags", map[string]any{
			"uuid": uuid.NewString(), "name": t.Name, "slug": t.Slug, "description": t.Description,
		})
		if err != nil {
			return fmt.Errorf("insert tag %s: %w", t.Slug, err)
		}
		s.tags[t.Slug] = id
	}

	for _, p := range content.Posts {
		values := s.readable(p.NewReadable)
		values["featured"] = p.Featured
		values["status"] = statusOrDraft(p.Status)
		values["author_id"] = s.ref(s.users, p.Author)

		id, err := s.insert(ctx, "posts", values)
		if err != nil {
			return fmt.Errorf("insert post %s: %w", p.Slug, err)
		}
		if err := s.tag(ctx, "posts_tags", "post_id", id, p.Tags); err != nil {
			return err
		}
	}

	for _, i := range content.Issues {
		values := s.readable(i.NewReadable)
		values["series"] = i.Series
		values["article_length"] = i.ArticleLength
		values["status"] = statusOrDraft(i.Status)
		values["published_by"] = s.ref(s.users, i.PublishedBy)

		id, err := s.insert(ctx, "issues", values)
		if err != nil {
			return fmt.Errorf("insert issue %s: %w", i.Slug, err)
		}
		s.issues[i.Slug] = id
		if err := s.tag(ctx, "issues_tags", "issue_id", id, i.Tags); err != nil {
			return err
		}
	}

	for _, a := range content.Articles {
		issueId, ok := s.issues[a.Issue]
		if !ok {
			return fmt.Errorf("article %s: unknown issue %q", a.Slug, a.Issue)
		}
		values := s.readable(a.NewReadable)
		values["series"] = a.Series
		values["article_num"] = a.ArticleNum
		values["issue_id"] = issueId
		values["author_id"] = s.ref(s.users, a.Author)

		id, err := s.insert(ctx, "articles", values)
		if err != nil {
			return fmt.Errorf("insert article %s: %w", a.Slug, err)
		}
		if err := s.tag(ctx, "articles_tags", "article_id", id, a.Tags); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit error: %w", err)
	}

	log.WithFields(log.Fields{
		"users":    len(content.Users),
		"tags":     len(content.Tags),
		"posts":    len(content.Posts),
		"issues":   len(content.Issues),
		"articles": len(content.Articles),
	}).Info("Seeded content")

	return nil
}

type seeder struct {
	tx     *sql.Tx
	flavor sqlbuilder.Flavor
	users  map[string]int64
	tags   map[string]int64
	issues map[string]int64
}

func (s *seeder) insert(ctx context.Context, table string, values map[string]any) (int64, error) {
	cols := make([]string, 0, len(values))
	vals := make([]interface{}, 0, len(values))
	for col, val := range values {
		cols = append(cols, col)
		vals = append(vals, val)
	}

	ib := s.flavor.NewInsertBuilder()
	ib.InsertInto(table).Cols(cols...).Values(vals...)
	ib.SQL("RETURNING id")
	query, args := ib.Build()

	var id int64
	if err := s.tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *seeder) tag(ctx context.Context, table, column string, id int64, slugs []string) error {
	for _, slug := range slugs {
		tagId, ok := s.tags[slug]
		if !ok {
			return fmt.Errorf("%s %d: unknown tag %q", table, id, slug)
		}
		ib := s.flavor.NewInsertBuilder()
		query, args := ib.InsertInto(table).Cols(column, "tag_id").Values(id, tagId).Build()
		if _, err := s.tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}

func (s *seeder) readable(r models.NewReadable) map[string]any {
	updatedAt := r.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	var publishedAt *int64
	if r.PublishedAt != nil {
		ts := r.PublishedAt.Unix()
		publishedAt = &ts
	}

	return map[string]any{
		"uuid":         uuid.NewString(),
		"title":        r.Title,
		"slug":         r.Slug,
		"html":         r.Html,
		"image":        r.Image,
		"published_at": publishedAt,
		"updated_at":   updatedAt.Unix(),
	}
}

// ref resolves a slug created earlier in the same seed, nil when empty or unknown
func (s *seeder) ref(ids map[string]int64, slug string) *int64 {
	id, ok := ids[slug]
	if slug == "" || !ok {
		return nil
	}
	return &id
}

func statusOrDraft(status string) string {
	if status == "" {
		return "draft"
	}
	return status
}
