package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hardboiled/models"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// ErrNotFound is returned by entity lookups that match no row
var ErrNotFound = errors.New("not found")

// Reader executes the read-only queries of the feed
type Reader struct {
	db     *sql.DB
	driver Driver
}

// NewReader opens the database behind dsn. See DriverFor for the DSN forms.
func NewReader(ctx context.Context, dsn string) (*Reader, error) {
	db, driver, err := connection(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Reader{db: db, driver: driver}, nil
}

func (reader *Reader) Close() error {
	return reader.db.Close()
}

func (reader *Reader) Flavor() sqlbuilder.Flavor {
	return reader.driver.Flavor()
}

func (reader *Reader) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	log.WithFields(log.Fields{
		"sql":  query,
		"args": args,
	}).Debug("Executing query")

	return reader.db.QueryContext(ctx, query, args...)
}

func (reader *Reader) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	log.WithFields(log.Fields{
		"sql":  query,
		"args": args,
	}).Debug("Executing query")

	return reader.db.QueryRowContext(ctx, query, args...)
}

func (reader *Reader) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

var userColumns = []string{"id", "uuid", "name", "slug", "image", "bio", "website"}

func (reader *Reader) user(ctx context.Context, field string, value any) (*models.User, error) {
	sb := reader.Flavor().NewSelectBuilder()
	sb.Select(userColumns...).From("users").Where(sb.Equal(field, value)).Limit(1)
	query, args := sb.Build()

	var user models.User
	err := reader.db.QueryRowContext(ctx, query, args...).Scan(
		&user.Id, &user.Uuid, &user.Name, &user.Slug, &user.Image, &user.Bio, &user.Website,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s=%v: %w", field, value, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return &user, nil
}

func (reader *Reader) UserByID(ctx context.Context, id int64) (*models.User, error) {
	return reader.user(ctx, "id", id)
}

func (reader *Reader) UserBySlug(ctx context.Context, slug string) (*models.User, error) {
	return reader.user(ctx, "slug", slug)
}

func (reader *Reader) TagBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	sb := reader.Flavor().NewSelectBuilder()
	sb.Select("id", "uuid", "name", "slug", "description").From("tags").Where(sb.Equal("slug", slug)).Limit(1)
	query, args := sb.Build()

	var tag models.Tag
	err := reader.db.QueryRowContext(ctx, query, args...).Scan(&tag.Id, &tag.Uuid, &tag.Name, &tag.Slug, &tag.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tag %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return &tag, nil
}

func (reader *Reader) IssueByID(ctx context.Context, id int64) (*models.Issue, error) {
	sb := reader.Flavor().NewSelectBuilder()
	sb.Select("id", "uuid", "title", "slug", "image", "series", "article_length", "status", "published_at").
		From("issues").
		Where(sb.Equal("id", id)).
		Limit(1)
	query, args := sb.Build()

	var issue models.Issue
	var publishedAt sql.NullInt64
	err := reader.db.QueryRowContext(ctx, query, args...).Scan(
		&issue.Id, &issue.Uuid, &issue.Title, &issue.Slug, &issue.Image, &issue.Series,
		&issue.ArticleLength, &issue.Status, &publishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("issue %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	if publishedAt.Valid {
		t := time.Unix(publishedAt.Int64, 0).UTC()
		issue.PublishedAt = &t
	}
	return &issue, nil
}
