package models

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Content is a set of users, tags and readables to load into the store.
// It is decoded from TOML fixture files by the seed command.
type Content struct {
	Users    []NewUser    `toml:"users"`
	Tags     []NewTag     `toml:"tags"`
	Posts    []NewPost    `toml:"posts"`
	Issues   []NewIssue   `toml:"issues"`
	Articles []NewArticle `toml:"articles"`
}

type NewUser struct {
	Name    string  `toml:"name"`
	Slug    string  `toml:"slug"`
	Email   string  `toml:"email"`
	Image   *string `toml:"image"`
	Bio     *string `toml:"bio"`
	Website *string `toml:"website"`
}

type NewTag struct {
	Name        string  `toml:"name"`
	Slug        string  `toml:"slug"`
	Description *string `toml:"description"`
}

// Readable fields common to posts, issues and articles
type NewReadable struct {
	Title       string     `toml:"title"`
	Slug        string     `toml:"slug"`
	Html        string     `toml:"html"`
	Image       *string    `toml:"image"`
	PublishedAt *time.Time `toml:"published_at"`
	UpdatedAt   time.Time  `toml:"updated_at"`
	Tags        []string   `toml:"tags"` // tag slugs
}

type NewPost struct {
	NewReadable
	Featured bool   `toml:"featured"`
	Status   string `toml:"status"`
	Author   string `toml:"author"` // user slug
}

type NewIssue struct {
	NewReadable
	Series        *string `toml:"series"`
	ArticleLength int64   `toml:"article_length"`
	Status        string  `toml:"status"`
	PublishedBy   string  `toml:"published_by"` // user slug
}

type NewArticle struct {
	NewReadable
	Series     *string `toml:"series"`
	ArticleNum int64   `toml:"article_num"`
	Issue      string  `toml:"issue"`  // issue slug
	Author     string  `toml:"author"` // user slug
}

// LoadContent decodes a TOML fixture file
func LoadContent(path string) (Content, error) {
	var content Content
	if _, err := toml.DecodeFile(path, &content); err != nil {
		return Content{}, fmt.Errorf("error parsing fixture file: %w", err)
	}
	return content, nil
}
