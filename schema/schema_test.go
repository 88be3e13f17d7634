package schema_test

import (
	"testing"

	"hardboiled/models"
	"hardboiled/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryIsValid(t *testing.T) {
	assert.NoError(t, schema.Default().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *schema.Registry)
		errMsg string
	}{
		{
			name:   "no tables",
			mutate: func(r *schema.Registry) { r.Tables = nil },
			errMsg: "registry has no tables",
		},
		{
			name:   "duplicate record type",
			mutate: func(r *schema.Registry) { r.Tables[1].Type = models.PostType },
			errMsg: `record type "post" registered twice`,
		},
		{
			name:   "unknown discriminant",
			mutate: func(r *schema.Registry) { r.Tables[0].Discriminant = "pinned" },
			errMsg: `unknown discriminant "pinned"`,
		},
		{
			name:   "discriminant of another type",
			mutate: func(r *schema.Registry) { r.Tables[0].Discriminant = "article_num" },
			errMsg: `discriminant "article_num" indicates article`,
		},
		{
			name:   "unknown shared column",
			mutate: func(r *schema.Registry) { r.Tables[2].Columns = append(r.Tables[2].Columns, "subtitle") },
			errMsg: `unknown column "subtitle"`,
		},
		{
			name:   "missing tag association",
			mutate: func(r *schema.Registry) { r.Tables[1].TagTable = "" },
			errMsg: "missing tag association",
		},
		{
			name: "orphan discriminant",
			mutate: func(r *schema.Registry) {
				r.Discriminants = append(r.Discriminants, schema.Discriminant{Column: "episode", Type: "podcast"})
			},
			errMsg: "discriminants without a table",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := schema.Default()
			tt.mutate(r)
			err := r.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestForeignKeys(t *testing.T) {
	assert.Equal(t, []string{"author_id", "published_by", "issue_id"}, schema.Default().ForeignKeys())
}

func TestTableLookups(t *testing.T) {
	r := schema.Default()

	posts, ok := r.Table(models.PostType)
	require.True(t, ok)
	assert.Equal(t, "posts", posts.Name)
	assert.True(t, posts.HasAuthor())
	assert.False(t, posts.Has("series"))

	issues, ok := r.Table(models.IssueType)
	require.True(t, ok)
	assert.False(t, issues.HasAuthor())
	rel, ok := issues.Relation("published_by")
	require.True(t, ok)
	assert.Equal(t, "publishedBy", rel.Field)
	assert.Equal(t, schema.UserEntity, rel.Kind)

	_, ok = r.Table("podcast")
	assert.False(t, ok)
}
