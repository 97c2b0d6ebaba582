package postgres

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/philly/imageblog/internal/posts/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "100%", want: `100\%`},
		{in: "snake_case", want: `snake\_case`},
		{in: `back\slash`, want: `back\\slash`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeLike(tt.in))
		})
	}
}

func TestApplyFilters(t *testing.T) {
	sb := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	t.Run("no search adds no clause", func(t *testing.T) {
		query, args, err := applyFilters(sb.Select("COUNT(*)").From("posts"), ports.ListFilter{}).ToSql()
		require.NoError(t, err)

		assert.Equal(t, "SELECT COUNT(*) FROM posts", query)
		assert.Empty(t, args)
	})

	t.Run("search matches title or description", func(t *testing.T) {
		query, args, err := applyFilters(sb.Select("COUNT(*)").From("posts"), ports.ListFilter{Search: "go_lang"}).ToSql()
		require.NoError(t, err)

		assert.Equal(t, "SELECT COUNT(*) FROM posts WHERE (title ILIKE $1 OR description ILIKE $2)", query)
		assert.Equal(t, []any{`%go\_lang%`, `%go\_lang%`}, args)
	})
}
