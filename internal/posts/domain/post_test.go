package domain_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/philly/imageblog/internal/posts/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestNewPost(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		image       string
		wantErr     error
	}{
		{name: "valid post", title: "Hi", description: "World is nice", image: "https://cdn/x.jpg"},
		{name: "trims whitespace", title: "  Hi  ", description: " World ", image: "https://cdn/x.jpg"},
		{name: "missing title", title: "   ", description: "World", image: "https://cdn/x.jpg", wantErr: domain.ErrTitleRequired},
		{name: "title too long", title: strings.Repeat("a", 101), description: "World", image: "https://cdn/x.jpg", wantErr: domain.ErrTitleTooLong},
		{name: "missing description", title: "Hi", description: "", image: "https://cdn/x.jpg", wantErr: domain.ErrDescriptionRequired},
		{name: "description too long", title: "Hi", description: strings.Repeat("d", 5001), image: "https://cdn/x.jpg", wantErr: domain.ErrDescriptionTooLong},
		{name: "missing image", title: "Hi", description: "World", image: "", wantErr: domain.ErrImageRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post, err := domain.NewPost(tt.title, tt.description, tt.image, "key")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, post)
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, post.ID)
			assert.Equal(t, strings.TrimSpace(tt.title), post.Title)
			assert.Equal(t, strings.TrimSpace(tt.description), post.Description)
			assert.Equal(t, tt.image, post.Image)
			assert.Equal(t, "key", post.ImageKey)
			assert.False(t, post.CreatedAt.IsZero())
		})
	}
}

func TestNewPost_TitleLengthCountsRunes(t *testing.T) {
	_, err := domain.NewPost(strings.Repeat("é", 100), "desc", "https://cdn/x.jpg", "")
	assert.NoError(t, err)
}

func TestNewPost_UniqueIDs(t *testing.T) {
	seen := make(map[uuid.UUID]bool)
	for i := 0; i < 100; i++ {
		post, err := domain.NewPost("t", "d", "https://cdn/x.jpg", "")
		require.NoError(t, err)
		require.False(t, seen[post.ID])
		seen[post.ID] = true
	}
}

func TestPatchApply_OnlySuppliedFields(t *testing.T) {
	post, err := domain.NewPost("Old", "Old description", "https://cdn/old.jpg", "old-key")
	require.NoError(t, err)
	id, created := post.ID, post.CreatedAt

	post.Apply(domain.Patch{Title: ptr("New")})

	assert.Equal(t, "New", post.Title)
	assert.Equal(t, "Old description", post.Description)
	assert.Equal(t, "https://cdn/old.jpg", post.Image)
	assert.Equal(t, "old-key", post.ImageKey)
	assert.Equal(t, id, post.ID)
	assert.Equal(t, created, post.CreatedAt)
}

func TestPatchApply_ImageReplacesKey(t *testing.T) {
	post, err := domain.NewPost("t", "d", "https://cdn/old.jpg", "old-key")
	require.NoError(t, err)

	post.Apply(domain.Patch{Image: ptr("https://cdn/new.jpg"), ImageKey: ptr("new-key")})
	assert.Equal(t, "https://cdn/new.jpg", post.Image)
	assert.Equal(t, "new-key", post.ImageKey)

	post.Apply(domain.Patch{Image: ptr("https://elsewhere/x.jpg")})
	assert.Empty(t, post.ImageKey)
}

func TestPatchValidate(t *testing.T) {
	assert.NoError(t, domain.Patch{}.Validate())
	assert.True(t, domain.Patch{}.IsEmpty())
	assert.ErrorIs(t, domain.Patch{Title: ptr("")}.Validate(), domain.ErrTitleRequired)
	assert.ErrorIs(t, domain.Patch{Description: ptr(" ")}.Validate(), domain.ErrDescriptionRequired)
	assert.ErrorIs(t, domain.Patch{Image: ptr("")}.Validate(), domain.ErrImageRequired)
	assert.False(t, domain.Patch{Description: ptr("x")}.IsEmpty())
}

func TestMatches(t *testing.T) {
	post := &domain.Post{Title: "Hiking Trip", Description: "Mountains and LAKES"}

	assert.True(t, post.Matches(""))
	assert.True(t, post.Matches("hiking"))
	assert.True(t, post.Matches("lakes"))
	assert.False(t, post.Matches("beach"))
}
