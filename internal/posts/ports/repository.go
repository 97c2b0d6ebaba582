package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/philly/imageblog/internal/posts/domain"
)

// Repository errors - the canonical errors every implementation returns.
// Driver-specific "no rows" errors are translated to these.
var (
	// ErrPostNotFound is returned when a post cannot be found
	ErrPostNotFound = errors.New("post not found")
)

// PostRepository defines the interface for post persistence.
// Any error other than ErrPostNotFound is a storage failure.
type PostRepository interface {
	// Create saves a new post
	Create(ctx context.Context, post *domain.Post) error

	// FindByID retrieves a post by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)

	// List returns posts in creation order, filtered and paginated
	List(ctx context.Context, filter ListFilter) ([]*domain.Post, error)

	// Count returns the number of posts matching the filter's search term
	Count(ctx context.Context, filter ListFilter) (int, error)

	// Update merges the supplied fields and returns the stored result
	Update(ctx context.Context, id uuid.UUID, patch domain.Patch) (*domain.Post, error)

	// Delete removes a post permanently
	Delete(ctx context.Context, id uuid.UUID) error

	// Ping checks that the backing store is reachable
	Ping(ctx context.Context) error
}

// ListFilter contains search and pagination options for listing posts
type ListFilter struct {
	// Search is a case-insensitive substring matched against title and description
	Search string

	// Limit of zero means no limit
	Limit  int
	Offset int
}

// MaxListLimit caps page sizes requested by clients
const MaxListLimit = 100

// Paginate applies the filter's offset and limit to an already ordered slice.
// Used by stores that cannot page natively.
func Paginate[T any](items []T, filter ListFilter) []T {
	if filter.Offset >= len(items) {
		return []T{}
	}
	if filter.Offset > 0 {
		items = items[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(items) {
		items = items[:filter.Limit]
	}
	return items
}
