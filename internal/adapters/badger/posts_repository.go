package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/philly/imageblog/internal/posts/domain"
	"github.com/philly/imageblog/internal/posts/ports"
)

const (
	postKeyPrefix    = "post:"
	maxUpdateRetries = 3
)

type postRecord struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	ImageKey    string    `json:"imageKey"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PostRepository implements ports.PostRepository on an embedded Badger store
type PostRepository struct {
	db *badger.DB
}

// NewPostRepository creates a new Badger-backed posts repository
func NewPostRepository(db *badger.DB) *PostRepository {
	return &PostRepository{db: db}
}

// Create stores a new post
func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	data, err := json.Marshal(toRecord(post))
	if err != nil {
		return fmt.Errorf("PostRepository.Create: marshal: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(postKey(post.ID), data)
	})
	if err != nil {
		return fmt.Errorf("PostRepository.Create: %w", err)
	}
	return nil
}

// FindByID retrieves a post by its ID
func (r *PostRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	var post *domain.Post
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		post, err = getPost(txn, id)
		return err
	})
	if err != nil {
		if errors.Is(err, ports.ErrPostNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("PostRepository.FindByID: %w", err)
	}
	return post, nil
}

// List returns posts in creation order, filtered and paginated
func (r *PostRepository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Post, error) {
	posts, err := r.matching(filter.Search)
	if err != nil {
		return nil, fmt.Errorf("PostRepository.List: %w", err)
	}
	return ports.Paginate(posts, filter), nil
}

// Count returns the number of posts matching the search term
func (r *PostRepository) Count(ctx context.Context, filter ports.ListFilter) (int, error) {
	posts, err := r.matching(filter.Search)
	if err != nil {
		return 0, fmt.Errorf("PostRepository.Count: %w", err)
	}
	return len(posts), nil
}

// Update applies the patch inside one transaction, retrying on write conflicts
func (r *PostRepository) Update(ctx context.Context, id uuid.UUID, patch domain.Patch) (*domain.Post, error) {
	var updated *domain.Post
	var err error
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		err = r.db.Update(func(txn *badger.Txn) error {
			post, err := getPost(txn, id)
			if err != nil {
				return err
			}
			post.Apply(patch)

			data, err := json.Marshal(toRecord(post))
			if err != nil {
				return fmt.Errorf("marshal: %w", err)
			}
			if err := txn.Set(postKey(id), data); err != nil {
				return err
			}
			updated = post
			return nil
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}

	if err != nil {
		if errors.Is(err, ports.ErrPostNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("PostRepository.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a post
func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		key := postKey(id)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ports.ErrPostNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
	if err != nil {
		if errors.Is(err, ports.ErrPostNotFound) {
			return err
		}
		return fmt.Errorf("PostRepository.Delete: %w", err)
	}
	return nil
}

// Ping reports whether the store is still open
func (r *PostRepository) Ping(ctx context.Context) error {
	if r.db.IsClosed() {
		return errors.New("badger store is closed")
	}
	return nil
}

// Helper functions

// matching scans every post and returns those matching search, oldest first.
func (r *PostRepository) matching(search string) ([]*domain.Post, error) {
	posts := make([]*domain.Post, 0)
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(postKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec postRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("unmarshal post %s: %w", it.Item().Key(), err)
			}
			post := fromRecord(rec)
			if post.Matches(search) {
				posts = append(posts, post)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID.String() < posts[j].ID.String()
		}
		return posts[i].CreatedAt.Before(posts[j].CreatedAt)
	})
	return posts, nil
}

func getPost(txn *badger.Txn, id uuid.UUID) (*domain.Post, error) {
	item, err := txn.Get(postKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ports.ErrPostNotFound
		}
		return nil, err
	}

	var rec postRecord
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal post: %w", err)
	}
	return fromRecord(rec), nil
}

func postKey(id uuid.UUID) []byte {
	return []byte(postKeyPrefix + id.String())
}

func toRecord(post *domain.Post) postRecord {
	return postRecord{
		ID:          post.ID,
		Title:       post.Title,
		Description: post.Description,
		Image:       post.Image,
		ImageKey:    post.ImageKey,
		CreatedAt:   post.CreatedAt,
	}
}

func fromRecord(rec postRecord) *domain.Post {
	return &domain.Post{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Image:       rec.Image,
		ImageKey:    rec.ImageKey,
		CreatedAt:   rec.CreatedAt.UTC(),
	}
}
