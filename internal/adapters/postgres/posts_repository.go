package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/philly/imageblog/internal/platform/postgres"
	"github.com/philly/imageblog/internal/posts/domain"
	"github.com/philly/imageblog/internal/posts/ports"
)

var postColumns = []string{"id", "title", "description", "image", "image_key", "created_at"}

// PostRepository implements ports.PostRepository using PostgreSQL
type PostRepository struct {
	postgres.BaseRepository // Embed the base repository for common functionality
}

// NewPostRepository creates a new PostgreSQL posts repository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{
		BaseRepository: postgres.NewBaseRepository(db),
	}
}

// Create inserts a new post into the database
func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	query, args, err := r.SB.
		Insert("posts").
		Columns(postColumns...).
		Values(
			pgtype.UUID{Bytes: post.ID, Valid: true},
			post.Title,
			post.Description,
			post.Image,
			post.ImageKey,
			pgtype.Timestamptz{Time: post.CreatedAt, Valid: true},
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("PostRepository.Create: build query: %w", err)
	}

	if _, err := r.DB.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("PostRepository.Create: %w", err)
	}

	return nil
}

// FindByID retrieves a post by its ID
func (r *PostRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	query, args, err := r.SB.
		Select(postColumns...).
		From("posts").
		Where(sq.Eq{"id": pgtype.UUID{Bytes: id, Valid: true}}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("PostRepository.FindByID: build query: %w", err)
	}

	post, err := scanPost(r.DB.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrPostNotFound
		}
		return nil, fmt.Errorf("PostRepository.FindByID: %w", err)
	}

	return post, nil
}

// List retrieves posts in creation order
func (r *PostRepository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Post, error) {
	qb := applyFilters(r.SB.Select(postColumns...).From("posts"), filter).
		OrderBy("created_at ASC", "id ASC")

	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		qb = qb.Offset(uint64(filter.Offset))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("PostRepository.List: build query: %w", err)
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("PostRepository.List: %w", err)
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("PostRepository.List: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("PostRepository.List: rows error: %w", err)
	}

	return posts, nil
}

// Count returns the total number of posts matching the filter
func (r *PostRepository) Count(ctx context.Context, filter ports.ListFilter) (int, error) {
	query, args, err := applyFilters(r.SB.Select("COUNT(*)").From("posts"), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("PostRepository.Count: build query: %w", err)
	}

	var count int
	if err := r.DB.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("PostRepository.Count: %w", err)
	}

	return count, nil
}

// Update applies the patch in a single statement and returns the stored row
func (r *PostRepository) Update(ctx context.Context, id uuid.UUID, patch domain.Patch) (*domain.Post, error) {
	if patch.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	ub := r.SB.Update("posts")
	if patch.Title != nil {
		ub = ub.Set("title", *patch.Title)
	}
	if patch.Description != nil {
		ub = ub.Set("description", *patch.Description)
	}
	if patch.Image != nil {
		ub = ub.Set("image", *patch.Image)
		imageKey := ""
		if patch.ImageKey != nil {
			imageKey = *patch.ImageKey
		}
		ub = ub.Set("image_key", imageKey)
	}

	query, args, err := ub.
		Where(sq.Eq{"id": pgtype.UUID{Bytes: id, Valid: true}}).
		Suffix("RETURNING " + strings.Join(postColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("PostRepository.Update: build query: %w", err)
	}

	post, err := scanPost(r.DB.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrPostNotFound
		}
		return nil, fmt.Errorf("PostRepository.Update: %w", err)
	}

	return post, nil
}

// Delete removes a post from the database
func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.SB.
		Delete("posts").
		Where(sq.Eq{"id": pgtype.UUID{Bytes: id, Valid: true}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("PostRepository.Delete: build query: %w", err)
	}

	result, err := r.DB.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("PostRepository.Delete: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrPostNotFound
	}

	return nil
}

// Helper methods

// applyFilters adds the case-insensitive search over title and description
func applyFilters(qb sq.SelectBuilder, filter ports.ListFilter) sq.SelectBuilder {
	if filter.Search == "" {
		return qb
	}
	pattern := "%" + escapeLike(filter.Search) + "%"
	return qb.Where(sq.Or{
		sq.ILike{"title": pattern},
		sq.ILike{"description": pattern},
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in user input match literally
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// scanPost scans a single post from a row
func scanPost(row pgx.Row) (*domain.Post, error) {
	var post domain.Post
	var idBytes pgtype.UUID

	err := row.Scan(
		&idBytes,
		&post.Title,
		&post.Description,
		&post.Image,
		&post.ImageKey,
		&post.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scanPost: %w", err)
	}

	post.ID = uuid.UUID(idBytes.Bytes)
	post.CreatedAt = post.CreatedAt.UTC()

	return &post, nil
}
