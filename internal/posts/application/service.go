package application

import (
	"context"
	"errors"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/philly/imageblog/internal/platform/apperror"
	"github.com/philly/imageblog/internal/platform/eventbus"
	"github.com/philly/imageblog/internal/platform/events"
	"github.com/philly/imageblog/internal/platform/logger"
	"github.com/philly/imageblog/internal/platform/validator"
	"github.com/philly/imageblog/internal/posts/domain"
	"github.com/philly/imageblog/internal/posts/ports"
)

// Error definitions for service operations
var (
	ErrPostNotFound = apperror.New(
		apperror.CodeNotFound,
		apperror.BusinessCodePostNotFound,
		"post not found",
		http.StatusNotFound,
	)

	ErrInvalidPostData = apperror.Validation(
		apperror.BusinessCodeInvalidFormat,
		"invalid post data",
	)

	ErrUnsupportedImage = apperror.Validation(
		apperror.BusinessCodeUnsupportedMedia,
		"only jpg, jpeg and png images are allowed",
	)

	ErrImageTooLarge = apperror.Validation(
		apperror.BusinessCodeMediaTooLarge,
		"image exceeds the maximum allowed size",
	)

	ErrImageUploadFailed = apperror.New(
		apperror.CodeInternalError,
		apperror.BusinessCodeMediaUploadFailed,
		"failed to upload image",
		http.StatusInternalServerError,
	)
)

// PostsService coordinates the media store and the post repository
type PostsService struct {
	repo      ports.PostRepository
	media     ports.MediaStore
	eventBus  *eventbus.Bus
	logger    logger.Logger
	sanitizer *bluemonday.Policy
}

// NewPostsService creates a new posts service
func NewPostsService(
	repo ports.PostRepository,
	media ports.MediaStore,
	eventBus *eventbus.Bus,
	logger logger.Logger,
) *PostsService {
	return &PostsService{
		repo:      repo,
		media:     media,
		eventBus:  eventBus,
		logger:    logger,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// CreatePostParams contains parameters for creating a new post
type CreatePostParams struct {
	Title       string        `json:"title" validate:"required,max=100"`
	Description string        `json:"description" validate:"required,max=5000"`
	Image       *ports.Upload `json:"image" validate:"required"`
}

// UpdatePostParams contains parameters for updating a post. Nil fields are left unchanged.
type UpdatePostParams struct {
	Title       *string
	Description *string
	Image       *ports.Upload
}

// CreatePost uploads the image and persists a new post referencing it.
// If persistence fails the upload is released again.
func (s *PostsService) CreatePost(ctx context.Context, params CreatePostParams) (*domain.Post, error) {
	params.Title = s.clean(params.Title)
	params.Description = s.clean(params.Description)

	fields, err := validator.Struct(params)
	if err != nil {
		return nil, ErrInvalidPostData.WithInner(err)
	}
	if fields != nil {
		return nil, ErrInvalidPostData.WithDetails(fields)
	}

	stored, err := s.upload(ctx, *params.Image)
	if err != nil {
		return nil, err
	}

	post, err := domain.NewPost(params.Title, params.Description, stored.URL, stored.Key)
	if err != nil {
		s.releaseMedia(ctx, stored, "post rejected after upload")
		return nil, ErrInvalidPostData.WithDetails(fieldErrors(err))
	}

	if err := s.repo.Create(ctx, post); err != nil {
		s.logger.Error(ctx, "failed to create post", "error", err)
		s.releaseMedia(ctx, stored, "post creation failed")
		return nil, apperror.Internal(err, apperror.BusinessCodeStorageFailed, "failed to create post")
	}

	s.logger.Info(ctx, "post created", "post_id", post.ID)
	s.eventBus.Publish(ctx, eventbus.Event{
		Topic: events.PostCreatedTopic,
		Payload: events.PostCreatedEvent{
			PostID:     post.ID,
			Title:      post.Title,
			Image:      post.Image,
			OccurredAt: time.Now(),
		},
	})

	return post, nil
}

// UpdatePost replaces any supplied fields of an existing post.
// The post must exist before any image is uploaded.
func (s *PostsService) UpdatePost(ctx context.Context, id uuid.UUID, params UpdatePostParams) (*domain.Post, error) {
	current, err := s.getPostByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var patch domain.Patch
	if params.Title != nil {
		title := s.clean(*params.Title)
		patch.Title = &title
	}
	if params.Description != nil {
		description := s.clean(*params.Description)
		patch.Description = &description
	}
	if err := patch.Validate(); err != nil {
		return nil, ErrInvalidPostData.WithDetails(fieldErrors(err))
	}

	if patch.IsEmpty() && params.Image == nil {
		return current, nil
	}

	var stored *ports.StoredMedia
	if params.Image != nil {
		media, err := s.upload(ctx, *params.Image)
		if err != nil {
			return nil, err
		}
		stored = &media
		patch.Image = &media.URL
		patch.ImageKey = &media.Key
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if stored != nil {
			s.releaseMedia(ctx, *stored, "post update failed")
		}
		if errors.Is(err, ports.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		s.logger.Error(ctx, "failed to update post", "error", err, "post_id", id)
		return nil, apperror.Internal(err, apperror.BusinessCodeStorageFailed, "failed to update post")
	}

	s.eventBus.Publish(ctx, eventbus.Event{
		Topic: events.PostUpdatedTopic,
		Payload: events.PostUpdatedEvent{
			PostID:       id,
			ImageChanged: stored != nil,
			OccurredAt:   time.Now(),
		},
	})

	return updated, nil
}

// GetPost retrieves a post by ID
func (s *PostsService) GetPost(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	return s.getPostByID(ctx, id)
}

// ListPosts returns a page of posts and the total number matching the search
func (s *PostsService) ListPosts(ctx context.Context, filter ports.ListFilter) ([]*domain.Post, int, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Limit < 0 {
		filter.Limit = 0
	}
	if filter.Limit > ports.MaxListLimit {
		filter.Limit = ports.MaxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	posts, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error(ctx, "failed to list posts", "error", err)
		return nil, 0, apperror.Internal(err, apperror.BusinessCodeStorageFailed, "failed to list posts")
	}

	// Without pagination the page is the whole result.
	if filter.Limit == 0 && filter.Offset == 0 {
		return posts, len(posts), nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		s.logger.Error(ctx, "failed to count posts", "error", err)
		return nil, 0, apperror.Internal(err, apperror.BusinessCodeStorageFailed, "failed to count posts")
	}

	return posts, total, nil
}

// DeletePost removes a post. Its image stays in the media store.
func (s *PostsService) DeletePost(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ports.ErrPostNotFound) {
			return ErrPostNotFound
		}
		s.logger.Error(ctx, "failed to delete post", "error", err, "post_id", id)
		return apperror.Internal(err, apperror.BusinessCodeStorageFailed, "failed to delete post")
	}

	s.logger.Info(ctx, "post deleted", "post_id", id)
	s.eventBus.Publish(ctx, eventbus.Event{
		Topic: events.PostDeletedTopic,
		Payload: events.PostDeletedEvent{
			PostID:     id,
			OccurredAt: time.Now(),
		},
	})

	return nil
}

// Private helper methods

// getPostByID fetches a post and handles not-found errors consistently
func (s *PostsService) getPostByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		s.logger.Error(ctx, "failed to find post", "error", err, "post_id", id)
		return nil, apperror.Internal(err, apperror.BusinessCodeStorageFailed, "failed to retrieve post")
	}
	return post, nil
}

func (s *PostsService) upload(ctx context.Context, upload ports.Upload) (ports.StoredMedia, error) {
	stored, err := s.media.Store(ctx, upload)
	if err == nil {
		return stored, nil
	}

	switch {
	case errors.Is(err, ports.ErrUnsupportedMedia):
		return ports.StoredMedia{}, ErrUnsupportedImage.WithInner(err)
	case errors.Is(err, ports.ErrMediaTooLarge):
		return ports.StoredMedia{}, ErrImageTooLarge.WithInner(err)
	case errors.Is(err, ports.ErrEmptyMedia):
		return ports.StoredMedia{}, ErrInvalidPostData.WithDetails(map[string]string{"image": "image is required"})
	}

	s.logger.Error(ctx, "failed to upload image", "error", err, "filename", upload.Filename)
	return ports.StoredMedia{}, ErrImageUploadFailed.WithInner(err)
}

// releaseMedia hands an upload that no post references to the janitor.
func (s *PostsService) releaseMedia(ctx context.Context, stored ports.StoredMedia, reason string) {
	s.logger.Warn(ctx, "releasing orphaned upload", "key", stored.Key, "reason", reason)
	s.eventBus.Publish(ctx, eventbus.Event{
		Topic: events.MediaOrphanedTopic,
		Payload: events.MediaOrphanedEvent{
			Key:        stored.Key,
			URL:        stored.URL,
			Reason:     reason,
			OccurredAt: time.Now(),
		},
	})
}

// clean strips markup from user text and trims it.
func (s *PostsService) clean(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(text)))
}

// fieldErrors maps domain validation errors to the response detail shape.
func fieldErrors(err error) map[string]string {
	switch {
	case errors.Is(err, domain.ErrTitleRequired), errors.Is(err, domain.ErrTitleTooLong):
		return map[string]string{"title": err.Error()}
	case errors.Is(err, domain.ErrDescriptionRequired), errors.Is(err, domain.ErrDescriptionTooLong):
		return map[string]string{"description": err.Error()}
	case errors.Is(err, domain.ErrImageRequired):
		return map[string]string{"image": err.Error()}
	default:
		return map[string]string{"post": err.Error()}
	}
}
