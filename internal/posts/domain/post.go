package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Business rule constants
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 5000
)

// Validation errors
var (
	ErrTitleRequired       = errors.New("title is required")
	ErrTitleTooLong        = errors.New("title must not exceed 100 characters")
	ErrDescriptionRequired = errors.New("description is required")
	ErrDescriptionTooLong  = errors.New("description must not exceed 5000 characters")
	ErrImageRequired       = errors.New("image is required")
)

// Post is a blog entry with a single image held by the media store.
// ID and CreatedAt never change after NewPost. CreatedAt has millisecond
// precision so every store round-trips it exactly.
type Post struct {
	ID          uuid.UUID
	Title       string
	Description string
	Image       string // public URL
	ImageKey    string // media store key, used for cleanup only
	CreatedAt   time.Time
}

// NewPost creates a validated post with a fresh ID and creation time.
func NewPost(title, description, image, imageKey string) (*Post, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if err := ValidateTitle(title); err != nil {
		return nil, err
	}
	if err := ValidateDescription(description); err != nil {
		return nil, err
	}
	if strings.TrimSpace(image) == "" {
		return nil, ErrImageRequired
	}

	return &Post{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Image:       image,
		ImageKey:    imageKey,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}, nil
}

// Patch carries the fields an update may replace. Nil means "keep".
type Patch struct {
	Title       *string
	Description *string
	Image       *string
	ImageKey    *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Image == nil
}

// Validate checks every supplied field against the same rules as NewPost.
func (p Patch) Validate() error {
	if p.Title != nil {
		if err := ValidateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := ValidateDescription(*p.Description); err != nil {
			return err
		}
	}
	if p.Image != nil && strings.TrimSpace(*p.Image) == "" {
		return ErrImageRequired
	}
	return nil
}

// Apply merges the patch into the post. ID and CreatedAt are untouched.
func (p *Post) Apply(patch Patch) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Image != nil {
		p.Image = *patch.Image
		if patch.ImageKey != nil {
			p.ImageKey = *patch.ImageKey
		} else {
			p.ImageKey = ""
		}
	}
}

// Matches reports whether the post's title or description contains term,
// ignoring case. An empty term matches everything.
func (p *Post) Matches(term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(p.Title), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}

func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

func ValidateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return ErrDescriptionRequired
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}
