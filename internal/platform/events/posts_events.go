package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/philly/imageblog/internal/platform/eventbus"
)

// Event topics for posts
const (
	PostCreatedTopic   eventbus.Topic = "posts.created"
	PostUpdatedTopic   eventbus.Topic = "posts.updated"
	PostDeletedTopic   eventbus.Topic = "posts.deleted"
	MediaOrphanedTopic eventbus.Topic = "media.orphaned"
)

// PostCreatedEvent is published when a new post is persisted
type PostCreatedEvent struct {
	PostID     uuid.UUID
	Title      string
	Image      string
	OccurredAt time.Time
}

// PostUpdatedEvent is published after a successful update
type PostUpdatedEvent struct {
	PostID       uuid.UUID
	ImageChanged bool
	OccurredAt   time.Time
}

// PostDeletedEvent is published when a post is removed
type PostDeletedEvent struct {
	PostID     uuid.UUID
	OccurredAt time.Time
}

// MediaOrphanedEvent is published when an uploaded file no longer backs any
// post because the write that would have referenced it failed.
type MediaOrphanedEvent struct {
	Key        string
	URL        string
	Reason     string
	OccurredAt time.Time
}
