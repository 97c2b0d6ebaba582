package application

import (
	"context"
	"fmt"
	"time"

	"github.com/philly/imageblog/internal/platform/eventbus"
	"github.com/philly/imageblog/internal/platform/events"
	"github.com/philly/imageblog/internal/platform/logger"
	"github.com/philly/imageblog/internal/posts/ports"
)

const janitorDeleteTimeout = 30 * time.Second

// MediaJanitor deletes uploads that were stored but never became part of a
// persisted post. It is the compensating step of the upload-then-persist
// sequence and makes a single attempt per file.
type MediaJanitor struct {
	media  ports.MediaStore
	logger logger.Logger
}

// NewMediaJanitor creates the janitor and subscribes it to orphaned-media events
func NewMediaJanitor(bus *eventbus.Bus, media ports.MediaStore, logger logger.Logger) *MediaJanitor {
	j := &MediaJanitor{media: media, logger: logger}
	bus.Subscribe(events.MediaOrphanedTopic, j.handle)
	return j
}

func (j *MediaJanitor) handle(ctx context.Context, event eventbus.Event) error {
	orphan, ok := event.Payload.(events.MediaOrphanedEvent)
	if !ok {
		return fmt.Errorf("media janitor: unexpected payload %T", event.Payload)
	}
	if orphan.Key == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, janitorDeleteTimeout)
	defer cancel()

	if err := j.media.Delete(ctx, orphan.Key); err != nil {
		return fmt.Errorf("media janitor: delete %s: %w", orphan.Key, err)
	}

	j.logger.Info(ctx, "orphaned upload deleted", "key", orphan.Key, "reason", orphan.Reason)
	return nil
}
