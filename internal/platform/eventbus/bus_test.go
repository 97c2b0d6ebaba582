package eventbus_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/philly/imageblog/internal/platform/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingLogger captures error messages
type recordingLogger struct {
	mu     sync.Mutex
	errors []string
}

func (m *recordingLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (m *recordingLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (m *recordingLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (m *recordingLogger) Error(ctx context.Context, msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func (m *recordingLogger) getErrors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.errors...)
}

func drain(t *testing.T, bus *eventbus.Bus) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Drain(ctx))
}

func TestBusSubscribeAndPublish(t *testing.T) {
	bus := eventbus.NewBus(&recordingLogger{})
	topic := eventbus.Topic("posts.created")

	var mu sync.Mutex
	var calls []string

	bus.Subscribe(topic, func(ctx context.Context, event eventbus.Event) error {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, "first:"+event.Payload.(string))
		return nil
	})
	bus.Subscribe(topic, func(ctx context.Context, event eventbus.Event) error {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, "second")
		return nil
	})

	bus.Publish(context.Background(), eventbus.Event{Topic: topic, Payload: "hello"})
	drain(t, bus)

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"first:hello", "second"}, calls)
}

func TestBusPublishWithNoSubscribers(t *testing.T) {
	log := &recordingLogger{}
	bus := eventbus.NewBus(log)

	bus.Publish(context.Background(), eventbus.Event{Topic: "nobody.listens", Payload: 1})
	drain(t, bus)

	assert.Empty(t, log.getErrors())
}

func TestBusPublishLogsHandlerError(t *testing.T) {
	log := &recordingLogger{}
	bus := eventbus.NewBus(log)
	topic := eventbus.Topic("media.orphaned")

	bus.Subscribe(topic, func(ctx context.Context, event eventbus.Event) error {
		return errors.New("handler failed")
	})

	bus.Publish(context.Background(), eventbus.Event{Topic: topic})
	drain(t, bus)

	assert.Equal(t, []string{"event handler failed"}, log.getErrors())
}

func TestBusHandlersOutliveCallerCancellation(t *testing.T) {
	bus := eventbus.NewBus(&recordingLogger{})
	topic := eventbus.Topic("media.orphaned")

	type key struct{}
	result := make(chan error, 1)
	release := make(chan struct{})
	bus.Subscribe(topic, func(ctx context.Context, event eventbus.Event) error {
		<-release
		if ctx.Value(key{}) != "kept" {
			result <- errors.New("context value lost")
			return nil
		}
		result <- ctx.Err()
		return nil
	})

	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), key{}, "kept"))
	bus.Publish(ctx, eventbus.Event{Topic: topic})
	cancel()
	close(release)

	drain(t, bus)
	assert.NoError(t, <-result)
}

func TestBusDrainHonoursDeadline(t *testing.T) {
	bus := eventbus.NewBus(&recordingLogger{})
	topic := eventbus.Topic("slow")
	release := make(chan struct{})
	defer close(release)

	bus.Subscribe(topic, func(ctx context.Context, event eventbus.Event) error {
		<-release
		return nil
	})
	bus.Publish(context.Background(), eventbus.Event{Topic: topic})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Drain(ctx), context.DeadlineExceeded)
}

func TestBusConcurrentPublish(t *testing.T) {
	bus := eventbus.NewBus(&recordingLogger{})
	topic := eventbus.Topic("concurrent.publish")

	var mu sync.Mutex
	callCount := 0
	bus.Subscribe(topic, func(ctx context.Context, event eventbus.Event) error {
		mu.Lock()
		defer mu.Unlock()
		callCount++
		return nil
	})

	var wg sync.WaitGroup
	const publishCount = 10
	for i := 0; i < publishCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			bus.Publish(context.Background(), eventbus.Event{Topic: topic, Payload: id})
		}(i)
	}
	wg.Wait()
	drain(t, bus)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, publishCount, callCount)
}
