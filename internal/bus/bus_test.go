package bus

import (
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starwatch-app/starwatch/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func TestPublishDeliversToAllSubscribersSynchronously(t *testing.T) {
	b := New(testLogger())

	var got []string
	b.Subscribe(func(ev model.Event) { got = append(got, "first") })
	b.Subscribe(func(ev model.Event) { got = append(got, "second") })

	b.Publish(model.Heartbeat{Stamp: model.At(time.Now())})

	// Both handlers ran before Publish returned, in subscription order.
	require.Equal(t, []string{"first", "second"}, got)
	assert.Equal(t, int64(1), b.Published())
}

func TestPublishPreservesOrderPerSubscriber(t *testing.T) {
	b := New(testLogger())

	var states []string
	b.Subscribe(func(ev model.Event) {
		if q, ok := ev.(model.Quantum); ok {
			states = append(states, q.State)
		}
	})

	for _, s := range []string{"started", "finished", "aborted"} {
		b.Publish(model.Quantum{Stamp: model.At(time.Now()), State: s})
	}

	assert.Equal(t, []string{"started", "finished", "aborted"}, states)
}

func TestSubscribeNilIsIgnored(t *testing.T) {
	b := New(testLogger())
	b.Subscribe(nil)
	b.Publish(model.Heartbeat{}) // must not panic
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	b := New(testLogger())

	var mu sync.Mutex
	seen := 0
	b.Subscribe(func(model.Event) {
		mu.Lock()
		seen++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				b.Publish(model.Heartbeat{})
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 800, seen)
	assert.Equal(t, int64(800), b.Published())
}
