package queue_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/formrelay/internal/queue"
)

func TestConsumer_RunsItemsSequentially(t *testing.T) {
	q := queue.New()
	c := queue.NewConsumer(q, slog.Default())

	var (
		mu     sync.Mutex
		active int
		peak   int
		runs   int
	)
	work := func(context.Context) {
		mu.Lock()
		active++
		if active > peak {
			peak = active
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		active--
		runs++
		mu.Unlock()
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(work))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return runs == 5
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, peak, "items must not overlap on a single consumer")
}

func TestConsumer_SurvivesPanic(t *testing.T) {
	q := queue.New()
	c := queue.NewConsumer(q, slog.Default())

	ran := make(chan struct{})
	require.NoError(t, q.Enqueue(func(context.Context) { panic("boom") }))
	require.NoError(t, q.Enqueue(func(context.Context) { close(ran) }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not survive the panicking item")
	}
}

func TestConsumer_StopsOnCancel(t *testing.T) {
	q := queue.New()
	c := queue.NewConsumer(q, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after cancellation")
	}
}
