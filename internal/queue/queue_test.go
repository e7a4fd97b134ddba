package queue_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/formrelay/internal/queue"
)

func TestQueue_EnqueueNil(t *testing.T) {
	q := queue.New()
	err := q.Enqueue(nil)
	require.ErrorIs(t, err, queue.ErrNilWorkItem)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_FIFOSingleProducer(t *testing.T) {
	q := queue.New()
	var got []int
	for i := 0; i < 10; i++ {
		i := i
		require.NoError(t, q.Enqueue(func(context.Context) { got = append(got, i) }))
	}

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		item, err := q.Dequeue(ctx)
		require.NoError(t, err)
		item(ctx)
	}
	for i := 0; i < 10; i++ {
		assert.Equal(t, i, got[i])
	}
	assert.Equal(t, 0, q.Len())
}

func TestQueue_DequeueCancelledContext(t *testing.T) {
	q := queue.New()
	require.NoError(t, q.Enqueue(func(context.Context) {}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	item, err := q.Dequeue(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, item)
	// The queued item must not have been removed.
	assert.Equal(t, 1, q.Len())
}

func TestQueue_DequeueWaitsForEnqueue(t *testing.T) {
	q := queue.New()
	done := make(chan struct{})

	go func() {
		defer close(done)
		item, err := q.Dequeue(context.Background())
		assert.NoError(t, err)
		assert.NotNil(t, item)
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, q.Enqueue(func(context.Context) {}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dequeue did not wake up after enqueue")
	}
}

func TestQueue_EnqueueNeverBlocks(t *testing.T) {
	// 10k items with zero consumers must complete quickly.
	q := queue.New()
	start := time.Now()
	for i := 0; i < 10_000; i++ {
		require.NoError(t, q.Enqueue(func(context.Context) {}))
	}
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 10_000, q.Len())
}

func TestQueue_ManyProducersExactlyOnce(t *testing.T) {
	const (
		producers = 8
		perProd   = 200
	)
	q := queue.New()

	// Each work item records its producer and sequence number when run.
	type tag struct{ producer, seq int }
	var (
		mu  sync.Mutex
		got []tag
	)

	var producerWG sync.WaitGroup
	for p := 0; p < producers; p++ {
		p := p
		producerWG.Add(1)
		go func() {
			defer producerWG.Done()
			for i := 0; i < perProd; i++ {
				i := i
				err := q.Enqueue(func(context.Context) {
					mu.Lock()
					got = append(got, tag{producer: p, seq: i})
					mu.Unlock()
				})
				assert.NoError(t, err)
			}
		}()
	}
	producerWG.Wait()

	ctx := context.Background()
	for i := 0; i < producers*perProd; i++ {
		item, err := q.Dequeue(ctx)
		require.NoError(t, err)
		item(ctx)
	}
	require.Len(t, got, producers*perProd)

	// No duplication, no loss: every (producer, seq) pair appears exactly
	// once, and each producer's items come out in its own enqueue order.
	seen := make(map[string]bool, len(got))
	next := make([]int, producers)
	for _, tg := range got {
		key := fmt.Sprintf("%d/%d", tg.producer, tg.seq)
		require.False(t, seen[key], "item %s delivered twice", key)
		seen[key] = true
		require.Equal(t, next[tg.producer], tg.seq,
			"producer %d items out of order", tg.producer)
		next[tg.producer]++
	}
}
