package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/accel/internal/dev"
)

func TestBehavior_String(t *testing.T) {
	assert.Equal(t, "blocking", Blocking.String())
	assert.Equal(t, "non-blocking", NonBlocking.String())
}

func TestBlocking_RunsInsideEnqueue(t *testing.T) {
	q := New(dev.Host(), Blocking)
	defer q.Close()

	ran := false
	err := q.Enqueue(context.Background(), TaskFunc(func(_ context.Context, d *dev.Device) error {
		ran = true
		assert.Same(t, dev.Host(), d)
		return nil
	}))
	require.NoError(t, err)
	assert.True(t, ran)
	assert.True(t, q.Empty())
}

func TestBlocking_ReturnsTaskError(t *testing.T) {
	q := New(dev.Host(), Blocking)
	boom := errors.New("boom")

	err := q.Enqueue(context.Background(), TaskFunc(func(context.Context, *dev.Device) error { return boom }))
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, q.Wait(context.Background()), "blocking errors are not reported twice")
	assert.NoError(t, q.Close())
}

func TestBlocking_SerializesConcurrentCallers(t *testing.T) {
	q := New(dev.Host(), Blocking)

	var inside, overlaps int
	var mu sync.Mutex
	task := TaskFunc(func(context.Context, *dev.Device) error {
		mu.Lock()
		inside++
		if inside > 1 {
			overlaps++
		}
		mu.Unlock()
		time.Sleep(time.Millisecond)
		mu.Lock()
		inside--
		mu.Unlock()
		return nil
	})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, q.Enqueue(context.Background(), task))
		}()
	}
	wg.Wait()
	assert.Zero(t, overlaps)
}

func TestNonBlocking_FIFOAndWait(t *testing.T) {
	q := New(dev.Host(), NonBlocking)
	defer q.Close()

	gate := make(chan struct{})
	var order []int
	for i := range 5 {
		require.NoError(t, q.Enqueue(context.Background(), TaskFunc(func(context.Context, *dev.Device) error {
			<-gate
			order = append(order, i)
			return nil
		})))
	}
	assert.False(t, q.Empty())

	close(gate)
	require.NoError(t, q.Wait(context.Background()))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	assert.True(t, q.Empty())
}

func TestNonBlocking_WaitJoinsErrors(t *testing.T) {
	q := New(dev.Host(), NonBlocking)
	errA, errB := errors.New("a"), errors.New("b")

	for _, e := range []error{errA, nil, errB} {
		require.NoError(t, q.Enqueue(context.Background(), TaskFunc(func(context.Context, *dev.Device) error { return e })))
	}

	err := q.Wait(context.Background())
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.NoError(t, q.Wait(context.Background()), "errors are reported once")
	assert.NoError(t, q.Close())
}

func TestNonBlocking_WaitHonorsContext(t *testing.T) {
	q := New(dev.Host(), NonBlocking)

	release := make(chan struct{})
	require.NoError(t, q.Enqueue(context.Background(), TaskFunc(func(context.Context, *dev.Device) error {
		<-release
		return nil
	})))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Wait(ctx), context.DeadlineExceeded)

	close(release)
	assert.NoError(t, q.Close())
}

func TestEnqueue_CanceledContextSkipsTask(t *testing.T) {
	q := New(dev.Host(), Blocking)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	err := q.Enqueue(ctx, TaskFunc(func(context.Context, *dev.Device) error {
		ran = true
		return nil
	}))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestEnqueue_AfterClose(t *testing.T) {
	for _, b := range []Behavior{Blocking, NonBlocking} {
		q := New(dev.Host(), b)
		require.NoError(t, q.Close())
		assert.ErrorIs(t, q.Enqueue(context.Background(), TaskFunc(func(context.Context, *dev.Device) error { return nil })), ErrQueueClosed)
	}
}
