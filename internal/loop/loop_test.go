package loop

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualScheduler collects scheduled dispatches so tests run them explicitly.
type manualScheduler struct {
	mu  sync.Mutex
	fns []func()
}

func (s *manualScheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fns = append(s.fns, fn)
}

func (s *manualScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fns)
}

func (s *manualScheduler) runAll() {
	for {
		s.mu.Lock()
		if len(s.fns) == 0 {
			s.mu.Unlock()
			return
		}
		fn := s.fns[0]
		s.fns = s.fns[1:]
		s.mu.Unlock()
		fn()
	}
}

func TestFrameRequest(t *testing.T) {
	var f FrameRequest
	assert.False(t, f.Pending())
	assert.True(t, f.Request())
	assert.False(t, f.Request())
	assert.True(t, f.Take())
	assert.False(t, f.Take())
}

func TestLoop_FIFO(t *testing.T) {
	sched := &manualScheduler{}
	l := New(sched, nil)

	var order []int
	for i := range 5 {
		l.PostFunc(func() { order = append(order, i) })
	}
	assert.Equal(t, 1, sched.pending(), "one wake-up for a burst of posts")

	sched.runAll()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestLoop_PostDuringDispatch(t *testing.T) {
	sched := &manualScheduler{}
	l := New(sched, nil)

	var order []string
	l.PostFunc(func() {
		order = append(order, "first")
		l.PostFunc(func() { order = append(order, "nested") })
	})
	l.PostFunc(func() { order = append(order, "second") })

	sched.runAll()
	assert.Equal(t, []string{"first", "second", "nested"}, order)
	assert.Equal(t, 1, l.Stats().Dispatches, "nested post drained in the same dispatch")
}

func TestLoop_FrameCoalescing(t *testing.T) {
	sched := &manualScheduler{}
	l := New(sched, nil)

	renders := 0
	l.SetRenderer(func() error {
		renders++
		return nil
	})

	for range 4 {
		l.PostFunc(l.RequestFrame)
	}
	sched.runAll()

	assert.Equal(t, 1, renders)
	assert.Equal(t, 3, l.Stats().Coalesced)
	assert.False(t, l.FramePending())

	sched.runAll()
	assert.Equal(t, 1, renders, "no render without a request")
}

func TestLoop_RequestFrameOutsideDispatch(t *testing.T) {
	sched := &manualScheduler{}
	l := New(sched, nil)

	renders := 0
	l.SetRenderer(func() error {
		renders++
		return nil
	})

	l.RequestFrame()
	l.RequestFrame()
	assert.Equal(t, 1, sched.pending())
	sched.runAll()
	assert.Equal(t, 1, renders)
}

func TestLoop_FatalErrorStops(t *testing.T) {
	sched := &manualScheduler{}
	l := New(sched, nil)
	fatal := errors.New("compositor gone")

	ran := false
	l.Post(func() error { return fatal })
	l.PostFunc(func() { ran = true })
	sched.runAll()

	assert.False(t, ran, "actions after a fatal error are dropped")
	assert.ErrorIs(t, l.Err(), fatal)
	assert.True(t, l.Stopped())

	select {
	case <-l.Done():
	default:
		t.Fatal("done not closed")
	}

	assert.False(t, l.Post(func() error { return nil }))
}

func TestLoop_RenderErrorStops(t *testing.T) {
	sched := &manualScheduler{}
	l := New(sched, nil)
	l.SetRenderer(func() error { return errors.New("context lost") })

	l.PostFunc(l.RequestFrame)
	sched.runAll()
	assert.EqualError(t, l.Err(), "context lost")
}

func TestLoop_StopKeepsFirstError(t *testing.T) {
	l := New(&manualScheduler{}, nil)
	l.Stop(nil)
	l.Stop(errors.New("late"))
	assert.NoError(t, l.Err())
}

func TestLoop_ConcurrentProducers(t *testing.T) {
	sched := &manualScheduler{}
	l := New(sched, nil)

	const producers, perProducer = 8, 100
	var wg sync.WaitGroup
	count := 0
	seen := make(map[int][]int)
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				l.PostFunc(func() {
					count++
					seen[p] = append(seen[p], i)
				})
			}
		}()
	}
	wg.Wait()
	sched.runAll()

	require.Equal(t, producers*perProducer, count)
	for p := range producers {
		for i, v := range seen[p] {
			require.Equal(t, i, v, "per-producer order preserved")
		}
	}
}
