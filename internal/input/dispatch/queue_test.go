package dispatch

import (
	"reflect"
	"sync"
	"testing"
	"time"
)

func waitIdle[T any](t *testing.T, q *Queue[T]) {
	t.Helper()
	select {
	case <-q.Idle():
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for queue to drain")
	}
}

func TestQueue_Order(t *testing.T) {
	var (
		mu   sync.Mutex
		got  []int
		lens []int
	)
	release := make(chan struct{})
	var q *Queue[int]
	q = NewQueue(func(i int) {
		if i == 1 {
			<-release
		}
		mu.Lock()
		got = append(got, i)
		lens = append(lens, q.Len())
		mu.Unlock()
	})

	q.Push(1)
	q.Push(2)
	q.Push(3)
	close(release)
	waitIdle(t, q)

	if !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("consumed %v, want [1 2 3]", got)
	}
	if !reflect.DeepEqual(lens, []int{2, 1, 0}) {
		t.Errorf("Len at consume = %v, want [2 1 0]", lens)
	}
}

func TestQueue_Reentrant(t *testing.T) {
	var got []string
	var q *Queue[string]
	q = NewQueue(func(s string) {
		got = append(got, s+":start")
		if s == "a" {
			q.Push("b")
		}
		got = append(got, s+":end")
	})

	q.Push("a")
	waitIdle(t, q)

	want := []string{"a:start", "a:end", "b:start", "b:end"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestQueue_NeverConcurrent(t *testing.T) {
	var (
		active  int
		maxSeen int
		mu      sync.Mutex
		wg      sync.WaitGroup
	)
	q := NewQueue(func(int) {
		mu.Lock()
		active++
		if active > maxSeen {
			maxSeen = active
		}
		mu.Unlock()
		time.Sleep(time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
		wg.Done()
	})

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go q.Push(i)
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("max concurrent consumers = %d, want 1", maxSeen)
	}
	if s := q.Stats(); s.Pushed != 20 || s.Processed != 20 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestQueue_ClearAndClose(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var got []int
	q := NewQueue(func(i int) {
		if i == 1 {
			close(started)
			<-release
		}
		got = append(got, i)
	})

	q.Push(1)
	<-started
	q.Push(2)
	q.Clear()
	if q.Len() != 0 {
		t.Errorf("Len() after Clear = %d", q.Len())
	}
	close(release)
	waitIdle(t, q)

	q.Close()
	if q.Push(3) {
		t.Error("Push after Close should return false")
	}
	if !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("consumed %v, want [1]", got)
	}
}

func TestQueue_PanicRecovered(t *testing.T) {
	var (
		panics []any
		got    []int
	)
	q := NewQueue(func(i int) {
		if i == 1 {
			panic("boom")
		}
		got = append(got, i)
	}, WithPanicHandler(func(item any, recovered any, _ []byte) {
		panics = append(panics, recovered)
	}))

	q.Push(1)
	q.Push(2)
	waitIdle(t, q)

	if len(panics) != 1 || panics[0] != "boom" {
		t.Errorf("panics = %v", panics)
	}
	if !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("consumed %v, want [2]", got)
	}
	if q.Stats().Panicked != 1 {
		t.Errorf("Panicked = %d, want 1", q.Stats().Panicked)
	}
}
