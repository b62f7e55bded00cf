package queue

import (
	"sync"
	"testing"

	"github.com/steerlab/steering/pkg/core"
)

func state(agent uint16, tick uint) core.AgentState {
	return core.AgentState{AgentID: agent, Tick: tick}
}

func TestQueue_New(t *testing.T) {
	q := New[core.AgentState]()
	if q == nil {
		t.Fatal("expected non-nil queue")
	}
	if !q.Empty() {
		t.Error("expected empty queue")
	}
	if q.Len() != 0 {
		t.Errorf("expected length 0, got %d", q.Len())
	}
}

func TestQueue_Push(t *testing.T) {
	q := New[core.AgentState]()

	if dropped := q.Push(state(1, 0)); dropped != 0 {
		t.Errorf("unbounded queue dropped %d", dropped)
	}
	q.Push(state(2, 0), state(3, 0))
	if q.Len() != 3 {
		t.Errorf("expected length 3, got %d", q.Len())
	}
}

func TestQueue_Bounded(t *testing.T) {
	q := NewBounded[core.AgentState](3)

	if dropped := q.Push(state(1, 0), state(2, 0)); dropped != 0 {
		t.Errorf("expected no drops, got %d", dropped)
	}
	if dropped := q.Push(state(3, 0), state(4, 0), state(5, 0)); dropped != 2 {
		t.Errorf("expected 2 drops, got %d", dropped)
	}
	if q.Len() != 3 {
		t.Errorf("expected length 3, got %d", q.Len())
	}
	if q.Dropped() != 2 {
		t.Errorf("expected 2 dropped total, got %d", q.Dropped())
	}

	// Oldest items are kept.
	items := q.Drain()
	if items[2].AgentID != 3 {
		t.Errorf("expected agent 3 last, got %d", items[2].AgentID)
	}

	// Room again after draining.
	if dropped := q.Push(state(6, 1)); dropped != 0 {
		t.Errorf("expected no drops after drain, got %d", dropped)
	}
}

func TestQueue_NewBoundedZeroIsUnbounded(t *testing.T) {
	q := NewBounded[int](0)
	q.Push(make([]int, 1000)...)
	if q.Len() != 1000 {
		t.Errorf("expected 1000, got %d", q.Len())
	}
}

func TestQueue_Drain(t *testing.T) {
	q := New[core.AgentState]()
	q.Push(state(1, 0), state(2, 0), state(3, 0))

	result := q.Drain()

	if len(result) != 3 {
		t.Errorf("expected 3 items, got %d", len(result))
	}
	if result[0].AgentID != 1 || result[1].AgentID != 2 || result[2].AgentID != 3 {
		t.Errorf("unexpected items: %+v", result)
	}
	if !q.Empty() {
		t.Error("expected empty queue after Drain")
	}
}

func TestQueue_DrainN(t *testing.T) {
	q := New[core.AgentState]()
	q.Push(state(1, 0), state(2, 0), state(3, 0))

	first := q.DrainN(2)
	if len(first) != 2 || first[0].AgentID != 1 || first[1].AgentID != 2 {
		t.Errorf("unexpected first batch: %+v", first)
	}
	rest := q.DrainN(10)
	if len(rest) != 1 || rest[0].AgentID != 3 {
		t.Errorf("unexpected second batch: %+v", rest)
	}
	if q.DrainN(0) != nil {
		t.Error("expected nil for n=0")
	}
	if !q.Empty() {
		t.Error("expected empty queue")
	}
}

func TestQueue_ConcurrentPushAndDrain(t *testing.T) {
	q := New[core.AgentState]()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			q.Push(state(uint16(id), 0))
		}(i)
	}
	wg.Wait()

	results := make(chan []core.AgentState, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- q.Drain()
		}()
	}
	wg.Wait()
	close(results)

	total := 0
	for r := range results {
		total += len(r)
	}
	if total != 100 {
		t.Errorf("expected total 100 items, got %d", total)
	}
}

func TestQueue_CollisionEvents(t *testing.T) {
	q := New[core.CollisionEvent]()
	q.Push(core.CollisionEvent{Tick: 4, AgentID: 1, Kind: core.CollisionObstacle})

	events := q.Drain()
	if len(events) != 1 || events[0].Kind != core.CollisionObstacle {
		t.Errorf("unexpected events: %+v", events)
	}
}
