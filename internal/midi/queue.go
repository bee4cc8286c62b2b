package midi

import "container/heap"

// eventHeap orders pending Events by Time, breaking ties by insertion
// sequence so same-timestamp events fire in arrival order.
type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)   { *h = append(*h, x.(Event)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	*h = old[:n-1]
	return ev
}

// eventQueue is a FIFO-tie-broken priority queue of pending Events,
// used to reorder whatever the control thread enqueued (which may run
// ahead of schedule across several calls) into strict time order before
// the audio thread drains it.
type eventQueue struct {
	h eventHeap
}

func newEventQueue() *eventQueue {
	q := &eventQueue{}
	heap.Init(&q.h)
	return q
}

func (q *eventQueue) insert(ev Event) {
	heap.Push(&q.h, ev)
}

// peekTime reports the next pending event's time and whether one exists.
func (q *eventQueue) peekTime() (uint64, bool) {
	if len(q.h) == 0 {
		return 0, false
	}
	return q.h[0].Time, true
}

func (q *eventQueue) popReady(upTo uint64) (Event, bool) {
	if len(q.h) == 0 || q.h[0].Time > upTo {
		return Event{}, false
	}
	return heap.Pop(&q.h).(Event), true
}

func (q *eventQueue) len() int { return len(q.h) }
