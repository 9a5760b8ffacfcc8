/*
 * i686emu - Relative-time event scheduler
 *
 * Adapted from rcornwell/S370's emu/event package. The teacher's version
 * keys events by a Device interface; this core has no device model in
 * scope (see spec non-goals), so events are keyed by a plain integer tag
 * instead. The CPU creates one Queue but schedules nothing on it; external
 * IRQs go through CPU.RequestInterrupt's single pending vector instead.
 */
package event

// Callback runs when a scheduled event's time reaches zero.
type Callback func(arg int)

type event struct {
	time int
	tag  int
	cb   Callback
	arg  int
	prev *event
	next *event
}

// Queue is a relative-time ordered list of pending events.
type Queue struct {
	head *event
	tail *event
}

// NewQueue returns an empty event queue.
func NewQueue() *Queue { return &Queue{} }

// Add schedules cb to run after the given number of cycles. time==0 runs
// the callback immediately instead of enqueuing it.
func (q *Queue) Add(tag int, cb Callback, cycles int, arg int) {
	if cycles <= 0 {
		cb(arg)
		return
	}

	ev := &event{tag: tag, cb: cb, time: cycles, arg: arg}

	cur := q.head
	if cur == nil {
		q.head = ev
		q.tail = ev
		return
	}

	for cur != nil {
		if ev.time <= cur.time {
			cur.time -= ev.time
			ev.prev = cur.prev
			ev.next = cur
			cur.prev = ev
			if ev.prev != nil {
				ev.prev.next = ev
			} else {
				q.head = ev
			}
			return
		}
		ev.time -= cur.time
		cur = cur.next
	}

	ev.prev = q.tail
	q.tail.next = ev
	q.tail = ev
}

// Cancel removes the first pending event matching tag and arg, if any.
func (q *Queue) Cancel(tag int, arg int) {
	cur := q.head
	for cur != nil {
		if cur.tag == tag && cur.arg == arg {
			if cur.next != nil {
				cur.next.time += cur.time
				cur.next.prev = cur.prev
			} else {
				q.tail = cur.prev
			}
			if cur.prev != nil {
				cur.prev.next = cur.next
			} else {
				q.head = cur.next
			}
			return
		}
		cur = cur.next
	}
}

// Advance moves the clock forward by cycles, firing every event whose
// remaining time reaches zero or below, in order.
func (q *Queue) Advance(cycles int) {
	cur := q.head
	if cur == nil {
		return
	}
	cur.time -= cycles
	for cur != nil && cur.time <= 0 {
		over := cur.time
		cur.cb(cur.arg)
		q.head = cur.next
		cur = q.head
		if cur != nil {
			cur.prev = nil
			cur.time += over
		} else {
			q.tail = nil
		}
	}
}

// Pending reports whether any event is queued.
func (q *Queue) Pending() bool { return q.head != nil }
