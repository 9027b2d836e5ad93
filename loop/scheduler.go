package loop

import "time"

// FrameID identifies a pending frame request. Zero is never issued.
type FrameID uint64

// Scheduler is the display-frame scheduling primitive. Callbacks run on the
// frame thread, one at a time, with the frame timestamp.
type Scheduler interface {
	RequestFrame(cb func(now time.Time)) FrameID
	CancelFrame(id FrameID)
}

type frameRequest struct {
	id FrameID
	cb func(now time.Time)
}

// FrameQueue is a Scheduler driven by an explicit Pump, called once per
// displayed frame by the window driver or the headless runner.
// Not safe for concurrent use; everything runs on the frame thread.
type FrameQueue struct {
	next    FrameID
	pending []frameRequest
	running []frameRequest // batch being pumped
}

// NewFrameQueue creates an empty frame queue.
func NewFrameQueue() *FrameQueue {
	return &FrameQueue{}
}

// RequestFrame queues cb for the next Pump.
func (q *FrameQueue) RequestFrame(cb func(now time.Time)) FrameID {
	q.next++
	q.pending = append(q.pending, frameRequest{id: q.next, cb: cb})
	return q.next
}

// CancelFrame removes a pending request. Unknown IDs are ignored.
func (q *FrameQueue) CancelFrame(id FrameID) {
	for i, req := range q.pending {
		if req.id == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
	// Cancelled by an earlier callback in the batch being pumped
	for i := range q.running {
		if q.running[i].id == id {
			q.running[i].cb = nil
			return
		}
	}
}

// Pending returns the number of queued requests.
func (q *FrameQueue) Pending() int {
	return len(q.pending)
}

// Pump runs every request queued before the call, in order, and returns how
// many ran. Requests made by callbacks during Pump wait for the next Pump.
func (q *FrameQueue) Pump(now time.Time) int {
	q.running = q.pending
	q.pending = nil

	ran := 0
	for i := range q.running {
		cb := q.running[i].cb
		if cb == nil {
			continue
		}
		cb(now)
		ran++
	}
	q.running = nil
	return ran
}
