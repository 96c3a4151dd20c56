// Package observer implements the lock-free, best-effort-ordered channel
// the realtime audio thread uses to report MIDI events and render-path
// anomalies to a non-realtime drain loop (a UI thread, a logger).
// Publish never blocks and never allocates on a full queue: it drops the
// event instead, because the alternative is blocking the audio thread.
package observer

// Kind distinguishes the two things the render path reports off-thread.
type Kind uint8

const (
	// MIDIMessage carries a (channel, index, value) triple observed in
	// a node's render: index/value meaning depends on the MIDI message
	// kind (note number/velocity for note on/off, controller number/
	// value for control change, and so on).
	MIDIMessage Kind = iota
	// RenderError reports that a node's Renderer returned an error;
	// render-path anomalies never propagate through Graph.Run, so this
	// queue is the only place they surface.
	RenderError
)

// Event is one published observation.
type Event struct {
	Kind Kind

	// Set when Kind == MIDIMessage.
	Channel int
	Index   int
	Value   float64

	// Set when Kind == RenderError.
	NodeName string
	Err      error
}

// Queue is a single-producer/single-consumer ring of pending events,
// backed by a buffered channel: the realtime thread is the only
// producer, a host-owned drain loop (run on its own cadence, never on
// the audio thread) is the only consumer.
type Queue struct {
	ch chan Event
}

// New creates a queue with the given buffer depth.
func New(buffer int) *Queue {
	if buffer <= 0 {
		buffer = 256
	}
	return &Queue{ch: make(chan Event, buffer)}
}

// Publish tries to enqueue an event without blocking. It reports false
// if the queue is full, in which case the event is dropped — delivery
// is best-effort, never blocking.
func (q *Queue) Publish(e Event) bool {
	if q == nil {
		return false
	}
	select {
	case q.ch <- e:
		return true
	default:
		return false
	}
}

// Drain removes and returns every event currently buffered, without
// blocking. Intended to be called on the consumer's own cadence.
func (q *Queue) Drain() []Event {
	if q == nil {
		return nil
	}
	events := make([]Event, 0, len(q.ch))
	for {
		select {
		case e := <-q.ch:
			events = append(events, e)
		default:
			return events
		}
	}
}
