package graph

// MutationOp is a topology or allocation-requiring change: connect,
// disconnect, add/remove node, resize a socket. It is built entirely on
// the control thread — any new Connection or buffer it needs already
// exists by the time Apply runs — so Apply itself only does pointer/
// handle bookkeeping and is safe to run on the realtime thread at the
// top of Graph.Run.
type MutationOp interface {
	Apply(g *Graph) error
}

// MutationFunc adapts a plain function to MutationOp, the same adapter
// idiom RenderFunc uses for node rendering.
type MutationFunc func(g *Graph) error

func (f MutationFunc) Apply(g *Graph) error { return f(g) }

// mutationQueue is a single-producer (control thread), single-consumer
// (realtime thread) channel of pending mutations, drained non-blockingly
// at the top of Graph.Run. Unlike a typical serializing op queue with a
// background worker applying ops asynchronously, the realtime thread
// itself drains this one synchronously: Graph.Run must return within one
// audio period, so nothing here may block or hand off to another
// goroutine mid-vector.
type mutationQueue struct {
	ch chan MutationOp
}

func newMutationQueue(buffer int) *mutationQueue {
	if buffer <= 0 {
		buffer = 64
	}
	return &mutationQueue{ch: make(chan MutationOp, buffer)}
}

// enqueue submits op for application at the next Run. It never blocks:
// if the queue is full, it reports AllocationRefused so the host's
// policy decides whether to retry, coalesce, or drop.
func (q *mutationQueue) enqueue(op MutationOp) error {
	select {
	case q.ch <- op:
		return nil
	default:
		return ErrAllocationRefused
	}
}

// drain applies every currently queued mutation, in submission order.
// Never blocks: stops as soon as the channel has nothing buffered.
func (q *mutationQueue) drain(g *Graph) {
	for {
		select {
		case op := <-q.ch:
			if op == nil {
				continue
			}
			if err := op.Apply(g); err != nil {
				g.reportError(nil, err)
			}
		default:
			return
		}
	}
}
