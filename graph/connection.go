package graph

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Connection is a directed edge from an Output socket to an Input
// socket of identical SignalType. It carries its own per-edge routing,
// gain/offset, and mute/active/feedback flags, independent of either
// endpoint socket's broadcast values.
//
// The parameter fields are single-word atomics so the control thread can
// adjust them concurrently with the realtime thread reading them at the
// start of Connection.pull, with no torn reads and no lock.
type Connection struct {
	id   ConnectionID
	uuid uuid.UUID

	source SocketID
	dest   SocketID
	sigType SignalType

	// nchannels is fixed at registration time (min of the two sockets'
	// channel counts) and immutable afterward; a live nchannels change
	// on either socket is handled by render-time skip of now-stale
	// routing cables, not by mutating this field. srcChannels and
	// dstChannels are each side's own count at registration time, used
	// to validate routing cables independently of the min.
	nchannels   int
	srcChannels int
	dstChannels int

	routing atomic.Pointer[Routing]

	mul   atomicFloat64
	add   atomicFloat64
	muted atomic.Bool

	active   atomic.Bool
	feedback atomic.Bool
}

// ID returns this connection's stable arena handle.
func (c *Connection) ID() ConnectionID { return c.id }

// UUID returns a debug-facing identifier, distinct from the arena
// handle, stable for the connection's lifetime.
func (c *Connection) UUID() uuid.UUID { return c.uuid }

// Source returns the handle of the connection's source (Output) socket.
func (c *Connection) Source() SocketID { return c.source }

// Dest returns the handle of the connection's destination (Input)
// socket.
func (c *Connection) Dest() SocketID { return c.dest }

// NChannels returns the channel count fixed at registration time.
func (c *Connection) NChannels() int { return c.nchannels }

// Routing returns a snapshot of the connection's current routing.
func (c *Connection) Routing() Routing {
	if r := c.routing.Load(); r != nil {
		return *r
	}
	return Routing{}
}

// SetRouting replaces the connection's routing, provided every cable
// fits within the channel counts fixed at registration time. Since it
// never grows nchannels, it's a parameter change safe to apply from the
// control thread at any time; the new Routing value is published with a
// single atomic pointer store.
func (c *Connection) SetRouting(r Routing) error {
	if err := r.validate(c.srcChannels, c.dstChannels); err != nil {
		return err
	}
	c.routing.Store(&r)
	return nil
}

// Mul returns the connection's current gain.
func (c *Connection) Mul() float64 { return c.mul.Load() }

// SetMul sets this connection's gain only; it does not touch the
// sockets' broadcast mul (compare Socket.SetMul).
func (c *Connection) SetMul(mul float64) { c.mul.Store(mul) }

// Add returns the connection's current additive offset.
func (c *Connection) Add() float64 { return c.add.Load() }

// SetAdd sets this connection's additive offset only.
func (c *Connection) SetAdd(add float64) { c.add.Store(add) }

// Muted reports whether this connection currently contributes silence /
// no events.
func (c *Connection) Muted() bool { return c.muted.Load() }

// SetMuted sets this connection's mute flag only.
func (c *Connection) SetMuted(muted bool) { c.muted.Store(muted) }

// Active reports whether pulling this connection causes its source to
// be processed. An inactive connection is skipped entirely by pull.
func (c *Connection) Active() bool { return c.active.Load() }

// SetActive sets this connection's active flag.
func (c *Connection) SetActive(active bool) { c.active.Store(active) }

// Feedback reports whether this connection reads its source's previous-
// vector output instead of forcing the source to render this vector.
func (c *Connection) Feedback() bool { return c.feedback.Load() }

// SetFeedback sets this connection's feedback flag. Flipping an edge
// from feedback to non-feedback (or vice versa) can introduce or break a
// cycle; Graph.Build's DFS only runs once, at Build time, so a host that
// mutates feedback flags after Build is responsible for not introducing
// an unmarked cycle.
func (c *Connection) SetFeedback(feedback bool) { c.feedback.Store(feedback) }

// pull executes the hot-path copy/accumulate step for one render vector.
func (c *Connection) pull(g *Graph, nframes int) {
	if !c.Active() {
		return
	}

	srcSocket := g.socket(c.source)
	dstSocket := g.socket(c.dest)

	if !c.Feedback() {
		srcNode := g.node(srcSocket.parent)
		if !srcNode.Processed() {
			g.renderNode(srcNode, nframes)
		}
	}

	if c.sigType == Midi_1_0 {
		if c.Muted() {
			return
		}
		for _, e := range srcSocket.midi.Events() {
			dstSocket.midi.Append(e)
		}
		return
	}

	if c.Muted() {
		// The destination buffer was already zeroed as the first step of
		// its node's render, so a muted edge contributing zero is simply
		// skipping the accumulation below — actively re-zeroing the whole
		// destination buffer here would erase any other connection's
		// contribution already accumulated into the same socket this
		// vector.
		return
	}

	src := srcSocket.audio
	dst := dstSocket.audio
	mul := c.Mul()
	add := c.Add()
	routing := c.Routing()

	if routing.Null() {
		n := min(c.nchannels, len(src), len(dst))
		for ch := 0; ch < n; ch++ {
			srcLane, dstLane := src[ch], dst[ch]
			for f := 0; f < nframes && f < len(srcLane) && f < len(dstLane); f++ {
				dstLane[f] += srcLane[f]*mul + add
			}
		}
		return
	}

	for i := 0; i < routing.Ncables(); i++ {
		cable := routing.Cable(i)
		if cable.SrcChannel < 0 || cable.SrcChannel >= len(src) ||
			cable.DstChannel < 0 || cable.DstChannel >= len(dst) {
			continue // spec mandates skip for stale/out-of-range cables
		}
		srcLane, dstLane := src[cable.SrcChannel], dst[cable.DstChannel]
		for f := 0; f < nframes && f < len(srcLane) && f < len(dstLane); f++ {
			dstLane[f] += srcLane[f]*mul + add
		}
	}
}
