package graph

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// PortView is one socket's buffer as seen from inside a Renderer: the
// audio lane if the socket is Audio or one of the scalar control types,
// or the event buffer if it's Midi_1_0.
type PortView struct {
	Type  SignalType
	Audio AudioBuffer
	MIDI  *MIDIBuffer
}

// Pool is a node's view over all of its input or output socket buffers,
// in socket-declaration order.
type Pool []PortView

// Renderer is the contract every processing node implements: given its
// input pool (already filled by pulling active input connections) and
// its output pool, produce this vector's output. Render must not block,
// allocate, or retain the Pool slices past the call.
type Renderer interface {
	Render(inputs, outputs Pool, nframes int) error
}

// Initializer is an optional Renderer extension: a node implementing it
// is called once, on the control thread, at Graph.Build.
type Initializer interface {
	Initialize(props Properties) error
}

// RateListener is an optional Renderer extension: a node implementing it
// is notified whenever Graph.SetRate broadcasts a new sample rate.
type RateListener interface {
	OnRateChanged(rate float64)
}

// RenderFunc adapts a plain function to the Renderer interface, the same
// adapter idiom MutationFunc uses for the mutation queue's MutationOp.
type RenderFunc func(inputs, outputs Pool, nframes int) error

func (f RenderFunc) Render(inputs, outputs Pool, nframes int) error { return f(inputs, outputs, nframes) }

// Node is a processing unit: an ordered list of input sockets, an
// ordered list of output sockets, an optional ordered list of subnodes
// composed according to its DispatchMode, and a Renderer.
type Node struct {
	id   NodeID
	uuid uuid.UUID

	owner    *Graph
	name     string
	renderer Renderer

	inputs   []SocketID
	outputs  []SocketID
	subnodes []NodeID
	parent   NodeID
	dispatch DispatchMode

	// inputPool/outputPool are views built once, at Build and after any
	// buffer reallocation (Socket.SetNChannels refuses to resize while
	// the graph is running, so these only ever go stale between vectors,
	// never mid-render), so the hot render path never allocates.
	inputPool  Pool
	outputPool Pool

	active    atomic.Bool
	muted     atomic.Bool
	processed atomic.Bool
	rate      atomicFloat64
}

// rebuildPools refreshes inputPool/outputPool from the node's current
// socket buffers. Called by Graph.Build once every socket has been
// allocated.
func (n *Node) rebuildPools() {
	n.inputPool = make(Pool, len(n.inputs))
	for i, sid := range n.inputs {
		s := n.owner.socket(sid)
		n.inputPool[i] = PortView{Type: s.sigType, Audio: s.audio, MIDI: s.midi}
	}
	n.outputPool = make(Pool, len(n.outputs))
	for i, sid := range n.outputs {
		s := n.owner.socket(sid)
		n.outputPool[i] = PortView{Type: s.sigType, Audio: s.audio, MIDI: s.midi}
	}
}

// ID returns this node's stable arena handle.
func (n *Node) ID() NodeID { return n.id }

// UUID returns a debug-facing identifier, distinct from the arena
// handle.
func (n *Node) UUID() uuid.UUID { return n.uuid }

// Name returns the node's declared name.
func (n *Node) Name() string { return n.name }

// Parent returns the handle of the node that owns this node as a
// subnode, or invalidID if this node is not a subnode of anything.
func (n *Node) Parent() NodeID { return n.parent }

// Dispatch returns this node's sub-graph composition mode.
func (n *Node) Dispatch() DispatchMode { return n.dispatch }

// SetDispatch sets this node's sub-graph composition mode. Must be set
// before Graph.Build wires the subnode chain.
func (n *Node) SetDispatch(d DispatchMode) { n.dispatch = d }

// Active reports whether this node currently participates in rendering.
// An inactive node's render function is not called by Graph.renderNode,
// but note that Active does not by itself stop upstream pulls; use
// Connection.SetActive on the edges feeding it for that.
func (n *Node) Active() bool { return n.active.Load() }

// SetActive sets the node's active flag.
func (n *Node) SetActive(active bool) { n.active.Store(active) }

// Muted reports the node's muted flag. Muting a node is a convenience
// that a host typically implements by muting its default output
// socket's connections; the flag itself carries no render-path behavior
// beyond what the host wires up.
func (n *Node) Muted() bool { return n.muted.Load() }

// SetMuted sets the node's muted flag.
func (n *Node) SetMuted(muted bool) { n.muted.Store(muted) }

// Processed reports whether this node has already rendered this vector.
// A node renders at most once per vector no matter how many connections
// pull it.
func (n *Node) Processed() bool { return n.processed.Load() }

func (n *Node) setProcessed(v bool) { n.processed.Store(v) }

// Rate returns the node's last broadcast sample rate.
func (n *Node) Rate() float64 { return n.rate.Load() }

// Mul returns the node's level, proxied from its first output socket.
// "First output is the audio fader" is a deliberate convention, not an
// arbitrary restriction: a node with no outputs has no level to report
// and reads as unity gain.
func (n *Node) Mul() float64 {
	if len(n.outputs) == 0 {
		return 1
	}
	return n.owner.socket(n.outputs[0]).Mul()
}

// SetMul sets the node's level by setting its first output socket's
// broadcast mul.
func (n *Node) SetMul(mul float64) {
	if len(n.outputs) == 0 {
		return
	}
	n.owner.socket(n.outputs[0]).SetMul(mul)
}

// Add is Mul's counterpart for the additive offset.
func (n *Node) Add() float64 {
	if len(n.outputs) == 0 {
		return 0
	}
	return n.owner.socket(n.outputs[0]).Add()
}

// SetAdd sets the node's first output socket's broadcast add.
func (n *Node) SetAdd(add float64) {
	if len(n.outputs) == 0 {
		return
	}
	n.owner.socket(n.outputs[0]).SetAdd(add)
}

// Inputs returns the handles of this node's input sockets, in
// declaration order.
func (n *Node) Inputs() []SocketID { return append([]SocketID(nil), n.inputs...) }

// Outputs returns the handles of this node's output sockets, in
// declaration order.
func (n *Node) Outputs() []SocketID { return append([]SocketID(nil), n.outputs...) }

// Subnodes returns the handles of this node's subnodes, in declaration
// order.
func (n *Node) Subnodes() []NodeID { return append([]NodeID(nil), n.subnodes...) }

// AddInput declares a new input socket on this node, registering it
// immediately (construction-time registration, distinct from the
// batched connection back-reference registration a Connect performs).
func (n *Node) AddInput(name string, t SignalType, nchannels int, isDefault bool) *Socket {
	return n.owner.newSocket(n, Input, name, t, nchannels, isDefault)
}

// AddOutput declares a new output socket on this node.
func (n *Node) AddOutput(name string, t SignalType, nchannels int, isDefault bool) *Socket {
	return n.owner.newSocket(n, Output, name, t, nchannels, isDefault)
}

// AddSubnode appends sub to this node's subnode list for dispatch-mode
// auto-wiring at Graph.Build.
func (n *Node) AddSubnode(sub NodeID) {
	n.subnodes = append(n.subnodes, sub)
	if s := n.owner.node(sub); s != nil {
		s.parent = n.id
	}
}

// DefaultSocket returns the node's default socket of the given polarity
// and type: the one constructed with isDefault=true if any, else the
// first matching socket. Used by Graph.Connect's (Node, ...) overloads
// to pick an endpoint when the caller names a node instead of a socket.
func (n *Node) DefaultSocket(p Polarity, t SignalType) (*Socket, bool) {
	list := n.inputs
	if p == Output {
		list = n.outputs
	}
	var firstMatch *Socket
	for _, sid := range list {
		s := n.owner.socket(sid)
		if s == nil || s.sigType != t {
			continue
		}
		if firstMatch == nil {
			firstMatch = s
		}
		if s.isDefault {
			return s, true
		}
	}
	if firstMatch != nil {
		return firstMatch, true
	}
	return nil, false
}
