package graph

import "sync/atomic"

// Socket is a typed input or output port on a Node. It owns its buffer
// for the node's lifetime and holds weak back-references (handles, not
// pointers) to every Connection touching it.
type Socket struct {
	id        SocketID
	owner     *Graph
	parent    NodeID
	name      string
	polarity  Polarity
	sigType   SignalType
	isDefault bool

	nchannels int // mutable pre-render / via deferred mutation only

	mul   atomicFloat64
	add   atomicFloat64
	muted atomic.Bool

	audio AudioBuffer
	midi  *MIDIBuffer

	// connections holds the edges that touch this socket, in the order
	// they were registered. For an input socket every entry has this
	// socket as dest; for an output socket, as source. Registration is
	// batched by Graph.Build / mutation application rather than appended
	// eagerly by Connect, so storage reallocation during staged
	// construction never leaves a dangling back-reference.
	connections []ConnectionID
}

// ID returns this socket's stable arena handle.
func (s *Socket) ID() SocketID { return s.id }

// Name returns the socket's declared name.
func (s *Socket) Name() string { return s.name }

// Polarity reports whether this is an input or output socket. Fixed for
// the socket's lifetime.
func (s *Socket) Polarity() Polarity { return s.polarity }

// Type reports the socket's signal type. Fixed for the socket's
// lifetime.
func (s *Socket) Type() SignalType { return s.sigType }

// ParentNode returns the handle of the node that owns this socket.
func (s *Socket) ParentNode() NodeID { return s.parent }

// NChannels reports the socket's current channel count.
func (s *Socket) NChannels() int { return s.nchannels }

// Mul returns the socket's broadcast gain.
func (s *Socket) Mul() float64 { return s.mul.Load() }

// Add returns the socket's broadcast offset.
func (s *Socket) Add() float64 { return s.add.Load() }

// Muted reports the socket's broadcast mute state.
func (s *Socket) Muted() bool { return s.muted.Load() }

// Audio returns the socket's audio buffer. Valid only when Type() ==
// Audio or one of the scalar control types; nil before Graph.Build.
func (s *Socket) Audio() AudioBuffer { return s.audio }

// MIDI returns the socket's event buffer. Valid only when Type() ==
// Midi_1_0; nil before Graph.Build.
func (s *Socket) MIDI() *MIDIBuffer { return s.midi }

// SetMul sets the socket's broadcast gain and overwrites the mul of
// every connection currently touching this socket. A later
// per-connection SetMul still overrides this for that one edge.
func (s *Socket) SetMul(mul float64) {
	s.mul.Store(mul)
	for _, cid := range s.connections {
		if c := s.owner.connection(cid); c != nil {
			c.mul.Store(mul)
		}
	}
}

// SetAdd is SetMul's counterpart for the additive offset.
func (s *Socket) SetAdd(add float64) {
	s.add.Store(add)
	for _, cid := range s.connections {
		if c := s.owner.connection(cid); c != nil {
			c.add.Store(add)
		}
	}
}

// SetMuted mutes or unmutes every connection touching this socket.
func (s *Socket) SetMuted(muted bool) {
	s.muted.Store(muted)
	for _, cid := range s.connections {
		if c := s.owner.connection(cid); c != nil {
			c.muted.Store(muted)
		}
	}
}

// SetNChannels resizes the socket's buffer. Only valid between
// Graph.Build and the first Run, or when applied through the deferred
// mutation queue (EnqueueMutation) — never synchronously while the
// realtime thread is inside Run.
func (s *Socket) SetNChannels(n int) error {
	if s.owner.inRun.Load() {
		return ErrAllocationRefused
	}
	s.nchannels = n
	if s.sigType != Midi_1_0 {
		s.audio = newAudioBuffer(n, s.sigType.frameCount(s.owner.props.Vector))
		if parent := s.owner.node(s.parent); parent != nil && s.owner.st != stateBuilding {
			parent.rebuildPools()
		}
	}
	return nil
}

// ConnectedTo reports whether this socket has a live connection to the
// given socket, in either direction.
func (s *Socket) ConnectedTo(other SocketID) bool {
	for _, cid := range s.connections {
		c := s.owner.connection(cid)
		if c == nil {
			continue
		}
		if c.source == other || c.dest == other {
			return true
		}
	}
	return false
}

// ConnectedToNode reports whether this socket has a live connection to
// any socket owned by the given node.
func (s *Socket) ConnectedToNode(n NodeID) bool {
	for _, cid := range s.connections {
		c := s.owner.connection(cid)
		if c == nil {
			continue
		}
		var peer SocketID
		if s.polarity == Input {
			peer = c.source
		} else {
			peer = c.dest
		}
		if peerSocket := s.owner.socket(peer); peerSocket != nil && peerSocket.parent == n {
			return true
		}
	}
	return false
}

// Assign establishes a connection between this socket and other: if this
// socket is an Input, other must be an Output and becomes the source; if
// this socket is an Output, other must be an Input and becomes the
// destination. This is the socket-level convenience a declarative
// scene description uses to express `Connection on somesocket { ... }`.
func (s *Socket) Assign(other SocketID) (*Connection, error) {
	if s.polarity == Input {
		return s.owner.Connect(other, s.id, Routing{})
	}
	return s.owner.Connect(s.id, other, Routing{})
}
