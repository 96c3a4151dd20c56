// Package graph implements a declarative, pull-based audio/MIDI processing
// graph: typed sockets on nodes, directed connections between them, and a
// topology-aware engine that a realtime audio thread drives one vector at a
// time while a control thread concurrently adjusts parameters.
package graph

import "fmt"

// Polarity distinguishes an input socket from an output socket. A socket's
// polarity is fixed for the node's lifetime.
type Polarity uint8

const (
	// Output sockets are written by a node's render function.
	Output Polarity = iota
	// Input sockets are read by a node's render function, after being
	// filled by pulling their connections.
	Input
)

func (p Polarity) String() string {
	if p == Input {
		return "input"
	}
	return "output"
}

// SignalType identifies the kind of data a socket carries. Audio and
// Midi_1_0 sockets have dedicated buffer representations; the remaining
// types carry a single control sample per render vector.
type SignalType uint8

const (
	Audio SignalType = iota
	Midi_1_0
	Integer
	FloatingPoint
	Cv
	Gate
	Trigger
)

func (t SignalType) String() string {
	switch t {
	case Audio:
		return "audio"
	case Midi_1_0:
		return "midi_1_0"
	case Integer:
		return "integer"
	case FloatingPoint:
		return "floating_point"
	case Cv:
		return "cv"
	case Gate:
		return "gate"
	case Trigger:
		return "trigger"
	default:
		return fmt.Sprintf("signaltype(%d)", uint8(t))
	}
}

// frameCount returns how many samples a single-socket buffer holds for one
// render vector of the given length. Audio sockets carry a full vector;
// every other type carries one control sample regardless of vector size.
func (t SignalType) frameCount(vector int) int {
	if t == Audio {
		return vector
	}
	return 1
}

// DispatchMode governs how a node with subnodes is auto-wired to them at
// Graph.Build time.
type DispatchMode uint8

const (
	// Upwards chains a node's subnodes in declaration order (the first
	// subnode's output feeds the second's input, and so on) and connects
	// the last subnode's default output into the node's own default
	// input sockets.
	Upwards DispatchMode = iota
	// Downwards chains subnodes in reverse declaration order and
	// connects the node's own default output sockets into the first
	// subnode in that chain.
	Downwards
)

// Properties describes the process-wide settings of a Graph: the sample
// rate nodes should assume and the number of frames rendered per vector.
type Properties struct {
	SampleRate float64
	Vector     int
}

// NodeID, SocketID and ConnectionID are stable arena handles, assigned
// once and never reused. The render hot path resolves them through the
// Graph's handle-keyed tables rather than chasing pointers, so a stale handle
// held by a host across a topology mutation can never dangle.
type (
	NodeID       uint32
	SocketID     uint32
	ConnectionID uint32
)

// invalidID marks "no handle" for optional back-references (a node with
// no parent, a socket on a node not yet registered).
const invalidID = 0

// state is the Graph's lifecycle phase: registration, component-
// complete, running, teardown.
type state uint8

const (
	stateBuilding state = iota
	stateReady
	stateRunning
	stateTornDown
)

func (s state) String() string {
	switch s {
	case stateBuilding:
		return "building"
	case stateReady:
		return "ready"
	case stateRunning:
		return "running"
	case stateTornDown:
		return "torn-down"
	default:
		return "unknown"
	}
}
