package graph

import "errors"

// Sentinel error kinds returned by this package. Wrap these with
// fmt.Errorf("%w") for context; callers distinguish them with errors.Is.
var (
	// ErrPolarityMismatch is returned when a connection is attempted
	// between two sockets that aren't one Output and one Input.
	ErrPolarityMismatch = errors.New("graph: polarity mismatch")
	// ErrTypeMismatch is returned when a connection is attempted between
	// sockets of different SignalType.
	ErrTypeMismatch = errors.New("graph: type mismatch")
	// ErrChannelOutOfRange is returned when a routing entry references a
	// channel that does not exist on the source or destination socket.
	ErrChannelOutOfRange = errors.New("graph: channel out of range")
	// ErrNotReady is returned when Run is called before Build.
	ErrNotReady = errors.New("graph: not ready")
	// ErrAllocationRefused is returned when a mutation that would
	// allocate is submitted while the queue has no room for it.
	ErrAllocationRefused = errors.New("graph: allocation refused")
	// ErrFeedbackNotMarked is returned by Build when a DFS over the
	// connection graph finds a cycle with no feedback-flagged edge.
	ErrFeedbackNotMarked = errors.New("graph: cycle exists with no feedback edge")
	// ErrUnknownNode / ErrUnknownSocket / ErrUnknownConnection are
	// returned when a handle does not resolve in the current arena.
	ErrUnknownNode       = errors.New("graph: unknown node handle")
	ErrUnknownSocket     = errors.New("graph: unknown socket handle")
	ErrUnknownConnection = errors.New("graph: unknown connection handle")
	// ErrNoDefaultSocket is returned when Connect(Node, ...) cannot find
	// a default socket of the required polarity/type on a node.
	ErrNoDefaultSocket = errors.New("graph: node has no default socket of the requested type")
	// ErrAlreadyBuilt is returned by Build if called more than once.
	// A repeated (source, dest) pair passed to Connect is not an error;
	// it updates the existing connection's routing instead.
	ErrAlreadyBuilt = errors.New("graph: already built")
)
