package graph

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/wpn114/audiograph/graph/observer"
)

// Graph is the process-wide registry of nodes and connections for one
// audio session: it orchestrates allocation and drives the per-vector
// pull. A Graph is not safe for concurrent use by multiple
// control-thread goroutines; the discipline it implements is realtime
// thread (Run) versus control thread(s) (everything else).
type Graph struct {
	props Properties
	st    state

	nodes   map[NodeID]*Node
	sockets map[SocketID]*Socket
	conns   map[ConnectionID]*Connection

	nodeOrder []NodeID // registration order, for rate broadcasts and Build

	pendingRegistration []ConnectionID // connections awaiting back-ref registration

	nextNodeID uint32
	nextSockID uint32
	nextConnID uint32

	mutations *mutationQueue
	observer  *observer.Queue
	log       *slog.Logger

	inRun atomic.Bool
}

// Option configures a Graph at construction time.
type Option func(*Graph)

// WithLogger overrides the default slog logger (slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(g *Graph) { g.log = l }
}

// WithMutationQueueSize sets the deferred-mutation queue's buffer depth.
func WithMutationQueueSize(n int) Option {
	return func(g *Graph) { g.mutations = newMutationQueue(n) }
}

// WithObserverQueueSize sets the MIDI/error observer queue's buffer
// depth.
func WithObserverQueueSize(n int) Option {
	return func(g *Graph) { g.observer = observer.New(n) }
}

// New creates an empty Graph in the Building state.
func New(props Properties, opts ...Option) *Graph {
	g := &Graph{
		props:     props,
		st:        stateBuilding,
		nodes:     make(map[NodeID]*Node),
		sockets:   make(map[SocketID]*Socket),
		conns:     make(map[ConnectionID]*Connection),
		mutations: newMutationQueue(64),
		observer:  observer.New(256),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Properties returns the graph's sample rate and vector size.
func (g *Graph) Properties() Properties { return g.props }

// Observer returns the queue the realtime thread reports MIDI events and
// render-path anomalies on. Drain it from a non-realtime goroutine.
func (g *Graph) Observer() *observer.Queue { return g.observer }

func (g *Graph) node(id NodeID) *Node         { return g.nodes[id] }
func (g *Graph) socket(id SocketID) *Socket   { return g.sockets[id] }
func (g *Graph) connection(id ConnectionID) *Connection { return g.conns[id] }

// ---------------------------------------------------------------------
// Registration (phase 1)

// NewNode registers a new node with the given renderer and returns it.
// Valid any time before teardown; after Build, prefer EnqueueMutation so
// the addition is applied at a safe point relative to Run.
func (g *Graph) NewNode(name string, renderer Renderer) *Node {
	g.nextNodeID++
	id := NodeID(g.nextNodeID)
	n := &Node{
		id:       id,
		uuid:     uuid.New(),
		owner:    g,
		name:     name,
		renderer: renderer,
	}
	n.active.Store(true)
	g.nodes[id] = n
	g.nodeOrder = append(g.nodeOrder, id)
	return n
}

func (g *Graph) newSocket(parent *Node, p Polarity, name string, t SignalType, nchannels int, isDefault bool) *Socket {
	g.nextSockID++
	id := SocketID(g.nextSockID)
	s := &Socket{
		id:        id,
		owner:     g,
		parent:    parent.id,
		name:      name,
		polarity:  p,
		sigType:   t,
		nchannels: nchannels,
		isDefault: isDefault,
		mul:       newAtomicFloat64(1),
	}
	g.sockets[id] = s
	if p == Input {
		parent.inputs = append(parent.inputs, id)
	} else {
		parent.outputs = append(parent.outputs, id)
	}

	// A socket declared on a node added after Build (e.g. from inside an
	// EnqueueMutation callback) has no later allocation pass coming, so
	// allocate and refresh the owning node's pools right away. Before
	// Build this is a no-op left to the batch allocation pass.
	if g.st != stateBuilding {
		s.allocate(g.props.Vector)
		parent.rebuildPools()
	}
	return s
}

// Connect creates a directed connection from an Output socket to an
// Input socket of identical type. Structural validation (polarity,
// type, routing channel bounds) always happens synchronously so
// construction-time errors surface to the caller immediately. If the
// graph is still Building, the connection is registered immediately
// (still deferred to Build's batch pass for back-refs). If the graph is
// Ready or Running, the registration itself is deferred onto the
// mutation queue and applied at the top of the next Run; the returned
// Connection exists right away but is not pulled until that mutation
// applies, and applying it resets the connection's mul, add and muted
// from the two sockets' current values.
func (g *Graph) Connect(source, dest SocketID, routing Routing) (*Connection, error) {
	srcSocket := g.socket(source)
	dstSocket := g.socket(dest)
	if srcSocket == nil || dstSocket == nil {
		return nil, ErrUnknownSocket
	}
	if srcSocket.polarity != Output || dstSocket.polarity != Input {
		return nil, ErrPolarityMismatch
	}
	if srcSocket.sigType != dstSocket.sigType {
		return nil, ErrTypeMismatch
	}
	if !routing.Null() {
		if err := routing.validate(srcSocket.nchannels, dstSocket.nchannels); err != nil {
			return nil, err
		}
	}

	if existing := g.findConnection(source, dest); existing != nil {
		r := routing
		existing.routing.Store(&r)
		return existing, nil
	}

	g.nextConnID++
	id := ConnectionID(g.nextConnID)
	c := &Connection{
		id:          id,
		uuid:        uuid.New(),
		source:      source,
		dest:        dest,
		sigType:     srcSocket.sigType,
		nchannels:   min(srcSocket.nchannels, dstSocket.nchannels),
		srcChannels: srcSocket.nchannels,
		dstChannels: dstSocket.nchannels,
	}
	c.routing.Store(&routing)
	c.active.Store(true)
	g.conns[id] = c

	g.log.Debug("graph: connect",
		"source_node", g.node(srcSocket.parent).name, "source_socket", srcSocket.name,
		"dest_node", g.node(dstSocket.parent).name, "dest_socket", dstSocket.name,
		"ncables", routing.Ncables())

	if g.st == stateBuilding {
		g.pendingRegistration = append(g.pendingRegistration, id)
		return c, nil
	}

	if err := g.mutations.enqueue(MutationFunc(func(g *Graph) error {
		g.registerConnection(c)
		return nil
	})); err != nil {
		delete(g.conns, id)
		return nil, err
	}
	return c, nil
}

// ConnectNodes connects the source node's default output socket to the
// destination node's default input socket of the same type.
func (g *Graph) ConnectNodes(source, dest *Node, routing Routing) (*Connection, error) {
	for _, sid := range source.outputs {
		s := g.socket(sid)
		d, ok := dest.DefaultSocket(Input, s.sigType)
		if !ok {
			continue
		}
		if !s.isDefault && len(source.outputs) > 1 {
			continue
		}
		return g.Connect(s.id, d.id, routing)
	}
	return nil, ErrNoDefaultSocket
}

// ConnectNodeToSocket connects source's default output socket matching
// dest's type to dest directly, for callers that already hold the
// destination socket handle but want the source's default picked for
// them.
func (g *Graph) ConnectNodeToSocket(source *Node, dest SocketID, routing Routing) (*Connection, error) {
	dstSocket := g.socket(dest)
	if dstSocket == nil {
		return nil, ErrUnknownSocket
	}
	s, ok := source.DefaultSocket(Output, dstSocket.sigType)
	if !ok {
		return nil, ErrNoDefaultSocket
	}
	return g.Connect(s.id, dest, routing)
}

// ConnectSocketToNode connects source directly to dest's default input
// socket matching source's type, the mirror image of
// ConnectNodeToSocket.
func (g *Graph) ConnectSocketToNode(source SocketID, dest *Node, routing Routing) (*Connection, error) {
	srcSocket := g.socket(source)
	if srcSocket == nil {
		return nil, ErrUnknownSocket
	}
	d, ok := dest.DefaultSocket(Input, srcSocket.sigType)
	if !ok {
		return nil, ErrNoDefaultSocket
	}
	return g.Connect(source, d.id, routing)
}

func (g *Graph) findConnection(source, dest SocketID) *Connection {
	for _, c := range g.conns {
		if c.source == source && c.dest == dest {
			return c
		}
	}
	return nil
}

// registerConnection performs the finalize step for one connection:
// fixing mul/add/muted from the endpoints' current defaults and
// appending the back-reference on both sockets' connection lists.
func (g *Graph) registerConnection(c *Connection) {
	src := g.socket(c.source)
	dst := g.socket(c.dest)
	c.mul.Store(src.Mul() * dst.Mul())
	c.add.Store(src.Add() + dst.Add())
	c.muted.Store(src.Muted() || dst.Muted())
	src.connections = append(src.connections, c.id)
	dst.connections = append(dst.connections, c.id)
}

// Disconnect removes the connection between source and dest, if any. As
// with Connect, this is deferred onto the mutation queue once the graph
// is past Building.
func (g *Graph) Disconnect(source, dest SocketID) error {
	c := g.findConnection(source, dest)
	if c == nil {
		return nil
	}
	remove := func(g *Graph) error {
		src := g.socket(c.source)
		dst := g.socket(c.dest)
		src.connections = removeID(src.connections, c.id)
		dst.connections = removeID(dst.connections, c.id)
		delete(g.conns, c.id)
		return nil
	}
	if g.st == stateBuilding {
		return remove(g)
	}
	return g.mutations.enqueue(MutationFunc(remove))
}

func removeID(ids []ConnectionID, target ConnectionID) []ConnectionID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// EnqueueMutation submits an arbitrary topology or allocation-requiring
// change for application at the top of the next Run. Use this for
// operations this package doesn't expose a typed helper for (e.g. adding
// a node while the graph is already running).
func (g *Graph) EnqueueMutation(op MutationOp) error {
	return g.mutations.enqueue(op)
}

// ---------------------------------------------------------------------
// Build (phase 2, component-complete)

// Build transitions the graph from Building to Ready: it wires dispatch-
// induced subnode connections, registers every pending connection's
// back-references, checks that every cycle has a feedback-flagged edge,
// allocates every socket's buffer, builds each node's input/output pool
// views, and calls Initialize on any node that implements it.
func (g *Graph) Build() error {
	if g.st != stateBuilding {
		return ErrAlreadyBuilt
	}

	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		if n.parent == invalidID {
			if err := g.wireDispatch(n); err != nil {
				return err
			}
		}
	}

	for _, id := range g.pendingRegistration {
		if c, ok := g.conns[id]; ok {
			g.registerConnection(c)
		}
	}
	g.pendingRegistration = nil

	if err := g.checkFeedbackMarking(); err != nil {
		return err
	}

	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		for _, sid := range n.inputs {
			g.socket(sid).allocate(g.props.Vector)
		}
		for _, sid := range n.outputs {
			g.socket(sid).allocate(g.props.Vector)
		}
		n.rebuildPools()
		if init, ok := n.renderer.(Initializer); ok {
			if err := init.Initialize(g.props); err != nil {
				return fmt.Errorf("graph: initialize node %q: %w", n.name, err)
			}
		}
	}

	g.st = stateReady
	g.log.Debug("graph ready", "nodes", len(g.nodes), "connections", len(g.conns))
	return nil
}

func (s *Socket) allocate(vector int) {
	if s.sigType == Midi_1_0 {
		s.midi = &MIDIBuffer{}
		return
	}
	s.audio = newAudioBuffer(s.nchannels, s.sigType.frameCount(vector))
}

// ---------------------------------------------------------------------
// Run (phase 3)

// Run drains pending deferred mutations and renders one vector of at
// most nframes frames from sink. It is the only entry point the
// realtime audio thread calls.
func (g *Graph) Run(sink *Node, nframes int) error {
	if g.st != stateReady && g.st != stateRunning {
		return ErrNotReady
	}
	g.st = stateRunning

	g.mutations.drain(g)

	g.inRun.Store(true)
	defer g.inRun.Store(false)

	if nframes > g.props.Vector {
		nframes = g.props.Vector
	}

	g.renderNode(sink, nframes)

	for _, id := range g.nodeOrder {
		g.nodes[id].setProcessed(false)
	}
	return nil
}

// renderNode zeros input audio buffers, clears owned MIDI output
// buffers, pulls active input connections in socket-declaration then
// edge-insertion order, calls the node's Renderer, and latches
// processed.
func (g *Graph) renderNode(n *Node, nframes int) {
	if n.Processed() {
		return
	}

	// Zero audio input buffers; MIDI input buffers get the same
	// treatment here since pull only ever appends to them and nothing
	// else would ever drain one, which would grow it unbounded across
	// vectors.
	for _, sid := range n.inputs {
		s := g.socket(sid)
		if s.sigType == Midi_1_0 {
			s.midi.Clear()
		} else {
			s.audio.zero()
		}
	}
	// Output MIDI buffers are cleared here too, by the owning node at the
	// start of its own render, so a fan-out pull can safely copy events
	// to every downstream consumer rather than moving them to only one.
	for _, sid := range n.outputs {
		s := g.socket(sid)
		if s.sigType == Midi_1_0 {
			s.midi.Clear()
		}
	}

	for _, sid := range n.inputs {
		s := g.socket(sid)
		for _, cid := range s.connections {
			c := g.conns[cid]
			if c == nil || !c.Active() {
				continue
			}
			c.pull(g, nframes)
		}
	}

	if n.Active() {
		if err := n.renderer.Render(n.inputPool, n.outputPool, nframes); err != nil {
			g.reportError(n, err)
		}
	}
	n.setProcessed(true)
}

func (g *Graph) reportError(n *Node, err error) {
	name := ""
	if n != nil {
		name = n.name
	}
	g.observer.Publish(observer.Event{Kind: observer.RenderError, NodeName: name, Err: err})
}

// ---------------------------------------------------------------------
// Rate changes

// SetRate broadcasts a new sample rate to every registered node that
// implements RateListener, and updates the graph's cached rate.
func (g *Graph) SetRate(rate float64) {
	g.props.SampleRate = rate
	for _, id := range g.nodeOrder {
		n := g.nodes[id]
		n.rate.Store(rate)
		if rl, ok := n.renderer.(RateListener); ok {
			rl.OnRateChanged(rate)
		}
	}
}

