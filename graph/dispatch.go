package graph

// wireDispatch implements DispatchMode's subnode auto-wiring: a node
// with two or more subnodes has them chained together into a single
// processing pipeline (each feeding the next's default input from its
// own default output), instead of requiring the host to wire every
// subnode connection by hand. It then wires the node's own default
// boundary sockets into the two loose ends of that chain, so a
// dispatching node reads and behaves like any other node from the
// outside even though its work happens in its subnodes.
//
// Downwards chains subnodes in reverse declaration order and connects
// the node's own default output sockets into the first subnode in that
// chain, so the node's output drives the pipeline from the top down.
// Upwards chains subnodes in declaration order and connects the last
// subnode's default output into the node's own default input sockets,
// so the pipeline's result flows up into the node's input from the
// bottom.
//
// wireDispatch recurses into each subnode before wiring n's own chain,
// so nested dispatch groups resolve bottom-up.
func (g *Graph) wireDispatch(n *Node) error {
	for _, sid := range n.subnodes {
		if err := g.wireDispatch(g.node(sid)); err != nil {
			return err
		}
	}

	if len(n.subnodes) < 2 {
		return nil
	}

	order := make([]NodeID, len(n.subnodes))
	copy(order, n.subnodes)
	if n.dispatch == Downwards {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}

	for i := 0; i+1 < len(order); i++ {
		upstream := g.node(order[i])
		downstream := g.node(order[i+1])
		if _, err := g.ConnectNodes(upstream, downstream, Routing{}); err != nil {
			return err
		}
	}

	first := g.node(order[0])
	last := g.node(order[len(order)-1])
	if n.dispatch == Downwards {
		for _, sid := range n.outputs {
			if !g.socket(sid).isDefault {
				continue
			}
			if _, err := g.ConnectSocketToNode(sid, first, Routing{}); err != nil {
				return err
			}
		}
		return nil
	}

	for _, sid := range n.inputs {
		if !g.socket(sid).isDefault {
			continue
		}
		if _, err := g.ConnectNodeToSocket(last, sid, Routing{}); err != nil {
			return err
		}
	}
	return nil
}

// checkFeedbackMarking runs a DFS over every non-feedback edge looking
// for a cycle; any cycle found that isn't broken by at least one
// feedback-flagged edge is an ErrFeedbackNotMarked build-time error.
// This runs once, at Build.
func (g *Graph) checkFeedbackMarking() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[NodeID]int, len(g.nodes))

	var visit func(id NodeID) error
	visit = func(id NodeID) error {
		color[id] = gray
		n := g.node(id)
		for _, sid := range n.outputs {
			s := g.socket(sid)
			for _, cid := range s.connections {
				c := g.conns[cid]
				if c == nil || c.Feedback() || c.source != sid {
					continue
				}
				dstNode := g.socket(c.dest).parent
				switch color[dstNode] {
				case white:
					if err := visit(dstNode); err != nil {
						return err
					}
				case gray:
					return ErrFeedbackNotMarked
				}
			}
		}
		color[id] = black
		return nil
	}

	for _, id := range g.nodeOrder {
		if color[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}
