package graph

import "math"

// DB converts a decibel value to the linear gain Socket.SetMul and
// Connection.SetMul expect. Client code wiring up a fader in decibels
// calls node.SetMul(graph.DB(-6)) rather than hand-computing the
// conversion.
func DB(v float64) float64 {
	return math.Pow(10, v/20)
}
