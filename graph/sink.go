package graph

// DriverStatus reports stream-level conditions an audio driver signals
// alongside a render callback: buffer underrun/overrun, stream stopped.
type DriverStatus uint8

const (
	StatusOK DriverStatus = iota
	StatusUnderrun
	StatusOverrun
	StatusStreamStopped
)

// DriverCallback is the boundary contract an external audio driver
// invokes once per period: out/in are interleaved sample buffers in the
// driver's own sample format and channel count, nframes is at most
// Graph.Properties().Vector, and time is the driver's stream clock in
// seconds. This package does not implement a driver; a host supplies a
// *SinkAdapter wired to whatever I/O layer it uses.
type DriverCallback func(out, in []float32, nframes int, time float64, status DriverStatus) error

// SinkAdapter bridges a sink node's default audio output socket to a
// driver's interleaved-sample expectations: it runs the graph for one
// vector and interleaves the sink's planar channel buffers into the
// driver's output slice, doing no allocation in the steady state.
type SinkAdapter struct {
	g    *Graph
	sink *Node
	ch   int
}

// NewSinkAdapter builds an adapter over sink's default audio output
// socket. It returns ErrNoDefaultSocket if sink has no Audio output.
func NewSinkAdapter(g *Graph, sink *Node) (*SinkAdapter, error) {
	s, ok := sink.DefaultSocket(Output, Audio)
	if !ok {
		return nil, ErrNoDefaultSocket
	}
	return &SinkAdapter{g: g, sink: sink, ch: s.NChannels()}, nil
}

// Channels reports the sink's output channel count.
func (a *SinkAdapter) Channels() int { return a.ch }

// Pull renders one vector and interleaves the sink's output audio into
// out, which must be at least nframes*a.Channels() long. Extra trailing
// capacity in out is left untouched.
func (a *SinkAdapter) Pull(out []float32, nframes int, time float64, status DriverStatus) error {
	if err := a.g.Run(a.sink, nframes); err != nil {
		return err
	}
	s, _ := a.sink.DefaultSocket(Output, Audio)
	buf := s.Audio()
	for f := 0; f < nframes; f++ {
		for c := 0; c < a.ch; c++ {
			var v float64
			if c < len(buf) && f < len(buf[c]) {
				v = buf[c][f]
			}
			idx := f*a.ch + c
			if idx < len(out) {
				out[idx] = float32(v)
			}
		}
	}
	return nil
}
