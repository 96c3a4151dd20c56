package graph_test

import (
	"math"

	"github.com/wpn114/audiograph/graph"
)

// sineOsc writes a 440Hz-style sine tone to its single audio output
// channel. Frame index is tracked across renders so successive vectors
// continue the same phase, the way a real oscillator would.
type sineOsc struct {
	freq, rate float64
	frame      int
	renders    int
}

func (s *sineOsc) Render(inputs, outputs graph.Pool, nframes int) error {
	s.renders++
	out := outputs[0].Audio
	for f := 0; f < nframes; f++ {
		t := float64(s.frame+f) / s.rate
		out[0][f] = math.Sin(2 * math.Pi * s.freq * t)
	}
	s.frame += nframes
	return nil
}

// vca copies its single audio input to its single audio output
// unmodified; the connection feeding the VCA input carries whatever
// gain the test wants to exercise.
type vca struct{}

func (vca) Render(inputs, outputs graph.Pool, nframes int) error {
	in := inputs[0].Audio
	out := outputs[0].Audio
	for ch := range out {
		for f := 0; f < nframes && f < len(in[ch]); f++ {
			out[ch][f] = in[ch][f]
		}
	}
	return nil
}

// identitySource writes caller-supplied per-channel constants to every
// frame of its output, for routing tests that need distinguishable
// per-channel values rather than a waveform.
type identitySource struct {
	values []float64
}

func (s *identitySource) Render(inputs, outputs graph.Pool, nframes int) error {
	out := outputs[0].Audio
	for ch := range out {
		v := 0.0
		if ch < len(s.values) {
			v = s.values[ch]
		}
		for f := 0; f < nframes; f++ {
			out[ch][f] = v
		}
	}
	return nil
}

// sinkProbe passes its input straight through to its own output so a
// test can inspect what the sink received.
type sinkProbe struct{}

func (sinkProbe) Render(inputs, outputs graph.Pool, nframes int) error {
	in := inputs[0].Audio
	out := outputs[0].Audio
	for ch := range out {
		for f := 0; f < nframes && f < len(in[ch]); f++ {
			out[ch][f] = in[ch][f]
		}
	}
	return nil
}

// feedbackAdder adds a constant to whatever its input holds and writes
// the result to its own output. Wired as a self-loop (its own output
// feeding back into its own input with feedback=true), it turns into a
// running accumulator: each vector's output is the previous vector's
// output plus the constant, without ever forcing a second render of
// itself within the same vector.
type feedbackAdder struct {
	step    float64
	renders int
}

func (d *feedbackAdder) Render(inputs, outputs graph.Pool, nframes int) error {
	d.renders++
	in := inputs[0].Audio
	out := outputs[0].Audio
	for f := 0; f < nframes; f++ {
		out[0][f] = in[0][f] + d.step
	}
	return nil
}
