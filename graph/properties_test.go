package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wpn114/audiograph/graph"
)

// counterRenderer lets a test assert exactly how many times a node was
// rendered during one Run, to check a shared node is never rendered
// twice for multiple consumers pulling it in the same vector.
type counterRenderer struct {
	renders int
}

func (c *counterRenderer) Render(inputs, outputs graph.Pool, nframes int) error {
	c.renders++
	for _, o := range outputs {
		for ch := range o.Audio {
			for f := range o.Audio[ch] {
				o.Audio[ch][f] = 1
			}
		}
	}
	return nil
}

// Property #1: a node with two downstream consumers still renders once
// per vector; the second consumer's pull observes the node already
// Processed and does not re-render it.
func TestSingleRenderPerVector(t *testing.T) {
	g := newTestGraph(4, 48000)

	src := &counterRenderer{}
	srcNode := g.NewNode("src", src)
	srcOut := srcNode.AddOutput("out", graph.Audio, 1, true)

	mixNode := g.NewNode("mix", vca{})
	mixA := mixNode.AddInput("a", graph.Audio, 1, true)
	mixOut := mixNode.AddOutput("out", graph.Audio, 1, true)

	sinkNode := g.NewNode("sink", sinkProbe{})
	sinkIn := sinkNode.AddInput("in", graph.Audio, 1, true)
	_ = sinkNode.AddOutput("out", graph.Audio, 1, true)

	// src feeds both mix's input and the sink's input directly, so the
	// sink's render path reaches src via two distinct connections.
	_, err := g.Connect(srcOut.ID(), mixA.ID(), graph.Routing{})
	require.NoError(t, err)
	_, err = g.Connect(mixOut.ID(), sinkIn.ID(), graph.Routing{})
	require.NoError(t, err)
	_, err = g.Connect(srcOut.ID(), sinkIn.ID(), graph.Routing{})
	require.NoError(t, err)

	require.NoError(t, g.Build())
	require.NoError(t, g.Run(sinkNode, 4))

	assert.Equal(t, 1, src.renders)
}

// Property #3: two edges into the same input socket accumulate
// sample-wise.
func TestAccumulationAcrossEdges(t *testing.T) {
	g := newTestGraph(4, 48000)

	a := g.NewNode("a", &identitySource{values: []float64{2}})
	aOut := a.AddOutput("out", graph.Audio, 1, true)
	b := g.NewNode("b", &identitySource{values: []float64{3}})
	bOut := b.AddOutput("out", graph.Audio, 1, true)

	sinkNode := g.NewNode("sink", sinkProbe{})
	sinkIn := sinkNode.AddInput("in", graph.Audio, 1, true)
	sinkOut := sinkNode.AddOutput("out", graph.Audio, 1, true)

	_, err := g.Connect(aOut.ID(), sinkIn.ID(), graph.Routing{})
	require.NoError(t, err)
	_, err = g.Connect(bOut.ID(), sinkIn.ID(), graph.Routing{})
	require.NoError(t, err)

	require.NoError(t, g.Build())
	require.NoError(t, g.Run(sinkNode, 4))

	for _, v := range sinkOut.Audio()[0] {
		assert.Equal(t, 5.0, v)
	}
}

// Property #7: null routing with src having more channels than dst only
// copies the first min(src, dst) channels and never indexes out of
// bounds.
func TestNullRoutingTruncatesExtraSourceChannels(t *testing.T) {
	g := newTestGraph(4, 48000)

	src := g.NewNode("src", &identitySource{values: []float64{1, 2, 3}})
	srcOut := src.AddOutput("out", graph.Audio, 3, true)

	sinkNode := g.NewNode("sink", sinkProbe{})
	sinkIn := sinkNode.AddInput("in", graph.Audio, 2, true)
	sinkOut := sinkNode.AddOutput("out", graph.Audio, 2, true)

	_, err := g.Connect(srcOut.ID(), sinkIn.ID(), graph.Routing{})
	require.NoError(t, err)

	require.NoError(t, g.Build())
	require.NoError(t, g.Run(sinkNode, 4))

	out := sinkOut.Audio()
	require.Len(t, out, 2)
	for _, v := range out[0] {
		assert.Equal(t, 1.0, v)
	}
	for _, v := range out[1] {
		assert.Equal(t, 2.0, v)
	}
}

// Property #8: dst = src*mul + add, sample-exact.
func TestGainAndOffset(t *testing.T) {
	g := newTestGraph(4, 48000)

	src := g.NewNode("src", &identitySource{values: []float64{2}})
	srcOut := src.AddOutput("out", graph.Audio, 1, true)

	sinkNode := g.NewNode("sink", sinkProbe{})
	sinkIn := sinkNode.AddInput("in", graph.Audio, 1, true)
	sinkOut := sinkNode.AddOutput("out", graph.Audio, 1, true)

	conn, err := g.Connect(srcOut.ID(), sinkIn.ID(), graph.Routing{})
	require.NoError(t, err)

	require.NoError(t, g.Build())
	conn.SetMul(3)
	conn.SetAdd(1)

	require.NoError(t, g.Run(sinkNode, 4))

	for _, v := range sinkOut.Audio()[0] {
		assert.Equal(t, 7.0, v) // 2*3 + 1
	}
}

// midiSource emits a fixed set of events once, then stays silent.
type midiSource struct {
	events []graph.MIDIEvent
	fired  bool
}

func (m *midiSource) Render(inputs, outputs graph.Pool, nframes int) error {
	if m.fired {
		return nil
	}
	for _, e := range m.events {
		outputs[0].MIDI.Append(e)
	}
	m.fired = true
	return nil
}

// midiPassthrough copies whatever events it received to its own output,
// so a node pulling it transitively pulls whatever fed it.
type midiPassthrough struct{}

func (midiPassthrough) Render(inputs, outputs graph.Pool, nframes int) error {
	for _, e := range inputs[0].MIDI.Events() {
		outputs[0].MIDI.Append(e)
	}
	return nil
}

// midiSink just exists to be a pull target; it doesn't need to do
// anything with what it receives for this test.
type midiSink struct{}

func (midiSink) Render(inputs, outputs graph.Pool, nframes int) error { return nil }

// Property #9: a single MIDI source with two destinations delivers the
// same event set to both, via copy rather than move.
func TestMIDIFanOut(t *testing.T) {
	g := newTestGraph(4, 48000)

	events := []graph.MIDIEvent{
		{Status: 0x90, B1: 60, B2: 100},
		{Status: 0x80, B1: 60, B2: 0},
	}
	src := g.NewNode("src", &midiSource{events: events})
	srcOut := src.AddOutput("out", graph.Midi_1_0, 1, true)

	destA := g.NewNode("destA", midiPassthrough{})
	destAIn := destA.AddInput("in", graph.Midi_1_0, 1, true)
	destAOut := destA.AddOutput("out", graph.Midi_1_0, 1, true)

	destB := g.NewNode("destB", midiPassthrough{})
	destBIn := destB.AddInput("in", graph.Midi_1_0, 1, true)
	destBOut := destB.AddOutput("out", graph.Midi_1_0, 1, true)

	// sinkNode pulls both destA and destB, so Run's traversal reaches
	// both of src's consumers.
	sinkNode := g.NewNode("sink", midiSink{})
	sinkInA := sinkNode.AddInput("a", graph.Midi_1_0, 1, true)
	sinkInB := sinkNode.AddInput("b", graph.Midi_1_0, 1, false)

	_, err := g.Connect(srcOut.ID(), destAIn.ID(), graph.Routing{})
	require.NoError(t, err)
	_, err = g.Connect(srcOut.ID(), destBIn.ID(), graph.Routing{})
	require.NoError(t, err)
	_, err = g.Connect(destAOut.ID(), sinkInA.ID(), graph.Routing{})
	require.NoError(t, err)
	_, err = g.Connect(destBOut.ID(), sinkInB.ID(), graph.Routing{})
	require.NoError(t, err)

	require.NoError(t, g.Build())
	require.NoError(t, g.Run(sinkNode, 4))

	assert.Equal(t, events, destAIn.MIDI().Events())
	assert.Equal(t, events, destBIn.MIDI().Events())
}

// Property #4 (MIDI half): a muted MIDI edge contributes zero events.
func TestMutedMIDIEdgeContributesNoEvents(t *testing.T) {
	g := newTestGraph(4, 48000)

	events := []graph.MIDIEvent{{Status: 0x90, B1: 60, B2: 100}}
	src := g.NewNode("src", &midiSource{events: events})
	srcOut := src.AddOutput("out", graph.Midi_1_0, 1, true)

	dest := g.NewNode("dest", midiSink{})
	destIn := dest.AddInput("in", graph.Midi_1_0, 1, true)

	conn, err := g.Connect(srcOut.ID(), destIn.ID(), graph.Routing{})
	require.NoError(t, err)

	require.NoError(t, g.Build())
	conn.SetMuted(true)

	require.NoError(t, g.Run(dest, 4))

	assert.Empty(t, destIn.MIDI().Events())
}

// Property #10: after Run returns, every node's processed flag is false.
func TestProcessedResetAfterRun(t *testing.T) {
	g := newTestGraph(4, 48000)

	osc := g.NewNode("osc", &sineOsc{freq: 440, rate: 48000})
	oscOut := osc.AddOutput("out", graph.Audio, 1, true)

	sinkNode := g.NewNode("sink", sinkProbe{})
	sinkIn := sinkNode.AddInput("in", graph.Audio, 1, true)
	_ = sinkNode.AddOutput("out", graph.Audio, 1, true)

	_, err := g.Connect(oscOut.ID(), sinkIn.ID(), graph.Routing{})
	require.NoError(t, err)

	require.NoError(t, g.Build())
	require.NoError(t, g.Run(sinkNode, 4))

	assert.False(t, osc.Processed())
	assert.False(t, sinkNode.Processed())
}
