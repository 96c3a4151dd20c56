package graph

// AudioBuffer is a channel-major view over a socket's samples:
// buf[channel][frame]. Audio sockets size the inner slices to the
// graph's vector; the scalar control types (Integer, FloatingPoint, Cv,
// Gate, Trigger) size them to 1, carrying a single control sample per
// render.
type AudioBuffer [][]float64

func newAudioBuffer(nchannels, nframes int) AudioBuffer {
	buf := make(AudioBuffer, nchannels)
	for c := range buf {
		buf[c] = make([]float64, nframes)
	}
	return buf
}

func (b AudioBuffer) zero() {
	for _, lane := range b {
		for i := range lane {
			lane[i] = 0
		}
	}
}

// MIDIEvent is one MIDI 1.0 channel-voice event: a status byte and up to
// two data bytes, exactly as carried on the wire.
type MIDIEvent struct {
	Status byte
	B1     byte
	B2     byte
}

// MIDIMessageKind is the high nibble of a MIDI status byte (the message
// type, channel-independent).
type MIDIMessageKind byte

const (
	NoteOff         MIDIMessageKind = 0x80
	NoteOn          MIDIMessageKind = 0x90
	PolyAftertouch  MIDIMessageKind = 0xA0
	ControlChange   MIDIMessageKind = 0xB0
	ProgramChange   MIDIMessageKind = 0xC0
	ChanAftertouch  MIDIMessageKind = 0xD0
	PitchBend       MIDIMessageKind = 0xE0
)

// Kind extracts the message type from the event's status byte by masking
// off the channel nibble. Comparing the raw status byte against ranges
// like status < 0x90 silently folds the channel into the comparison and
// misclassifies anything above 0xa0; masking with 0xF0 is the only
// correct extraction.
func (e MIDIEvent) Kind() MIDIMessageKind { return MIDIMessageKind(e.Status & 0xF0) }

// Channel extracts the MIDI channel (0-15) from the event's status byte.
func (e MIDIEvent) Channel() byte { return e.Status & 0x0F }

// MIDIBuffer is a growable event sequence owned by a Midi_1_0 socket.
// The producing node appends to it during render; the graph clears it on
// the producing socket at the start of that node's next render.
type MIDIBuffer struct {
	events []MIDIEvent
}

// Append adds one event to the buffer. Called either by a node's
// Renderer (producing events) or by Connection.pull (copying events
// downstream).
func (b *MIDIBuffer) Append(e MIDIEvent) {
	b.events = append(b.events, e)
}

// Events returns the buffer's current contents. The returned slice
// aliases the buffer's backing array and must not be retained past the
// current render vector.
func (b *MIDIBuffer) Events() []MIDIEvent {
	if b == nil {
		return nil
	}
	return b.events
}

// Clear empties the buffer without releasing its backing array, so
// steady-state operation allocates nothing.
func (b *MIDIBuffer) Clear() {
	b.events = b.events[:0]
}
