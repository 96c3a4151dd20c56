package graph

// Cable is one (source channel, destination channel) mapping within a
// Routing.
type Cable struct {
	SrcChannel int
	DstChannel int
}

// Routing is an immutable list of channel-mapping cables carried by a
// Connection. The zero value is the null routing: "default straight
// mapping" over min(source.nchannels, dest.nchannels) channels.
//
// Routing is a value type: copy it freely. Go slices aren't comparable
// with ==, so use Equal instead of attempting direct comparison.
type Routing struct {
	cables []Cable
}

// NewRouting builds a Routing from explicit (src, dst) pairs.
func NewRouting(pairs ...Cable) Routing {
	if len(pairs) == 0 {
		return Routing{}
	}
	cables := make([]Cable, len(pairs))
	copy(cables, pairs)
	return Routing{cables: cables}
}

// NewRoutingFromFlat builds a Routing from a flat list of integers,
// interpreted as consecutive (src, dst) pairs. A trailing unpaired
// integer is dropped.
func NewRoutingFromFlat(flat ...int) Routing {
	n := len(flat) / 2
	if n == 0 {
		return Routing{}
	}
	cables := make([]Cable, n)
	for i := 0; i < n; i++ {
		cables[i] = Cable{SrcChannel: flat[2*i], DstChannel: flat[2*i+1]}
	}
	return Routing{cables: cables}
}

// Null reports whether this is the empty "default straight mapping"
// routing.
func (r Routing) Null() bool { return len(r.cables) == 0 }

// Ncables reports how many explicit channel mappings this routing holds.
// A null routing reports 0 even though it implies an identity mapping at
// render time.
func (r Routing) Ncables() int { return len(r.cables) }

// Cable returns the i-th mapping. It panics if i is out of range, same
// as slice indexing.
func (r Routing) Cable(i int) Cable { return r.cables[i] }

// Equal reports whether two routings describe the same cables in the
// same order.
func (r Routing) Equal(other Routing) bool {
	if len(r.cables) != len(other.cables) {
		return false
	}
	for i, c := range r.cables {
		if c != other.cables[i] {
			return false
		}
	}
	return true
}

// validate checks every cable against the channel counts available at
// connect time: out-of-range indices here are a hard error
// (ChannelOutOfRange), unlike render time where they are silently
// skipped (a later nchannels shrink may make a previously valid cable
// stale without forcing a graph-wide re-validation).
func (r Routing) validate(srcChannels, dstChannels int) error {
	for _, c := range r.cables {
		if c.SrcChannel < 0 || c.SrcChannel >= srcChannels ||
			c.DstChannel < 0 || c.DstChannel >= dstChannels {
			return ErrChannelOutOfRange
		}
	}
	return nil
}
