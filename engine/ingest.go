package engine

// RawFrame is a single text frame handed up from the transport layer.
// The engine core never imports the transport package; this is the
// entire boundary contract between them.
type RawFrame struct {
	Text string
}

// Ingest receives raw frames from the external transport, stamps
// receive time, and enqueues them onto the message ring. It performs no
// parsing — minimising time spent on the transport callback is the
// entire point of keeping ingest this thin.
type Ingest struct {
	ring *MessageRing
}

// NewIngest wires an Ingest stage to the given ring.
func NewIngest(ring *MessageRing) *Ingest {
	return &Ingest{ring: ring}
}

// Handle stamps frame with the current wall-clock receive time and
// pushes it onto the ring. Never blocks (MessageRing.Push never
// blocks).
func (in *Ingest) Handle(frame RawFrame) {
	in.ring.Push(RawMessage{
		RawText:     TruncateRawText(frame.Text),
		ReceiveTsMs: nowMs(),
	})
}
