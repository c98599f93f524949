package types

// The push stream carries three distinct event shapes, one JSON object per
// frame. A client distinguishes them by which field is present: "delta",
// "done", or "error". The terminal event (done or error) is always the
// last frame of a stream.

// DeltaEvent carries one incremental fragment of the assistant's reply.
type DeltaEvent struct {
	// Delta is the incremental text.
	Delta string `json:"delta"`
}

// DoneEvent is the terminal event of a successful stream.
type DoneEvent struct {
	// Done is always true.
	Done bool `json:"done"`

	// Content is the full accumulated reply text.
	Content string `json:"content"`

	// Tokens is the backend-reported completion token count; it serializes
	// as JSON null when the backend never reported one.
	Tokens *int `json:"tokens"`
}

// ErrorEvent is the terminal event of a failed stream.
type ErrorEvent struct {
	// Error is a human-readable description of the failure.
	Error string `json:"error"`
}
