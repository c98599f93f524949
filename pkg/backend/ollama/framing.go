package ollama

import (
	"bytes"
	"encoding/json"
)

// Record is one decoded object from the backend's newline-delimited JSON
// stream. Any combination of fields may be present; unknown fields are
// ignored.
type Record struct {
	// Message carries the incremental reply text in Message.Content
	Message RecordMessage `json:"message"`

	// Done marks the backend's completion of the reply
	Done bool `json:"done"`

	// EvalCount is the completion token count, usually sent with Done
	EvalCount *int `json:"eval_count"`

	// Error is a backend-reported failure; it terminates the stream
	Error string `json:"error"`
}

// RecordMessage is the message fragment inside a stream record.
type RecordMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Framer incrementally decodes a byte stream into Records.
//
// The wire format is one JSON object per newline-terminated line, but
// network delivery may split a record across reads or batch several records
// into one read. The framer keeps the unterminated tail of the stream in an
// internal buffer between calls, so a record — or a multi-byte UTF-8
// character inside one — that arrives half in one read and half in the next
// is reassembled before decoding. Splitting on the newline byte is safe at
// any read boundary: 0x0A never occurs inside a multi-byte UTF-8 sequence.
//
// Lines that are empty after trimming are skipped, and lines that fail to
// parse as JSON are dropped rather than treated as errors; the backend may
// interleave framing noise with records. Dropped lines are counted so the
// caller can log them.
//
// A Framer is not safe for concurrent use. Each stream gets its own.
type Framer struct {
	buf     []byte
	dropped int
}

// NewFramer returns a framer with an empty buffer.
func NewFramer() *Framer {
	return &Framer{}
}

// Push appends newly received bytes and returns every complete record they
// finish, in wire order. The final unterminated segment stays buffered for
// the next call.
func (f *Framer) Push(p []byte) []Record {
	f.buf = append(f.buf, p...)

	var records []Record
	for {
		i := bytes.IndexByte(f.buf, '\n')
		if i < 0 {
			break
		}
		line := f.buf[:i]
		f.buf = f.buf[i+1:]

		if rec, ok := f.decodeLine(line); ok {
			records = append(records, rec)
		}
	}

	return records
}

// Flush makes one final decode attempt on the buffered tail. It is called
// when the byte stream is exhausted: a terminal record may arrive without a
// trailing newline. The buffer is consumed either way.
func (f *Framer) Flush() (Record, bool) {
	line := f.buf
	f.buf = nil
	return f.decodeLine(line)
}

// Dropped reports how many non-empty lines failed to parse and were skipped.
func (f *Framer) Dropped() int {
	return f.dropped
}

// decodeLine trims and parses a single candidate line.
func (f *Framer) decodeLine(line []byte) (Record, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Record{}, false
	}

	var rec Record
	if err := json.Unmarshal(line, &rec); err != nil {
		f.dropped++
		return Record{}, false
	}

	return rec, true
}
