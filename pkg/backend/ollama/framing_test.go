package ollama

import (
	"reflect"
	"testing"
)

// pushAll feeds data to a fresh framer in chunks of the given size and
// returns the full record sequence including the flushed tail.
func pushAll(data []byte, chunkSize int) []Record {
	f := NewFramer()
	var records []Record

	for start := 0; start < len(data); start += chunkSize {
		end := start + chunkSize
		if end > len(data) {
			end = len(data)
		}
		records = append(records, f.Push(data[start:end])...)
	}

	if rec, ok := f.Flush(); ok {
		records = append(records, rec)
	}

	return records
}

// TestFramer_SingleRead verifies a whole stream delivered in one read
func TestFramer_SingleRead(t *testing.T) {
	data := []byte(`{"message":{"content":"he"}}` + "\n" +
		`{"message":{"content":"llo"}}` + "\n" +
		`{"done":true,"eval_count":2}` + "\n")

	f := NewFramer()
	records := f.Push(data)

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	if records[0].Message.Content != "he" {
		t.Errorf("record 0: expected content %q, got %q", "he", records[0].Message.Content)
	}
	if records[1].Message.Content != "llo" {
		t.Errorf("record 1: expected content %q, got %q", "llo", records[1].Message.Content)
	}
	if !records[2].Done {
		t.Error("record 2: expected done marker")
	}
	if records[2].EvalCount == nil || *records[2].EvalCount != 2 {
		t.Errorf("record 2: expected eval_count 2, got %v", records[2].EvalCount)
	}
}

// TestFramer_SplitIdempotence verifies that splitting the byte stream at
// arbitrary boundaries, including inside multi-byte UTF-8 characters,
// yields the identical record sequence
func TestFramer_SplitIdempotence(t *testing.T) {
	// Accidentals are multi-byte: every 1-byte split cuts through them.
	data := []byte(`{"message":{"content":"The ii–V in F♯ minor"}}` + "\n" +
		`{"message":{"content":" resolves to B♭maj7"}}` + "\n" +
		`{"message":{"content":"… naturally"}}` + "\n" +
		`{"done":true,"eval_count":14}` + "\n")

	want := pushAll(data, len(data))
	if len(want) != 4 {
		t.Fatalf("reference parse: expected 4 records, got %d", len(want))
	}

	for _, chunkSize := range []int{1, 2, 3, 5, 7, 11, 64} {
		got := pushAll(data, chunkSize)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("chunk size %d: records differ from single-read parse\ngot:  %+v\nwant: %+v",
				chunkSize, got, want)
		}
	}
}

// TestFramer_FlushWithoutTrailingNewline verifies the terminal record is
// recovered when the stream ends without a final newline
func TestFramer_FlushWithoutTrailingNewline(t *testing.T) {
	data := []byte(`{"message":{"content":"hi"}}` + "\n" + `{"done":true,"eval_count":1}`)

	f := NewFramer()
	records := f.Push(data)
	if len(records) != 1 {
		t.Fatalf("expected 1 record before flush, got %d", len(records))
	}

	rec, ok := f.Flush()
	if !ok {
		t.Fatal("expected flush to recover the terminal record")
	}
	if !rec.Done {
		t.Error("expected flushed record to carry the done marker")
	}
	if rec.EvalCount == nil || *rec.EvalCount != 1 {
		t.Errorf("expected eval_count 1, got %v", rec.EvalCount)
	}

	// The buffer is consumed; a second flush finds nothing.
	if _, ok := f.Flush(); ok {
		t.Error("expected second flush to find an empty buffer")
	}
}

// TestFramer_DropsNoise verifies non-JSON lines are skipped silently
func TestFramer_DropsNoise(t *testing.T) {
	data := []byte(`{"message":{"content":"a"}}` + "\n" +
		"not json at all\n" +
		": keepalive comment\n" +
		`{"message":{"content":"b"}}` + "\r\n" +
		"{truncated\n" +
		`{"done":true}` + "\n")

	f := NewFramer()
	records := f.Push(data)

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Message.Content != "a" || records[1].Message.Content != "b" {
		t.Errorf("unexpected record contents: %+v", records[:2])
	}
	if !records[2].Done {
		t.Error("expected final record to carry the done marker")
	}
	if f.Dropped() != 3 {
		t.Errorf("expected 3 dropped lines, got %d", f.Dropped())
	}
}

// TestFramer_SkipsBlankLines verifies empty and whitespace-only lines
// produce no records and count as nothing
func TestFramer_SkipsBlankLines(t *testing.T) {
	data := []byte("\n\n   \n\t\n" + `{"message":{"content":"x"}}` + "\n\n")

	f := NewFramer()
	records := f.Push(data)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if f.Dropped() != 0 {
		t.Errorf("blank lines must not count as dropped, got %d", f.Dropped())
	}

	if _, ok := f.Flush(); ok {
		t.Error("expected nothing left to flush")
	}
}

// TestFramer_ErrorRecord verifies an error field is decoded and carried
// through; interpretation is the stream reader's job
func TestFramer_ErrorRecord(t *testing.T) {
	data := []byte(`{"message":{"content":"a"}}` + "\n" + `{"error":"model not loaded"}` + "\n")

	f := NewFramer()
	records := f.Push(data)

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].Error != "model not loaded" {
		t.Errorf("expected error field %q, got %q", "model not loaded", records[1].Error)
	}
}

// TestFramer_BatchedRecords verifies several records arriving in one read
// are all returned, in order
func TestFramer_BatchedRecords(t *testing.T) {
	var data []byte
	for _, frag := range []string{"do", "re", "mi", "fa", "sol"} {
		data = append(data, []byte(`{"message":{"content":"`+frag+`"}}`+"\n")...)
	}

	f := NewFramer()
	records := f.Push(data)

	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}
	want := []string{"do", "re", "mi", "fa", "sol"}
	for i, rec := range records {
		if rec.Message.Content != want[i] {
			t.Errorf("record %d: expected %q, got %q", i, want[i], rec.Message.Content)
		}
	}
}
