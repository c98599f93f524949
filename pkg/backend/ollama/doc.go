// Package ollama implements the backend adapter for the Ollama chat API.
//
// This is the one backend protocol the relay speaks: newline-delimited JSON
// over HTTP. A chat request is posted to /api/chat with the full
// conversation; the streaming response is a sequence of JSON records, one
// per line, each optionally carrying an incremental message fragment, a
// completion marker with a token count, or an error.
//
// # Wire Format
//
// Request:
//
//	POST {base}/api/chat
//	{"model": "llama3.1", "messages": [{"role": "user", "content": "..."}], "stream": true}
//
// Streaming response, one record per line:
//
//	{"message":{"role":"assistant","content":"he"},"done":false}
//	{"message":{"role":"assistant","content":"llo"},"done":false}
//	{"done":true,"eval_count":2}
//
// The terminal record may arrive without a trailing newline. Records may be
// split across network reads at any byte boundary, including inside a
// multi-byte UTF-8 character; the Framer reassembles them.
//
// # Basic Usage
//
//	config := backend.Config{
//	    Name:    "local-backend",
//	    BaseURL: "http://localhost:11434",
//	    Timeout: 120 * time.Second, // Local inference can be slow
//	}
//
//	be, err := ollama.New(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer be.Close()
//
//	chunks, err := be.StreamChat(ctx, &backend.ChatRequest{
//	    Model:    "llama3.1",
//	    Messages: conversation,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for chunk := range chunks {
//	    if chunk.Err != nil {
//	        log.Fatal(chunk.Err)
//	    }
//	    fmt.Print(chunk.Delta)
//	}
//
// # Protocol Tolerance
//
// Lines that fail to parse as JSON are dropped silently rather than
// failing the stream, and reading continues past the done record until the
// connection closes. Both behaviors absorb harmless variation between
// backend versions. A record carrying an error field is the exception: it
// terminates the stream as a typed StreamError.
//
// # Model Discovery
//
// ListModels queries /api/tags and returns the served model names, used by
// the provider discovery endpoint.
package ollama
