// Package backendtest provides a scriptable mock of the model-serving
// backend for tests. The mock speaks the backend wire convention: POST
// /api/chat answers with newline-delimited JSON records, GET /api/tags
// answers with a model list.
//
// Scripts control what the chat endpoint does per request: the NDJSON
// lines to emit (with optional per-line delays), a non-2xx status to
// return instead, or an abrupt connection close mid-stream.
package backendtest
