// Package types defines the client-facing wire types of the relay API:
// chat requests, the push-stream event shapes, and the JSON error envelope.
//
// The types in this package are pure data with validation methods; they
// import nothing but the shared backend message type. Handlers and the
// request/response helpers in pkg/relay operate on them.
package types
