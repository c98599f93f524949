// Package relay provides the HTTP plumbing shared by the relay's route
// handlers: request body parsing with size limits, the JSON error envelope
// writer, and the Server-Sent Events emitter that frames ClientEvents onto
// the push stream.
//
// The relay controller itself lives in pkg/relay/handlers; middleware in
// pkg/relay/middleware; wire types in pkg/relay/types.
package relay
