// Package handlers contains the HTTP handlers of the relay API.
//
// The centerpiece is the stream chat handler, which drives one client turn
// end-to-end: validate the request, write the user turn into the session
// store optimistically, open the backend stream, forward each delta to the
// client as an SSE event, and finish by either committing the assistant
// reply or rolling the user turn back. The remaining handlers serve the
// thin collaborator surfaces: agent profiles, provider discovery, and
// health.
//
// Handlers depend on narrow interfaces (BackendRegistry, AgentStore,
// TurnRecorder) rather than concrete packages, so tests can substitute
// in-memory fakes.
package handlers
