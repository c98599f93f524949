// Package backendfactory builds backend adapters from configuration and
// manages their lifecycle.
//
// The factory maps a configured type to an adapter constructor; "ollama"
// is the only supported type, matching the relay's single upstream
// protocol. The manager holds the registry keyed by provider name, starts
// each backend's background health checker, and produces the provider
// descriptors served by the discovery endpoint.
package backendfactory
