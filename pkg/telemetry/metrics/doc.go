// Package metrics exposes the relay's Prometheus metrics.
//
// The Collector owns a private registry and registers three metric
// families: relay turns (count, duration, deltas, tokens by provider,
// model, and outcome), HTTP requests by route and status, and backend
// health gauges. A disabled collector keeps all methods callable as
// no-ops so call sites never branch.
package metrics
