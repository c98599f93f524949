package backend

import (
	"context"
	"log/slog"
	"time"
)

// StartHealthChecker starts a background goroutine that periodically checks
// the backend's health and updates its status.
//
// The checker runs until the backend is closed or the context is cancelled,
// and backs off exponentially while the backend is unhealthy.
func (b *HTTPBackend) StartHealthChecker(ctx context.Context) {
	b.healthMu.Lock()
	b.checkerStarted = true
	b.healthMu.Unlock()

	go b.runHealthChecker(ctx)
}

// runHealthChecker is the main health checking loop.
func (b *HTTPBackend) runHealthChecker(ctx context.Context) {
	defer close(b.healthCheckStopped)

	interval := b.config.HealthCheckInterval
	if interval == 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("health checker started",
		"backend", b.config.Name,
		"interval", interval,
	)

	for {
		select {
		case <-ctx.Done():
			slog.Debug("health checker stopped (context cancelled)", "backend", b.config.Name)
			return

		case <-b.stopHealthCheck:
			slog.Debug("health checker stopped (backend closed)", "backend", b.config.Name)
			return

		case <-ticker.C:
			b.performHealthCheck(ctx)

			if !b.IsHealthy() {
				health := b.GetHealth()
				backoffInterval := calculateBackoff(health.ConsecutiveFailures, interval)
				ticker.Reset(backoffInterval)

				slog.Debug("health check backoff",
					"backend", b.config.Name,
					"consecutive_failures", health.ConsecutiveFailures,
					"next_check_in", backoffInterval,
				)
			} else {
				ticker.Reset(interval)
			}
		}
	}
}

// performHealthCheck executes a single health check.
func (b *HTTPBackend) performHealthCheck(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	err := b.healthCheckImpl(checkCtx)
	latency := time.Since(start)

	if err != nil {
		b.updateHealth(false, err)
		slog.Error("health check failed",
			"backend", b.config.Name,
			"error", err,
			"latency", latency,
		)
		return
	}

	// Log recovery before updateHealth resets the failure counter.
	health := b.GetHealth()
	if health.ConsecutiveFailures > 0 {
		slog.Info("backend marked healthy",
			"backend", b.config.Name,
			"previous_failures", health.ConsecutiveFailures,
		)
	}

	b.updateHealth(true, nil)
	slog.Debug("health check passed",
		"backend", b.config.Name,
		"latency", latency,
	)
}

// healthCheckImpl performs the actual health check: a GET against the base
// URL. The Ollama server answers it with a plain liveness banner.
func (b *HTTPBackend) healthCheckImpl(ctx context.Context) error {
	resp, err := b.Do(ctx, "GET", b.config.BaseURL, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return nil
}

// calculateBackoff calculates the checker interval after consecutive
// failures. Exponential, capped at 10x the base interval and 5 minutes.
func calculateBackoff(consecutiveFailures int, baseInterval time.Duration) time.Duration {
	if consecutiveFailures <= 0 {
		return baseInterval
	}

	multiplier := 1 << uint(consecutiveFailures)
	if multiplier > 10 {
		multiplier = 10
	}

	backoff := baseInterval * time.Duration(multiplier)

	maxBackoff := 5 * time.Minute
	if backoff > maxBackoff {
		backoff = maxBackoff
	}

	return backoff
}

// HealthCheck performs a synchronous health check (part of the Backend
// interface). StartHealthChecker runs the same probe periodically.
func (b *HTTPBackend) HealthCheck(ctx context.Context) error {
	return b.healthCheckImpl(ctx)
}
