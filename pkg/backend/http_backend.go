package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// maxErrorBody caps how much of a rejection body is captured for the error.
const maxErrorBody = 32 * 1024

// HTTPBackend is the base implementation for HTTP-based backend adapters.
// It provides connection pooling, typed error mapping, and health tracking.
//
// Requests are sent exactly once: retry policy belongs to the caller, and
// the relay's policy is to surface a single failure rather than retry.
//
// Concrete adapters embed this struct and implement the Backend interface.
type HTTPBackend struct {
	// config contains the backend configuration
	config Config

	// client is the HTTP client with connection pooling
	client *http.Client

	// health tracks the backend's health status
	health Health

	// healthMu protects health and checkerStarted
	healthMu sync.RWMutex

	// checkerStarted records whether StartHealthChecker has run
	checkerStarted bool

	// stopHealthCheck is closed to signal the health checker to stop
	stopHealthCheck chan struct{}

	// healthCheckStopped is closed when the health checker has stopped
	healthCheckStopped chan struct{}
}

// NewHTTPBackend creates a new base HTTP backend with connection pooling.
func NewHTTPBackend(config Config) *HTTPBackend {
	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		DisableCompression:  false,
		ForceAttemptHTTP2:   true,
		// Bounds the wait for response headers without limiting how long a
		// streaming body may run. Streams end only on completion or caller
		// cancellation.
		ResponseHeaderTimeout: config.Timeout,
	}

	client := &http.Client{
		Transport: transport,
	}

	return &HTTPBackend{
		config: config,
		client: client,
		health: Health{
			IsHealthy:             true, // Start optimistic
			LastCheck:             time.Now(),
			LastSuccessfulRequest: time.Now(),
		},
		stopHealthCheck:    make(chan struct{}),
		healthCheckStopped: make(chan struct{}),
	}
}

// GetName returns the backend's configured name.
func (b *HTTPBackend) GetName() string {
	return b.config.Name
}

// GetType returns the backend's type.
func (b *HTTPBackend) GetType() string {
	return b.config.Type
}

// GetConfig returns the backend's configuration.
func (b *HTTPBackend) GetConfig() Config {
	return b.config
}

// IsHealthy returns the current health status.
func (b *HTTPBackend) IsHealthy() bool {
	b.healthMu.RLock()
	defer b.healthMu.RUnlock()
	return b.health.IsHealthy
}

// GetHealth returns detailed health information.
func (b *HTTPBackend) GetHealth() Health {
	b.healthMu.RLock()
	defer b.healthMu.RUnlock()
	return b.health
}

// updateHealth updates the backend's health status.
// This is called after each health check or request.
func (b *HTTPBackend) updateHealth(success bool, err error) {
	b.healthMu.Lock()
	defer b.healthMu.Unlock()

	b.health.LastCheck = time.Now()

	if success {
		b.health.IsHealthy = true
		b.health.ConsecutiveFailures = 0
		b.health.LastError = nil
		b.health.LastSuccessfulRequest = time.Now()
		return
	}

	b.health.ConsecutiveFailures++
	b.health.LastError = err

	// Mark unhealthy after 3 consecutive failures (circuit breaker)
	if b.health.ConsecutiveFailures >= 3 {
		b.health.IsHealthy = false
		slog.Warn("backend marked unhealthy",
			"backend", b.config.Name,
			"consecutive_failures", b.health.ConsecutiveFailures,
			"error", err,
		)
	}
}

// recordRequest records request counters.
func (b *HTTPBackend) recordRequest(success bool) {
	b.healthMu.Lock()
	defer b.healthMu.Unlock()

	b.health.TotalRequests++
	if !success {
		b.health.FailedRequests++
	}
}

// Do performs a single HTTP request and maps failures to the backend error
// taxonomy: transport failures become UnavailableError, non-2xx responses
// become RejectedError with the body captured. A 2xx response is returned
// with its body unread; the caller owns it and must close it.
func (b *HTTPBackend) Do(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.Debug("sending request to backend",
		"backend", b.config.Name,
		"method", method,
		"url", url,
	)

	resp, err := b.client.Do(req)
	if err != nil {
		b.recordRequest(false)

		// Cancellation is not a backend failure; let the caller observe it
		// directly so it can distinguish a vanished client from a dead backend.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		b.updateHealth(false, err)
		return nil, &UnavailableError{
			Backend: b.config.Name,
			Cause:   err,
		}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		b.recordRequest(true)
		b.updateHealth(true, nil)
		return resp, nil
	}

	errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()

	rejection := &RejectedError{
		Backend:    b.config.Name,
		StatusCode: resp.StatusCode,
		Body:       string(bytes.TrimSpace(errorBody)),
	}
	b.recordRequest(false)
	b.updateHealth(false, rejection)

	return nil, rejection
}

// DoJSON performs a JSON request and decodes the response body.
func (b *HTTPBackend) DoJSON(ctx context.Context, method, url string, reqBody interface{}, respBody interface{}, headers map[string]string) error {
	var bodyBytes []byte
	var err error
	if reqBody != nil {
		bodyBytes, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	resp, err := b.Do(ctx, method, url, bodyBytes, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ParseError{
			Backend: b.config.Name,
			Cause:   fmt.Errorf("failed to read response: %w", err),
		}
	}

	if respBody != nil && len(responseBytes) > 0 {
		if err := json.Unmarshal(responseBytes, respBody); err != nil {
			return &ParseError{
				Backend:     b.config.Name,
				RawResponse: string(responseBytes),
				Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
			}
		}
	}

	return nil
}

// Close closes the HTTP client and stops the health checker, if one started.
func (b *HTTPBackend) Close() error {
	b.healthMu.RLock()
	started := b.checkerStarted
	b.healthMu.RUnlock()

	close(b.stopHealthCheck)

	if started {
		select {
		case <-b.healthCheckStopped:
			slog.Debug("health checker stopped", "backend", b.config.Name)
		case <-time.After(5 * time.Second):
			slog.Warn("health checker did not stop in time", "backend", b.config.Name)
		}
	}

	b.client.CloseIdleConnections()

	slog.Info("backend closed", "backend", b.config.Name)
	return nil
}
