package tracing

import (
	"context"
	"testing"

	"chordlab/relay/pkg/config"
)

func TestNew_DisabledReturnsNoop(t *testing.T) {
	tracer, err := New(&config.TracingConfig{
		Enabled:     false,
		ServiceName: "chordlab-relay",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if tracer.Enabled() {
		t.Error("Enabled() = true for disabled config")
	}

	ctx, span := tracer.Start(context.Background(), "relay.turn")
	if span.SpanContext().IsValid() {
		t.Error("disabled tracer produced a recording span context")
	}
	span.End()

	if ctx == nil {
		t.Fatal("Start() returned nil context")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("New(nil) did not return an error")
	}
}

func TestNewSampler(t *testing.T) {
	if got := newSampler(1.0).Description(); got != "AlwaysOnSampler" {
		t.Errorf("sampler for ratio 1.0 = %q", got)
	}
	if got := newSampler(0.25).Description(); got == "AlwaysOnSampler" {
		t.Errorf("sampler for ratio 0.25 = %q, want ratio-based", got)
	}
}
