package otel

import (
	"context"
	"testing"
)

func TestNewProviders_EmptyEndpointIsNoop(t *testing.T) {
	p, err := NewProviders(context.Background(), "", "paladin-core", false)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	if p.TracerProvider == nil || p.MeterProvider == nil {
		t.Fatal("expected non-nil no-op providers")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestNewProviders_InvalidEndpoint(t *testing.T) {
	if _, err := NewProviders(context.Background(), "http://", "paladin-core", false); err == nil {
		t.Fatal("expected error for endpoint without host")
	}
	if _, err := NewProviders(context.Background(), "://bad", "paladin-core", false); err == nil {
		t.Fatal("expected error for malformed endpoint")
	}
}
