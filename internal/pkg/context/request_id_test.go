package context

import (
	"context"
	"testing"
)

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "rid-1")
	if got := GetRequestID(ctx); got != "rid-1" {
		t.Fatalf("expected rid-1, got %q", got)
	}
}

func TestGetRequestID_Missing(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	//nolint:staticcheck // nil ctx is tolerated
	if got := GetRequestID(nil); got != "" {
		t.Fatalf("expected empty for nil ctx, got %q", got)
	}
}

func TestGetRequestID_PlainStringKeyIgnored(t *testing.T) {
	ctx := context.WithValue(context.Background(), "request_id", "rid-2") //nolint:staticcheck
	if got := GetRequestID(ctx); got != "" {
		t.Fatalf("expected typed key only, got %q", got)
	}
}
