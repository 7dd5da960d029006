package cache

import (
	"context"
	"testing"
)

func TestKeyIsStableAndDistinct(t *testing.T) {
	if Key("resume", "prefs") != Key("resume", "prefs") {
		t.Fatalf("expected identical inputs to produce identical keys")
	}
	if Key("resume", "prefs") == Key("resumeprefs") {
		t.Fatalf("expected part boundaries to matter")
	}
	if Key("a") == Key("b") {
		t.Fatalf("expected distinct inputs to produce distinct keys")
	}
}

func TestMemoryHitReturnsStoredBytes(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	key := Key("prompt")
	if _, ok := m.Get(ctx, key); ok {
		t.Fatalf("expected miss before set")
	}

	value := `{"job_listings":[]}`
	m.Set(ctx, key, value)

	got, ok := m.Get(ctx, key)
	if !ok {
		t.Fatalf("expected hit after set")
	}
	if got != value {
		t.Fatalf("hit must be byte-identical: got %q, want %q", got, value)
	}
}
