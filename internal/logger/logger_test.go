package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewRespectsDebugLevel(t *testing.T) {
	log, err := New(false, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug level should be enabled")
	}

	log, err = New(true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug level should be disabled by default")
	}
}

func TestTruncateForLog(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"  padded  ", 10, "padded"},
		{"truncate me", 8, "truncate..."},
		{"anything", 0, ""},
		{"юникод строка", 7, "юникод ..."},
	}

	for _, tc := range cases {
		if got := TruncateForLog(tc.in, tc.limit); got != tc.want {
			t.Fatalf("TruncateForLog(%q, %d) = %q, expected %q", tc.in, tc.limit, got, tc.want)
		}
	}
}
