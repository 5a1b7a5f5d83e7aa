package logger

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
)

func TestInitializeJSON(t *testing.T) {
	if err := Initialize(true, VerbosityInfo); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after Initialize")
	}
	if !JSONOutput {
		t.Error("JSONOutput should be true")
	}
	Cleanup()
}

func TestInitializeConsole(t *testing.T) {
	if err := Initialize(false, VerbosityDebug); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if JSONOutput {
		t.Error("JSONOutput should be false")
	}
	// Helpers must not panic
	Infow("request completed", FieldRequestID, "r_test", FieldDurationMS, 12)
	Debugw("cache refreshed", FieldCount, 3)
	Warnw("ollama unreachable", FieldEndpoint, "http://localhost:11434")
	Cleanup()
}

func TestVerbosityToLevel(t *testing.T) {
	cases := []struct {
		verbosity int
		want      zapcore.Level
	}{
		{0, zapcore.WarnLevel},
		{1, zapcore.InfoLevel},
		{2, zapcore.DebugLevel},
		{5, zapcore.DebugLevel},
	}
	for _, tc := range cases {
		if got := VerbosityToLevel(tc.verbosity); got != tc.want {
			t.Errorf("VerbosityToLevel(%d) = %v, want %v", tc.verbosity, got, tc.want)
		}
	}
}

func TestFieldsFromContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "r_42")
	ctx = WithComponent(ctx, "server")

	fields := FieldsFromContext(ctx)
	if len(fields) != 4 {
		t.Fatalf("expected 4 field elements, got %d", len(fields))
	}
	if fields[0] != FieldRequestID || fields[1] != "r_42" {
		t.Errorf("unexpected request_id pair: %v %v", fields[0], fields[1])
	}
	if RequestIDFromContext(ctx) != "r_42" {
		t.Errorf("RequestIDFromContext = %q", RequestIDFromContext(ctx))
	}
}

func TestFieldsFromContextEmpty(t *testing.T) {
	fields := FieldsFromContext(context.Background())
	if len(fields) != 0 {
		t.Errorf("expected no fields, got %v", fields)
	}
}

func TestAbbreviateName(t *testing.T) {
	cases := map[string]string{
		"server":        "server",
		"ollama.client": "o.client",
		"library.store": "l.store",
	}
	for in, want := range cases {
		if got := abbreviateName(in); got != want {
			t.Errorf("abbreviateName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMinimalEncoderEntry(t *testing.T) {
	enc := newMinimalEncoder()
	buf, err := enc.EncodeEntry(zapcore.Entry{
		Level:      zapcore.InfoLevel,
		Time:       time.Date(2025, 1, 2, 13, 4, 5, 0, time.UTC),
		LoggerName: "ollama.client",
		Message:    "models refreshed",
	}, []zapcore.Field{
		{Key: FieldCount, Type: zapcore.Int64Type, Integer: 3},
	})
	if err != nil {
		t.Fatalf("EncodeEntry failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "13:04:05") {
		t.Errorf("missing timestamp in %q", out)
	}
	if !strings.Contains(out, "o.client") {
		t.Errorf("missing abbreviated component in %q", out)
	}
	if !strings.Contains(out, "models refreshed") {
		t.Errorf("missing message in %q", out)
	}
	if !strings.Contains(out, "3") {
		t.Errorf("missing count field in %q", out)
	}
}
