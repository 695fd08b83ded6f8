package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	_, err := newLogger(Config{Level: "chatty", Encoding: "json"})
	if err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestNewLoggerDefaults(t *testing.T) {
	l, err := newLogger(Config{Level: "debug", Encoding: "json"})
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	if l == nil {
		t.Fatal("expected a logger")
	}
	_ = l.Sync()
}

func TestWithContextAttachesFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := globalLogger
	globalLogger = zap.New(core)
	defer func() { globalLogger = prev }()

	ctx := context.WithValue(context.Background(), TableKey, "sci_frames")
	ctx = context.WithValue(ctx, ColumnKey, "flux")

	WithContext(ctx).Info("processing")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["table"] != "sci_frames" {
		t.Errorf("table field = %v", fields["table"])
	}
	if fields["column"] != "flux" {
		t.Errorf("column field = %v", fields["column"])
	}
}
