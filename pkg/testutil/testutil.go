// Package testutil provides testing utilities for the column engine
package testutil

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/astropipe/colcore/pkg/colerrors"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// RequireNoError fails the test immediately if err is not nil.
// The msg parameter provides additional context in the failure message.
func RequireNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}

// RequireCode fails the test immediately unless err carries the given
// engine error code.
func RequireCode(t *testing.T, err error, code colerrors.Code, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error code %s, got nil", msg, code)
	}
	if got := colerrors.CodeOf(err); got != code {
		t.Fatalf("%s: expected error code %s, got %s (%v)", msg, code, got, err)
	}
}
