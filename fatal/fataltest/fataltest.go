//go:build !solution

// Package fataltest installs an observing logger for the fatal package so
// tests can assert on violations and survive aborts.
package fataltest

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"gitlab.com/slon/atomsync/fatal"
)

// Observe routes fatal's logging into an in-memory sink for the duration of
// the test. Abort panics instead of exiting the process.
//
// Tests using Observe must not run in parallel with each other.
func Observe(tb testing.TB) *observer.ObservedLogs {
	tb.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	restore := fatal.SetLogger(zap.New(core, zap.WithFatalHook(zapcore.WriteThenPanic)))
	tb.Cleanup(restore)
	return logs
}
