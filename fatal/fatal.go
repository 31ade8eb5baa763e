//go:build !solution

// Package fatal reports the two kinds of unrecoverable conditions of the
// primitives in this module.
//
// A contract violation (double send on a single-use channel, unlock of an
// already released guard, too many readers) is logged and then panics with a
// *ContractError. Resource exhaustion (a reference count approaching its
// maximum) is logged at fatal level and terminates the process.
package fatal

import (
	"errors"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrContract is wrapped by every *ContractError.
var ErrContract = errors.New("contract violation")

// ContractError is the panic value of Violation.
type ContractError struct {
	Msg string
}

func (e *ContractError) Error() string {
	return ErrContract.Error() + ": " + e.Msg
}

func (e *ContractError) Unwrap() error {
	return ErrContract
}

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(newDefaultLogger())
}

func newDefaultLogger() *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.Lock(os.Stderr),
		zapcore.ErrorLevel,
	)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Named("atomsync")
}

// L returns the logger used for violations and aborts.
func L() *zap.Logger {
	return logger.Load()
}

// SetLogger replaces the logger and returns a function restoring the
// previous one.
func SetLogger(l *zap.Logger) (restore func()) {
	prev := logger.Swap(l)
	return func() {
		logger.Store(prev)
	}
}

// Violation logs msg and panics with a *ContractError.
func Violation(msg string, fields ...zap.Field) {
	L().Error(msg, fields...)
	panic(&ContractError{Msg: msg})
}

// Abort logs msg at fatal level. With the default logger this terminates
// the process; a logger built with zap.WithFatalHook decides otherwise.
func Abort(msg string, fields ...zap.Field) {
	L().Fatal(msg, fields...)
}
