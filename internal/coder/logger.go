// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Value // *zap.Logger

// Logger returns the coder's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	if l, ok := logger.Load().(*zap.Logger); ok && l != nil {
		return l
	}
	return nopLogger
}

var nopLogger = zap.NewNop()

// SetLogger configures the coder's logger. Passing nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = nopLogger
	}
	logger.Store(l)
}
