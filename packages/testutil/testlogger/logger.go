// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package testlogger

import (
	"io"
	"time"

	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/hive.go/runtime/options"
)

type TestingT interface { // Interface so there's no need to pass the concrete type
	Name() string
}

// NewSimple produces a logger adjusted for test cases.
func NewSimple(debug bool, opts ...options.Option[log.Options]) log.Logger {
	level := "info"
	if debug {
		level = "debug"
	}
	loggerLevel, err := log.LevelFromString(level)
	if err != nil {
		panic(err)
	}
	return log.NewLogger(append([]options.Option[log.Options]{
		log.WithLevel(loggerLevel),
		log.WithTimeFormat(time.RFC3339),
	}, opts...)...)
}

// NewLogger produces a debug logger named after the running test.
func NewLogger(t TestingT, opts ...options.Option[log.Options]) log.Logger {
	return NewSimple(true, append([]options.Option[log.Options]{
		log.WithName(t.Name()),
	}, opts...)...)
}

func NewSilentLogger(name string) log.Logger {
	return NewSimple(false, log.WithName(name), log.WithOutput(io.Discard))
}
