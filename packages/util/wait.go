// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package util

import (
	"context"
	"time"

	"github.com/iotaledger/hive.go/ierrors"
)

const (
	defaultWaitInterval = 1 * time.Second
	defaultTimeoutMsg   = "waiting timed out"

	// DefaultTimeout bounds every blocking round trip that has no explicit deadline.
	DefaultTimeout = 1 * time.Minute
)

// ErrTimeout is returned when a bounded wait expires before the awaited condition holds.
var ErrTimeout = ierrors.New("timeout")

type WaitAction bool

const (
	WaitActionDone        = WaitAction(true)
	WaitActionKeepWaiting = WaitAction(false)
)

type WaitOpts struct {
	RetryInterval time.Duration
	TimeoutMsg    string
}

// WaitUntil calls f until it reports WaitActionDone or ctx expires.
// The first attempt is made immediately. An error returned together with
// WaitActionKeepWaiting is kept and reported if the wait times out.
func WaitUntil(ctx context.Context, f func(ctx context.Context) (WaitAction, error), waitOpts ...WaitOpts) error {
	opts := WaitOpts{
		RetryInterval: defaultWaitInterval,
		TimeoutMsg:    defaultTimeoutMsg,
	}
	if len(waitOpts) > 0 {
		if waitOpts[0].RetryInterval != 0 {
			opts.RetryInterval = waitOpts[0].RetryInterval
		}
		if waitOpts[0].TimeoutMsg != "" {
			opts.TimeoutMsg = waitOpts[0].TimeoutMsg
		}
	}

	var lastErr error
	delay := time.Duration(0)
	for {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return ierrors.Errorf("%w: %s: %w: last error: %w", ErrTimeout, opts.TimeoutMsg, ctx.Err(), lastErr)
			}
			return ierrors.Errorf("%w: %s: %w", ErrTimeout, opts.TimeoutMsg, ctx.Err())
		case <-time.After(delay):
			action, err := f(ctx)
			if action == WaitActionDone {
				return err
			}
			if err != nil {
				lastErr = err
			}
			delay = opts.RetryInterval
		}
	}
}

// WithTimeout derives a context bounded by timeout, or DefaultTimeout when timeout is zero.
// A deadline already present on ctx is kept if it is earlier.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// AsTimeout maps a context deadline error onto ErrTimeout and leaves every other error untouched.
func AsTimeout(err error, what string) error {
	if err == nil {
		return nil
	}
	if ierrors.Is(err, context.DeadlineExceeded) {
		return ierrors.Errorf("%w: %s: %w", ErrTimeout, what, err)
	}
	return err
}
