package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWaitUntilDone(t *testing.T) {
	calls := 0
	err := WaitUntil(context.Background(), func(context.Context) (WaitAction, error) {
		calls++
		if calls < 3 {
			return WaitActionKeepWaiting, nil
		}
		return WaitActionDone, nil
	}, WaitOpts{RetryInterval: time.Millisecond})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestWaitUntilReturnsResultError(t *testing.T) {
	boom := errors.New("boom")
	err := WaitUntil(context.Background(), func(context.Context) (WaitAction, error) {
		return WaitActionDone, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestWaitUntilTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := WaitUntil(ctx, func(context.Context) (WaitAction, error) {
		return WaitActionKeepWaiting, nil
	}, WaitOpts{RetryInterval: time.Millisecond, TimeoutMsg: "node not ready"})
	require.ErrorIs(t, err, ErrTimeout)
	require.ErrorContains(t, err, "node not ready")
}

func TestWaitUntilTimeoutKeepsLastError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	refused := errors.New("connection refused")
	calls := 0
	err := WaitUntil(ctx, func(context.Context) (WaitAction, error) {
		calls++
		if calls == 1 {
			return WaitActionKeepWaiting, errors.New("first attempt")
		}
		return WaitActionKeepWaiting, refused
	}, WaitOpts{RetryInterval: time.Millisecond, TimeoutMsg: "node not ready"})
	require.ErrorIs(t, err, ErrTimeout)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.ErrorIs(t, err, refused)
	require.NotContains(t, err.Error(), "first attempt")
	require.Greater(t, calls, 1)
}

func TestAsTimeout(t *testing.T) {
	require.NoError(t, AsTimeout(nil, "x"))

	other := errors.New("other")
	require.Equal(t, other, AsTimeout(other, "x"))

	err := AsTimeout(context.DeadlineExceeded, "waiting for receipt")
	require.ErrorIs(t, err, ErrTimeout)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
