// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package isc

import "github.com/iotaledger/hive.go/ierrors"

// VMError is a rejection raised by contract logic. It reports itself the
// same way an EVM node reports a reverted call.
type VMError struct {
	Reason string
}

func NewVMError(format string, args ...any) *VMError {
	return &VMError{Reason: ierrors.Errorf(format, args...).Error()}
}

func (e *VMError) Error() string {
	return "execution reverted: " + e.Reason
}

// ErrorCode matches the JSON-RPC error code of reverted calls.
func (e *VMError) ErrorCode() int {
	return 3
}

func (e *VMError) ErrorData() interface{} {
	return e.Reason
}

// AsVMError converts any handler error into a VMError.
func AsVMError(err error) *VMError {
	var vmErr *VMError
	if ierrors.As(err, &vmErr) {
		return vmErr
	}
	return &VMError{Reason: err.Error()}
}
