// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package isc

// package present processor interface. It must be implemented by VM

// VMProcessor is an interface to the VM processor instance.
type VMProcessor interface {
	GetEntryPoint(method string) (VMProcessorEntryPoint, bool)
	GetDescription() string
}

// VMProcessorEntryPoint is an abstract interface by which VM is called by passing
// the Sandbox interface and the decoded call arguments
type VMProcessorEntryPoint interface {
	Call(ctx Sandbox, args []any) ([]any, error)
	IsView() bool
}
