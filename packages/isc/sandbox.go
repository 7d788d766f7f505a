// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package isc

import (
	"github.com/ethereum/go-ethereum/common"
)

type LogInterface interface {
	LogInfof(format string, param ...interface{})
	LogDebugf(format string, param ...interface{})
}

// KVStore is the contract-scoped view of the ledger state.
type KVStore interface {
	Get(key []byte) []byte
	Has(key []byte) bool
	Set(key, value []byte)
	Del(key []byte)
}

// Sandbox is the interface through which a native contract sees the ledger
// during a call.
type Sandbox interface {
	// Caller is the address the call is issued from.
	Caller() common.Address
	// Contract is the address of the called contract.
	Contract() common.Address
	BlockNumber() uint64
	State() KVStore
	Log() LogInterface
}
