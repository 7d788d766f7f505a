// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package cryptolib

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// VariantKeyPair is an acting identity: an address plus the capability to
// sign transactions on its behalf.
type VariantKeyPair interface {
	Address() common.Address
	TransactOpts(chainID *big.Int) (*bind.TransactOpts, error)
}
