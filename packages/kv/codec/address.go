// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/iotaledger/hive.go/ierrors"
)

func DecodeAddress(b []byte, def ...common.Address) (common.Address, error) {
	if b == nil {
		if len(def) == 0 {
			return common.Address{}, ierrors.New("cannot decode nil Address")
		}
		return def[0], nil
	}
	if len(b) != common.AddressLength {
		return common.Address{}, ierrors.Errorf("invalid Address size %d", len(b))
	}
	return common.BytesToAddress(b), nil
}

func EncodeAddress(addr common.Address) []byte {
	return addr.Bytes()
}
