// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package codec

import "github.com/iotaledger/hive.go/ierrors"

func DecodeUint8(b []byte, def ...uint8) (uint8, error) {
	if b == nil {
		if len(def) == 0 {
			return 0, ierrors.New("cannot decode nil uint8")
		}
		return def[0], nil
	}
	if len(b) != 1 {
		return 0, ierrors.Errorf("invalid uint8 size %d", len(b))
	}
	return b[0], nil
}

func EncodeUint8(value uint8) []byte {
	return []byte{value}
}
