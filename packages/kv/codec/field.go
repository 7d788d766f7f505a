// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/profilesharing/packages/field"
)

func DecodeField(b []byte, def ...field.Value) (field.Value, error) {
	if b == nil {
		if len(def) == 0 {
			return field.Value{}, ierrors.New("cannot decode nil field value")
		}
		return def[0], nil
	}
	if len(b) != field.Size {
		return field.Value{}, ierrors.Errorf("invalid field value size %d", len(b))
	}
	return field.FromBytes(b)
}

func EncodeField(value field.Value) []byte {
	b := value.Bytes32()
	return b[:]
}
