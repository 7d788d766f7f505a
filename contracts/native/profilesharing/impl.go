// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package profilesharing

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/iotaledger/profilesharing/packages/field"
	"github.com/iotaledger/profilesharing/packages/isc"
	"github.com/iotaledger/profilesharing/packages/kv/codec"
)

var Processor = Contract.Processor(
	FuncCreateProfile.WithHandler(createProfile),
	FuncShareProfile.WithHandler(shareProfile),
	ViewGetProfile.WithHandler(getProfile),
)

type record struct {
	name  field.Value
	bio   field.Value
	age   uint8
	nonce field.Value
}

// createProfile stores the caller's own record. The caller is the storage key.
func createProfile(ctx isc.Sandbox, args []any) ([]any, error) {
	rec, err := recordFromArgs(args)
	if err != nil {
		return nil, err
	}
	owner := ctx.Caller()
	ctx.Log().LogDebugf("profilesharing.create_profile: owner %s", owner.Hex())
	saveRecord(ctx.State(), profileKey(owner), rec)
	return nil, nil
}

// shareProfile stores a copy disclosed by the caller to the recipient. The
// copy is independent of the caller's own record.
func shareProfile(ctx isc.Sandbox, args []any) ([]any, error) {
	if len(args) != 5 {
		return nil, isc.NewVMError("share_profile: expected 5 arguments, got %d", len(args))
	}
	recipient, ok := args[0].(common.Address)
	if !ok {
		return nil, isc.NewVMError("share_profile: invalid recipient")
	}
	owner := ctx.Caller()
	if recipient == owner {
		return nil, isc.NewVMError("share_profile: cannot share with self")
	}
	rec, err := recordFromArgs(args[1:])
	if err != nil {
		return nil, err
	}
	ctx.Log().LogDebugf("profilesharing.share_profile: %s -> %s", owner.Hex(), recipient.Hex())
	saveRecord(ctx.State(), sharedKey(owner, recipient), rec)
	return nil, nil
}

// getProfile returns the owner's record to the owner, and the copy the owner
// disclosed to the caller to anybody else.
func getProfile(ctx isc.Sandbox, args []any) ([]any, error) {
	if len(args) != 1 {
		return nil, isc.NewVMError("get_profile: expected 1 argument, got %d", len(args))
	}
	owner, ok := args[0].(common.Address)
	if !ok {
		return nil, isc.NewVMError("get_profile: invalid owner")
	}
	key := profileKey(owner)
	if caller := ctx.Caller(); caller != owner {
		key = sharedKey(owner, caller)
	}
	rec, found, err := loadRecord(ctx.State(), key)
	if err != nil {
		return nil, isc.NewVMError("get_profile: corrupted record: %v", err)
	}
	if !found {
		return nil, isc.NewVMError("profile not found")
	}
	return []any{rec.name.Big(), rec.bio.Big(), rec.age, rec.nonce.Big()}, nil
}

func recordFromArgs(args []any) (*record, error) {
	if len(args) != 4 {
		return nil, isc.NewVMError("expected 4 record fields, got %d", len(args))
	}
	name, err := fieldArg(args[0], "name")
	if err != nil {
		return nil, err
	}
	bio, err := fieldArg(args[1], "bio")
	if err != nil {
		return nil, err
	}
	age, ok := args[2].(uint8)
	if !ok {
		return nil, isc.NewVMError("invalid age")
	}
	nonce, err := fieldArg(args[3], "nonce")
	if err != nil {
		return nil, err
	}
	return &record{name: name, bio: bio, age: age, nonce: nonce}, nil
}

func fieldArg(arg any, name string) (field.Value, error) {
	b, ok := arg.(*big.Int)
	if !ok {
		return field.Value{}, isc.NewVMError("invalid %s", name)
	}
	v, err := field.FromBig(b)
	if err != nil {
		return field.Value{}, isc.NewVMError("%s is not a field element", name)
	}
	return v, nil
}

func profileKey(owner common.Address) []byte {
	return append([]byte(prefixProfile), owner.Bytes()...)
}

func sharedKey(owner, recipient common.Address) []byte {
	key := append([]byte(prefixShared), owner.Bytes()...)
	return append(key, recipient.Bytes()...)
}

func subKey(key []byte, v string) []byte {
	return append(append([]byte{}, key...), v...)
}

func saveRecord(state isc.KVStore, key []byte, rec *record) {
	state.Set(subKey(key, varName), codec.EncodeField(rec.name))
	state.Set(subKey(key, varBio), codec.EncodeField(rec.bio))
	state.Set(subKey(key, varAge), codec.EncodeUint8(rec.age))
	state.Set(subKey(key, varNonce), codec.EncodeField(rec.nonce))
}

func loadRecord(state isc.KVStore, key []byte) (*record, bool, error) {
	if !state.Has(subKey(key, varAge)) {
		return nil, false, nil
	}
	var (
		rec record
		err error
	)
	if rec.name, err = codec.DecodeField(state.Get(subKey(key, varName))); err != nil {
		return nil, false, err
	}
	if rec.bio, err = codec.DecodeField(state.Get(subKey(key, varBio))); err != nil {
		return nil, false, err
	}
	if rec.age, err = codec.DecodeUint8(state.Get(subKey(key, varAge))); err != nil {
		return nil, false, err
	}
	if rec.nonce, err = codec.DecodeField(state.Get(subKey(key, varNonce))); err != nil {
		return nil, false, err
	}
	return &rec, true, nil
}
