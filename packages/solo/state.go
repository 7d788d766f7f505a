// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package solo

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/kvstore"
	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/profilesharing/packages/isc"
)

// bufferedState is the state of one contract during a call. Mutations stay in
// memory until commit; a failed or read-only call simply drops them.
type bufferedState struct {
	db        kvstore.KVStore
	prefix    []byte
	mutations map[string][]byte
}

var _ isc.KVStore = &bufferedState{}

func newBufferedState(db kvstore.KVStore, contract common.Address) *bufferedState {
	return &bufferedState{
		db:        db,
		prefix:    contract.Bytes(),
		mutations: make(map[string][]byte),
	}
}

func (s *bufferedState) dbKey(key []byte) []byte {
	return append(append([]byte{}, s.prefix...), key...)
}

func (s *bufferedState) Get(key []byte) []byte {
	if v, ok := s.mutations[string(key)]; ok {
		return v
	}
	v, err := s.db.Get(s.dbKey(key))
	if err != nil {
		if ierrors.Is(err, kvstore.ErrKeyNotFound) {
			return nil
		}
		panic(ierrors.Wrap(err, "solo state read failed"))
	}
	return v
}

func (s *bufferedState) Has(key []byte) bool {
	return s.Get(key) != nil
}

func (s *bufferedState) Set(key, value []byte) {
	s.mutations[string(key)] = append([]byte{}, value...)
}

func (s *bufferedState) Del(key []byte) {
	s.mutations[string(key)] = nil
}

func (s *bufferedState) commit() error {
	for k, v := range s.mutations {
		var err error
		if v == nil {
			err = s.db.Delete(s.dbKey([]byte(k)))
		} else {
			err = s.db.Set(s.dbKey([]byte(k)), v)
		}
		if err != nil {
			return ierrors.Wrap(err, "solo state write failed")
		}
	}
	return s.db.Flush()
}

type sandbox struct {
	caller      common.Address
	contract    common.Address
	blockNumber uint64
	state       *bufferedState
	log         log.Logger
}

var _ isc.Sandbox = &sandbox{}

func (s *sandbox) Caller() common.Address {
	return s.caller
}

func (s *sandbox) Contract() common.Address {
	return s.contract
}

func (s *sandbox) BlockNumber() uint64 {
	return s.blockNumber
}

func (s *sandbox) State() isc.KVStore {
	return s.state
}

func (s *sandbox) Log() isc.LogInterface {
	return s.log
}
