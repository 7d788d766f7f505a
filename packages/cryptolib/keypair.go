// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package cryptolib

import (
	"crypto/ecdsa"
	"encoding/binary"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/iotaledger/hive.go/ierrors"
)

const SeedSize = 32

type Seed [SeedSize]byte

// KeyPair is a secp256k1 key pair.
type KeyPair struct {
	privateKey *ecdsa.PrivateKey
}

var _ VariantKeyPair = &KeyPair{}

func NewKeyPair() *KeyPair {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return &KeyPair{privateKey: key}
}

func NewKeyPairFromPrivateKey(key *ecdsa.PrivateKey) *KeyPair {
	return &KeyPair{privateKey: key}
}

// KeyPairFromSeed derives the private key as the keccak hash of the seed.
func KeyPairFromSeed(seed Seed) (*KeyPair, error) {
	key, err := crypto.ToECDSA(crypto.Keccak256(seed[:]))
	if err != nil {
		return nil, ierrors.Wrap(err, "seed does not yield a valid private key")
	}
	return &KeyPair{privateKey: key}, nil
}

// KeyPairFromHex parses a hex encoded private key, with or without 0x prefix.
func KeyPairFromHex(s string) (*KeyPair, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, ierrors.Wrap(err, "invalid private key")
	}
	return &KeyPair{privateKey: key}, nil
}

// SubSeed derives the seed of the account at index from a master seed.
func SubSeed(seed []byte, index uint32) Seed {
	indexBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(indexBytes, index)
	var ret Seed
	copy(ret[:], crypto.Keccak256(seed, indexBytes))
	return ret
}

func (k *KeyPair) Address() common.Address {
	return crypto.PubkeyToAddress(k.privateKey.PublicKey)
}

func (k *KeyPair) PrivateKey() *ecdsa.PrivateKey {
	return k.privateKey
}

func (k *KeyPair) PrivateKeyHex() string {
	return "0x" + common.Bytes2Hex(crypto.FromECDSA(k.privateKey))
}

func (k *KeyPair) TransactOpts(chainID *big.Int) (*bind.TransactOpts, error) {
	return bind.NewKeyedTransactorWithChainID(k.privateKey, chainID)
}
