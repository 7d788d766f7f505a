// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

// Package wallet supplies acting identities: ordered account sources and the
// named roles resolved against them.
package wallet

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/profilesharing/packages/cryptolib"
)

var ErrNoSuchAccount = ierrors.New("no such account")

// Provider is an ordered source of identities.
type Provider interface {
	Account(index int) (cryptolib.VariantKeyPair, error)
}

// TestAccountsCount is the number of pre-provisioned development accounts.
const TestAccountsCount = 10

// TestAccounts are deterministic, well-known development keys. The solo
// ledger funds them at genesis. Never use them on a public network.
type TestAccounts struct{}

var _ Provider = TestAccounts{}

func (TestAccounts) Account(index int) (cryptolib.VariantKeyPair, error) {
	if index < 0 || index >= TestAccountsCount {
		return nil, ierrors.Wrapf(ErrNoSuchAccount, "test account index %d out of range [0,%d)", index, TestAccountsCount)
	}
	return TestKeyPair(index), nil
}

// TestKeyPair returns the development key at index.
func TestKeyPair(index int) *cryptolib.KeyPair {
	key, err := crypto.ToECDSA(crypto.Keccak256([]byte(fmt.Sprintf("seed %d", index))))
	if err != nil {
		panic(err)
	}
	return cryptolib.NewKeyPairFromPrivateKey(key)
}

// Mnemonic derives accounts from a BIP-39 mnemonic: the BIP-39 seed is the
// master seed, account i uses cryptolib.SubSeed(master, i).
type Mnemonic struct {
	seed []byte
}

var _ Provider = &Mnemonic{}

func NewMnemonic(mnemonic, passphrase string) (*Mnemonic, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, ierrors.Wrap(err, "invalid mnemonic")
	}
	return &Mnemonic{seed: seed}, nil
}

// NewRandomMnemonic generates a fresh 24-word mnemonic.
func NewRandomMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

func (m *Mnemonic) Account(index int) (cryptolib.VariantKeyPair, error) {
	if index < 0 {
		return nil, ierrors.Wrapf(ErrNoSuchAccount, "negative account index %d", index)
	}
	kp, err := cryptolib.KeyPairFromSeed(cryptolib.SubSeed(m.seed, uint32(index)))
	if err != nil {
		return nil, err
	}
	return kp, nil
}

// HexKeys is an explicit ordered list of private keys.
type HexKeys []*cryptolib.KeyPair

var _ Provider = HexKeys{}

func NewHexKeys(keys ...string) (HexKeys, error) {
	ret := make(HexKeys, 0, len(keys))
	for i, k := range keys {
		kp, err := cryptolib.KeyPairFromHex(k)
		if err != nil {
			return nil, ierrors.Wrapf(err, "key #%d", i)
		}
		ret = append(ret, kp)
	}
	return ret, nil
}

func (h HexKeys) Account(index int) (cryptolib.VariantKeyPair, error) {
	if index < 0 || index >= len(h) {
		return nil, ierrors.Wrapf(ErrNoSuchAccount, "key index %d out of range [0,%d)", index, len(h))
	}
	return h[index], nil
}
