// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package wallet

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/profilesharing/packages/cryptolib"
	"github.com/iotaledger/profilesharing/packages/wallet"
	"github.com/iotaledger/profilesharing/tools/profile-cli/cli/config"
	"github.com/iotaledger/profilesharing/tools/profile-cli/log"
)

var ErrNoIdentitySource = ierrors.New("no identity source configured")

// Provider picks the identity source from the config: a mnemonic, then a
// list of private keys. The deterministic development accounts are only
// used when explicitly enabled, since they are funded on the in-process
// ledger alone.
func Provider(mnemonic string, keys []string, testAccounts bool) (wallet.Provider, error) {
	switch {
	case mnemonic != "":
		m, err := wallet.NewMnemonic(mnemonic, "")
		if err != nil {
			return nil, err
		}
		return m, nil
	case len(keys) > 0:
		return wallet.NewHexKeys(keys...)
	case testAccounts:
		return wallet.TestAccounts{}, nil
	default:
		return nil, ierrors.Wrapf(ErrNoIdentitySource, "set %s or %s", config.KeyWalletMnemonic, config.KeyWalletKeys)
	}
}

func Load() *wallet.Identities {
	provider, err := Provider(config.WalletMnemonic(), config.WalletKeys(), config.WalletTestAccounts())
	log.Check(err)
	if _, ok := provider.(wallet.TestAccounts); ok {
		log.Verbosef("using development test accounts\n")
	}
	return wallet.NewIdentities(provider, config.Roles())
}

// Resolve returns the identity of role.
func Resolve(ids *wallet.Identities, role string) cryptolib.VariantKeyPair {
	kp, err := ids.Resolve(role)
	log.Check(err)
	return kp
}

// TargetAddress interprets s as a hex address, or else as a role name.
func TargetAddress(ids *wallet.Identities, s string) (common.Address, error) {
	if common.IsHexAddress(s) {
		return common.HexToAddress(s), nil
	}
	kp, err := ids.Resolve(s)
	if err != nil {
		return common.Address{}, ierrors.Wrapf(err, "%q is neither an address nor a role", s)
	}
	return kp.Address(), nil
}
