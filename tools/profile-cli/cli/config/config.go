// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/iotaledger/profilesharing/packages/l1connection"
	"github.com/iotaledger/profilesharing/packages/registry"
	"github.com/iotaledger/profilesharing/packages/util"
	"github.com/iotaledger/profilesharing/packages/wallet"
	"github.com/iotaledger/profilesharing/tools/profile-cli/log"
)

const (
	KeyLedgerURL      = "ledger.url"
	KeyCachePath      = "cache.path"
	KeyArtifactPath   = "artifact.path"
	KeyWalletMnemonic = "wallet.mnemonic"
	KeyWalletKeys     = "wallet.keys"
	KeyWalletRoles    = "wallet.roles"
	KeyWalletTestAccs = "wallet.testaccounts"
	KeyTimeout        = "timeout"
)

var ConfigPath string

func init() {
	SetDefaults(viper.GetViper())
}

// SetDefaults installs the defaults and environment overrides on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLedgerURL, l1connection.DefaultURL)
	v.SetDefault(KeyCachePath, registry.DefaultPath)
	v.SetDefault(KeyTimeout, util.DefaultTimeout)
	_ = v.BindEnv(KeyLedgerURL, l1connection.EnvURL)
}

func Read() {
	if ConfigPath == "" {
		return
	}
	viper.SetConfigFile(ConfigPath)
	// a missing config file is fine, everything has a default
	_ = viper.ReadInConfig()
}

func LedgerURL() string {
	return viper.GetString(KeyLedgerURL)
}

func CachePath() string {
	return viper.GetString(KeyCachePath)
}

// ArtifactPath is the compiled contract artifact deployed and called by the CLI.
func ArtifactPath() string {
	return viper.GetString(KeyArtifactPath)
}

func Timeout() time.Duration {
	return viper.GetDuration(KeyTimeout)
}

func WalletMnemonic() string {
	return viper.GetString(KeyWalletMnemonic)
}

func WalletKeys() []string {
	return viper.GetStringSlice(KeyWalletKeys)
}

// WalletTestAccounts enables the development accounts when no mnemonic or
// keys are configured.
func WalletTestAccounts() bool {
	return viper.GetBool(KeyWalletTestAccs)
}

func Roles() wallet.Roles {
	roles := wallet.DefaultRoles()
	for role, index := range viper.GetStringMap(KeyWalletRoles) {
		i, ok := toInt(index)
		if !ok {
			log.Fatalf("%s.%s: index must be an integer", KeyWalletRoles, role)
		}
		roles[role] = i
	}
	return roles
}

func toInt(v interface{}) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		return int(x), x == float64(int(x))
	default:
		return 0, false
	}
}

func Set(key string, value interface{}) {
	viper.Set(key, value)
	log.Check(viper.WriteConfigAs(ConfigPath))
}
