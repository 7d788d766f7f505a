// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package setup

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iotaledger/profilesharing/tools/profile-cli/cli/config"
	"github.com/iotaledger/profilesharing/tools/profile-cli/log"
)

func Init(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVarP(&config.ConfigPath, "config", "c", "profile-cli.json", "path to profile-cli.json")
	rootCmd.PersistentFlags().String("ledger-url", "", "ledger JSON-RPC endpoint, overridden by $LEDGER_URL")
	rootCmd.PersistentFlags().String("cache", "", "path of the address cache file")
	rootCmd.PersistentFlags().String("artifact", "", "path of the compiled contract artifact (default: built-in)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "bound of every ledger round trip")

	bindFlag(rootCmd, config.KeyLedgerURL, "ledger-url")
	bindFlag(rootCmd, config.KeyCachePath, "cache")
	bindFlag(rootCmd, config.KeyArtifactPath, "artifact")
	bindFlag(rootCmd, config.KeyTimeout, "timeout")

	rootCmd.AddCommand(initConfigSetCmd())
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	log.Check(viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)))
}

func initConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			config.Set(args[0], args[1])
			log.Printf("%s = %s\n", args[0], args[1])
		},
	}
}
