// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"

	"github.com/iotaledger/profilesharing/tools/profile-cli/cli/config"
	"github.com/iotaledger/profilesharing/tools/profile-cli/cli/setup"
	"github.com/iotaledger/profilesharing/tools/profile-cli/deploy"
	"github.com/iotaledger/profilesharing/tools/profile-cli/log"
	"github.com/iotaledger/profilesharing/tools/profile-cli/profile"
)

func initRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile-cli",
		Short: "profile-cli deploys the ProfileSharing contract and interacts with it",
		Long: `profile-cli deploys the ProfileSharing contract at most once per environment
and creates, shares and queries profile records through it.
Deployed addresses are kept in the address cache file.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			log.Check(cmd.Help())
		},
		SilenceUsage: true,
	}
}

func main() {
	rootCmd := initRootCmd()
	cobra.OnInitialize(config.Read)
	log.Init(rootCmd)
	setup.Init(rootCmd)
	deploy.Init(rootCmd)
	profile.Init(rootCmd)

	log.Check(rootCmd.Execute())
}
