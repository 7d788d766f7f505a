// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/iotaledger/profilesharing/packages/deployer"
	"github.com/iotaledger/profilesharing/packages/l1connection"
	"github.com/iotaledger/profilesharing/packages/registry"
	"github.com/iotaledger/profilesharing/packages/wallet"
	"github.com/iotaledger/profilesharing/tools/profile-cli/cli/cliclients"
	"github.com/iotaledger/profilesharing/tools/profile-cli/cli/config"
	cliwallet "github.com/iotaledger/profilesharing/tools/profile-cli/cli/wallet"
	"github.com/iotaledger/profilesharing/tools/profile-cli/log"
)

type deployResult struct {
	Contract string `yaml:"contract"`
	Artifact string `yaml:"artifact"`
	Address  string `yaml:"address"`
}

func Init(rootCmd *cobra.Command) {
	rootCmd.AddCommand(initDeployCmd())
	rootCmd.AddCommand(initAddressesCmd())
}

func initDeployCmd() *cobra.Command {
	var (
		force bool
		role  string
	)
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the ProfileSharing contract, unless the address cache already has it",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			art := cliclients.Artifact()
			deployerKey := cliwallet.Resolve(cliwallet.Load(), role)

			store := cliclients.AddressStore()
			deployments, err := store.Load()
			log.Check(err)
			// the ledger is only contacted when a deployment is needed
			var client l1connection.Client
			if _, cached := deployments[registry.KeyProfileSharing]; force || !cached {
				client = cliclients.L1Client(ctx)
			}
			coord := deployer.New(client, store, log.HiveLogger(), nil)
			addr, err := coord.EnsureDeployed(ctx, registry.KeyProfileSharing, art, deployerKey, deployer.Options{
				Force:   force,
				Timeout: config.Timeout(),
			})
			log.Check(err)
			log.PrintYAML(deployResult{
				Contract: registry.KeyProfileSharing,
				Artifact: art.String(),
				Address:  addr.Hex(),
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "deploy a new instance and replace the cached address")
	cmd.Flags().StringVar(&role, "as", wallet.RoleOwner, "role of the deploying identity")
	return cmd
}

func initAddressesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "addresses",
		Short: "List the cached contract addresses",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			deployments, err := cliclients.AddressStore().Load()
			log.Check(err)
			out := make(map[string]string, len(deployments))
			for _, rec := range deployments.Records() {
				out[rec.ContractName] = rec.Address.Hex()
			}
			log.PrintYAML(out)
		},
	}
}
