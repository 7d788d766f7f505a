// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"context"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/profilesharing/clients/profileclient"
	"github.com/iotaledger/profilesharing/clients/scclient"
	"github.com/iotaledger/profilesharing/packages/field"
	"github.com/iotaledger/profilesharing/packages/registry"
	"github.com/iotaledger/profilesharing/packages/wallet"
	"github.com/iotaledger/profilesharing/tools/profile-cli/cli/cliclients"
	"github.com/iotaledger/profilesharing/tools/profile-cli/cli/config"
	cliwallet "github.com/iotaledger/profilesharing/tools/profile-cli/cli/wallet"
	"github.com/iotaledger/profilesharing/tools/profile-cli/log"
)

func Init(rootCmd *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Create, share and query profile records",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			log.Check(cmd.Help())
		},
	}
	cmd.AddCommand(initCreateCmd())
	cmd.AddCommand(initShareCmd())
	cmd.AddCommand(initGetCmd())
	rootCmd.AddCommand(cmd)
}

type txResult struct {
	Operation string `yaml:"operation"`
	Contract  string `yaml:"contract"`
	Sender    string `yaml:"sender"`
	Recipient string `yaml:"recipient,omitempty"`
	TxHash    string `yaml:"tx"`
	Block     uint64 `yaml:"block"`
	Nonce     string `yaml:"nonce"`
}

type getResult struct {
	Owner   string                 `yaml:"owner"`
	Caller  string                 `yaml:"caller"`
	Profile *profileclient.Profile `yaml:"profile"`
	Display displayed              `yaml:"display"`
}

type displayed struct {
	Name string `yaml:"name"`
	Bio  string `yaml:"bio"`
}

func session(ctx context.Context, role string) *profileclient.Client {
	ids := cliwallet.Load()
	identity := cliwallet.Resolve(ids, role)
	addr, err := cliclients.AddressStore().Get(registry.KeyProfileSharing)
	log.Check(err)

	opts := profileclient.Options()
	opts.Timeout = config.Timeout()
	s, err := scclient.NewResolver(cliclients.L1Client(ctx), log.HiveLogger(), nil).
		Open(ctx, addr, cliclients.Artifact(), identity, opts)
	log.Check(err)
	return profileclient.New(s)
}

// ParseAge parses a record age, which the contract stores as uint8.
func ParseAge(s string) (uint8, error) {
	age, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, ierrors.Wrapf(err, "invalid age %q", s)
	}
	return uint8(age), nil
}

// ParseNonce parses a hex nonce, or samples a random one when s is empty.
func ParseNonce(s string) (field.Value, error) {
	if s == "" {
		return field.Random()
	}
	return field.FromHex(s)
}

func recordArgs(ageStr, nonceStr string) (uint8, field.Value) {
	age, err := ParseAge(ageStr)
	log.Check(err)
	nonce, err := ParseNonce(nonceStr)
	log.Check(err)
	return age, nonce
}

func initCreateCmd() *cobra.Command {
	var (
		role  string
		nonce string
	)
	cmd := &cobra.Command{
		Use:   "create <name> <bio> <age>",
		Short: "Store the profile record of the acting identity",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			age, n := recordArgs(args[2], nonce)
			c := session(ctx, role)
			receipt, err := c.CreateProfile(ctx, args[0], args[1], age, n)
			log.Check(err)
			log.PrintYAML(txResult{
				Operation: "create_profile",
				Contract:  c.Address().Hex(),
				Sender:    c.Identity().Address().Hex(),
				TxHash:    receipt.TxHash.Hex(),
				Block:     receipt.BlockNumber.Uint64(),
				Nonce:     n.String(),
			})
		},
	}
	cmd.Flags().StringVar(&role, "as", wallet.RoleOwner, "role of the acting identity")
	cmd.Flags().StringVar(&nonce, "nonce", "", "record nonce as hex (default: random)")
	return cmd
}

func initShareCmd() *cobra.Command {
	var (
		role  string
		nonce string
	)
	cmd := &cobra.Command{
		Use:   "share <recipient> <name> <bio> <age>",
		Short: "Disclose a profile record to a recipient, given as address or role",
		Args:  cobra.ExactArgs(4),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			recipient, err := cliwallet.TargetAddress(cliwallet.Load(), args[0])
			log.Check(err)
			age, n := recordArgs(args[3], nonce)
			c := session(ctx, role)
			receipt, err := c.ShareProfile(ctx, recipient, args[1], args[2], age, n)
			log.Check(err)
			log.PrintYAML(txResult{
				Operation: "share_profile",
				Contract:  c.Address().Hex(),
				Sender:    c.Identity().Address().Hex(),
				Recipient: recipient.Hex(),
				TxHash:    receipt.TxHash.Hex(),
				Block:     receipt.BlockNumber.Uint64(),
				Nonce:     n.String(),
			})
		},
	}
	cmd.Flags().StringVar(&role, "as", wallet.RoleOwner, "role of the acting identity")
	cmd.Flags().StringVar(&nonce, "nonce", "", "record nonce as hex (default: random)")
	return cmd
}

func initGetCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "get <owner>",
		Short: "Query the record of an owner, given as address or role",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			owner, err := cliwallet.TargetAddress(cliwallet.Load(), args[0])
			log.Check(err)
			c := session(ctx, role)
			p, err := c.GetProfile(ctx, owner)
			log.Check(err)
			log.PrintYAML(result(owner, c.Identity().Address(), p))
		},
	}
	cmd.Flags().StringVar(&role, "as", wallet.RoleOwner, "role of the querying identity")
	return cmd
}

func result(owner, caller common.Address, p *profileclient.Profile) getResult {
	return getResult{
		Owner:   owner.Hex(),
		Caller:  caller.Hex(),
		Profile: p,
		Display: displayed{
			Name: field.DecodeString(p.Name),
			Bio:  field.DecodeString(p.Bio),
		},
	}
}
