// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

// Package l1connection is the ledger client used by utilities like
// profile-cli and the deployment coordinator.
package l1connection

import (
	"context"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/profilesharing/packages/artifact"
	"github.com/iotaledger/profilesharing/packages/cryptolib"
	"github.com/iotaledger/profilesharing/packages/util"
)

const (
	// DefaultURL is the endpoint of a local development node.
	DefaultURL = "http://localhost:8545"
	// EnvURL overrides the configured endpoint.
	EnvURL = "LEDGER_URL"

	pollReadyInterval = 500 * time.Millisecond
)

var (
	ErrTxFailed      = ierrors.New("transaction failed")
	ErrNoContract    = ierrors.New("receipt carries no contract address")
	ErrNotConnected  = ierrors.New("ledger endpoint not reachable")
	errMissingConfig = ierrors.New("missing ledger url")
)

type Config struct {
	URL string
}

// ResolveURL returns the endpoint to use: the environment override, then the
// configured URL, then DefaultURL.
func (c Config) ResolveURL() string {
	if url := os.Getenv(EnvURL); url != "" {
		return url
	}
	if c.URL != "" {
		return c.URL
	}
	return DefaultURL
}

// Client is everything the deployment and interaction layers need from a
// ledger node.
type Client interface {
	bind.ContractBackend
	bind.DeployBackend

	// ChainID is the id transactions must be signed for.
	ChainID(ctx context.Context) (*big.Int, error)
	// WaitUntilReady blocks until the node answers requests, or ctx expires.
	WaitUntilReady(ctx context.Context) error
	Close()
}

var _ Client = &l1client{}

type l1client struct {
	*ethclient.Client
	log log.Logger
	url string
}

// NewClient dials the configured endpoint. Dialing does not require the node
// to be up; use WaitUntilReady for that.
func NewClient(ctx context.Context, config Config, log log.Logger) (Client, error) {
	url := config.ResolveURL()
	if url == "" {
		return nil, errMissingConfig
	}
	c, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, ierrors.Errorf("%w: %s: %w", ErrNotConnected, url, err)
	}
	return &l1client{
		Client: c,
		log:    log.NewChildLogger("l1"),
		url:    url,
	}, nil
}

// WaitUntilReady implements Client.
func (c *l1client) WaitUntilReady(ctx context.Context) error {
	err := util.WaitUntil(ctx, func(ctx context.Context) (util.WaitAction, error) {
		chainID, err := c.Client.ChainID(ctx)
		if err != nil {
			c.log.LogDebugf("node %s not ready: %v", c.url, err)
			return util.WaitActionKeepWaiting, err
		}
		c.log.LogInfof("connected to %s, chain id %v", c.url, chainID)
		return util.WaitActionDone, nil
	}, util.WaitOpts{RetryInterval: pollReadyInterval, TimeoutMsg: "node " + c.url + " not ready"})
	if err != nil {
		return ierrors.Errorf("%w: %w", ErrNotConnected, err)
	}
	return nil
}

// WaitUntilConfirmed blocks until tx is mined. A mined transaction that
// failed to execute is reported as ErrTxFailed.
func WaitUntilConfirmed(ctx context.Context, c bind.DeployBackend, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, c, tx)
	if err != nil {
		if ierrors.Is(err, context.DeadlineExceeded) || ierrors.Is(err, context.Canceled) {
			return nil, util.AsTimeout(ctx.Err(), "waiting for transaction "+tx.Hash().Hex())
		}
		return nil, ierrors.Wrapf(err, "waiting for transaction %s", tx.Hash().Hex())
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, ierrors.Wrapf(ErrTxFailed, "transaction %s in block %v", tx.Hash().Hex(), receipt.BlockNumber)
	}
	return receipt, nil
}

// Deploy sends the creation transaction of art signed by deployer and waits
// until it is confirmed.
func Deploy(ctx context.Context, c Client, deployer cryptolib.VariantKeyPair, art *artifact.Artifact, args ...any) (common.Address, *types.Receipt, error) {
	chainID, err := c.ChainID(ctx)
	if err != nil {
		return common.Address{}, nil, ierrors.Wrap(err, "cannot get chain id")
	}
	opts, err := deployer.TransactOpts(chainID)
	if err != nil {
		return common.Address{}, nil, err
	}
	opts.Context = ctx
	addr, tx, _, err := bind.DeployContract(opts, art.ABI, art.Bytecode, c, args...)
	if err != nil {
		return common.Address{}, nil, util.AsTimeout(err, "sending deployment of "+art.String())
	}
	receipt, err := WaitUntilConfirmed(ctx, c, tx)
	if err != nil {
		return common.Address{}, receipt, err
	}
	if receipt.ContractAddress == (common.Address{}) {
		return common.Address{}, receipt, ErrNoContract
	}
	if receipt.ContractAddress != addr {
		return common.Address{}, receipt, ierrors.Errorf("contract deployed at %s, expected %s", receipt.ContractAddress.Hex(), addr.Hex())
	}
	return addr, receipt, nil
}
