// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

// Package scclient binds an identity to a deployed contract and issues
// simulated (read-only) and state-changing calls through it.
package scclient

import (
	"context"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/profilesharing/clients/chainclient"
	"github.com/iotaledger/profilesharing/packages/artifact"
	"github.com/iotaledger/profilesharing/packages/cryptolib"
	"github.com/iotaledger/profilesharing/packages/l1connection"
	"github.com/iotaledger/profilesharing/packages/metrics"
	"github.com/iotaledger/profilesharing/packages/util"
)

var (
	ErrSessionBindFailed = ierrors.New("cannot bind to contract")
	ErrCallFailed        = ierrors.New("contract call failed")
)

// SCClient is a session: one identity bound to one verified contract.
type SCClient struct {
	ChainClient *chainclient.Client
	address     common.Address
	artifact    *artifact.Artifact
	contract    *bind.BoundContract
	timeout     time.Duration
	log         log.Logger
	metrics     *metrics.ClientMetrics
}

// Open binds identity to the contract at address. See Resolver.Open.
func Open(
	ctx context.Context,
	client l1connection.Client,
	address common.Address,
	art *artifact.Artifact,
	identity cryptolib.VariantKeyPair,
	opts ...Options,
) (*SCClient, error) {
	return NewResolver(client, nil, nil).Open(ctx, address, art, identity, opts...)
}

func (c *SCClient) Address() common.Address {
	return c.address
}

func (c *SCClient) Identity() cryptolib.VariantKeyPair {
	return c.ChainClient.KeyPair
}

func (c *SCClient) ABI() abi.ABI {
	return c.artifact.ABI
}

func (c *SCClient) Artifact() *artifact.Artifact {
	return c.artifact
}

// Simulate evaluates method against the latest state without submitting a
// transaction, and returns its decoded results.
func (c *SCClient) Simulate(ctx context.Context, method string, args ...any) ([]any, error) {
	ctx, cancel := util.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.log.LogDebugf("simulate %s.%s from %s", c.artifact.ContractName, method, c.Identity().Address().Hex())
	out, err := c.ChainClient.CallView(ctx, c.contract, method, args)
	err = c.classify(err, method, "simulate")
	c.metrics.Call(method, metrics.KindSimulate, err)
	return out, err
}

// Send submits method as a signed transaction. The call is complete only
// once the returned PendingTx has been waited for.
func (c *SCClient) Send(ctx context.Context, method string, args ...any) (*PendingTx, error) {
	sendCtx, cancel := util.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.log.LogDebugf("send %s.%s from %s", c.artifact.ContractName, method, c.Identity().Address().Hex())
	tx, err := c.ChainClient.PostRequest(sendCtx, c.contract, method, args)
	if err != nil {
		err = c.classify(err, method, "send")
		c.metrics.Call(method, metrics.KindSend, err)
		return nil, err
	}
	return &PendingTx{client: c, method: method, tx: tx}, nil
}

// SendAndWait is Send followed by PendingTx.Wait.
func (c *SCClient) SendAndWait(ctx context.Context, method string, args ...any) (*types.Receipt, error) {
	pending, err := c.Send(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	return pending.Wait(ctx)
}

func (c *SCClient) classify(err error, method, kind string) error {
	if err == nil {
		return nil
	}
	if ierrors.Is(err, context.DeadlineExceeded) {
		return util.AsTimeout(err, kind+" "+method)
	}
	if IsRevert(err) {
		return ierrors.Errorf("%w: %s %s reverted: %w", ErrCallFailed, kind, method, err)
	}
	return ierrors.Errorf("%w: %s %s: %w", ErrCallFailed, kind, method, err)
}

// IsRevert reports whether err is a rejection raised by contract logic, as
// opposed to a transport or signing failure.
func IsRevert(err error) bool {
	if err == nil {
		return false
	}
	var dataErr rpc.DataError
	if ierrors.As(err, &dataErr) {
		return true
	}
	return strings.Contains(err.Error(), "execution reverted")
}

// PendingTx is a submitted transaction that is not known to be confirmed yet.
type PendingTx struct {
	client *SCClient
	method string
	tx     *types.Transaction
}

func (p *PendingTx) Hash() common.Hash {
	return p.tx.Hash()
}

func (p *PendingTx) Transaction() *types.Transaction {
	return p.tx
}

// Wait blocks until the transaction is confirmed. A transaction that was
// mined but failed is reported as ErrCallFailed.
func (p *PendingTx) Wait(ctx context.Context) (*types.Receipt, error) {
	receipt, err := p.client.ChainClient.WaitUntilRequestProcessed(ctx, p.tx, p.client.timeout)
	switch {
	case err == nil:
		p.client.log.LogDebugf("%s confirmed in block %v", p.method, receipt.BlockNumber)
	case ierrors.Is(err, l1connection.ErrTxFailed):
		err = ierrors.Errorf("%w: send %s: %w", ErrCallFailed, p.method, err)
	case ierrors.Is(err, util.ErrTimeout):
	default:
		err = ierrors.Errorf("%w: send %s: %w", ErrCallFailed, p.method, err)
	}
	p.client.metrics.Call(p.method, metrics.KindSend, err)
	return receipt, err
}
