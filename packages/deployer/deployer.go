// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

// Package deployer makes sure a contract is deployed at most once per
// environment, recording the address in the address cache.
package deployer

import (
	"bytes"
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/profilesharing/packages/artifact"
	"github.com/iotaledger/profilesharing/packages/cryptolib"
	"github.com/iotaledger/profilesharing/packages/l1connection"
	"github.com/iotaledger/profilesharing/packages/metrics"
	"github.com/iotaledger/profilesharing/packages/registry"
	"github.com/iotaledger/profilesharing/packages/util"
)

var ErrDeploymentFailed = ierrors.New("deployment failed")

type Options struct {
	// ConstructorArgs are passed to the contract constructor. Empty by default.
	ConstructorArgs []any
	// Force deploys even when the cache already has an entry, and replaces it.
	Force bool
	// Timeout bounds the deployment including confirmation. Zero means util.DefaultTimeout.
	Timeout time.Duration
}

type Coordinator struct {
	client  l1connection.Client
	store   *registry.AddressStore
	log     log.Logger
	metrics *metrics.ClientMetrics
}

func New(client l1connection.Client, store *registry.AddressStore, log log.Logger, m *metrics.ClientMetrics) *Coordinator {
	return &Coordinator{
		client:  client,
		store:   store,
		log:     log.NewChildLogger("deployer"),
		metrics: m,
	}
}

// EnsureDeployed returns the cached address of contractName, or deploys art
// signed by deployer, waits for confirmation and caches the new address.
// Failed deployments leave the cache untouched and are not retried.
func (c *Coordinator) EnsureDeployed(
	ctx context.Context,
	contractName string,
	art *artifact.Artifact,
	deployer cryptolib.VariantKeyPair,
	opts ...Options,
) (common.Address, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}

	deployments, err := c.store.Load()
	if err != nil {
		c.metrics.Deployment(contractName, metrics.ResultFailed)
		return common.Address{}, ierrors.Wrapf(err, "deploy %s", contractName)
	}
	if addr, ok := deployments[contractName]; ok && !opt.Force {
		c.log.LogInfof("%s already deployed at %s, reusing cached address", contractName, addr.Hex())
		c.metrics.Deployment(contractName, metrics.ResultCached)
		return addr, nil
	}

	addr, err := c.deploy(ctx, contractName, art, deployer, opt)
	if err != nil {
		c.metrics.Deployment(contractName, metrics.ResultFailed)
		return common.Address{}, err
	}
	c.metrics.Deployment(contractName, metrics.ResultDeployed)
	return addr, nil
}

func (c *Coordinator) deploy(
	ctx context.Context,
	contractName string,
	art *artifact.Artifact,
	deployer cryptolib.VariantKeyPair,
	opt Options,
) (common.Address, error) {
	ctx, cancel := util.WithTimeout(ctx, opt.Timeout)
	defer cancel()

	c.log.LogInfof("deploying %s (%s) from %s", contractName, art, deployer.Address().Hex())
	addr, receipt, err := l1connection.Deploy(ctx, c.client, deployer, art, opt.ConstructorArgs...)
	if err != nil {
		return common.Address{}, ierrors.Errorf("%w: %s: %w", ErrDeploymentFailed, contractName, err)
	}
	c.log.LogDebugf("%s deployment confirmed in block %v, tx %s", contractName, receipt.BlockNumber, receipt.TxHash.Hex())

	if err := c.verifyCode(ctx, addr, art); err != nil {
		return common.Address{}, ierrors.Errorf("%w: %s: %w", ErrDeploymentFailed, contractName, err)
	}

	if opt.Force {
		if err := c.store.Save(ctx, contractName, addr); err != nil {
			return common.Address{}, ierrors.Errorf("%w: %s deployed at %s but not cached: %w", ErrDeploymentFailed, contractName, addr.Hex(), err)
		}
		c.log.LogInfof("%s deployed at %s", contractName, addr.Hex())
		return addr, nil
	}
	cached, stored, err := c.store.SaveIfAbsent(ctx, contractName, addr)
	if err != nil {
		return common.Address{}, ierrors.Errorf("%w: %s deployed at %s but not cached: %w", ErrDeploymentFailed, contractName, addr.Hex(), err)
	}
	if !stored {
		// another process cached its deployment first; ours stays unused
		c.log.LogWarnf("%s was cached at %s meanwhile, deployment at %s is discarded", contractName, cached.Hex(), addr.Hex())
		return cached, nil
	}
	c.log.LogInfof("%s deployed at %s", contractName, addr.Hex())
	return addr, nil
}

// verifyCode checks that the confirmed deployment left code at addr, and the
// expected runtime code when art pins it.
func (c *Coordinator) verifyCode(ctx context.Context, addr common.Address, art *artifact.Artifact) error {
	code, err := c.client.CodeAt(ctx, addr, nil)
	if err != nil {
		return ierrors.Wrapf(util.AsTimeout(err, "fetching code"), "cannot read code at %s", addr.Hex())
	}
	if len(code) == 0 {
		return ierrors.Errorf("no code at %s after deployment of %s", addr.Hex(), art)
	}
	if len(art.DeployedBytecode) > 0 && !bytes.Equal(code, art.DeployedBytecode) {
		return ierrors.Errorf("code at %s does not match the runtime code of %s", addr.Hex(), art)
	}
	return nil
}
