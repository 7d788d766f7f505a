// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package scclient

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/profilesharing/clients/chainclient"
	"github.com/iotaledger/profilesharing/packages/artifact"
	"github.com/iotaledger/profilesharing/packages/cryptolib"
	"github.com/iotaledger/profilesharing/packages/l1connection"
	"github.com/iotaledger/profilesharing/packages/metrics"
	"github.com/iotaledger/profilesharing/packages/util"
)

const DefaultBindingCacheSize = 128

type Options struct {
	// RequiredMethods must all be declared in the artifact ABI.
	RequiredMethods []string
	// Timeout bounds every round trip of the session. Zero means util.DefaultTimeout.
	Timeout time.Duration
}

type bindingKey struct {
	address  common.Address
	codeHash common.Hash
}

// Resolver opens sessions against one ledger and remembers which contract
// bindings it has already verified.
type Resolver struct {
	client   l1connection.Client
	verified *lru.Cache[bindingKey, struct{}]
	log      log.Logger
	metrics  *metrics.ClientMetrics
}

// NewResolver creates a resolver. A nil logger discards the session logs.
func NewResolver(client l1connection.Client, logger log.Logger, m *metrics.ClientMetrics) *Resolver {
	if logger == nil {
		return newResolver(client, log.NewLogger(log.WithName("scclient"), log.WithOutput(io.Discard)), m)
	}
	return newResolver(client, logger.NewChildLogger("scclient"), m)
}

func newResolver(client l1connection.Client, logger log.Logger, m *metrics.ClientMetrics) *Resolver {
	verified, err := lru.New[bindingKey, struct{}](DefaultBindingCacheSize)
	if err != nil {
		panic(err)
	}
	return &Resolver{
		client:   client,
		verified: verified,
		log:      logger,
		metrics:  m,
	}
}

// Open binds identity to the contract at address. It verifies that code is
// deployed there, that it matches the runtime code of art when art carries
// it, and that every required method is declared in the ABI.
func (r *Resolver) Open(
	ctx context.Context,
	address common.Address,
	art *artifact.Artifact,
	identity cryptolib.VariantKeyPair,
	opts ...Options,
) (*SCClient, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}
	if art == nil {
		return nil, ierrors.Wrap(ErrSessionBindFailed, "no artifact")
	}
	if identity == nil {
		return nil, ierrors.Wrapf(ErrSessionBindFailed, "%s: no identity", art)
	}
	if address == (common.Address{}) {
		return nil, ierrors.Wrapf(ErrSessionBindFailed, "%s: zero address", art)
	}
	if missing := art.MissingMethods(opt.RequiredMethods...); len(missing) > 0 {
		return nil, ierrors.Wrapf(ErrSessionBindFailed, "%s: abi lacks methods %v", art, missing)
	}

	ctx, cancel := util.WithTimeout(ctx, opt.Timeout)
	defer cancel()

	if err := r.verify(ctx, address, art); err != nil {
		return nil, err
	}
	chainClient, err := chainclient.NewFromLedger(ctx, r.client, identity)
	if err != nil {
		return nil, ierrors.Errorf("%w: %s at %s: %w", ErrSessionBindFailed, art, address.Hex(), util.AsTimeout(err, "chain id"))
	}
	return &SCClient{
		ChainClient: chainClient,
		address:     address,
		artifact:    art,
		contract:    bind.NewBoundContract(address, art.ABI, r.client, r.client, r.client),
		timeout:     opt.Timeout,
		log:         r.log,
		metrics:     r.metrics,
	}, nil
}

func (r *Resolver) verify(ctx context.Context, address common.Address, art *artifact.Artifact) error {
	key := bindingKey{address: address, codeHash: art.CodeHash()}
	if r.verified.Contains(key) {
		return nil
	}
	code, err := r.client.CodeAt(ctx, address, nil)
	if err != nil {
		return ierrors.Errorf("%w: %s at %s: %w", ErrSessionBindFailed, art, address.Hex(), util.AsTimeout(err, "fetching code"))
	}
	if len(code) == 0 {
		return ierrors.Wrapf(ErrSessionBindFailed, "%s: no contract deployed at %s", art, address.Hex())
	}
	if len(art.DeployedBytecode) > 0 && !bytes.Equal(code, art.DeployedBytecode) {
		return ierrors.Wrapf(ErrSessionBindFailed, "%s: code at %s does not match the artifact (code hash %s)",
			art, address.Hex(), crypto.Keccak256Hash(code).Hex())
	}
	r.verified.Add(key, struct{}{})
	r.log.LogDebugf("verified %s at %s", art, address.Hex())
	return nil
}
