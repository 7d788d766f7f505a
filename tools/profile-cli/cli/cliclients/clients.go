// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package cliclients

import (
	"context"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/profilesharing/packages/artifact"
	"github.com/iotaledger/profilesharing/packages/l1connection"
	"github.com/iotaledger/profilesharing/packages/registry"
	"github.com/iotaledger/profilesharing/packages/util"
	"github.com/iotaledger/profilesharing/tools/profile-cli/cli/config"
	"github.com/iotaledger/profilesharing/tools/profile-cli/log"
)

var l1client l1connection.Client

// L1Client connects to the configured ledger and waits until it is ready.
func L1Client(ctx context.Context) l1connection.Client {
	if l1client != nil {
		return l1client
	}
	cfg := l1connection.Config{URL: config.LedgerURL()}
	log.Verbosef("using ledger %s\n", cfg.ResolveURL())
	client, err := l1connection.NewClient(ctx, cfg, log.HiveLogger())
	log.Check(err)

	waitCtx, cancel := util.WithTimeout(ctx, config.Timeout())
	defer cancel()
	log.Check(client.WaitUntilReady(waitCtx))
	l1client = client
	return l1client
}

func AddressStore() *registry.AddressStore {
	log.Verbosef("using address cache %s\n", config.CachePath())
	return registry.NewAddressStore(registry.NewFileBackend(config.CachePath()))
}

// LoadArtifact reads the artifact at path. The artifact compiled into the
// binary only runs on the in-process ledger, so a path is required.
func LoadArtifact(path string) (*artifact.Artifact, error) {
	if path == "" {
		return nil, ierrors.Wrapf(artifact.ErrInvalidArtifact,
			"%s is not set; the embedded artifact only runs on the in-process ledger", config.KeyArtifactPath)
	}
	return artifact.Load(path)
}

// Artifact loads the configured contract artifact.
func Artifact() *artifact.Artifact {
	path := config.ArtifactPath()
	a, err := LoadArtifact(path)
	log.Check(err)
	log.Verbosef("loaded %s from %s\n", a, path)
	return a
}
