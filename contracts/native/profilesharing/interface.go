// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

// Package profilesharing is the native implementation of the ProfileSharing
// contract: per-account profile records, push-disclosed to named recipients.
package profilesharing

import (
	_ "embed"

	"github.com/iotaledger/profilesharing/packages/artifact"
	"github.com/iotaledger/profilesharing/packages/isc/coreutil"
)

//go:embed ProfileSharing.json
var artifactJSON []byte

// Artifact is the compiled description of the contract.
var Artifact = artifact.MustParse(artifactJSON)

var Contract = coreutil.NewContract(Artifact)

const (
	MethodCreateProfile = "create_profile"
	MethodShareProfile  = "share_profile"
	MethodGetProfile    = "get_profile"
)

var (
	FuncCreateProfile = coreutil.NewEP(Contract, MethodCreateProfile)
	FuncShareProfile  = coreutil.NewEP(Contract, MethodShareProfile)
	ViewGetProfile    = coreutil.NewViewEP(Contract, MethodGetProfile)
)

// Methods lists every entry point a client needs to find in the ABI.
var Methods = []string{MethodCreateProfile, MethodShareProfile, MethodGetProfile}

const (
	prefixProfile = "p"
	prefixShared  = "s"

	varName  = "n"
	varBio   = "b"
	varAge   = "a"
	varNonce = "o"
)
