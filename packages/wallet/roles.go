// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package wallet

import (
	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/profilesharing/packages/cryptolib"
)

const (
	RoleOwner     = "owner"
	RoleRecipient = "recipient"
)

var ErrUnknownRole = ierrors.New("unknown role")

// Roles maps role names onto account indexes of a Provider.
type Roles map[string]int

// DefaultRoles keeps the conventional positions: the owner (also the deployer)
// is the first account, the recipient the second.
func DefaultRoles() Roles {
	return Roles{
		RoleOwner:     0,
		RoleRecipient: 1,
	}
}

// Identities resolves named roles through a Provider.
type Identities struct {
	provider Provider
	roles    Roles
}

func NewIdentities(provider Provider, roles Roles) *Identities {
	if roles == nil {
		roles = DefaultRoles()
	}
	return &Identities{provider: provider, roles: roles}
}

func (i *Identities) Resolve(role string) (cryptolib.VariantKeyPair, error) {
	index, ok := i.roles[role]
	if !ok {
		return nil, ierrors.Wrapf(ErrUnknownRole, "%q", role)
	}
	kp, err := i.provider.Account(index)
	if err != nil {
		return nil, ierrors.Wrapf(err, "role %s", role)
	}
	return kp, nil
}

func (i *Identities) Owner() (cryptolib.VariantKeyPair, error) {
	return i.Resolve(RoleOwner)
}

func (i *Identities) Recipient() (cryptolib.VariantKeyPair, error) {
	return i.Resolve(RoleRecipient)
}
