// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

// Package profileclient creates, shares and queries profile records through
// a session bound to the ProfileSharing contract.
package profileclient

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/profilesharing/clients/scclient"
	"github.com/iotaledger/profilesharing/contracts/native/profilesharing"
	"github.com/iotaledger/profilesharing/packages/field"
)

// Profile is a profile record as returned by the contract.
type Profile struct {
	Name  field.Value `yaml:"name"`
	Bio   field.Value `yaml:"bio"`
	Age   uint8       `yaml:"age"`
	Nonce field.Value `yaml:"nonce"`
}

// Display renders the record with the encoded fields decoded back to text
// where possible.
func (p *Profile) Display() string {
	return fmt.Sprintf("name=%q bio=%q age=%d nonce=%s",
		field.DecodeString(p.Name), field.DecodeString(p.Bio), p.Age, p.Nonce)
}

// Encoded is the record of name and bio after encoding.
func Encoded(name, bio string, age uint8, nonce field.Value) (*Profile, error) {
	n, err := field.Encode(name)
	if err != nil {
		return nil, ierrors.Wrap(err, "name")
	}
	b, err := field.Encode(bio)
	if err != nil {
		return nil, ierrors.Wrap(err, "bio")
	}
	return &Profile{Name: n, Bio: b, Age: age, Nonce: nonce}, nil
}

func (p *Profile) args() []any {
	return []any{p.Name.Big(), p.Bio.Big(), p.Age, p.Nonce.Big()}
}

// CreateProfile stores the record of the session identity and waits for
// confirmation.
func CreateProfile(ctx context.Context, s *scclient.SCClient, name, bio string, age uint8, nonce field.Value) (*types.Receipt, error) {
	p, err := Encoded(name, bio, age, nonce)
	if err != nil {
		return nil, ierrors.Wrap(err, profilesharing.MethodCreateProfile)
	}
	receipt, err := s.SendAndWait(ctx, profilesharing.MethodCreateProfile, p.args()...)
	if err != nil {
		return receipt, ierrors.Wrap(err, profilesharing.MethodCreateProfile)
	}
	return receipt, nil
}

// ShareProfile discloses a record to recipient. The record is given in full
// and stored independently of the owner's own record.
func ShareProfile(ctx context.Context, s *scclient.SCClient, recipient common.Address, name, bio string, age uint8, nonce field.Value) (*types.Receipt, error) {
	p, err := Encoded(name, bio, age, nonce)
	if err != nil {
		return nil, ierrors.Wrap(err, profilesharing.MethodShareProfile)
	}
	receipt, err := s.SendAndWait(ctx, profilesharing.MethodShareProfile, append([]any{recipient}, p.args()...)...)
	if err != nil {
		return receipt, ierrors.Wrapf(err, "%s to %s", profilesharing.MethodShareProfile, recipient.Hex())
	}
	return receipt, nil
}

// GetProfile returns the record of owner as visible to the session identity.
// It only simulates the call.
func GetProfile(ctx context.Context, s *scclient.SCClient, owner common.Address) (*Profile, error) {
	out, err := s.Simulate(ctx, profilesharing.MethodGetProfile, owner)
	if err != nil {
		return nil, ierrors.Wrapf(err, "%s of %s", profilesharing.MethodGetProfile, owner.Hex())
	}
	p, err := profileFromResults(out)
	if err != nil {
		return nil, ierrors.Errorf("%w: %s of %s: %w", scclient.ErrCallFailed, profilesharing.MethodGetProfile, owner.Hex(), err)
	}
	return p, nil
}

func profileFromResults(out []any) (*Profile, error) {
	if len(out) != 4 {
		return nil, ierrors.Errorf("expected 4 results, got %d", len(out))
	}
	var (
		p   Profile
		err error
	)
	if p.Name, err = fieldResult(out[0]); err != nil {
		return nil, ierrors.Wrap(err, "name")
	}
	if p.Bio, err = fieldResult(out[1]); err != nil {
		return nil, ierrors.Wrap(err, "bio")
	}
	age, ok := out[2].(uint8)
	if !ok {
		return nil, ierrors.Errorf("age: unexpected type %T", out[2])
	}
	p.Age = age
	if p.Nonce, err = fieldResult(out[3]); err != nil {
		return nil, ierrors.Wrap(err, "nonce")
	}
	return &p, nil
}

func fieldResult(v any) (field.Value, error) {
	b, ok := v.(*big.Int)
	if !ok {
		return field.Value{}, ierrors.Errorf("unexpected type %T", v)
	}
	return field.FromBig(b)
}

// Client is a session of the ProfileSharing contract.
type Client struct {
	*scclient.SCClient
}

func New(s *scclient.SCClient) *Client {
	return &Client{SCClient: s}
}

// Options returns the session options requiring every ProfileSharing method.
func Options() scclient.Options {
	return scclient.Options{RequiredMethods: profilesharing.Methods}
}

func (c *Client) CreateProfile(ctx context.Context, name, bio string, age uint8, nonce field.Value) (*types.Receipt, error) {
	return CreateProfile(ctx, c.SCClient, name, bio, age, nonce)
}

func (c *Client) ShareProfile(ctx context.Context, recipient common.Address, name, bio string, age uint8, nonce field.Value) (*types.Receipt, error) {
	return ShareProfile(ctx, c.SCClient, recipient, name, bio, age, nonce)
}

func (c *Client) GetProfile(ctx context.Context, owner common.Address) (*Profile, error) {
	return GetProfile(ctx, c.SCClient, owner)
}
