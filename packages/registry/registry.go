// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

// Package registry keeps the addresses of deployed contracts, keyed by
// contract name, in a single durable record.
package registry

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"

	"github.com/iotaledger/hive.go/ierrors"
)

const (
	// DefaultPath is the cache file used when none is configured, relative to
	// the working directory.
	DefaultPath = "addresses.json"
	// KeyProfileSharing is the entry of the ProfileSharing contract.
	KeyProfileSharing = "profileSharing"
)

var (
	ErrCacheCorrupt      = ierrors.New("address cache is corrupt")
	ErrCacheMissingField = ierrors.New("address cache has no entry")
)

// Backend is the durable medium of the address record.
type Backend interface {
	// Read returns the raw record and whether it exists.
	Read() ([]byte, bool, error)
	// Write replaces the whole record.
	Write(data []byte) error
	// Lock takes exclusive ownership of the record until unlock is called.
	Lock(ctx context.Context) (unlock func(), error)
}

// DeploymentRecord is one cached deployment.
type DeploymentRecord struct {
	ContractName string
	Address      common.Address
}

// Deployments maps contract names to deployed addresses.
type Deployments map[string]common.Address

// Records lists the deployments sorted by contract name.
func (d Deployments) Records() []DeploymentRecord {
	names := lo.Keys(d)
	sort.Strings(names)
	return lo.Map(names, func(name string, _ int) DeploymentRecord {
		return DeploymentRecord{ContractName: name, Address: d[name]}
	})
}

// AddressStore reads and updates the deployment record of a Backend.
type AddressStore struct {
	backend Backend
}

func NewAddressStore(backend Backend) *AddressStore {
	return &AddressStore{backend: backend}
}

// Load returns the cached deployments, empty if no record exists yet.
func (s *AddressStore) Load() (Deployments, error) {
	data, ok, err := s.backend.Read()
	if err != nil {
		return nil, ierrors.Wrap(err, "cannot read address cache")
	}
	if !ok {
		return Deployments{}, nil
	}
	return decode(data)
}

// Get returns the cached address of contractName.
func (s *AddressStore) Get(contractName string) (common.Address, error) {
	deployments, err := s.Load()
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := deployments[contractName]
	if !ok {
		return common.Address{}, ierrors.Wrapf(ErrCacheMissingField, "%q", contractName)
	}
	return addr, nil
}

// Save records addr for contractName and replaces the whole record. Other
// entries are preserved. A corrupt record is left untouched.
func (s *AddressStore) Save(ctx context.Context, contractName string, addr common.Address) error {
	return s.update(ctx, contractName, func(deployments Deployments) bool {
		deployments[contractName] = addr
		return true
	})
}

// SaveIfAbsent records addr for contractName unless the record already has an
// entry for it. The check and the write happen under the same lock. It returns
// the address that is cached afterwards and whether addr was stored.
func (s *AddressStore) SaveIfAbsent(ctx context.Context, contractName string, addr common.Address) (common.Address, bool, error) {
	cached := addr
	stored := false
	err := s.update(ctx, contractName, func(deployments Deployments) bool {
		if existing, ok := deployments[contractName]; ok {
			cached = existing
			return false
		}
		deployments[contractName] = addr
		stored = true
		return true
	})
	if err != nil {
		return common.Address{}, false, err
	}
	return cached, stored, nil
}

// update runs a locked read-modify-write. The record is only written when
// modify reports a change.
func (s *AddressStore) update(ctx context.Context, contractName string, modify func(Deployments) bool) error {
	if contractName == "" {
		return ierrors.New("empty contract name")
	}
	unlock, err := s.backend.Lock(ctx)
	if err != nil {
		return ierrors.Wrap(err, "cannot lock address cache")
	}
	defer unlock()

	deployments, err := s.Load()
	if err != nil {
		return err
	}
	if !modify(deployments) {
		return nil
	}
	data, err := encode(deployments)
	if err != nil {
		return err
	}
	if err := s.backend.Write(data); err != nil {
		return ierrors.Wrap(err, "cannot write address cache")
	}
	return nil
}

func decode(data []byte) (Deployments, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ierrors.Errorf("%w: %w", ErrCacheCorrupt, err)
	}
	ret := make(Deployments, len(raw))
	for name, v := range raw {
		if name == "" {
			return nil, ierrors.Wrap(ErrCacheCorrupt, "empty contract name")
		}
		s, ok := v.(string)
		if !ok {
			return nil, ierrors.Wrapf(ErrCacheCorrupt, "%q: address must be a string", name)
		}
		if !common.IsHexAddress(s) {
			return nil, ierrors.Wrapf(ErrCacheCorrupt, "%q: malformed address %q", name, s)
		}
		ret[name] = common.HexToAddress(s)
	}
	return ret, nil
}

func encode(d Deployments) ([]byte, error) {
	raw := make(map[string]string, len(d))
	for name, addr := range d {
		raw[name] = addr.Hex()
	}
	// encoding/json sorts map keys
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
