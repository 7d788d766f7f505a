// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

// Package artifact loads compiled contract descriptions: the ABI of the
// contract interface together with its creation and runtime code.
package artifact

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/iotaledger/hive.go/ierrors"
)

var ErrInvalidArtifact = ierrors.New("invalid contract artifact")

// Artifact is a parsed compiled-contract description.
type Artifact struct {
	ContractName string
	Version      string
	ABI          abi.ABI
	// Bytecode is the creation code sent in a deployment transaction.
	Bytecode []byte
	// DeployedBytecode is the runtime code expected at the contract address.
	// It is optional; when empty, binding only checks that some code is present.
	DeployedBytecode []byte
}

type artifactJSON struct {
	ContractName     string          `json:"contractName"`
	Name             string          `json:"name"`
	Version          string          `json:"version"`
	ABI              json.RawMessage `json:"abi"`
	Bytecode         codeJSON        `json:"bytecode"`
	DeployedBytecode codeJSON        `json:"deployedBytecode"`
}

// codeJSON accepts both a plain hex string and the {"object": "..."} form of
// solc/foundry outputs.
type codeJSON string

func (c *codeJSON) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = codeJSON(s)
		return nil
	}
	var obj struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return ierrors.New("bytecode must be a hex string or an object with an 'object' field")
	}
	*c = codeJSON(obj.Object)
	return nil
}

func (c codeJSON) decode() ([]byte, error) {
	s := strings.TrimPrefix(strings.TrimSpace(string(c)), "0x")
	return hex.DecodeString(s)
}

// Load reads and parses the artifact at path.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ierrors.Errorf("%w: cannot read %s: %w", ErrInvalidArtifact, path, err)
	}
	a, err := Parse(data)
	if err != nil {
		return nil, ierrors.Wrapf(err, "artifact %s", path)
	}
	return a, nil
}

// Parse decodes an artifact document. It fails fast on any missing or
// malformed part, since nothing downstream can work with a partial artifact.
func Parse(data []byte) (*Artifact, error) {
	var raw artifactJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ierrors.Errorf("%w: %w", ErrInvalidArtifact, err)
	}
	name := raw.ContractName
	if name == "" {
		name = raw.Name
	}
	if name == "" {
		return nil, ierrors.Wrap(ErrInvalidArtifact, "missing contract name")
	}
	if len(raw.ABI) == 0 {
		return nil, ierrors.Wrapf(ErrInvalidArtifact, "%s: missing abi", name)
	}
	contractABI, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, ierrors.Errorf("%w: %s: abi: %w", ErrInvalidArtifact, name, err)
	}
	code, err := raw.Bytecode.decode()
	if err != nil {
		return nil, ierrors.Errorf("%w: %s: bytecode: %w", ErrInvalidArtifact, name, err)
	}
	if len(code) == 0 {
		return nil, ierrors.Wrapf(ErrInvalidArtifact, "%s: empty bytecode", name)
	}
	deployed, err := raw.DeployedBytecode.decode()
	if err != nil {
		return nil, ierrors.Errorf("%w: %s: deployedBytecode: %w", ErrInvalidArtifact, name, err)
	}
	return &Artifact{
		ContractName:     name,
		Version:          raw.Version,
		ABI:              contractABI,
		Bytecode:         code,
		DeployedBytecode: deployed,
	}, nil
}

// MustParse is Parse for embedded artifacts.
func MustParse(data []byte) *Artifact {
	a, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return a
}

// MissingMethods returns the names from want that the ABI does not declare.
func (a *Artifact) MissingMethods(want ...string) []string {
	var missing []string
	for _, name := range want {
		if _, ok := a.ABI.Methods[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// CodeHash is the keccak hash of the expected runtime code, or the zero hash
// when the artifact does not carry runtime code.
func (a *Artifact) CodeHash() common.Hash {
	if len(a.DeployedBytecode) == 0 {
		return common.Hash{}
	}
	return crypto.Keccak256Hash(a.DeployedBytecode)
}

func (a *Artifact) String() string {
	if a.Version == "" {
		return a.ContractName
	}
	return a.ContractName + "@" + a.Version
}
