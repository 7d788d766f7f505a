// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

// Package coreutil provides the building blocks of native contracts:
// contract descriptions, entry points and their processors.
package coreutil

import (
	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/iotaledger/profilesharing/packages/artifact"
	"github.com/iotaledger/profilesharing/packages/isc"
)

// ContractInfo describes a native contract through its compiled artifact.
type ContractInfo struct {
	Name     string
	Artifact *artifact.Artifact
}

func NewContract(a *artifact.Artifact) *ContractInfo {
	return &ContractInfo{Name: a.ContractName, Artifact: a}
}

// Program is the code that, when deployed, installs this contract.
func (i *ContractInfo) Program() []byte {
	return i.Artifact.Bytecode
}

func (i *ContractInfo) ABI() abi.ABI {
	return i.Artifact.ABI
}

type Handler func(ctx isc.Sandbox, args []any) ([]any, error)

// EntryPointInfo is a named entry point of a contract.
type EntryPointInfo struct {
	Contract *ContractInfo
	Name     string
	view     bool
}

func NewEP(contract *ContractInfo, name string) EntryPointInfo {
	return EntryPointInfo{Contract: contract, Name: name}
}

func NewViewEP(contract *ContractInfo, name string) EntryPointInfo {
	return EntryPointInfo{Contract: contract, Name: name, view: true}
}

func (ep EntryPointInfo) IsView() bool {
	return ep.view
}

func (ep EntryPointInfo) WithHandler(fun Handler) *EntryPointHandler {
	return &EntryPointHandler{Info: ep, fun: fun}
}

type EntryPointHandler struct {
	Info EntryPointInfo
	fun  Handler
}

var _ isc.VMProcessorEntryPoint = &EntryPointHandler{}

func (h *EntryPointHandler) Call(ctx isc.Sandbox, args []any) ([]any, error) {
	return h.fun(ctx, args)
}

func (h *EntryPointHandler) IsView() bool {
	return h.Info.view
}
