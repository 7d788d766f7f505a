// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package coreutil

import (
	"fmt"

	"github.com/iotaledger/profilesharing/packages/isc"
)

// ContractProcessor dispatches calls of a native contract to its handlers.
type ContractProcessor struct {
	Contract *ContractInfo
	Handlers map[string]*EntryPointHandler
}

var _ isc.VMProcessor = &ContractProcessor{}

// Processor builds the processor of the contract. Every handler must name a
// method declared in the contract ABI.
func (i *ContractInfo) Processor(handlers ...*EntryPointHandler) *ContractProcessor {
	p := &ContractProcessor{
		Contract: i,
		Handlers: make(map[string]*EntryPointHandler, len(handlers)),
	}
	for _, h := range handlers {
		if _, ok := i.Artifact.ABI.Methods[h.Info.Name]; !ok {
			panic(fmt.Sprintf("%s: entry point %q is not declared in the ABI", i.Name, h.Info.Name))
		}
		if _, dup := p.Handlers[h.Info.Name]; dup {
			panic(fmt.Sprintf("%s: duplicate entry point %q", i.Name, h.Info.Name))
		}
		p.Handlers[h.Info.Name] = h
	}
	return p
}

func (p *ContractProcessor) GetEntryPoint(method string) (isc.VMProcessorEntryPoint, bool) {
	h, ok := p.Handlers[method]
	if !ok {
		return nil, false
	}
	return h, true
}

func (p *ContractProcessor) GetDescription() string {
	return fmt.Sprintf("native contract %s", p.Contract.Artifact)
}
