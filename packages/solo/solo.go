// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

// Package solo is an in-process ledger for tests and local runs. It speaks
// the same client interface as a JSON-RPC node, mines every accepted
// transaction synchronously and executes native contract processors instead
// of EVM bytecode.
package solo

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"

	"github.com/iotaledger/hive.go/kvstore"
	"github.com/iotaledger/hive.go/kvstore/mapdb"
	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/profilesharing/contracts/native/profilesharing"
	"github.com/iotaledger/profilesharing/packages/cryptolib"
	"github.com/iotaledger/profilesharing/packages/isc/coreutil"
	"github.com/iotaledger/profilesharing/packages/l1connection"
	"github.com/iotaledger/profilesharing/packages/testutil/testlogger"
	"github.com/iotaledger/profilesharing/packages/util"
	"github.com/iotaledger/profilesharing/packages/wallet"
)

const (
	DefaultChainID = 1074

	// GasPrice is the fixed gas price of the solo ledger, in wei.
	GasPrice = 1_000_000_000
)

// FundsFromFaucetAmount is the genesis balance of every test account: 1000 ether.
var FundsFromFaucetAmount = new(big.Int).Mul(big.NewInt(1000), big.NewInt(1e18))

// Context is the part of *testing.T that Solo needs. Anything with a name
// and a cleanup hook will do outside of tests.
type Context interface {
	Name() string
	Cleanup(func())
}

type InitOptions struct {
	Debug   bool
	ChainID int64
	Log     log.Logger
	// ExtraProcessors are installed next to the built-in native contracts.
	ExtraProcessors []*coreutil.ContractProcessor
}

func DefaultInitOptions() *InitOptions {
	return &InitOptions{
		Debug:   false,
		ChainID: DefaultChainID,
	}
}

// Stats counts the round trips served by the ledger.
type Stats struct {
	// Requests is the number of client interface calls of any kind.
	Requests int
	// Deployments is the number of contracts installed.
	Deployments int
	// Transactions is the number of transactions accepted into a block.
	Transactions int
	// Calls is the number of read-only calls.
	Calls int
}

// Solo is a structure which contains global parameters of the test: one per test instance
type Solo struct {
	// instance of the test
	T      Context
	logger log.Logger
	db     kvstore.KVStore

	mutex       sync.Mutex
	chainID     *big.Int
	processors  []*coreutil.ContractProcessor
	contracts   map[common.Address]*coreutil.ContractProcessor
	code        map[common.Address][]byte
	nonces      map[common.Address]uint64
	balances    map[common.Address]*big.Int
	receipts    map[common.Hash]*receiptEntry
	blockNumber uint64
	blockTime   time.Time
	ready       bool
	failDeploy  error
	stats       Stats
}

var _ l1connection.Client = &Solo{}

// New creates an instance of the Solo environment with the test accounts of
// wallet.TestAccounts funded at genesis.
func New(t Context, initOptions ...*InitOptions) *Solo {
	opt := DefaultInitOptions()
	if len(initOptions) > 0 {
		opt = initOptions[0]
	}
	if opt.Log == nil {
		opt.Log = testlogger.NewSimple(opt.Debug, log.WithName(t.Name()))
	}
	if opt.ChainID == 0 {
		opt.ChainID = DefaultChainID
	}

	env := &Solo{
		T:          t,
		logger:     opt.Log,
		db:         mapdb.NewMapDB(),
		chainID:    big.NewInt(opt.ChainID),
		processors: append([]*coreutil.ContractProcessor{profilesharing.Processor}, opt.ExtraProcessors...),
		contracts:  make(map[common.Address]*coreutil.ContractProcessor),
		code:       make(map[common.Address][]byte),
		nonces:     make(map[common.Address]uint64),
		balances:   make(map[common.Address]*big.Int),
		receipts:   make(map[common.Hash]*receiptEntry),
		blockTime:  time.Now(),
		ready:      true,
	}
	for i := 0; i < wallet.TestAccountsCount; i++ {
		env.balances[wallet.TestKeyPair(i).Address()] = new(big.Int).Set(FundsFromFaucetAmount)
	}
	t.Cleanup(func() {
		_ = env.db.Close()
	})
	env.logger.LogInfof("Solo environment has been created, chain id %d, %d native processors",
		opt.ChainID, len(env.processors))
	return env
}

func (env *Solo) Log() log.Logger {
	return env.logger
}

// TestAccounts is the identity source whose accounts are funded at genesis.
func (env *Solo) TestAccounts() wallet.Provider {
	return wallet.TestAccounts{}
}

// NewKeyPairFromIndex returns the funded test account at index.
func (env *Solo) NewKeyPairFromIndex(index int) *cryptolib.KeyPair {
	return wallet.TestKeyPair(index)
}

// NewKeyPairWithFunds creates a fresh key pair and credits it from the faucet.
func (env *Solo) NewKeyPairWithFunds() *cryptolib.KeyPair {
	kp := cryptolib.NewKeyPair()
	env.mutex.Lock()
	defer env.mutex.Unlock()
	env.balances[kp.Address()] = new(big.Int).Set(FundsFromFaucetAmount)
	return kp
}

func (env *Solo) Balance(addr common.Address) *big.Int {
	env.mutex.Lock()
	defer env.mutex.Unlock()
	return new(big.Int).Set(env.balanceOf(addr))
}

func (env *Solo) balanceOf(addr common.Address) *big.Int {
	b, ok := env.balances[addr]
	if !ok {
		b = new(big.Int)
		env.balances[addr] = b
	}
	return b
}

// ContractAt returns the native processor installed at addr.
func (env *Solo) ContractAt(addr common.Address) (*coreutil.ContractProcessor, bool) {
	env.mutex.Lock()
	defer env.mutex.Unlock()
	p, ok := env.contracts[addr]
	return p, ok
}

// Contracts returns the addresses of all installed contracts.
func (env *Solo) Contracts() []common.Address {
	env.mutex.Lock()
	defer env.mutex.Unlock()
	return lo.Keys(env.contracts)
}

func (env *Solo) Stats() Stats {
	env.mutex.Lock()
	defer env.mutex.Unlock()
	return env.stats
}

// SetReady toggles whether WaitUntilReady succeeds, to emulate a node that is
// still starting up.
func (env *Solo) SetReady(ready bool) {
	env.mutex.Lock()
	defer env.mutex.Unlock()
	env.ready = ready
}

// FailNextDeploy makes the next contract creation transaction be rejected
// with err before it reaches a block.
func (env *Solo) FailNextDeploy(err error) {
	env.mutex.Lock()
	defer env.mutex.Unlock()
	env.failDeploy = err
}

// WaitUntilReady implements l1connection.Client.
func (env *Solo) WaitUntilReady(ctx context.Context) error {
	return util.WaitUntil(ctx, func(context.Context) (util.WaitAction, error) {
		env.mutex.Lock()
		defer env.mutex.Unlock()
		env.stats.Requests++
		if env.ready {
			return util.WaitActionDone, nil
		}
		return util.WaitActionKeepWaiting, nil
	}, util.WaitOpts{RetryInterval: 10 * time.Millisecond, TimeoutMsg: "solo ledger not ready"})
}

// ChainID implements l1connection.Client.
func (env *Solo) ChainID(ctx context.Context) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env.mutex.Lock()
	defer env.mutex.Unlock()
	env.stats.Requests++
	return new(big.Int).Set(env.chainID), nil
}

// Close implements l1connection.Client.
func (env *Solo) Close() {}
