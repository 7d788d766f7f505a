// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package solo

import (
	"bytes"
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/profilesharing/packages/isc"
	"github.com/iotaledger/profilesharing/packages/isc/coreutil"
)

const (
	txGas            = 21_000
	txCreationGas    = 53_000
	txDataGasPerByte = 16
	blockGasLimit    = 30_000_000
)

var ErrNotSupported = ierrors.New("not supported by the solo ledger")

type receiptEntry struct {
	receipt *types.Receipt
}

func intrinsicGas(data []byte, isCreation bool) uint64 {
	gas := uint64(txGas)
	if isCreation {
		gas = txCreationGas
	}
	return gas + uint64(len(data))*txDataGasPerByte
}

// CodeAt implements bind.ContractCaller.
func (env *Solo) CodeAt(_ context.Context, contract common.Address, _ *big.Int) ([]byte, error) {
	env.mutex.Lock()
	defer env.mutex.Unlock()
	env.stats.Requests++
	return bytes.Clone(env.code[contract]), nil
}

// PendingCodeAt implements bind.ContractTransactor.
func (env *Solo) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return env.CodeAt(ctx, account, nil)
}

// CallContract implements bind.ContractCaller. The call runs against the
// latest state and all of its mutations are dropped.
func (env *Solo) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	env.mutex.Lock()
	defer env.mutex.Unlock()
	env.stats.Requests++
	env.stats.Calls++
	if call.To == nil {
		return nil, ierrors.New("call without target contract")
	}
	if _, ok := env.contracts[*call.To]; !ok {
		// like calling an account without code: empty result
		return nil, nil
	}
	out, _, err := env.runCall(call.From, *call.To, call.Data)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PendingCallContract implements bind.PendingContractCaller.
func (env *Solo) PendingCallContract(ctx context.Context, call ethereum.CallMsg) ([]byte, error) {
	return env.CallContract(ctx, call, nil)
}

// HeaderByNumber implements bind.ContractTransactor. The header carries no
// base fee, so transactors fall back to legacy gas pricing.
func (env *Solo) HeaderByNumber(_ context.Context, _ *big.Int) (*types.Header, error) {
	env.mutex.Lock()
	defer env.mutex.Unlock()
	env.stats.Requests++
	return &types.Header{
		Number:     new(big.Int).SetUint64(env.blockNumber),
		Time:       uint64(env.blockTime.Unix()),
		GasLimit:   blockGasLimit,
		Difficulty: new(big.Int),
	}, nil
}

// PendingNonceAt implements bind.ContractTransactor.
func (env *Solo) PendingNonceAt(_ context.Context, account common.Address) (uint64, error) {
	env.mutex.Lock()
	defer env.mutex.Unlock()
	env.stats.Requests++
	return env.nonces[account], nil
}

// SuggestGasPrice implements bind.ContractTransactor.
func (env *Solo) SuggestGasPrice(context.Context) (*big.Int, error) {
	env.mutex.Lock()
	defer env.mutex.Unlock()
	env.stats.Requests++
	return big.NewInt(GasPrice), nil
}

// SuggestGasTipCap implements bind.ContractTransactor.
func (env *Solo) SuggestGasTipCap(context.Context) (*big.Int, error) {
	env.mutex.Lock()
	defer env.mutex.Unlock()
	env.stats.Requests++
	return new(big.Int), nil
}

// EstimateGas implements bind.ContractTransactor. Calls into contracts are
// executed so that rejections surface before a transaction is signed.
func (env *Solo) EstimateGas(_ context.Context, call ethereum.CallMsg) (uint64, error) {
	env.mutex.Lock()
	defer env.mutex.Unlock()
	env.stats.Requests++
	if call.To == nil {
		if env.programFor(call.Data) == nil {
			return 0, isc.NewVMError("no native program matches the creation code")
		}
		return intrinsicGas(call.Data, true), nil
	}
	if _, ok := env.contracts[*call.To]; ok {
		if _, _, err := env.runCall(call.From, *call.To, call.Data); err != nil {
			return 0, err
		}
	}
	return intrinsicGas(call.Data, false), nil
}

// SendTransaction implements bind.ContractTransactor. Accepted transactions
// are mined into their own block before SendTransaction returns.
func (env *Solo) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env.mutex.Lock()
	defer env.mutex.Unlock()
	env.stats.Requests++

	sender, err := types.Sender(types.LatestSignerForChainID(env.chainID), tx)
	if err != nil {
		return ierrors.Wrap(err, "invalid transaction signature")
	}
	if _, known := env.receipts[tx.Hash()]; known {
		return ierrors.Errorf("already known: %s", tx.Hash().Hex())
	}
	nonce := env.nonces[sender]
	if tx.Nonce() < nonce {
		return ierrors.Errorf("nonce too low: address %s, tx: %d state: %d", sender.Hex(), tx.Nonce(), nonce)
	}
	if tx.Nonce() > nonce {
		return ierrors.Errorf("nonce too high: address %s, tx: %d state: %d", sender.Hex(), tx.Nonce(), nonce)
	}
	isCreation := tx.To() == nil
	gas := intrinsicGas(tx.Data(), isCreation)
	if tx.Gas() < gas {
		return ierrors.Errorf("intrinsic gas too low: have %d, want %d", tx.Gas(), gas)
	}
	balance := env.balanceOf(sender)
	if balance.Cmp(tx.Cost()) < 0 {
		return ierrors.Errorf("insufficient funds for gas * price + value: address %s have %v want %v", sender.Hex(), balance, tx.Cost())
	}
	if isCreation && env.failDeploy != nil {
		err := env.failDeploy
		env.failDeploy = nil
		return err
	}

	env.nonces[sender] = nonce + 1
	env.blockNumber++
	env.blockTime = time.Now()
	env.stats.Transactions++

	fee := new(big.Int).Mul(new(big.Int).SetUint64(gas), tx.GasPrice())
	balance.Sub(balance, fee)

	receipt := &types.Receipt{
		Type:              tx.Type(),
		Status:            types.ReceiptStatusSuccessful,
		CumulativeGasUsed: gas,
		Logs:              []*types.Log{},
		TxHash:            tx.Hash(),
		GasUsed:           gas,
		EffectiveGasPrice: tx.GasPrice(),
		BlockHash:         crypto.Keccak256Hash(tx.Hash().Bytes(), new(big.Int).SetUint64(env.blockNumber).Bytes()),
		BlockNumber:       new(big.Int).SetUint64(env.blockNumber),
		TransactionIndex:  0,
	}

	if isCreation {
		env.deploy(sender, nonce, tx, receipt)
	} else {
		env.execute(sender, tx, receipt)
	}
	env.receipts[tx.Hash()] = &receiptEntry{receipt: receipt}
	return nil
}

// TransactionReceipt implements bind.DeployBackend.
func (env *Solo) TransactionReceipt(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	env.mutex.Lock()
	defer env.mutex.Unlock()
	env.stats.Requests++
	entry, ok := env.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return entry.receipt, nil
}

// FilterLogs implements bind.ContractFilterer. Native contracts emit no logs.
func (env *Solo) FilterLogs(context.Context, ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

// SubscribeFilterLogs implements bind.ContractFilterer.
func (env *Solo) SubscribeFilterLogs(context.Context, ethereum.FilterQuery, chan<- types.Log) (ethereum.Subscription, error) {
	return nil, ErrNotSupported
}

func (env *Solo) programFor(code []byte) *coreutil.ContractProcessor {
	for _, p := range env.processors {
		if program := p.Contract.Program(); len(program) > 0 && bytes.HasPrefix(code, program) {
			return p
		}
	}
	return nil
}

func (env *Solo) deploy(sender common.Address, nonce uint64, tx *types.Transaction, receipt *types.Receipt) {
	proc := env.programFor(tx.Data())
	if proc == nil {
		env.logger.LogWarnf("deployment %s from %s: no native program matches the creation code", tx.Hash().Hex(), sender.Hex())
		receipt.Status = types.ReceiptStatusFailed
		return
	}
	addr := crypto.CreateAddress(sender, nonce)
	env.stats.Deployments++
	receipt.ContractAddress = addr
	runtime := proc.Contract.Artifact.DeployedBytecode
	if len(runtime) == 0 {
		// creation code that returns no runtime code leaves an empty account
		env.logger.LogWarnf("deployment %s from %s: %s has no runtime code", tx.Hash().Hex(), sender.Hex(), proc.Contract.Name)
		return
	}
	env.contracts[addr] = proc
	env.code[addr] = bytes.Clone(runtime)
	env.logger.LogInfof("deployed %s at %s by %s (block #%d)", proc.Contract.Name, addr.Hex(), sender.Hex(), env.blockNumber)
}

func (env *Solo) execute(sender common.Address, tx *types.Transaction, receipt *types.Receipt) {
	to := *tx.To()
	if value := tx.Value(); value.Sign() > 0 {
		env.balanceOf(sender).Sub(env.balanceOf(sender), value)
		env.balanceOf(to).Add(env.balanceOf(to), value)
	}
	if _, ok := env.contracts[to]; !ok {
		return
	}
	_, state, err := env.runCall(sender, to, tx.Data())
	if err == nil {
		err = state.commit()
	}
	if err != nil {
		env.logger.LogDebugf("transaction %s failed: %v", tx.Hash().Hex(), err)
		receipt.Status = types.ReceiptStatusFailed
	}
}

// runCall executes a call of a contract. The mutations are returned in the
// buffered state and are not committed.
func (env *Solo) runCall(caller, contract common.Address, data []byte) (ret []byte, state *bufferedState, err error) {
	proc := env.contracts[contract]
	contractABI := proc.Contract.ABI()
	if len(data) < 4 {
		return nil, nil, isc.NewVMError("missing method selector")
	}
	method, err := contractABI.MethodById(data[:4])
	if err != nil {
		return nil, nil, isc.NewVMError("unknown method selector %x", data[:4])
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, isc.NewVMError("%s: invalid arguments: %v", method.Name, err)
	}
	ep, ok := proc.GetEntryPoint(method.Name)
	if !ok {
		return nil, nil, isc.NewVMError("%s: entry point not implemented", method.Name)
	}

	state = newBufferedState(env.db, contract)
	ctx := &sandbox{
		caller:      caller,
		contract:    contract,
		blockNumber: env.blockNumber,
		state:       state,
		log:         env.logger,
	}
	results, err := callEntryPoint(ep, ctx, args)
	if err != nil {
		return nil, nil, isc.AsVMError(err)
	}
	ret, err = method.Outputs.Pack(results...)
	if err != nil {
		return nil, nil, isc.NewVMError("%s: cannot encode results: %v", method.Name, err)
	}
	return ret, state, nil
}

func callEntryPoint(ep isc.VMProcessorEntryPoint, ctx isc.Sandbox, args []any) (results []any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = isc.NewVMError("panic in contract: %v", r)
		}
	}()
	return ep.Call(ctx, args)
}
