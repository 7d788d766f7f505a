package solo_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/profilesharing/contracts/native/profilesharing"
	"github.com/iotaledger/profilesharing/packages/isc"
	"github.com/iotaledger/profilesharing/packages/l1connection"
	"github.com/iotaledger/profilesharing/packages/solo"
)

func TestSoloBasic(t *testing.T) {
	env := solo.New(t)
	ctx := context.Background()

	chainID, err := env.ChainID(ctx)
	require.NoError(t, err)
	require.EqualValues(t, solo.DefaultChainID, chainID.Int64())
	require.NoError(t, env.WaitUntilReady(ctx))

	owner := env.NewKeyPairFromIndex(0)
	require.Equal(t, solo.FundsFromFaucetAmount, env.Balance(owner.Address()))
	require.Empty(t, env.Contracts())
}

func TestSoloDeploy(t *testing.T) {
	env := solo.New(t)
	ctx := context.Background()
	owner := env.NewKeyPairFromIndex(0)

	addr, receipt, err := l1connection.Deploy(ctx, env, owner, profilesharing.Artifact)
	require.NoError(t, err)
	require.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	require.Equal(t, crypto.CreateAddress(owner.Address(), 0), addr)

	code, err := env.CodeAt(ctx, addr, nil)
	require.NoError(t, err)
	require.Equal(t, profilesharing.Artifact.DeployedBytecode, code)

	proc, ok := env.ContractAt(addr)
	require.True(t, ok)
	require.Equal(t, profilesharing.Contract.Name, proc.Contract.Name)
	require.Equal(t, 1, env.Stats().Deployments)
	require.Less(t, env.Balance(owner.Address()).Cmp(solo.FundsFromFaucetAmount), 0)

	nonce, err := env.PendingNonceAt(ctx, owner.Address())
	require.NoError(t, err)
	require.EqualValues(t, 1, nonce)
}

func TestSoloDeployUnknownProgram(t *testing.T) {
	env := solo.New(t)
	ctx := context.Background()
	owner := env.NewKeyPairFromIndex(0)

	unknown := *profilesharing.Artifact
	unknown.Bytecode = []byte("not a native program")

	_, err := env.EstimateGas(ctx, ethereum.CallMsg{From: owner.Address(), Data: unknown.Bytecode})
	require.Error(t, err)

	_, _, err = l1connection.Deploy(ctx, env, owner, &unknown)
	require.Error(t, err)
	require.Zero(t, env.Stats().Deployments)
}

func TestSoloFailNextDeploy(t *testing.T) {
	env := solo.New(t)
	ctx := context.Background()
	owner := env.NewKeyPairFromIndex(0)

	injected := ierrors.New("injected")
	env.FailNextDeploy(injected)
	_, _, err := l1connection.Deploy(ctx, env, owner, profilesharing.Artifact)
	require.ErrorIs(t, err, injected)
	require.Empty(t, env.Contracts())

	// only the next deployment fails
	_, _, err = l1connection.Deploy(ctx, env, owner, profilesharing.Artifact)
	require.NoError(t, err)
	require.Len(t, env.Contracts(), 1)
}

func TestSoloCallsAndTransactions(t *testing.T) {
	env := solo.New(t)
	ctx := context.Background()
	owner := env.NewKeyPairFromIndex(0)
	addr, _, err := l1connection.Deploy(ctx, env, owner, profilesharing.Artifact)
	require.NoError(t, err)

	contract := bind.NewBoundContract(addr, profilesharing.Artifact.ABI, env, env, env)
	opts, err := owner.TransactOpts(big.NewInt(solo.DefaultChainID))
	require.NoError(t, err)

	// nothing stored yet: the view reverts
	var out []any
	err = contract.Call(&bind.CallOpts{From: owner.Address()}, &out, profilesharing.MethodGetProfile, owner.Address())
	require.Error(t, err)
	var vmErr *isc.VMError
	require.True(t, errors.As(err, &vmErr))
	require.Equal(t, "profile not found", vmErr.Reason)

	tx, err := contract.Transact(opts, profilesharing.MethodCreateProfile, big.NewInt(1), big.NewInt(2), uint8(3), big.NewInt(4))
	require.NoError(t, err)
	receipt, err := l1connection.WaitUntilConfirmed(ctx, env, tx)
	require.NoError(t, err)
	require.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)

	out = nil
	err = contract.Call(&bind.CallOpts{From: owner.Address()}, &out, profilesharing.MethodGetProfile, owner.Address())
	require.NoError(t, err)
	require.Len(t, out, 4)
	require.EqualValues(t, 1, out[0].(*big.Int).Int64())
	require.EqualValues(t, 2, out[1].(*big.Int).Int64())
	require.EqualValues(t, 3, out[2].(uint8))
	require.EqualValues(t, 4, out[3].(*big.Int).Int64())
}

func TestSoloRejectsStaleNonce(t *testing.T) {
	env := solo.New(t)
	ctx := context.Background()
	owner := env.NewKeyPairFromIndex(0)
	_, receipt, err := l1connection.Deploy(ctx, env, owner, profilesharing.Artifact)
	require.NoError(t, err)

	tx := types.NewContractCreation(0, new(big.Int), 1_000_000, big.NewInt(solo.GasPrice), profilesharing.Artifact.Bytecode)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(big.NewInt(solo.DefaultChainID)), owner.PrivateKey())
	require.NoError(t, err)
	require.NotEqual(t, receipt.TxHash, signed.Hash())
	require.Error(t, env.SendTransaction(ctx, signed))
}

func TestSoloUnknownReceipt(t *testing.T) {
	env := solo.New(t)
	_, err := env.TransactionReceipt(context.Background(), crypto.Keccak256Hash([]byte("nothing")))
	require.ErrorIs(t, err, ethereum.NotFound)
}

func TestSoloNotReady(t *testing.T) {
	env := solo.New(t)
	env.SetReady(false)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.Error(t, env.WaitUntilReady(ctx))
}

func TestSoloCallWithoutContract(t *testing.T) {
	env := solo.New(t)
	owner := env.NewKeyPairWithFunds()
	to := env.NewKeyPairWithFunds().Address()
	ret, err := env.CallContract(context.Background(), ethereum.CallMsg{From: owner.Address(), To: &to}, nil)
	require.NoError(t, err)
	require.Empty(t, ret)

	_, err = env.CallContract(context.Background(), ethereum.CallMsg{From: owner.Address()}, nil)
	require.Error(t, err)
}
