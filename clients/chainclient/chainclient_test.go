package chainclient_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/profilesharing/clients/chainclient"
	"github.com/iotaledger/profilesharing/contracts/native/profilesharing"
	"github.com/iotaledger/profilesharing/packages/l1connection"
	"github.com/iotaledger/profilesharing/packages/solo"
)

func TestPostRequestAndCallView(t *testing.T) {
	env := solo.New(t)
	ctx := context.Background()
	owner := env.NewKeyPairFromIndex(0)
	addr, _, err := l1connection.Deploy(ctx, env, owner, profilesharing.Artifact)
	require.NoError(t, err)
	contract := bind.NewBoundContract(addr, profilesharing.Artifact.ABI, env, env, env)

	client, err := chainclient.NewFromLedger(ctx, env, owner)
	require.NoError(t, err)

	tx, err := client.PostRequest(ctx, contract, profilesharing.MethodCreateProfile,
		[]any{big.NewInt(1), big.NewInt(2), uint8(3), big.NewInt(4)})
	require.NoError(t, err)
	receipt, err := client.WaitUntilRequestProcessed(ctx, tx, time.Second)
	require.NoError(t, err)
	require.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)

	out, err := client.CallView(ctx, contract, profilesharing.MethodGetProfile, []any{owner.Address()})
	require.NoError(t, err)
	require.EqualValues(t, 4, out[3].(*big.Int).Int64())
}

func TestFailedTransactionIsReported(t *testing.T) {
	env := solo.New(t)
	ctx := context.Background()
	owner := env.NewKeyPairFromIndex(0)
	addr, _, err := l1connection.Deploy(ctx, env, owner, profilesharing.Artifact)
	require.NoError(t, err)
	contract := bind.NewBoundContract(addr, profilesharing.Artifact.ABI, env, env, env)
	client := chainclient.New(env, big.NewInt(solo.DefaultChainID), owner)

	// an explicit gas limit skips estimation, so the rejection happens in the block
	params := chainclient.NewPostRequestParams().WithGasLimit(1_000_000)
	tx, err := client.PostRequest(ctx, contract, profilesharing.MethodShareProfile,
		[]any{owner.Address(), big.NewInt(1), big.NewInt(2), uint8(3), big.NewInt(4)}, *params)
	require.NoError(t, err)
	receipt, err := client.WaitUntilRequestProcessed(ctx, tx, time.Second)
	require.ErrorIs(t, err, l1connection.ErrTxFailed)
	require.Equal(t, types.ReceiptStatusFailed, receipt.Status)
}
