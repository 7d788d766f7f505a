package l1connection_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/profilesharing/contracts/native/profilesharing"
	"github.com/iotaledger/profilesharing/packages/l1connection"
	"github.com/iotaledger/profilesharing/packages/solo"
	"github.com/iotaledger/profilesharing/packages/testutil/testlogger"
	"github.com/iotaledger/profilesharing/packages/util"
)

func TestResolveURL(t *testing.T) {
	t.Setenv(l1connection.EnvURL, "")
	require.Equal(t, l1connection.DefaultURL, l1connection.Config{}.ResolveURL())
	require.Equal(t, "http://node:8545", l1connection.Config{URL: "http://node:8545"}.ResolveURL())

	t.Setenv(l1connection.EnvURL, "http://override:8545")
	require.Equal(t, "http://override:8545", l1connection.Config{URL: "http://node:8545"}.ResolveURL())
}

func TestWaitUntilReadyTimesOut(t *testing.T) {
	t.Setenv(l1connection.EnvURL, "")
	// nothing listens on port 1
	client, err := l1connection.NewClient(context.Background(), l1connection.Config{URL: "http://127.0.0.1:1"}, testlogger.NewLogger(t))
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err = client.WaitUntilReady(ctx)
	require.ErrorIs(t, err, l1connection.ErrNotConnected)
	require.ErrorIs(t, err, util.ErrTimeout)
	// the dial failure of the last attempt is reported, not only the deadline
	require.ErrorContains(t, err, "connection refused")
}

func TestDeployAndConfirm(t *testing.T) {
	env := solo.New(t)
	deployer := env.NewKeyPairFromIndex(0)

	addr, receipt, err := l1connection.Deploy(context.Background(), env, deployer, profilesharing.Artifact)
	require.NoError(t, err)
	require.Equal(t, addr, receipt.ContractAddress)

	code, err := env.CodeAt(context.Background(), addr, nil)
	require.NoError(t, err)
	require.Equal(t, profilesharing.Artifact.DeployedBytecode, code)
}
