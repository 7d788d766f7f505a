package isc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iotaledger/hive.go/ierrors"
)

func TestNewVMError(t *testing.T) {
	err := NewVMError("profile of %s not found", "0x01")
	require.Equal(t, "profile of 0x01 not found", err.Reason)
	require.Equal(t, "execution reverted: profile of 0x01 not found", err.Error())
	require.Equal(t, 3, err.ErrorCode())
	require.Equal(t, err.Reason, err.ErrorData())
}

func TestAsVMError(t *testing.T) {
	vmErr := NewVMError("cannot share with yourself")
	wrapped := ierrors.Wrap(vmErr, "share_profile")
	require.Same(t, vmErr, AsVMError(wrapped))

	other := AsVMError(ierrors.New("decoding failed"))
	require.Equal(t, "decoding failed", other.Reason)
}
