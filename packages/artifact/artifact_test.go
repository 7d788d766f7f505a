package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleABI = `[{"type":"function","name":"get_profile","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"age","type":"uint8"}]}]`

func TestParsePlainHex(t *testing.T) {
	a, err := Parse([]byte(`{"contractName":"ProfileSharing","version":"1","abi":` + sampleABI + `,"bytecode":"0x6001","deployedBytecode":"6002"}`))
	require.NoError(t, err)
	require.Equal(t, "ProfileSharing", a.ContractName)
	require.Equal(t, "ProfileSharing@1", a.String())
	require.Equal(t, []byte{0x60, 0x01}, a.Bytecode)
	require.Equal(t, []byte{0x60, 0x02}, a.DeployedBytecode)
	require.NotZero(t, a.CodeHash())
	require.Empty(t, a.MissingMethods("get_profile"))
	require.Equal(t, []string{"create_profile"}, a.MissingMethods("get_profile", "create_profile"))
}

func TestParseObjectBytecode(t *testing.T) {
	a, err := Parse([]byte(`{"name":"ProfileSharing","abi":` + sampleABI + `,"bytecode":{"object":"0x6001"}}`))
	require.NoError(t, err)
	require.Equal(t, "ProfileSharing", a.ContractName)
	require.Empty(t, a.DeployedBytecode)
	require.Zero(t, a.CodeHash())
}

func TestParseFailures(t *testing.T) {
	cases := map[string]string{
		"not json":          `{`,
		"no name":           `{"abi":` + sampleABI + `,"bytecode":"0x60"}`,
		"no abi":            `{"contractName":"X","bytecode":"0x60"}`,
		"bad abi":           `{"contractName":"X","abi":[{"type":"function","inputs":[{"type":"nope"}]}],"bytecode":"0x60"}`,
		"empty bytecode":    `{"contractName":"X","abi":` + sampleABI + `,"bytecode":"0x"}`,
		"bad bytecode":      `{"contractName":"X","abi":` + sampleABI + `,"bytecode":"0xzz"}`,
		"bad bytecode type": `{"contractName":"X","abi":` + sampleABI + `,"bytecode":12}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.ErrorIs(t, err, ErrInvalidArtifact)
		})
	}
}

func TestLoad(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, ErrInvalidArtifact)

	path := filepath.Join(t.TempDir(), "ProfileSharing.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"contractName":"ProfileSharing","abi":`+sampleABI+`,"bytecode":"0x6001"}`), 0o600))
	a, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "ProfileSharing", a.ContractName)
}
