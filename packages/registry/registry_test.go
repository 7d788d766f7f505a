package registry_test

import (
	"context"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/iotaledger/hive.go/kvstore/mapdb"
	"github.com/iotaledger/profilesharing/packages/registry"
)

var addrA = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

func TestFileStoreEmpty(t *testing.T) {
	store := registry.NewAddressStore(registry.NewFileBackend(filepath.Join(t.TempDir(), registry.DefaultPath)))
	d, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, d)

	_, err = store.Get(registry.KeyProfileSharing)
	require.ErrorIs(t, err, registry.ErrCacheMissingField)
}

func TestFileStoreSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", registry.DefaultPath)
	store := registry.NewAddressStore(registry.NewFileBackend(path))

	require.NoError(t, store.Save(context.Background(), registry.KeyProfileSharing, addrA))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Equal(t, map[string]string{registry.KeyProfileSharing: addrA.Hex()}, raw)

	got, err := store.Get(registry.KeyProfileSharing)
	require.NoError(t, err)
	require.Equal(t, addrA, got)

	// no temporary files are left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		require.NotContains(t, e.Name(), ".tmp")
	}
}

func TestSavePreservesOtherEntries(t *testing.T) {
	store := registry.NewAddressStore(registry.NewKVStoreBackend(mapdb.NewMapDB(), "addresses"))
	other := common.HexToAddress("0x00000000000000000000000000000000000000ff")
	require.NoError(t, store.Save(context.Background(), "other", other))
	require.NoError(t, store.Save(context.Background(), registry.KeyProfileSharing, addrA))

	d, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, registry.Deployments{"other": other, registry.KeyProfileSharing: addrA}, d)
	require.Equal(t, []registry.DeploymentRecord{
		{ContractName: "other", Address: other},
		{ContractName: registry.KeyProfileSharing, Address: addrA},
	}, d.Records())
}

func TestCorruptRecordIsPreserved(t *testing.T) {
	for name, content := range map[string]string{
		"not json":      "{not json",
		"not an object": `["0x5FbDB2315678afecb367f032d93F642f64180aa3"]`,
		"non-string":    `{"profileSharing": 42}`,
		"bad address":   `{"profileSharing": "0x1234"}`,
		"empty name":    `{"": "0x5FbDB2315678afecb367f032d93F642f64180aa3"}`,
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), registry.DefaultPath)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
			store := registry.NewAddressStore(registry.NewFileBackend(path))

			_, err := store.Load()
			require.ErrorIs(t, err, registry.ErrCacheCorrupt)
			_, err = store.Get(registry.KeyProfileSharing)
			require.ErrorIs(t, err, registry.ErrCacheCorrupt)
			err = store.Save(context.Background(), registry.KeyProfileSharing, addrA)
			require.ErrorIs(t, err, registry.ErrCacheCorrupt)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			require.Equal(t, content, string(data))
		})
	}
}

func TestConcurrentSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), registry.DefaultPath)
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	errs := make(chan error, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(name string, i int) {
			defer wg.Done()
			// a store per goroutine, as separate processes would have
			store := registry.NewAddressStore(registry.NewFileBackend(path))
			errs <- store.Save(context.Background(), name, common.BigToAddress(big.NewInt(int64(i+1))))
		}(name, i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	d, err := registry.NewAddressStore(registry.NewFileBackend(path)).Load()
	require.NoError(t, err)
	require.Len(t, d, len(names))
}

func TestSaveIfAbsentKeepsFirstEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), registry.DefaultPath)
	first := registry.NewAddressStore(registry.NewFileBackend(path))
	second := registry.NewAddressStore(registry.NewFileBackend(path))
	addrB := common.HexToAddress("0x00000000000000000000000000000000000000bb")

	// both stores saw an empty record before either wrote
	d, err := second.Load()
	require.NoError(t, err)
	require.Empty(t, d)

	got, stored, err := first.SaveIfAbsent(context.Background(), registry.KeyProfileSharing, addrA)
	require.NoError(t, err)
	require.True(t, stored)
	require.Equal(t, addrA, got)

	got, stored, err = second.SaveIfAbsent(context.Background(), registry.KeyProfileSharing, addrB)
	require.NoError(t, err)
	require.False(t, stored)
	require.Equal(t, addrA, got)

	cached, err := second.Get(registry.KeyProfileSharing)
	require.NoError(t, err)
	require.Equal(t, addrA, cached)
}

func TestSaveIfAbsentConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), registry.DefaultPath)
	const n = 8
	type result struct {
		addr   common.Address
		stored bool
		err    error
	}
	results := make(chan result, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store := registry.NewAddressStore(registry.NewFileBackend(path))
			addr, stored, err := store.SaveIfAbsent(context.Background(), registry.KeyProfileSharing, common.BigToAddress(big.NewInt(int64(i+1))))
			results <- result{addr, stored, err}
		}(i)
	}
	wg.Wait()
	close(results)

	cached, err := registry.NewAddressStore(registry.NewFileBackend(path)).Get(registry.KeyProfileSharing)
	require.NoError(t, err)
	storedCount := 0
	for r := range results {
		require.NoError(t, r.err)
		require.Equal(t, cached, r.addr)
		if r.stored {
			storedCount++
		}
	}
	require.Equal(t, 1, storedCount)
}

func TestCanceledLock(t *testing.T) {
	store := registry.NewAddressStore(registry.NewKVStoreBackend(mapdb.NewMapDB(), "addresses"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, store.Save(ctx, registry.KeyProfileSharing, addrA))
}

func TestRoundTripRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		store := registry.NewAddressStore(registry.NewKVStoreBackend(mapdb.NewMapDB(), "addresses"))
		want := registry.Deployments{}
		n := rapid.IntRange(1, 5).Draw(t, "n")
		for i := 0; i < n; i++ {
			name := rapid.StringMatching(`[a-zA-Z][a-zA-Z0-9]{0,15}`).Draw(t, "name")
			addr := common.BytesToAddress(rapid.SliceOfN(rapid.Byte(), 20, 20).Draw(t, "addr"))
			require.NoError(t, store.Save(context.Background(), name, addr))
			want[name] = addr
		}
		got, err := store.Load()
		require.NoError(t, err)
		require.Equal(t, want, got)
	})
}
