// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/kvstore"
)

const lockRetryDelay = 50 * time.Millisecond

// FileBackend keeps the record in a JSON file. Writers hold an advisory lock
// on a sibling .lock file, so concurrent processes cannot lose updates.
type FileBackend struct {
	path string
	lock *flock.Flock
}

var _ Backend = &FileBackend{}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Read() ([]byte, bool, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if ierrors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Write replaces the file atomically: the record is written to a temporary
// file in the same directory and renamed over the old one.
func (b *FileBackend) Write(data []byte) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, b.path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

func (b *FileBackend) Lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return nil, err
	}
	locked, err := b.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, ierrors.Wrapf(err, "lock %s", b.lock.Path())
	}
	if !locked {
		return nil, ierrors.Errorf("lock %s: not acquired", b.lock.Path())
	}
	return func() { _ = b.lock.Unlock() }, nil
}

// KVStoreBackend keeps the record under a single key of a hive.go KVStore.
type KVStoreBackend struct {
	mutex sync.Mutex
	store kvstore.KVStore
	key   []byte
}

var _ Backend = &KVStoreBackend{}

func NewKVStoreBackend(store kvstore.KVStore, key string) *KVStoreBackend {
	return &KVStoreBackend{store: store, key: []byte(key)}
}

func (b *KVStoreBackend) Read() ([]byte, bool, error) {
	data, err := b.store.Get(b.key)
	if err != nil {
		if ierrors.Is(err, kvstore.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (b *KVStoreBackend) Write(data []byte) error {
	if err := b.store.Set(b.key, data); err != nil {
		return err
	}
	return b.store.Flush()
}

func (b *KVStoreBackend) Lock(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mutex.Lock()
	return b.mutex.Unlock, nil
}
