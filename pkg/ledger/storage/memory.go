package storage

import (
	"context"
	"sync"

	"github.com/nemonet1337/zaiLedger/pkg/ledger"
)

// MemoryStore implements the KVStore interface in process memory.
// Used by the examples and as a test double; contents vanish on exit.
// プロセスメモリ上のKVStoreインターフェース実装（終了時に内容は消える）
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// Interface compliance check
// インターフェース準拠チェック
var _ ledger.KVStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
// 空のインメモリストアを作成
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
	}
}

// Get returns a copy of the value stored under key
// キー配下の値のコピーを返す
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, ledger.ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores a copy of the value under key
// キー配下に値のコピーを保存
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.values[key] = stored
	return nil
}

// Delete removes the value under key
// キー配下の値を削除
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// Ping always succeeds
// 常に成功
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
// 何もしない
func (s *MemoryStore) Close() error {
	return nil
}
