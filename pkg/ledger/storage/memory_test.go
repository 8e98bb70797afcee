package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nemonet1337/zaiLedger/pkg/ledger"
)

// TestMemoryStore は基本操作のテスト
func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	// 未保存キーはErrKeyNotFound
	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ledger.ErrKeyNotFound)

	// 保存と取得
	assert.NoError(t, store.Set(ctx, "stock_entries", []byte(`[]`)))
	value, err := store.Get(ctx, "stock_entries")
	assert.NoError(t, err)
	assert.Equal(t, []byte(`[]`), value)

	// 上書き
	assert.NoError(t, store.Set(ctx, "stock_entries", []byte(`[{"id":"a"}]`)))
	value, _ = store.Get(ctx, "stock_entries")
	assert.Equal(t, []byte(`[{"id":"a"}]`), value)

	// 削除後はErrKeyNotFound
	assert.NoError(t, store.Delete(ctx, "stock_entries"))
	_, err = store.Get(ctx, "stock_entries")
	assert.ErrorIs(t, err, ledger.ErrKeyNotFound)

	// 存在しないキーの削除はエラーにならない
	assert.NoError(t, store.Delete(ctx, "missing"))

	assert.NoError(t, store.Ping(ctx))
	assert.NoError(t, store.Close())
}

// TestMemoryStore_CopySemantics は呼び出し側の変更が漏れないテスト
func TestMemoryStore_CopySemantics(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	original := []byte(`{"currency":"INR"}`)
	assert.NoError(t, store.Set(ctx, "app_settings", original))

	// 保存後に呼び出し側のバッファを書き換えても影響しない
	original[2] = 'X'

	value, err := store.Get(ctx, "app_settings")
	assert.NoError(t, err)
	assert.Equal(t, []byte(`{"currency":"INR"}`), value)

	// 取得した値を書き換えても保存値は変わらない
	value[2] = 'Y'
	again, _ := store.Get(ctx, "app_settings")
	assert.Equal(t, []byte(`{"currency":"INR"}`), again)
}
