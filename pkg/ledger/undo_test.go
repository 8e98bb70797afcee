package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestUndoLog_LIFO は後入れ先出しの復元順序テスト
func TestUndoLog_LIFO(t *testing.T) {
	log := NewUndoLog[string](5)

	log.Push("first")
	log.Push("second")
	assert.Equal(t, 2, log.Len())

	entry, err := log.Pop()
	assert.NoError(t, err)
	assert.Equal(t, "second", entry)

	entry, err = log.Pop()
	assert.NoError(t, err)
	assert.Equal(t, "first", entry)

	// 空になったらエラー
	_, err = log.Pop()
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

// TestUndoLog_Bounded は容量超過時に最古を破棄するテスト
func TestUndoLog_Bounded(t *testing.T) {
	log := NewUndoLog[int](3)

	for i := 1; i <= 5; i++ {
		log.Push(i)
	}
	assert.Equal(t, 3, log.Len())

	// 最新の3件だけ残る
	for _, want := range []int{5, 4, 3} {
		entry, err := log.Pop()
		assert.NoError(t, err)
		assert.Equal(t, want, entry)
	}
	_, err := log.Pop()
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

// TestNewUndoLog_DefaultCapacity は不正容量が既定値になるテスト
func TestNewUndoLog_DefaultCapacity(t *testing.T) {
	log := NewUndoLog[int](0)

	for i := 0; i < DefaultUndoDepth+5; i++ {
		log.Push(i)
	}
	assert.Equal(t, DefaultUndoDepth, log.Len())
}
