package ledger

import "sync"

// DefaultUndoDepth is the undo log capacity when none is configured
// 未設定時の取り消しログ容量
const DefaultUndoDepth = 10

// UndoLog is a bounded LIFO of deleted events awaiting restore.
// When full, the oldest entry is discarded.
// 復元待ちの削除済みイベントを保持する容量制限付きLIFO（満杯時は最古を破棄）
type UndoLog[T any] struct {
	mu       sync.Mutex
	entries  []T
	capacity int
}

// NewUndoLog creates an undo log with the given capacity
// 指定容量の取り消しログを作成
func NewUndoLog[T any](capacity int) *UndoLog[T] {
	if capacity <= 0 {
		capacity = DefaultUndoDepth
	}
	return &UndoLog[T]{capacity: capacity}
}

// Push records a deletion, discarding the oldest entry when full
// 削除を記録（満杯時は最古のエントリを破棄）
func (l *UndoLog[T]) Push(entry T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) >= l.capacity {
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, entry)
}

// Pop removes and returns the most recent deletion
// 直近の削除を取り出して返す
func (l *UndoLog[T]) Pop() (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var zero T
	if len(l.entries) == 0 {
		return zero, ErrNothingToUndo
	}
	last := l.entries[len(l.entries)-1]
	l.entries = l.entries[:len(l.entries)-1]
	return last, nil
}

// Len returns the number of restorable deletions
// 復元可能な削除の件数を返す
func (l *UndoLog[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
