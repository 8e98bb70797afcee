package ledger

import (
	"errors"
	"fmt"
)

// Common ledger errors
// 共通の台帳エラー定義

var (
	// ErrKeyNotFound is returned by a KVStore when a key has no value
	// キーに値が存在しない場合のエラー
	ErrKeyNotFound = errors.New("キーが見つかりません")

	// ErrEventNotFound is returned when an event ID doesn't exist in the log
	// イベントIDがログに存在しない場合のエラー
	ErrEventNotFound = errors.New("イベントが見つかりません")

	// ErrDuplicateStockEntry is returned when a stock entry with the same
	// product and date already exists
	// 同一商品・同一日付の入庫記録が既に存在する場合のエラー
	ErrDuplicateStockEntry = errors.New("同じ商品と日付の入庫記録は既に存在します")

	// ErrNothingToUndo is returned when the undo log is empty
	// 取り消しログが空の場合のエラー
	ErrNothingToUndo = errors.New("取り消せる削除がありません")

	// ErrProductExists is returned when adding a product option that already exists
	// 既に存在する商品を追加しようとした場合のエラー
	ErrProductExists = errors.New("商品は既に存在します")

	// ErrEmptyProductName is returned when a product name is blank
	// 商品名が空の場合のエラー
	ErrEmptyProductName = errors.New("商品名を入力してください")
)

// ValidationError represents a validation error with details
// 詳細付きバリデーションエラーを表現
type ValidationError struct {
	Field   string `json:"field"`   // エラーフィールド
	Message string `json:"message"` // エラーメッセージ
	Value   string `json:"value"`   // 無効な値
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("バリデーションエラー [%s]: %s (値: %s)", e.Field, e.Message, e.Value)
}

// InsufficientStockError is returned when a sale requests more than is available.
// It carries the computed available quantity for user display.
// 販売数量が利用可能数量を超えた場合のエラー（表示用に利用可能数量を保持）
type InsufficientStockError struct {
	ProductName string  `json:"productName"` // 商品名
	Requested   float64 `json:"requested"`   // 要求数量
	Available   float64 `json:"available"`   // 利用可能数量
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("在庫不足 [%s]: 要求数量 %g に対して利用可能数量は %g です", e.ProductName, e.Requested, e.Available)
}

// StorageError represents a storage layer error
// ストレージ層のエラーを表現
type StorageError struct {
	Operation string `json:"operation"` // 操作名
	Message   string `json:"message"`   // エラーメッセージ
	Cause     error  `json:"cause"`     // 原因エラー
}

func (e StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ストレージエラー [%s]: %s (原因: %v)", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("ストレージエラー [%s]: %s", e.Operation, e.Message)
}

func (e StorageError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
// 新しいバリデーションエラーを作成
func NewValidationError(field, message, value string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// NewInsufficientStockError creates a new insufficient stock error
// 新しい在庫不足エラーを作成
func NewInsufficientStockError(productName string, requested, available float64) *InsufficientStockError {
	return &InsufficientStockError{
		ProductName: productName,
		Requested:   requested,
		Available:   available,
	}
}

// NewStorageError creates a new storage error
// 新しいストレージエラーを作成
func NewStorageError(operation, message string, cause error) *StorageError {
	return &StorageError{
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}
