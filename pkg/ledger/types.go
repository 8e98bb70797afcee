// Package ledger provides the inventory/sales valuation and reconciliation core
package ledger

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar date format used by all events (no time component)
// すべてのイベントで使用するカレンダー日付形式（時刻なし）
const DateLayout = "2006-01-02"

// StockEvent represents a purchase/intake record increasing available quantity
// 入庫記録（利用可能数量を増やす仕入れ記録）を表現
type StockEvent struct {
	ID          string `json:"id,omitempty"`    // イベントID（安定識別子）
	ProductName string `json:"productName"`     // 商品名（大文字小文字を区別するキー）
	Quantity    Number `json:"quantity"`        // 数量（> 0）
	Price       Number `json:"price"`           // 単価（>= 0）
	Date        string `json:"date"`            // 日付（YYYY-MM-DD）
	TotalPrice  Number `json:"totalPrice"`      // 合計金額（数量 × 単価、常に再計算）
}

// SaleEvent represents a disposal record decreasing available quantity
// 出庫記録（利用可能数量を減らす販売記録）を表現
type SaleEvent struct {
	ID           string `json:"id,omitempty"`           // イベントID（安定識別子）
	ProductName  string `json:"productName"`            // 商品名
	Quantity     Number `json:"quantity"`               // 数量（> 0）
	Price        Number `json:"price"`                  // 販売単価
	Date         string `json:"date"`                   // 日付（YYYY-MM-DD）
	TotalPrice   Number `json:"totalPrice"`             // 合計金額（数量 × 単価、常に再計算）
	CustomerName string `json:"customerName,omitempty"` // 顧客名（任意、キーとしての役割なし）
}

// CatalogItem represents an entry of the separate product catalog
// 独立した商品カタログのエントリを表現（名前の文字列一致でのみ結合される）
type CatalogItem struct {
	Name     string `json:"name"`     // 商品名
	Category string `json:"category"` // カテゴリ
	Unit     string `json:"unit"`     // 単位
}

// Settings holds user-facing application settings
// ユーザー向けアプリケーション設定を保持
type Settings struct {
	Currency    string          `json:"currency"`    // 通貨表示
	DefaultUnit string          `json:"defaultUnit"` // デフォルト単位
	AdminAccess map[string]bool `json:"adminAccess"` // 管理機能へのアクセス権
}

// DefaultProductOptions is the seed product list used when none has been saved
// 保存された商品リストがない場合に使用する初期商品リスト
var DefaultProductOptions = []string{"Rasam Powder", "Sambar Powder", "Chilli Powder"}

// DefaultSettings returns the central default settings
// 既定のアプリケーション設定を返す
func DefaultSettings() Settings {
	return Settings{
		Currency:    "₹ INR",
		DefaultUnit: "kg",
		AdminAccess: map[string]bool{
			"reports":           true,
			"analytics":         true,
			"productManagement": true,
		},
	}
}

// NewEventID generates a new stable event identifier
// 新しい安定イベント識別子を生成
func NewEventID() string {
	return uuid.New().String()
}

// Today returns the current calendar date string
// 今日のカレンダー日付文字列を返す
func Today() string {
	return time.Now().Format(DateLayout)
}

// Finalize recomputes the derived total price from quantity and price.
// The stored value is never trusted from input.
// 数量と単価から合計金額を再計算（入力値の合計金額は信頼しない）
func (e *StockEvent) Finalize() {
	e.TotalPrice = e.Quantity * e.Price
}

// Finalize recomputes the derived total price from quantity and price
// 数量と単価から合計金額を再計算
func (e *SaleEvent) Finalize() {
	e.TotalPrice = e.Quantity * e.Price
}

// MonthKey returns the YYYY-MM bucket key of a date string
// 日付文字列の YYYY-MM バケットキーを返す
func MonthKey(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}
