package ledger

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// largeEntryThreshold flags entries worth a confirmation prompt
// 確認を促す大口入力のしきい値
const largeEntryThreshold = 1000

// SaleForm is the raw user input for a sale entry.
// Quantity and price arrive as strings and are parsed strictly; form input
// gets no silent coercion, unlike persisted data.
// 出庫入力フォーム（数量と価格は文字列で受け取り厳密に解析する）
type SaleForm struct {
	ProductName  string `json:"productName"`  // 商品名
	Quantity     string `json:"quantity"`     // 数量（文字列入力）
	Price        string `json:"price"`        // 販売単価（文字列入力）
	Date         string `json:"date"`         // 日付（空なら今日）
	CustomerName string `json:"customerName"` // 顧客名（任意）
}

// StockForm is the raw user input for a stock entry
// 入庫入力フォーム
type StockForm struct {
	ProductName string `json:"productName"` // 商品名
	Quantity    string `json:"quantity"`    // 数量（文字列入力）
	Price       string `json:"price"`       // 仕入単価（文字列入力）
	Date        string `json:"date"`        // 日付（空なら今日）
}

// SalesValidator gates sale and stock writes against current snapshots
// 現在のスナップショットに対して出庫・入庫の書き込みを検証
type SalesValidator struct {
	logger *zap.Logger
}

// NewSalesValidator creates a new sales validator
// 新しい販売バリデーターを作成
func NewSalesValidator(logger *zap.Logger) *SalesValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesValidator{logger: logger}
}

// parseStrict parses a required positive-capable numeric form field
// フォームの数値フィールドを厳密に解析
func parseStrict(field, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, NewValidationError(field, "値を入力してください", raw)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, NewValidationError(field, "数値として解析できません", raw)
	}
	return f, nil
}

// ValidateSale checks a sale form against the current stock and sales logs.
// When editingID names an existing sale, that sale's quantity is added back to
// the available balance before the check, so an edit that keeps or lowers the
// quantity always passes the availability test. On success the returned event
// has a recomputed total price and, for new sales, a fresh ID.
// 出庫フォームを現在の入庫・出庫ログに対して検証する。editingIDが既存の出庫を
// 指す場合、その数量を利用可能残高に戻してから判定するため、数量を維持または
// 減らす編集は常に残高チェックを通過する。成功時は合計金額を再計算した
// イベントを返す（新規の場合は新しいIDを付与）。
func (v *SalesValidator) ValidateSale(form SaleForm, stock []StockEvent, sales []SaleEvent, editingID string) (SaleEvent, error) {
	name := strings.TrimSpace(form.ProductName)
	if name == "" {
		return SaleEvent{}, NewValidationError("productName", "商品を選択してください", form.ProductName)
	}

	quantity, err := parseStrict("quantity", form.Quantity)
	if err != nil {
		return SaleEvent{}, err
	}
	if quantity <= 0 {
		return SaleEvent{}, NewValidationError("quantity", "数量は正の値である必要があります", form.Quantity)
	}

	// 残高チェックは価格チェックより先に行う
	available := AvailableQuantity(name, stock, sales)
	if editingID != "" {
		for _, s := range sales {
			if s.ID == editingID && s.ProductName == name {
				available += s.Quantity.Float()
				break
			}
		}
	}
	if quantity > available {
		v.logger.Warn("在庫不足により出庫を拒否",
			zap.String("product", name),
			zap.Float64("requested", quantity),
			zap.Float64("available", available),
		)
		return SaleEvent{}, NewInsufficientStockError(name, quantity, available)
	}

	price, err := parseStrict("price", form.Price)
	if err != nil {
		return SaleEvent{}, err
	}
	if price <= 0 {
		return SaleEvent{}, NewValidationError("price", "価格は正の値である必要があります", form.Price)
	}

	event := SaleEvent{
		ID:           editingID,
		ProductName:  name,
		Quantity:     Number(quantity),
		Price:        Number(price),
		Date:         form.Date,
		CustomerName: strings.TrimSpace(form.CustomerName),
	}
	if event.ID == "" {
		event.ID = NewEventID()
	}
	if event.Date == "" {
		event.Date = Today()
	}
	event.Finalize()
	return event, nil
}

// ValidateStockEntry checks a stock form. The (productName, date) pair must be
// unique among stock entries, excluding the record under edit. The boolean
// return flags a large entry (quantity or price above the threshold) that the
// caller may want to confirm; it never blocks the entry.
// 入庫フォームを検証する。(商品名, 日付)は編集中の記録を除いて一意でなければ
// ならない。戻り値のboolはしきい値超えの大口入力を示す（拒否はしない）。
func (v *SalesValidator) ValidateStockEntry(form StockForm, stock []StockEvent, editingID string) (StockEvent, bool, error) {
	name := strings.TrimSpace(form.ProductName)
	if name == "" {
		return StockEvent{}, false, NewValidationError("productName", "商品を選択してください", form.ProductName)
	}

	quantity, err := parseStrict("quantity", form.Quantity)
	if err != nil {
		return StockEvent{}, false, err
	}
	if quantity <= 0 {
		return StockEvent{}, false, NewValidationError("quantity", "数量は正の値である必要があります", form.Quantity)
	}

	price, err := parseStrict("price", form.Price)
	if err != nil {
		return StockEvent{}, false, err
	}
	if price <= 0 {
		return StockEvent{}, false, NewValidationError("price", "価格は正の値である必要があります", form.Price)
	}

	date := form.Date
	if date == "" {
		date = Today()
	}

	for _, s := range stock {
		if s.ID != "" && s.ID == editingID {
			continue
		}
		if s.ProductName == name && s.Date == date {
			return StockEvent{}, false, ErrDuplicateStockEntry
		}
	}

	event := StockEvent{
		ID:          editingID,
		ProductName: name,
		Quantity:    Number(quantity),
		Price:       Number(price),
		Date:        date,
	}
	if event.ID == "" {
		event.ID = NewEventID()
	}
	event.Finalize()

	large := quantity > largeEntryThreshold || price > largeEntryThreshold
	return event, large, nil
}
