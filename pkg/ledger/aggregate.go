package ledger

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// StockStatus classifies a product's remaining balance
// 商品の残高状態を分類
type StockStatus string

const (
	StatusNegative   StockStatus = "Negative"     // 負の残高（記録の不整合）
	StatusOutOfStock StockStatus = "Out of Stock" // 在庫切れ
	StatusLowStock   StockStatus = "Low Stock"    // 低在庫
	StatusInStock    StockStatus = "In Stock"     // 在庫あり
)

// lowStockThreshold is the fixed boundary between low and normal stock
// 低在庫と通常在庫の固定境界値
const lowStockThreshold = 5

// StockStatusOf classifies a remaining quantity
// 残数量から在庫状態を判定
func StockStatusOf(remaining float64) StockStatus {
	switch {
	case remaining < 0:
		return StatusNegative
	case remaining == 0:
		return StatusOutOfStock
	case remaining < lowStockThreshold:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// ProductSummary is one reconciliation row of the inventory report
// 在庫レポートの商品別照合行
type ProductSummary struct {
	ProductName    string      `json:"productName"`    // 商品名
	OpeningStock   float64     `json:"openingStock"`   // 総入庫数量
	SoldQuantity   float64     `json:"soldQuantity"`   // 総出庫数量
	RemainingStock float64     `json:"remainingStock"` // 残数量（クランプなし）
	TotalCost      float64     `json:"totalCost"`      // 総仕入金額
	AvgCostPrice   float64     `json:"avgCostPrice"`   // 平均仕入単価
	TotalSell      float64     `json:"totalSell"`      // 総販売金額
	AvgSellPrice   float64     `json:"avgSellPrice"`   // 平均販売単価
	ProfitMargin   float64     `json:"profitMargin"`   // 単位あたり利益
	TotalProfit    float64     `json:"totalProfit"`    // 総利益
	StockValue     float64     `json:"stockValue"`     // 在庫評価額
	Status         StockStatus `json:"status"`         // 在庫状態
}

// ReportTotals is the aggregate row over the (filtered) report
// フィルター後レポートの合計行
type ReportTotals struct {
	OpeningStock   float64 `json:"openingStock"`   // 総入庫数量
	SoldQuantity   float64 `json:"soldQuantity"`   // 総出庫数量
	RemainingStock float64 `json:"remainingStock"` // 総残数量
	TotalProfit    float64 `json:"totalProfit"`    // 総利益
	StockValue     float64 `json:"stockValue"`     // 総在庫評価額
}

// InventoryReport is the reconciliation report over both event logs
// 両イベントログに対する照合レポート
type InventoryReport struct {
	Rows   []ProductSummary `json:"rows"`   // 商品別行（総利益の降順）
	Totals ReportTotals     `json:"totals"` // 合計行（フィルター適用後）
}

// ReportEngine builds per-product reconciliation reports from event snapshots
// イベントスナップショットから商品別照合レポートを構築
type ReportEngine struct {
	logger *zap.Logger
}

// NewReportEngine creates a new report engine
// 新しいレポートエンジンを作成
func NewReportEngine(logger *zap.Logger) *ReportEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportEngine{logger: logger}
}

// BuildReport reconciles the two logs into per-product rows plus totals.
// Product names are case-sensitive keys. The filter is a case-insensitive
// substring match applied before the totals are computed.
// 二つのログを商品別行と合計行に照合する。商品名は大文字小文字を区別するキー。
// フィルターは合計計算の前に適用される部分一致。
func (e *ReportEngine) BuildReport(stock []StockEvent, sales []SaleEvent, filter string) InventoryReport {
	rows := e.buildRows(stock, sales)

	if filter != "" {
		q := strings.ToLower(filter)
		filtered := rows[:0]
		for _, row := range rows {
			if strings.Contains(strings.ToLower(row.ProductName), q) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	var totals ReportTotals
	for _, row := range rows {
		totals.OpeningStock += row.OpeningStock
		totals.SoldQuantity += row.SoldQuantity
		totals.RemainingStock += row.RemainingStock
		totals.TotalProfit += row.TotalProfit
		totals.StockValue += row.StockValue
	}

	e.logger.Info("在庫レポート構築完了",
		zap.Int("rows", len(rows)),
		zap.String("filter", filter),
		zap.Float64("total_profit", totals.TotalProfit),
	)

	return InventoryReport{Rows: rows, Totals: totals}
}

// buildRows produces one row per product in the union of both logs,
// sorted descending by total profit (ties keep alphabetical order)
// 両ログの商品の和集合に対して1行ずつ生成（総利益の降順、同値は商品名順）
func (e *ReportEngine) buildRows(stock []StockEvent, sales []SaleEvent) []ProductSummary {
	names := make(map[string]bool)
	for _, ev := range stock {
		names[ev.ProductName] = true
	}
	for _, ev := range sales {
		names[ev.ProductName] = true
	}

	products := make([]string, 0, len(names))
	for name := range names {
		products = append(products, name)
	}
	sort.Strings(products)

	rows := make([]ProductSummary, 0, len(products))
	for _, name := range products {
		rows = append(rows, e.buildRow(name, stock, sales))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalProfit > rows[j].TotalProfit
	})
	return rows
}

func (e *ReportEngine) buildRow(name string, stock []StockEvent, sales []SaleEvent) ProductSummary {
	row := ProductSummary{ProductName: name}

	// 金額は保存済みのtotalPriceを信頼せず単価×数量で再計算する
	for _, ev := range stock {
		if ev.ProductName == name {
			row.OpeningStock += ev.Quantity.Float()
			row.TotalCost += ev.Price.Float() * ev.Quantity.Float()
		}
	}
	for _, ev := range sales {
		if ev.ProductName == name {
			row.SoldQuantity += ev.Quantity.Float()
			row.TotalSell += ev.Price.Float() * ev.Quantity.Float()
		}
	}

	row.RemainingStock = row.OpeningStock - row.SoldQuantity
	if row.OpeningStock > 0 {
		row.AvgCostPrice = row.TotalCost / row.OpeningStock
	}
	if row.SoldQuantity > 0 {
		row.AvgSellPrice = row.TotalSell / row.SoldQuantity
	}
	row.ProfitMargin = row.AvgSellPrice - row.AvgCostPrice
	row.TotalProfit = row.ProfitMargin * row.SoldQuantity
	row.StockValue = row.RemainingStock * row.AvgCostPrice
	row.Status = StockStatusOf(row.RemainingStock)
	return row
}
