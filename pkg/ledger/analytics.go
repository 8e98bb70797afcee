package ledger

import (
	"sort"

	"go.uber.org/zap"
)

// chartPalette is the fixed 5-color cycle assigned to best sellers by rank
// ベストセラーに順位で割り当てる固定5色パレット
var chartPalette = []string{"#0088FE", "#00C49F", "#FFBB28", "#FF8042", "#aa46be"}

// bestSellerLimit caps the best seller ranking
// ベストセラーランキングの上限件数
const bestSellerLimit = 5

// TimeBucket is one day of monetary movement
// 1日分の金額推移
type TimeBucket struct {
	Date  string  `json:"date"`  // 日付（YYYY-MM-DD）
	Stock float64 `json:"stock"` // 入庫金額合計
	Sales float64 `json:"sales"` // 出庫金額合計
}

// MonthBucket is one calendar month of monetary movement
// 1か月分の金額推移
type MonthBucket struct {
	Month string  `json:"month"` // 月（YYYY-MM）
	Stock float64 `json:"stock"` // 入庫金額合計
	Sales float64 `json:"sales"` // 出庫金額合計
}

// BestSeller is one ranked row of the best seller chart
// ベストセラーチャートの1行
type BestSeller struct {
	Name     string  `json:"name"`     // 商品名
	Quantity float64 `json:"quantity"` // 総販売数量
	Fill     string  `json:"fill"`     // チャート色
}

// Overview is the KPI headline over both logs
// 両ログに対するKPIサマリー
type Overview struct {
	TotalSales float64 `json:"totalSales"` // 総販売金額
	TotalStock float64 `json:"totalStock"` // 総仕入金額
	Profit     float64 `json:"profit"`     // 差額
}

// FilteredReport is the product/date-range filtered movement report
// 商品・期間でフィルターした推移レポート
type FilteredReport struct {
	StockEntries []StockEvent `json:"stockEntries"` // 該当入庫記録
	SaleEntries  []SaleEvent  `json:"saleEntries"`  // 該当出庫記録
	TotalStock   float64      `json:"totalStock"`   // 入庫金額合計
	TotalSales   float64      `json:"totalSales"`   // 出庫金額合計
	Profit       float64      `json:"profit"`       // 差額
}

// AnalyticsEngine produces time-bucketed series and rankings from snapshots
// スナップショットから時系列とランキングを生成
type AnalyticsEngine struct {
	logger *zap.Logger
}

// NewAnalyticsEngine creates a new analytics engine
// 新しい分析エンジンを作成
func NewAnalyticsEngine(logger *zap.Logger) *AnalyticsEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsEngine{logger: logger}
}

// DailySeries buckets both logs by exact date string, summing total prices.
// Dates sort lexically, which matches chronological order for YYYY-MM-DD.
// 両ログを日付文字列で集計（辞書順ソートはYYYY-MM-DDの時系列順と一致）
func (e *AnalyticsEngine) DailySeries(stock []StockEvent, sales []SaleEvent) []TimeBucket {
	buckets := make(map[string]*TimeBucket)
	get := func(date string) *TimeBucket {
		b, ok := buckets[date]
		if !ok {
			b = &TimeBucket{Date: date}
			buckets[date] = b
		}
		return b
	}

	for _, ev := range stock {
		get(ev.Date).Stock += ev.TotalPrice.Float()
	}
	for _, ev := range sales {
		get(ev.Date).Sales += ev.TotalPrice.Float()
	}

	series := make([]TimeBucket, 0, len(buckets))
	for _, b := range buckets {
		series = append(series, *b)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})

	e.logger.Info("日次集計完了", zap.Int("buckets", len(series)))
	return series
}

// MonthlySummary buckets both logs by the YYYY-MM prefix of the date
// 両ログを日付のYYYY-MM接頭辞で集計
func (e *AnalyticsEngine) MonthlySummary(stock []StockEvent, sales []SaleEvent) []MonthBucket {
	buckets := make(map[string]*MonthBucket)
	get := func(month string) *MonthBucket {
		b, ok := buckets[month]
		if !ok {
			b = &MonthBucket{Month: month}
			buckets[month] = b
		}
		return b
	}

	for _, ev := range stock {
		get(MonthKey(ev.Date)).Stock += ev.TotalPrice.Float()
	}
	for _, ev := range sales {
		get(MonthKey(ev.Date)).Sales += ev.TotalPrice.Float()
	}

	summary := make([]MonthBucket, 0, len(buckets))
	for _, b := range buckets {
		summary = append(summary, *b)
	}
	sort.Slice(summary, func(i, j int) bool {
		return summary[i].Month < summary[j].Month
	})

	e.logger.Info("月次集計完了", zap.Int("buckets", len(summary)))
	return summary
}

// BestSellers ranks products by total quantity sold, top 5, colored by rank.
// Ties keep alphabetical order for a stable ranking.
// 総販売数量で商品をランキング（上位5件、順位で着色、同数は商品名順で安定）
func (e *AnalyticsEngine) BestSellers(sales []SaleEvent) []BestSeller {
	totals := make(map[string]float64)
	for _, ev := range sales {
		totals[ev.ProductName] += ev.Quantity.Float()
	}

	ranked := make([]BestSeller, 0, len(totals))
	for name, qty := range totals {
		ranked = append(ranked, BestSeller{Name: name, Quantity: qty})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return ranked[i].Name < ranked[j].Name
	})

	if len(ranked) > bestSellerLimit {
		ranked = ranked[:bestSellerLimit]
	}
	for i := range ranked {
		ranked[i].Fill = chartPalette[i%len(chartPalette)]
	}
	return ranked
}

// Overview computes the KPI headline: total sales, total stock, difference
// KPIサマリーを計算（総販売金額、総仕入金額、差額）
func (e *AnalyticsEngine) Overview(stock []StockEvent, sales []SaleEvent) Overview {
	var o Overview
	for _, ev := range stock {
		o.TotalStock += ev.TotalPrice.Float()
	}
	for _, ev := range sales {
		o.TotalSales += ev.TotalPrice.Float()
	}
	o.Profit = o.TotalSales - o.TotalStock
	return o
}

// FilteredTotals builds the movement report restricted to one product and an
// inclusive date range. Empty product matches all products; empty from/to
// leaves that side of the range open. Dates compare lexically.
// 1商品と日付範囲（両端含む）に限定した推移レポートを構築。
// 商品が空なら全商品、from/toが空ならその側は無制限。日付は辞書順比較。
func (e *AnalyticsEngine) FilteredTotals(stock []StockEvent, sales []SaleEvent, product, from, to string) FilteredReport {
	inRange := func(date string) bool {
		if from != "" && date < from {
			return false
		}
		if to != "" && date > to {
			return false
		}
		return true
	}

	var report FilteredReport
	for _, ev := range stock {
		if product != "" && ev.ProductName != product {
			continue
		}
		if !inRange(ev.Date) {
			continue
		}
		report.StockEntries = append(report.StockEntries, ev)
		report.TotalStock += ev.TotalPrice.Float()
	}
	for _, ev := range sales {
		if product != "" && ev.ProductName != product {
			continue
		}
		if !inRange(ev.Date) {
			continue
		}
		report.SaleEntries = append(report.SaleEntries, ev)
		report.TotalSales += ev.TotalPrice.Float()
	}
	report.Profit = report.TotalSales - report.TotalStock

	e.logger.Info("期間レポート構築完了",
		zap.String("product", product),
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("stock_entries", len(report.StockEntries)),
		zap.Int("sale_entries", len(report.SaleEntries)),
	)
	return report
}
