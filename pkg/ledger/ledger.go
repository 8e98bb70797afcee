package ledger

import (
	"sort"
	"strings"
)

// Quantity ledger: pure balance functions over event snapshots.
// The balance is flat and all-time; dates never limit these calculations.
// 数量台帳：イベントスナップショット上の純粋な残高関数（全期間、日付は無関係）

// AvailableQuantity returns total stocked minus total sold for a product.
// A product that was only ever sold yields a negative balance; the caller
// decides how to present it.
// 商品の総入庫数から総出庫数を引いた値を返す（入庫のない商品は負の残高になる）
func AvailableQuantity(product string, stock []StockEvent, sales []SaleEvent) float64 {
	var stocked, sold float64
	for _, e := range stock {
		if e.ProductName == product {
			stocked += e.Quantity.Float()
		}
	}
	for _, e := range sales {
		if e.ProductName == product {
			sold += e.Quantity.Float()
		}
	}
	return stocked - sold
}

// LatestPrice returns the price of the last inserted stock entry for a product.
// The second return value is false when the product has no stock entries.
// Insertion order stands in for recency here; an entry appended later with an
// older date still wins. Known limitation carried over from the stored format,
// which has no reliable timestamp to order by.
// 商品の最後に挿入された入庫記録の単価を返す（入庫記録がなければfalse）。
// 挿入順を新しさの代用としており、古い日付でも後から追加された記録が優先される。
func LatestPrice(product string, stock []StockEvent) (Number, bool) {
	for i := len(stock) - 1; i >= 0; i-- {
		if stock[i].ProductName == product {
			return stock[i].Price, true
		}
	}
	return 0, false
}

// AvailableProducts returns the sorted distinct products with positive balance
// 残高が正の商品名を重複なくソートして返す
func AvailableProducts(stock []StockEvent, sales []SaleEvent) []string {
	seen := make(map[string]bool)
	var products []string
	for _, e := range stock {
		if seen[e.ProductName] {
			continue
		}
		seen[e.ProductName] = true
		if AvailableQuantity(e.ProductName, stock, sales) > 0 {
			products = append(products, e.ProductName)
		}
	}
	sort.Strings(products)
	return products
}

// StockRollup is the summary bar over the whole stock log
// 入庫ログ全体のサマリー
type StockRollup struct {
	TotalQuantity float64 `json:"totalQuantity"` // 総数量
	TotalValue    float64 `json:"totalValue"`    // 総金額
}

// RollupStock sums quantity and total price across all stock entries
// 全入庫記録の数量と合計金額を集計
func RollupStock(stock []StockEvent) StockRollup {
	var r StockRollup
	for _, e := range stock {
		r.TotalQuantity += e.Quantity.Float()
		r.TotalValue += e.TotalPrice.Float()
	}
	return r
}

// FilterSales returns sales whose product or customer name contains the query
// (case-insensitive substring match). An empty query returns the input as is.
// 商品名または顧客名にクエリを含む出庫記録を返す（大文字小文字を区別しない部分一致）
func FilterSales(sales []SaleEvent, query string) []SaleEvent {
	if query == "" {
		return sales
	}
	q := strings.ToLower(query)
	var filtered []SaleEvent
	for _, e := range sales {
		if strings.Contains(strings.ToLower(e.ProductName), q) ||
			strings.Contains(strings.ToLower(e.CustomerName), q) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
