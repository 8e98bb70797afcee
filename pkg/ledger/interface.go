package ledger

import (
	"context"
)

// Storage keys of the flat key-value namespace. Fixed for compatibility with
// data written by earlier versions of the application.
// フラットなキーバリュー名前空間のストレージキー（旧バージョンとの互換のため固定）
const (
	KeyStockEntries    = "stock_entries"         // 入庫記録ログ
	KeySalesEntries    = "sales_entries"         // 出庫記録ログ
	KeyProductOptions  = "product_options"       // 商品選択肢リスト
	KeyProductCatalog  = "product_list"          // 商品カタログ
	KeyAppSettings     = "app_settings"          // アプリケーション設定
	KeySettingsUpdated = "settings_updated_time" // 設定更新時刻（表示用文字列）
)

// KVStore defines the synchronous key-value persistence layer.
// Get returns ErrKeyNotFound when the key has no value.
// 同期的なキーバリュー永続化層を定義（値が無い場合GetはErrKeyNotFoundを返す）
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Health check
	Ping(ctx context.Context) error
	Close() error
}

// EventStore defines the typed persistence operations over the event logs
// イベントログに対する型付き永続化操作を定義
type EventStore interface {
	// 入庫記録 - Stock entries
	LoadStock(ctx context.Context) ([]StockEvent, error)
	AppendStock(ctx context.Context, event StockEvent) (StockEvent, error)
	ReplaceStock(ctx context.Context, event StockEvent) error
	DeleteStock(ctx context.Context, id string) error
	UndoStockDelete(ctx context.Context) (StockEvent, error)

	// 出庫記録 - Sale entries
	LoadSales(ctx context.Context) ([]SaleEvent, error)
	AppendSale(ctx context.Context, event SaleEvent) (SaleEvent, error)
	ReplaceSale(ctx context.Context, event SaleEvent) error
	DeleteSale(ctx context.Context, id string) error
	UndoSaleDelete(ctx context.Context) (SaleEvent, error)

	// 商品リスト管理 - Product list management
	LoadProductOptions(ctx context.Context) ([]string, error)
	AddProductOption(ctx context.Context, name string) ([]string, error)

	// 商品カタログ - Product catalog
	LoadCatalog(ctx context.Context) ([]CatalogItem, error)
	SaveCatalog(ctx context.Context, items []CatalogItem) error

	// 設定管理 - Settings management
	LoadSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error
	ResetSettings(ctx context.Context) (Settings, error)
	LoadUpdatedTime(ctx context.Context) (string, error)
}
