package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/nemonet1337/zaiLedger/pkg/ledger"
)

// Handlers holds HTTP handlers for the ledger API
// 台帳API用のHTTPハンドラーを保持
type Handlers struct {
	repo      *ledger.Repository
	reports   *ledger.ReportEngine
	analytics *ledger.AnalyticsEngine
	validator *ledger.SalesValidator
	logger    *zap.Logger
}

// NewHandlers creates new HTTP handlers
// 新しいHTTPハンドラーを作成
func NewHandlers(repo *ledger.Repository, reports *ledger.ReportEngine, analytics *ledger.AnalyticsEngine, validator *ledger.SalesValidator, logger *zap.Logger) *Handlers {
	return &Handlers{
		repo:      repo,
		reports:   reports,
		analytics: analytics,
		validator: validator,
		logger:    logger,
	}
}

// APIResponse represents standard API response format
// 標準的なAPIレスポンス形式を表現
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthCheck handles health check requests
// ヘルスチェックリクエストを処理
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	response := APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "zaiLedger",
		},
	}

	json.NewEncoder(w).Encode(response)
}

// snapshot loads both event logs for read-only computations
// 読み取り専用計算のために両イベントログを読み込む
func (h *Handlers) snapshot(r *http.Request) ([]ledger.StockEvent, []ledger.SaleEvent, error) {
	stock, err := h.repo.LoadStock(r.Context())
	if err != nil {
		return nil, nil, err
	}
	sales, err := h.repo.LoadSales(r.Context())
	if err != nil {
		return nil, nil, err
	}
	return stock, sales, nil
}

// ListStock handles stock log list requests
// 入庫ログ取得リクエストを処理
func (h *Handlers) ListStock(w http.ResponseWriter, r *http.Request) {
	events, err := h.repo.LoadStock(r.Context())
	if err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, map[string]interface{}{
		"entries": events,
		"rollup":  ledger.RollupStock(events),
	})
}

// CreateStock handles stock entry creation requests
// 入庫記録作成リクエストを処理
func (h *Handlers) CreateStock(w http.ResponseWriter, r *http.Request) {
	var form ledger.StockForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		h.sendError(w, http.StatusBadRequest, "無効なリクエスト形式です")
		return
	}

	stock, err := h.repo.LoadStock(r.Context())
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	event, large, err := h.validator.ValidateStockEntry(form, stock, "")
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	created, err := h.repo.AppendStock(r.Context(), event)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, map[string]interface{}{
		"entry":      created,
		"largeEntry": large,
	})
}

// UpdateStock handles stock entry edit requests
// 入庫記録編集リクエストを処理
func (h *Handlers) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var form ledger.StockForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		h.sendError(w, http.StatusBadRequest, "無効なリクエスト形式です")
		return
	}

	stock, err := h.repo.LoadStock(r.Context())
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	event, large, err := h.validator.ValidateStockEntry(form, stock, id)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	if err := h.repo.ReplaceStock(r.Context(), event); err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, map[string]interface{}{
		"entry":      event,
		"largeEntry": large,
	})
}

// DeleteStock handles stock entry delete requests
// 入庫記録削除リクエストを処理
func (h *Handlers) DeleteStock(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.repo.DeleteStock(r.Context(), id); err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, map[string]interface{}{
		"message":  "入庫記録を削除しました",
		"undoable": h.repo.UndoableStockDeletes(),
	})
}

// UndoStockDelete handles stock delete undo requests
// 入庫削除取り消しリクエストを処理
func (h *Handlers) UndoStockDelete(w http.ResponseWriter, r *http.Request) {
	restored, err := h.repo.UndoStockDelete(r.Context())
	if err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, restored)
}

// ListSales handles sales log list requests with optional substring filter
// 出庫ログ取得リクエストを処理（部分一致フィルター対応）
func (h *Handlers) ListSales(w http.ResponseWriter, r *http.Request) {
	events, err := h.repo.LoadSales(r.Context())
	if err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, ledger.FilterSales(events, r.URL.Query().Get("q")))
}

// CreateSale handles sale creation requests, gated by the validator
// 出庫記録作成リクエストを処理（バリデーター経由）
func (h *Handlers) CreateSale(w http.ResponseWriter, r *http.Request) {
	var form ledger.SaleForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		h.sendError(w, http.StatusBadRequest, "無効なリクエスト形式です")
		return
	}

	stock, sales, err := h.snapshot(r)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	event, err := h.validator.ValidateSale(form, stock, sales, "")
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	created, err := h.repo.AppendSale(r.Context(), event)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, created)
}

// UpdateSale handles sale edit requests
// 出庫記録編集リクエストを処理
func (h *Handlers) UpdateSale(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var form ledger.SaleForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		h.sendError(w, http.StatusBadRequest, "無効なリクエスト形式です")
		return
	}

	stock, sales, err := h.snapshot(r)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	event, err := h.validator.ValidateSale(form, stock, sales, id)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	if err := h.repo.ReplaceSale(r.Context(), event); err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, event)
}

// DeleteSale handles sale delete requests
// 出庫記録削除リクエストを処理
func (h *Handlers) DeleteSale(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.repo.DeleteSale(r.Context(), id); err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, map[string]interface{}{
		"message":  "出庫記録を削除しました",
		"undoable": h.repo.UndoableSaleDeletes(),
	})
}

// UndoSaleDelete handles sale delete undo requests
// 出庫削除取り消しリクエストを処理
func (h *Handlers) UndoSaleDelete(w http.ResponseWriter, r *http.Request) {
	restored, err := h.repo.UndoSaleDelete(r.Context())
	if err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, restored)
}

// InventoryReport handles reconciliation report requests
// 照合レポートリクエストを処理
func (h *Handlers) InventoryReport(w http.ResponseWriter, r *http.Request) {
	stock, sales, err := h.snapshot(r)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, h.reports.BuildReport(stock, sales, r.URL.Query().Get("q")))
}

// DailyAnalytics handles daily time series requests
// 日次集計リクエストを処理
func (h *Handlers) DailyAnalytics(w http.ResponseWriter, r *http.Request) {
	stock, sales, err := h.snapshot(r)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, h.analytics.DailySeries(stock, sales))
}

// MonthlyAnalytics handles monthly summary requests
// 月次集計リクエストを処理
func (h *Handlers) MonthlyAnalytics(w http.ResponseWriter, r *http.Request) {
	stock, sales, err := h.snapshot(r)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, h.analytics.MonthlySummary(stock, sales))
}

// BestSellers handles best seller ranking requests
// ベストセラーランキングリクエストを処理
func (h *Handlers) BestSellers(w http.ResponseWriter, r *http.Request) {
	sales, err := h.repo.LoadSales(r.Context())
	if err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, h.analytics.BestSellers(sales))
}

// AnalyticsOverview handles KPI overview requests
// KPIサマリーリクエストを処理
func (h *Handlers) AnalyticsOverview(w http.ResponseWriter, r *http.Request) {
	stock, sales, err := h.snapshot(r)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, h.analytics.Overview(stock, sales))
}

// FilteredReport handles product/date-range movement report requests
// 商品・期間フィルター付きレポートリクエストを処理
func (h *Handlers) FilteredReport(w http.ResponseWriter, r *http.Request) {
	stock, sales, err := h.snapshot(r)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	q := r.URL.Query()
	h.sendSuccess(w, h.analytics.FilteredTotals(stock, sales, q.Get("product"), q.Get("from"), q.Get("to")))
}

// AvailableQuantity handles balance inquiry requests for one product
// 商品の残高照会リクエストを処理
func (h *Handlers) AvailableQuantity(w http.ResponseWriter, r *http.Request) {
	product := mux.Vars(r)["product"]

	stock, sales, err := h.snapshot(r)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, map[string]interface{}{
		"productName": product,
		"available":   ledger.AvailableQuantity(product, stock, sales),
	})
}

// LatestPrice handles latest price inquiry requests for one product
// 商品の最新単価照会リクエストを処理
func (h *Handlers) LatestPrice(w http.ResponseWriter, r *http.Request) {
	product := mux.Vars(r)["product"]

	stock, err := h.repo.LoadStock(r.Context())
	if err != nil {
		h.sendDomainError(w, err)
		return
	}

	price, ok := ledger.LatestPrice(product, stock)
	h.sendSuccess(w, map[string]interface{}{
		"productName": product,
		"price":       price,
		"known":       ok,
	})
}

// ListProducts handles product option list requests
// 商品選択肢リスト取得リクエストを処理
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	options, err := h.repo.LoadProductOptions(r.Context())
	if err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, options)
}

// AddProductRequest represents request to add a product option
// 商品追加リクエストを表現
type AddProductRequest struct {
	Name string `json:"name"`
}

// AddProduct handles product option add requests
// 商品選択肢追加リクエストを処理
func (h *Handlers) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req AddProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "無効なリクエスト形式です")
		return
	}

	options, err := h.repo.AddProductOption(r.Context(), req.Name)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, options)
}

// AvailableProducts handles in-stock product list requests
// 在庫のある商品リスト取得リクエストを処理
func (h *Handlers) AvailableProducts(w http.ResponseWriter, r *http.Request) {
	stock, sales, err := h.snapshot(r)
	if err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, ledger.AvailableProducts(stock, sales))
}

// GetCatalog handles product catalog requests
// 商品カタログ取得リクエストを処理
func (h *Handlers) GetCatalog(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.LoadCatalog(r.Context())
	if err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, items)
}

// SaveCatalog handles product catalog replace requests
// 商品カタログ置き換えリクエストを処理
func (h *Handlers) SaveCatalog(w http.ResponseWriter, r *http.Request) {
	var items []ledger.CatalogItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		h.sendError(w, http.StatusBadRequest, "無効なリクエスト形式です")
		return
	}

	if err := h.repo.SaveCatalog(r.Context(), items); err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, items)
}

// GetSettings handles settings fetch requests
// 設定取得リクエストを処理
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.repo.LoadSettings(r.Context())
	if err != nil {
		h.sendDomainError(w, err)
		return
	}
	updated, err := h.repo.LoadUpdatedTime(r.Context())
	if err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, map[string]interface{}{
		"settings":  settings,
		"updatedAt": updated,
	})
}

// SaveSettings handles settings save requests
// 設定保存リクエストを処理
func (h *Handlers) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings ledger.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		h.sendError(w, http.StatusBadRequest, "無効なリクエスト形式です")
		return
	}

	if err := h.repo.SaveSettings(r.Context(), settings); err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, settings)
}

// ResetSettings handles settings reset requests
// 設定リセットリクエストを処理
func (h *Handlers) ResetSettings(w http.ResponseWriter, r *http.Request) {
	defaults, err := h.repo.ResetSettings(r.Context())
	if err != nil {
		h.sendDomainError(w, err)
		return
	}
	h.sendSuccess(w, defaults)
}

// ヘルパーメソッド

// sendDomainError maps domain errors onto HTTP status codes
// ドメインエラーをHTTPステータスコードに対応付ける
func (h *Handlers) sendDomainError(w http.ResponseWriter, err error) {
	var validationErr *ledger.ValidationError
	var insufficientErr *ledger.InsufficientStockError

	switch {
	case errors.As(err, &validationErr), errors.As(err, &insufficientErr):
		h.sendError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrEmptyProductName):
		h.sendError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrEventNotFound):
		h.sendError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrDuplicateStockEntry), errors.Is(err, ledger.ErrProductExists):
		h.sendError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrNothingToUndo):
		h.sendError(w, http.StatusConflict, err.Error())
	default:
		h.sendError(w, http.StatusInternalServerError, err.Error())
	}
}

// sendSuccess sends a successful API response
// 成功APIレスポンスを送信
func (h *Handlers) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := APIResponse{
		Success: true,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("レスポンス送信に失敗しました", zap.Error(err))
	}
}

// sendError sends an error API response
// エラーAPIレスポンスを送信
func (h *Handlers) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := APIResponse{
		Success: false,
		Error:   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("エラーレスポンス送信に失敗しました", zap.Error(err))
	}
}
