package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nemonet1337/zaiLedger/internal/config"
	"github.com/nemonet1337/zaiLedger/pkg/ledger"
	"github.com/nemonet1337/zaiLedger/pkg/ledger/storage"
)

func main() {
	// .env読み込み（任意）
	_ = godotenv.Load()

	// ログ設定
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("ログ初期化に失敗しました:", err)
	}
	defer logger.Sync()

	// 設定読み込み（CONFIG_FILE指定時はYAMLファイルを優先）
	var cfg *config.Config
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		logger.Fatal("設定読み込みに失敗しました", zap.Error(err))
	}

	// データ品質モニター設定
	ledger.SetQualityMonitor(ledger.NewQualityMonitor(logger))

	// ストア接続
	var store ledger.KVStore
	switch cfg.Storage.Driver {
	case "postgres":
		store, err = storage.NewPostgreSQLStore(cfg.DSN(), logger)
		if err != nil {
			logger.Fatal("データベース接続に失敗しました", zap.Error(err))
		}
	case "memory":
		store = storage.NewMemoryStore()
		logger.Warn("インメモリストアを使用します。データは終了時に失われます")
	}
	defer store.Close()

	// リポジトリとエンジン初期化
	repo := ledger.NewRepository(store, logger, cfg.Ledger.UndoDepth)
	reports := ledger.NewReportEngine(logger)
	analytics := ledger.NewAnalyticsEngine(logger)
	validator := ledger.NewSalesValidator(logger)

	// HTTPハンドラー設定
	handlers := NewHandlers(repo, reports, analytics, validator, logger)
	router := setupRouter(handlers, cfg)

	// HTTPサーバー設定
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.API.Port),
		Handler:      router,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
		IdleTimeout:  cfg.API.IdleTimeout,
	}

	// グレースフルシャットダウン設定
	go func() {
		logger.Info("在庫台帳APIサーバーを開始します", zap.Int("port", cfg.API.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー開始に失敗しました", zap.Error(err))
		}
	}()

	// シャットダウンシグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	// グレースフルシャットダウン
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("サーバーシャットダウンに失敗しました", zap.Error(err))
	}

	logger.Info("サーバーが正常に停止しました")
}

// setupRouter sets up HTTP routes
// HTTPルートを設定
func setupRouter(handlers *Handlers, cfg *config.Config) *mux.Router {
	router := mux.NewRouter()

	// ヘルスチェックとメトリクス
	router.HandleFunc("/health", handlers.HealthCheck).Methods("GET")
	if cfg.API.EnableMetrics {
		router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	// API v1ルート
	api := router.PathPrefix("/api/v1").Subrouter()

	// 入庫記録
	api.HandleFunc("/stock", handlers.ListStock).Methods("GET")
	api.HandleFunc("/stock", handlers.CreateStock).Methods("POST")
	api.HandleFunc("/stock/undo", handlers.UndoStockDelete).Methods("POST")
	api.HandleFunc("/stock/{id}", handlers.UpdateStock).Methods("PUT")
	api.HandleFunc("/stock/{id}", handlers.DeleteStock).Methods("DELETE")

	// 出庫記録
	api.HandleFunc("/sales", handlers.ListSales).Methods("GET")
	api.HandleFunc("/sales", handlers.CreateSale).Methods("POST")
	api.HandleFunc("/sales/undo", handlers.UndoSaleDelete).Methods("POST")
	api.HandleFunc("/sales/{id}", handlers.UpdateSale).Methods("PUT")
	api.HandleFunc("/sales/{id}", handlers.DeleteSale).Methods("DELETE")

	// 照合レポート
	api.HandleFunc("/inventory/report", handlers.InventoryReport).Methods("GET")

	// 分析
	api.HandleFunc("/analytics/daily", handlers.DailyAnalytics).Methods("GET")
	api.HandleFunc("/analytics/monthly", handlers.MonthlyAnalytics).Methods("GET")
	api.HandleFunc("/analytics/best-sellers", handlers.BestSellers).Methods("GET")
	api.HandleFunc("/analytics/overview", handlers.AnalyticsOverview).Methods("GET")
	api.HandleFunc("/analytics/report", handlers.FilteredReport).Methods("GET")

	// 数量台帳照会
	api.HandleFunc("/ledger/{product}/available", handlers.AvailableQuantity).Methods("GET")
	api.HandleFunc("/ledger/{product}/latest-price", handlers.LatestPrice).Methods("GET")

	// 商品リスト管理
	api.HandleFunc("/products", handlers.ListProducts).Methods("GET")
	api.HandleFunc("/products", handlers.AddProduct).Methods("POST")
	api.HandleFunc("/products/available", handlers.AvailableProducts).Methods("GET")

	// 商品カタログ
	api.HandleFunc("/catalog", handlers.GetCatalog).Methods("GET")
	api.HandleFunc("/catalog", handlers.SaveCatalog).Methods("PUT")

	// 設定管理
	api.HandleFunc("/settings", handlers.GetSettings).Methods("GET")
	api.HandleFunc("/settings", handlers.SaveSettings).Methods("PUT")
	api.HandleFunc("/settings", handlers.ResetSettings).Methods("DELETE")

	// CORS設定（開発用）
	if cfg.API.EnableCORS {
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

				if r.Method == "OPTIONS" {
					w.WriteHeader(http.StatusOK)
					return
				}

				next.ServeHTTP(w, r)
			})
		})
	}

	// ログ機能
	router.Use(loggingMiddleware(handlers.logger))

	return router
}

// loggingMiddleware logs HTTP requests
// HTTPリクエストをログ出力するミドルウェア
func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// リクエスト処理
			next.ServeHTTP(w, r)

			// ログ出力
			logger.Info("HTTPリクエスト",
				zap.String("method", r.Method),
				zap.String("url", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
