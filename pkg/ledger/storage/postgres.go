// Package storage provides KVStore implementations for the ledger
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/nemonet1337/zaiLedger/pkg/ledger"
)

// PostgreSQLStore implements the KVStore interface using PostgreSQL.
// All values live in one kv_entries table keyed by the namespace key.
// PostgreSQLを使用したKVStoreインターフェースの実装。
// すべての値は名前空間キーで引くkv_entriesテーブルに格納する。
type PostgreSQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// Interface compliance check
// インターフェース準拠チェック
var _ ledger.KVStore = (*PostgreSQLStore)(nil)

// NewPostgreSQLStore creates a new PostgreSQL store instance
// 新しいPostgreSQLストアインスタンスを作成
func NewPostgreSQLStore(dsn string, logger *zap.Logger) (*PostgreSQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗しました: %w", err)
	}

	// 接続テスト
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("データベースpingに失敗しました: %w", err)
	}

	// 接続プール設定
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgreSQLStore{
		db:     db,
		logger: logger,
	}, nil
}

// Get returns the value stored under key
// キー配下の値を返す
func (s *PostgreSQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv_entries WHERE key = $1`

	var value []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("値の取得に失敗しました: %w", err)
	}
	return value, nil
}

// Set upserts the value under key
// キー配下の値を挿入または更新
func (s *PostgreSQLStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()`

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("値の保存に失敗しました: %w", err)
	}
	return nil
}

// Delete removes the value under key. Deleting a missing key is not an error.
// キー配下の値を削除（存在しないキーの削除はエラーではない）
func (s *PostgreSQLStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_entries WHERE key = $1`

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("値の削除に失敗しました: %w", err)
	}
	return nil
}

// Ping checks database connectivity
// データベース接続を確認
func (s *PostgreSQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
// データベース接続を閉じる
func (s *PostgreSQLStore) Close() error {
	s.logger.Info("データベース接続を閉じます")
	return s.db.Close()
}
