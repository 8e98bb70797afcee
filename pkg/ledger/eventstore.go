package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Repository adapts a KVStore into the typed event store. The persisted model
// is full-read/full-write: every mutation reloads the affected log from the
// store, applies the change, and writes the whole log back. Reloading first
// keeps concurrent writers (another process on the same store) from silently
// losing each other's appends, though last-writer-wins remains for true races.
// KVStoreを型付きイベントストアに適合させる。永続化モデルは全読み全書きで、
// 変更操作のたびにログを再読込してから適用し、全体を書き戻す。
type Repository struct {
	store     KVStore
	logger    *zap.Logger
	undoStock *UndoLog[StockEvent]
	undoSales *UndoLog[SaleEvent]
}

// Interface compliance check
// インターフェース準拠チェック
var _ EventStore = (*Repository)(nil)

// NewRepository creates a repository over the given store
// 指定ストア上のリポジトリを作成
func NewRepository(store KVStore, logger *zap.Logger, undoDepth int) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		store:     store,
		logger:    logger,
		undoStock: NewUndoLog[StockEvent](undoDepth),
		undoSales: NewUndoLog[SaleEvent](undoDepth),
	}
}

// loadList reads and decodes a JSON list under key into dst.
// A missing key or corrupt payload yields an empty list with a warning;
// stored data is never allowed to take the application down.
// キー配下のJSONリストを読み込みデコードする。キー欠損や破損データは
// 警告付きで空リストとして扱う（保存データでアプリを停止させない）。
func (r *Repository) loadList(ctx context.Context, key string, dst any) error {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			r.logger.Warn("ストレージの読み込みに失敗したため空のログとして扱います",
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		r.logger.Warn("保存データの解析に失敗したため空のログとして扱います",
			zap.String("key", key),
			zap.Error(err),
		)
	}
	return nil
}

// saveList encodes and writes a JSON list under key
// JSONリストをエンコードしてキー配下に書き込む
func (r *Repository) saveList(ctx context.Context, key string, src any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return NewStorageError("save:"+key, "JSONエンコードに失敗しました", err)
	}
	if err := r.store.Set(ctx, key, data); err != nil {
		return NewStorageError("save:"+key, "書き込みに失敗しました", err)
	}
	return nil
}

// LoadStock returns the stock log. Legacy records without an ID get one
// assigned and the backfilled log is written back best effort.
// 入庫ログを返す。IDのない旧記録にはIDを割り当て、可能なら書き戻す。
func (r *Repository) LoadStock(ctx context.Context) ([]StockEvent, error) {
	var events []StockEvent
	if err := r.loadList(ctx, KeyStockEntries, &events); err != nil {
		return nil, err
	}

	backfilled := 0
	for i := range events {
		if events[i].ID == "" {
			events[i].ID = NewEventID()
			backfilled++
		}
	}
	if backfilled > 0 {
		if err := r.saveList(ctx, KeyStockEntries, events); err != nil {
			r.logger.Warn("ID補完の書き戻しに失敗しました", zap.Error(err))
		} else {
			r.logger.Info("旧入庫記録にIDを補完しました", zap.Int("count", backfilled))
		}
	}
	return events, nil
}

// SaveStock replaces the whole stock log
// 入庫ログ全体を置き換える
func (r *Repository) SaveStock(ctx context.Context, events []StockEvent) error {
	return r.saveList(ctx, KeyStockEntries, events)
}

// AppendStock reloads the stock log, appends the event and saves it back
// 入庫ログを再読込し、イベントを追加して保存
func (r *Repository) AppendStock(ctx context.Context, event StockEvent) (StockEvent, error) {
	events, err := r.LoadStock(ctx)
	if err != nil {
		return StockEvent{}, err
	}
	if event.ID == "" {
		event.ID = NewEventID()
	}
	event.Finalize()

	events = append(events, event)
	if err := r.SaveStock(ctx, events); err != nil {
		return StockEvent{}, err
	}
	r.logger.Info("入庫記録追加完了",
		zap.String("id", event.ID),
		zap.String("product", event.ProductName),
		zap.Float64("quantity", event.Quantity.Float()),
	)
	return event, nil
}

// ReplaceStock updates the stock event with the same ID
// 同じIDの入庫イベントを更新
func (r *Repository) ReplaceStock(ctx context.Context, event StockEvent) error {
	events, err := r.LoadStock(ctx)
	if err != nil {
		return err
	}
	event.Finalize()
	for i := range events {
		if events[i].ID == event.ID {
			events[i] = event
			if err := r.SaveStock(ctx, events); err != nil {
				return err
			}
			r.logger.Info("入庫記録更新完了", zap.String("id", event.ID))
			return nil
		}
	}
	return ErrEventNotFound
}

// DeleteStock removes a stock event by ID and pushes it onto the undo log.
// The undo entry is recorded only after a successful save.
// IDで入庫イベントを削除し、取り消しログに積む（保存成功後にのみ記録）。
func (r *Repository) DeleteStock(ctx context.Context, id string) error {
	events, err := r.LoadStock(ctx)
	if err != nil {
		return err
	}
	for i := range events {
		if events[i].ID == id {
			deleted := events[i]
			events = append(events[:i], events[i+1:]...)
			if err := r.SaveStock(ctx, events); err != nil {
				return err
			}
			r.undoStock.Push(deleted)
			r.logger.Info("入庫記録削除完了", zap.String("id", id))
			return nil
		}
	}
	return ErrEventNotFound
}

// UndoStockDelete restores the most recently deleted stock event
// 直近に削除した入庫イベントを復元
func (r *Repository) UndoStockDelete(ctx context.Context) (StockEvent, error) {
	deleted, err := r.undoStock.Pop()
	if err != nil {
		return StockEvent{}, err
	}
	restored, err := r.AppendStock(ctx, deleted)
	if err != nil {
		// 復元失敗時は再試行できるよう取り消しログに戻す
		r.undoStock.Push(deleted)
		return StockEvent{}, err
	}
	r.logger.Info("入庫記録復元完了", zap.String("id", restored.ID))
	return restored, nil
}

// LoadSales returns the sales log with legacy IDs backfilled
// 出庫ログを返す（旧記録のIDを補完）
func (r *Repository) LoadSales(ctx context.Context) ([]SaleEvent, error) {
	var events []SaleEvent
	if err := r.loadList(ctx, KeySalesEntries, &events); err != nil {
		return nil, err
	}

	backfilled := 0
	for i := range events {
		if events[i].ID == "" {
			events[i].ID = NewEventID()
			backfilled++
		}
	}
	if backfilled > 0 {
		if err := r.saveList(ctx, KeySalesEntries, events); err != nil {
			r.logger.Warn("ID補完の書き戻しに失敗しました", zap.Error(err))
		} else {
			r.logger.Info("旧出庫記録にIDを補完しました", zap.Int("count", backfilled))
		}
	}
	return events, nil
}

// SaveSales replaces the whole sales log
// 出庫ログ全体を置き換える
func (r *Repository) SaveSales(ctx context.Context, events []SaleEvent) error {
	return r.saveList(ctx, KeySalesEntries, events)
}

// AppendSale reloads the sales log, appends the event and saves it back
// 出庫ログを再読込し、イベントを追加して保存
func (r *Repository) AppendSale(ctx context.Context, event SaleEvent) (SaleEvent, error) {
	events, err := r.LoadSales(ctx)
	if err != nil {
		return SaleEvent{}, err
	}
	if event.ID == "" {
		event.ID = NewEventID()
	}
	event.Finalize()

	events = append(events, event)
	if err := r.SaveSales(ctx, events); err != nil {
		return SaleEvent{}, err
	}
	r.logger.Info("出庫記録追加完了",
		zap.String("id", event.ID),
		zap.String("product", event.ProductName),
		zap.Float64("quantity", event.Quantity.Float()),
	)
	return event, nil
}

// ReplaceSale updates the sale event with the same ID
// 同じIDの出庫イベントを更新
func (r *Repository) ReplaceSale(ctx context.Context, event SaleEvent) error {
	events, err := r.LoadSales(ctx)
	if err != nil {
		return err
	}
	event.Finalize()
	for i := range events {
		if events[i].ID == event.ID {
			events[i] = event
			if err := r.SaveSales(ctx, events); err != nil {
				return err
			}
			r.logger.Info("出庫記録更新完了", zap.String("id", event.ID))
			return nil
		}
	}
	return ErrEventNotFound
}

// DeleteSale removes a sale event by ID and pushes it onto the undo log
// IDで出庫イベントを削除し、取り消しログに積む
func (r *Repository) DeleteSale(ctx context.Context, id string) error {
	events, err := r.LoadSales(ctx)
	if err != nil {
		return err
	}
	for i := range events {
		if events[i].ID == id {
			deleted := events[i]
			events = append(events[:i], events[i+1:]...)
			if err := r.SaveSales(ctx, events); err != nil {
				return err
			}
			r.undoSales.Push(deleted)
			r.logger.Info("出庫記録削除完了", zap.String("id", id))
			return nil
		}
	}
	return ErrEventNotFound
}

// UndoSaleDelete restores the most recently deleted sale event
// 直近に削除した出庫イベントを復元
func (r *Repository) UndoSaleDelete(ctx context.Context) (SaleEvent, error) {
	deleted, err := r.undoSales.Pop()
	if err != nil {
		return SaleEvent{}, err
	}
	restored, err := r.AppendSale(ctx, deleted)
	if err != nil {
		r.undoSales.Push(deleted)
		return SaleEvent{}, err
	}
	r.logger.Info("出庫記録復元完了", zap.String("id", restored.ID))
	return restored, nil
}

// LoadProductOptions returns the selectable product list, seeded with the
// defaults when nothing has been saved yet
// 選択可能な商品リストを返す（未保存の場合は初期リスト）
func (r *Repository) LoadProductOptions(ctx context.Context) ([]string, error) {
	var options []string
	if err := r.loadList(ctx, KeyProductOptions, &options); err != nil {
		return nil, err
	}
	if len(options) == 0 {
		options = append(options, DefaultProductOptions...)
	}
	return options, nil
}

// AddProductOption appends a new product name to the selectable list.
// Blank names and duplicates (case-insensitive) are rejected.
// 商品名をリストに追加する（空名と重複は拒否、大文字小文字を区別しない）。
func (r *Repository) AddProductOption(ctx context.Context, name string) ([]string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrEmptyProductName
	}

	options, err := r.LoadProductOptions(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range options {
		if strings.EqualFold(existing, trimmed) {
			return nil, ErrProductExists
		}
	}

	options = append(options, trimmed)
	if err := r.saveList(ctx, KeyProductOptions, options); err != nil {
		return nil, err
	}
	r.logger.Info("商品追加完了", zap.String("product", trimmed))
	return options, nil
}

// LoadCatalog returns the product catalog
// 商品カタログを返す
func (r *Repository) LoadCatalog(ctx context.Context) ([]CatalogItem, error) {
	var items []CatalogItem
	if err := r.loadList(ctx, KeyProductCatalog, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveCatalog replaces the product catalog
// 商品カタログを置き換える
func (r *Repository) SaveCatalog(ctx context.Context, items []CatalogItem) error {
	if err := r.saveList(ctx, KeyProductCatalog, items); err != nil {
		return err
	}
	r.logger.Info("商品カタログ保存完了", zap.Int("items", len(items)))
	return nil
}

// LoadSettings returns the application settings, defaulted when missing
// アプリケーション設定を返す（未保存の場合は既定値）
func (r *Repository) LoadSettings(ctx context.Context) (Settings, error) {
	data, err := r.store.Get(ctx, KeyAppSettings)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			r.logger.Warn("設定の読み込みに失敗したため既定値を使用します", zap.Error(err))
		}
		return DefaultSettings(), nil
	}
	s := DefaultSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		r.logger.Warn("設定の解析に失敗したため既定値を使用します", zap.Error(err))
		return DefaultSettings(), nil
	}
	return s, nil
}

// SaveSettings persists the settings and the display update time
// 設定と表示用更新時刻を保存
func (r *Repository) SaveSettings(ctx context.Context, s Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return NewStorageError("save:"+KeyAppSettings, "JSONエンコードに失敗しました", err)
	}
	if err := r.store.Set(ctx, KeyAppSettings, data); err != nil {
		return NewStorageError("save:"+KeyAppSettings, "書き込みに失敗しました", err)
	}

	updated := time.Now().Format("2006-01-02 15:04:05")
	if err := r.store.Set(ctx, KeySettingsUpdated, []byte(updated)); err != nil {
		r.logger.Warn("設定更新時刻の保存に失敗しました", zap.Error(err))
	}
	r.logger.Info("設定保存完了", zap.String("updated", updated))
	return nil
}

// ResetSettings restores the default settings
// 設定を既定値に戻す
func (r *Repository) ResetSettings(ctx context.Context) (Settings, error) {
	defaults := DefaultSettings()
	if err := r.SaveSettings(ctx, defaults); err != nil {
		return Settings{}, err
	}
	return defaults, nil
}

// LoadUpdatedTime returns the display string of the last settings save
// 最終設定保存の表示用文字列を返す
func (r *Repository) LoadUpdatedTime(ctx context.Context) (string, error) {
	data, err := r.store.Get(ctx, KeySettingsUpdated)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return "", nil
		}
		return "", NewStorageError("load:"+KeySettingsUpdated, "読み込みに失敗しました", err)
	}
	return string(data), nil
}

// UndoableStockDeletes reports how many stock deletions can be undone
// 取り消し可能な入庫削除の件数を返す
func (r *Repository) UndoableStockDeletes() int {
	return r.undoStock.Len()
}

// UndoableSaleDeletes reports how many sale deletions can be undone
// 取り消し可能な出庫削除の件数を返す
func (r *Repository) UndoableSaleDeletes() int {
	return r.undoSales.Len()
}
