package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// TestValidateSale は出庫バリデーションの基本テスト
func TestValidateSale(t *testing.T) {
	validator := NewSalesValidator(zap.NewNop())

	stock := []StockEvent{
		{ProductName: "Rasam Powder", Quantity: 10},
	}

	event, err := validator.ValidateSale(SaleForm{
		ProductName: "Rasam Powder",
		Quantity:    "4",
		Price:       "400",
		Date:        "2024-01-07",
	}, stock, nil, "")

	assert.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, Number(4), event.Quantity)

	// 合計金額は再計算される
	assert.Equal(t, Number(1600), event.TotalPrice)
}

// TestValidateSale_InsufficientStock は在庫不足拒否のテスト
func TestValidateSale_InsufficientStock(t *testing.T) {
	validator := NewSalesValidator(zap.NewNop())

	stock := []StockEvent{
		{ProductName: "Rasam Powder", Quantity: 10},
	}

	_, err := validator.ValidateSale(SaleForm{
		ProductName: "Rasam Powder",
		Quantity:    "11",
		Price:       "400",
	}, stock, nil, "")

	assert.Error(t, err)

	// エラーは利用可能数量を保持する
	var insufficientErr *InsufficientStockError
	assert.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, 10.0, insufficientErr.Available)
	assert.Equal(t, 11.0, insufficientErr.Requested)
}

// TestValidateSale_EditAddBack は編集時の数量戻し判定のテスト
func TestValidateSale_EditAddBack(t *testing.T) {
	validator := NewSalesValidator(zap.NewNop())

	// 在庫10、既存出庫4（編集対象）の状態
	stock := []StockEvent{
		{ProductName: "Rasam Powder", Quantity: 10},
	}
	sales := []SaleEvent{
		{ID: "sale-1", ProductName: "Rasam Powder", Quantity: 4},
	}

	// 編集で13に増やすのは許可される（利用可能 6 + 戻し 4 ... 14 >= 13）
	event, err := validator.ValidateSale(SaleForm{
		ProductName: "Rasam Powder",
		Quantity:    "13",
		Price:       "400",
	}, stock, sales, "sale-1")
	assert.NoError(t, err)
	assert.Equal(t, "sale-1", event.ID)

	// 15は利用可能数量14を超えるため拒否される
	_, err = validator.ValidateSale(SaleForm{
		ProductName: "Rasam Powder",
		Quantity:    "15",
		Price:       "400",
	}, stock, sales, "sale-1")
	assert.Error(t, err)

	var insufficientErr *InsufficientStockError
	assert.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, 14.0, insufficientErr.Available)

	// 新規作成は戻しなしで判定される（利用可能 6）
	_, err = validator.ValidateSale(SaleForm{
		ProductName: "Rasam Powder",
		Quantity:    "7",
		Price:       "400",
	}, stock, sales, "")
	assert.Error(t, err)
}

// TestValidateSale_InvalidInput は不正入力拒否のテスト
func TestValidateSale_InvalidInput(t *testing.T) {
	validator := NewSalesValidator(zap.NewNop())

	stock := []StockEvent{
		{ProductName: "Rasam Powder", Quantity: 10},
	}

	cases := []struct {
		name string
		form SaleForm
	}{
		{"商品未選択", SaleForm{Quantity: "1", Price: "100"}},
		{"数量が非数値", SaleForm{ProductName: "Rasam Powder", Quantity: "abc", Price: "100"}},
		{"数量が0", SaleForm{ProductName: "Rasam Powder", Quantity: "0", Price: "100"}},
		{"数量が負", SaleForm{ProductName: "Rasam Powder", Quantity: "-1", Price: "100"}},
		{"価格が0", SaleForm{ProductName: "Rasam Powder", Quantity: "1", Price: "0"}},
		{"価格が空", SaleForm{ProductName: "Rasam Powder", Quantity: "1", Price: ""}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.ValidateSale(tc.form, stock, nil, "")
			assert.Error(t, err)
			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

// TestValidateSale_AvailabilityBeforePrice は残高エラーが価格エラーより優先されるテスト
func TestValidateSale_AvailabilityBeforePrice(t *testing.T) {
	validator := NewSalesValidator(zap.NewNop())

	stock := []StockEvent{
		{ProductName: "Rasam Powder", Quantity: 10},
	}

	// 在庫不足と価格不正が同時に成立する場合は在庫不足が先に報告される
	_, err := validator.ValidateSale(SaleForm{
		ProductName: "Rasam Powder",
		Quantity:    "11",
		Price:       "0",
	}, stock, nil, "")

	var insufficientErr *InsufficientStockError
	assert.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, 10.0, insufficientErr.Available)
}

// TestValidateSale_DefaultDate は日付省略時に今日が入るテスト
func TestValidateSale_DefaultDate(t *testing.T) {
	validator := NewSalesValidator(zap.NewNop())

	stock := []StockEvent{
		{ProductName: "Rasam Powder", Quantity: 10},
	}

	event, err := validator.ValidateSale(SaleForm{
		ProductName: "Rasam Powder",
		Quantity:    "1",
		Price:       "100",
	}, stock, nil, "")

	assert.NoError(t, err)
	assert.Equal(t, Today(), event.Date)
}

// TestValidateStockEntry は入庫バリデーションの基本テスト
func TestValidateStockEntry(t *testing.T) {
	validator := NewSalesValidator(zap.NewNop())

	event, large, err := validator.ValidateStockEntry(StockForm{
		ProductName: "Rasam Powder",
		Quantity:    "10",
		Price:       "250",
		Date:        "2024-01-05",
	}, nil, "")

	assert.NoError(t, err)
	assert.False(t, large)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, Number(2500), event.TotalPrice)
}

// TestValidateStockEntry_Duplicate は同一商品・同一日付の重複拒否テスト
func TestValidateStockEntry_Duplicate(t *testing.T) {
	validator := NewSalesValidator(zap.NewNop())

	existing := []StockEvent{
		{ID: "stock-1", ProductName: "Rasam Powder", Date: "2024-01-05", Quantity: 10},
	}

	// 同じ商品・日付の新規登録は拒否
	_, _, err := validator.ValidateStockEntry(StockForm{
		ProductName: "Rasam Powder",
		Quantity:    "5",
		Price:       "250",
		Date:        "2024-01-05",
	}, existing, "")
	assert.ErrorIs(t, err, ErrDuplicateStockEntry)

	// 編集対象自身との重複は許可
	event, _, err := validator.ValidateStockEntry(StockForm{
		ProductName: "Rasam Powder",
		Quantity:    "5",
		Price:       "250",
		Date:        "2024-01-05",
	}, existing, "stock-1")
	assert.NoError(t, err)
	assert.Equal(t, "stock-1", event.ID)

	// 別の日付なら許可
	_, _, err = validator.ValidateStockEntry(StockForm{
		ProductName: "Rasam Powder",
		Quantity:    "5",
		Price:       "250",
		Date:        "2024-01-06",
	}, existing, "")
	assert.NoError(t, err)
}

// TestValidateStockEntry_LargeEntry は大口入力フラグのテスト
func TestValidateStockEntry_LargeEntry(t *testing.T) {
	validator := NewSalesValidator(zap.NewNop())

	// 数量がしきい値超え
	_, large, err := validator.ValidateStockEntry(StockForm{
		ProductName: "Rasam Powder",
		Quantity:    "1001",
		Price:       "10",
	}, nil, "")
	assert.NoError(t, err)
	assert.True(t, large)

	// 価格がしきい値超え
	_, large, err = validator.ValidateStockEntry(StockForm{
		ProductName: "Rasam Powder",
		Quantity:    "1",
		Price:       "1500",
	}, nil, "")
	assert.NoError(t, err)
	assert.True(t, large)

	// しきい値ちょうどはフラグなし
	_, large, err = validator.ValidateStockEntry(StockForm{
		ProductName: "Rasam Powder",
		Quantity:    "1000",
		Price:       "1000",
	}, nil, "")
	assert.NoError(t, err)
	assert.False(t, large)
}
