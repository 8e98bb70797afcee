package ledger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// TestNumber_UnmarshalJSON は寛容な数値デコードのテスト
func TestNumber_UnmarshalJSON(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Number
	}{
		{"JSON数値", `12.5`, 12.5},
		{"整数", `100`, 100},
		{"数値文字列", `"12.50"`, 12.5},
		{"空白付き文字列", `" 7 "`, 7},
		{"null", `null`, 0},
		{"空文字列", `""`, 0},
		{"非数値文字列", `"abc"`, 0},
		{"真偽値", `true`, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var n Number
			err := json.Unmarshal([]byte(tc.raw), &n)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, n)
		})
	}
}

// TestNumber_RoundTrip は編集後の文字列価格を含む往復デコードのテスト
func TestNumber_RoundTrip(t *testing.T) {
	// 旧バージョンは編集後の価格を文字列として保存していた
	raw := `{"productName":"Rasam Powder","quantity":4,"price":"400.00","date":"2024-01-07","totalPrice":1600}`

	var event SaleEvent
	assert.NoError(t, json.Unmarshal([]byte(raw), &event))
	assert.Equal(t, Number(400), event.Price)
	assert.Equal(t, Number(1600), event.TotalPrice)

	// 再エンコードでは通常のJSON数値になる
	data, err := json.Marshal(event)
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"price":400`)
}

// TestParseQuantityOrZero は数量の安全解析テスト
func TestParseQuantityOrZero(t *testing.T) {
	assert.Equal(t, 10.0, ParseQuantityOrZero("10"))
	assert.Equal(t, 2.5, ParseQuantityOrZero(" 2.5 "))
	assert.Equal(t, 0.0, ParseQuantityOrZero(""))
	assert.Equal(t, 0.0, ParseQuantityOrZero("abc"))
}

// TestParsePriceOrZero は価格の安全解析テスト
func TestParsePriceOrZero(t *testing.T) {
	assert.Equal(t, 400.0, ParsePriceOrZero("400.00"))
	assert.Equal(t, 0.0, ParsePriceOrZero("N/A"))
}

// TestQualityMonitor はデータ品質イベント記録のテスト
func TestQualityMonitor(t *testing.T) {
	monitor := NewQualityMonitor(zap.NewNop())
	SetQualityMonitor(monitor)
	defer SetQualityMonitor(NewQualityMonitor(zap.NewNop()))

	before := monitor.Count()

	// 解析不能な値が変換として記録される
	ParsePriceOrZero("bogus")
	ParseQuantityOrZero("???")

	var n Number
	_ = json.Unmarshal([]byte(`"not a number"`), &n)

	assert.Equal(t, before+3, monitor.Count())

	// 正常値は記録されない
	ParsePriceOrZero("100")
	assert.Equal(t, before+3, monitor.Count())
}
