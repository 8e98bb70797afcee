package ledger

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// coercionCounter counts silently coerced numeric values across all monitors.
// Registered once at package level to avoid duplicate registration.
// 暗黙に0へ変換された数値の件数（重複登録を避けるためパッケージレベルで一度だけ登録）
var coercionCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "zailedger",
	Name:      "numeric_coercions_total",
	Help:      "Count of persisted numeric values that failed to parse and were coerced to zero",
}, []string{"field"})

// QualityMonitor records data quality events from tolerant numeric parsing
// 寛容な数値解析で発生したデータ品質イベントを記録
type QualityMonitor struct {
	logger *zap.Logger
	count  atomic.Int64
}

// NewQualityMonitor creates a new quality monitor
// 新しいデータ品質モニターを作成
func NewQualityMonitor(logger *zap.Logger) *QualityMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QualityMonitor{logger: logger}
}

// Record registers a coercion of an unparseable value to zero
// 解析不能な値の0への変換を記録
func (m *QualityMonitor) Record(field, raw string) {
	m.count.Add(1)
	coercionCounter.WithLabelValues(field).Inc()
	m.logger.Warn("数値の解析に失敗したため0として扱います",
		zap.String("field", field),
		zap.String("raw", raw),
	)
}

// Count returns the number of coercions seen by this monitor
// このモニターが記録した変換件数を返す
func (m *QualityMonitor) Count() int64 {
	return m.count.Load()
}

// defaultMonitor receives coercion events from Number decoding, which has no
// instance to hang a monitor on. Replaced at startup via SetQualityMonitor.
// Numberデコードからの変換イベントを受け取る既定モニター（起動時に差し替え）
var defaultMonitor atomic.Pointer[QualityMonitor]

func init() {
	defaultMonitor.Store(NewQualityMonitor(nil))
}

// SetQualityMonitor replaces the monitor used by Number decoding
// Numberデコードで使用するモニターを差し替える
func SetQualityMonitor(m *QualityMonitor) {
	if m != nil {
		defaultMonitor.Store(m)
	}
}

// Number is a float64 that decodes tolerantly from persisted JSON.
// JSON numbers, quoted numeric strings and null all decode; anything else
// coerces to 0 and is recorded as a data quality event. Editing in older
// versions persisted prices as formatted strings, so tolerant decoding is
// required for reading existing data.
// 永続化JSONから寛容にデコードするfloat64。数値・数値文字列・nullを受け付け、
// それ以外は0に変換してデータ品質イベントとして記録する。
type Number float64

// Float returns the value as a plain float64
// 通常のfloat64として値を返す
func (n Number) Float() float64 {
	return float64(n)
}

// MarshalJSON encodes the value as a plain JSON number
// 通常のJSON数値としてエンコード
func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(n))
}

// UnmarshalJSON decodes JSON numbers, numeric strings and null
// JSON数値・数値文字列・nullをデコード
func (n *Number) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*n = 0
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			*n = 0
			defaultMonitor.Load().Record("number", string(trimmed))
			return nil
		}
		*n = Number(parseFloatOrZero(s, "number"))
		return nil
	}

	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		*n = 0
		defaultMonitor.Load().Record("number", string(trimmed))
		return nil
	}
	*n = Number(f)
	return nil
}

func parseFloatOrZero(raw, field string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		defaultMonitor.Load().Record(field, raw)
		return 0
	}
	return f
}

// ParseQuantityOrZero parses a quantity string, coercing failures to 0
// 数量文字列を解析し、失敗時は0に変換
func ParseQuantityOrZero(raw string) float64 {
	return parseFloatOrZero(raw, "quantity")
}

// ParsePriceOrZero parses a price string, coercing failures to 0
// 価格文字列を解析し、失敗時は0に変換
func ParsePriceOrZero(raw string) float64 {
	return parseFloatOrZero(raw, "price")
}
