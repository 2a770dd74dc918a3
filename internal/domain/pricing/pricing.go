package pricing

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// 金額・数量はすべて最小通貨単位の整数で扱う。
type Line struct {
	UnitPrice int64
	Quantity  int64
}

func LineTotal(unitPrice int64, quantity int64) int64 {
	return unitPrice * quantity
}

// 明細の小計
func SumSubtotal(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += LineTotal(l.UnitPrice, l.Quantity)
	}
	return sum
}

// 明細の数量合計
func SumQuantity(lines []Line) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.Quantity
	}
	return sum
}

// 10%割引。端数は切り捨て（四捨五入しない）。
func PercentDiscount(subtotal int64, requested bool) int64 {
	if !requested {
		return 0
	}
	return subtotal / 10
}

// 合計 = 小計 - 割引 - 折讓。マイナスでもそのまま返す。
func ComputeTotal(subtotal int64, discount int64, allowance int64) int64 {
	return subtotal - discount - allowance
}

// ParseAmount はJSONから取り出した値を金額に変換する。
// 変換できない値は ok=false を返す（呼び出し側で無視する）。
func ParseAmount(v any) (int64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, true
		}
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return truncFloat(f)
	case float64:
		return truncFloat(x)
	case float32:
		return truncFloat(float64(x))
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func truncFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	t := math.Trunc(f)
	if t > math.MaxInt64 || t < math.MinInt64 {
		return 0, false
	}
	return int64(t), true
}
