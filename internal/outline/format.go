package outline

import (
	"fmt"
	"math"
)

// FormatNumber 단위 제수로 나눈 뒤 크기에 따라 소수 자릿수를 정해 표시한다.
// 절대값 1000 이상은 0자리, 100 이상은 1자리, 그 밖은 2자리.
func FormatNumber(value, divisor float64) string {
	if divisor != 0 {
		value /= divisor
	}
	switch abs := math.Abs(value); {
	case abs >= 1000:
		return fmt.Sprintf("%.0f", value)
	case abs >= 100:
		return fmt.Sprintf("%.1f", value)
	default:
		return fmt.Sprintf("%.2f", value)
	}
}

// FormatValue 항목 값의 표시 문자열. 숫자 값은 단위 제수를 적용한다.
func FormatValue(it Item, divisor float64) string {
	switch it.Kind {
	case ValueNumber:
		return FormatNumber(it.Number, divisor)
	case ValueText:
		return it.Text
	default:
		return ""
	}
}

// Linearize 항목 열을 시트에 덧붙일 행들로 편다.
// 분기마다 주석 항목 구성이 달라질 수 있어 고정 행 위치 대신
// 분기 라벨을 붙인 행을 차곡차곡 쌓는 방식을 쓴다.
func Linearize(items []Item, quarter string, divisor float64) [][]string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{quarter, it.Key, it.DisplayName, FormatValue(it, divisor)})
	}
	return rows
}
