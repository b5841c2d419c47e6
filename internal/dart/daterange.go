package dart

import (
	"fmt"
	"time"
)

const (
	// defaultLookbackDays 수동 기간이 없으면 최근 90일을 본다
	defaultLookbackDays = 90
	// maxRangeDays 수동 기간의 상한
	maxRangeDays = 730

	dateLayout = "20060102"
)

// DateRange 공시 조회 기간 (양끝 포함)
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ResolveRange 수동 시작/종료일을 검증해 조회 기간을 정한다.
// 수동 값은 둘 다 있거나 둘 다 없어야 하고, 순서가 맞아야 하며,
// 730일을 넘을 수 없다. 없으면 오늘까지 최근 90일.
func ResolveRange(manualStart, manualEnd string, now time.Time) (DateRange, error) {
	if manualStart == "" && manualEnd == "" {
		return DateRange{
			Start: now.AddDate(0, 0, -defaultLookbackDays),
			End:   now,
		}, nil
	}
	if manualStart == "" || manualEnd == "" {
		return DateRange{}, fmt.Errorf("수동 기간은 시작일과 종료일을 모두 지정해야 함")
	}

	start, err := time.Parse(dateLayout, manualStart)
	if err != nil {
		return DateRange{}, fmt.Errorf("시작일 형식 오류 (%s): %w", manualStart, err)
	}
	end, err := time.Parse(dateLayout, manualEnd)
	if err != nil {
		return DateRange{}, fmt.Errorf("종료일 형식 오류 (%s): %w", manualEnd, err)
	}
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("종료일(%s)이 시작일(%s)보다 빠름", manualEnd, manualStart)
	}
	if end.Sub(start) > maxRangeDays*24*time.Hour {
		return DateRange{}, fmt.Errorf("조회 기간이 %d일을 초과함", maxRangeDays)
	}
	return DateRange{Start: start, End: end}, nil
}
