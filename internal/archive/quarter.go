package archive

import (
	"fmt"
	"time"
)

// reportingLagDays 공시는 분기 종료 후에 나오므로 기준일을 90일 뒤로 돌려
// 직전 분기를 라벨링한다.
const reportingLagDays = 90

// QuarterLabel 실행 시점의 보고 분기 라벨 ("1Q24" 꼴).
// 기준일은 now로부터 90일 전이다.
func QuarterLabel(now time.Time) string {
	ref := now.AddDate(0, 0, -reportingLagDays)
	quarter := (int(ref.Month())-1)/3 + 1
	return fmt.Sprintf("%dQ%02d", quarter, ref.Year()%100)
}
