package archive

import (
	"log/slog"
	"strconv"

	"dartarchive/internal/grid"
)

// Request 아카이브 원장 한 행이 기술하는 해석 요청.
// A~E 열이 각각 시트명, 키워드, n번째 일치, x 오프셋, y 오프셋이다.
type Request struct {
	Sheet   string
	Keyword string
	// N 몇 번째 일치를 쓸지 (1 기준)
	N int
	// DX 일치 셀로부터의 열 변위
	DX int
	// DY 일치 셀로부터의 행 변위
	DY int
	// ArchiveRow 결과를 기록할 원장 행 (1 기준)
	ArchiveRow int
}

// ParseRequests 원장 그리드에서 해석 요청 목록을 읽는다.
// startRow(1 기준)부터 끝까지 훑으며, 시트명이 비었거나 n/x/y가 정수로
// 해석되지 않는 행은 경고만 남기고 건너뛴다.
func ParseRequests(ledger *grid.Grid, startRow int) []Request {
	var requests []Request

	for idx := startRow - 1; idx < ledger.Rows(); idx++ {
		sheet := ledger.Value(idx, 0)
		if sheet == "" {
			continue
		}

		keyword := ledger.Value(idx, 1)
		nText := ledger.Value(idx, 2)
		xText := ledger.Value(idx, 3)
		yText := ledger.Value(idx, 4)
		if keyword == "" || nText == "" || xText == "" || yText == "" {
			slog.Warn("원장 행의 검색 정보 부족", "row", idx+1, "sheet", sheet)
			continue
		}

		n, errN := strconv.Atoi(nText)
		x, errX := strconv.Atoi(xText)
		y, errY := strconv.Atoi(yText)
		if errN != nil || errX != nil || errY != nil || n < 1 {
			slog.Warn("원장 행의 숫자 필드 해석 실패",
				"row", idx+1, "n", nText, "x", xText, "y", yText)
			continue
		}

		requests = append(requests, Request{
			Sheet:      sheet,
			Keyword:    keyword,
			N:          n,
			DX:         x,
			DY:         y,
			ArchiveRow: idx + 1,
		})
	}

	return requests
}
