package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dartarchive/internal/grid"
	"dartarchive/internal/sheets"
)

// GridSource 해석 대상 시트의 그리드를 제공하는 읽기 경계
type GridSource interface {
	Grid(ctx context.Context, sheet string) (*grid.Grid, error)
}

// Engine 아카이브 해석 엔진.
// 요청을 시트별로 묶어 시트당 그리드를 한 번만 읽고, 키워드 일치 위치로부터
// 오프셋 셀을 읽어 원장 행 → 값 매핑을 만든다. 원본 시트는 절대 바꾸지 않는다.
type Engine struct {
	source GridSource
}

// NewEngine 해석 엔진 생성
func NewEngine(source GridSource) *Engine {
	return &Engine{source: source}
}

// Resolve 요청 목록을 해석해 원장 행 → 정제된 값 매핑을 만든다.
// 시트 없음, 키워드 없음, 일치 횟수 부족, 범위 밖 오프셋은 모두 해당 요청만
// 경고와 함께 건너뛴다. 전송 계층의 치명 오류만 패스 전체를 중단시킨다.
func (e *Engine) Resolve(ctx context.Context, requests []Request) (map[int]string, error) {
	bySheet := make(map[string][]Request)
	var order []string
	for _, req := range requests {
		if _, ok := bySheet[req.Sheet]; !ok {
			order = append(order, req.Sheet)
		}
		bySheet[req.Sheet] = append(bySheet[req.Sheet], req)
	}

	resolved := make(map[int]string)

	for _, sheet := range order {
		g, err := e.source.Grid(ctx, sheet)
		if err != nil {
			if errors.Is(err, sheets.ErrSheetNotFound) {
				slog.Warn("해석 대상 시트 없음, 건너뜀", "sheet", sheet,
					"requests", len(bySheet[sheet]))
				continue
			}
			return nil, fmt.Errorf("시트 로드 실패 %s: %w", sheet, err)
		}

		for _, req := range bySheet[sheet] {
			value, ok := resolveOne(g, req)
			if !ok {
				continue
			}
			resolved[req.ArchiveRow] = value
		}
	}

	return resolved, nil
}

// resolveOne 단일 요청을 그리드에 대해 해석한다
func resolveOne(g *grid.Grid, req Request) (string, bool) {
	positions := g.Find(req.Keyword)
	if len(positions) < req.N {
		slog.Warn("키워드 일치 부족", "sheet", req.Sheet, "keyword", req.Keyword,
			"want", req.N, "found", len(positions))
		return "", false
	}

	pos := positions[req.N-1]
	row := pos.Row + req.DY
	col := pos.Col + req.DX

	cell, ok := g.Cell(row, col)
	if !ok {
		slog.Warn("오프셋 대상이 그리드 범위 밖", "sheet", req.Sheet,
			"keyword", req.Keyword, "row", row, "col", col)
		return "", false
	}

	return grid.Clean(cell.Text), true
}
