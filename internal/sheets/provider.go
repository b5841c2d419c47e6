package sheets

import (
	"context"
	"errors"

	"dartarchive/internal/grid"
)

// ErrSheetNotFound 요청한 시트가 워크북에 없다.
// 해석 패스는 이 오류를 치명으로 다루지 않고 해당 요청만 건너뛴다.
var ErrSheetNotFound = errors.New("sheets: sheet not found")

// ErrQuotaExceeded 전송 계층의 호출 한도 초과.
// 유일하게 재시도 가능한 전송 오류이고, 나머지는 그 호출에 대해 즉시 치명이다.
var ErrQuotaExceeded = errors.New("sheets: quota exceeded")

// RangeUpdate 시작 셀 기준 블록 쓰기 한 건
type RangeUpdate struct {
	// Ref 블록의 좌상단 셀 참조 (예: "F10")
	Ref    string
	Values [][]string
}

// Provider 스프레드시트 전송 계층 경계.
// 그리드 읽기는 읽는 시점의 스냅샷을 돌려주며 이후 쓰기와 무관하게 불변이다.
type Provider interface {
	// Grid 시트 전체를 스냅샷으로 읽는다
	Grid(ctx context.Context, sheet string) (*grid.Grid, error)
	// Update 시작 셀부터 값 블록을 쓴다
	Update(ctx context.Context, sheet string, u RangeUpdate) error
	// BatchUpdate 여러 블록을 한 번에 쓴다
	BatchUpdate(ctx context.Context, sheet string, updates []RangeUpdate) error
	// AppendRows 기존 내용 아래에 행들을 덧붙인다
	AppendRows(ctx context.Context, sheet string, rows [][]string) error
	// EnsureSheet 시트가 없으면 만든다
	EnsureSheet(ctx context.Context, sheet string) error
	// Clear 시트 내용을 비운다
	Clear(ctx context.Context, sheet string) error
}
