package sheets

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"dartarchive/internal/grid"
)

// Workbook 로컬 xlsx 파일을 전송 계층으로 쓰는 Provider 구현
type Workbook struct {
	file *excelize.File
	path string
}

// OpenWorkbook xlsx 파일을 연다
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("워크북 열기 실패: %w", err)
	}
	return &Workbook{file: f, path: path}, nil
}

// NewWorkbook 빈 워크북을 만든다. 경로는 Save 시점에 사용된다.
func NewWorkbook(path string) *Workbook {
	return &Workbook{file: excelize.NewFile(), path: path}
}

// File 내부 excelize 파일 (테스트/다운로드 병합용)
func (w *Workbook) File() *excelize.File {
	return w.file
}

// Grid 시트 전체 스냅샷
func (w *Workbook) Grid(ctx context.Context, sheet string) (*grid.Grid, error) {
	if idx, err := w.file.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		var notExist excelize.ErrSheetNotExist
		if errors.As(err, &notExist) {
			return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
		}
		return nil, fmt.Errorf("시트 읽기 실패 %s: %w", sheet, err)
	}
	return grid.New(rows), nil
}

// Update 시작 셀부터 값 블록 쓰기
func (w *Workbook) Update(ctx context.Context, sheet string, u RangeUpdate) error {
	col, row, err := excelize.CellNameToCoordinates(u.Ref)
	if err != nil {
		return fmt.Errorf("셀 참조 해석 실패 %s: %w", u.Ref, err)
	}
	for i, rowValues := range u.Values {
		for j, v := range rowValues {
			cell, err := excelize.CoordinatesToCellName(col+j, row+i)
			if err != nil {
				return err
			}
			if err := w.file.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("셀 쓰기 실패 %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

// BatchUpdate 여러 블록 쓰기
func (w *Workbook) BatchUpdate(ctx context.Context, sheet string, updates []RangeUpdate) error {
	for _, u := range updates {
		if err := w.Update(ctx, sheet, u); err != nil {
			return err
		}
	}
	return nil
}

// AppendRows 기존 내용 아래에 행 덧붙이기
func (w *Workbook) AppendRows(ctx context.Context, sheet string, rows [][]string) error {
	if err := w.EnsureSheet(ctx, sheet); err != nil {
		return err
	}
	existing, err := w.file.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("시트 읽기 실패 %s: %w", sheet, err)
	}
	start := len(existing) + 1
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, start+i)
			if err != nil {
				return err
			}
			if err := w.file.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("셀 쓰기 실패 %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

// EnsureSheet 시트가 없으면 만든다
func (w *Workbook) EnsureSheet(ctx context.Context, sheet string) error {
	if idx, err := w.file.GetSheetIndex(sheet); err == nil && idx >= 0 {
		return nil
	}
	if _, err := w.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("시트 생성 실패 %s: %w", sheet, err)
	}
	return nil
}

// Clear 시트를 지우고 같은 이름으로 다시 만든다
func (w *Workbook) Clear(ctx context.Context, sheet string) error {
	if idx, err := w.file.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil
	}
	if err := w.file.DeleteSheet(sheet); err != nil {
		return fmt.Errorf("시트 삭제 실패 %s: %w", sheet, err)
	}
	if _, err := w.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("시트 재생성 실패 %s: %w", sheet, err)
	}
	return nil
}

// Save 변경 내용을 파일로 저장
func (w *Workbook) Save() error {
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("워크북 저장 실패: %w", err)
	}
	return nil
}

// Close 파일 핸들 닫기
func (w *Workbook) Close() error {
	return w.file.Close()
}
