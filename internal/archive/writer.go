package archive

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"dartarchive/internal/sheets"
)

// 결과 열의 고정 메타 행 (1 기준)
const (
	markerRow     = 1
	completionRow = 5
	quarterRow    = 6
)

// controlMarker 열이 마감되었음을 나타내는 표식
const controlMarker = "1"

// WriterConfig 아카이브 기록 설정
type WriterConfig struct {
	// Sheet 원장 시트 이름
	Sheet string
	// StartRow 해석 요청과 결과가 시작되는 최소 행 (1 기준)
	StartRow int
	// RunDateCell 실행일을 기록하는 고정 셀
	RunDateCell string
}

// WriteResult 한 번의 커밋 결과
type WriteResult struct {
	// Column 기록한 결과 열 (1 기준)
	Column int
	// ColumnName 결과 열의 문자 표기
	ColumnName string
	// Rows 기록한 값 개수
	Rows int
	// Quarter 보고 분기 라벨
	Quarter string
	// Reused 마감 표식이 없어 기존 마지막 열을 재사용했는지
	Reused bool
}

// Writer 해석 결과와 주석 개요를 원장에 기록한다.
// 열 배정 규칙이 동시 기록에 안전하지 않으므로, 같은 원장에 대한 패스는
// 한 번에 하나만 실행해야 한다.
type Writer struct {
	provider sheets.Provider
	cfg      WriterConfig
}

// NewWriter 기록기 생성
func NewWriter(provider sheets.Provider, cfg WriterConfig) *Writer {
	return &Writer{provider: provider, cfg: cfg}
}

// SelectColumn 원장 머리글의 마감 표식을 읽어 결과 열을 정한다.
// 마지막 열에 표식이 있으면 새 열을 배정하고, 없으면 마지막 열을 재사용한다.
func (w *Writer) SelectColumn(ctx context.Context) (column int, reused bool, err error) {
	g, err := w.provider.Grid(ctx, w.cfg.Sheet)
	if err != nil {
		return 0, false, fmt.Errorf("원장 읽기 실패: %w", err)
	}
	if g.Rows() == 0 || g.Cols() == 0 {
		return 0, false, fmt.Errorf("원장 시트 %s가 비어 있음", w.cfg.Sheet)
	}

	last := g.Cols()
	if g.Value(markerRow-1, last-1) != "" {
		return last + 1, false, nil
	}
	return last, true, nil
}

// Commit 해석된 값 집합을 결과 열 하나로 기록하고 메타데이터로 열을 마감한다.
// 값은 원장 행이 연속한 구간마다 한 번의 범위 쓰기로 나간다. 값이 하나도
// 없으면 아무것도 쓰지 않는다.
func (w *Writer) Commit(ctx context.Context, values map[int]string, now time.Time) (WriteResult, error) {
	column, reused, err := w.SelectColumn(ctx)
	if err != nil {
		return WriteResult{}, err
	}

	colName, err := excelize.ColumnNumberToName(column)
	if err != nil {
		return WriteResult{}, fmt.Errorf("열 이름 변환 실패: %w", err)
	}

	result := WriteResult{
		Column:     column,
		ColumnName: colName,
		Rows:       len(values),
		Quarter:    QuarterLabel(now),
		Reused:     reused,
	}
	if len(values) == 0 {
		return result, nil
	}

	updates := columnRuns(values, colName)
	if err := w.provider.BatchUpdate(ctx, w.cfg.Sheet, updates); err != nil {
		return WriteResult{}, fmt.Errorf("결과 열 기록 실패: %w", err)
	}

	today := now.Format("2006-01-02")
	meta := []sheets.RangeUpdate{
		{Ref: w.cfg.RunDateCell, Values: [][]string{{today}}},
		{Ref: colName + strconv.Itoa(markerRow), Values: [][]string{{controlMarker}}},
		{Ref: colName + strconv.Itoa(completionRow), Values: [][]string{{today}}},
		{Ref: colName + strconv.Itoa(quarterRow), Values: [][]string{{result.Quarter}}},
	}
	if err := w.provider.BatchUpdate(ctx, w.cfg.Sheet, meta); err != nil {
		return WriteResult{}, fmt.Errorf("메타데이터 기록 실패: %w", err)
	}

	return result, nil
}

// AppendSection 개요 시트의 채워진 가장 깊은 행 다음에 행 블록을 기록한다.
// 시작 행은 설정된 최소 행보다 앞으로 오지 않는다.
func (w *Writer) AppendSection(ctx context.Context, sheet string, rows [][]string) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := w.provider.EnsureSheet(ctx, sheet); err != nil {
		return 0, err
	}

	g, err := w.provider.Grid(ctx, sheet)
	if err != nil {
		return 0, fmt.Errorf("개요 시트 읽기 실패: %w", err)
	}

	start := g.Rows() + 1
	if start < w.cfg.StartRow {
		start = w.cfg.StartRow
	}

	u := sheets.RangeUpdate{Ref: "A" + strconv.Itoa(start), Values: rows}
	if err := w.provider.Update(ctx, sheet, u); err != nil {
		return 0, fmt.Errorf("개요 기록 실패: %w", err)
	}
	return start, nil
}

// columnRuns 원장 행이 연속한 구간별로 단일 열 범위 쓰기를 만든다
func columnRuns(values map[int]string, colName string) []sheets.RangeUpdate {
	rows := make([]int, 0, len(values))
	for row := range values {
		rows = append(rows, row)
	}
	sort.Ints(rows)

	var updates []sheets.RangeUpdate
	for i := 0; i < len(rows); {
		j := i
		for j+1 < len(rows) && rows[j+1] == rows[j]+1 {
			j++
		}

		block := make([][]string, 0, j-i+1)
		for _, row := range rows[i : j+1] {
			block = append(block, []string{values[row]})
		}
		updates = append(updates, sheets.RangeUpdate{
			Ref:    colName + strconv.Itoa(rows[i]),
			Values: block,
		})
		i = j + 1
	}
	return updates
}
