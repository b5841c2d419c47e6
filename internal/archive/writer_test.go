package archive

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"dartarchive/internal/grid"
	"dartarchive/internal/sheets"
)

// memProvider 셀 행렬을 메모리에 들고 있는 테스트용 Provider
type memProvider struct {
	data    map[string][][]string
	batches int
}

func newMemProvider(data map[string][][]string) *memProvider {
	if data == nil {
		data = make(map[string][][]string)
	}
	return &memProvider{data: data}
}

func (m *memProvider) Grid(ctx context.Context, sheet string) (*grid.Grid, error) {
	rows, ok := m.data[sheet]
	if !ok {
		return nil, fmt.Errorf("%w: %s", sheets.ErrSheetNotFound, sheet)
	}
	return grid.New(rows), nil
}

func (m *memProvider) set(sheet string, row, col int, value string) {
	rows := m.data[sheet]
	for len(rows) < row {
		rows = append(rows, nil)
	}
	for len(rows[row-1]) < col {
		rows[row-1] = append(rows[row-1], "")
	}
	rows[row-1][col-1] = value
	m.data[sheet] = rows
}

func (m *memProvider) Update(ctx context.Context, sheet string, u sheets.RangeUpdate) error {
	col, row, err := excelize.CellNameToCoordinates(u.Ref)
	if err != nil {
		return err
	}
	for i, rowValues := range u.Values {
		for j, v := range rowValues {
			m.set(sheet, row+i, col+j, v)
		}
	}
	return nil
}

func (m *memProvider) BatchUpdate(ctx context.Context, sheet string, updates []sheets.RangeUpdate) error {
	m.batches++
	for _, u := range updates {
		if err := m.Update(ctx, sheet, u); err != nil {
			return err
		}
	}
	return nil
}

func (m *memProvider) AppendRows(ctx context.Context, sheet string, rows [][]string) error {
	start := len(m.data[sheet]) + 1
	for i, row := range rows {
		for j, v := range row {
			m.set(sheet, start+i, j+1, v)
		}
	}
	return nil
}

func (m *memProvider) EnsureSheet(ctx context.Context, sheet string) error {
	if _, ok := m.data[sheet]; !ok {
		m.data[sheet] = nil
	}
	return nil
}

func (m *memProvider) Clear(ctx context.Context, sheet string) error {
	m.data[sheet] = nil
	return nil
}

func (m *memProvider) cell(sheet string, row, col int) string {
	rows := m.data[sheet]
	if row > len(rows) || col > len(rows[row-1]) {
		return ""
	}
	return rows[row-1][col-1]
}

func testWriter(p sheets.Provider) *Writer {
	return NewWriter(p, WriterConfig{
		Sheet:       "Dart_Archive",
		StartRow:    10,
		RunDateCell: "J1",
	})
}

func openLedger() [][]string {
	// 머리글이 F열(6열)까지 있고 F1이 비어 있는 열린(미마감) 원장
	return [][]string{
		{"시트", "키워드", "n", "x", "y", ""},
	}
}

func closedLedger() [][]string {
	// F1에 마감 표식이 있는 원장
	return [][]string{
		{"시트", "키워드", "n", "x", "y", "1"},
	}
}

func TestSelectColumn_ReuseOpenColumn(t *testing.T) {
	t.Parallel()

	p := newMemProvider(map[string][][]string{"Dart_Archive": openLedger()})
	col, reused, err := testWriter(p).SelectColumn(context.Background())
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if col != 6 || !reused {
		t.Fatalf("expected reuse of column 6, got col=%d reused=%v", col, reused)
	}
}

func TestSelectColumn_AllocateAfterMarker(t *testing.T) {
	t.Parallel()

	p := newMemProvider(map[string][][]string{"Dart_Archive": closedLedger()})
	col, reused, err := testWriter(p).SelectColumn(context.Background())
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if col != 7 || reused {
		t.Fatalf("expected new column 7, got col=%d reused=%v", col, reused)
	}
}

func TestSelectColumn_EmptyLedgerFatal(t *testing.T) {
	t.Parallel()

	p := newMemProvider(map[string][][]string{"Dart_Archive": nil})
	if _, _, err := testWriter(p).SelectColumn(context.Background()); err == nil {
		t.Fatalf("expected fatal error on empty ledger")
	}
}

func TestCommit_WritesValuesAndMetadata(t *testing.T) {
	t.Parallel()

	p := newMemProvider(map[string][][]string{"Dart_Archive": openLedger()})
	now, _ := time.Parse("2006-01-02", "2024-05-15")

	result, err := testWriter(p).Commit(context.Background(), map[int]string{
		10: "1,000",
		11: "2,000",
	}, now)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if result.ColumnName != "F" || result.Rows != 2 || result.Quarter != "1Q24" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := p.cell("Dart_Archive", 10, 6); got != "1,000" {
		t.Fatalf("unexpected F10: %q", got)
	}
	if got := p.cell("Dart_Archive", 11, 6); got != "2,000" {
		t.Fatalf("unexpected F11: %q", got)
	}
	if got := p.cell("Dart_Archive", 1, 6); got != "1" {
		t.Fatalf("expected control marker in F1, got %q", got)
	}
	if got := p.cell("Dart_Archive", 1, 10); got != "2024-05-15" {
		t.Fatalf("expected run date in J1, got %q", got)
	}
	if got := p.cell("Dart_Archive", 5, 6); got != "2024-05-15" {
		t.Fatalf("expected completion date in F5, got %q", got)
	}
	if got := p.cell("Dart_Archive", 6, 6); got != "1Q24" {
		t.Fatalf("expected quarter label in F6, got %q", got)
	}
}

func TestCommit_SecondRunDoesNotOverwrite(t *testing.T) {
	t.Parallel()

	p := newMemProvider(map[string][][]string{"Dart_Archive": openLedger()})
	now, _ := time.Parse("2006-01-02", "2024-05-15")
	w := testWriter(p)

	first, err := w.Commit(context.Background(), map[int]string{10: "1,000"}, now)
	if err != nil {
		t.Fatalf("first commit: %v", err)
	}
	second, err := w.Commit(context.Background(), map[int]string{10: "9,999"}, now)
	if err != nil {
		t.Fatalf("second commit: %v", err)
	}

	if second.Column != first.Column+1 {
		t.Fatalf("expected fresh column, got first=%d second=%d", first.Column, second.Column)
	}
	if got := p.cell("Dart_Archive", 10, first.Column); got != "1,000" {
		t.Fatalf("first run overwritten: %q", got)
	}
	if got := p.cell("Dart_Archive", 10, second.Column); got != "9,999" {
		t.Fatalf("second run missing: %q", got)
	}
}

func TestCommit_NoValuesNoWrites(t *testing.T) {
	t.Parallel()

	p := newMemProvider(map[string][][]string{"Dart_Archive": openLedger()})
	result, err := testWriter(p).Commit(context.Background(), nil, time.Now())
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if result.Rows != 0 {
		t.Fatalf("unexpected rows: %d", result.Rows)
	}
	if got := p.cell("Dart_Archive", 1, 6); got != "" {
		t.Fatalf("expected no marker, got %q", got)
	}
}

func TestColumnRuns_GapsSplitWrites(t *testing.T) {
	t.Parallel()

	updates := columnRuns(map[int]string{
		10: "a", 11: "b", 12: "c",
		15: "d",
		20: "e", 21: "f",
	}, "F")

	if len(updates) != 3 {
		t.Fatalf("expected 3 range writes, got %d: %+v", len(updates), updates)
	}
	if updates[0].Ref != "F10" || len(updates[0].Values) != 3 {
		t.Fatalf("unexpected first run: %+v", updates[0])
	}
	if updates[1].Ref != "F15" || len(updates[1].Values) != 1 {
		t.Fatalf("unexpected second run: %+v", updates[1])
	}
	if updates[2].Ref != "F20" || len(updates[2].Values) != 2 {
		t.Fatalf("unexpected third run: %+v", updates[2])
	}
}

func TestAppendSection_StartsAtMinimumRow(t *testing.T) {
	t.Parallel()

	p := newMemProvider(nil)
	start, err := testWriter(p).AppendSection(context.Background(), "주석개요", [][]string{{"1Q24", "항목"}})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if start != 10 {
		t.Fatalf("expected start at minimum row 10, got %d", start)
	}
	if got := p.cell("주석개요", 10, 1); got != "1Q24" {
		t.Fatalf("unexpected cell: %q", got)
	}
}

func TestAppendSection_ResumesPastDeepestRow(t *testing.T) {
	t.Parallel()

	existing := make([][]string, 12)
	existing[11] = []string{"이전값"}
	p := newMemProvider(map[string][][]string{"주석개요": existing})

	start, err := testWriter(p).AppendSection(context.Background(), "주석개요", [][]string{{"새값"}})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if start != 13 {
		t.Fatalf("expected start at row 13, got %d", start)
	}
	if got := p.cell("주석개요", 12, 1); got != "이전값" {
		t.Fatalf("existing row overwritten: %q", got)
	}
}
