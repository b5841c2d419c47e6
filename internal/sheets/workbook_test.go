package sheets

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func tempWorkbook(t *testing.T) *Workbook {
	t.Helper()
	w := NewWorkbook(filepath.Join(t.TempDir(), "test.xlsx"))
	t.Cleanup(func() { w.Close() })
	return w
}

func TestWorkbook_UpdateAndGrid(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := tempWorkbook(t)

	if err := w.EnsureSheet(ctx, "S1"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	err := w.Update(ctx, "S1", RangeUpdate{
		Ref: "C4",
		Values: [][]string{
			{"매출액", "1,000"},
			{"", "2,000"},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	g, err := w.Grid(ctx, "S1")
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	if got := g.Value(3, 2); got != "매출액" {
		t.Fatalf("unexpected C4: %q", got)
	}
	if got := g.Value(4, 3); got != "2,000" {
		t.Fatalf("unexpected D5: %q", got)
	}
}

func TestWorkbook_GridMissingSheet(t *testing.T) {
	t.Parallel()

	w := tempWorkbook(t)
	if _, err := w.Grid(context.Background(), "없는시트"); !errors.Is(err, ErrSheetNotFound) {
		t.Fatalf("expected ErrSheetNotFound, got %v", err)
	}
}

func TestWorkbook_AppendRows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := tempWorkbook(t)

	if err := w.AppendRows(ctx, "주석", [][]string{{"a", "b"}}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := w.AppendRows(ctx, "주석", [][]string{{"c"}}); err != nil {
		t.Fatalf("append: %v", err)
	}

	g, err := w.Grid(ctx, "주석")
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	if g.Value(0, 0) != "a" || g.Value(1, 0) != "c" {
		t.Fatalf("unexpected appended layout")
	}
}

func TestWorkbook_Clear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := tempWorkbook(t)

	if err := w.AppendRows(ctx, "S1", [][]string{{"x"}}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := w.Clear(ctx, "S1"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	g, err := w.Grid(ctx, "S1")
	if err != nil {
		t.Fatalf("grid after clear: %v", err)
	}
	if g.Rows() != 0 {
		t.Fatalf("expected empty sheet, got %d rows", g.Rows())
	}
}
