package grid

import (
	"regexp"
	"strconv"
	"strings"
)

// CellKind 셀 값의 종류
type CellKind int

const (
	KindEmpty CellKind = iota
	KindText
	KindNumber
)

// Cell 시트 셀 하나. 종류는 그리드 생성 시점에 한 번만 판정한다.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// Pos 키워드가 위치한 (행, 열) 좌표. 0 기준.
type Pos struct {
	Row int
	Col int
}

// Grid 시트 한 장의 읽기 전용 스냅샷.
// 한 번 만들어진 뒤에는 어떤 컴포넌트도 내용을 바꾸지 않는다.
type Grid struct {
	cells [][]Cell
	cols  int
	index map[string][]Pos
}

// New 문자열 행렬로부터 그리드를 만든다.
// 행마다 길이가 달라도 되고, 최대 열 수를 그리드 폭으로 삼는다.
func New(rows [][]string) *Grid {
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}

	cells := make([][]Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]Cell, cols)
		for j := 0; j < cols; j++ {
			raw := ""
			if j < len(row) {
				raw = row[j]
			}
			cells[i][j] = newCell(raw)
		}
	}

	return &Grid{
		cells: cells,
		cols:  cols,
		index: make(map[string][]Pos),
	}
}

func newCell(raw string) Cell {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Cell{Kind: KindEmpty}
	}
	if n, ok := ParseNumber(text); ok {
		return Cell{Kind: KindNumber, Text: text, Number: n}
	}
	return Cell{Kind: KindText, Text: text}
}

// Rows 행 수
func (g *Grid) Rows() int {
	return len(g.cells)
}

// Cols 열 수
func (g *Grid) Cols() int {
	return g.cols
}

// Cell 좌표의 셀. 범위를 벗어나면 false.
func (g *Grid) Cell(row, col int) (Cell, bool) {
	if row < 0 || row >= len(g.cells) || col < 0 || col >= g.cols {
		return Cell{}, false
	}
	return g.cells[row][col], true
}

// Value 좌표의 표시 문자열. 범위 밖이면 빈 문자열.
func (g *Grid) Value(row, col int) string {
	c, ok := g.Cell(row, col)
	if !ok {
		return ""
	}
	return c.Text
}

// Find 키워드와 정확히 일치하는 셀 좌표를 행 우선 오름차순으로 반환한다.
// 비교는 양쪽 공백 제거 후 완전 일치. 일치가 없으면 빈 슬라이스(오류 아님).
// 같은 그리드에 대해 몇 번을 불러도 결과는 동일하다.
func (g *Grid) Find(keyword string) []Pos {
	key := strings.TrimSpace(keyword)
	if cached, ok := g.index[key]; ok {
		return cached
	}

	var positions []Pos
	for r, row := range g.cells {
		for c, cell := range row {
			if cell.Kind != KindEmpty && cell.Text == key {
				positions = append(positions, Pos{Row: r, Col: c})
			}
		}
	}

	g.index[key] = positions
	return positions
}

var parenPattern = regexp.MustCompile(`\s*\([^)]*\)\s*`)

// Clean 괄호 주기와 퍼센트 기호를 제거한다.
// "123 (주1)" 같은 각주 표기와 "(500)" 같은 회계 음수 표기를 구분하지 않고
// 모두 지운다. 원본 동작 그대로 유지한다.
func Clean(value string) string {
	if value == "" {
		return value
	}
	cleaned := parenPattern.ReplaceAllString(value, "")
	return strings.ReplaceAll(cleaned, "%", "")
}

// ParseNumber 표시 문자열을 숫자로 해석한다.
// 천 단위 구분 쉼표와 내부 공백을 제거하고, 괄호로 감싼 수는 음수로 본다.
func ParseNumber(s string) (float64, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(t, "(") && strings.HasSuffix(t, ")") {
		negative = true
		t = strings.TrimSpace(t[1 : len(t)-1])
	}

	t = strings.ReplaceAll(t, ",", "")
	t = strings.ReplaceAll(t, " ", "")
	if t == "" {
		return 0, false
	}

	n, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		n = -n
	}
	return n, true
}
