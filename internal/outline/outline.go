package outline

import (
	"strings"
	"unicode/utf8"

	"dartarchive/internal/grid"
)

// ValueKind 항목 값의 종류
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueText
	ValueNumber
)

// Item 주석 시트에서 추출한 개요 항목 하나.
// 비범주 항목은 위에서 아래로 훑는 동안 가장 최근에 본 범주(와 소범주)에 속한다.
type Item struct {
	// DisplayName 들여쓰기와 트리 기호를 붙인 표시용 이름
	DisplayName string
	// RawName 셀에 있던 원래 텍스트
	RawName     string
	Category    string
	Subcategory string
	// Indent 항목이 시작한 열 번호와 같다
	Indent        int
	IsCategory    bool
	IsSubcategory bool
	// Text 값의 표시 문자열 (숫자 값도 원문을 유지한다)
	Text   string
	Number float64
	Kind   ValueKind
	// Key 범주/소범주/원문을 이어 만든 중복 제거용 키
	Key string
}

const (
	// minNameRunes 이보다 짧은 텍스트는 항목으로 보지 않는다
	minNameRunes = 2
	// continuationRunes 이보다 긴 텍스트는 직전 항목의 이어지는 설명으로 본다
	continuationRunes = 50
	// lookAheadRows 소범주 판정 시 내다보는 최대 행 수
	lookAheadRows = 5
	// lookAheadHits 내다본 행 중 이만큼이 들여쓰기면 소범주로 본다
	lookAheadHits = 2
	// lookAheadCols 들여쓰기 판정에 쓰는 열 범위 (1열부터)
	lookAheadCols = 4
)

// 단위 주기와 시트 내 이동용 라벨. 항목으로 의미가 없어 건너뛴다.
var (
	denyPrefixes = []string{"(단위", "（단위", "단위:", "단위 :"}
	denyExact    = map[string]struct{}{
		"전체목차": {},
		"목차":   {},
	}
)

// state 행 접기(fold)에 들고 다니는 추출 상태.
// lastIdx는 out 슬라이스 안의 마지막 비범주 항목 위치이고, 없으면 -1이다.
type state struct {
	category    string
	subcategory string
	lastIdx     int
}

// Extract 주석 시트 그리드를 범주별 개요 항목 열로 바꾼다.
// 항목 순서는 시트의 위→아래 순서 그대로다.
func Extract(g *grid.Grid) []Item {
	st := state{lastIdx: -1}
	var out []Item

	for r := 0; r < g.Rows(); r++ {
		st, out = step(g, r, st, out)
	}
	return out
}

// step 한 행을 처리해 새 상태와 출력 열을 돌려준다
func step(g *grid.Grid, r int, st state, out []Item) (state, []Item) {
	firstCol, text, ok := firstText(g, r)
	if !ok {
		return st, out
	}
	if utf8.RuneCountInString(text) < minNameRunes || isNoise(text) {
		return st, out
	}

	if inner, ok := stripBrackets(text); ok {
		st.category = inner
		st.subcategory = ""
		st.lastIdx = -1
		out = append(out, Item{
			DisplayName: inner,
			RawName:     inner,
			Category:    inner,
			IsCategory:  true,
			Key:         inner,
		})
		return st, out
	}

	// 50자를 넘는 텍스트는 직전 항목 설명이 행으로 넘어간 것이다.
	// 이어 붙일 항목이 없으면 버린다.
	if utf8.RuneCountInString(text) > continuationRunes {
		if st.lastIdx >= 0 {
			last := &out[st.lastIdx]
			line := text
			if firstCol > 0 {
				line = strings.Repeat("  ", last.Indent) + text
			}
			if last.Text == "" {
				last.Text = line
			} else {
				last.Text += "\n" + line
			}
			last.Kind = ValueText
		}
		return st, out
	}

	if firstCol > 0 {
		item := buildItem(g, r, firstCol, firstCol, st)
		out = append(out, item)
		st.lastIdx = len(out) - 1
		return st, out
	}

	// 첫 열 항목: 바로 아래 행들이 들여쓰기면 소범주 머리글이다
	if looksLikeSubcategory(g, r) {
		st.subcategory = text
		st.lastIdx = -1
		out = append(out, Item{
			DisplayName:   text,
			RawName:       text,
			Category:      st.category,
			Subcategory:   text,
			IsCategory:    true,
			IsSubcategory: true,
			Key:           joinKey(st.category, "", text),
		})
		return st, out
	}

	item := buildItem(g, r, 0, 0, st)
	out = append(out, item)
	st.lastIdx = len(out) - 1
	return st, out
}

// firstText 행에서 첫 비어있지 않은 셀의 열과 텍스트
func firstText(g *grid.Grid, r int) (int, string, bool) {
	for c := 0; c < g.Cols(); c++ {
		cell, _ := g.Cell(r, c)
		if cell.Kind != grid.KindEmpty {
			return c, cell.Text, true
		}
	}
	return 0, "", false
}

func isNoise(text string) bool {
	if _, ok := denyExact[text]; ok {
		return true
	}
	for _, p := range denyPrefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

// stripBrackets 괄호 쌍으로 감싼 범주 머리글이면 안쪽 텍스트를 돌려준다
func stripBrackets(text string) (string, bool) {
	pairs := [][2]string{
		{"[", "]"},
		{"【", "】"},
	}
	for _, p := range pairs {
		if strings.HasPrefix(text, p[0]) && strings.HasSuffix(text, p[1]) {
			inner := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(text, p[0]), p[1]))
			if inner != "" {
				return inner, true
			}
		}
	}
	return "", false
}

// looksLikeSubcategory 다음 다섯 행 중 둘 이상이 첫 열은 비고
// 1~4열에 내용이 있으면 현재 행을 소범주 머리글로 본다.
// 휴리스틱이므로 오판 가능성은 수용한다.
func looksLikeSubcategory(g *grid.Grid, r int) bool {
	hits := 0
	for k := r + 1; k <= r+lookAheadRows && k < g.Rows(); k++ {
		first, _ := g.Cell(k, 0)
		if first.Kind != grid.KindEmpty {
			continue
		}
		for c := 1; c <= lookAheadCols; c++ {
			cell, _ := g.Cell(k, c)
			if cell.Kind != grid.KindEmpty {
				hits++
				break
			}
		}
	}
	return hits >= lookAheadHits
}

// buildItem 값 탐색과 분류를 거쳐 비범주 항목을 만든다
func buildItem(g *grid.Grid, r, firstCol, indent int, st state) Item {
	raw := g.Value(r, firstCol)
	item := Item{
		DisplayName: displayName(raw, indent),
		RawName:     raw,
		Category:    st.category,
		Subcategory: st.subcategory,
		Indent:      indent,
		Key:         joinKey(st.category, st.subcategory, raw),
	}

	for c := firstCol + 1; c < g.Cols(); c++ {
		cell, _ := g.Cell(r, c)
		if cell.Kind == grid.KindEmpty {
			continue
		}
		if cell.Kind == grid.KindNumber {
			item.Kind = ValueNumber
			item.Number = cell.Number
			item.Text = cell.Text
		} else if utf8.RuneCountInString(cell.Text) >= minNameRunes {
			item.Kind = ValueText
			item.Text = cell.Text
		}
		break
	}
	return item
}

func displayName(raw string, indent int) string {
	if indent == 0 {
		return raw
	}
	return strings.Repeat("  ", indent) + "└ " + raw
}

func joinKey(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}
