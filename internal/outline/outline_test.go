package outline

import (
	"strings"
	"testing"

	"dartarchive/internal/grid"
)

func TestExtract_CategoryItemAndContinuation(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("상세 설명이 이어지는 긴 문장입니다 ", 4)
	g := grid.New([][]string{
		{"[개요]"},
		{"", "항목A", "100"},
		{long},
	})

	items := Extract(g)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	cat := items[0]
	if !cat.IsCategory || cat.RawName != "개요" {
		t.Fatalf("expected category 개요, got %+v", cat)
	}

	it := items[1]
	if it.RawName != "항목A" || it.Category != "개요" {
		t.Fatalf("unexpected item: %+v", it)
	}
	if it.Indent != 1 {
		t.Fatalf("expected indent 1, got %d", it.Indent)
	}
	if it.Kind != ValueText {
		t.Fatalf("continuation should turn value into text, got kind %d", it.Kind)
	}
	if !strings.HasPrefix(it.Text, "100\n") || !strings.Contains(it.Text, "상세 설명") {
		t.Fatalf("long row not appended to previous item: %q", it.Text)
	}
}

func TestExtract_NumericValue(t *testing.T) {
	t.Parallel()

	g := grid.New([][]string{
		{"[재무]"},
		{"", "매출액", "", "1,234"},
	})

	items := Extract(g)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	it := items[1]
	if it.Kind != ValueNumber || it.Number != 1234 {
		t.Fatalf("expected numeric 1234, got kind=%d number=%v", it.Kind, it.Number)
	}
	if it.Text != "1,234" {
		t.Fatalf("raw value text lost: %q", it.Text)
	}
}

func TestExtract_SubcategoryLookahead(t *testing.T) {
	t.Parallel()

	g := grid.New([][]string{
		{"[충당부채]"},
		{"판매보증충당부채"},
		{"", "기초잔액", "500"},
		{"", "전입액", "200"},
		{"", "기말잔액", "700"},
	})

	items := Extract(g)
	if len(items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(items))
	}

	sub := items[1]
	if !sub.IsSubcategory || sub.RawName != "판매보증충당부채" {
		t.Fatalf("expected subcategory heading, got %+v", sub)
	}
	if sub.Category != "충당부채" {
		t.Fatalf("subcategory has wrong category: %q", sub.Category)
	}

	leaf := items[2]
	if leaf.Subcategory != "판매보증충당부채" {
		t.Fatalf("leaf item missing subcategory: %+v", leaf)
	}
	if leaf.Key != "충당부채/판매보증충당부채/기초잔액" {
		t.Fatalf("unexpected key: %q", leaf.Key)
	}
}

func TestExtract_ColumnAItemWithoutFollowers(t *testing.T) {
	t.Parallel()

	g := grid.New([][]string{
		{"[개요]"},
		{"회사개요", "삼성전자"},
		{"설립일", "1969년"},
	})

	items := Extract(g)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	it := items[1]
	if it.IsCategory || it.IsSubcategory {
		t.Fatalf("plain row misread as heading: %+v", it)
	}
	if it.Indent != 0 || it.Kind != ValueText || it.Text != "삼성전자" {
		t.Fatalf("unexpected column-A item: %+v", it)
	}
}

func TestExtract_SkipsNoiseAndShortText(t *testing.T) {
	t.Parallel()

	g := grid.New([][]string{
		{"(단위: 백만원)"},
		{"전체목차"},
		{"가"},
		{"", "항목B", "10"},
	})

	items := Extract(g)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].RawName != "항목B" {
		t.Fatalf("unexpected item: %+v", items[0])
	}
}

func TestExtract_FullWidthBrackets(t *testing.T) {
	t.Parallel()

	g := grid.New([][]string{
		{"【우발부채】"},
		{"", "지급보증", "300"},
	})

	items := Extract(g)
	if len(items) != 2 || !items[0].IsCategory || items[0].RawName != "우발부채" {
		t.Fatalf("full-width bracket heading not recognized: %+v", items)
	}
	if items[1].Category != "우발부채" {
		t.Fatalf("item not attached to category: %+v", items[1])
	}
}

func TestExtract_CategoryResetsSubcategory(t *testing.T) {
	t.Parallel()

	g := grid.New([][]string{
		{"[충당부채]"},
		{"판매보증충당부채"},
		{"", "기초잔액", "500"},
		{"", "기말잔액", "700"},
		{"[우발부채]"},
		{"", "지급보증", "300"},
	})

	items := Extract(g)
	last := items[len(items)-1]
	if last.Category != "우발부채" || last.Subcategory != "" {
		t.Fatalf("subcategory not reset on new category: %+v", last)
	}
}

func TestExtract_ContinuationIgnoredAfterCategory(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("범주 바로 다음에 오는 매우 긴 설명 문장 ", 4)
	g := grid.New([][]string{
		{"[개요]"},
		{long},
	})

	// 직전 항목이 없으므로 긴 행은 버려진다
	items := Extract(g)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}

func TestExtract_DisplayNameIndent(t *testing.T) {
	t.Parallel()

	g := grid.New([][]string{
		{"", "", "깊은항목", "42"},
	})

	items := Extract(g)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].DisplayName != "    └ 깊은항목" {
		t.Fatalf("unexpected display name: %q", items[0].DisplayName)
	}
}
