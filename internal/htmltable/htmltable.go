// Package htmltable DART 공시 본문(HTML)의 표를 행렬로 바꾼다.
package htmltable

import (
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var spacePattern = regexp.MustCompile(`\s+`)

// Table 문서 안의 표 하나
type Table struct {
	Rows [][]string
}

// Parse 문서의 모든 표를 문서 순서대로 추출한다.
// 셀 텍스트는 연속 공백을 한 칸으로 접는다. 표가 없으면 빈 슬라이스.
func Parse(r io.Reader) ([]Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var tables []Table
	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		var rows [][]string
		sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, cleanText(cell.Text()))
			})
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
		})
		if len(rows) > 0 {
			tables = append(tables, Table{Rows: rows})
		}
	})
	return tables, nil
}

// ParseAll 모든 표의 행을 순서대로 이어 붙인다. 표 사이에는 빈 행을 넣는다.
func ParseAll(r io.Reader) ([][]string, error) {
	tables, err := Parse(r)
	if err != nil {
		return nil, err
	}
	var rows [][]string
	for i, t := range tables {
		if i > 0 {
			rows = append(rows, []string{})
		}
		rows = append(rows, t.Rows...)
	}
	return rows, nil
}

func cleanText(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}
