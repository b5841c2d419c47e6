package dart

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"dartarchive/internal/sheets"
)

// viewDocPattern 뷰어 페이지 스크립트의 viewDoc('rcpNo','dcmNo','eleId','offset','length','dtd') 호출
var viewDocPattern = regexp.MustCompile(`viewDoc\('([^']*)',\s*'([^']*)',\s*'([^']*)',\s*'([^']*)',\s*'([^']*)',\s*'([^']*)'\)`)

// XBRL 뷰어 페이지의 다운로드 식별자. 스크립트와 onclick은 viewDoc('NNN')
// 한 인자 호출이고, iframe 주소에만 xbrlExtSeq= 쿼리가 직접 온다.
var (
	xbrlViewDocPattern = regexp.MustCompile(`viewDoc\s*\(\s*'(\d+)'`)
	xbrlExtSeqPattern  = regexp.MustCompile(`xbrlExtSeq=(\d+)`)
)

// SubDoc 공시 본문을 구성하는 하위 문서 하나의 뷰어 좌표
type SubDoc struct {
	RcpNo  string
	DcmNo  string
	EleID  string
	Offset string
	Length string
	Dtd    string
	Title  string
}

// SubDocs 공시 뷰어 페이지에서 하위 문서 목록을 찾는다.
// 목록 구성은 스크립트 안 viewDoc 호출에서 읽어낸다.
func (c *Client) SubDocs(ctx context.Context, rceptNo string) ([]SubDoc, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("rcpNo", rceptNo).
		Get(c.viewerBase + "/dsaf001/main.do")
	if err != nil {
		return nil, fmt.Errorf("공시 뷰어 페이지 조회: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("공시 뷰어 페이지 해석: %w", err)
	}

	var subs []SubDoc
	seen := make(map[string]struct{})
	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		for _, m := range viewDocPattern.FindAllStringSubmatch(sel.Text(), -1) {
			key := m[2] + "/" + m[3]
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			subs = append(subs, SubDoc{
				RcpNo: m[1], DcmNo: m[2], EleID: m[3],
				Offset: m[4], Length: m[5], Dtd: m[6],
			})
		}
	})

	// 트리 노드의 텍스트가 있으면 제목으로 붙인다
	titles := doc.Find("#listTree a, .tree a")
	titles.Each(func(i int, sel *goquery.Selection) {
		if i < len(subs) {
			subs[i].Title = strings.TrimSpace(sel.Text())
		}
	})
	return subs, nil
}

// FetchSubDoc 하위 문서 본문(HTML)을 내려받는다
func (c *Client) FetchSubDoc(ctx context.Context, sd SubDoc) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"rcpNo":  sd.RcpNo,
			"dcmNo":  sd.DcmNo,
			"eleId":  sd.EleID,
			"offset": sd.Offset,
			"length": sd.Length,
			"dtd":    sd.Dtd,
		}).
		Get(c.viewerBase + "/report/viewer.do")
	if err != nil {
		return nil, fmt.Errorf("하위 문서 조회: %w", err)
	}
	return resp.Body(), nil
}

// XbrlExtSeq XBRL 뷰어 페이지에서 다운로드 식별자를 찾는다.
// 스크립트, onclick 속성, iframe 주소 순으로 뒤진다.
func (c *Client) XbrlExtSeq(ctx context.Context, rceptNo string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("rcpNo", rceptNo).
		Get(c.apiBase + "/xbrl/viewer/main.do")
	if err != nil {
		return "", fmt.Errorf("XBRL 뷰어 페이지 조회: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return "", fmt.Errorf("XBRL 뷰어 페이지 해석: %w", err)
	}

	var seq string
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		seq = extractSeq(sel.Text())
		return seq == ""
	})
	if seq == "" {
		doc.Find("[onclick]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			onclick, _ := sel.Attr("onclick")
			seq = extractSeq(onclick)
			return seq == ""
		})
	}
	if seq == "" {
		doc.Find("iframe").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			src, _ := sel.Attr("src")
			if m := xbrlExtSeqPattern.FindStringSubmatch(src); m != nil {
				seq = m[1]
				return false
			}
			return true
		})
	}
	if seq == "" {
		return "", fmt.Errorf("xbrlExtSeq를 찾지 못함: rcpNo=%s", rceptNo)
	}
	return seq, nil
}

// extractSeq 스크립트/onclick 텍스트에서 다운로드 식별자를 찾는다.
// viewDoc 호출 형태를 먼저 보고, 쿼리 문자열이 그대로 박힌 경우도 받는다.
func extractSeq(text string) string {
	if m := xbrlViewDocPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := xbrlExtSeqPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// DownloadFinancials XBRL 재무제표 통합 엑셀을 받는다
func (c *Client) DownloadFinancials(ctx context.Context, extSeq string) (*excelize.File, error) {
	return c.downloadExcel(ctx, "/xbrl/viewer/download/excel/financialStatements.do", extSeq)
}

// DownloadNotes XBRL 주석 엑셀을 받는다
func (c *Client) DownloadNotes(ctx context.Context, extSeq string) (*excelize.File, error) {
	return c.downloadExcel(ctx, "/xbrl/viewer/download/excel/notes.do", extSeq)
}

func (c *Client) downloadExcel(ctx context.Context, path, extSeq string) (*excelize.File, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"xbrlExtSeq": extSeq,
			"lang":       "ko",
		}).
		Get(c.apiBase + path)
	if err != nil {
		return nil, fmt.Errorf("엑셀 다운로드: %w", err)
	}

	body := resp.Body()
	if bytes.Contains(body, []byte("Quota exceeded")) {
		return nil, fmt.Errorf("엑셀 다운로드 (%s): %w", path, sheets.ErrQuotaExceeded)
	}
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("엑셀 파일 해석 (%s): %w", path, err)
	}
	return f, nil
}
