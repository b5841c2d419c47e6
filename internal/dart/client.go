// Package dart OpenDART 공시 목록 조회와 XBRL 재무제표 다운로드.
package dart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"dartarchive/internal/sheets"
)

const (
	defaultAPIBase    = "https://opendart.fss.or.kr"
	defaultViewerBase = "https://dart.fss.or.kr"

	// statusOK / statusQuota OpenDART 응답 코드
	statusOK    = "000"
	statusQuota = "020"
	// statusNoData 조회 결과 없음은 오류가 아니다
	statusNoData = "013"
)

// Report 공시 목록의 한 건
type Report struct {
	RceptNo  string `json:"rcept_no"`
	ReportNm string `json:"report_nm"`
	RceptDt  string `json:"rcept_dt"`
	CorpName string `json:"corp_name"`
	CorpCode string `json:"corp_code"`
}

type listResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	List    []Report `json:"list"`
}

// Client OpenDART API와 DART 뷰어 양쪽을 상대한다
type Client struct {
	http       *resty.Client
	apiKey     string
	apiBase    string
	viewerBase string
}

// Option Client 생성 옵션
type Option func(*Client)

// WithAPIBase 테스트용 OpenDART 주소 교체
func WithAPIBase(base string) Option {
	return func(c *Client) { c.apiBase = base }
}

// WithViewerBase 테스트용 DART 뷰어 주소 교체
func WithViewerBase(base string) Option {
	return func(c *Client) { c.viewerBase = base }
}

// WithHTTPClient 전송 계층 교체
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = resty.NewWithClient(hc) }
}

func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		http:       resty.New().SetTimeout(30 * time.Second),
		apiKey:     apiKey,
		apiBase:    defaultAPIBase,
		viewerBase: defaultViewerBase,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// List 기간 내 정기공시(A) 목록을 최종보고서 기준으로 가져온다.
// 조회 결과가 없으면 빈 슬라이스를 돌려준다.
func (c *Client) List(ctx context.Context, corpCode string, dr DateRange) ([]Report, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"crtfc_key":     c.apiKey,
			"corp_code":     corpCode,
			"bgn_de":        dr.Start.Format("20060102"),
			"end_de":        dr.End.Format("20060102"),
			"pblntf_ty":     "A",
			"last_reprt_at": "Y",
			"page_count":    "100",
		}).
		Get(c.apiBase + "/api/list.json")
	if err != nil {
		return nil, fmt.Errorf("공시 목록 조회: %w", err)
	}

	var lr listResponse
	if err := json.Unmarshal(resp.Body(), &lr); err != nil {
		return nil, fmt.Errorf("공시 목록 응답 해석: %w", err)
	}
	switch lr.Status {
	case statusOK:
		return lr.List, nil
	case statusNoData:
		return nil, nil
	case statusQuota:
		return nil, fmt.Errorf("공시 목록 조회 (%s): %w", lr.Message, sheets.ErrQuotaExceeded)
	default:
		return nil, fmt.Errorf("공시 목록 조회 실패: status=%s message=%s", lr.Status, lr.Message)
	}
}
