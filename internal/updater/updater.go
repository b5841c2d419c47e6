// Package updater 공시 수집부터 아카이브 갱신까지 한 번의 작업을 조율한다.
package updater

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"github.com/xuri/excelize/v2"

	"dartarchive/internal/archive"
	"dartarchive/internal/dart"
	"dartarchive/internal/grid"
	"dartarchive/internal/htmltable"
	"dartarchive/internal/notify"
	"dartarchive/internal/outline"
	"dartarchive/internal/sheets"
	"dartarchive/internal/store"
)

// DartAPI 갱신 작업이 쓰는 DART 호출 묶음. *dart.Client가 구현한다.
type DartAPI interface {
	List(ctx context.Context, corpCode string, dr dart.DateRange) ([]dart.Report, error)
	SubDocs(ctx context.Context, rceptNo string) ([]dart.SubDoc, error)
	FetchSubDoc(ctx context.Context, sd dart.SubDoc) ([]byte, error)
	XbrlExtSeq(ctx context.Context, rceptNo string) (string, error)
	DownloadFinancials(ctx context.Context, extSeq string) (*excelize.File, error)
	DownloadNotes(ctx context.Context, extSeq string) (*excelize.File, error)
}

// Config 갱신 작업 설정
type Config struct {
	CorpCode  string
	StartDate string
	EndDate   string
	// Archive 아카이브 시트의 열 할당과 메타데이터 위치
	Archive archive.WriterConfig
	// OutlineSheet 주석 개요를 누적하는 시트 이름
	OutlineSheet string
	// UnitDivisor 주석 숫자 값에 적용하는 단위 제수
	UnitDivisor float64
	// Retry DART 호출의 할당량 초과 재시도
	Retry sheets.RetryConfig
}

// Result 작업 한 번의 요약
type Result struct {
	RunID        string
	Quarter      string
	Column       string
	Requests     int
	Resolved     int
	Skipped      int
	NewReports   int
	OutlineItems int
}

// Updater 갱신 조율기
type Updater struct {
	provider sheets.Provider
	dart     DartAPI
	store    *store.Store
	notifier *notify.Notifier
	cfg      Config
}

func New(provider sheets.Provider, api DartAPI, st *store.Store, notifier *notify.Notifier, cfg Config) *Updater {
	if cfg.OutlineSheet == "" {
		cfg.OutlineSheet = "Notes_Outline"
	}
	if cfg.UnitDivisor == 0 {
		cfg.UnitDivisor = 1
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry = sheets.DefaultRetryConfig()
	}
	return &Updater{
		provider: provider,
		dart:     api,
		store:    st,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Run 갱신 작업 한 번을 끝까지 수행한다.
// 개별 공시나 요청의 실패는 건너뛰고, 아카이브 시트가 비어 있는 등
// 전체 전제가 깨진 경우에만 오류로 끝난다.
func (u *Updater) Run(ctx context.Context, now time.Time) (Result, error) {
	quarter := archive.QuarterLabel(now)

	runID, err := u.store.CreateRun(quarter)
	if err != nil {
		return Result{}, err
	}

	result, err := u.run(ctx, now, quarter, runID)
	result.RunID = runID
	result.Quarter = quarter

	if err != nil {
		if cerr := u.store.CompleteRun(runID, result.Column, result.Resolved, result.Skipped,
			store.RunStatusFailed, err.Error()); cerr != nil {
			slog.Error("작업 실패 기록 실패", "error", cerr)
		}
		u.notifier.SendBestEffort(ctx, fmt.Sprintf("[DART 아카이브] %s 갱신 실패: %v", quarter, err))
		return result, err
	}

	if cerr := u.store.CompleteRun(runID, result.Column, result.Resolved, result.Skipped,
		store.RunStatusDone, ""); cerr != nil {
		slog.Error("작업 완료 기록 실패", "error", cerr)
	}
	u.notifier.SendBestEffort(ctx, summaryMessage(result))
	return result, nil
}

func (u *Updater) run(ctx context.Context, now time.Time, quarter, runID string) (Result, error) {
	var result Result

	newReports, outlineItems, err := u.ingestReports(ctx, now, quarter, runID)
	if err != nil {
		return result, err
	}
	result.NewReports = newReports
	result.OutlineItems = outlineItems

	ledger, err := u.provider.Grid(ctx, u.cfg.Archive.Sheet)
	if err != nil {
		return result, fmt.Errorf("아카이브 시트 읽기: %w", err)
	}

	requests := archive.ParseRequests(ledger, u.cfg.Archive.StartRow)
	result.Requests = len(requests)

	engine := archive.NewEngine(u.provider)
	values, err := engine.Resolve(ctx, requests)
	if err != nil {
		return result, err
	}
	result.Resolved = len(values)
	result.Skipped = len(requests) - len(values)

	writer := archive.NewWriter(u.provider, u.cfg.Archive)
	wr, err := writer.Commit(ctx, values, now)
	if err != nil {
		return result, err
	}
	result.Column = wr.ColumnName
	return result, nil
}

// ingestReports 새 공시를 내려받아 시트로 올리고 주석 개요를 누적한다.
// 처리한 공시 수와 개요 항목 수를 돌려준다.
func (u *Updater) ingestReports(ctx context.Context, now time.Time, quarter, runID string) (int, int, error) {
	dr, err := dart.ResolveRange(u.cfg.StartDate, u.cfg.EndDate, now)
	if err != nil {
		return 0, 0, err
	}

	var reports []dart.Report
	err = u.retryQuota(ctx, func() error {
		var lerr error
		reports, lerr = u.dart.List(ctx, u.cfg.CorpCode, dr)
		return lerr
	})
	if err != nil {
		return 0, 0, fmt.Errorf("공시 목록 조회: %w", err)
	}

	processed, items := 0, 0
	for _, report := range reports {
		done, err := u.store.IsProcessed(report.RceptNo)
		if err != nil {
			return processed, items, err
		}
		if done {
			slog.Debug("이미 처리한 공시", "rcept_no", report.RceptNo)
			continue
		}

		n, err := u.processReport(ctx, report, quarter)
		if err != nil {
			// 공시 한 건의 실패는 나머지를 막지 않는다
			slog.Warn("공시 처리 실패", "rcept_no", report.RceptNo, "report", report.ReportNm, "error", err)
			continue
		}
		if err := u.store.MarkProcessed(report.RceptNo, report.ReportNm, report.RceptDt, runID); err != nil {
			return processed, items, err
		}
		processed++
		items += n
	}
	return processed, items, nil
}

// processReport 공시 한 건: XBRL 엑셀과 본문 표를 시트로 올리고
// 주석 개요 항목 수를 돌려준다.
func (u *Updater) processReport(ctx context.Context, report dart.Report, quarter string) (int, error) {
	var extSeq string
	err := u.retryQuota(ctx, func() error {
		var xerr error
		extSeq, xerr = u.dart.XbrlExtSeq(ctx, report.RceptNo)
		return xerr
	})
	if err != nil {
		return 0, fmt.Errorf("xbrlExtSeq 조회: %w", err)
	}

	var fin, notes *excelize.File
	if err := u.retryQuota(ctx, func() error {
		var derr error
		fin, derr = u.dart.DownloadFinancials(ctx, extSeq)
		return derr
	}); err != nil {
		return 0, fmt.Errorf("재무제표 다운로드: %w", err)
	}
	defer fin.Close()

	if err := u.retryQuota(ctx, func() error {
		var derr error
		notes, derr = u.dart.DownloadNotes(ctx, extSeq)
		return derr
	}); err != nil {
		return 0, fmt.Errorf("주석 다운로드: %w", err)
	}
	defer notes.Close()

	if err := u.uploadWorkbook(ctx, fin, "XBRL", report.RceptNo); err != nil {
		return 0, err
	}
	if err := u.uploadWorkbook(ctx, notes, "XBRL_주석", report.RceptNo); err != nil {
		return 0, err
	}
	if err := u.uploadSubDocs(ctx, report.RceptNo); err != nil {
		slog.Warn("본문 표 업로드 실패", "rcept_no", report.RceptNo, "error", err)
	}

	return u.commitOutline(ctx, notes, quarter)
}

// uploadWorkbook 받은 엑셀의 모든 시트를 아카이브 통합문서로 복사한다
func (u *Updater) uploadWorkbook(ctx context.Context, f *excelize.File, prefix, rceptNo string) error {
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return fmt.Errorf("시트 읽기 (%s): %w", name, err)
		}
		if len(rows) == 0 {
			continue
		}

		target := sheetTitle(prefix, name, rceptNo)
		if err := u.provider.EnsureSheet(ctx, target); err != nil {
			return err
		}
		if err := u.provider.Clear(ctx, target); err != nil {
			return err
		}
		if err := u.provider.Update(ctx, target, sheets.RangeUpdate{Ref: "A1", Values: rows}); err != nil {
			return err
		}
	}
	return nil
}

// uploadSubDocs 공시 본문 하위 문서의 표를 시트로 올린다
func (u *Updater) uploadSubDocs(ctx context.Context, rceptNo string) error {
	subs, err := u.dart.SubDocs(ctx, rceptNo)
	if err != nil {
		return err
	}
	for _, sd := range subs {
		body, err := u.dart.FetchSubDoc(ctx, sd)
		if err != nil {
			slog.Warn("하위 문서 조회 실패", "rcept_no", rceptNo, "ele_id", sd.EleID, "error", err)
			continue
		}
		rows, err := htmltable.ParseAll(bytes.NewReader(body))
		if err != nil || len(rows) == 0 {
			continue
		}

		header := [][]string{{sd.Title, rceptNo}, {}}
		rows = append(header, rows...)

		target := sheetTitle("HTML", sd.EleID, rceptNo)
		if err := u.provider.EnsureSheet(ctx, target); err != nil {
			return err
		}
		if err := u.provider.Clear(ctx, target); err != nil {
			return err
		}
		if err := u.provider.Update(ctx, target, sheets.RangeUpdate{Ref: "A1", Values: rows}); err != nil {
			return err
		}
	}
	return nil
}

// commitOutline 주석 엑셀의 모든 시트에서 개요를 뽑아 누적 시트에 덧붙인다
func (u *Updater) commitOutline(ctx context.Context, notes *excelize.File, quarter string) (int, error) {
	var items []outline.Item
	for _, name := range notes.GetSheetList() {
		rows, err := notes.GetRows(name)
		if err != nil {
			return 0, fmt.Errorf("주석 시트 읽기 (%s): %w", name, err)
		}
		items = append(items, outline.Extract(grid.New(rows))...)
	}
	if len(items) == 0 {
		return 0, nil
	}

	writer := archive.NewWriter(u.provider, u.cfg.Archive)
	rows := outline.Linearize(items, quarter, u.cfg.UnitDivisor)
	if _, err := writer.AppendSection(ctx, u.cfg.OutlineSheet, rows); err != nil {
		return 0, fmt.Errorf("개요 누적 실패: %w", err)
	}
	return len(items), nil
}

// retryQuota 할당량 초과만 물러났다 다시 시도한다
func (u *Updater) retryQuota(ctx context.Context, fn func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = u.cfg.Retry.InitialInterval

	return backoff.Retry(func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, sheets.ErrQuotaExceeded) {
			slog.Warn("할당량 초과, 재시도 대기", "error", err)
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(bo, u.cfg.Retry.MaxRetries), ctx))
}

// maxSheetTitleRunes xlsx 시트 이름 한도
const maxSheetTitleRunes = 31

// sheetTitle 시트 이름을 만든다. 한도를 넘으면 접수번호 꼬리를 지키기 위해
// 가운데 시트 이름 조각부터 줄인다.
func sheetTitle(prefix, name, rceptNo string) string {
	title := fmt.Sprintf("%s_%s_%s", prefix, name, rceptNo)
	if utf8.RuneCountInString(title) <= maxSheetTitleRunes {
		return title
	}

	budget := maxSheetTitleRunes - utf8.RuneCountInString(prefix) - utf8.RuneCountInString(rceptNo) - 2
	if budget > 0 {
		nameRunes := []rune(name)
		if len(nameRunes) > budget {
			nameRunes = nameRunes[:budget]
		}
		title = fmt.Sprintf("%s_%s_%s", prefix, string(nameRunes), rceptNo)
	}

	runes := []rune(title)
	if len(runes) > maxSheetTitleRunes {
		runes = runes[:maxSheetTitleRunes]
	}
	return string(runes)
}

func summaryMessage(r Result) string {
	return fmt.Sprintf("[DART 아카이브] %s 갱신 완료: 신규 공시 %d건, 요청 %d건 중 %d건 기록(%d건 건너뜀), 열 %s, 개요 항목 %d건",
		r.Quarter, r.NewReports, r.Requests, r.Resolved, r.Skipped, r.Column, r.OutlineItems)
}
