package sheets

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"dartarchive/internal/grid"
)

// RetryConfig 재시도 동작 설정
type RetryConfig struct {
	// MaxRetries 한도 초과 시 최대 재시도 횟수
	MaxRetries uint64
	// InitialInterval 첫 대기 시간
	InitialInterval time.Duration
}

// DefaultRetryConfig 기본 재시도 설정
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      5,
		InitialInterval: 2 * time.Second,
	}
}

// Retry 한도 초과 오류만 지수 백오프로 재시도하는 Provider 장식자.
// 그 밖의 전송 오류는 대개 인증/권한 문제라 재시도로 해결되지 않으므로
// 즉시 돌려준다.
type Retry struct {
	inner Provider
	cfg   RetryConfig
}

// NewRetry 재시도 장식자 생성
func NewRetry(inner Provider, cfg RetryConfig) *Retry {
	return &Retry{inner: inner, cfg: cfg}
}

func (r *Retry) do(ctx context.Context, op string, fn func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.cfg.InitialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, r.cfg.MaxRetries), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrQuotaExceeded) {
			slog.Warn("전송 한도 초과, 재시도 대기", "op", op, "attempt", attempt)
			return err
		}
		return backoff.Permanent(err)
	}, policy)
}

func (r *Retry) Grid(ctx context.Context, sheet string) (*grid.Grid, error) {
	var g *grid.Grid
	err := r.do(ctx, "grid", func() error {
		var err error
		g, err = r.inner.Grid(ctx, sheet)
		return err
	})
	return g, err
}

func (r *Retry) Update(ctx context.Context, sheet string, u RangeUpdate) error {
	return r.do(ctx, "update", func() error {
		return r.inner.Update(ctx, sheet, u)
	})
}

func (r *Retry) BatchUpdate(ctx context.Context, sheet string, updates []RangeUpdate) error {
	return r.do(ctx, "batch_update", func() error {
		return r.inner.BatchUpdate(ctx, sheet, updates)
	})
}

func (r *Retry) AppendRows(ctx context.Context, sheet string, rows [][]string) error {
	return r.do(ctx, "append_rows", func() error {
		return r.inner.AppendRows(ctx, sheet, rows)
	})
}

func (r *Retry) EnsureSheet(ctx context.Context, sheet string) error {
	return r.do(ctx, "ensure_sheet", func() error {
		return r.inner.EnsureSheet(ctx, sheet)
	})
}

func (r *Retry) Clear(ctx context.Context, sheet string) error {
	return r.do(ctx, "clear", func() error {
		return r.inner.Clear(ctx, sheet)
	})
}
