// Package notify 갱신 결과를 텔레그램 채널로 알린다.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier 텔레그램 봇 메시지 발송기.
// 알림 실패는 갱신 작업을 멈추지 않는다.
type Notifier struct {
	http    *resty.Client
	token   string
	chatID  string
	apiBase string
}

type Option func(*Notifier)

// WithAPIBase 테스트용 API 주소 교체
func WithAPIBase(base string) Option {
	return func(n *Notifier) { n.apiBase = base }
}

func New(token, chatID string, opts ...Option) *Notifier {
	n := &Notifier{
		http:    resty.New().SetTimeout(10 * time.Second),
		token:   token,
		chatID:  chatID,
		apiBase: defaultAPIBase,
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Enabled 토큰과 채널이 모두 설정됐는지
func (n *Notifier) Enabled() bool {
	return n.token != "" && n.chatID != ""
}

// Send 메시지 한 건 발송. 설정이 없으면 조용히 넘어간다.
func (n *Notifier) Send(ctx context.Context, text string) error {
	if !n.Enabled() {
		return nil
	}
	resp, err := n.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id": n.chatID,
			"text":    text,
		}).
		Post(fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.token))
	if err != nil {
		return fmt.Errorf("텔레그램 발송: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("텔레그램 발송 실패: status=%d body=%s", resp.StatusCode(), resp.Body())
	}
	return nil
}

// SendBestEffort 실패를 로그로만 남긴다
func (n *Notifier) SendBestEffort(ctx context.Context, text string) {
	if err := n.Send(ctx, text); err != nil {
		slog.Warn("알림 발송 실패", "error", err)
	}
}
