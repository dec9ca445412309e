package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const DefaultTimeout = 5 * time.Second

// FailurePayload is posted to the mentor workflow when a check-in fails.
type FailurePayload struct {
	StudentID       string `json:"student_id"`
	FocusMinutes    int    `json:"focus_minutes"`
	QuizScore       int    `json:"quiz_score"`
	CheaterDetected bool   `json:"cheater_detected"`
	Reason          string `json:"reason"`
	LogID           uint   `json:"log_id"`
}

// Sender posts failure notifications to a configured webhook URL. Calls are
// bounded by the timeout and failures are logged, never propagated: the state
// transition that triggered the webhook is already committed.
type Sender struct {
	url     string
	secret  string
	client  *http.Client
	timeout time.Duration
	log     *zap.Logger
}

func NewSender(url, secret string, timeout time.Duration, log *zap.Logger) *Sender {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Sender{
		url:     url,
		secret:  secret,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		log:     log,
	}
}

// Enabled reports whether a webhook URL is configured.
func (s *Sender) Enabled() bool {
	return s != nil && s.url != ""
}

// Send posts the payload synchronously.
func (s *Sender) Send(ctx context.Context, payload FailurePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "sparkworks-backend/1.0")
	if s.secret != "" {
		req.Header.Set("x-backend-secret", s.secret)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// SendAsync posts the payload in the background. Errors are logged and
// swallowed.
func (s *Sender) SendAsync(payload FailurePayload) {
	if !s.Enabled() {
		return
	}
	go func() {
		if err := s.Send(context.Background(), payload); err != nil {
			s.log.Warn("failure webhook not delivered",
				zap.String("student_id", payload.StudentID),
				zap.Uint("log_id", payload.LogID),
				zap.Error(err))
			return
		}
		s.log.Info("failure webhook delivered",
			zap.String("student_id", payload.StudentID),
			zap.Uint("log_id", payload.LogID))
	}()
}
