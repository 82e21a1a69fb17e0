package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SMSSender posts messages to a JSON SMS gateway with bearer auth.
type SMSSender struct {
	url    string
	apiKey string
	sender string
	client *http.Client
}

type smsRequest struct {
	Recipient  string `json:"recipient"`
	SenderName string `json:"sender_name"`
	Message    string `json:"message"`
}

func NewSMSSender(url, apiKey, sender string) *SMSSender {
	return &SMSSender{
		url:    url,
		apiKey: apiKey,
		sender: sender,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SMSSender) Send(ctx context.Context, msg Message) error {
	phone := strings.TrimSpace(msg.Recipient)
	if phone == "" {
		return ErrNoRecipient
	}

	payload, err := json.Marshal(smsRequest{Recipient: phone, SenderName: s.sender, Message: msg.Body})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
