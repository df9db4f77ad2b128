// Package email はResend API経由のトランザクションメール送信を提供する。
package email

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const defaultResendBaseURL = "https://api.resend.com"

// Sender はメール送信のインターフェース。
type Sender interface {
	// Send はHTMLメールを1通送信する。
	Send(ctx context.Context, to, subject, html string) error
}

// ResendClient はResend APIのクライアント。
type ResendClient struct {
	client *resty.Client
	from   string
}

// NewResendClient はResendClientを生成する。
func NewResendClient(apiKey, from string) *ResendClient {
	client := resty.New().
		SetBaseURL(defaultResendBaseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")

	return &ResendClient{
		client: client,
		from:   from,
	}
}

// WithBaseURL はAPIのベースURLを差し替える（テスト用）。
func (c *ResendClient) WithBaseURL(baseURL string) *ResendClient {
	c.client.SetBaseURL(baseURL)
	return c
}

// sendRequest はResendの送信エンドポイントへのリクエストボディ。
type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// sendResponse はResendの送信エンドポイントのレスポンス。
type sendResponse struct {
	ID string `json:"id"`
}

// Send はHTMLメールを1通送信する。
func (c *ResendClient) Send(ctx context.Context, to, subject, html string) error {
	var result sendResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(sendRequest{
			From:    c.from,
			To:      []string{to},
			Subject: subject,
			HTML:    html,
		}).
		SetResult(&result).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("resend API returned status %d: %s", resp.StatusCode(), resp.String())
	}

	return nil
}

// compile-time interface check
var _ Sender = (*ResendClient)(nil)
