package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const defaultGoogleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleUserInfo はGoogleのIDトークンから取得したユーザー情報を表す。
type GoogleUserInfo struct {
	Sub           string
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// GoogleVerifier はGoogleのIDトークン検証のインターフェース。
type GoogleVerifier interface {
	// VerifyIDToken はIDトークンを検証し、ユーザー情報を返す。
	// トークンが無効またはaudienceが一致しない場合はErrInvalidTokenを返す。
	VerifyIDToken(ctx context.Context, idToken string) (*GoogleUserInfo, error)
}

// GoogleTokenInfoVerifier はGoogleのtokeninfoエンドポイントでIDトークンを検証する。
type GoogleTokenInfoVerifier struct {
	clientID string

	// テスト用にオーバーライド可能なURL
	tokenInfoURL string
}

// NewGoogleTokenInfoVerifier はGoogleTokenInfoVerifierを生成する。
func NewGoogleTokenInfoVerifier(clientID string) *GoogleTokenInfoVerifier {
	return &GoogleTokenInfoVerifier{
		clientID:     clientID,
		tokenInfoURL: defaultGoogleTokenInfoURL,
	}
}

// WithTokenInfoURL はtokeninfoエンドポイントのURLを差し替える（テスト用）。
func (v *GoogleTokenInfoVerifier) WithTokenInfoURL(u string) *GoogleTokenInfoVerifier {
	v.tokenInfoURL = u
	return v
}

// tokenInfoResponse はtokeninfoエンドポイントのレスポンス。
type tokenInfoResponse struct {
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// VerifyIDToken はIDトークンを検証し、ユーザー情報を返す。
func (v *GoogleTokenInfoVerifier) VerifyIDToken(ctx context.Context, idToken string) (*GoogleUserInfo, error) {
	reqURL := v.tokenInfoURL + "?" + url.Values{"id_token": {idToken}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokeninfo request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokeninfo response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidToken
	}

	var info tokenInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse tokeninfo response: %w", err)
	}

	// audienceが自分のクライアントIDでないトークンは他アプリ向けなので拒否する
	if info.Aud != v.clientID {
		return nil, ErrInvalidToken
	}
	if info.Sub == "" || info.Email == "" {
		return nil, ErrInvalidToken
	}

	return &GoogleUserInfo{
		Sub:           info.Sub,
		Email:         info.Email,
		Name:          info.Name,
		Picture:       info.Picture,
		EmailVerified: info.EmailVerified == "true",
	}, nil
}

// compile-time interface check
var _ GoogleVerifier = (*GoogleTokenInfoVerifier)(nil)
