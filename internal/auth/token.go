package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPurpose はトークンの用途を表す。
// 用途が異なるトークンは相互に受理されない。
type TokenPurpose string

const (
	// PurposeSession はAPIアクセス用のセッショントークン。
	PurposeSession TokenPurpose = "session"
	// PurposeVerification はメールアドレス確認用のトークン。
	PurposeVerification TokenPurpose = "verification"
	// PurposePasswordReset はパスワードリセット用のトークン。
	PurposePasswordReset TokenPurpose = "password_reset"
)

// ErrInvalidToken は署名不正・期限切れ・用途不一致のいずれかを表す。
// 呼び出し側が失敗理由を区別できないよう、単一のセンチネルに集約する。
var ErrInvalidToken = errors.New("invalid token")

// TokenService はHMAC-SHA256署名付きJWTの発行と検証を提供する。
type TokenService struct {
	secret []byte
	now    func() time.Time // テスト用に差し替え可能
}

// NewTokenService はTokenServiceを生成する。
func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue は指定subject（メールアドレス）・用途・有効期間のトークンを発行する。
func (s *TokenService) Issue(subject string, purpose TokenPurpose, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":     subject,
		"purpose": string(purpose),
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、subjectを返す。
// 署名不正・期限切れ・用途不一致のいずれの場合もErrInvalidTokenを返す。
func (s *TokenService) Verify(tokenString string, purpose TokenPurpose) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	claimedPurpose, _ := claims["purpose"].(string)
	if claimedPurpose != string(purpose) {
		return "", ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrInvalidToken
	}

	return sub, nil
}
