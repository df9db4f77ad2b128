package auth

import (
	"errors"
	"testing"
	"time"
)

// 発行したトークンが同じ用途で検証できることを検証
func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService("test-secret")

	token, err := svc.Issue("user-1", PurposeSession, 30*time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	userID, err := svc.Verify(token, PurposeSession)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if userID != "user-1" {
		t.Errorf("Verify() userID = %q, want %q", userID, "user-1")
	}
}

// 用途が異なるトークンは受理されないことを検証
func TestTokenService_Verify_PurposeMismatch(t *testing.T) {
	svc := NewTokenService("test-secret")

	cases := []struct {
		name   string
		issue  TokenPurpose
		verify TokenPurpose
	}{
		{"セッショントークンを確認用途で検証", PurposeSession, PurposeVerification},
		{"確認トークンをセッション用途で検証", PurposeVerification, PurposeSession},
		{"リセットトークンをセッション用途で検証", PurposePasswordReset, PurposeSession},
		{"確認トークンをリセット用途で検証", PurposeVerification, PurposePasswordReset},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := svc.Issue("user-1", tc.issue, time.Hour)
			if err != nil {
				t.Fatalf("Issue() error = %v", err)
			}

			_, err = svc.Verify(token, tc.verify)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

// 期限切れトークンが拒否されることを検証
func TestTokenService_Verify_Expired(t *testing.T) {
	svc := NewTokenService("test-secret")

	token, err := svc.Issue("user-1", PurposeSession, time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// 検証時刻を有効期限より後に進める
	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	_, err = svc.Verify(token, PurposeSession)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

// 異なる秘密鍵で署名されたトークンが拒否されることを検証
func TestTokenService_Verify_WrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a")
	verifier := NewTokenService("secret-b")

	token, err := issuer.Issue("user-1", PurposeSession, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = verifier.Verify(token, PurposeSession)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

// 不正な形式の文字列が拒否されることを検証
func TestTokenService_Verify_Malformed(t *testing.T) {
	svc := NewTokenService("test-secret")

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.Verify(token, PurposeSession)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q) error = %v, want ErrInvalidToken", token, err)
		}
	}
}

// パスワードのハッシュ化と検証を検証
func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("contraseña-segura")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "contraseña-segura" {
		t.Error("hash should not equal plaintext")
	}

	if !CheckPassword("contraseña-segura", hash) {
		t.Error("CheckPassword() should accept the correct password")
	}
	if CheckPassword("otra-contraseña", hash) {
		t.Error("CheckPassword() should reject a wrong password")
	}
}

// 同じパスワードでもハッシュが毎回異なることを検証（ソルト付き）
func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword("misma")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	h2, err := HashPassword("misma")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password should differ")
	}
}
