package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fndc/torneo/internal/metrics"
	"github.com/fndc/torneo/internal/model"
	"github.com/fndc/torneo/internal/repository"
)

// mockUserRepo はUserRepositoryのモック実装。
// 各メソッドを関数フィールドで差し替え可能にする。
type mockUserRepo struct {
	findByIDFunc       func(ctx context.Context, id string) (*model.User, error)
	findByEmailFunc    func(ctx context.Context, email string) (*model.User, error)
	findByGoogleIDFunc func(ctx context.Context, googleID string) (*model.User, error)
	createFunc         func(ctx context.Context, user *model.User) error
	updateFunc         func(ctx context.Context, user *model.User) error
	listFunc           func(ctx context.Context) ([]*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	if m.findByGoogleIDFunc != nil {
		return m.findByGoogleIDFunc(ctx, googleID)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *model.User) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]*model.User, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

// mockMailer はMailerのモック実装。
type mockMailer struct {
	verificationCalls []string // 送信先メールアドレスの記録
	resetCalls        []string
	verificationToken string
	resetToken        string
	sendErr           error
}

func (m *mockMailer) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	m.verificationCalls = append(m.verificationCalls, to)
	m.verificationToken = token
	return m.sendErr
}

func (m *mockMailer) SendPasswordResetEmail(ctx context.Context, to, name, token string) error {
	m.resetCalls = append(m.resetCalls, to)
	m.resetToken = token
	return m.sendErr
}

var _ Mailer = (*mockMailer)(nil)

// mockGoogleVerifier はGoogleVerifierのモック実装。
type mockGoogleVerifier struct {
	verifyFunc func(ctx context.Context, idToken string) (*GoogleUserInfo, error)
}

func (m *mockGoogleVerifier) VerifyIDToken(ctx context.Context, idToken string) (*GoogleUserInfo, error) {
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, idToken)
	}
	return nil, ErrInvalidToken
}

var _ GoogleVerifier = (*mockGoogleVerifier)(nil)

func testServiceConfig() ServiceConfig {
	return ServiceConfig{
		SessionTokenTTL: 30 * time.Minute,
		VerifyTokenTTL:  24 * time.Hour,
		ResetTokenTTL:   time.Hour,
	}
}

func newTestService(users repository.UserRepository, mailer Mailer, google GoogleVerifier) *Service {
	return NewService(users, NewTokenService("test-secret"), google, mailer, nil, testServiceConfig())
}

// mockCollector はMetricsCollectorのモック実装。呼び出しを記録する。
type mockCollector struct {
	loginSuccess  []string
	loginFailures []string // "method/reason" 形式で記録
	registrations int
	emailsSent    []string
	emailsFailed  []string
}

func (m *mockCollector) RecordLoginSuccess(method string) { m.loginSuccess = append(m.loginSuccess, method) }
func (m *mockCollector) RecordLoginFailure(method, reason string) {
	m.loginFailures = append(m.loginFailures, method+"/"+reason)
}
func (m *mockCollector) RecordRegistration()           { m.registrations++ }
func (m *mockCollector) RecordEmailSent(kind string)   { m.emailsSent = append(m.emailsSent, kind) }
func (m *mockCollector) RecordEmailFailure(kind string) {
	m.emailsFailed = append(m.emailsFailed, kind)
}
func (m *mockCollector) RecordHTTPStatus(statusCode int)             {}
func (m *mockCollector) RecordRequestLatency(duration time.Duration) {}

var _ metrics.MetricsCollector = (*mockCollector)(nil)

// verifiedUser は確認済みのローカル認証ユーザーを生成するヘルパー。
func verifiedUser(t *testing.T, email, password string) *model.User {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	return &model.User{
		ID:           "user-1",
		Email:        email,
		Name:         "Jugador",
		PasswordHash: &hash,
		Role:         model.RoleUser,
		IsVerified:   true,
	}
}

// 登録が成功し、未確認ユーザーが作成され、確認メールが送られることを検証
func TestService_Register_Success(t *testing.T) {
	var created *model.User
	users := &mockUserRepo{
		createFunc: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	mailer := &mockMailer{}
	svc := newTestService(users, mailer, &mockGoogleVerifier{})

	user, err := svc.Register(context.Background(), "nuevo@example.com", "Nuevo Jugador", "contraseña123", nil)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if created == nil {
		t.Fatal("user should have been created")
	}
	if user.IsVerified {
		t.Error("new user should not be verified")
	}
	if user.Role != model.RoleUser {
		t.Errorf("Role = %q, want %q", user.Role, model.RoleUser)
	}
	if !user.HasPassword() {
		t.Error("new user should have a password hash")
	}
	if *user.PasswordHash == "contraseña123" {
		t.Error("password should be hashed, not stored as plaintext")
	}
	if len(mailer.verificationCalls) != 1 || mailer.verificationCalls[0] != "nuevo@example.com" {
		t.Errorf("verification email calls = %v, want one call to nuevo@example.com", mailer.verificationCalls)
	}
}

// メールアドレス重複時にEMAIL_TAKENが返ることを検証
func TestService_Register_DuplicateEmail(t *testing.T) {
	users := &mockUserRepo{
		createFunc: func(ctx context.Context, user *model.User) error {
			return repository.ErrDuplicate
		},
	}
	svc := newTestService(users, &mockMailer{}, &mockGoogleVerifier{})

	_, err := svc.Register(context.Background(), "existente@example.com", "Dup", "contraseña123", nil)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeEmailTaken {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeEmailTaken)
	}
}

// 確認メール送信失敗でも登録自体は成功することを検証
func TestService_Register_EmailFailureDoesNotFailRegistration(t *testing.T) {
	users := &mockUserRepo{}
	mailer := &mockMailer{sendErr: errors.New("resend unavailable")}
	svc := newTestService(users, mailer, &mockGoogleVerifier{})

	_, err := svc.Register(context.Background(), "nuevo@example.com", "Nuevo", "contraseña123", nil)
	if err != nil {
		t.Fatalf("Register() error = %v, want nil despite email failure", err)
	}
}

// 正しい認証情報でログインできることを検証
func TestService_Login_Success(t *testing.T) {
	user := verifiedUser(t, "jugador@example.com", "contraseña123")
	users := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			if email == user.Email {
				return user, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(users, &mockMailer{}, &mockGoogleVerifier{})

	token, err := svc.Login(context.Background(), "jugador@example.com", "contraseña123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty session token")
	}

	// 発行されたトークンでCurrentUserが解決できること
	got, err := svc.CurrentUser(context.Background(), token)
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("CurrentUser() ID = %q, want %q", got.ID, user.ID)
	}
}

// ユーザー不在とパスワード不一致で同一のエラーが返ることを検証
func TestService_Login_InvalidCredentials(t *testing.T) {
	user := verifiedUser(t, "jugador@example.com", "contraseña123")
	users := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			if email == user.Email {
				return user, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(users, &mockMailer{}, &mockGoogleVerifier{})

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"存在しないメールアドレス", "desconocido@example.com", "contraseña123"},
		{"パスワード不一致", "jugador@example.com", "incorrecta"},
	}

	var messages []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.email, tc.password)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Code != model.ErrCodeInvalidCredentials {
				t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidCredentials)
			}
			messages = append(messages, apiErr.Message)
		})
	}

	// アカウント列挙防止: メッセージが経路によって変わらないこと
	if len(messages) == 2 && messages[0] != messages[1] {
		t.Errorf("error messages should be identical: %q vs %q", messages[0], messages[1])
	}
}

// Google連携のみのアカウントにパスワードログインできないことを検証
func TestService_Login_GoogleOnlyAccount(t *testing.T) {
	googleID := "google-sub-1"
	user := &model.User{
		ID:         "user-1",
		Email:      "google@example.com",
		GoogleID:   &googleID,
		Role:       model.RoleUser,
		IsVerified: true,
	}
	users := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return user, nil
		},
	}
	svc := newTestService(users, &mockMailer{}, &mockGoogleVerifier{})

	_, err := svc.Login(context.Background(), "google@example.com", "cualquiera")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidCredentials)
	}
}

// 未確認ユーザーのログインがNOT_VERIFIEDで拒否されることを検証
func TestService_Login_NotVerified(t *testing.T) {
	user := verifiedUser(t, "pendiente@example.com", "contraseña123")
	user.IsVerified = false
	users := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return user, nil
		},
	}
	svc := newTestService(users, &mockMailer{}, &mockGoogleVerifier{})

	_, err := svc.Login(context.Background(), "pendiente@example.com", "contraseña123")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeNotVerified {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeNotVerified)
	}
}

// Googleサインイン: google_idで既存ユーザーが見つかる場合
func TestService_GoogleSignIn_ExistingGoogleUser(t *testing.T) {
	googleID := "google-sub-1"
	user := &model.User{
		ID:         "user-1",
		Email:      "google@example.com",
		GoogleID:   &googleID,
		Role:       model.RoleUser,
		IsVerified: true,
	}
	users := &mockUserRepo{
		findByGoogleIDFunc: func(ctx context.Context, gid string) (*model.User, error) {
			if gid == googleID {
				return user, nil
			}
			return nil, nil
		},
	}
	google := &mockGoogleVerifier{
		verifyFunc: func(ctx context.Context, idToken string) (*GoogleUserInfo, error) {
			return &GoogleUserInfo{Sub: googleID, Email: "google@example.com", Name: "Jugador G"}, nil
		},
	}
	svc := newTestService(users, &mockMailer{}, google)

	token, err := svc.GoogleSignIn(context.Background(), "valid-id-token")
	if err != nil {
		t.Fatalf("GoogleSignIn() error = %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty session token")
	}
}

// Googleサインイン: メールアドレス一致の既存ローカルアカウントに連携が追加され、
// 確認済みに昇格することを検証
func TestService_GoogleSignIn_LinksExistingLocalAccount(t *testing.T) {
	user := verifiedUser(t, "local@example.com", "contraseña123")
	user.IsVerified = false // 未確認のローカルアカウント

	var updated *model.User
	users := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			if email == user.Email {
				return user, nil
			}
			return nil, nil
		},
		updateFunc: func(ctx context.Context, u *model.User) error {
			updated = u
			return nil
		},
	}
	google := &mockGoogleVerifier{
		verifyFunc: func(ctx context.Context, idToken string) (*GoogleUserInfo, error) {
			return &GoogleUserInfo{Sub: "google-sub-9", Email: "local@example.com", Name: "Local"}, nil
		},
	}
	svc := newTestService(users, &mockMailer{}, google)

	_, err := svc.GoogleSignIn(context.Background(), "valid-id-token")
	if err != nil {
		t.Fatalf("GoogleSignIn() error = %v", err)
	}

	if updated == nil {
		t.Fatal("existing account should have been updated")
	}
	if updated.GoogleID == nil || *updated.GoogleID != "google-sub-9" {
		t.Error("google ID should be linked to the existing account")
	}
	if !updated.IsVerified {
		t.Error("linking google should mark the account verified")
	}
}

// Googleサインイン: 未知のユーザーは確認済みで新規作成されることを検証
func TestService_GoogleSignIn_CreatesVerifiedUser(t *testing.T) {
	var created *model.User
	users := &mockUserRepo{
		createFunc: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	google := &mockGoogleVerifier{
		verifyFunc: func(ctx context.Context, idToken string) (*GoogleUserInfo, error) {
			return &GoogleUserInfo{Sub: "google-sub-2", Email: "nuevo-g@example.com", Name: "Nuevo G"}, nil
		},
	}
	svc := newTestService(users, &mockMailer{}, google)

	token, err := svc.GoogleSignIn(context.Background(), "valid-id-token")
	if err != nil {
		t.Fatalf("GoogleSignIn() error = %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty session token")
	}

	if created == nil {
		t.Fatal("user should have been created")
	}
	if !created.IsVerified {
		t.Error("google user should be created verified")
	}
	if created.GoogleID == nil || *created.GoogleID != "google-sub-2" {
		t.Error("google ID should be set on the new user")
	}
}

// Googleサインイン: 無効なIDトークンが拒否されることを検証
func TestService_GoogleSignIn_InvalidToken(t *testing.T) {
	svc := newTestService(&mockUserRepo{}, &mockMailer{}, &mockGoogleVerifier{})

	_, err := svc.GoogleSignIn(context.Background(), "garbage")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeInvalidToken {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidToken)
	}
}

// 確認メールのトークンでユーザーが確認済みになることを検証
func TestService_VerifyEmail_Success(t *testing.T) {
	user := verifiedUser(t, "pendiente@example.com", "contraseña123")
	user.IsVerified = false

	var updated *model.User
	users := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			if email == user.Email {
				return user, nil
			}
			return nil, nil
		},
		updateFunc: func(ctx context.Context, u *model.User) error {
			updated = u
			return nil
		},
	}
	mailer := &mockMailer{}
	svc := newTestService(users, mailer, &mockGoogleVerifier{})

	// 再送フローで確認トークンを入手
	if err := svc.ResendVerification(context.Background(), "pendiente@example.com"); err != nil {
		t.Fatalf("ResendVerification() error = %v", err)
	}
	if mailer.verificationToken == "" {
		t.Fatal("verification token should have been issued")
	}

	if err := svc.VerifyEmail(context.Background(), mailer.verificationToken); err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}
	if updated == nil || !updated.IsVerified {
		t.Error("user should be marked verified")
	}
}

// セッショントークンは確認用途として受理されないことを検証
func TestService_VerifyEmail_RejectsSessionToken(t *testing.T) {
	user := verifiedUser(t, "jugador@example.com", "contraseña123")
	users := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return user, nil
		},
	}
	svc := newTestService(users, &mockMailer{}, &mockGoogleVerifier{})

	sessionToken, err := svc.Login(context.Background(), "jugador@example.com", "contraseña123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	err = svc.VerifyEmail(context.Background(), sessionToken)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeInvalidToken {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidToken)
	}
}

// 既に確認済みのユーザーへの確認トークンは成功として扱われることを検証（冪等）
func TestService_VerifyEmail_AlreadyVerified(t *testing.T) {
	user := verifiedUser(t, "jugador@example.com", "contraseña123")
	users := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return user, nil
		},
		updateFunc: func(ctx context.Context, u *model.User) error {
			t.Error("already verified user should not be updated")
			return nil
		},
	}
	svc := newTestService(users, &mockMailer{}, &mockGoogleVerifier{})

	token, err := svc.tokens.Issue(user.Email, PurposeVerification, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if err := svc.VerifyEmail(context.Background(), token); err != nil {
		t.Fatalf("VerifyEmail() error = %v", err)
	}
}

// 該当ユーザーの有無にかかわらずForgotPasswordが成功を返すことを検証
func TestService_ForgotPassword_UniformResponse(t *testing.T) {
	user := verifiedUser(t, "jugador@example.com", "contraseña123")
	mailer := &mockMailer{}
	users := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			if email == user.Email {
				return user, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(users, mailer, &mockGoogleVerifier{})

	// 存在するメールアドレス: メールが送信される
	if err := svc.ForgotPassword(context.Background(), "jugador@example.com"); err != nil {
		t.Fatalf("ForgotPassword(known) error = %v", err)
	}
	if len(mailer.resetCalls) != 1 {
		t.Errorf("reset email calls = %d, want 1", len(mailer.resetCalls))
	}

	// 存在しないメールアドレス: 同じく成功し、メールは送られない
	if err := svc.ForgotPassword(context.Background(), "desconocido@example.com"); err != nil {
		t.Fatalf("ForgotPassword(unknown) error = %v", err)
	}
	if len(mailer.resetCalls) != 1 {
		t.Errorf("reset email calls = %d, want still 1", len(mailer.resetCalls))
	}
}

// リセットトークンで新しいパスワードが設定されることを検証
func TestService_ResetPassword_Success(t *testing.T) {
	user := verifiedUser(t, "jugador@example.com", "antigua123")
	oldHash := *user.PasswordHash

	var updated *model.User
	users := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			return user, nil
		},
		updateFunc: func(ctx context.Context, u *model.User) error {
			updated = u
			return nil
		},
	}
	mailer := &mockMailer{}
	svc := newTestService(users, mailer, &mockGoogleVerifier{})

	if err := svc.ForgotPassword(context.Background(), "jugador@example.com"); err != nil {
		t.Fatalf("ForgotPassword() error = %v", err)
	}
	if mailer.resetToken == "" {
		t.Fatal("reset token should have been issued")
	}

	if err := svc.ResetPassword(context.Background(), mailer.resetToken, "nueva456"); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}

	if updated == nil || updated.PasswordHash == nil {
		t.Fatal("password hash should have been updated")
	}
	if *updated.PasswordHash == oldHash {
		t.Error("password hash should change after reset")
	}
	if !CheckPassword("nueva456", *updated.PasswordHash) {
		t.Error("new password should match the stored hash")
	}
}

// 確認トークンはリセット用途として受理されないことを検証
func TestService_ResetPassword_RejectsVerificationToken(t *testing.T) {
	svc := newTestService(&mockUserRepo{}, &mockMailer{}, &mockGoogleVerifier{})

	token, err := svc.tokens.Issue("jugador@example.com", PurposeVerification, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	err = svc.ResetPassword(context.Background(), token, "nueva456")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeInvalidToken {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidToken)
	}
}

// 無効なセッショントークンでCurrentUserがUNAUTHORIZEDを返すことを検証
func TestService_CurrentUser_InvalidToken(t *testing.T) {
	svc := newTestService(&mockUserRepo{}, &mockMailer{}, &mockGoogleVerifier{})

	_, err := svc.CurrentUser(context.Background(), "garbage")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeUnauthorized {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeUnauthorized)
	}
}

// トークンのsubjectに対応するユーザーが存在しない場合もUNAUTHORIZEDを返すことを検証
func TestService_CurrentUser_DeletedUser(t *testing.T) {
	svc := newTestService(&mockUserRepo{}, &mockMailer{}, &mockGoogleVerifier{})

	token, err := svc.tokens.Issue("borrado@example.com", PurposeSession, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = svc.CurrentUser(context.Background(), token)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeUnauthorized {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeUnauthorized)
	}
}

// ログインと登録の結果がメトリクスに記録されることを検証
func TestService_RecordsMetrics(t *testing.T) {
	user := verifiedUser(t, "jugador@example.com", "secreto123")
	users := &mockUserRepo{
		findByEmailFunc: func(ctx context.Context, email string) (*model.User, error) {
			if email == user.Email {
				return user, nil
			}
			return nil, nil
		},
	}

	collector := &mockCollector{}
	svc := NewService(users, NewTokenService("test-secret"), &mockGoogleVerifier{}, &mockMailer{}, collector, testServiceConfig())

	if _, err := svc.Login(context.Background(), user.Email, "secreto123"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if len(collector.loginSuccess) != 1 || collector.loginSuccess[0] != "password" {
		t.Errorf("loginSuccess = %v, want [password]", collector.loginSuccess)
	}

	if _, err := svc.Login(context.Background(), user.Email, "incorrecta"); err == nil {
		t.Fatal("Login() with wrong password should fail")
	}
	if len(collector.loginFailures) != 1 || collector.loginFailures[0] != "password/bad_credentials" {
		t.Errorf("loginFailures = %v, want [password/bad_credentials]", collector.loginFailures)
	}

	if _, err := svc.Register(context.Background(), "nuevo@example.com", "Nuevo", "secreto123", nil); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if collector.registrations != 1 {
		t.Errorf("registrations = %d, want 1", collector.registrations)
	}
	if len(collector.emailsSent) != 1 || collector.emailsSent[0] != "verification" {
		t.Errorf("emailsSent = %v, want [verification]", collector.emailsSent)
	}
}
