// Package auth はパスワード認証、Google連携認証、トークン管理を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fndc/torneo/internal/metrics"
	"github.com/fndc/torneo/internal/model"
	"github.com/fndc/torneo/internal/repository"
)

// Mailer は認証フローで使用するメール送信のインターフェース。
type Mailer interface {
	// SendVerificationEmail はメールアドレス確認メールを送信する。
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	// SendPasswordResetEmail はパスワードリセットメールを送信する。
	SendPasswordResetEmail(ctx context.Context, to, name, token string) error
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionTokenTTL time.Duration
	VerifyTokenTTL  time.Duration
	ResetTokenTTL   time.Duration
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	users   repository.UserRepository
	tokens  *TokenService
	google  GoogleVerifier
	mailer  Mailer
	metrics metrics.MetricsCollector // nilの場合は記録しない
	config  ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	users repository.UserRepository,
	tokens *TokenService,
	google GoogleVerifier,
	mailer Mailer,
	collector metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		google:  google,
		mailer:  mailer,
		metrics: collector,
		config:  config,
	}
}

// Register は新規ユーザーを作成し、メールアドレス確認メールを送信する。
// メールアドレスの重複判定はDBのユニーク制約のみに依存する。
func (s *Service) Register(ctx context.Context, email, name, password string, preferredCube *string) (*model.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:            uuid.New().String(),
		Email:         email,
		Name:          name,
		PasswordHash:  &hash,
		Role:          model.RoleUser,
		IsVerified:    false,
		PreferredCube: preferredCube,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewEmailTakenError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", slog.String("user_id", user.ID))
	if s.metrics != nil {
		s.metrics.RecordRegistration()
	}

	// 確認メールの送信失敗で登録自体は失敗させない。
	// ユーザーは後からパスワードリセット経由でもメール到達性を回復できる。
	if err := s.sendVerification(ctx, user); err != nil {
		slog.Warn("failed to send verification email",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	return user, nil
}

// Login はメールアドレスとパスワードを検証し、セッショントークンを発行する。
// アカウント列挙を防ぐため、ユーザー不在とパスワード不一致は同一エラーを返す。
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !user.HasPassword() {
		s.recordLoginFailure("password", "bad_credentials")
		return "", model.NewInvalidCredentialsError()
	}
	if !CheckPassword(password, *user.PasswordHash) {
		s.recordLoginFailure("password", "bad_credentials")
		return "", model.NewInvalidCredentialsError()
	}
	if !user.IsVerified {
		s.recordLoginFailure("password", "not_verified")
		return "", model.NewNotVerifiedError()
	}

	token, err := s.tokens.Issue(user.Email, PurposeSession, s.config.SessionTokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue session token: %w", err)
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	if s.metrics != nil {
		s.metrics.RecordLoginSuccess("password")
	}
	return token, nil
}

// GoogleSignIn はGoogleのIDトークンでログインまたはアカウント作成を行い、
// セッショントークンを発行する。
// 解決順序: google_idで検索 → メールアドレスで検索しGoogle連携を追加 → 新規作成。
// Googleがメール所有を証明しているため、どの経路でもis_verified=trueになる。
func (s *Service) GoogleSignIn(ctx context.Context, idToken string) (string, error) {
	info, err := s.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			s.recordLoginFailure("google", "invalid_token")
			return "", model.NewInvalidTokenError()
		}
		return "", fmt.Errorf("failed to verify google token: %w", err)
	}

	user, err := s.users.FindByGoogleID(ctx, info.Sub)
	if err != nil {
		return "", fmt.Errorf("failed to find user by google ID: %w", err)
	}

	if user == nil {
		byEmail, err := s.users.FindByEmail(ctx, info.Email)
		if err != nil {
			return "", fmt.Errorf("failed to find user by email: %w", err)
		}

		if byEmail != nil {
			// 既存のローカルアカウントにGoogle連携を追加
			byEmail.GoogleID = &info.Sub
			byEmail.IsVerified = true
			if info.Picture != "" {
				byEmail.Picture = &info.Picture
			}
			byEmail.UpdatedAt = time.Now()
			if err := s.users.Update(ctx, byEmail); err != nil {
				return "", fmt.Errorf("failed to link google account: %w", err)
			}
			user = byEmail
			slog.Info("google account linked", slog.String("user_id", user.ID))
		} else {
			now := time.Now()
			user = &model.User{
				ID:         uuid.New().String(),
				Email:      info.Email,
				Name:       info.Name,
				GoogleID:   &info.Sub,
				Role:       model.RoleUser,
				IsVerified: true,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if info.Picture != "" {
				user.Picture = &info.Picture
			}
			if err := s.users.Create(ctx, user); err != nil {
				return "", fmt.Errorf("failed to create google user: %w", err)
			}
			slog.Info("google user created", slog.String("user_id", user.ID))
		}
	}

	token, err := s.tokens.Issue(user.Email, PurposeSession, s.config.SessionTokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue session token: %w", err)
	}

	slog.Info("user logged in via google", slog.String("user_id", user.ID))
	if s.metrics != nil {
		s.metrics.RecordLoginSuccess("google")
	}
	return token, nil
}

// VerifyEmail は確認トークンを検証し、ユーザーを確認済みにする。
// 既に確認済みの場合も成功として扱う（冪等）。
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	email, err := s.tokens.Verify(token, PurposeVerification)
	if err != nil {
		return model.NewInvalidTokenError()
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewInvalidTokenError()
	}

	if user.IsVerified {
		return nil
	}

	user.IsVerified = true
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}

	slog.Info("email verified", slog.String("user_id", user.ID))
	return nil
}

// ForgotPassword はパスワードリセットメールを送信する。
// アカウント列挙を防ぐため、該当ユーザーの有無にかかわらず成功を返す。
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		slog.Info("password reset requested for unknown email")
		return nil
	}

	token, err := s.tokens.Issue(user.Email, PurposePasswordReset, s.config.ResetTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, user.Name, token); err != nil {
		// レスポンスを存在有無で変えないため、送信失敗もログのみに留める
		slog.Warn("failed to send password reset email",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		if s.metrics != nil {
			s.metrics.RecordEmailFailure("password_reset")
		}
		return nil
	}

	slog.Info("password reset email sent", slog.String("user_id", user.ID))
	if s.metrics != nil {
		s.metrics.RecordEmailSent("password_reset")
	}
	return nil
}

// ResetPassword はリセットトークンを検証し、新しいパスワードを設定する。
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	email, err := s.tokens.Verify(token, PurposePasswordReset)
	if err != nil {
		return model.NewInvalidTokenError()
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewInvalidTokenError()
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = &hash
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password reset completed", slog.String("user_id", user.ID))
	return nil
}

// ResendVerification は確認メールを再送する。
// 該当ユーザーが存在しない、または確認済みの場合も成功を返す。
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || user.IsVerified {
		return nil
	}

	if err := s.sendVerification(ctx, user); err != nil {
		slog.Warn("failed to resend verification email",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// CurrentUser はセッショントークンから現在のユーザーを取得する。
func (s *Service) CurrentUser(ctx context.Context, sessionToken string) (*model.User, error) {
	email, err := s.tokens.Verify(sessionToken, PurposeSession)
	if err != nil {
		return nil, model.NewUnauthorizedError()
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}

	return user, nil
}

// sendVerification は確認トークンを発行しメールを送信する。
func (s *Service) sendVerification(ctx context.Context, user *model.User) error {
	token, err := s.tokens.Issue(user.Email, PurposeVerification, s.config.VerifyTokenTTL)
	if err != nil {
		return fmt.Errorf("failed to issue verification token: %w", err)
	}
	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.Name, token); err != nil {
		if s.metrics != nil {
			s.metrics.RecordEmailFailure("verification")
		}
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordEmailSent("verification")
	}
	return nil
}

func (s *Service) recordLoginFailure(method, reason string) {
	if s.metrics != nil {
		s.metrics.RecordLoginFailure(method, reason)
	}
}
