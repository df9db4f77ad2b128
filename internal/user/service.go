// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fndc/torneo/internal/model"
	"github.com/fndc/torneo/internal/repository"
	"github.com/fndc/torneo/internal/security"
)

// UpdateProfileInput はプロフィール更新の入力。
// nilのフィールドは変更しない。
type UpdateProfileInput struct {
	Name          *string
	PreferredCube *string
	Picture       *string
}

// Service はユーザー管理のサービス層。
// プロフィール更新とロール管理のビジネスロジックを提供する。
type Service struct {
	users     repository.UserRepository
	sanitizer security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(users repository.UserRepository, sanitizer security.TextSanitizerService) *Service {
	return &Service{
		users:     users,
		sanitizer: sanitizer,
	}
}

// Get は指定IDのユーザーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// UpdateProfile はユーザー自身のプロフィールを更新する。
// nilでないフィールドのみを上書きし、名前はサニタイズされる。
func (s *Service) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*model.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := s.sanitizer.Sanitize(*input.Name)
		if name == "" {
			return nil, model.NewValidationError("el nombre no puede estar vacío")
		}
		user.Name = name
	}
	if input.PreferredCube != nil {
		cube := s.sanitizer.Sanitize(*input.PreferredCube)
		user.PreferredCube = &cube
	}
	if input.Picture != nil {
		picture := s.sanitizer.Sanitize(*input.Picture)
		user.Picture = &picture
	}
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	slog.Info("user profile updated", slog.String("user_id", userID))
	return user, nil
}

// List は全ユーザーを作成日時の昇順で返す。管理者のみが実行できる。
func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateRole はユーザーのロールを変更する。管理者のみが実行できる。
// 自分自身のロール変更は許可しない。
func (s *Service) UpdateRole(ctx context.Context, actorID, targetID string, role model.Role) (*model.User, error) {
	if !role.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("rol desconocido: %s", role))
	}
	if actorID == targetID {
		return nil, model.NewOwnRoleChangeError()
	}

	user, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}

	slog.Info("user role updated",
		slog.String("user_id", targetID),
		slog.String("role", string(role)),
		slog.String("changed_by", actorID),
	)
	return user, nil
}
