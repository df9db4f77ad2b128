// Package tournament は大会管理のドメインロジックを提供する。
package tournament

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fndc/torneo/internal/model"
	"github.com/fndc/torneo/internal/repository"
	"github.com/fndc/torneo/internal/security"
)

// CreateInput は大会作成・更新の入力。
type CreateInput struct {
	Name         string
	Date         string // "2006-01-02"形式
	Location     string
	StartTime    string // "15:04"形式
	DurationDays int
	Rounds       int
}

// ParticipantInfo は大会参加者の情報。
type ParticipantInfo struct {
	UserID       string
	Name         string
	RegisteredAt time.Time
}

// Service は大会管理のサービス層。
// 大会のCRUD、参加登録・解除のビジネスロジックを提供する。
type Service struct {
	tournaments   repository.TournamentRepository
	registrations repository.RegistrationRepository
	users         repository.UserRepository
	sanitizer     security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	tournaments repository.TournamentRepository,
	registrations repository.RegistrationRepository,
	users repository.UserRepository,
	sanitizer security.TextSanitizerService,
) *Service {
	return &Service{
		tournaments:   tournaments,
		registrations: registrations,
		users:         users,
		sanitizer:     sanitizer,
	}
}

// Create は新しい大会を作成する。管理者のみが実行できる（ルーティング層で制御）。
func (s *Service) Create(ctx context.Context, createdBy string, input CreateInput) (*model.Tournament, error) {
	date, err := s.validateInput(&input)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tournament := &model.Tournament{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Date:         date,
		Location:     input.Location,
		StartTime:    input.StartTime,
		DurationDays: input.DurationDays,
		Rounds:       input.Rounds,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.tournaments.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	slog.Info("tournament created",
		slog.String("tournament_id", tournament.ID),
		slog.String("created_by", createdBy),
	)
	return tournament, nil
}

// Get は指定IDの大会を返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Tournament, error) {
	tournament, err := s.tournaments.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find tournament: %w", err)
	}
	if tournament == nil {
		return nil, model.NewTournamentNotFoundError(id)
	}
	return tournament, nil
}

// List は全大会を開催日の昇順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Tournament, error) {
	tournaments, err := s.tournaments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

// Update は大会情報を更新する。
func (s *Service) Update(ctx context.Context, id string, input CreateInput) (*model.Tournament, error) {
	tournament, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	date, err := s.validateInput(&input)
	if err != nil {
		return nil, err
	}

	tournament.Name = input.Name
	tournament.Date = date
	tournament.Location = input.Location
	tournament.StartTime = input.StartTime
	tournament.DurationDays = input.DurationDays
	tournament.Rounds = input.Rounds
	tournament.UpdatedAt = time.Now()

	if err := s.tournaments.Update(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to update tournament: %w", err)
	}

	slog.Info("tournament updated", slog.String("tournament_id", id))
	return tournament, nil
}

// Delete は大会を削除する。参加登録とキューブ提案はCASCADE削除される。
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.tournaments.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete tournament: %w", err)
	}

	slog.Info("tournament deleted", slog.String("tournament_id", id))
	return nil
}

// Register はユーザーを大会に参加登録する。
// 重複登録の判定はDBのユニーク制約のみに依存する。
func (s *Service) Register(ctx context.Context, tournamentID, userID string) (*model.TournamentRegistration, error) {
	if _, err := s.Get(ctx, tournamentID); err != nil {
		return nil, err
	}

	registration := &model.TournamentRegistration{
		ID:           uuid.New().String(),
		TournamentID: tournamentID,
		UserID:       userID,
		RegisteredAt: time.Now(),
	}

	if err := s.registrations.Create(ctx, registration); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewAlreadyRegisteredError()
		}
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}

	slog.Info("user registered for tournament",
		slog.String("tournament_id", tournamentID),
		slog.String("user_id", userID),
	)
	return registration, nil
}

// Unregister はユーザーの参加登録を解除する。
func (s *Service) Unregister(ctx context.Context, tournamentID, userID string) error {
	if _, err := s.Get(ctx, tournamentID); err != nil {
		return err
	}

	registration, err := s.registrations.FindByTournamentAndUser(ctx, tournamentID, userID)
	if err != nil {
		return fmt.Errorf("failed to find registration: %w", err)
	}
	if registration == nil {
		return model.NewValidationError("no estás registrado en este torneo")
	}

	if err := s.registrations.Delete(ctx, tournamentID, userID); err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}

	slog.Info("user unregistered from tournament",
		slog.String("tournament_id", tournamentID),
		slog.String("user_id", userID),
	)
	return nil
}

// Registration は指定ユーザーの参加登録を返す。未登録の場合はnilを返す。
func (s *Service) Registration(ctx context.Context, tournamentID, userID string) (*model.TournamentRegistration, error) {
	if _, err := s.Get(ctx, tournamentID); err != nil {
		return nil, err
	}

	registration, err := s.registrations.FindByTournamentAndUser(ctx, tournamentID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find registration: %w", err)
	}
	return registration, nil
}

// Participants は大会の参加者一覧を登録順で返す。
func (s *Service) Participants(ctx context.Context, tournamentID string) ([]ParticipantInfo, error) {
	if _, err := s.Get(ctx, tournamentID); err != nil {
		return nil, err
	}

	registrations, err := s.registrations.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}

	participants := make([]ParticipantInfo, 0, len(registrations))
	for _, reg := range registrations {
		info := ParticipantInfo{
			UserID:       reg.UserID,
			RegisteredAt: reg.RegisteredAt,
		}
		// 退会等でユーザーが消えている場合もエントリ自体は返す
		user, err := s.users.FindByID(ctx, reg.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to find participant: %w", err)
		}
		if user != nil {
			info.Name = user.Name
		}
		participants = append(participants, info)
	}
	return participants, nil
}

// validateInput は入力値を検証し、名前と会場をサニタイズした上で開催日を返す。
func (s *Service) validateInput(input *CreateInput) (time.Time, error) {
	input.Name = s.sanitizer.Sanitize(input.Name)
	input.Location = s.sanitizer.Sanitize(input.Location)

	if input.Name == "" {
		return time.Time{}, model.NewValidationError("el nombre es obligatorio")
	}
	if input.Location == "" {
		return time.Time{}, model.NewValidationError("la ubicación es obligatoria")
	}

	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		return time.Time{}, model.NewValidationError("la fecha debe tener el formato AAAA-MM-DD")
	}

	if _, err := time.Parse("15:04", input.StartTime); err != nil {
		return time.Time{}, model.NewValidationError("la hora de inicio debe tener el formato HH:MM")
	}

	if input.DurationDays < 1 || input.DurationDays > 30 {
		return time.Time{}, model.NewValidationError("la duración debe estar entre 1 y 30 días")
	}
	if input.Rounds < 1 || input.Rounds > 20 {
		return time.Time{}, model.NewValidationError("las rondas deben estar entre 1 y 20")
	}

	return date, nil
}
