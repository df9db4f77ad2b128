// Package cube はドラフトキューブ提案のドメインロジックを提供する。
package cube

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fndc/torneo/internal/model"
	"github.com/fndc/torneo/internal/repository"
	"github.com/fndc/torneo/internal/security"
)

// ProposeInput はキューブ提案の入力。
type ProposeInput struct {
	TournamentID string
	CubeURL      string
	Description  string
}

// Service はキューブ提案のサービス層。
// 提案URLの安全性検証と到達性確認を行った上で永続化する。
type Service struct {
	cubes       repository.CubeProposalRepository
	tournaments repository.TournamentRepository
	sanitizer   security.TextSanitizerService
	guard       security.URLGuardService
	client      *http.Client
}

// NewService はServiceの新しいインスタンスを生成する。
// clientにはguard.NewSafeClientで生成したSSRF防止付きクライアントを渡す。
func NewService(
	cubes repository.CubeProposalRepository,
	tournaments repository.TournamentRepository,
	sanitizer security.TextSanitizerService,
	guard security.URLGuardService,
	client *http.Client,
) *Service {
	return &Service{
		cubes:       cubes,
		tournaments: tournaments,
		sanitizer:   sanitizer,
		guard:       guard,
		client:      client,
	}
}

// Propose は大会へのキューブ提案を作成する。
// URLの静的検証、SSRF防止付きクライアントによる到達性確認を経て、
// ステータスproposedで保存する。proposedの提案は管理者が承認するまで
// 一般ユーザーには公開されない。
func (s *Service) Propose(ctx context.Context, userID string, input ProposeInput) (*model.CubeProposal, error) {
	tournament, err := s.tournaments.FindByID(ctx, input.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find tournament: %w", err)
	}
	if tournament == nil {
		return nil, model.NewTournamentNotFoundError(input.TournamentID)
	}

	if err := s.guard.ValidateURL(input.CubeURL); err != nil {
		slog.Warn("cube URL rejected by validation",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewInvalidCubeURLError("la URL no está permitida")
	}

	if err := s.checkReachable(ctx, input.CubeURL); err != nil {
		slog.Warn("cube URL unreachable",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewInvalidCubeURLError("no se pudo acceder a la URL")
	}

	now := time.Now()
	proposal := &model.CubeProposal{
		ID:           uuid.New().String(),
		TournamentID: input.TournamentID,
		UserID:       userID,
		CubeURL:      input.CubeURL,
		Description:  s.sanitizer.Sanitize(input.Description),
		Status:       model.CubeStatusProposed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.cubes.Create(ctx, proposal); err != nil {
		return nil, fmt.Errorf("failed to create cube proposal: %w", err)
	}

	slog.Info("cube proposed",
		slog.String("proposal_id", proposal.ID),
		slog.String("tournament_id", input.TournamentID),
		slog.String("user_id", userID),
	)
	return proposal, nil
}

// ListForTournament は大会のキューブ提案一覧を返す。
// includeProposedがtrueの場合（管理者）は全件、falseの場合は承認済みのみを返す。
func (s *Service) ListForTournament(ctx context.Context, tournamentID string, includeProposed bool) ([]*model.CubeProposal, error) {
	tournament, err := s.tournaments.FindByID(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find tournament: %w", err)
	}
	if tournament == nil {
		return nil, model.NewTournamentNotFoundError(tournamentID)
	}

	var filter model.CubeStatus
	if !includeProposed {
		filter = model.CubeStatusEnabled
	}

	proposals, err := s.cubes.ListByTournament(ctx, tournamentID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list cube proposals: %w", err)
	}
	return proposals, nil
}

// Enable はキューブ提案を承認し、大会で使用可能にする。管理者のみが実行できる。
func (s *Service) Enable(ctx context.Context, proposalID string) (*model.CubeProposal, error) {
	proposal, err := s.cubes.FindByID(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to find cube proposal: %w", err)
	}
	if proposal == nil {
		return nil, model.NewProposalNotFoundError(proposalID)
	}

	if err := s.cubes.UpdateStatus(ctx, proposalID, model.CubeStatusEnabled); err != nil {
		return nil, fmt.Errorf("failed to update cube proposal status: %w", err)
	}
	proposal.Status = model.CubeStatusEnabled

	slog.Info("cube proposal enabled", slog.String("proposal_id", proposalID))
	return proposal, nil
}

// Delete はキューブ提案を削除する。管理者のみが実行できる。
func (s *Service) Delete(ctx context.Context, proposalID string) error {
	proposal, err := s.cubes.FindByID(ctx, proposalID)
	if err != nil {
		return fmt.Errorf("failed to find cube proposal: %w", err)
	}
	if proposal == nil {
		return model.NewProposalNotFoundError(proposalID)
	}

	if err := s.cubes.Delete(ctx, proposalID); err != nil {
		return fmt.Errorf("failed to delete cube proposal: %w", err)
	}

	slog.Info("cube proposal deleted", slog.String("proposal_id", proposalID))
	return nil
}

// checkReachable はキューブURLに実際にアクセスできるかを確認する。
// 4xx/5xxは到達不能として扱う。
func (s *Service) checkReachable(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return nil
}
