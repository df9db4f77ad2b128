package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fndc/torneo/internal/model"
)

// PostgresCubeProposalRepo はPostgreSQLを使用したキューブ提案リポジトリ。
type PostgresCubeProposalRepo struct {
	db *sql.DB
}

// NewPostgresCubeProposalRepo はPostgresCubeProposalRepoを生成する。
func NewPostgresCubeProposalRepo(db *sql.DB) *PostgresCubeProposalRepo {
	return &PostgresCubeProposalRepo{db: db}
}

const cubeProposalColumns = `id, tournament_id, user_id, cube_url, description, status, created_at, updated_at`

func scanCubeProposal(row interface{ Scan(...any) error }) (*model.CubeProposal, error) {
	p := &model.CubeProposal{}
	err := row.Scan(
		&p.ID, &p.TournamentID, &p.UserID, &p.CubeURL, &p.Description,
		&p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FindByID は指定IDのキューブ提案を取得する。見つからない場合はnilを返す。
func (r *PostgresCubeProposalRepo) FindByID(ctx context.Context, id string) (*model.CubeProposal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+cubeProposalColumns+` FROM cube_proposals WHERE id = $1`,
		id,
	)
	p, err := scanCubeProposal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find cube proposal by ID: %w", err)
	}
	return p, nil
}

// Create はキューブ提案を作成する。
func (r *PostgresCubeProposalRepo) Create(ctx context.Context, proposal *model.CubeProposal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cube_proposals (id, tournament_id, user_id, cube_url, description, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		proposal.ID, proposal.TournamentID, proposal.UserID, proposal.CubeURL,
		proposal.Description, proposal.Status, proposal.CreatedAt, proposal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert cube proposal: %w", err)
	}
	return nil
}

// ListByTournament は大会のキューブ提案一覧を作成日時の昇順で返す。
// statusFilterが空でない場合は指定ステータスのみを返す。
func (r *PostgresCubeProposalRepo) ListByTournament(ctx context.Context, tournamentID string, statusFilter model.CubeStatus) ([]*model.CubeProposal, error) {
	query := `SELECT ` + cubeProposalColumns + ` FROM cube_proposals WHERE tournament_id = $1`
	args := []any{tournamentID}
	if statusFilter != "" {
		query += ` AND status = $2`
		args = append(args, statusFilter)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cube proposals: %w", err)
	}
	defer rows.Close()

	var proposals []*model.CubeProposal
	for rows.Next() {
		p, err := scanCubeProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cube proposal: %w", err)
		}
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cube proposals: %w", err)
	}
	return proposals, nil
}

// UpdateStatus はキューブ提案のステータスを更新する。
func (r *PostgresCubeProposalRepo) UpdateStatus(ctx context.Context, id string, status model.CubeStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE cube_proposals SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update cube proposal status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("cube proposal not found: %s", id)
	}
	return nil
}

// Delete は指定IDのキューブ提案を削除する。
func (r *PostgresCubeProposalRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM cube_proposals WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete cube proposal: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("cube proposal not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ CubeProposalRepository = (*PostgresCubeProposalRepo)(nil)
