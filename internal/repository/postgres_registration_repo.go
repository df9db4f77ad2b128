package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fndc/torneo/internal/model"
)

// PostgresRegistrationRepo はPostgreSQLを使用した大会参加登録リポジトリ。
type PostgresRegistrationRepo struct {
	db *sql.DB
}

// NewPostgresRegistrationRepo はPostgresRegistrationRepoを生成する。
func NewPostgresRegistrationRepo(db *sql.DB) *PostgresRegistrationRepo {
	return &PostgresRegistrationRepo{db: db}
}

// Create は参加登録を作成する。
// 同一大会への重複登録はErrDuplicateを返す。
func (r *PostgresRegistrationRepo) Create(ctx context.Context, registration *model.TournamentRegistration) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tournament_registrations (id, tournament_id, user_id, registered_at)
		 VALUES ($1, $2, $3, $4)`,
		registration.ID, registration.TournamentID, registration.UserID, registration.RegisteredAt,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped == ErrDuplicate {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert registration: %w", err)
	}
	return nil
}

// ListByTournament は大会の参加登録一覧を登録日時の昇順で返す。
func (r *PostgresRegistrationRepo) ListByTournament(ctx context.Context, tournamentID string) ([]*model.TournamentRegistration, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tournament_id, user_id, registered_at
		 FROM tournament_registrations
		 WHERE tournament_id = $1
		 ORDER BY registered_at ASC`,
		tournamentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	var registrations []*model.TournamentRegistration
	for rows.Next() {
		reg := &model.TournamentRegistration{}
		if err := rows.Scan(&reg.ID, &reg.TournamentID, &reg.UserID, &reg.RegisteredAt); err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		registrations = append(registrations, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate registrations: %w", err)
	}
	return registrations, nil
}

// FindByTournamentAndUser は大会IDとユーザーIDで登録を検索する。見つからない場合はnilを返す。
func (r *PostgresRegistrationRepo) FindByTournamentAndUser(ctx context.Context, tournamentID, userID string) (*model.TournamentRegistration, error) {
	reg := &model.TournamentRegistration{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tournament_id, user_id, registered_at
		 FROM tournament_registrations
		 WHERE tournament_id = $1 AND user_id = $2`,
		tournamentID, userID,
	).Scan(&reg.ID, &reg.TournamentID, &reg.UserID, &reg.RegisteredAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find registration: %w", err)
	}
	return reg, nil
}

// Delete は大会IDとユーザーIDで登録を削除する。
func (r *PostgresRegistrationRepo) Delete(ctx context.Context, tournamentID, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tournament_registrations WHERE tournament_id = $1 AND user_id = $2`,
		tournamentID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("registration not found: tournament=%s user=%s", tournamentID, userID)
	}
	return nil
}

// compile-time interface check
var _ RegistrationRepository = (*PostgresRegistrationRepo)(nil)
