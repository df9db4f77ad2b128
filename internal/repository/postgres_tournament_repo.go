package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fndc/torneo/internal/model"
)

// PostgresTournamentRepo はPostgreSQLを使用した大会リポジトリ。
type PostgresTournamentRepo struct {
	db *sql.DB
}

// NewPostgresTournamentRepo はPostgresTournamentRepoを生成する。
func NewPostgresTournamentRepo(db *sql.DB) *PostgresTournamentRepo {
	return &PostgresTournamentRepo{db: db}
}

const tournamentColumns = `id, name, date, location, start_time, duration_days, rounds, created_by, created_at, updated_at`

func scanTournament(row interface{ Scan(...any) error }) (*model.Tournament, error) {
	t := &model.Tournament{}
	err := row.Scan(
		&t.ID, &t.Name, &t.Date, &t.Location, &t.StartTime,
		&t.DurationDays, &t.Rounds, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// FindByID は指定IDの大会を取得する。見つからない場合はnilを返す。
func (r *PostgresTournamentRepo) FindByID(ctx context.Context, id string) (*model.Tournament, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1`,
		id,
	)
	t, err := scanTournament(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tournament by ID: %w", err)
	}
	return t, nil
}

// Create は大会を作成する。
func (r *PostgresTournamentRepo) Create(ctx context.Context, tournament *model.Tournament) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tournaments (id, name, date, location, start_time, duration_days, rounds, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		tournament.ID, tournament.Name, tournament.Date, tournament.Location, tournament.StartTime,
		tournament.DurationDays, tournament.Rounds, tournament.CreatedBy,
		tournament.CreatedAt, tournament.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tournament: %w", err)
	}
	return nil
}

// Update は大会情報を上書き更新する。
func (r *PostgresTournamentRepo) Update(ctx context.Context, tournament *model.Tournament) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tournaments
		 SET name = $2, date = $3, location = $4, start_time = $5,
		     duration_days = $6, rounds = $7, updated_at = $8
		 WHERE id = $1`,
		tournament.ID, tournament.Name, tournament.Date, tournament.Location, tournament.StartTime,
		tournament.DurationDays, tournament.Rounds, tournament.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update tournament: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("tournament not found: %s", tournament.ID)
	}
	return nil
}

// List は全大会を開催日の昇順で返す。
func (r *PostgresTournamentRepo) List(ctx context.Context) ([]*model.Tournament, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tournamentColumns+` FROM tournaments ORDER BY date ASC, created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []*model.Tournament
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tournaments: %w", err)
	}
	return tournaments, nil
}

// Delete は指定IDの大会を削除する。
// 関連するcube_proposals、tournament_registrationsはCASCADE削除される。
func (r *PostgresTournamentRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tournaments WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete tournament: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("tournament not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ TournamentRepository = (*PostgresTournamentRepo)(nil)
