// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/fndc/torneo/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	// メールアドレスは保存時の表記そのままで完全一致比較する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByGoogleID はGoogleアカウントIDでユーザーを検索する。見つからない場合はnilを返す。
	FindByGoogleID(ctx context.Context, googleID string) (*model.User, error)

	// Create はユーザーを作成する。
	// メールアドレスまたはgoogle_idが重複する場合はErrDuplicateを返す。
	// 重複判定はDBのユニーク制約のみに依存する（事前SELECTでの判定はしない）。
	Create(ctx context.Context, user *model.User) error

	// Update はユーザーの全フィールドを上書き更新する。
	Update(ctx context.Context, user *model.User) error

	// List は全ユーザーを作成日時の昇順で返す。
	List(ctx context.Context) ([]*model.User, error)
}

// TournamentRepository は大会データの永続化インターフェース。
type TournamentRepository interface {
	// FindByID は指定IDの大会を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Tournament, error)

	// Create は大会を作成する。
	Create(ctx context.Context, tournament *model.Tournament) error

	// Update は大会情報を上書き更新する。
	Update(ctx context.Context, tournament *model.Tournament) error

	// List は全大会を開催日の昇順で返す。
	List(ctx context.Context) ([]*model.Tournament, error)

	// Delete は指定IDの大会を削除する。
	// 関連するcube_proposals、tournament_registrationsはCASCADE削除される。
	Delete(ctx context.Context, id string) error
}

// CubeProposalRepository はキューブ提案データの永続化インターフェース。
type CubeProposalRepository interface {
	// FindByID は指定IDのキューブ提案を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.CubeProposal, error)

	// Create はキューブ提案を作成する。
	Create(ctx context.Context, proposal *model.CubeProposal) error

	// ListByTournament は大会のキューブ提案一覧を作成日時の昇順で返す。
	// statusFilterが空でない場合は指定ステータスのみを返す。
	ListByTournament(ctx context.Context, tournamentID string, statusFilter model.CubeStatus) ([]*model.CubeProposal, error)

	// UpdateStatus はキューブ提案のステータスを更新する。
	UpdateStatus(ctx context.Context, id string, status model.CubeStatus) error

	// Delete は指定IDのキューブ提案を削除する。
	Delete(ctx context.Context, id string) error
}

// RegistrationRepository は大会参加登録データの永続化インターフェース。
type RegistrationRepository interface {
	// Create は参加登録を作成する。
	// 同一大会への重複登録はErrDuplicateを返す。
	// 重複判定はDBのユニーク制約のみに依存する。
	Create(ctx context.Context, registration *model.TournamentRegistration) error

	// ListByTournament は大会の参加登録一覧を登録日時の昇順で返す。
	ListByTournament(ctx context.Context, tournamentID string) ([]*model.TournamentRegistration, error)

	// FindByTournamentAndUser は大会IDとユーザーIDで登録を検索する。見つからない場合はnilを返す。
	FindByTournamentAndUser(ctx context.Context, tournamentID, userID string) (*model.TournamentRegistration, error)

	// Delete は大会IDとユーザーIDで登録を削除する。
	Delete(ctx context.Context, tournamentID, userID string) error
}
