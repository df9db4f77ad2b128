package model

import "time"

// Tournament は大会を表す。管理者のみが作成できる。
type Tournament struct {
	ID           string
	Name         string
	Date         time.Time
	Location     string
	StartTime    string // HH:MM形式
	DurationDays int    // 1〜30
	Rounds       int    // 1〜20
	CreatedBy    string // 作成した管理者のユーザーID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TournamentRegistration はユーザーの大会への参加登録を表す。
// 同一ユーザーが同じ大会に重複登録することはできない（DBのユニーク制約で保証）。
type TournamentRegistration struct {
	ID           string
	TournamentID string
	UserID       string
	RegisteredAt time.Time
}
