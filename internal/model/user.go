// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの権限区分を表す。
type Role string

const (
	// RoleUser は一般ユーザー。
	RoleUser Role = "user"
	// RoleAdmin は管理者。大会の作成やキューブ提案の承認が可能。
	RoleAdmin Role = "admin"
)

// IsValid はRoleが定義済みの値かどうかを返す。
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User はプラットフォームのアカウントを表す。
// ローカル認証（メール+パスワード）とGoogle連携認証のどちらか、
// または両方の認証手段を持つ。
type User struct {
	ID            string
	Email         string
	Name          string
	PasswordHash  *string // Google連携のみのアカウントではnil
	GoogleID      *string // ローカル認証のみのアカウントではnil
	Role          Role
	IsVerified    bool
	PreferredCube *string
	Picture       *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasPassword はローカル認証（パスワードログイン）が可能かどうかを返す。
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
