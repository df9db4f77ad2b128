package model

import "time"

// CubeStatus はキューブ提案の状態を表す。
type CubeStatus string

const (
	// CubeStatusProposed は提案された直後の状態。一般ユーザーには公開されない。
	CubeStatusProposed CubeStatus = "proposed"
	// CubeStatusEnabled は管理者が承認し、大会で使用可能になった状態。
	CubeStatusEnabled CubeStatus = "enabled"
)

// IsValid はCubeStatusが定義済みの値かどうかを返す。
func (s CubeStatus) IsValid() bool {
	return s == CubeStatusProposed || s == CubeStatusEnabled
}

// CubeProposal は大会で使用するドラフトキューブの提案を表す。
// cubecobra.com等で公開されているキューブのURLを添えて提案する。
type CubeProposal struct {
	ID           string
	TournamentID string
	UserID       string
	CubeURL      string
	Description  string
	Status       CubeStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
