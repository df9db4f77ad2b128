// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// メッセージはプロダクトの言語（スペイン語）で記述する。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, tournament, cube, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeNotVerified        = "NOT_VERIFIED"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbiddenInactive  = "FORBIDDEN_INACTIVE"
	ErrCodeForbiddenAdmin     = "FORBIDDEN_ADMIN"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeTournamentNotFound = "TOURNAMENT_NOT_FOUND"
	ErrCodeProposalNotFound   = "PROPOSAL_NOT_FOUND"
	ErrCodeAlreadyRegistered  = "ALREADY_REGISTERED"
	ErrCodeOwnRoleChange      = "OWN_ROLE_CHANGE"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeInvalidCubeURL     = "INVALID_CUBE_URL"
)

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "El correo electrónico ya está registrado.",
		Category: "auth",
		Action:   "Inicia sesión o utiliza otro correo electrónico.",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// アカウント列挙を防ぐため、メール不明とパスワード不一致で同じメッセージを返す。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Correo electrónico o contraseña incorrectos.",
		Category: "auth",
		Action:   "Verifica tus credenciales e inténtalo de nuevo.",
	}
}

// NewNotVerifiedError はメール未確認エラーを生成する。
func NewNotVerifiedError() *APIError {
	return &APIError{
		Code:     ErrCodeNotVerified,
		Message:  "Por favor verifica tu correo electrónico antes de iniciar sesión.",
		Category: "auth",
		Action:   "Revisa tu bandeja de entrada y haz clic en el enlace de verificación.",
	}
}

// NewInvalidTokenError はトークン無効エラーを生成する。
// 署名不正・期限切れ・用途不一致のいずれでも同じエラーを返す。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "El enlace es inválido o ha expirado.",
		Category: "auth",
		Action:   "Solicita un nuevo enlace e inténtalo de nuevo.",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Se requiere autenticación.",
		Category: "auth",
		Action:   "Inicia sesión para continuar.",
	}
}

// NewInactiveUserError はメール未確認ユーザーの保護ルートアクセスエラーを生成する。
func NewInactiveUserError() *APIError {
	return &APIError{
		Code:     ErrCodeForbiddenInactive,
		Message:  "Cuenta inactiva.",
		Category: "auth",
		Action:   "Verifica tu correo electrónico para activar tu cuenta.",
	}
}

// NewInsufficientPermissionsError は管理者権限不足エラーを生成する。
func NewInsufficientPermissionsError() *APIError {
	return &APIError{
		Code:     ErrCodeForbiddenAdmin,
		Message:  "Permisos insuficientes.",
		Category: "auth",
		Action:   "Esta operación requiere permisos de administrador.",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "Usuario no encontrado.",
		Category: "auth",
		Action:   "Inicia sesión de nuevo.",
	}
}

// NewTournamentNotFoundError は大会未検出エラーを生成する。
func NewTournamentNotFoundError(tournamentID string) *APIError {
	return &APIError{
		Code:     ErrCodeTournamentNotFound,
		Message:  fmt.Sprintf("Torneo no encontrado: %s", tournamentID),
		Category: "tournament",
		Action:   "Verifica el identificador del torneo.",
	}
}

// NewProposalNotFoundError はキューブ提案未検出エラーを生成する。
func NewProposalNotFoundError(proposalID string) *APIError {
	return &APIError{
		Code:     ErrCodeProposalNotFound,
		Message:  fmt.Sprintf("Propuesta de cubo no encontrada: %s", proposalID),
		Category: "cube",
		Action:   "Verifica el identificador de la propuesta.",
	}
}

// NewAlreadyRegisteredError は大会への重複登録エラーを生成する。
func NewAlreadyRegisteredError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyRegistered,
		Message:  "Ya estás registrado en este torneo.",
		Category: "tournament",
		Action:   "Consulta tu registro en la página del torneo.",
	}
}

// NewOwnRoleChangeError は管理者自身のロール変更エラーを生成する。
func NewOwnRoleChangeError() *APIError {
	return &APIError{
		Code:     ErrCodeOwnRoleChange,
		Message:  "No puedes cambiar tu propio rol.",
		Category: "auth",
		Action:   "Pide a otro administrador que realice el cambio.",
	}
}

// NewValidationError は入力値検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("Datos inválidos: %s", reason),
		Category: "validation",
		Action:   "Corrige los datos e inténtalo de nuevo.",
	}
}

// NewInvalidCubeURLError はキューブURL不正エラーを生成する。
func NewInvalidCubeURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCubeURL,
		Message:  fmt.Sprintf("URL de cubo inválida: %s", reason),
		Category: "validation",
		Action:   "Introduce una URL pública válida (por ejemplo, de cubecobra.com).",
	}
}
