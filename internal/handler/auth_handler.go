package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"net/url"
	"strings"

	"github.com/fndc/torneo/internal/middleware"
	"github.com/fndc/torneo/internal/model"
)

// パスワードの最低文字数。
const minPasswordLength = 8

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, email, name, password string, preferredCube *string) (*model.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	GoogleSignIn(ctx context.Context, idToken string) (string, error)
	VerifyEmail(ctx context.Context, token string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ResendVerification(ctx context.Context, email string) error
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// registerRequest は新規登録リクエストのボディ。
type registerRequest struct {
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	Password      string  `json:"password"`
	PreferredCube *string `json:"preferred_cube,omitempty"`
}

// tokenResponse はログイン成功時のレスポンス。
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// messageResponse は処理結果のメッセージのみを返すレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// Register は新規ユーザー登録を処理する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	if err := validateRegistration(req); err != nil {
		handleServiceError(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, strings.TrimSpace(req.Name), req.Password, req.PreferredCube)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// Login はメールアドレスとパスワードでログインし、ベアラートークンを返す。
// OAuth2のpasswordフローに合わせ、フォームエンコードのusername/passwordを受け取る。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeInvalidRequest(w)
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("se requieren usuario y contraseña"))
		return
	}

	token, err := h.service.Login(r.Context(), email, password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// googleSignInRequest はGoogleサインインのリクエストボディ。
type googleSignInRequest struct {
	IDToken string `json:"id_token"`
}

// Google はGoogleのIDトークンでサインインし、ベアラートークンを返す。
// POST /auth/google
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req googleSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}
	if req.IDToken == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("se requiere el token de Google"))
		return
	}

	token, err := h.service.GoogleSignIn(r.Context(), req.IDToken)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// tokenRequest はメール経由で受け取ったトークンを運ぶリクエストボディ。
type tokenRequest struct {
	Token string `json:"token"`
}

// VerifyEmail は確認トークンを検証し、アカウントを有効化する。
// POST /auth/verify-email
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	if err := h.service.VerifyEmail(r.Context(), req.Token); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Correo electrónico verificado."})
}

// emailRequest はメールアドレスのみのリクエストボディ。
type emailRequest struct {
	Email string `json:"email"`
}

// ForgotPassword はパスワードリセットメールの送信を受け付ける。
// アカウント列挙を防ぐため、該当アカウントの有無にかかわらず同じ応答を返す。
// POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: "Si la cuenta existe, recibirás un correo con instrucciones.",
	})
}

// resetPasswordRequest はパスワード再設定のリクエストボディ。
type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ResetPassword はリセットトークンを検証し、新しいパスワードを設定する。
// POST /auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("la contraseña debe tener al menos 8 caracteres"))
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Contraseña actualizada."})
}

// ResendVerification は確認メールの再送を受け付ける。
// ForgotPasswordと同様に、アカウントの有無で応答を変えない。
// POST /auth/resend-verification
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	if err := h.service.ResendVerification(r.Context(), req.Email); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: "Si la cuenta existe, recibirás un correo de verificación.",
	})
}

// Me は現在のログインユーザー情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// validateRegistration は登録入力を検証する。
func validateRegistration(req registerRequest) error {
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return model.NewValidationError("el correo electrónico no es válido")
	}
	if strings.TrimSpace(req.Name) == "" {
		return model.NewValidationError("el nombre es obligatorio")
	}
	if len(req.Password) < minPasswordLength {
		return model.NewValidationError("la contraseña debe tener al menos 8 caracteres")
	}
	if req.PreferredCube != nil && *req.PreferredCube != "" {
		if _, err := url.Parse(*req.PreferredCube); err != nil {
			return model.NewValidationError("el cubo preferido debe ser una URL válida")
		}
	}
	return nil
}
