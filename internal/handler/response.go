// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fndc/torneo/internal/model"
)

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	Role          string  `json:"role"`
	IsVerified    bool    `json:"is_verified"`
	PreferredCube *string `json:"preferred_cube,omitempty"`
	Picture       *string `json:"picture,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// tournamentResponse は大会情報のAPIレスポンス。
type tournamentResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Date         string `json:"date"`
	Location     string `json:"location"`
	StartTime    string `json:"start_time"`
	DurationDays int    `json:"duration_days"`
	Rounds       int    `json:"rounds"`
	CreatedBy    string `json:"created_by"`
	CreatedAt    string `json:"created_at"`
}

// cubeResponse はキューブ提案のAPIレスポンス。
type cubeResponse struct {
	ID           string `json:"id"`
	TournamentID string `json:"tournament_id"`
	UserID       string `json:"user_id"`
	CubeURL      string `json:"cube_url"`
	Description  string `json:"description"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

// registrationResponse は参加登録のAPIレスポンス。
type registrationResponse struct {
	ID           string `json:"id"`
	TournamentID string `json:"tournament_id"`
	UserID       string `json:"user_id"`
	RegisteredAt string `json:"registered_at"`
}

func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		Role:          string(user.Role),
		IsVerified:    user.IsVerified,
		PreferredCube: user.PreferredCube,
		Picture:       user.Picture,
		CreatedAt:     user.CreatedAt.Format(time.RFC3339),
	}
}

func toTournamentResponse(tournament *model.Tournament) tournamentResponse {
	return tournamentResponse{
		ID:           tournament.ID,
		Name:         tournament.Name,
		Date:         tournament.Date.Format("2006-01-02"),
		Location:     tournament.Location,
		StartTime:    tournament.StartTime,
		DurationDays: tournament.DurationDays,
		Rounds:       tournament.Rounds,
		CreatedBy:    tournament.CreatedBy,
		CreatedAt:    tournament.CreatedAt.Format(time.RFC3339),
	}
}

func toCubeResponse(proposal *model.CubeProposal) cubeResponse {
	return cubeResponse{
		ID:           proposal.ID,
		TournamentID: proposal.TournamentID,
		UserID:       proposal.UserID,
		CubeURL:      proposal.CubeURL,
		Description:  proposal.Description,
		Status:       string(proposal.Status),
		CreatedAt:    proposal.CreatedAt.Format(time.RFC3339),
	}
}

func toRegistrationResponse(registration *model.TournamentRegistration) registrationResponse {
	return registrationResponse{
		ID:           registration.ID,
		TournamentID: registration.TournamentID,
		UserID:       registration.UserID,
		RegisteredAt: registration.RegisteredAt.Format(time.RFC3339),
	}
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// writeInvalidRequest はリクエストボディ解析失敗のエラーレスポンスを書き込む。
func writeInvalidRequest(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     model.ErrCodeInvalidRequest,
		Message:  "No se pudo interpretar el cuerpo de la petición.",
		Category: "validation",
		Action:   "Envía una petición con el formato correcto.",
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "Se ha producido un error interno.",
		Category: "system",
		Action:   "Inténtalo de nuevo más tarde.",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeEmailTaken, model.ErrCodeAlreadyRegistered, model.ErrCodeOwnRoleChange:
		return http.StatusConflict
	case model.ErrCodeInvalidCredentials, model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeNotVerified, model.ErrCodeInvalidToken,
		model.ErrCodeInvalidRequest, model.ErrCodeValidationFailed, model.ErrCodeInvalidCubeURL:
		return http.StatusBadRequest
	case model.ErrCodeForbiddenInactive, model.ErrCodeForbiddenAdmin:
		return http.StatusForbidden
	case model.ErrCodeUserNotFound, model.ErrCodeTournamentNotFound, model.ErrCodeProposalNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
