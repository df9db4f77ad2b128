package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fndc/torneo/internal/middleware"
	"github.com/fndc/torneo/internal/model"
	"github.com/fndc/torneo/internal/tournament"
)

// TournamentServiceInterface は大会ハンドラーが必要とするサービスインターフェース。
type TournamentServiceInterface interface {
	Create(ctx context.Context, createdBy string, input tournament.CreateInput) (*model.Tournament, error)
	Get(ctx context.Context, id string) (*model.Tournament, error)
	List(ctx context.Context) ([]*model.Tournament, error)
	Update(ctx context.Context, id string, input tournament.CreateInput) (*model.Tournament, error)
	Delete(ctx context.Context, id string) error
	Register(ctx context.Context, tournamentID, userID string) (*model.TournamentRegistration, error)
	Unregister(ctx context.Context, tournamentID, userID string) error
	Registration(ctx context.Context, tournamentID, userID string) (*model.TournamentRegistration, error)
	Participants(ctx context.Context, tournamentID string) ([]tournament.ParticipantInfo, error)
}

// TournamentHandler は大会管理のHTTPハンドラー。
type TournamentHandler struct {
	service TournamentServiceInterface
}

// NewTournamentHandler はTournamentHandlerを生成する。
func NewTournamentHandler(service TournamentServiceInterface) *TournamentHandler {
	return &TournamentHandler{service: service}
}

// tournamentRequest は大会作成・更新リクエストのボディ。
type tournamentRequest struct {
	Name         string `json:"name"`
	Date         string `json:"date"`
	Location     string `json:"location"`
	StartTime    string `json:"start_time"`
	DurationDays int    `json:"duration_days"`
	Rounds       int    `json:"rounds"`
}

// participantResponse は大会参加者のAPIレスポンス。
type participantResponse struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	RegisteredAt string `json:"registered_at"`
}

// myRegistrationResponse は参加登録照会のAPIレスポンス。
type myRegistrationResponse struct {
	Registered   bool                  `json:"registered"`
	Registration *registrationResponse `json:"registration,omitempty"`
}

func (req tournamentRequest) toInput() tournament.CreateInput {
	return tournament.CreateInput{
		Name:         req.Name,
		Date:         req.Date,
		Location:     req.Location,
		StartTime:    req.StartTime,
		DurationDays: req.DurationDays,
		Rounds:       req.Rounds,
	}
}

// Create は大会を作成する。管理者のみ。
// POST /tournaments
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req tournamentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	created, err := h.service.Create(r.Context(), user.ID, req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTournamentResponse(created))
}

// List は大会一覧を返す。公開エンドポイント。
// GET /tournaments
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response := make([]tournamentResponse, 0, len(tournaments))
	for _, t := range tournaments {
		response = append(response, toTournamentResponse(t))
	}
	writeJSON(w, http.StatusOK, response)
}

// Get は大会詳細を返す。公開エンドポイント。
// GET /tournaments/{id}
func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTournamentResponse(found))
}

// Update は大会情報を更新する。管理者のみ。
// PUT /tournaments/{id}
func (h *TournamentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req tournamentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTournamentResponse(updated))
}

// Delete は大会を削除する。管理者のみ。
// DELETE /tournaments/{id}
func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Register は大会への参加登録を行う。確認済みユーザーのみ。
// POST /tournaments/{id}/register
func (h *TournamentHandler) Register(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	registration, err := h.service.Register(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRegistrationResponse(registration))
}

// Unregister は大会への参加登録を解除する。確認済みユーザーのみ。
// DELETE /tournaments/{id}/register
func (h *TournamentHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.Unregister(r.Context(), chi.URLParam(r, "id"), user.ID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Registrations は大会の参加者一覧を返す。確認済みユーザーのみ。
// GET /tournaments/{id}/registrations
func (h *TournamentHandler) Registrations(w http.ResponseWriter, r *http.Request) {
	participants, err := h.service.Participants(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response := make([]participantResponse, 0, len(participants))
	for _, p := range participants {
		response = append(response, participantResponse{
			UserID:       p.UserID,
			Name:         p.Name,
			RegisteredAt: p.RegisteredAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

// MyRegistration は自分の参加登録状況を返す。確認済みユーザーのみ。
// GET /tournaments/{id}/my-registration
func (h *TournamentHandler) MyRegistration(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	registration, err := h.service.Registration(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if registration == nil {
		writeJSON(w, http.StatusOK, myRegistrationResponse{Registered: false})
		return
	}

	body := toRegistrationResponse(registration)
	writeJSON(w, http.StatusOK, myRegistrationResponse{
		Registered:   true,
		Registration: &body,
	})
}
