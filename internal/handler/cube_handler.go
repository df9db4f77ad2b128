package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fndc/torneo/internal/cube"
	"github.com/fndc/torneo/internal/middleware"
	"github.com/fndc/torneo/internal/model"
)

// CubeServiceInterface はキューブハンドラーが必要とするサービスインターフェース。
type CubeServiceInterface interface {
	Propose(ctx context.Context, userID string, input cube.ProposeInput) (*model.CubeProposal, error)
	ListForTournament(ctx context.Context, tournamentID string, includeProposed bool) ([]*model.CubeProposal, error)
	Enable(ctx context.Context, proposalID string) (*model.CubeProposal, error)
	Delete(ctx context.Context, proposalID string) error
}

// CubeHandler はキューブ提案のHTTPハンドラー。
type CubeHandler struct {
	service CubeServiceInterface
}

// NewCubeHandler はCubeHandlerを生成する。
func NewCubeHandler(service CubeServiceInterface) *CubeHandler {
	return &CubeHandler{service: service}
}

// proposeCubeRequest はキューブ提案リクエストのボディ。
type proposeCubeRequest struct {
	TournamentID string `json:"tournament_id"`
	CubeURL      string `json:"cube_url"`
	Description  string `json:"description"`
}

// updateCubeStatusRequest はキューブ提案のステータス変更リクエストのボディ。
type updateCubeStatusRequest struct {
	Status string `json:"status"`
}

// Propose はキューブ提案を作成する。確認済みユーザーのみ。
// POST /cubes/propose
func (h *CubeHandler) Propose(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req proposeCubeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}
	if req.TournamentID == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("se requiere el identificador del torneo"))
		return
	}

	proposal, err := h.service.Propose(r.Context(), user.ID, cube.ProposeInput{
		TournamentID: req.TournamentID,
		CubeURL:      req.CubeURL,
		Description:  req.Description,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCubeResponse(proposal))
}

// ListEnabled は大会の承認済みキューブ一覧を返す。公開エンドポイント。
// GET /cubes/tournament/{id}/enabled
func (h *CubeHandler) ListEnabled(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// ListAll は大会の全キューブ提案を返す。管理者のみ。
// GET /cubes/tournament/{id}/all
func (h *CubeHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *CubeHandler) list(w http.ResponseWriter, r *http.Request, includeProposed bool) {
	proposals, err := h.service.ListForTournament(r.Context(), chi.URLParam(r, "id"), includeProposed)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	response := make([]cubeResponse, 0, len(proposals))
	for _, p := range proposals {
		response = append(response, toCubeResponse(p))
	}
	writeJSON(w, http.StatusOK, response)
}

// UpdateStatus はキューブ提案を承認する。管理者のみ。
// 許可される遷移はproposed→enabledのみ。
// PUT /cubes/{id}/status
func (h *CubeHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateCubeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}
	if model.CubeStatus(req.Status) != model.CubeStatusEnabled {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("el único estado permitido es 'enabled'"))
		return
	}

	proposal, err := h.service.Enable(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCubeResponse(proposal))
}

// Delete はキューブ提案を削除する。管理者のみ。
// DELETE /cubes/{id}
func (h *CubeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
