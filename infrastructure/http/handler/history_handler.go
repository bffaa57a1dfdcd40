package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ativus/ativus/application/port/inbound"
	"github.com/ativus/ativus/infrastructure/http/middleware"
	"github.com/ativus/ativus/infrastructure/http/response"
	"github.com/ativus/ativus/infrastructure/http/validator"
	"github.com/ativus/ativus/infrastructure/metrics"
)

// HistoryHandler serves the read side: raw history pages, summaries,
// enriched timelines and projection verification.
type HistoryHandler struct {
	history inbound.HistoryUseCase
	metrics *metrics.Metrics
}

func NewHistoryHandler(history inbound.HistoryUseCase, m *metrics.Metrics) *HistoryHandler {
	return &HistoryHandler{
		history: history,
		metrics: m,
	}
}

func (h *HistoryHandler) RegisterRoutes(r *mux.Router, auth *middleware.AuthMiddleware) {
	r.HandleFunc("/assets/{id}/history", auth.RequireAuth(h.GetHistory)).Methods(http.MethodGet)
	r.HandleFunc("/assets/{id}/history/summary", auth.RequireAuth(h.GetSummary)).Methods(http.MethodGet)
	r.HandleFunc("/assets/{id}/timeline", auth.RequireAuth(h.GetTimeline)).Methods(http.MethodGet)
	r.HandleFunc("/assets/{id}/verify", auth.RequireAuth(h.VerifyProjection)).Methods(http.MethodGet)
}

func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	assetID := mux.Vars(r)["id"]
	if !validator.ValidateUUID(assetID) {
		response.BadRequest(w, "invalid asset id")
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	page, limit = validator.ValidatePagination(page, limit)

	res, err := h.history.GetHistory(r.Context(), inbound.HistoryRequest{
		CompanyID: claims.CompanyID,
		AssetID:   assetID,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", res)
}

func (h *HistoryHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	assetID := mux.Vars(r)["id"]
	if !validator.ValidateUUID(assetID) {
		response.BadRequest(w, "invalid asset id")
		return
	}

	res, err := h.history.GetSummary(r.Context(), claims.CompanyID, assetID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", res)
}

func (h *HistoryHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	assetID := mux.Vars(r)["id"]
	if !validator.ValidateUUID(assetID) {
		response.BadRequest(w, "invalid asset id")
		return
	}

	res, err := h.history.GetTimeline(r.Context(), claims.CompanyID, assetID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", res)
}

func (h *HistoryHandler) VerifyProjection(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	assetID := mux.Vars(r)["id"]
	if !validator.ValidateUUID(assetID) {
		response.BadRequest(w, "invalid asset id")
		return
	}

	res, err := h.history.VerifyProjection(r.Context(), claims.CompanyID, assetID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	if !res.Consistent {
		h.metrics.ObserveReplayDivergence()
	}

	response.Success(w, http.StatusOK, "success", res)
}
