package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ativus/ativus/application/port/inbound"
	"github.com/ativus/ativus/infrastructure/http/middleware"
	"github.com/ativus/ativus/infrastructure/http/response"
)

// DashboardHandler serves cached fleet counts for the company overview.
type DashboardHandler struct {
	dashboard inbound.DashboardUseCase
}

func NewDashboardHandler(dashboard inbound.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
	}
}

func (h *DashboardHandler) RegisterRoutes(r *mux.Router, auth *middleware.AuthMiddleware) {
	r.HandleFunc("/dashboard", auth.RequireAuth(h.Get)).Methods(http.MethodGet)
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	res, err := h.dashboard.GetDashboard(r.Context(), claims.CompanyID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", res)
}
