package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ativus/ativus/application/port/inbound"
	"github.com/ativus/ativus/infrastructure/http/middleware"
	"github.com/ativus/ativus/infrastructure/http/response"
	"github.com/ativus/ativus/infrastructure/http/validator"
)

// MaintenanceHandler exposes the ticket sub-workflow. The open/close
// commands live on AssetHandler because they drive the top-level state.
type MaintenanceHandler struct {
	maintenance inbound.MaintenanceUseCase
}

func NewMaintenanceHandler(maintenance inbound.MaintenanceUseCase) *MaintenanceHandler {
	return &MaintenanceHandler{
		maintenance: maintenance,
	}
}

func (h *MaintenanceHandler) RegisterRoutes(r *mux.Router, auth *middleware.AuthMiddleware) {
	r.HandleFunc("/assets/{id}/maintenance/diagnose", auth.RequireAuth(h.Diagnose)).Methods(http.MethodPost)
	r.HandleFunc("/assets/{id}/maintenance/ticket", auth.RequireAuth(h.GetOpenTicket)).Methods(http.MethodGet)
	r.HandleFunc("/assets/{id}/maintenance/tickets", auth.RequireAuth(h.ListTickets)).Methods(http.MethodGet)
}

func (h *MaintenanceHandler) Diagnose(w http.ResponseWriter, r *http.Request) {
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

	var req inbound.DiagnoseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if !validator.ValidateRequired(req.Diagnosis) {
		response.BadRequest(w, "diagnosis is required")
		return
	}

	req.CompanyID = claims.CompanyID
	req.ActorID = claims.ActorID
	req.AssetID = assetID

	res, err := h.maintenance.Diagnose(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "ticket diagnosed", res)
}

func (h *MaintenanceHandler) GetOpenTicket(w http.ResponseWriter, r *http.Request) {
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

	res, err := h.maintenance.GetOpenTicket(r.Context(), claims.CompanyID, assetID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", res)
}

func (h *MaintenanceHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
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

	res, err := h.maintenance.ListTickets(r.Context(), claims.CompanyID, assetID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", res)
}
