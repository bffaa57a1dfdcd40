package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ativus/ativus/application/port/inbound"
	"github.com/ativus/ativus/infrastructure/http/middleware"
	"github.com/ativus/ativus/infrastructure/http/response"
	"github.com/ativus/ativus/infrastructure/http/validator"
	"github.com/ativus/ativus/infrastructure/metrics"
)

// AssetHandler exposes the asset registry and every lifecycle command.
type AssetHandler struct {
	lifecycle inbound.LifecycleUseCase
	metrics   *metrics.Metrics
}

func NewAssetHandler(lifecycle inbound.LifecycleUseCase, m *metrics.Metrics) *AssetHandler {
	return &AssetHandler{
		lifecycle: lifecycle,
		metrics:   m,
	}
}

func (h *AssetHandler) RegisterRoutes(r *mux.Router, auth *middleware.AuthMiddleware) {
	r.HandleFunc("/assets", auth.RequireAuth(h.Register)).Methods(http.MethodPost)
	r.HandleFunc("/assets", auth.RequireAuth(h.List)).Methods(http.MethodGet)
	r.HandleFunc("/assets/{id}", auth.RequireAuth(h.Get)).Methods(http.MethodGet)
	r.HandleFunc("/assets/{id}/transfer", auth.RequireAuth(h.Transfer)).Methods(http.MethodPost)
	r.HandleFunc("/assets/{id}/maintenance/start", auth.RequireAuth(h.StartMaintenance)).Methods(http.MethodPost)
	r.HandleFunc("/assets/{id}/maintenance/end", auth.RequireAuth(h.EndMaintenance)).Methods(http.MethodPost)
	r.HandleFunc("/assets/{id}/decommission", auth.RequireAuth(h.Decommission)).Methods(http.MethodPost)
	r.HandleFunc("/assets/{id}/unavailable", auth.RequireAuth(h.MarkUnavailable)).Methods(http.MethodPost)
	r.HandleFunc("/assets/{id}/observations", auth.RequireAuth(h.RecordObservation)).Methods(http.MethodPost)
}

func (h *AssetHandler) Register(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	var req inbound.RegisterAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if !validator.ValidateSerial(req.SerialNumber) {
		response.BadRequest(w, "serial_number is required and must be 2-64 alphanumeric characters")
		return
	}
	if !validator.ValidateRequired(req.Type) {
		response.BadRequest(w, "type is required")
		return
	}

	req.CompanyID = claims.CompanyID
	req.ActorID = claims.ActorID

	res, err := h.lifecycle.Register(r.Context(), req)
	h.metrics.ObserveCommand("register", err)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "asset registered", res)
}

func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	res, err := h.lifecycle.GetAsset(r.Context(), claims.CompanyID, assetID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", res)
}

func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	page, limit = validator.ValidatePagination(page, limit)

	req := inbound.ListAssetsRequest{
		CompanyID:  claims.CompanyID,
		Status:     q.Get("status"),
		Type:       q.Get("type"),
		HolderKind: q.Get("holder_kind"),
		HolderID:   q.Get("holder_id"),
		Page:       page,
		Limit:      limit,
	}

	res, err := h.lifecycle.ListAssets(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", res)
}

func (h *AssetHandler) Transfer(w http.ResponseWriter, r *http.Request) {
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

	var req inbound.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if !validator.ValidateRequired(string(req.DestinationKind)) {
		response.BadRequest(w, "destination_kind is required")
		return
	}
	if !validator.ValidateRequired(req.DestinationID) {
		response.BadRequest(w, "destination_id is required")
		return
	}

	req.CompanyID = claims.CompanyID
	req.ActorID = claims.ActorID
	req.AssetID = assetID

	res, err := h.lifecycle.Transfer(r.Context(), req)
	h.metrics.ObserveCommand("transfer", err)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "asset transferred", res)
}

func (h *AssetHandler) StartMaintenance(w http.ResponseWriter, r *http.Request) {
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

	var req inbound.StartMaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if !validator.ValidateRequired(req.DefectReport) {
		response.BadRequest(w, "defect_report is required")
		return
	}

	req.CompanyID = claims.CompanyID
	req.ActorID = claims.ActorID
	req.AssetID = assetID

	res, err := h.lifecycle.StartMaintenance(r.Context(), req)
	h.metrics.ObserveCommand("start_maintenance", err)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "maintenance started", res)
}

func (h *AssetHandler) EndMaintenance(w http.ResponseWriter, r *http.Request) {
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

	var req inbound.EndMaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if !validator.ValidateRequired(string(req.Outcome)) {
		response.BadRequest(w, "outcome is required")
		return
	}

	req.CompanyID = claims.CompanyID
	req.ActorID = claims.ActorID
	req.AssetID = assetID

	res, err := h.lifecycle.EndMaintenance(r.Context(), req)
	h.metrics.ObserveCommand("end_maintenance", err)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "maintenance ended", res)
}

func (h *AssetHandler) Decommission(w http.ResponseWriter, r *http.Request) {
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

	var req inbound.DecommissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if !validator.ValidateRequired(req.Reason) {
		response.BadRequest(w, "reason is required")
		return
	}

	req.CompanyID = claims.CompanyID
	req.ActorID = claims.ActorID
	req.AssetID = assetID

	res, err := h.lifecycle.Decommission(r.Context(), req)
	h.metrics.ObserveCommand("decommission", err)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "asset decommissioned", res)
}

func (h *AssetHandler) MarkUnavailable(w http.ResponseWriter, r *http.Request) {
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

	var req inbound.MarkUnavailableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if !validator.ValidateRequired(req.Reason) {
		response.BadRequest(w, "reason is required")
		return
	}

	req.CompanyID = claims.CompanyID
	req.ActorID = claims.ActorID
	req.AssetID = assetID

	res, err := h.lifecycle.MarkUnavailable(r.Context(), req)
	h.metrics.ObserveCommand("mark_unavailable", err)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "asset marked unavailable", res)
}

func (h *AssetHandler) RecordObservation(w http.ResponseWriter, r *http.Request) {
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

	var req inbound.ObservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if !validator.ValidateRequired(req.Note) {
		response.BadRequest(w, "note is required")
		return
	}

	req.CompanyID = claims.CompanyID
	req.ActorID = claims.ActorID
	req.AssetID = assetID

	res, err := h.lifecycle.RecordObservation(r.Context(), req)
	h.metrics.ObserveCommand("observation", err)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "observation recorded", res)
}
