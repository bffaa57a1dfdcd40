package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ativus/ativus/application/port/inbound"
	"github.com/ativus/ativus/domain"
	"github.com/ativus/ativus/infrastructure/http/middleware"
	"github.com/ativus/ativus/infrastructure/http/response"
	"github.com/ativus/ativus/infrastructure/http/validator"
)

// HolderHandler manages the directory of transfer destinations.
type HolderHandler struct {
	directory inbound.DirectoryUseCase
}

func NewHolderHandler(directory inbound.DirectoryUseCase) *HolderHandler {
	return &HolderHandler{
		directory: directory,
	}
}

func (h *HolderHandler) RegisterRoutes(r *mux.Router, auth *middleware.AuthMiddleware) {
	r.HandleFunc("/holders", auth.RequireAuth(h.Create)).Methods(http.MethodPost)
	r.HandleFunc("/holders", auth.RequireAuth(h.List)).Methods(http.MethodGet)
	r.HandleFunc("/holders/{id}", auth.RequireAuth(h.Get)).Methods(http.MethodGet)
}

func (h *HolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	var req inbound.CreateHolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if !validator.ValidateRequired(req.Kind) {
		response.BadRequest(w, "kind is required")
		return
	}
	if !validator.ValidateRequired(req.Name) {
		response.BadRequest(w, "name is required")
		return
	}

	req.CompanyID = claims.CompanyID

	res, err := h.directory.CreateHolder(r.Context(), req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "holder created", res)
}

func (h *HolderHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	holderID := mux.Vars(r)["id"]
	if !validator.ValidateUUID(holderID) {
		response.BadRequest(w, "invalid holder id")
		return
	}

	res, err := h.directory.GetHolder(r.Context(), claims.CompanyID, holderID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", res)
}

func (h *HolderHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	var kind *domain.HolderKind
	if raw := r.URL.Query().Get("kind"); raw != "" {
		k := domain.HolderKind(raw)
		if !domain.ValidHolderKind(k) {
			response.BadRequest(w, "invalid holder kind")
			return
		}
		kind = &k
	}

	res, err := h.directory.ListHolders(r.Context(), claims.CompanyID, kind)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "success", res)
}
