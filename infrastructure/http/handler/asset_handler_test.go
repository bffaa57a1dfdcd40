package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ativus/ativus/application/usecase"
	"github.com/ativus/ativus/domain"
	"github.com/ativus/ativus/infrastructure/adapter/memory"
	"github.com/ativus/ativus/infrastructure/config"
	"github.com/ativus/ativus/infrastructure/http/middleware"
	"github.com/ativus/ativus/infrastructure/http/response"
	"github.com/ativus/ativus/infrastructure/service/jwt"
	"github.com/ativus/ativus/infrastructure/service/logger"
)

type apiFixture struct {
	router  *mux.Router
	store   *memory.Store
	token   string
	depotID string
	techID  string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	store := memory.NewStore()
	log := logger.NewNopLogger()

	lifecycleUC := usecase.NewLifecycleUseCase(store.Lifecycle(), store.Assets(), store.Holders(), store.Tickets(), log)
	maintenanceUC := usecase.NewMaintenanceUseCase(store.Tickets(), log)
	historyUC := usecase.NewHistoryUseCase(store.Audit(), store.Lifecycle(), store.Holders(), nil, log)
	directoryUC := usecase.NewDirectoryUseCase(store.Holders(), log)

	tokenService, err := jwt.NewJWTService(&config.Config{JWTSecret: "test-secret", AccessTokenTTL: time.Hour})
	require.NoError(t, err)
	token, err := tokenService.GenerateAccessToken("actor-1", "co-1", "manager")
	require.NoError(t, err)

	auth := middleware.NewAuthMiddleware(tokenService)
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	NewAssetHandler(lifecycleUC, nil).RegisterRoutes(api, auth)
	NewMaintenanceHandler(maintenanceUC).RegisterRoutes(api, auth)
	NewHistoryHandler(historyUC, nil).RegisterRoutes(api, auth)
	NewHolderHandler(directoryUC).RegisterRoutes(api, auth)

	f := &apiFixture{router: router, store: store, token: token}
	f.depotID = f.seedHolder(t, domain.HolderDepot, "Depósito Central")
	f.techID = f.seedHolder(t, domain.HolderTechnician, "Carlos Pereira")
	return f
}

func (f *apiFixture) seedHolder(t *testing.T, kind domain.HolderKind, name string) string {
	t.Helper()
	holder := &domain.Holder{
		ID: uuid.NewString(), CompanyID: "co-1", Kind: kind, Name: name, Active: true,
	}
	require.NoError(t, f.store.Holders().Create(context.Background(), holder))
	return holder.ID
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func (f *apiFixture) registerAsset(t *testing.T, serial string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/v1/assets", map[string]interface{}{
		"serial_number": serial,
		"type":          "notebook",
		"depot_id":      f.depotID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var env struct {
		Data struct {
			Asset struct {
				ID string `json:"id"`
			} `json:"asset"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotEmpty(t, env.Data.Asset.ID)
	return env.Data.Asset.ID
}

func TestRegisterAssetEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/assets", map[string]interface{}{
		"serial_number": "nb-2024-001",
		"type":          "notebook",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.True(t, env.Status)
	assert.Equal(t, "asset registered", env.Message)
}

func TestRegisterRequiresAuth(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assets", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/assets", bytes.NewBufferString(`{}`))
	req.Header.Set("Authorization", "Bearer bogus")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDuplicateSerialConflict(t *testing.T) {
	f := newAPIFixture(t)
	f.registerAsset(t, "NB-01")

	rec := f.do(t, http.MethodPost, "/api/v1/assets", map[string]interface{}{
		"serial_number": "NB-01",
		"type":          "notebook",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.False(t, env.Status)
	assert.Equal(t, "DUPLICATE_SERIAL", env.Code)
}

func TestTransferEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	assetID := f.registerAsset(t, "NB-02")

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/assets/%s/transfer", assetID), map[string]interface{}{
		"destination_kind": "technician",
		"destination_id":   f.techID,
		"reason":           "field job",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env struct {
		Data struct {
			State struct {
				Status  string `json:"status"`
				Version int64  `json:"version"`
			} `json:"state"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "em_uso", env.Data.State.Status)
	assert.Equal(t, int64(2), env.Data.State.Version)
}

func TestTransferVersionConflict(t *testing.T) {
	f := newAPIFixture(t)
	assetID := f.registerAsset(t, "NB-03")

	// bump to version 2
	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/assets/%s/transfer", assetID), map[string]interface{}{
		"destination_kind": "technician",
		"destination_id":   f.techID,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/assets/%s/transfer", assetID), map[string]interface{}{
		"destination_kind": "depot",
		"destination_id":   f.depotID,
		"if_version":       1,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONCURRENT_MODIFICATION", decodeEnvelope(t, rec).Code)
}

func TestMaintenanceFlowEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	assetID := f.registerAsset(t, "NB-04")

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/assets/%s/maintenance/start", assetID), map[string]interface{}{
		"defect_report": "does not power on",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/assets/%s/maintenance/diagnose", assetID), map[string]interface{}{
		"diagnosis":       "dead PSU",
		"estimated_cents": 42000,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/assets/%s/maintenance/ticket", assetID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/assets/%s/maintenance/end", assetID), map[string]interface{}{
		"outcome":       "repaired",
		"closing_notes": "PSU swapped",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// closing again: no open ticket left
	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/assets/%s/maintenance/end", assetID), map[string]interface{}{
		"outcome": "repaired",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "NO_OPEN_TICKET", decodeEnvelope(t, rec).Code)
}

func TestDecommissionAndTerminalRejection(t *testing.T) {
	f := newAPIFixture(t)
	assetID := f.registerAsset(t, "NB-05")

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/assets/%s/decommission", assetID), map[string]interface{}{
		"reason": "obsolete",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/assets/%s/transfer", assetID), map[string]interface{}{
		"destination_kind": "depot",
		"destination_id":   f.depotID,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_TRANSITION", decodeEnvelope(t, rec).Code)
}

func TestHistoryAndVerifyEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	assetID := f.registerAsset(t, "NB-06")

	rec := f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/assets/%s/observations", assetID), map[string]interface{}{
		"note": "small dent on lid",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/assets/%s/history?page=1&limit=10", assetID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var histEnv struct {
		Data struct {
			Total  int `json:"total"`
			Events []struct {
				Sequence int64  `json:"sequence"`
				Type     string `json:"type"`
			} `json:"events"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &histEnv))
	assert.Equal(t, 2, histEnv.Data.Total)
	assert.Equal(t, "CREATED", histEnv.Data.Events[0].Type)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/assets/%s/verify", assetID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var verifyEnv struct {
		Data struct {
			Consistent bool `json:"consistent"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verifyEnv))
	assert.True(t, verifyEnv.Data.Consistent)
}

func TestGetUnknownAsset(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/assets/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "ASSET_NOT_FOUND", decodeEnvelope(t, rec).Code)

	rec = f.do(t, http.MethodGet, "/api/v1/assets/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAndListHolders(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/holders", map[string]interface{}{
		"kind": "client",
		"name": "Mercado Azul",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/holders?kind=client", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data struct {
			Holders []struct {
				Name string `json:"name"`
			} `json:"holders"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data.Holders, 1)
	assert.Equal(t, "Mercado Azul", env.Data.Holders[0].Name)

	rec = f.do(t, http.MethodGet, "/api/v1/holders?kind=warehouse", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
