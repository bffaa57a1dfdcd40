package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ativus/ativus/application/port/inbound"
	"github.com/ativus/ativus/application/port/outbound"
	"github.com/ativus/ativus/application/usecase"
	"github.com/ativus/ativus/domain"
	"github.com/ativus/ativus/infrastructure/adapter/memory"
	"github.com/ativus/ativus/infrastructure/config"
	"github.com/ativus/ativus/infrastructure/http/middleware"
	"github.com/ativus/ativus/infrastructure/metrics"
	"github.com/ativus/ativus/infrastructure/service/jwt"
	"github.com/ativus/ativus/infrastructure/service/logger"
)

func TestVerifyDivergenceIncrementsCounter(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	log := logger.NewNopLogger()

	lifecycleUC := usecase.NewLifecycleUseCase(store.Lifecycle(), store.Assets(), store.Holders(), store.Tickets(), log)
	historyUC := usecase.NewHistoryUseCase(store.Audit(), store.Lifecycle(), store.Holders(), nil, log)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	tokenService, err := jwt.NewJWTService(&config.Config{JWTSecret: "test-secret", AccessTokenTTL: time.Hour})
	require.NoError(t, err)
	token, err := tokenService.GenerateAccessToken("actor-1", "co-1", "manager")
	require.NoError(t, err)

	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	NewHistoryHandler(historyUC, m).RegisterRoutes(api, middleware.NewAuthMiddleware(tokenService))

	res, err := lifecycleUC.Register(ctx, inbound.RegisterAssetRequest{
		CompanyID: "co-1", ActorID: "actor-1",
		SerialNumber: "NB-99", Type: "notebook",
	})
	require.NoError(t, err)

	// Append an event whose matching projection update went missing: the
	// stored state keeps the old snapshot at the new version.
	state, err := store.Lifecycle().GetState(ctx, "co-1", res.Asset.ID)
	require.NoError(t, err)
	ghost := uuid.NewString()
	to := domain.StateSnapshot{Status: domain.StatusInUse, HolderKind: domain.HolderTechnician, HolderID: &ghost}
	now := time.Now().UTC()
	event := domain.NewAuditEvent("co-1", res.Asset.ID, state.Version+1, domain.EventTransferred, "actor-1", state.Snapshot(), to, domain.EventPayload{})
	broken := state.Next(state.Snapshot(), now)
	require.NoError(t, store.Lifecycle().Apply(ctx, outbound.TransitionWrite{
		Event:           event,
		State:           broken,
		ExpectedVersion: state.Version,
	}))

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/assets/%s/verify", res.Asset.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env struct {
		Data struct {
			Consistent bool `json:"consistent"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Data.Consistent)

	assert.Equal(t, 1.0, counterValue(t, registry, "ativus_replay_divergence_total"))

	// a consistent asset leaves the counter alone
	healthy, err := lifecycleUC.Register(ctx, inbound.RegisterAssetRequest{
		CompanyID: "co-1", ActorID: "actor-1",
		SerialNumber: "NB-100", Type: "notebook",
	})
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/assets/%s/verify", healthy.Asset.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1.0, counterValue(t, registry, "ativus_replay_divergence_total"))
}

func counterValue(t *testing.T, registry *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() == name {
			require.Len(t, fam.GetMetric(), 1)
			return fam.GetMetric()[0].GetCounter().GetValue()
		}
	}
	return 0
}
