package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ativus/ativus/domain"
	"github.com/ativus/ativus/infrastructure/config"
	"github.com/ativus/ativus/infrastructure/http/middleware"
	"github.com/ativus/ativus/infrastructure/service/jwt"
)

func feedFixture(t *testing.T, companyID string) (http.HandlerFunc, *Streamer) {
	t.Helper()
	streamer := NewStreamer()

	tokenService, err := jwt.NewJWTService(&config.Config{JWTSecret: "test-secret", AccessTokenTTL: time.Hour})
	require.NoError(t, err)
	token, err := tokenService.GenerateAccessToken("actor-1", companyID, "manager")
	require.NoError(t, err)

	auth := middleware.NewAuthMiddleware(tokenService)
	guarded := auth.RequireAuth(streamer.HandleStream)

	return func(w http.ResponseWriter, r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
		guarded(w, r)
	}, streamer
}

func waitForSubscriber(t *testing.T, s *Streamer) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStreamDeliversCompanyEvents(t *testing.T) {
	serve, streamer := feedFixture(t, "co-1")

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		serve(rec, req)
		close(done)
	}()
	waitForSubscriber(t, streamer)

	streamer.Publish(&domain.AuditEvent{
		CompanyID: "co-1", AssetID: "asset-1", Sequence: 2,
		Type: domain.EventTransferred, ActorID: "actor-1", CreatedAt: time.Now(),
	})
	streamer.Publish(&domain.AuditEvent{
		CompanyID: "co-2", AssetID: "asset-9", Sequence: 1,
		Type: domain.EventCreated, ActorID: "actor-9", CreatedAt: time.Now(),
	})

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.Contains(t, body, "event: connected")
	assert.Contains(t, body, `"asset_id":"asset-1"`)
	assert.NotContains(t, body, "asset-9")
	assert.Equal(t, 0, streamer.SubscriberCount())
}

func TestStreamAssetFilter(t *testing.T) {
	serve, streamer := feedFixture(t, "co-1")

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/stream?asset_id=asset-1", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		serve(rec, req)
		close(done)
	}()
	waitForSubscriber(t, streamer)

	streamer.Publish(&domain.AuditEvent{
		CompanyID: "co-1", AssetID: "asset-1", Sequence: 3,
		Type: domain.EventObservation, ActorID: "actor-1", CreatedAt: time.Now(),
	})
	streamer.Publish(&domain.AuditEvent{
		CompanyID: "co-1", AssetID: "asset-2", Sequence: 1,
		Type: domain.EventCreated, ActorID: "actor-1", CreatedAt: time.Now(),
	})

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.Contains(t, body, `"asset_id":"asset-1"`)
	assert.NotContains(t, body, "asset-2")
}

func TestStreamOutlivesServerWriteTimeout(t *testing.T) {
	serve, streamer := feedFixture(t, "co-1")

	ts := httptest.NewUnstartedServer(serve)
	ts.Config.WriteTimeout = 150 * time.Millisecond
	ts.Start()
	defer ts.Close()

	client := &http.Client{Timeout: 5 * time.Second} // bounds the read loop below
	resp, err := client.Get(ts.URL + "/api/v1/events/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	waitForSubscriber(t, streamer)
	time.Sleep(400 * time.Millisecond) // stay connected past the timeout

	streamer.Publish(&domain.AuditEvent{
		CompanyID: "co-1", AssetID: "asset-1", Sequence: 2,
		Type: domain.EventTransferred, ActorID: "actor-1", CreatedAt: time.Now(),
	})

	reader := bufio.NewReader(resp.Body)
	delivered := false
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		if strings.Contains(line, `"asset_id":"asset-1"`) {
			delivered = true
			break
		}
	}
	assert.True(t, delivered, "stream severed before the event arrived")
}

func TestStreamRequiresAuth(t *testing.T) {
	streamer := NewStreamer()

	rec := httptest.NewRecorder()
	streamer.HandleStream(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events/stream", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, strings.Contains(rec.Body.String(), "event:"))
}
