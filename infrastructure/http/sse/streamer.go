package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ativus/ativus/domain"
	"github.com/ativus/ativus/infrastructure/http/middleware"
	"github.com/ativus/ativus/infrastructure/http/response"
)

// Streamer is a Server-Sent Events hub for the lifecycle audit feed. Each
// subscriber is scoped to the company from its access token, optionally
// narrowed to a single asset. Delivery is best effort: a subscriber that
// cannot keep up misses events rather than backpressuring commands.
type Streamer struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
}

type subscriber struct {
	id        string
	companyID string
	assetID   string // empty means all assets of the company
	events    chan []byte
	cancel    context.CancelFunc
}

type feedEvent struct {
	AssetID  string               `json:"asset_id"`
	Sequence int64                `json:"sequence"`
	Type     domain.EventType     `json:"type"`
	ActorID  string               `json:"actor_id"`
	From     domain.StateSnapshot `json:"from"`
	To       domain.StateSnapshot `json:"to"`
	Time     int64                `json:"time"`
}

func NewStreamer() *Streamer {
	return &Streamer{subscribers: make(map[string]*subscriber)}
}

// Publish implements outbound.EventPublisher. It fans the event out to every
// subscriber of the event's company, skipping subscribers with a full buffer.
func (s *Streamer) Publish(event *domain.AuditEvent) {
	if event == nil {
		return
	}
	msg, err := json.Marshal(feedEvent{
		AssetID:  event.AssetID,
		Sequence: event.Sequence,
		Type:     event.Type,
		ActorID:  event.ActorID,
		From:     event.From,
		To:       event.To,
		Time:     event.CreatedAt.Unix(),
	})
	if err != nil {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subscribers {
		if sub.companyID != event.CompanyID {
			continue
		}
		if sub.assetID != "" && sub.assetID != event.AssetID {
			continue
		}
		select {
		case sub.events <- msg:
		default:
		}
	}
}

// SubscriberCount reports current subscribers. Exposed for the health check.
func (s *Streamer) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

// HandleStream serves GET /events/stream. It requires authenticated claims in
// the request context and honors an optional asset_id query filter.
func (s *Streamer) HandleStream(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		response.Unauthorized(w, "missing authentication")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "streaming unsupported")
		return
	}

	// The server's WriteTimeout would sever long-lived streams; lift it for
	// this connection only. Not every ResponseWriter supports it (recorders
	// in tests do not), hence the ignored error.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx, cancel := context.WithCancel(r.Context())
	sub := &subscriber{
		id:        uuid.NewString(),
		companyID: claims.CompanyID,
		assetID:   r.URL.Query().Get("asset_id"),
		events:    make(chan []byte, 64),
		cancel:    cancel,
	}
	s.add(sub)
	defer s.remove(sub.id)

	fmt.Fprintf(w, "event: connected\ndata: {\"subscriber_id\":%q}\n\n", sub.id)
	flusher.Flush()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-sub.events:
			fmt.Fprintf(w, "event: lifecycle\ndata: %s\n\n", msg)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ":heartbeat\n\n")
			flusher.Flush()
		}
	}
}

func (s *Streamer) add(sub *subscriber) {
	s.mu.Lock()
	s.subscribers[sub.id] = sub
	s.mu.Unlock()
}

func (s *Streamer) remove(id string) {
	s.mu.Lock()
	if sub, ok := s.subscribers[id]; ok {
		sub.cancel()
		delete(s.subscribers, id)
	}
	s.mu.Unlock()
}
