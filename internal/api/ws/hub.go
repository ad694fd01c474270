package ws

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	redisstore "github.com/gosuda/caseplan/internal/store/redis"
)

// ChangeEvent is the payload broadcast after every successful plan mutation.
type ChangeEvent struct {
	Action string    `json:"action"` // "created", "updated", "deleted", "restored"
	ID     uuid.UUID `json:"id,omitempty"`
	CaseID string    `json:"case_id,omitempty"`
}

// Hub bridges the Redis change channel to WebSocket clients.
type Hub struct {
	pubsub *redisstore.PubSub
}

// NewHub creates a new WebSocket hub.
func NewHub(pubsub *redisstore.PubSub) *Hub {
	return &Hub{pubsub: pubsub}
}

// ServeChanges streams plan change events to a connected client.
// Subscribes to the Redis change channel for the lifetime of the socket.
func (h *Hub) ServeChanges(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	messages, cleanup, err := h.pubsub.Subscribe(ctx, redisstore.ChangeChannel())
	if err != nil {
		log.Error().Err(err).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}

// Publish broadcasts a change event to all subscribed clients. Best effort:
// failures are logged and never surface into the edit that triggered them.
func (h *Hub) Publish(ctx context.Context, ev ChangeEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("change event marshal")
		return
	}
	if err := h.pubsub.Publish(ctx, redisstore.ChangeChannel(), payload); err != nil {
		log.Warn().Err(err).Str("action", ev.Action).Msg("change event publish")
	}
}
