// Package community implements the shared chat room: message persistence
// plus in-process fan-out of new messages to subscribed sessions.
package community

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "cryptofolio/internal/errors"
	"cryptofolio/internal/models"
	"cryptofolio/internal/store"
)

// Hub persists chat messages and broadcasts each stored message to every
// subscriber. Send persists first; a message is only broadcast once the
// store accepted it.
type Hub struct {
	store  store.DataStore
	logger zerolog.Logger

	mu          sync.Mutex
	subscribers map[int]chan models.Message
	nextID      int
}

// NewHub creates a chat hub over the given store.
func NewHub(dataStore store.DataStore, logger zerolog.Logger) *Hub {
	return &Hub{
		store:       dataStore,
		logger:      logger.With().Str("component", "community").Logger(),
		subscribers: make(map[int]chan models.Message),
	}
}

// History returns the most recent messages in chronological order.
func (h *Hub) History(ctx context.Context, limit int) ([]models.Message, error) {
	msgs, err := h.store.ListMessages(ctx, limit)
	if err != nil {
		return nil, apperrors.NewRemoteError("store", "list messages", "could not load messages", err)
	}
	return msgs, nil
}

// Send validates, persists and broadcasts a message.
func (h *Hub) Send(ctx context.Context, userID, sender, content string) (models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, apperrors.NewValidationError("content", content, "message must not be empty")
	}
	if sender == "" {
		sender = "anonymous"
	}

	msg := models.Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		Sender:    sender,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := h.store.SaveMessage(ctx, msg); err != nil {
		return models.Message{}, apperrors.NewRemoteError("store", "send message", "could not save message", err)
	}

	h.broadcast(msg)
	return msg, nil
}

// Subscribe returns a channel of newly sent messages and an unsubscribe
// function. Slow subscribers drop messages instead of blocking the sender.
func (h *Hub) Subscribe() (<-chan models.Message, func()) {
	ch := make(chan models.Message, 16)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subscribers[id] = ch
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		if sub, ok := h.subscribers[id]; ok {
			delete(h.subscribers, id)
			close(sub)
		}
		h.mu.Unlock()
	}
}

func (h *Hub) broadcast(msg models.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subscribers {
		select {
		case ch <- msg:
		default:
			h.logger.Warn().Int("subscriber", id).Msg("Dropping message for slow subscriber")
		}
	}
}
