package server

import (
	"context"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// inboundMessage is what a websocket client sends to post into the chat.
type inboundMessage struct {
	Content string `json:"content"`
}

// handleChatSocket upgrades the connection and bridges it to the chat hub.
// New messages are pushed to the client as JSON; frames received from the
// client are posted through the hub like a normal send.
func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("Websocket accept failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closing")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	msgs, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	sender := user.DisplayName
	if sender == "" {
		sender = user.Email
	}

	// Read loop runs concurrently so a quiet client still receives
	// broadcasts. It also notices disconnects.
	go func() {
		defer cancel()
		for {
			var in inboundMessage
			if err := wsjson.Read(ctx, conn, &in); err != nil {
				return
			}
			if _, err := s.hub.Send(ctx, user.ID, sender, in.Content); err != nil {
				s.log.Debug().Err(err).Msg("Rejected websocket message")
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "bye")
			return
		case msg, ok := <-msgs:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "bye")
				return
			}
			writeCtx, writeCancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, msg)
			writeCancel()
			if err != nil {
				return
			}
		}
	}
}
