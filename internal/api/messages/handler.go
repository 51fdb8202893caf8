// Package messages serves the anonymous send, inbox and live inbox endpoints.
package messages

import (
	"net/http"
	"time"

	"github.com/Vasu1712/hushgroup-backend/internal/anonmsg"
	"github.com/Vasu1712/hushgroup-backend/internal/api"
	"github.com/Vasu1712/hushgroup-backend/internal/apperr"
	"github.com/Vasu1712/hushgroup-backend/internal/middleware"
	"github.com/Vasu1712/hushgroup-backend/internal/ws"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var validate = validator.New()

type MessageHandler struct {
	Router   *anonmsg.Router
	Hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewMessageHandler builds a handler whose websocket endpoint accepts
// connections from allowedOrigin only.
func NewMessageHandler(router *anonmsg.Router, hub *ws.Hub, allowedOrigin string) *MessageHandler {
	return &MessageHandler{
		Router: router,
		Hub:    hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
	}
}

type sendRequest struct {
	ReceiverID string `json:"receiverId" validate:"required"`
	GroupID    string `json:"groupId" validate:"required"`
	Text       string `json:"text"`
}

type sendResponse struct {
	MessageID string `json:"messageId"`
}

// SendMessage handles POST /messages.
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	senderID, _ := middleware.UserID(r.Context())

	var req sendRequest
	if err := api.DecodeJSON(w, r, &req); err != nil {
		api.WriteError(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		api.WriteError(w, r, apperr.Validation("receiverId and groupId are required"))
		return
	}

	id, err := h.Router.Send(r.Context(), senderID, req.ReceiverID, req.GroupID, req.Text)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, sendResponse{MessageID: id})
}

// Inbox handles GET /messages/inbox.
func (h *MessageHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	entries, err := h.Router.GetInbox(r.Context(), userID)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, entries)
}

// ServeWS upgrades GET /ws/inbox and streams the caller's inbox events until
// the connection closes.
func (h *MessageHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())
	userID, _ := middleware.UserID(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := ws.NewClient(userID, conn)
	if !h.Hub.Add(client) {
		conn.Close()
		return
	}

	// Read pump: the stream is one-way, reads only serve pongs and close frames.
	go func() {
		defer func() {
			h.Hub.Remove(client)
			conn.Close()
		}()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()

	// Write pump
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer func() {
			ticker.Stop()
			conn.Close()
		}()
		for {
			select {
			case message, ok := <-client.Send:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if !ok {
					_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()
}
