package messages

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterMessageRoutes registers the message endpoints on an authenticated subrouter.
func RegisterMessageRoutes(r *mux.Router, handler *MessageHandler) {
	r.HandleFunc("/messages", handler.SendMessage).Methods(http.MethodPost)
	r.HandleFunc("/messages/inbox", handler.Inbox).Methods(http.MethodGet)
	r.HandleFunc("/ws/inbox", handler.ServeWS).Methods(http.MethodGet)
}
