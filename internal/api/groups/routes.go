package groups

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterGroupRoutes registers the group endpoints on an authenticated subrouter.
func RegisterGroupRoutes(r *mux.Router, handler *GroupHandler) {
	r.HandleFunc("/groups", handler.CreateGroup).Methods(http.MethodPost)
	r.HandleFunc("/groups", handler.ListGroups).Methods(http.MethodGet)
	r.HandleFunc("/groups/join", handler.JoinGroup).Methods(http.MethodPost)
	r.HandleFunc("/groups/{group-id}", handler.GetGroup).Methods(http.MethodGet)
	r.HandleFunc("/me", handler.Me).Methods(http.MethodGet)
}
