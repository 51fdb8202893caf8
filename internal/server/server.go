// Package server assembles the HTTP router.
package server

import (
	"context"
	"net/http"

	"github.com/Vasu1712/hushgroup-backend/internal/anonmsg"
	"github.com/Vasu1712/hushgroup-backend/internal/api"
	apigroups "github.com/Vasu1712/hushgroup-backend/internal/api/groups"
	apimessages "github.com/Vasu1712/hushgroup-backend/internal/api/messages"
	groupsvc "github.com/Vasu1712/hushgroup-backend/internal/groups"
	"github.com/Vasu1712/hushgroup-backend/internal/identity"
	"github.com/Vasu1712/hushgroup-backend/internal/middleware"
	"github.com/Vasu1712/hushgroup-backend/internal/ws"
	"github.com/gorilla/mux"
)

type Options struct {
	BasePath      string
	AllowedOrigin string
	Resolver      identity.Resolver
	Directory     identity.Directory
	Groups        *groupsvc.Service
	Messages      *anonmsg.Router
	Hub           *ws.Hub
	// Ping reports storage health for /healthz. Optional.
	Ping func(ctx context.Context) error
}

// NewRouter wires every endpoint under opts.BasePath behind authentication,
// plus an unauthenticated /healthz.
func NewRouter(opts Options) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.WithLogger)
	r.Use(middleware.CORS(opts.AllowedOrigin))

	r.HandleFunc("/healthz", healthz(opts.Ping)).Methods(http.MethodGet)

	// Preflight requests carry no credentials.
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	authed := r.PathPrefix(opts.BasePath).Subrouter()
	authed.Use(middleware.Authenticate(opts.Resolver))

	apigroups.RegisterGroupRoutes(authed, &apigroups.GroupHandler{
		Service:   opts.Groups,
		Directory: opts.Directory,
	})
	apimessages.RegisterMessageRoutes(authed, apimessages.NewMessageHandler(opts.Messages, opts.Hub, opts.AllowedOrigin))

	return r
}

func healthz(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				api.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
