package router

import (
	"net/http"

	"creator-chat-backend/internal/api"
)

// ChatRoutes exposes the websocket relay. The upgrade handler does its own
// auth at join time, so no HTTP middleware guards it.
func ChatRoutes(path string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		mux.HandleFunc(path, s.ChatHandler().ServeWS)
	}
}
