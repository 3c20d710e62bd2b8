package router

import (
	"net/http"

	"creator-chat-backend/internal/api"
	"creator-chat-backend/internal/api/endpoints"
	"creator-chat-backend/internal/api/middleware"
)

func AuthRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		authEndpoints := endpoints.NewAuthEndpoints(s.Database())
		mux.HandleFunc(prefix+"/google/start", s.MakeHTTPHandleFunc(authEndpoints.GoogleStart))
		mux.HandleFunc(prefix+"/google/callback", s.MakeHTTPHandleFunc(authEndpoints.GoogleCallback))
		mux.HandleFunc(prefix+"/me", s.MakeHTTPHandleFunc(authEndpoints.Me, middleware.RequireAuthToken()))
	}
}
