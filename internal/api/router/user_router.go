package router

import (
	"net/http"

	"creator-chat-backend/internal/api"
	"creator-chat-backend/internal/api/endpoints"
	"creator-chat-backend/internal/api/middleware"
)

func UserRoutes(prefix string) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		userEndpoints := endpoints.NewUserEndpoints(s.Database())
		mux.HandleFunc(prefix+"/me", s.MakeHTTPHandleFunc(userEndpoints.Me, middleware.RequireAuthToken()))
		mux.HandleFunc(prefix+"/me/username", s.MakeHTTPHandleFunc(userEndpoints.Username, middleware.RequireAuthToken()))
		mux.HandleFunc(prefix+"/me/profile", s.MakeHTTPHandleFunc(userEndpoints.Profile, middleware.RequireAuthToken()))
	}
}
