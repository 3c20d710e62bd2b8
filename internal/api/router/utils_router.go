package router

import (
	"net/http"

	"creator-chat-backend/internal/api"
	"creator-chat-backend/internal/api/endpoints"
)

func UtilsRoutes() api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		utilsEndpoints := endpoints.NewUtilsEndpoints()
		mux.HandleFunc("/health", s.MakeHTTPHandleFunc(utilsEndpoints.Health))
	}
}
