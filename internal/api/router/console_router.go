package router

import (
	"net/http"

	"lead-intake-backend/internal/api"
	"lead-intake-backend/internal/api/endpoints"
	"lead-intake-backend/internal/api/middleware"
	consolesvc "lead-intake-backend/internal/service/console"
)

func ConsoleRoutes(prefix string, service *consolesvc.Service) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		paths := endpoints.ConsolePaths{
			SessionPrefix:          prefix + "/sessions/",
			CannedPrefix:           prefix + "/canned/",
			SessionWebsocketPrefix: prefix + "/ws/sessions/",
		}
		consoleEndpoints := endpoints.NewConsoleEndpoints(service, s.Handler(), paths)
		auth := middleware.OperatorAuthorization()

		mux.HandleFunc(prefix+"/login", s.MakeHTTPHandleFunc(consoleEndpoints.Login))
		mux.HandleFunc(prefix+"/refresh", s.MakeHTTPHandleFunc(consoleEndpoints.Refresh))
		mux.HandleFunc(prefix+"/operators", s.MakeHTTPHandleFunc(consoleEndpoints.Operators, auth))
		mux.HandleFunc(prefix+"/sessions", s.MakeHTTPHandleFunc(consoleEndpoints.Sessions, auth))
		mux.HandleFunc(paths.SessionPrefix, s.MakeHTTPHandleFunc(consoleEndpoints.SessionSubresource, auth))
		mux.HandleFunc(prefix+"/canned", s.MakeHTTPHandleFunc(consoleEndpoints.CannedResponses, auth))
		mux.HandleFunc(paths.CannedPrefix, s.MakeHTTPHandleFunc(consoleEndpoints.CannedResponseByID, auth))

		// Websocket upgrades authenticate via the token query parameter.
		mux.HandleFunc(prefix+"/ws/feed", s.MakeHTTPHandleFunc(consoleEndpoints.FeedWebsocket))
		mux.HandleFunc(paths.SessionWebsocketPrefix, s.MakeHTTPHandleFunc(consoleEndpoints.SessionWebsocket))
	}
}
