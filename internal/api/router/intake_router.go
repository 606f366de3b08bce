package router

import (
	"net/http"

	"lead-intake-backend/internal/api"
	"lead-intake-backend/internal/api/endpoints"
	intakesvc "lead-intake-backend/internal/service/intake"
	"lead-intake-backend/internal/storage"
)

// IntakeRoutes mounts the visitor-facing session API. The service is built in
// main so the websocket handler can route cross-process status events into it.
func IntakeRoutes(prefix string, service *intakesvc.Service, store *storage.EvidenceStore) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		paths := endpoints.IntakePaths{
			SessionsPath:    prefix + "/sessions",
			SessionPrefix:   prefix + "/sessions/",
			WebsocketPrefix: prefix + "/ws/sessions/",
		}
		intakeEndpoints := endpoints.NewIntakeEndpoints(service, s.Handler(), store, paths)

		mux.HandleFunc(paths.SessionsPath, s.MakeHTTPHandleFunc(intakeEndpoints.Sessions))
		mux.HandleFunc(paths.SessionPrefix, s.MakeHTTPHandleFunc(intakeEndpoints.SessionSubresource))
		mux.HandleFunc(paths.WebsocketPrefix, s.MakeHTTPHandleFunc(intakeEndpoints.Websocket))
	}
}
