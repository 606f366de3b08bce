package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"lead-intake-backend/internal/dto"
	consolesvc "lead-intake-backend/internal/service/console"
	"lead-intake-backend/internal/websocket"
)

type ConsoleEndpoints interface {
	Login(http.ResponseWriter, *http.Request) error
	Refresh(http.ResponseWriter, *http.Request) error
	Operators(http.ResponseWriter, *http.Request) error
	Sessions(http.ResponseWriter, *http.Request) error
	SessionSubresource(http.ResponseWriter, *http.Request) error
	CannedResponses(http.ResponseWriter, *http.Request) error
	CannedResponseByID(http.ResponseWriter, *http.Request) error
	FeedWebsocket(http.ResponseWriter, *http.Request) error
	SessionWebsocket(http.ResponseWriter, *http.Request) error
}

type ConsolePaths struct {
	SessionPrefix          string
	CannedPrefix           string
	SessionWebsocketPrefix string
}

type consoleEndpoints struct {
	service *consolesvc.Service
	handler *websocket.Handler
	paths   ConsolePaths
}

func NewConsoleEndpoints(service *consolesvc.Service, handler *websocket.Handler, paths ConsolePaths) ConsoleEndpoints {
	return &consoleEndpoints{
		service: service,
		handler: handler,
		paths:   paths,
	}
}

func (h *consoleEndpoints) Login(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleLogin,
	})
}

func (h *consoleEndpoints) Refresh(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleRefresh,
	})
}

func (h *consoleEndpoints) Operators(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleCreateOperator,
	})
}

func (h *consoleEndpoints) Sessions(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleListSessions,
	})
}

// SessionSubresource dispatches /sessions/{id}, /sessions/{id}/messages and
// /sessions/{id}/close.
func (h *consoleEndpoints) SessionSubresource(w http.ResponseWriter, r *http.Request) error {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, h.paths.SessionPrefix), "/")
	parts := strings.SplitN(trimmed, "/", 2)
	if parts[0] == "" {
		return &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Not found",
			ErrorLog:   fmt.Errorf("console session id missing"),
		}
	}
	sessionID := parts[0]

	rest := ""
	if len(parts) == 2 {
		rest = parts[1]
	}

	switch rest {
	case "":
		return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
			http.MethodGet: h.transcriptHandler(sessionID),
		})
	case "messages":
		return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
			http.MethodPost: h.postTurnHandler(sessionID),
		})
	case "close":
		return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
			http.MethodPost: h.closeHandler(sessionID),
		})
	default:
		return &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Not found",
			ErrorLog:   fmt.Errorf("unknown console session subresource %q", rest),
		}
	}
}

func (h *consoleEndpoints) CannedResponses(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet:  h.handleListCanned,
		http.MethodPost: h.handleCreateCanned,
	})
}

func (h *consoleEndpoints) CannedResponseByID(w http.ResponseWriter, r *http.Request) error {
	responseID := strings.Trim(strings.TrimPrefix(r.URL.Path, h.paths.CannedPrefix), "/")
	if responseID == "" {
		return &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Not found",
			ErrorLog:   fmt.Errorf("canned response id missing"),
		}
	}
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodDelete: func(w http.ResponseWriter, r *http.Request) error {
			if err := h.service.DeleteCannedResponse(r.Context(), responseID); err != nil {
				return h.serviceError(err)
			}
			return WriteJSON(w, http.StatusOK, ApiMessageResponse{Message: "deleted"})
		},
	})
}

// FeedWebsocket attaches an operator to the console-wide session feed. The
// access token rides in a query parameter because browsers cannot set headers
// on websocket upgrades.
func (h *consoleEndpoints) FeedWebsocket(w http.ResponseWriter, r *http.Request) error {
	identity, err := h.websocketIdentity(r)
	if err != nil {
		return err
	}
	h.handler.CreateFeedRoom()
	h.handler.JoinConsoleFeed(w, r, identity.OperatorID)
	return nil
}

func (h *consoleEndpoints) SessionWebsocket(w http.ResponseWriter, r *http.Request) error {
	identity, err := h.websocketIdentity(r)
	if err != nil {
		return err
	}

	sessionID := strings.Trim(strings.TrimPrefix(r.URL.Path, h.paths.SessionWebsocketPrefix), "/")
	if sessionID == "" {
		return &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Session not found",
			ErrorLog:   fmt.Errorf("console websocket session id missing"),
		}
	}
	if _, err := h.service.Transcript(r.Context(), sessionID); err != nil {
		return h.serviceError(err)
	}

	h.handler.CreateSessionRoom(sessionID)
	h.handler.JoinSession(w, r, sessionID, identity.OperatorID)
	return nil
}

func (h *consoleEndpoints) websocketIdentity(r *http.Request) (consolesvc.Identity, error) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		return consolesvc.Identity{}, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Missing token",
			ErrorLog:   fmt.Errorf("console websocket missing token"),
		}
	}
	identity, err := h.service.IdentityFromAuthorizationHeader("Bearer " + token)
	if err != nil {
		return consolesvc.Identity{}, h.serviceError(err)
	}
	return identity, nil
}

func (h *consoleEndpoints) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode login request: %w", err),
		}
	}

	result, err := h.service.Login(r.Context(), consolesvc.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toAuthResponse(result))
}

func (h *consoleEndpoints) handleRefresh(w http.ResponseWriter, r *http.Request) error {
	var req dto.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode refresh request: %w", err),
		}
	}

	result, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, toAuthResponse(result))
}

func (h *consoleEndpoints) handleCreateOperator(w http.ResponseWriter, r *http.Request) error {
	var req dto.CreateOperatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode create operator request: %w", err),
		}
	}

	operator, err := h.service.CreateOperator(r.Context(), consolesvc.CreateOperatorParams{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, toOperatorResponse(operator))
}

func (h *consoleEndpoints) handleListSessions(w http.ResponseWriter, r *http.Request) error {
	sessions, err := h.service.ListSessions(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		return h.serviceError(err)
	}

	resp := dto.SessionListResponse{Sessions: make([]dto.SessionResponse, 0, len(sessions))}
	for _, session := range sessions {
		resp.Sessions = append(resp.Sessions, toSessionResponse(session))
	}
	return WriteJSON(w, http.StatusOK, resp)
}

func (h *consoleEndpoints) transcriptHandler(sessionID string) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		result, err := h.service.Transcript(r.Context(), sessionID)
		if err != nil {
			return h.serviceError(err)
		}
		return WriteJSON(w, http.StatusOK, dto.TranscriptResponse{
			Session: toSessionResponse(result.Session),
			Turns:   toTurnResponses(result.Turns),
		})
	}
}

func (h *consoleEndpoints) postTurnHandler(sessionID string) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		identity, err := h.service.IdentityFromAuthorizationHeader(r.Header.Get("Authorization"))
		if err != nil {
			return h.serviceError(err)
		}

		var req dto.PostOperatorTurnRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return &HTTPError{
				StatusCode: http.StatusBadRequest,
				Message:    "Invalid request payload",
				ErrorLog:   fmt.Errorf("decode operator turn request: %w", err),
			}
		}

		turn, err := h.service.PostOperatorTurn(r.Context(), sessionID, identity, req.Content)
		if err != nil {
			return h.serviceError(err)
		}

		return WriteJSON(w, http.StatusCreated, toTurnResponse(turn))
	}
}

func (h *consoleEndpoints) closeHandler(sessionID string) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		var req dto.CloseSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return &HTTPError{
				StatusCode: http.StatusBadRequest,
				Message:    "Invalid request payload",
				ErrorLog:   fmt.Errorf("decode close session request: %w", err),
			}
		}

		if err := h.service.CloseSession(r.Context(), sessionID, req.Reason); err != nil {
			return h.serviceError(err)
		}
		return WriteJSON(w, http.StatusOK, ApiMessageResponse{Message: "closed"})
	}
}

func (h *consoleEndpoints) handleListCanned(w http.ResponseWriter, r *http.Request) error {
	responses, err := h.service.CannedResponses(r.Context())
	if err != nil {
		return h.serviceError(err)
	}

	resp := dto.CannedResponseListResponse{Responses: make([]dto.CannedResponseResponse, 0, len(responses))}
	for _, response := range responses {
		resp.Responses = append(resp.Responses, toCannedResponse(response))
	}
	return WriteJSON(w, http.StatusOK, resp)
}

func (h *consoleEndpoints) handleCreateCanned(w http.ResponseWriter, r *http.Request) error {
	var req dto.CannedResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode canned response request: %w", err),
		}
	}

	response, err := h.service.CreateCannedResponse(r.Context(), consolesvc.CannedResponseParams{
		Trigger: req.Trigger,
		Body:    req.Body,
	})
	if err != nil {
		return h.serviceError(err)
	}

	return WriteJSON(w, http.StatusCreated, toCannedResponse(response))
}

func toAuthResponse(result consolesvc.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		Operator:     toOperatorResponse(result.Operator),
	}
}

func (h *consoleEndpoints) serviceError(err error) error {
	if err == nil {
		return nil
	}

	svcErr, ok := err.(*consolesvc.Error)
	if !ok {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("console service: %w", err),
		}
	}

	var errorLog error
	if svcErr.Err != nil {
		errorLog = fmt.Errorf("%s: %w", svcErr.Message, svcErr.Err)
	} else {
		errorLog = svcErr
	}

	switch svcErr.Code {
	case consolesvc.ErrorCodeValidation:
		return &HTTPError{StatusCode: http.StatusBadRequest, Message: svcErr.Message, ErrorLog: errorLog}
	case consolesvc.ErrorCodeUnauthorized:
		return &HTTPError{StatusCode: http.StatusUnauthorized, Message: svcErr.Message, ErrorLog: errorLog}
	case consolesvc.ErrorCodeNotFound:
		return &HTTPError{StatusCode: http.StatusNotFound, Message: svcErr.Message, ErrorLog: errorLog}
	case consolesvc.ErrorCodeConflict:
		return &HTTPError{StatusCode: http.StatusConflict, Message: svcErr.Message, ErrorLog: errorLog}
	default:
		return &HTTPError{StatusCode: http.StatusInternalServerError, Message: "Internal server error", ErrorLog: errorLog}
	}
}
