package endpoints

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"lead-intake-backend/internal/dto"
	intakesvc "lead-intake-backend/internal/service/intake"
	"lead-intake-backend/internal/storage"
	"lead-intake-backend/internal/websocket"

	"github.com/google/uuid"
)

const maxUploadBytes = 10 << 20

type IntakeEndpoints interface {
	Sessions(http.ResponseWriter, *http.Request) error
	SessionSubresource(http.ResponseWriter, *http.Request) error
	Websocket(http.ResponseWriter, *http.Request) error
}

type IntakePaths struct {
	SessionsPath    string
	SessionPrefix   string
	WebsocketPrefix string
}

type intakeEndpoints struct {
	service *intakesvc.Service
	handler *websocket.Handler
	store   *storage.EvidenceStore
	paths   IntakePaths
}

func NewIntakeEndpoints(service *intakesvc.Service, handler *websocket.Handler, store *storage.EvidenceStore, paths IntakePaths) IntakeEndpoints {
	return &intakeEndpoints{
		service: service,
		handler: handler,
		store:   store,
		paths:   paths,
	}
}

func (h *intakeEndpoints) Sessions(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleStartSession,
	})
}

// SessionSubresource dispatches /sessions/{id}/messages and
// /sessions/{id}/uploads.
func (h *intakeEndpoints) SessionSubresource(w http.ResponseWriter, r *http.Request) error {
	sessionID, rest, err := h.splitSessionPath(r.URL.Path, h.paths.SessionPrefix)
	if err != nil {
		return err
	}

	switch rest {
	case "messages":
		return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
			http.MethodGet:  h.transcriptHandler(sessionID),
			http.MethodPost: h.postMessageHandler(sessionID),
		})
	case "uploads":
		return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
			http.MethodPost: h.uploadHandler(sessionID),
		})
	default:
		return &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Not found",
			ErrorLog:   fmt.Errorf("unknown session subresource %q", rest),
		}
	}
}

func (h *intakeEndpoints) Websocket(w http.ResponseWriter, r *http.Request) error {
	sessionID := strings.Trim(strings.TrimPrefix(r.URL.Path, h.paths.WebsocketPrefix), "/")
	if sessionID == "" {
		return &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Session not found",
			ErrorLog:   fmt.Errorf("websocket session id missing"),
		}
	}

	if _, err := h.service.Transcript(r.Context(), sessionID); err != nil {
		return h.serviceError(err)
	}

	clientID := strings.TrimSpace(r.URL.Query().Get("clientId"))
	if clientID == "" {
		clientID = uuid.NewString()
	}

	h.handler.CreateSessionRoom(sessionID)
	h.handler.JoinSession(w, r, sessionID, clientID)
	return nil
}

func (h *intakeEndpoints) handleStartSession(w http.ResponseWriter, r *http.Request) error {
	var req dto.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   fmt.Errorf("decode start session request: %w", err),
		}
	}

	result, err := h.service.StartSession(r.Context(), intakesvc.StartParams{
		SessionID: req.SessionID,
		EntryMode: req.EntryMode,
		Language:  req.Language,
	})
	if err != nil {
		return h.serviceError(err)
	}

	h.handler.CreateSessionRoom(result.Session.SessionID)

	resp := dto.StartSessionResponse{
		Session: toSessionResponse(result.Session),
		Turns:   toTurnResponses(result.Turns),
		Resumed: result.Resumed,
	}
	if len(resp.Turns) > 0 && len(result.Options) > 0 {
		resp.Turns[len(resp.Turns)-1].Options = toOptionResponses(result.Options)
	}

	status := http.StatusCreated
	if result.Resumed {
		status = http.StatusOK
	}
	return WriteJSON(w, status, resp)
}

func (h *intakeEndpoints) postMessageHandler(sessionID string) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		var req dto.PostVisitorMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return &HTTPError{
				StatusCode: http.StatusBadRequest,
				Message:    "Invalid request payload",
				ErrorLog:   fmt.Errorf("decode visitor message request: %w", err),
			}
		}

		result, err := h.service.SubmitVisitorInput(r.Context(), intakesvc.MessageParams{
			SessionID: sessionID,
			Content:   req.Content,
		})
		if err != nil {
			return h.serviceError(err)
		}

		return WriteJSON(w, http.StatusCreated, toMessageResponse(result))
	}
}

func (h *intakeEndpoints) transcriptHandler(sessionID string) func(http.ResponseWriter, *http.Request) error {
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

func (h *intakeEndpoints) uploadHandler(sessionID string) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		if h.store == nil {
			return &HTTPError{
				StatusCode: http.StatusServiceUnavailable,
				Message:    "Uploads are not available",
				ErrorLog:   fmt.Errorf("evidence store not configured"),
			}
		}

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return &HTTPError{
				StatusCode: http.StatusBadRequest,
				Message:    "Invalid upload",
				ErrorLog:   fmt.Errorf("parse multipart form: %w", err),
			}
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			return &HTTPError{
				StatusCode: http.StatusBadRequest,
				Message:    "Missing file",
				ErrorLog:   fmt.Errorf("read upload file: %w", err),
			}
		}
		defer file.Close()

		url, putErr := h.store.Put(r.Context(), sessionID, header.Filename, file)

		// A failed store write still reaches the dialogue engine so the
		// visitor gets the retry prompt instead of a dead end.
		params := intakesvc.MessageParams{SessionID: sessionID}
		if putErr != nil {
			params.UploadError = true
		} else {
			params.UploadURL = url
		}

		result, err := h.service.SubmitVisitorInput(r.Context(), params)
		if err != nil {
			return h.serviceError(err)
		}

		resp := dto.UploadResponse{
			URL:    url,
			Result: toMessageResponse(result),
			Failed: putErr != nil,
		}
		if putErr != nil {
			resp.Message = "upload failed"
		}
		return WriteJSON(w, http.StatusCreated, resp)
	}
}

func toMessageResponse(result intakesvc.MessageResult) dto.PostMessageResponse {
	turns := append([]dto.TurnResponse{toTurnResponse(result.VisitorTurn)}, toTurnResponses(result.Replies)...)
	return dto.PostMessageResponse{
		Session: toSessionResponse(result.Session),
		Turns:   turns,
		Options: toOptionResponses(result.Options),
	}
}

func (h *intakeEndpoints) splitSessionPath(path, prefix string) (string, string, error) {
	trimmed := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", &HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "Not found",
			ErrorLog:   fmt.Errorf("invalid session path %q", path),
		}
	}
	return parts[0], parts[1], nil
}

func (h *intakeEndpoints) serviceError(err error) error {
	if err == nil {
		return nil
	}

	svcErr, ok := err.(*intakesvc.Error)
	if !ok {
		return &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Internal server error",
			ErrorLog:   fmt.Errorf("intake service: %w", err),
		}
	}

	var errorLog error
	if svcErr.Err != nil {
		errorLog = fmt.Errorf("%s: %w", svcErr.Message, svcErr.Err)
	} else {
		errorLog = svcErr
	}

	switch svcErr.Code {
	case intakesvc.ErrorCodeValidation:
		return &HTTPError{StatusCode: http.StatusBadRequest, Message: svcErr.Message, ErrorLog: errorLog}
	case intakesvc.ErrorCodeNotFound:
		return &HTTPError{StatusCode: http.StatusNotFound, Message: svcErr.Message, ErrorLog: errorLog}
	case intakesvc.ErrorCodeConflict:
		return &HTTPError{StatusCode: http.StatusConflict, Message: svcErr.Message, ErrorLog: errorLog}
	case intakesvc.ErrorCodeBusy:
		return &HTTPError{StatusCode: http.StatusTooManyRequests, Message: svcErr.Message, ErrorLog: errorLog}
	default:
		return &HTTPError{StatusCode: http.StatusInternalServerError, Message: "Internal server error", ErrorLog: errorLog}
	}
}
