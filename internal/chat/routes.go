package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/riskdesk/internal/audit"
	"github.com/ziadkadry99/riskdesk/internal/events"
)

// RegisterRoutes mounts the chat API and the event status endpoint.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/yoyo", func(r chi.Router) {
		r.Post("/chat", handleChat(svc))
		r.Post("/sessions", handleCreateSession(svc))
		r.Get("/sessions/{id}/messages", handleGetMessages(svc))
	})
	r.Patch("/api/eventos/{id}/status", handleUpdateStatus(svc))
}

func handleChat(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Message == "" {
			writeError(w, http.StatusBadRequest, "mensagem is required")
			return
		}

		resp, err := svc.Chat(r.Context(), req)
		if errors.Is(err, ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		if err != nil {
			writeInternalError(w, svc, "chat turn failed", err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func handleCreateSession(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc.Sessions() == nil {
			writeError(w, http.StatusNotImplemented, "sessions are disabled")
			return
		}
		sess, err := svc.Sessions().CreateSession(r.Context())
		if err != nil {
			writeInternalError(w, svc, "creating session failed", err)
			return
		}
		writeJSON(w, http.StatusCreated, sess)
	}
}

func handleGetMessages(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc.Sessions() == nil {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		id := chi.URLParam(r, "id")

		if _, err := svc.Sessions().GetSession(r.Context(), id); err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				writeError(w, http.StatusNotFound, "session not found")
				return
			}
			writeInternalError(w, svc, "loading session failed", err)
			return
		}

		messages, err := svc.Sessions().GetMessages(r.Context(), id)
		if err != nil {
			writeInternalError(w, svc, "loading messages failed", err)
			return
		}
		if messages == nil {
			messages = []Message{}
		}
		writeJSON(w, http.StatusOK, messages)
	}
}

func handleUpdateStatus(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		res := svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req, audit.ActorUser)

		status := http.StatusOK
		switch err := res.Err(); {
		case err == nil:
		case errors.Is(err, events.ErrInvalidStatus):
			status = http.StatusBadRequest
		case errors.Is(err, events.ErrNotFound):
			status = http.StatusNotFound
		default:
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, res)
	}
}

// internalErrorDetail is the only text a 500 response carries; the cause goes to the log.
const internalErrorDetail = "erro interno, tente novamente"

func writeInternalError(w http.ResponseWriter, svc *Service, msg string, err error) {
	svc.logger.Error(msg, zap.Error(err))
	writeError(w, http.StatusInternalServerError, internalErrorDetail)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
