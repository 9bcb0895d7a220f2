package events

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the read-only event endpoints under /api/eventos.
// The status update route lives with the chat package because it goes
// through the assistant and the audit trail.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Get("/api/eventos", handleList(store))
	r.Get("/api/eventos/{id}", handleGet(store))
}

type listResponse struct {
	Total  int     `json:"total"`
	Events []Event `json:"eventos"`
}

func handleList(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := ListFilter{
			From: q.Get("data_inicio"),
			To:   q.Get("data_fim"),
		}
		if v := q.Get("nivel_risco"); v != "" {
			level, err := ParseLevel(v)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "nivel_risco inválido: " + v})
				return
			}
			filter.Level = level
		}

		list, err := store.List(r.Context(), filter)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
			return
		}
		if list == nil {
			list = []Event{}
		}
		writeJSON(w, http.StatusOK, listResponse{Total: len(list), Events: list})
	}
}

func handleGet(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		e, err := store.Get(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Evento não encontrado"})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
