package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizgate/quizgate/internal/kv"
)

// GET /prefs/{key}
func GetPrefHandler(store kv.Store, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		v, err := store.Get(r.Context(), userID(r, defaultUser), key)
		if err != nil {
			if errors.Is(err, kv.ErrNotFound) {
				writeError(w, http.StatusNotFound, "not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": v})
	}
}

// PUT /prefs/{key}  {"value": "..."}
func PutPrefHandler(store kv.Store, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Value string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		key := chi.URLParam(r, "key")
		if err := store.Set(r.Context(), userID(r, defaultUser), key, req.Value); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": req.Value})
	}
}

// DELETE /prefs/{key}
func DeletePrefHandler(store kv.Store, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Remove(r.Context(), userID(r, defaultUser), chi.URLParam(r, "key")); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
