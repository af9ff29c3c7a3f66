// Package http is the gateway's JSON surface. Handlers are thin: decode,
// delegate to the domain services, encode. There is no authentication; the
// default user id from config addresses single-user deployments and a
// user_id query parameter selects another profile.
package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// userID resolves the acting user: explicit query param or the configured
// default.
func userID(r *http.Request, def string) string {
	if v := r.URL.Query().Get("user_id"); v != "" {
		return v
	}
	return def
}
