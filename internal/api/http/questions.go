package http

import (
	"errors"
	"net/http"

	"github.com/quizgate/quizgate/internal/quiz"
)

// GET /questions?module=<level|id>  (level= accepted as an alias)
// Answer keys ship with the payload: the client runs the session locally,
// parity with the historical single-user app.
func ListQuestionsHandler(source *quiz.Source) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := r.URL.Query().Get("module")
		if m == "" {
			m = r.URL.Query().Get("level")
		}
		ref, err := quiz.ParseModuleRef(m)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		qs, err := source.ForModule(r.Context(), ref)
		if err != nil {
			if errors.Is(err, quiz.ErrEmptyModule) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, qs)
	}
}
