package http

import (
	"errors"
	"net/http"

	"github.com/quizgate/quizgate/internal/progress"
	"github.com/quizgate/quizgate/internal/quiz"
)

// GET /modules?user_id=&topic_id=&levels=
// Derived statuses, recomputed from the attempt history on every call.
func ListModulesHandler(svc *progress.Service, defaultUser string, defaultLevels int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := userID(r, defaultUser)
		if topicID := r.URL.Query().Get("topic_id"); topicID != "" {
			statuses, err := svc.ForTopic(r.Context(), uid, topicID)
			if err != nil {
				if errors.Is(err, quiz.ErrTopicNotFound) {
					writeError(w, http.StatusNotFound, "topic not found")
					return
				}
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, statuses)
			return
		}
		levels := parseIntDefault(r.URL.Query().Get("levels"), defaultLevels)
		statuses, err := svc.ForLevels(r.Context(), uid, levels)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, statuses)
	}
}
