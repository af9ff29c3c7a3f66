package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/quizgate/quizgate/internal/progress"
	"github.com/quizgate/quizgate/internal/quiz"
)

// POST /progress/reset  {"topic_id": "..."?}
// Without a topic_id the whole attempt history for the user is wiped
// and every module beyond the first locks again.
func ResetProgressHandler(svc *progress.Service, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TopicID string `json:"topic_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		uid := userID(r, defaultUser)
		var err error
		if req.TopicID != "" {
			err = svc.ResetTopic(r.Context(), uid, req.TopicID)
		} else {
			err = svc.ResetUser(r.Context(), uid)
		}
		if err != nil {
			if errors.Is(err, quiz.ErrTopicNotFound) {
				writeError(w, http.StatusNotFound, "topic not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
	}
}
