package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quizgate/quizgate/internal/quiz"
	syncx "github.com/quizgate/quizgate/internal/sync"
	"github.com/quizgate/quizgate/internal/topics"
)

type attemptRequest struct {
	ID          string              `json:"id"`
	UserID      string              `json:"user_id"`
	Module      quiz.ModuleRef      `json:"module_id"`
	Score       int                 `json:"score" validate:"min=0"`
	Total       int                 `json:"total" validate:"min=0"`
	DurationSec int64               `json:"duration" validate:"min=0"`
	Timestamp   int64               `json:"timestamp"`
	Answers     []quiz.AnswerRecord `json:"answers" validate:"dive"`
}

// POST /attempts
// Stores a completed attempt and writes the denormalized topic-module stats
// through. Attempts are append-only; nothing here mutates history.
func CreateAttemptHandler(store quiz.AttemptStore, topicsSvc *topics.Service, events *syncx.EventRepo, defaultUser string, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req attemptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Module.IsZero() {
			writeError(w, http.StatusBadRequest, "module_id required")
			return
		}
		if req.Score > req.Total {
			writeError(w, http.StatusBadRequest, "score exceeds total")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		a := quiz.Attempt{
			ID:          req.ID,
			UserID:      req.UserID,
			Module:      req.Module,
			Score:       req.Score,
			Total:       req.Total,
			DurationSec: req.DurationSec,
			Timestamp:   req.Timestamp,
			Answers:     req.Answers,
		}
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.UserID == "" {
			a.UserID = defaultUser
		}
		if a.Timestamp == 0 {
			a.Timestamp = time.Now().UnixMilli()
		}
		if err := store.CreateAttempt(r.Context(), a); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		a.Stored = true
		if err := topicsSvc.RecordAttempt(r.Context(), a); err != nil {
			// stored stats lag behind; the derived view stays correct
			log.Warn("module stat write-through failed",
				zap.String("module", a.Module.String()), zap.Error(err))
		}
		_ = events.Append(r.Context(), syncx.Event{
			UserID: a.UserID, Type: syncx.TypeAttemptSubmitted, Key: a.Module.Key(),
		})
		writeJSON(w, http.StatusCreated, a)
	}
}

// GET /attempts?user_id=&module=
func ListAttemptsHandler(store quiz.AttemptStore, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := quiz.AttemptFilter{UserID: userID(r, defaultUser)}
		if m := r.URL.Query().Get("module"); m != "" {
			ref, err := quiz.ParseModuleRef(m)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			f.Module = ref
		}
		list, err := store.ListAttempts(r.Context(), f)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if list == nil {
			list = []quiz.Attempt{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}
