package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizgate/quizgate/internal/generate"
	"github.com/quizgate/quizgate/internal/quiz"
	"github.com/quizgate/quizgate/internal/topics"
)

type topicResponse struct {
	quiz.Topic
	Modules []quiz.TopicModule `json:"modules"`
}

// POST /topics  {"name": "...", "source": "mock"?}
// Generation failure is recoverable: 502 plus a fallback hint, the client
// may retry with source=mock or give up.
func CreateTopicHandler(svc *topics.Service, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name   string `json:"name" validate:"required,min=2,max=120"`
			Source string `json:"source" validate:"omitempty,oneof=mock openai"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		t, mods, err := svc.Create(r.Context(), userID(r, defaultUser), req.Name, req.Source)
		if err != nil {
			if errors.Is(err, generate.ErrGeneration) {
				writeJSON(w, http.StatusBadGateway, map[string]string{
					"error":    err.Error(),
					"fallback": "mock",
				})
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, topicResponse{Topic: t, Modules: mods})
	}
}

// GET /topics?user_id=
func ListTopicsHandler(svc *topics.Service, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context(), userID(r, defaultUser))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if list == nil {
			list = []quiz.Topic{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /topics/{topicID}
func GetTopicHandler(svc *topics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, mods, err := svc.Get(r.Context(), chi.URLParam(r, "topicID"))
		if err != nil {
			if errors.Is(err, quiz.ErrTopicNotFound) {
				writeError(w, http.StatusNotFound, "topic not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, topicResponse{Topic: t, Modules: mods})
	}
}

// DELETE /topics/{topicID}
func DeleteTopicHandler(svc *topics.Service, defaultUser string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.Delete(r.Context(), userID(r, defaultUser), chi.URLParam(r, "topicID"))
		if err != nil {
			if errors.Is(err, quiz.ErrTopicNotFound) {
				writeError(w, http.StatusNotFound, "topic not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
