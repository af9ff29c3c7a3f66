// Package generate produces topic content: a fixed-size ladder of modules,
// each with a title and question list, either from an LLM backend or from the
// deterministic built-in generator.
package generate

import (
	"context"
	"errors"

	"github.com/quizgate/quizgate/internal/quiz"
)

// ErrGeneration wraps any content-creation failure. Callers surface a
// retry / fall-back-to-mock / cancel choice; nothing here is fatal.
var ErrGeneration = errors.New("content generation failed")

type Module struct {
	Level     int             `json:"level"`
	Title     string          `json:"title"`
	Questions []quiz.Question `json:"questions"`
}

type Response struct {
	Topic   string   `json:"topic"`
	Modules []Module `json:"modules"`
}

type Request struct {
	Topic      string
	NumModules int
	PerModule  int
}

// Generator creates the full module ladder for a topic. Difficulty is
// progressive: level 1 easiest, the last level hardest.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}
