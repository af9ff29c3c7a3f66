package generate

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/quizgate/quizgate/internal/quiz"
)

// MockGenerator produces canned content with the same shape the LLM backend
// returns. Deterministic for a given topic name, so tests and the offline
// dev mode are reproducible.
type MockGenerator struct{}

func NewMockGenerator() *MockGenerator { return &MockGenerator{} }

func (g *MockGenerator) Generate(_ context.Context, req Request) (Response, error) {
	h := fnv.New64a()
	h.Write([]byte(req.Topic))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	resp := Response{Topic: req.Topic}
	for lvl := 1; lvl <= req.NumModules; lvl++ {
		m := Module{
			Level: lvl,
			Title: fmt.Sprintf("%s - Level %d", req.Topic, lvl),
		}
		for q := 1; q <= req.PerModule; q++ {
			m.Questions = append(m.Questions, mockQuestion(req.Topic, lvl, q, rng.Intn(4)))
		}
		resp.Modules = append(resp.Modules, m)
	}
	return resp, nil
}

func mockQuestion(topic string, level, n, answer int) (q quiz.Question) {
	q.Text = fmt.Sprintf("%s question %d for level %d?", topic, n, level)
	q.Options = []string{
		fmt.Sprintf("Answer option 1 for %s", topic),
		fmt.Sprintf("Answer option 2 for %s", topic),
		fmt.Sprintf("Answer option 3 for %s", topic),
		fmt.Sprintf("Answer option 4 for %s", topic),
	}
	q.Answer = answer
	q.Explanation = fmt.Sprintf("This is the explanation for %s question %d at level %d.", topic, n, level)
	q.Level = level
	return q
}
