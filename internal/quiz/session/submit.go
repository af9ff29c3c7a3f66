package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/quizgate/quizgate/internal/quiz"
)

// Submitter persists completed attempts with best-effort semantics: a failed
// write is logged, never retried, and never blocks the results view. The
// returned attempt's Stored flag tells the caller whether the write landed.
type Submitter struct {
	store   quiz.AttemptStore
	timeout time.Duration
	log     *zap.Logger
}

func NewSubmitter(store quiz.AttemptStore, log *zap.Logger) *Submitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Submitter{store: store, timeout: 5 * time.Second, log: log}
}

func (s *Submitter) Submit(ctx context.Context, a quiz.Attempt) quiz.Attempt {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.CreateAttempt(ctx, a); err != nil {
		s.log.Warn("attempt write failed, serving local copy",
			zap.String("attempt_id", a.ID),
			zap.String("module", a.Module.String()),
			zap.Error(err))
		a.Stored = false
		return a
	}
	a.Stored = true
	return a
}
