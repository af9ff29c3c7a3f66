package progress

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/quizgate/quizgate/internal/quiz"
	syncx "github.com/quizgate/quizgate/internal/sync"
)

// Service reads externally-owned attempt history and recomputes module
// statuses on demand. It never mutates attempts except through the reset
// operations.
type Service struct {
	store  quiz.Store
	events *syncx.EventRepo // nil-safe
	log    *zap.Logger
}

func NewService(store quiz.Store, events *syncx.EventRepo, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, events: events, log: log}
}

// LevelOrder builds the static numeric module sequence 1..n.
func LevelOrder(n int) []quiz.ModuleRef {
	order := make([]quiz.ModuleRef, n)
	for i := range order {
		order[i] = quiz.LevelRef(i + 1)
	}
	return order
}

// ForLevels derives statuses for the static level scheme.
func (s *Service) ForLevels(ctx context.Context, userID string, levels int) ([]quiz.ModuleStatus, error) {
	attempts, err := s.store.ListAttempts(ctx, quiz.AttemptFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	order := LevelOrder(levels)
	return Ordered(ComputeStatuses(attempts, order), order), nil
}

// ForTopic derives statuses for a topic's generated modules, ordered by
// level. The denormalized flags on the stored TopicModule rows are ignored
// here: attempts are the source of truth.
func (s *Service) ForTopic(ctx context.Context, userID, topicID string) ([]quiz.ModuleStatus, error) {
	order, err := s.topicOrder(ctx, topicID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.store.ListAttempts(ctx, quiz.AttemptFilter{UserID: userID, Modules: order})
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return Ordered(ComputeStatuses(attempts, order), order), nil
}

// ResetUser removes every attempt for the user. A subsequent status read
// reproduces the zero state: only the first module unlocked.
func (s *Service) ResetUser(ctx context.Context, userID string) error {
	n, err := s.store.DeleteAttempts(ctx, quiz.AttemptFilter{UserID: userID})
	if err != nil {
		return fmt.Errorf("delete attempts: %w", err)
	}
	s.log.Info("progress reset", zap.String("user_id", userID), zap.Int64("attempts_removed", n))
	return s.events.Append(ctx, syncx.Event{UserID: userID, Type: syncx.TypeProgressReset, Key: "user"})
}

// ResetTopic removes the topic's attempts and resets the denormalized module
// flags in the same operation, so the derived and stored views cannot drift.
func (s *Service) ResetTopic(ctx context.Context, userID, topicID string) error {
	order, err := s.topicOrder(ctx, topicID)
	if err != nil {
		return err
	}
	n, err := s.store.DeleteAttempts(ctx, quiz.AttemptFilter{UserID: userID, Modules: order})
	if err != nil {
		return fmt.Errorf("delete attempts: %w", err)
	}
	if err := s.store.ResetTopicProgress(ctx, topicID); err != nil {
		return fmt.Errorf("reset topic modules: %w", err)
	}
	s.log.Info("topic progress reset",
		zap.String("user_id", userID), zap.String("topic_id", topicID), zap.Int64("attempts_removed", n))
	return s.events.Append(ctx, syncx.Event{UserID: userID, Type: syncx.TypeProgressReset, Key: topicID})
}

func (s *Service) topicOrder(ctx context.Context, topicID string) ([]quiz.ModuleRef, error) {
	mods, err := s.store.ModulesForTopic(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("topic modules: %w", err)
	}
	if len(mods) == 0 {
		return nil, quiz.ErrTopicNotFound
	}
	order := make([]quiz.ModuleRef, len(mods))
	for i, m := range mods {
		order[i] = quiz.IDRef(m.ID)
	}
	return order, nil
}
