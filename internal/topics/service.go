// Package topics owns the lifecycle of user-created topics: generation,
// two-phase persistence of modules and their questions, stat write-through,
// and cascading deletion.
package topics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quizgate/quizgate/internal/generate"
	"github.com/quizgate/quizgate/internal/grading"
	"github.com/quizgate/quizgate/internal/quiz"
	syncx "github.com/quizgate/quizgate/internal/sync"
)

type Options struct {
	NumModules int           // modules per topic
	PerModule  int           // questions per module
	WriteDelay time.Duration // pause between question writes
	Clock      clock.Clock
}

// Service creates and manages topics. Questions are written one by one with a
// small pause between writes: the historical backing store is eventually
// consistent and drops rapid sequential creates. Against a transactional
// store the delay can be zeroed out via Options.
type Service struct {
	gen   generate.Generator
	mock  generate.Generator
	store quiz.Store
	evts  *syncx.EventRepo
	opts  Options
	clk   clock.Clock
	log   *zap.Logger
}

func NewService(gen generate.Generator, store quiz.Store, evts *syncx.EventRepo, opts Options, log *zap.Logger) *Service {
	if opts.NumModules <= 0 {
		opts.NumModules = 5
	}
	if opts.PerModule <= 0 {
		opts.PerModule = 10
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	mock := generate.NewMockGenerator()
	if gen == nil {
		gen = mock
	}
	return &Service{gen: gen, mock: mock, store: store, evts: evts, opts: opts, clk: opts.Clock, log: log}
}

// Create generates content for name and persists it in two phases: the
// module row first (its server-assigned ID keys everything below it), then
// the module's questions. source "mock" forces the canned generator, which
// is also the documented fallback after a generation failure.
func (s *Service) Create(ctx context.Context, userID, name, source string) (quiz.Topic, []quiz.TopicModule, error) {
	gen := s.gen
	if source == "mock" {
		gen = s.mock
	}
	content, err := gen.Generate(ctx, generate.Request{
		Topic:      name,
		NumModules: s.opts.NumModules,
		PerModule:  s.opts.PerModule,
	})
	if err != nil {
		return quiz.Topic{}, nil, fmt.Errorf("generate %q: %w", name, err)
	}

	topic := quiz.Topic{
		ID:           topicID(name),
		UserID:       userID,
		Name:         name,
		CreatedAt:    s.clk.Now().UnixMilli(),
		TotalModules: len(content.Modules),
	}
	if err := s.store.CreateTopic(ctx, topic); err != nil {
		return quiz.Topic{}, nil, fmt.Errorf("create topic: %w", err)
	}

	mods := make([]quiz.TopicModule, 0, len(content.Modules))
	for i, gm := range content.Modules {
		mod, err := s.store.CreateModule(ctx, quiz.TopicModule{
			TopicID:    topic.ID,
			Level:      gm.Level,
			Title:      gm.Title,
			IsUnlocked: i == 0,
		})
		if err != nil {
			return quiz.Topic{}, nil, fmt.Errorf("create module level %d: %w", gm.Level, err)
		}
		// phase two: questions keyed by the module ID the store just assigned
		for qi, q := range gm.Questions {
			q.ModuleID = mod.ID
			q.TopicID = topic.ID
			q.Level = gm.Level
			if q.ID == "" {
				q.ID = questionID(topic.ID, gm.Level, qi+1)
			}
			if _, err := s.store.PutQuestion(ctx, q); err != nil {
				return quiz.Topic{}, nil, fmt.Errorf("save question %d of module %d: %w", qi+1, gm.Level, err)
			}
			if s.opts.WriteDelay > 0 && qi < len(gm.Questions)-1 {
				s.clk.Sleep(s.opts.WriteDelay)
			}
		}
		mods = append(mods, mod)
	}

	s.log.Info("topic created",
		zap.String("topic_id", topic.ID), zap.String("user_id", userID),
		zap.Int("modules", len(mods)))
	_ = s.evts.Append(ctx, syncx.Event{UserID: userID, Type: syncx.TypeTopicCreated, Key: topic.ID})
	return topic, mods, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]quiz.Topic, error) {
	return s.store.ListTopics(ctx, userID)
}

func (s *Service) Get(ctx context.Context, topicID string) (quiz.Topic, []quiz.TopicModule, error) {
	t, err := s.store.GetTopic(ctx, topicID)
	if err != nil {
		return quiz.Topic{}, nil, err
	}
	mods, err := s.store.ModulesForTopic(ctx, topicID)
	if err != nil {
		return quiz.Topic{}, nil, err
	}
	return t, mods, nil
}

// Delete removes the topic, its modules, their questions, and the user's
// attempts against them.
func (s *Service) Delete(ctx context.Context, userID, topicID string) error {
	mods, err := s.store.ModulesForTopic(ctx, topicID)
	if err != nil {
		return err
	}
	refs := make([]quiz.ModuleRef, len(mods))
	for i, m := range mods {
		refs[i] = quiz.IDRef(m.ID)
	}
	if len(refs) > 0 {
		if _, err := s.store.DeleteAttempts(ctx, quiz.AttemptFilter{UserID: userID, Modules: refs}); err != nil {
			return fmt.Errorf("delete attempts: %w", err)
		}
	}
	if err := s.store.DeleteTopic(ctx, topicID); err != nil {
		return err
	}
	_ = s.evts.Append(ctx, syncx.Event{UserID: userID, Type: syncx.TypeTopicDeleted, Key: topicID})
	return nil
}

// RecordAttempt writes a completed attempt's effect through to the
// denormalized module stats the topic list renders from. The derived view in
// the progress package recomputes the same numbers from raw attempts; this
// keeps the stored copy from drifting behind it.
func (s *Service) RecordAttempt(ctx context.Context, a quiz.Attempt) error {
	if a.Module.IsLevel() {
		return nil // static levels carry no stored stats
	}
	mods, mi, err := s.findModule(ctx, a.Module.ID())
	if err != nil {
		return err
	}
	mod := mods[mi]
	mod.AttemptCount++
	if grading.ValidAttempt(a.Score, a.Total) {
		if pct := grading.Percent(a.Score, a.Total); pct > mod.BestScore {
			mod.BestScore = pct
		}
	}
	completedNow := grading.Passing(mod.BestScore) && !mod.IsCompleted
	if completedNow {
		mod.IsCompleted = true
	}
	if err := s.store.UpdateModule(ctx, mod); err != nil {
		return err
	}
	if completedNow {
		if mi+1 < len(mods) && !mods[mi+1].IsUnlocked {
			next := mods[mi+1]
			next.IsUnlocked = true
			if err := s.store.UpdateModule(ctx, next); err != nil {
				return err
			}
		}
		completed := 0
		for i, m := range mods {
			if m.IsCompleted || i == mi {
				completed++
			}
		}
		if err := s.store.UpdateTopicCounters(ctx, mod.TopicID, completed); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) findModule(ctx context.Context, moduleID string) ([]quiz.TopicModule, int, error) {
	// module IDs are unique across topics; resolve via the owning question set
	qs, err := s.store.QuestionsForModule(ctx, moduleID)
	if err != nil {
		return nil, 0, err
	}
	if len(qs) == 0 {
		return nil, 0, quiz.ErrModuleNotFound
	}
	mods, err := s.store.ModulesForTopic(ctx, qs[0].TopicID)
	if err != nil {
		return nil, 0, err
	}
	for i, m := range mods {
		if m.ID == moduleID {
			return mods, i, nil
		}
	}
	return nil, 0, quiz.ErrModuleNotFound
}

// topicID derives a readable unique ID from the name, the way the historical
// records were keyed.
func topicID(name string) string {
	norm := strings.ToLower(name)
	var b strings.Builder
	for _, r := range norm {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String() + "-" + uuid.NewString()[:8]
}

func questionID(topicID string, level, n int) string {
	prefix, _, _ := strings.Cut(topicID, "-")
	if prefix == "" {
		prefix = "q"
	}
	return fmt.Sprintf("q-%s-l%d-%d-%s", prefix, level, n, uuid.NewString()[:8])
}
