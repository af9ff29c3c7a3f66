package progress

import (
	"context"
	"testing"

	"github.com/quizgate/quizgate/internal/quiz"
)

func seedTopic(t *testing.T, store quiz.Store, userID, topicID string, n int) []quiz.TopicModule {
	t.Helper()
	ctx := context.Background()
	if err := store.CreateTopic(ctx, quiz.Topic{ID: topicID, UserID: userID, Name: "t", TotalModules: n}); err != nil {
		t.Fatalf("create topic: %v", err)
	}
	out := make([]quiz.TopicModule, 0, n)
	for i := 1; i <= n; i++ {
		m, err := store.CreateModule(ctx, quiz.TopicModule{
			TopicID: topicID, Level: i, Title: "lvl", IsUnlocked: i == 1,
		})
		if err != nil {
			t.Fatalf("create module: %v", err)
		}
		out = append(out, m)
	}
	return out
}

func TestServiceForLevels(t *testing.T) {
	ctx := context.Background()
	store := quiz.NewInMemoryStore()
	svc := NewService(store, nil, nil)

	for _, a := range []quiz.Attempt{
		{UserID: "u1", Module: quiz.LevelRef(1), Score: 9, Total: 10},
		{UserID: "u2", Module: quiz.LevelRef(2), Score: 10, Total: 10}, // other user
	} {
		if err := store.CreateAttempt(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	got, err := svc.ForLevels(ctx, "u1", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 statuses, got %d", len(got))
	}
	if !got[0].IsCompleted || !got[1].IsUnlocked {
		t.Errorf("u1 level 1 pass should unlock level 2: %+v", got[:2])
	}
	if got[1].AttemptCount != 0 {
		t.Error("u2's attempts must not leak into u1's statuses")
	}
}

func TestServiceResetUser(t *testing.T) {
	ctx := context.Background()
	store := quiz.NewInMemoryStore()
	svc := NewService(store, nil, nil)

	for lvl := 1; lvl <= 3; lvl++ {
		if err := store.CreateAttempt(ctx, quiz.Attempt{
			UserID: "u1", Module: quiz.LevelRef(lvl), Score: 10, Total: 10,
		}); err != nil {
			t.Fatal(err)
		}
	}
	if err := svc.ResetUser(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	got, err := svc.ForLevels(ctx, "u1", 3)
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range got {
		if s.BestScore != 0 || s.IsCompleted || s.AttemptCount != 0 {
			t.Errorf("module %d not zeroed after reset: %+v", i+1, s)
		}
		if got, want := s.IsUnlocked, i == 0; got != want {
			t.Errorf("module %d: unlocked=%v after reset, want %v", i+1, got, want)
		}
	}
}

func TestServiceTopicFlow(t *testing.T) {
	ctx := context.Background()
	store := quiz.NewInMemoryStore()
	svc := NewService(store, nil, nil)
	mods := seedTopic(t, store, "u1", "topic-1", 3)

	if err := store.CreateAttempt(ctx, quiz.Attempt{
		UserID: "u1", Module: quiz.IDRef(mods[0].ID), Score: 9, Total: 10,
	}); err != nil {
		t.Fatal(err)
	}

	got, err := svc.ForTopic(ctx, "u1", "topic-1")
	if err != nil {
		t.Fatal(err)
	}
	if !got[0].IsCompleted || !got[1].IsUnlocked || got[2].IsUnlocked {
		t.Errorf("topic gating wrong: %+v", got)
	}

	if err := svc.ResetTopic(ctx, "u1", "topic-1"); err != nil {
		t.Fatal(err)
	}
	got, err = svc.ForTopic(ctx, "u1", "topic-1")
	if err != nil {
		t.Fatal(err)
	}
	for i, s := range got {
		if s.AttemptCount != 0 || s.BestScore != 0 || s.IsCompleted {
			t.Errorf("module %d not zeroed: %+v", i, s)
		}
	}
	// denormalized rows reset too
	stored, err := store.ModulesForTopic(ctx, "topic-1")
	if err != nil {
		t.Fatal(err)
	}
	for i, m := range stored {
		if m.BestScore != 0 || m.IsCompleted || m.AttemptCount != 0 {
			t.Errorf("stored module %d kept stale stats: %+v", i, m)
		}
		if got, want := m.IsUnlocked, i == 0; got != want {
			t.Errorf("stored module %d: unlocked=%v, want %v", i, got, want)
		}
	}
}

func TestServiceForTopicUnknown(t *testing.T) {
	svc := NewService(quiz.NewInMemoryStore(), nil, nil)
	if _, err := svc.ForTopic(context.Background(), "u1", "nope"); err == nil {
		t.Fatal("want error for unknown topic")
	}
}
