package quiz

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTopicNotFound  = errors.New("topic not found")
	ErrModuleNotFound = errors.New("module not found")
)

// AttemptFilter scopes list/delete operations. Zero fields match everything.
type AttemptFilter struct {
	UserID  string
	Module  ModuleRef
	Modules []ModuleRef // topic-scoped cascade: any of these
}

func (f AttemptFilter) matches(a Attempt) bool {
	if f.UserID != "" && a.UserID != f.UserID {
		return false
	}
	if !f.Module.IsZero() && a.Module.Key() != f.Module.Key() {
		return false
	}
	if len(f.Modules) > 0 {
		ok := false
		for _, m := range f.Modules {
			if a.Module.Key() == m.Key() {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

type AttemptStore interface {
	CreateAttempt(ctx context.Context, a Attempt) error
	ListAttempts(ctx context.Context, f AttemptFilter) ([]Attempt, error)
	DeleteAttempts(ctx context.Context, f AttemptFilter) (int64, error)
}

type QuestionStore interface {
	PutQuestion(ctx context.Context, q Question) (Question, error)
	QuestionsForLevel(ctx context.Context, level int) ([]Question, error)
	QuestionsForModule(ctx context.Context, moduleID string) ([]Question, error)
	DeleteQuestionsForTopic(ctx context.Context, topicID string) error
}

type TopicStore interface {
	CreateTopic(ctx context.Context, t Topic) error
	CreateModule(ctx context.Context, m TopicModule) (TopicModule, error)
	GetTopic(ctx context.Context, id string) (Topic, error)
	ListTopics(ctx context.Context, userID string) ([]Topic, error)
	ModulesForTopic(ctx context.Context, topicID string) ([]TopicModule, error)
	UpdateModule(ctx context.Context, m TopicModule) error
	UpdateTopicCounters(ctx context.Context, topicID string, completedModules int) error
	ResetTopicProgress(ctx context.Context, topicID string) error
	DeleteTopic(ctx context.Context, id string) error
}

// Store bundles the three persistence concerns behind one handle, the way a
// single gateway process wires them.
type Store interface {
	AttemptStore
	QuestionStore
	TopicStore
}

type memoryStore struct {
	mu        sync.RWMutex
	attempts  []Attempt
	questions []Question
	topics    map[string]Topic
	modules   map[string][]TopicModule // topicID -> modules ordered by level
}

// NewInMemoryStore returns a Store for tests and the no-database dev mode.
func NewInMemoryStore() Store {
	return &memoryStore{
		topics:  map[string]Topic{},
		modules: map[string][]TopicModule{},
	}
}

func (m *memoryStore) CreateAttempt(_ context.Context, a Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	m.attempts = append(m.attempts, a)
	return nil
}

func (m *memoryStore) ListAttempts(_ context.Context, f AttemptFilter) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Attempt, 0, len(m.attempts))
	for _, a := range m.attempts {
		if f.matches(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryStore) DeleteAttempts(_ context.Context, f AttemptFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.attempts[:0]
	var n int64
	for _, a := range m.attempts {
		if f.matches(a) {
			n++
			continue
		}
		kept = append(kept, a)
	}
	m.attempts = kept
	return n, nil
}

func (m *memoryStore) PutQuestion(_ context.Context, q Question) (Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	for i := range m.questions {
		if m.questions[i].ID == q.ID {
			m.questions[i] = q
			return q, nil
		}
	}
	m.questions = append(m.questions, q)
	return q, nil
}

func (m *memoryStore) QuestionsForLevel(_ context.Context, level int) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Question
	for _, q := range m.questions {
		if q.TopicID == "" && q.Level == level {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memoryStore) QuestionsForModule(_ context.Context, moduleID string) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Question
	for _, q := range m.questions {
		if q.ModuleID == moduleID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memoryStore) DeleteQuestionsForTopic(_ context.Context, topicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.questions[:0]
	for _, q := range m.questions {
		if q.TopicID != topicID {
			kept = append(kept, q)
		}
	}
	m.questions = kept
	return nil
}

func (m *memoryStore) CreateTopic(_ context.Context, t Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().UnixMilli()
	}
	m.topics[t.ID] = t
	return nil
}

func (m *memoryStore) CreateModule(_ context.Context, mod TopicModule) (TopicModule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.topics[mod.TopicID]; !ok {
		return TopicModule{}, ErrTopicNotFound
	}
	if mod.ID == "" {
		mod.ID = uuid.NewString()
	}
	mods := append(m.modules[mod.TopicID], mod)
	sort.Slice(mods, func(i, j int) bool { return mods[i].Level < mods[j].Level })
	m.modules[mod.TopicID] = mods
	return mod, nil
}

func (m *memoryStore) GetTopic(_ context.Context, id string) (Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.topics[id]
	if !ok {
		return Topic{}, ErrTopicNotFound
	}
	return t, nil
}

func (m *memoryStore) ListTopics(_ context.Context, userID string) ([]Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Topic
	for _, t := range m.topics {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

func (m *memoryStore) ModulesForTopic(_ context.Context, topicID string) ([]TopicModule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mods := m.modules[topicID]
	out := make([]TopicModule, len(mods))
	copy(out, mods)
	return out, nil
}

func (m *memoryStore) UpdateModule(_ context.Context, mod TopicModule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mods := m.modules[mod.TopicID]
	for i := range mods {
		if mods[i].ID == mod.ID {
			mods[i] = mod
			return nil
		}
	}
	return ErrModuleNotFound
}

func (m *memoryStore) UpdateTopicCounters(_ context.Context, topicID string, completed int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.topics[topicID]
	if !ok {
		return ErrTopicNotFound
	}
	t.CompletedModules = completed
	m.topics[topicID] = t
	return nil
}

func (m *memoryStore) ResetTopicProgress(_ context.Context, topicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.topics[topicID]
	if !ok {
		return ErrTopicNotFound
	}
	mods := m.modules[topicID]
	for i := range mods {
		mods[i].IsUnlocked = i == 0
		mods[i].IsCompleted = false
		mods[i].BestScore = 0
		mods[i].AttemptCount = 0
	}
	t.CompletedModules = 0
	m.topics[topicID] = t
	return nil
}

func (m *memoryStore) DeleteTopic(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.topics[id]; !ok {
		return ErrTopicNotFound
	}
	delete(m.topics, id)
	delete(m.modules, id)
	kept := m.questions[:0]
	for _, q := range m.questions {
		if q.TopicID != id {
			kept = append(kept, q)
		}
	}
	m.questions = kept
	return nil
}
