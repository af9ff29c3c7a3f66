package quiz

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyModule is the load-failure class: a module with no questions can
// never start a session. Recoverable; the caller offers a retry.
var ErrEmptyModule = errors.New("module has no questions")

// Bundle is the static asset fallback for numeric levels.
type Bundle interface {
	Load(level int) ([]Question, error)
}

// Source resolves a module reference to its question set, treating the
// database and the static bundles uniformly: the store is consulted first,
// the bundle covers levels the store has never seen.
type Source struct {
	store  QuestionStore
	bundle Bundle // optional
}

func NewSource(store QuestionStore, bundle Bundle) *Source {
	return &Source{store: store, bundle: bundle}
}

func (s *Source) ForModule(ctx context.Context, ref ModuleRef) ([]Question, error) {
	var qs []Question
	var err error
	if ref.IsLevel() {
		qs, err = s.store.QuestionsForLevel(ctx, ref.Level())
		if err == nil && len(qs) == 0 && s.bundle != nil {
			qs, err = s.bundle.Load(ref.Level())
		}
	} else {
		qs, err = s.store.QuestionsForModule(ctx, ref.ID())
	}
	if err != nil {
		return nil, fmt.Errorf("load module %s: %w", ref, err)
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("module %s: %w", ref, ErrEmptyModule)
	}
	return qs, nil
}
