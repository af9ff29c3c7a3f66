// Package progress derives per-module unlock/completion state from the raw
// attempt history. Statuses are never stored: every read recomputes the full
// map from scratch, so a new attempt, a reset, or a refresh can never leave a
// stale completion flag behind.
package progress

import (
	"github.com/quizgate/quizgate/internal/grading"
	"github.com/quizgate/quizgate/internal/quiz"
)

// ComputeStatuses derives a status for every module in order. The returned
// map always contains exactly one entry per entry of order, keyed by
// ModuleRef.Key(); modules with no attempts keep their zero-valued default
// with only the first module unlocked.
//
// Invalid attempts (total<=0) count toward AttemptCount but never toward the
// best score, which keeps the divide-by-zero class of record harmless.
func ComputeStatuses(attempts []quiz.Attempt, order []quiz.ModuleRef) map[string]quiz.ModuleStatus {
	statuses := make(map[string]quiz.ModuleStatus, len(order))
	for i, ref := range order {
		statuses[ref.Key()] = quiz.ModuleStatus{
			Module:     ref,
			IsUnlocked: i == 0,
		}
	}

	byModule := make(map[string][]quiz.Attempt)
	for _, a := range attempts {
		k := a.Module.Key()
		byModule[k] = append(byModule[k], a)
	}

	for key, group := range byModule {
		st, ok := statuses[key]
		if !ok {
			// attempt for a module outside the requested order; ignore
			continue
		}
		st.AttemptCount = len(group)
		best := 0
		for _, a := range group {
			if !grading.ValidAttempt(a.Score, a.Total) {
				continue
			}
			if pct := grading.Percent(a.Score, a.Total); pct > best {
				best = pct
			}
		}
		st.BestScore = best
		st.IsCompleted = grading.Passing(best)
		statuses[key] = st
	}

	// unlock walk: module i opens iff module i-1 is completed
	for i := 1; i < len(order); i++ {
		prev := statuses[order[i-1].Key()]
		cur := statuses[order[i].Key()]
		cur.IsUnlocked = prev.IsCompleted
		statuses[order[i].Key()] = cur
	}
	return statuses
}

// Ordered returns the statuses in module order, for list-shaped responses.
func Ordered(statuses map[string]quiz.ModuleStatus, order []quiz.ModuleRef) []quiz.ModuleStatus {
	out := make([]quiz.ModuleStatus, 0, len(order))
	for _, ref := range order {
		out = append(out, statuses[ref.Key()])
	}
	return out
}
