package quiz

// Question is one multiple-choice item. Owned by a module; immutable once
// loaded. Options always has exactly 4 entries and Answer indexes into it.
type Question struct {
	ID          string   `json:"id,omitempty"`
	Text        string   `json:"question"`
	Options     []string `json:"options"`
	Answer      int      `json:"answer"`
	Explanation string   `json:"explanation"`

	// Set for AI-generated topic content; zero for the static level bundles.
	ModuleID string `json:"module_id,omitempty"`
	Level    int    `json:"level,omitempty"`
	TopicID  string `json:"topic_id,omitempty"`
}

// AnswerRecord is the per-question trail inside an attempt.
// SelectedOption is -1 when the countdown expired with no choice made.
type AnswerRecord struct {
	Question       string `json:"question"`
	SelectedOption int    `json:"selected_option"`
	CorrectOption  int    `json:"correct_option"`
	IsCorrect      bool   `json:"is_correct"`
}

// Attempt is one completed run through a module's question set. Created once
// at session end and never mutated afterward; Stored records whether the
// fire-and-forget write actually landed.
type Attempt struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Module      ModuleRef      `json:"module_id"`
	Score       int            `json:"score"`
	Total       int            `json:"total"`
	DurationSec int64          `json:"duration"`
	Timestamp   int64          `json:"timestamp"` // epoch millis
	Answers     []AnswerRecord `json:"answers"`
	Stored      bool           `json:"stored"`
}

// ModuleStatus is the derived per-module view. Never persisted; recomputed
// from the attempt history on every read.
type ModuleStatus struct {
	Module       ModuleRef `json:"module_id"`
	BestScore    int       `json:"best_score"`
	IsUnlocked   bool      `json:"is_unlocked"`
	IsCompleted  bool      `json:"is_completed"`
	AttemptCount int       `json:"attempt_count"`
}

// Topic is a user-created subject area owning a set of generated modules.
type Topic struct {
	ID               string `json:"id"`
	UserID           string `json:"user_id"`
	Name             string `json:"name"`
	CreatedAt        int64  `json:"created_at"` // epoch millis
	CompletedModules int    `json:"completed_modules"`
	TotalModules     int    `json:"total_modules"`
}

// TopicModule is the stored counterpart of a topic's level. The stat columns
// (BestScore, IsCompleted, ...) are denormalized write-through copies; reads
// that matter derive the same values from the raw attempts.
type TopicModule struct {
	ID           string `json:"id"`
	TopicID      string `json:"topic_id"`
	Level        int    `json:"level"`
	Title        string `json:"title"`
	IsUnlocked   bool   `json:"is_unlocked"`
	IsCompleted  bool   `json:"is_completed"`
	BestScore    int    `json:"best_score"`
	AttemptCount int    `json:"attempt_count"`
}
