// Package session drives a single quiz attempt from first question to the
// emitted Attempt record: sequencing, answer capture, the per-question
// countdown with auto-submit, and scoring.
package session

import (
	"errors"
	"time"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"

	"github.com/quizgate/quizgate/internal/quiz"
)

const (
	// DefaultQuestionBudget is the per-question countdown.
	DefaultQuestionBudget = 30 * time.Second

	// TimedOut is the sentinel option for "countdown expired, no answer".
	TimedOut = -1
)

var (
	ErrNoQuestions = errors.New("module has no questions")
	ErrNotRevealed = errors.New("answer the current question first")
	ErrFinished    = errors.New("session already finished")
	ErrAtStart     = errors.New("already at the first question")
)

type State int

const (
	StateInProgress State = iota
	StateFinished
	StateClosed
)

type Phase int

const (
	// PhaseAnswering: countdown running, no selection yet.
	PhaseAnswering Phase = iota
	// PhaseRevealed: selection made or timer expired; answer and explanation
	// visible, countdown stopped.
	PhaseRevealed
)

type Options struct {
	QuestionBudget time.Duration // defaults to DefaultQuestionBudget
	Clock          clock.Clock   // defaults to the real clock
}

// Snapshot is a read-only view for rendering.
type Snapshot struct {
	State        State
	Phase        Phase
	Index        int
	Total        int
	CorrectCount int
	Remaining    int // seconds left on the countdown, 0 when revealed
}

// Session owns one attempt's in-memory state exclusively. Exactly one
// countdown is live at a time: arming a new one invalidates the previous by
// construction, and Close stops whatever is running.
type Session struct {
	userID    string
	module    quiz.ModuleRef
	questions []quiz.Question
	budget    time.Duration
	clk       clock.Clock

	idx       int
	answers   []quiz.AnswerRecord
	correct   int
	state     State
	startedAt time.Time

	remaining int
	timer     *clock.Timer
	timerGen  uint64

	mu chan struct{} // 1-slot semaphore; see lock/unlock
}

// New validates the question set and starts the first countdown.
func New(userID string, module quiz.ModuleRef, questions []quiz.Question, opts Options) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	if opts.QuestionBudget <= 0 {
		opts.QuestionBudget = DefaultQuestionBudget
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	s := &Session{
		userID:    userID,
		module:    module,
		questions: questions,
		budget:    opts.QuestionBudget,
		clk:       opts.Clock,
		startedAt: opts.Clock.Now(),
		mu:        make(chan struct{}, 1),
	}
	s.lock()
	s.armTimer()
	s.unlock()
	return s, nil
}

func (s *Session) lock()   { s.mu <- struct{}{} }
func (s *Session) unlock() { <-s.mu }

func (s *Session) frontier() int { return len(s.answers) }

func (s *Session) phase() Phase {
	if s.idx < s.frontier() {
		return PhaseRevealed
	}
	return PhaseAnswering
}

// Select records the answer for the current question. Valid only in the
// answering phase; once revealed it is a no-op, so a stray click after the
// timer fired cannot double-record. TimedOut (-1) always marks incorrect.
func (s *Session) Select(option int) error {
	s.lock()
	defer s.unlock()
	return s.selectLocked(option)
}

func (s *Session) selectLocked(option int) error {
	if s.state != StateInProgress {
		return ErrFinished
	}
	if s.phase() == PhaseRevealed {
		return nil // no-op: answer already locked in
	}
	s.stopTimer()
	q := s.questions[s.idx]
	correct := option >= 0 && option == q.Answer
	s.answers = append(s.answers, quiz.AnswerRecord{
		Question:       q.Text,
		SelectedOption: option,
		CorrectOption:  q.Answer,
		IsCorrect:      correct,
	})
	if correct {
		s.correct++
	}
	return nil
}

// Advance moves past a revealed question. On the last question it finishes
// the session and returns the completed attempt; otherwise it steps forward
// and, when back at the frontier, re-arms the countdown.
func (s *Session) Advance() (quiz.Attempt, bool, error) {
	s.lock()
	defer s.unlock()
	if s.state != StateInProgress {
		return quiz.Attempt{}, false, ErrFinished
	}
	if s.phase() != PhaseRevealed {
		return quiz.Attempt{}, false, ErrNotRevealed
	}
	if s.idx == len(s.questions)-1 && s.frontier() == len(s.questions) {
		s.stopTimer()
		s.state = StateFinished
		return s.buildAttempt(), true, nil
	}
	s.idx++
	if s.idx == s.frontier() {
		s.armTimer()
	}
	return quiz.Attempt{}, false, nil
}

// Retreat steps back to the previous question for review; the earlier answer
// stays locked and the score is untouched. Any running countdown stops until
// Advance returns the cursor to the frontier.
func (s *Session) Retreat() error {
	s.lock()
	defer s.unlock()
	if s.state != StateInProgress {
		return ErrFinished
	}
	if s.idx == 0 {
		return ErrAtStart
	}
	if s.phase() == PhaseAnswering {
		s.stopTimer()
	}
	s.idx--
	return nil
}

// Close abandons the session. No partial attempt survives and no timer can
// fire afterward.
func (s *Session) Close() {
	s.lock()
	defer s.unlock()
	if s.state == StateInProgress {
		s.stopTimer()
	}
	s.state = StateClosed
	s.answers = nil
	s.correct = 0
}

func (s *Session) Snapshot() Snapshot {
	s.lock()
	defer s.unlock()
	snap := Snapshot{
		State:        s.state,
		Phase:        s.phase(),
		Index:        s.idx,
		Total:        len(s.questions),
		CorrectCount: s.correct,
	}
	if snap.Phase == PhaseAnswering && s.state == StateInProgress {
		snap.Remaining = s.remaining
	}
	return snap
}

// Remaining reports the seconds left on the current countdown.
func (s *Session) Remaining() int {
	s.lock()
	defer s.unlock()
	if s.phase() != PhaseAnswering || s.state != StateInProgress {
		return 0
	}
	return s.remaining
}

// Current returns the question under the cursor.
func (s *Session) Current() quiz.Question {
	s.lock()
	defer s.unlock()
	return s.questions[s.idx]
}

func (s *Session) buildAttempt() quiz.Attempt {
	answers := make([]quiz.AnswerRecord, len(s.answers))
	copy(answers, s.answers)
	return quiz.Attempt{
		ID:          uuid.NewString(),
		UserID:      s.userID,
		Module:      s.module,
		Score:       s.correct,
		Total:       len(s.questions),
		DurationSec: int64(s.clk.Now().Sub(s.startedAt) / time.Second),
		Timestamp:   s.clk.Now().UnixMilli(),
		Answers:     answers,
	}
}

// armTimer starts a fresh countdown, invalidating any prior one. The
// generation counter makes a late firing from a replaced timer a no-op even
// if it was already in flight when Stop ran.
func (s *Session) armTimer() {
	s.stopTimer()
	s.timerGen++
	s.remaining = int(s.budget / time.Second)
	gen := s.timerGen
	s.timer = s.clk.AfterFunc(time.Second, func() { s.tick(gen) })
}

func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerGen++
	s.remaining = 0
}

// tick decrements once per second; exactly budget/1s decrements happen
// absent interaction, then the timeout sentinel is recorded.
func (s *Session) tick(gen uint64) {
	s.lock()
	defer s.unlock()
	if gen != s.timerGen || s.state != StateInProgress || s.phase() != PhaseAnswering {
		return
	}
	s.remaining--
	if s.remaining <= 0 {
		_ = s.selectLocked(TimedOut)
		return
	}
	s.timer = s.clk.AfterFunc(time.Second, func() { s.tick(gen) })
}
