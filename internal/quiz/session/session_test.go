package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/facebookgo/clock"

	"github.com/quizgate/quizgate/internal/quiz"
)

func qs(n int) []quiz.Question {
	out := make([]quiz.Question, n)
	for i := range out {
		out[i] = quiz.Question{
			Text:        "q",
			Options:     []string{"a", "b", "c", "d"},
			Answer:      1,
			Explanation: "because",
		}
	}
	return out
}

// waitFor polls until cond holds, tolerating the mock clock firing callbacks
// on another goroutine.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached")
}

func TestEmptyModuleRejected(t *testing.T) {
	_, err := New("u1", quiz.LevelRef(1), nil, Options{})
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("want ErrNoQuestions, got %v", err)
	}
}

func TestSingleQuestionCorrectFlow(t *testing.T) {
	mock := clock.NewMock()
	s, err := New("u1", quiz.LevelRef(1), qs(1), Options{Clock: mock})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	mock.Add(5 * time.Second) // think a little
	if err := s.Select(1); err != nil {
		t.Fatal(err)
	}
	a, done, err := s.Advance()
	if err != nil || !done {
		t.Fatalf("advance: done=%v err=%v", done, err)
	}
	if a.Score != 1 || a.Total != 1 {
		t.Errorf("score=%d/%d, want 1/1", a.Score, a.Total)
	}
	if a.DurationSec < 0 {
		t.Errorf("negative duration %d", a.DurationSec)
	}
	if len(a.Answers) != 1 || !a.Answers[0].IsCorrect {
		t.Errorf("answers = %+v", a.Answers)
	}
	if a.ID == "" || a.UserID != "u1" {
		t.Errorf("identity missing: %+v", a)
	}
}

func TestWrongAnswerScoredZero(t *testing.T) {
	mock := clock.NewMock()
	s, _ := New("u1", quiz.LevelRef(1), qs(1), Options{Clock: mock})
	defer s.Close()

	_ = s.Select(3)
	a, done, _ := s.Advance()
	if !done || a.Score != 0 {
		t.Fatalf("want score 0, got %d (done=%v)", a.Score, done)
	}
	if a.Answers[0].IsCorrect || a.Answers[0].SelectedOption != 3 || a.Answers[0].CorrectOption != 1 {
		t.Errorf("answer trail wrong: %+v", a.Answers[0])
	}
}

func TestTimeoutAutoSubmitsIncorrect(t *testing.T) {
	mock := clock.NewMock()
	s, _ := New("u1", quiz.LevelRef(1), qs(1), Options{Clock: mock})
	defer s.Close()

	mock.Add(30 * time.Second)
	waitFor(t, func() bool { return s.Snapshot().Phase == PhaseRevealed })

	a, done, err := s.Advance()
	if err != nil || !done {
		t.Fatalf("advance after timeout: done=%v err=%v", done, err)
	}
	rec := a.Answers[0]
	if rec.SelectedOption != TimedOut || rec.IsCorrect {
		t.Errorf("timeout must record -1/incorrect regardless of the key: %+v", rec)
	}
}

func TestTimeoutIncorrectEvenWhenKeyIsMinusOneShaped(t *testing.T) {
	// a malformed question whose answer index could collide with the sentinel
	bad := []quiz.Question{{Text: "q", Options: []string{"a", "b", "c", "d"}, Answer: -1}}
	mock := clock.NewMock()
	s, _ := New("u1", quiz.LevelRef(1), bad, Options{Clock: mock})
	defer s.Close()

	mock.Add(30 * time.Second)
	waitFor(t, func() bool { return s.Snapshot().Phase == PhaseRevealed })
	a, _, _ := s.Advance()
	if a.Answers[0].IsCorrect {
		t.Error("the -1 sentinel must never count as correct")
	}
}

func TestCountdownDecrementsPerSecond(t *testing.T) {
	mock := clock.NewMock()
	s, _ := New("u1", quiz.LevelRef(1), qs(1), Options{Clock: mock})
	defer s.Close()

	if got := s.Remaining(); got != 30 {
		t.Fatalf("initial remaining = %d, want 30", got)
	}
	mock.Add(10 * time.Second)
	waitFor(t, func() bool { return s.Remaining() == 20 })
	mock.Add(19 * time.Second)
	waitFor(t, func() bool { return s.Remaining() == 1 })
	if s.Snapshot().Phase != PhaseAnswering {
		t.Fatal("still answering at 1s left")
	}
	mock.Add(time.Second)
	waitFor(t, func() bool { return s.Snapshot().Phase == PhaseRevealed })
}

func TestSelectCancelsCountdown(t *testing.T) {
	mock := clock.NewMock()
	s, _ := New("u1", quiz.LevelRef(1), qs(2), Options{Clock: mock})
	defer s.Close()

	_ = s.Select(1)
	// a full budget elapsing after selection must not fire a second submit
	mock.Add(60 * time.Second)
	snap := s.Snapshot()
	if snap.Phase != PhaseRevealed || snap.Index != 0 {
		t.Fatalf("state corrupted by stale timer: %+v", snap)
	}
	if _, done, err := s.Advance(); done || err != nil {
		t.Fatalf("advance: done=%v err=%v", done, err)
	}
	// question 2's fresh countdown starts at the full budget
	if got := s.Remaining(); got != 30 {
		t.Errorf("remaining after advance = %d, want 30", got)
	}
}

func TestRapidAdvanceFiresSingleAutoSubmitPerQuestion(t *testing.T) {
	mock := clock.NewMock()
	s, _ := New("u1", quiz.LevelRef(1), qs(3), Options{Clock: mock})
	defer s.Close()

	// two consecutive answer+advance cycles well under the budget
	_ = s.Select(1)
	_, _, _ = s.Advance()
	_ = s.Select(1)
	_, _, _ = s.Advance()

	// only question 3's timer is live; its expiry records exactly one answer
	mock.Add(30 * time.Second)
	waitFor(t, func() bool { return s.Snapshot().Phase == PhaseRevealed })
	a, done, err := s.Advance()
	if err != nil || !done {
		t.Fatalf("finish: done=%v err=%v", done, err)
	}
	if len(a.Answers) != 3 {
		t.Fatalf("want exactly 3 answer records, got %d", len(a.Answers))
	}
	if a.Answers[2].SelectedOption != TimedOut {
		t.Errorf("question 3 should have timed out: %+v", a.Answers[2])
	}
	if a.Score != 2 {
		t.Errorf("score = %d, want 2", a.Score)
	}
}

func TestSelectAfterRevealIsNoOp(t *testing.T) {
	mock := clock.NewMock()
	s, _ := New("u1", quiz.LevelRef(1), qs(1), Options{Clock: mock})
	defer s.Close()

	_ = s.Select(3) // wrong
	if err := s.Select(1); err != nil {
		t.Fatalf("revealed select must be a silent no-op, got %v", err)
	}
	a, _, _ := s.Advance()
	if a.Score != 0 || a.Answers[0].SelectedOption != 3 {
		t.Errorf("second select must not overwrite: %+v", a.Answers[0])
	}
}

func TestAdvanceRequiresReveal(t *testing.T) {
	mock := clock.NewMock()
	s, _ := New("u1", quiz.LevelRef(1), qs(2), Options{Clock: mock})
	defer s.Close()

	if _, _, err := s.Advance(); !errors.Is(err, ErrNotRevealed) {
		t.Fatalf("want ErrNotRevealed, got %v", err)
	}
}

func TestRetreatReviewFlow(t *testing.T) {
	mock := clock.NewMock()
	s, _ := New("u1", quiz.LevelRef(1), qs(3), Options{Clock: mock})
	defer s.Close()

	if err := s.Retreat(); !errors.Is(err, ErrAtStart) {
		t.Fatalf("want ErrAtStart, got %v", err)
	}
	_ = s.Select(1)
	_, _, _ = s.Advance()

	// step back into review: revealed, non-editable, no timer
	if err := s.Retreat(); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if snap.Index != 0 || snap.Phase != PhaseRevealed {
		t.Fatalf("review snapshot wrong: %+v", snap)
	}
	if err := s.Select(2); err != nil {
		t.Fatalf("select during review must no-op, got %v", err)
	}
	if s.Snapshot().CorrectCount != 1 {
		t.Error("review must not touch the score")
	}

	// forward again: back at the frontier with a fresh countdown
	if _, done, err := s.Advance(); done || err != nil {
		t.Fatalf("advance out of review: done=%v err=%v", done, err)
	}
	if got := s.Remaining(); got != 30 {
		t.Errorf("frontier countdown = %d, want 30", got)
	}
}

func TestCloseDiscardsStateAndTimers(t *testing.T) {
	mock := clock.NewMock()
	s, _ := New("u1", quiz.LevelRef(1), qs(2), Options{Clock: mock})
	s.Close()

	mock.Add(5 * time.Minute) // nothing may fire
	if s.Snapshot().State != StateClosed {
		t.Fatal("session should be closed")
	}
	if err := s.Select(1); !errors.Is(err, ErrFinished) {
		t.Fatalf("select after close: %v", err)
	}
	if _, _, err := s.Advance(); !errors.Is(err, ErrFinished) {
		t.Fatalf("advance after close: %v", err)
	}
}

func TestDurationIsWallClockDelta(t *testing.T) {
	mock := clock.NewMock()
	s, _ := New("u1", quiz.LevelRef(1), qs(2), Options{Clock: mock})
	defer s.Close()

	mock.Add(7 * time.Second)
	_ = s.Select(1)
	_, _, _ = s.Advance()
	mock.Add(8 * time.Second)
	_ = s.Select(1)
	a, done, _ := s.Advance()
	if !done {
		t.Fatal("should finish")
	}
	if a.DurationSec != 15 {
		t.Errorf("duration = %ds, want 15", a.DurationSec)
	}
}

type failingStore struct{ quiz.AttemptStore }

func (failingStore) CreateAttempt(context.Context, quiz.Attempt) error {
	return errors.New("backend down")
}

func TestSubmitterFireAndForget(t *testing.T) {
	ctx := context.Background()
	ok := NewSubmitter(quiz.NewInMemoryStore(), nil)
	a := ok.Submit(ctx, quiz.Attempt{ID: "a1", UserID: "u1", Module: quiz.LevelRef(1), Score: 1, Total: 1})
	if !a.Stored {
		t.Error("successful write must set Stored")
	}

	bad := NewSubmitter(failingStore{}, nil)
	a = bad.Submit(ctx, quiz.Attempt{ID: "a2", UserID: "u1", Module: quiz.LevelRef(1), Score: 1, Total: 1})
	if a.Stored {
		t.Error("failed write must clear Stored")
	}
	if a.Score != 1 || a.Total != 1 {
		t.Error("local attempt data must survive a failed write")
	}
}
