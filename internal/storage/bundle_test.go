package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/quizgate/quizgate/internal/quiz"
)

func TestBundleLoad(t *testing.T) {
	dir := t.TempDir()
	qs := []quiz.Question{{
		Text:        "2+2?",
		Options:     []string{"3", "4", "5", "6"},
		Answer:      1,
		Explanation: "arithmetic",
	}}
	raw, _ := json.Marshal(qs)
	if err := os.WriteFile(filepath.Join(dir, "module-3.json"), raw, 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewBundleStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Answer != 1 || got[0].Level != 3 {
		t.Fatalf("bad load: %+v", got)
	}

	// absent level: empty, not an error
	got, err = s.Load(7)
	if err != nil || got != nil {
		t.Fatalf("missing bundle: got %v, %v", got, err)
	}
}

func TestBundleLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "module-1.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, _ := NewBundleStore(dir)
	if _, err := s.Load(1); err == nil {
		t.Fatal("malformed bundle must error")
	}
}
