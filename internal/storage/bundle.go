// Package storage serves the static question bundles shipped with a deploy:
// one module-<level>.json file per numeric level, same JSON shape the API
// returns. They back the level scheme when the database has no question rows
// and double as the fallback when a remote source is unreachable.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quizgate/quizgate/internal/quiz"
)

type BundleStore struct{ base string }

func NewBundleStore(base string) (*BundleStore, error) {
	if base == "" {
		base = "./assets"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &BundleStore{base: base}, nil
}

// Load reads module-<level>.json. A missing file is not an error; it returns
// an empty set and the caller decides whether that is fatal.
func (s *BundleStore) Load(level int) ([]quiz.Question, error) {
	path := filepath.Join(s.base, fmt.Sprintf("module-%d.json", level))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var qs []quiz.Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("bundle %s: %w", path, err)
	}
	for i := range qs {
		qs[i].Level = level
	}
	return qs, nil
}
