package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ModuleRef names a module under either identifier scheme: static numeric
// level (1..20) or server-assigned string id for generated topic modules.
// Exactly one side is set. On the wire it is a bare number or a bare string,
// matching the historical attempt records.
type ModuleRef struct {
	level int
	id    string
}

func LevelRef(n int) ModuleRef   { return ModuleRef{level: n} }
func IDRef(id string) ModuleRef  { return ModuleRef{id: id} }
func (r ModuleRef) IsLevel() bool { return r.id == "" }
func (r ModuleRef) Level() int    { return r.level }
func (r ModuleRef) ID() string    { return r.id }

func (r ModuleRef) IsZero() bool { return r.id == "" && r.level == 0 }

// Key is a stable partition key usable as a map key across both schemes.
func (r ModuleRef) Key() string {
	if r.IsLevel() {
		return "level:" + strconv.Itoa(r.level)
	}
	return "id:" + r.id
}

func (r ModuleRef) String() string {
	if r.IsLevel() {
		return strconv.Itoa(r.level)
	}
	return r.id
}

// ParseModuleRef accepts "3"-style numeric levels and anything else as an id.
func ParseModuleRef(s string) (ModuleRef, error) {
	if s == "" {
		return ModuleRef{}, errors.New("empty module ref")
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 {
			return ModuleRef{}, fmt.Errorf("module level out of range: %d", n)
		}
		return LevelRef(n), nil
	}
	return IDRef(s), nil
}

func (r ModuleRef) MarshalJSON() ([]byte, error) {
	if r.IsLevel() {
		return json.Marshal(r.level)
	}
	return json.Marshal(r.id)
}

func (r *ModuleRef) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*r = LevelRef(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("module_id must be a number or a string: %w", err)
	}
	if s == "" {
		return errors.New("module_id must not be empty")
	}
	*r = IDRef(s)
	return nil
}
