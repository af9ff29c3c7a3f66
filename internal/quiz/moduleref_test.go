package quiz

import (
	"encoding/json"
	"testing"
)

func TestModuleRefWireFormat(t *testing.T) {
	b, err := json.Marshal(LevelRef(3))
	if err != nil || string(b) != "3" {
		t.Fatalf("level marshals to %s (%v), want bare 3", b, err)
	}
	b, err = json.Marshal(IDRef("mod-abc"))
	if err != nil || string(b) != `"mod-abc"` {
		t.Fatalf("id marshals to %s (%v), want bare string", b, err)
	}

	var r ModuleRef
	if err := json.Unmarshal([]byte("7"), &r); err != nil || !r.IsLevel() || r.Level() != 7 {
		t.Fatalf("unmarshal 7 = %v %v", r, err)
	}
	if err := json.Unmarshal([]byte(`"mod-abc"`), &r); err != nil || r.IsLevel() || r.ID() != "mod-abc" {
		t.Fatalf("unmarshal string = %v %v", r, err)
	}
	if err := json.Unmarshal([]byte(`""`), &r); err == nil {
		t.Fatal("empty string accepted")
	}
	if err := json.Unmarshal([]byte(`{"level":1}`), &r); err == nil {
		t.Fatal("object accepted")
	}
}

func TestParseModuleRef(t *testing.T) {
	r, err := ParseModuleRef("12")
	if err != nil || !r.IsLevel() || r.Level() != 12 {
		t.Fatalf("parse 12 = %v %v", r, err)
	}
	r, err = ParseModuleRef("mod-7f")
	if err != nil || r.IsLevel() {
		t.Fatalf("parse id = %v %v", r, err)
	}
	if _, err := ParseModuleRef(""); err == nil {
		t.Fatal("empty accepted")
	}
	if _, err := ParseModuleRef("0"); err == nil {
		t.Fatal("level 0 accepted")
	}
}

func TestModuleRefKeyDistinguishesSchemes(t *testing.T) {
	if LevelRef(3).Key() == IDRef("3").Key() {
		t.Fatal("level 3 and id \"3\" collide")
	}
	if !LevelRef(0).IsZero() || IDRef("x").IsZero() {
		t.Fatal("IsZero wrong")
	}
}
