package emoji

import "testing"

func TestDefaultVocabularyLoads(t *testing.T) {
	v, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	if v.Len() < 10 {
		t.Fatalf("vocabulary too small: %d", v.Len())
	}
	for _, id := range []string{":thumbsup:", ":heart:", ":fire:"} {
		if !v.Contains(id) {
			t.Errorf("expected %s in vocabulary", id)
		}
	}
	if v.Contains(":not-a-real-emoji:") {
		t.Error("unknown id must not be contained")
	}

	again, _ := Default()
	if again != v {
		t.Error("Default() must return the same instance")
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"empty":     "emojis: []",
		"malformed": "emojis:\n  - id: smile\n    char: x",
		"duplicate": "emojis:\n  - id: \":a:\"\n  - id: \":a:\"",
		"not yaml":  "emojis: [",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestIsWellFormed(t *testing.T) {
	good := []string{":a:", ":thumbs_up:", ":100:"}
	bad := []string{"", "::", ":a", "a:", ":a b:", ":a:b:"}

	for _, id := range good {
		if !IsWellFormed(id) {
			t.Errorf("%q should be well formed", id)
		}
	}
	for _, id := range bad {
		if IsWellFormed(id) {
			t.Errorf("%q should not be well formed", id)
		}
	}
}

func TestIDsSorted(t *testing.T) {
	v, err := Parse([]byte("emojis:\n  - id: \":b:\"\n  - id: \":a:\""))
	if err != nil {
		t.Fatal(err)
	}
	ids := v.IDs()
	if len(ids) != 2 || ids[0] != ":a:" || ids[1] != ":b:" {
		t.Errorf("IDs() = %v", ids)
	}
	if e, ok := v.Lookup(":a:"); !ok || e.ID != ":a:" {
		t.Errorf("Lookup failed: %+v %v", e, ok)
	}
}
