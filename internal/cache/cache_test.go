package cache

import (
	"reflect"
	"testing"

	"prosecheck/internal/diag"
	"prosecheck/internal/source"
)

func sampleDiags() []diag.Diagnostic {
	r := source.Range{Start: source.Position{Line: 0, Character: 25}, End: source.Position{Line: 0, Character: 31}}
	return []diag.Diagnostic{
		diag.New(diag.SevWarning, r, "Possible spelling mistake").
			WithSuggestions("today").
			WithRule("MORFOLOGIK_RULE_EN_US", "TYPOS", "misspelling"),
	}
}

func TestKeyForSeparatesOptions(t *testing.T) {
	if KeyFor("text", "en") == KeyFor("text", "de") {
		t.Fatalf("options must change the key")
	}
	if KeyFor("ab", "c") == KeyFor("a", "bc") {
		t.Fatalf("text/options boundary must be unambiguous")
	}
}

func TestStoreMemoryOnly(t *testing.T) {
	s, err := NewStore(2, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	k := KeyFor("x", "")
	if _, ok := s.Get(k); ok {
		t.Fatalf("unexpected hit")
	}
	s.Put(k, sampleDiags())
	got, ok := s.Get(k)
	if !ok || !reflect.DeepEqual(got, sampleDiags()) {
		t.Fatalf("got %v %v", got, ok)
	}
	got[0].Suggestions[0] = "mutated"
	again, _ := s.Get(k)
	if again[0].Suggestions[0] != "today" {
		t.Fatalf("cached value was aliased")
	}
	if err := s.DropAll(); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Get(k); ok {
		t.Fatalf("hit after DropAll")
	}
}

func TestStoreFallsBackToDisk(t *testing.T) {
	dir := t.TempDir()
	disk, err := OpenDiskCacheAt(dir)
	if err != nil {
		t.Fatal(err)
	}
	k := KeyFor("Hello todday", "auto")
	first, _ := NewStore(4, disk, nil)
	first.Put(k, sampleDiags())

	second, _ := NewStore(4, disk, nil)
	got, ok := second.Get(k)
	if !ok || !reflect.DeepEqual(got, sampleDiags()) {
		t.Fatalf("disk round trip: %v %v", got, ok)
	}
	if second.Len() != 1 {
		t.Fatalf("disk hit not promoted to memory")
	}

	if err := second.DropAll(); err != nil {
		t.Fatal(err)
	}
	third, _ := NewStore(4, disk, nil)
	if _, ok := third.Get(k); ok {
		t.Fatalf("disk entry survived DropAll")
	}
}

func TestOpenDiskCacheUsesXDG(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)
	c, err := OpenDiskCache("prosecheck")
	if err != nil {
		t.Fatal(err)
	}
	if c.Dir() != base+"/prosecheck" {
		t.Fatalf("dir = %s", c.Dir())
	}
}
