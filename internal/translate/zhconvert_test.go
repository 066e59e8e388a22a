package translate

import (
	"context"
	"errors"
	"testing"
)

func TestZhConvertAppliesPairsInOrder(t *testing.T) {
	p := NewZhConvertProviderFromTables(map[string][][]string{
		"zh2Hant": {{"A", "B"}, {"B", "C"}},
	})

	got, err := p.Translate(context.Background(), "zh-Hans", LangZhHant, "A")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	// the first pair rewrites A to B, the second then rewrites that B to C
	if got != "C" {
		t.Fatalf("got %q, want %q", got, "C")
	}
}

func TestZhConvertSubstitutes(t *testing.T) {
	p := NewZhConvertProviderFromTables(map[string][][]string{
		"zh2Hant": {{"发", "發"}, {"开", "開"}},
	})

	got, err := p.Translate(context.Background(), "zh-Hans", LangZhHant, "开发开发")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != "開發開發" {
		t.Fatalf("got %q, want %q", got, "開發開發")
	}
}

func TestZhConvertMissingTable(t *testing.T) {
	p := NewZhConvertProviderFromTables(map[string][][]string{
		"zh2Hant": {{"A", "B"}},
	})

	if _, err := p.Translate(context.Background(), "zh", LangZhHans, "x"); !errors.Is(err, ErrMissingTable) {
		t.Fatalf("absent table, want ErrMissingTable, got %v", err)
	}
	if _, err := p.Translate(context.Background(), "ja", "en", "x"); !errors.Is(err, ErrMissingTable) {
		t.Fatalf("non-script target, want ErrMissingTable, got %v", err)
	}

	empty := NewZhConvertProvider("does/not/exist.json")
	if _, err := empty.Translate(context.Background(), "zh", LangZhHant, "x"); !errors.Is(err, ErrMissingTable) {
		t.Fatalf("unloaded provider, want ErrMissingTable, got %v", err)
	}
}

func TestTableForTarget(t *testing.T) {
	if TableForTarget(LangZhHant) != "zh2Hant" {
		t.Fatal("zh-Hant should map to zh2Hant")
	}
	if TableForTarget(LangZhHans) != "zh2Hans" {
		t.Fatal("zh-Hans should map to zh2Hans")
	}
	if TableForTarget("en") != "" {
		t.Fatal("en has no local table")
	}
}
