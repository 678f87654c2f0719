package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestExtractObjectPlain(t *testing.T) {
	got, err := ExtractObject(`{"a": 1}`)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != `{"a": 1}` {
		t.Fatalf("got %q", got)
	}
}

func TestExtractObjectFenced(t *testing.T) {
	raw := "Here is the plan:\n```json\n{\"executiveSummary\": \"hi\"}\n```\nLet me know."
	got, err := ExtractObject(raw)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != `{"executiveSummary": "hi"}` {
		t.Fatalf("got %q", got)
	}
}

func TestExtractObjectFencedNoLanguageTag(t *testing.T) {
	raw := "```\n{\"x\": true}\n```"
	got, err := ExtractObject(raw)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != `{"x": true}` {
		t.Fatalf("got %q", got)
	}
}

func TestExtractObjectFirstOfTwoFences(t *testing.T) {
	raw := "```json\n{\"first\": true}\n```\nAnd an alternative:\n```json\n{\"second\": true}\n```"
	got, err := ExtractObject(raw)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != `{"first": true}` {
		t.Fatalf("got %q, want the first fenced block", got)
	}
}

func TestExtractObjectSurroundingProse(t *testing.T) {
	raw := `Sure! {"a": {"b": 2}} Hope that helps.`
	got, err := ExtractObject(raw)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != `{"a": {"b": 2}}` {
		t.Fatalf("got %q", got)
	}
}

func TestExtractObjectNoJSON(t *testing.T) {
	if _, err := ExtractObject("I cannot produce that."); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("want ErrNoJSON, got %v", err)
	}
}

func TestSalvageBalancedTruncatedTail(t *testing.T) {
	// Output cut off mid-way through a second top-level key. The nested
	// object for the first key still closes, so nothing balanced exists
	// past it and salvage must fail rather than invent structure.
	raw := `{"summary": {"text": "ok"}, "risks": [{"name": "cash`
	if _, ok := SalvageBalanced(raw); ok {
		t.Fatal("expected salvage failure on never-closing object")
	}
}

func TestSalvageBalancedBraceInString(t *testing.T) {
	raw := `{"note": "use {curly} braces", "n": 1} trailing garbage }`
	got, ok := SalvageBalanced(raw)
	if !ok {
		t.Fatal("expected salvage success")
	}
	if got != `{"note": "use {curly} braces", "n": 1}` {
		t.Fatalf("got %q", got)
	}
	if !json.Valid([]byte(got)) {
		t.Fatalf("salvaged text is not valid JSON: %q", got)
	}
}

func TestSalvageBalancedEscapedQuote(t *testing.T) {
	// The escaped quote must not end the string literal, otherwise the
	// brace inside it would corrupt the depth count.
	raw := `{"quote": "she said \"hi {there}\"", "n": 2} extra`
	got, ok := SalvageBalanced(raw)
	if !ok {
		t.Fatal("expected salvage success")
	}
	if !json.Valid([]byte(got)) {
		t.Fatalf("salvaged text is not valid JSON: %q", got)
	}
}

func TestExtractObjectRecoversFirstBalancedObject(t *testing.T) {
	// A stray closing brace after valid JSON leaves the whole candidate
	// unbalanced; the scan should return the balanced prefix.
	raw := `{"a": 1}}`
	got, err := ExtractObject(raw)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if got != `{"a": 1}` {
		t.Fatalf("got %q", got)
	}
}
