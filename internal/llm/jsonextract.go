package llm

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON means no parseable object could be recovered from the model
// output, even after brace-balanced salvage. Callers are expected to fall
// back to a simplified regeneration rather than abort outright.
var ErrNoJSON = errors.New("no JSON object found in model output")

// Non-greedy body capture so the match closes at the first fence and a
// second fenced block in the same reply is ignored.
var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*?\\})\\s*```")

// ExtractObject recovers a JSON object from free-form model output. It
// tolerates code fences, surrounding prose, and truncation: when the
// candidate text has unbalanced braces, the longest balanced prefix is
// salvaged with a string-aware scan.
func ExtractObject(raw string) (string, error) {
	candidate := ""
	if m := fencedJSONPattern.FindStringSubmatch(raw); len(m) > 1 {
		candidate = m[1]
	} else {
		start := strings.Index(raw, "{")
		if start < 0 {
			return "", ErrNoJSON
		}
		end := strings.LastIndex(raw, "}")
		if end > start {
			candidate = raw[start : end+1]
		} else {
			candidate = raw[start:]
		}
	}
	candidate = strings.TrimSpace(candidate)

	if bracesBalanced(candidate) {
		return candidate, nil
	}
	if salvaged, ok := SalvageBalanced(candidate); ok {
		return salvaged, nil
	}
	return "", ErrNoJSON
}

// bracesBalanced counts string-aware curly depth across the whole text.
func bracesBalanced(s string) bool {
	depth, ok := scanDepth(s, len(s))
	return ok && depth == 0
}

// SalvageBalanced scans from the first '{' tracking string-literal state
// (escaped quotes do not toggle it) and returns the substring up to the
// first point where curly depth returns to zero. Only brace depth gates
// completion: a truncation inside a top-level array value can therefore
// yield a structurally valid object with silently dropped elements. That
// matches the recovery behavior this was built against.
func SalvageBalanced(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func scanDepth(s string, end int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < end; i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return depth, false
			}
		}
	}
	return depth, !inString
}
