// Package utils holds the JSON coercion layer between free-form LLM output
// and the typed agent schemas, plus small text helpers shared by the core.
package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

var fencedJSONPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ExtractJSON pulls the most likely JSON document out of raw LLM text.
// Priority order: fenced ```json block, first balanced {...} substring,
// then the raw text itself.
func ExtractJSON(raw string) string {
	trimmed := strings.TrimSpace(raw)

	if m := fencedJSONPattern.FindStringSubmatch(trimmed); len(m) > 1 && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1])
	}

	if sub := firstObject(trimmed); sub != "" {
		return sub
	}

	return trimmed
}

// firstObject returns the first brace-balanced {...} substring, or "".
// Braces inside string literals are skipped.
func firstObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// RepairJSON fixes common LLM JSON defects (single quotes, trailing commas,
// unclosed brackets, bare keys) via json-repair.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// SmartParse tries multiple parsing strategies to unmarshal input into schema.
// Order of attempts: standard JSON, json-repair, then Hjson (most lenient).
func SmartParse(input string, schema interface{}) error {
	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return nil
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return nil
		}
	}

	var loose interface{}
	if err := hjson.Unmarshal([]byte(input), &loose); err == nil {
		if b, err := json.Marshal(loose); err == nil {
			if err := json.Unmarshal(b, schema); err == nil {
				return nil
			}
		}
	}

	return fmt.Errorf("all parsing strategies failed")
}

// ParseInto extracts the JSON payload from raw LLM text and unmarshals it
// into schema. This is the single entry point agents use to coerce output.
func ParseInto(raw string, schema interface{}) error {
	candidate := ExtractJSON(raw)
	if candidate == "" {
		return fmt.Errorf("no JSON payload found in response")
	}
	return SmartParse(candidate, schema)
}
