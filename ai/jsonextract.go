package ai

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls the first top-level JSON object out of free-form LLM
// text, resilient to code fences and chatty prose around the payload,
// grounded on original_source/sim/ai_engines.py's _extract_json (§9 design
// note: "3-pass JSON extraction").
func ExtractJSON(text string) (map[string]any, bool) {
	// Pass 1: fenced code block, optionally tagged ```json.
	if obj, ok := tryFence(text); ok {
		return obj, true
	}

	// Pass 2: scan after common chatty prefixes for a balanced brace run.
	prefixes := []string{"Here's the FleetIntent:", "FleetIntent:", "JSON:", "Response:", "Here's the plan:"}
	for _, p := range prefixes {
		if idx := strings.Index(text, p); idx != -1 {
			if obj, ok := firstBalancedObject(text[idx+len(p):]); ok {
				return obj, true
			}
		}
	}

	// Pass 3: general scan for the first balanced { ... } anywhere.
	if obj, ok := firstBalancedObject(text); ok {
		return obj, true
	}

	// Last resort: strip surrounding fences and parse whole.
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)
	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err == nil {
		return obj, true
	}
	return nil, false
}

func tryFence(text string) (map[string]any, bool) {
	start := strings.Index(text, "```")
	if start == -1 {
		return nil, false
	}
	rest := text[start+3:]
	rest = strings.TrimPrefix(rest, "json")
	rest = strings.TrimPrefix(rest, "\n")
	end := strings.Index(rest, "```")
	if end == -1 {
		return nil, false
	}
	candidate := strings.TrimSpace(rest[:end])
	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
		return obj, true
	}
	return nil, false
}

// firstBalancedObject scans for the first brace-balanced `{...}` span that
// parses as JSON, trying every `{` start position in order.
func firstBalancedObject(text string) (map[string]any, bool) {
	for start := strings.Index(text, "{"); start != -1; {
		depth := 0
		for i := start; i < len(text); i++ {
			switch text[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					candidate := text[start : i+1]
					var obj map[string]any
					if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
						return obj, true
					}
					goto nextStart
				}
			}
		}
	nextStart:
		next := strings.Index(text[start+1:], "{")
		if next == -1 {
			break
		}
		start = start + 1 + next
	}
	return nil, false
}
