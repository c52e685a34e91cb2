package llm

import "strings"

// CleanJSONBlock removes markdown code block wrappers from JSON responses.
// LLMs often wrap JSON in ```json ... ``` blocks even when instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	// Skip a language identifier on the first line
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := text[:idx]
		if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// ExtractJSONObject returns the candidate JSON object inside text.
// Text that already starts with '{' and ends with '}' is returned as is; otherwise the
// span from the first '{' to the last '}' is used. If no such span exists the trimmed
// text is returned unchanged so the caller's parser reports the error.
func ExtractJSONObject(text string) string {
	trimmed := strings.TrimSpace(CleanJSONBlock(text))
	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return trimmed
	}
	first := strings.Index(trimmed, "{")
	last := strings.LastIndex(trimmed, "}")
	if first == -1 || last == -1 || last <= first {
		return trimmed
	}
	return trimmed[first : last+1]
}
