// Package skills provides skill-name normalization and preprocessing of raw skill observations.
package skills

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultReasonLength is the maximum length of a gap reason
const DefaultReasonLength = 180

// Trim returns the skill name with surrounding whitespace removed
func Trim(name string) string {
	return strings.TrimSpace(name)
}

// Key returns the identity key of a skill name: trimmed and lowercased.
// Keys are used for dedup and lookups only and are never displayed.
func Key(name string) string {
	return strings.ToLower(Trim(name))
}

// Display returns the preferred display form of a skill name.
// All-caps and mixed-case names are returned unchanged so acronyms like "SQL"
// or brand casing like "PostgreSQL" survive; lowercase names are title-cased
// word by word, keeping '-' and '/' as separators.
func Display(name string) string {
	trimmed := Trim(name)
	if trimmed == "" {
		return trimmed
	}

	hasLower, hasUpper := false, false
	for _, r := range trimmed {
		if unicode.IsLower(r) {
			hasLower = true
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	if strings.ToUpper(trimmed) == trimmed || (hasLower && hasUpper) {
		return trimmed
	}

	words := strings.Fields(trimmed)
	for i, word := range words {
		words[i] = titleizeWord(word)
	}
	return strings.Join(words, " ")
}

// titleizeWord title-cases each part of a word between '-' and '/' separators
func titleizeWord(word string) string {
	var sb strings.Builder
	start := 0
	for i, r := range word {
		if r == '-' || r == '/' {
			sb.WriteString(titleizePart(word[start:i]))
			sb.WriteRune(r)
			start = i + 1
		}
	}
	sb.WriteString(titleizePart(word[start:]))
	return sb.String()
}

func titleizePart(part string) string {
	if part == "" || strings.ToUpper(part) == part {
		return part
	}
	// a Caser is stateful, so one per call
	return cases.Title(language.Und).String(part)
}

// TruncateReason trims a reason and cuts it to at most maxLength runes
func TruncateReason(reason string, maxLength int) string {
	trimmed := strings.TrimSpace(reason)
	runes := []rune(trimmed)
	if len(runes) <= maxLength {
		return trimmed
	}
	return string(runes[:maxLength])
}
