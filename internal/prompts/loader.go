// Package prompts loads the LLM prompt fragments embedded next to it.
// Each JSON file maps a key to a prompt text that may contain {{.Name}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// ErrNotFound is returned when a prompt file or key does not exist
var ErrNotFound = errors.New("prompt not found")

// files caches parsed prompt files by name
var files sync.Map

// Get returns the prompt stored under key in filename (e.g. "gap.json", "canonicalize-rules")
func Get(filename, key string) (string, error) {
	entries, err := load(filename)
	if err != nil {
		return "", err
	}
	prompt, ok := entries[key]
	if !ok {
		return "", fmt.Errorf("%w: key %q in %s", ErrNotFound, key, filename)
	}
	return prompt, nil
}

// Lines returns a multi-line prompt split into its non-empty, trimmed lines
func Lines(filename, key string) ([]string, error) {
	prompt, err := Get(filename, key)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(prompt, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// Format fills {{.Name}} placeholders from data. Unknown placeholders are left in place.
func Format(template string, data map[string]string) string {
	pairs := make([]string, 0, len(data)*2)
	for name, value := range data {
		pairs = append(pairs, "{{."+name+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func load(filename string) (map[string]string, error) {
	if cached, ok := files.Load(filename); ok {
		return cached.(map[string]string), nil
	}

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: file %s", ErrNotFound, filename)
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	actual, _ := files.LoadOrStore(filename, entries)
	return actual.(map[string]string), nil
}
