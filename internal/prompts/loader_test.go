package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	prompt, err := Get("gap.json", "canonicalize-intro")
	require.NoError(t, err)
	assert.Contains(t, prompt, "skill gap analysis")
}

func TestGet_Missing(t *testing.T) {
	_, err := Get("nonexistent.json", "some-key")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Get("gap.json", "nonexistent-key")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "nonexistent-key")
}

func TestLines(t *testing.T) {
	lines, err := Lines("gap.json", "canonicalize-strict-rules")
	require.NoError(t, err)
	assert.Len(t, lines, 3)
	assert.Equal(t, "JSON must parse with no trailing text.", lines[0])
}

func TestFormat(t *testing.T) {
	out := Format("Previous output error: {{.Error}}", map[string]string{"Error": "bad length"})
	assert.Equal(t, "Previous output error: bad length", out)

	out = Format("{{.Intro}} {{.Missing}}", map[string]string{"Intro": "hi"})
	assert.Equal(t, "hi {{.Missing}}", out)
}

func TestLayoutPlaceholders(t *testing.T) {
	layout, err := Get("gap.json", "canonicalize-layout")
	require.NoError(t, err)

	out := Format(layout, map[string]string{"Intro": "I", "Rules": "R", "Input": "{}", "Schema": "S"})
	assert.NotContains(t, out, "{{.")
}
