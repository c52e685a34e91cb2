package gap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/skillgap/internal/skills"
	"github.com/jonathan/skillgap/internal/types"
)

func ptr[T any](v T) *T { return &v }

func resumeRow(name string) types.RawSkillObservation {
	return types.RawSkillObservation{SkillName: name, Source: types.SourceResume}
}

func marketRow(name string, score *float64) types.RawSkillObservation {
	return types.RawSkillObservation{SkillName: name, Score: score, Source: types.SourceMarket}
}

func repeat(row types.RawSkillObservation, n int) []types.RawSkillObservation {
	rows := make([]types.RawSkillObservation, n)
	for i := range rows {
		rows[i] = row
	}
	return rows
}

func TestDeterministic_SoleMissingSkillFromFrequency(t *testing.T) {
	pre := skills.Preprocess(
		[]types.RawSkillObservation{resumeRow("Python")},
		repeat(marketRow("SQL", nil), 5),
	)

	gaps := Deterministic(pre)

	require.Len(t, gaps, 1)
	assert.Equal(t, "SQL", gaps[0].SkillName)
	assert.Equal(t, 1, gaps[0].Priority)
	assert.InDelta(t, 1.0, gaps[0].MarketImportance, 1e-9)
	assert.Equal(t, MissingFromResumeReason, gaps[0].Reason)
}

func TestDeterministic_SkipsSkillsOnResume(t *testing.T) {
	pre := skills.Preprocess(
		[]types.RawSkillObservation{resumeRow("  python "), resumeRow("Docker")},
		[]types.RawSkillObservation{
			marketRow("Python", nil),
			marketRow("docker", nil),
			marketRow("kubernetes", nil),
		},
	)

	gaps := Deterministic(pre)

	require.Len(t, gaps, 1)
	assert.Equal(t, "Kubernetes", gaps[0].SkillName)
}

func TestDeterministic_ScoresDriveImportance(t *testing.T) {
	rows := []types.RawSkillObservation{
		marketRow("Go", ptr(0.9)),
		marketRow("Go", ptr(0.7)),
		marketRow("Rust", ptr(0.2)),
		marketRow("Kafka", nil),
		marketRow("Kafka", nil),
	}
	pre := skills.Preprocess(nil, rows)

	gaps := Deterministic(pre)
	require.Len(t, gaps, 3)

	byName := make(map[string]types.GapSkill)
	for _, g := range gaps {
		byName[g.SkillName] = g
	}

	// raw importances: Go 0.8, Rust 0.2, Kafka 2 (frequency)
	assert.InDelta(t, 0.8, byName["Go"].MarketImportance, 1e-9)
	assert.InDelta(t, 0.2, byName["Rust"].MarketImportance, 1e-9)
	assert.InDelta(t, 1.0, byName["Kafka"].MarketImportance, 1e-9)

	assert.Equal(t, 5, byName["Rust"].Priority)
	assert.Equal(t, 3, byName["Go"].Priority)
	assert.Equal(t, 1, byName["Kafka"].Priority)
}

func TestDeterministic_PriorityBounds(t *testing.T) {
	var rows []types.RawSkillObservation
	for i, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		rows = append(rows, repeat(marketRow(name, nil), i+1)...)
	}

	for _, g := range Deterministic(skills.Preprocess(nil, rows)) {
		assert.GreaterOrEqual(t, g.Priority, 1)
		assert.LessOrEqual(t, g.Priority, 5)
		assert.GreaterOrEqual(t, g.MarketImportance, 0.0)
		assert.LessOrEqual(t, g.MarketImportance, 1.0)
	}
}

func TestDeterministic_IsDeterministic(t *testing.T) {
	resume := []types.RawSkillObservation{resumeRow("Python"), resumeRow("Git")}
	market := []types.RawSkillObservation{
		marketRow("SQL", nil), marketRow("Docker", ptr(0.6)), marketRow("sql", nil),
		marketRow("AWS", ptr(0.9)), marketRow("git", nil), marketRow("terraform", nil),
	}

	run := func() []byte {
		gaps := Order(Deterministic(skills.Preprocess(resume, market)), 15)
		data, err := json.Marshal(gaps)
		require.NoError(t, err)
		return data
	}

	first := run()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, run())
	}
}

func TestDeterministic_EmptyInput(t *testing.T) {
	assert.Empty(t, Deterministic(nil))
	assert.Empty(t, Deterministic(skills.Preprocess(nil, nil)))
}
