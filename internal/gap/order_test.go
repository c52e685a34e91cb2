package gap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/skillgap/internal/types"
)

func gapSkill(name string, priority int, importance float64) types.GapSkill {
	return types.GapSkill{SkillName: name, Priority: priority, Reason: "r", MarketImportance: importance}
}

func names(gaps []types.GapSkill) []string {
	out := make([]string, len(gaps))
	for i, g := range gaps {
		out[i] = g.SkillName
	}
	return out
}

func priorities(gaps []types.GapSkill) []int {
	out := make([]int, len(gaps))
	for i, g := range gaps {
		out[i] = g.Priority
	}
	return out
}

func TestOrder_SortKeys(t *testing.T) {
	gaps := []types.GapSkill{
		gapSkill("Terraform", 3, 0.4),
		gapSkill("Kafka", 1, 0.5),
		gapSkill("Docker", 1, 0.9),
		gapSkill("AWS", 1, 0.5),
	}

	ordered := Order(gaps, 10)

	assert.Equal(t, []string{"Docker", "AWS", "Kafka", "Terraform"}, names(ordered))
	assert.Equal(t, []int{1, 1, 1, 3}, priorities(ordered))
}

func TestOrder_DedupKeepsFirstAfterOrdering(t *testing.T) {
	gaps := []types.GapSkill{
		gapSkill("sql", 4, 0.2),
		gapSkill("SQL", 2, 0.8),
		gapSkill(" Sql ", 2, 0.1),
		gapSkill("Go", 3, 0.5),
	}

	ordered := Order(gaps, 10)

	require.Len(t, ordered, 2)
	assert.Equal(t, "SQL", ordered[0].SkillName)
	assert.Equal(t, 2, ordered[0].Priority)
	assert.Equal(t, "Go", ordered[1].SkillName)
}

func TestOrder_Truncates(t *testing.T) {
	gaps := []types.GapSkill{
		gapSkill("A", 1, 0.9),
		gapSkill("B", 2, 0.9),
		gapSkill("C", 3, 0.9),
	}

	assert.Equal(t, []string{"A", "B"}, names(Order(gaps, 2)))
	assert.Len(t, Order(gaps, 0), 3)
}

func TestOrder_RedistributesUniformPriority(t *testing.T) {
	gaps := []types.GapSkill{
		gapSkill("E", 3, 0.1),
		gapSkill("A", 3, 0.9),
		gapSkill("C", 3, 0.5),
		gapSkill("B", 3, 0.7),
		gapSkill("D", 3, 0.3),
	}

	ordered := Order(gaps, 15)

	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, names(ordered))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, priorities(ordered))
}

func TestOrder_RedistributionSpreadsLongLists(t *testing.T) {
	gaps := make([]types.GapSkill, 0, 9)
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"} {
		gaps = append(gaps, gapSkill(name, 5, 0.5))
	}

	ordered := Order(gaps, 100)

	assert.Equal(t, []int{1, 2, 2, 3, 3, 4, 4, 5, 5}, priorities(ordered))
}

func TestOrder_NoRedistributionWhenMixedOrSingle(t *testing.T) {
	mixed := Order([]types.GapSkill{gapSkill("A", 2, 0.5), gapSkill("B", 4, 0.5)}, 10)
	assert.Equal(t, []int{2, 4}, priorities(mixed))

	single := Order([]types.GapSkill{gapSkill("A", 3, 0.5)}, 10)
	assert.Equal(t, []int{3}, priorities(single))

	assert.Empty(t, Order(nil, 10))
}

func TestOrder_DoesNotMutateInput(t *testing.T) {
	gaps := []types.GapSkill{gapSkill("B", 3, 0.5), gapSkill("A", 3, 0.5)}
	_ = Order(gaps, 10)
	assert.Equal(t, "B", gaps[0].SkillName)
	assert.Equal(t, 3, gaps[0].Priority)
}
