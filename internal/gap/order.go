package gap

import (
	"math"
	"sort"
	"strings"

	"github.com/jonathan/skillgap/internal/skills"
	"github.com/jonathan/skillgap/internal/stats"
	"github.com/jonathan/skillgap/internal/types"
)

// Order sorts gaps by priority ascending, market importance descending and skill name
// ascending, drops later entries whose normalized name was already seen, and keeps at
// most limit entries (limit <= 0 keeps all). If every surviving gap shares one priority,
// priorities are spread evenly over 1..5 in the established order.
func Order(gaps []types.GapSkill, limit int) []types.GapSkill {
	ordered := make([]types.GapSkill, len(gaps))
	copy(ordered, gaps)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.MarketImportance != b.MarketImportance {
			return a.MarketImportance > b.MarketImportance
		}
		return strings.Compare(a.SkillName, b.SkillName) < 0
	})

	seen := make(map[string]struct{}, len(ordered))
	result := make([]types.GapSkill, 0, len(ordered))
	for _, g := range ordered {
		key := skills.Key(g.SkillName)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, g)
	}

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	redistribute(result)
	return result
}

// redistribute spreads a uniform priority across 1..5 in rank order
func redistribute(gaps []types.GapSkill) {
	n := len(gaps)
	if n < 2 {
		return
	}
	for _, g := range gaps[1:] {
		if g.Priority != gaps[0].Priority {
			return
		}
	}
	for rank := range gaps {
		position := float64(rank) / float64(n-1)
		gaps[rank].Priority = stats.ClampInt(1+int(math.Round(position*4)), 1, 5)
	}
}
