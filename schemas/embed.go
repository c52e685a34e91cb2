// Package schemas holds the JSON Schema documents for the engine's structured artifacts.
package schemas

import "embed"

// FS contains every *.schema.json file in this directory
//
//go:embed *.schema.json
var FS embed.FS

// Schema file names
const (
	CanonicalMarket = "canonical_market.schema.json"
	GapSkills       = "gap_skills.schema.json"
	Recommendations = "recommendations.schema.json"
)
