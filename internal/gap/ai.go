package gap

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/skillgap/internal/llm"
	"github.com/jonathan/skillgap/internal/prompts"
	"github.com/jonathan/skillgap/internal/schemas"
	"github.com/jonathan/skillgap/internal/skills"
	"github.com/jonathan/skillgap/internal/stats"
	"github.com/jonathan/skillgap/internal/types"
	schemafiles "github.com/jonathan/skillgap/schemas"
)

const promptFile = "gap.json"

// DefaultGapReason is used when the model leaves gap_reason empty
const DefaultGapReason = "Missing or weakly covered in resume."

// outputShape is the response layout shown to the model inside the prompt
var outputShape = map[string][]map[string]string{
	"canonical_market": {{
		"market_skill_raw":         "string",
		"market_skill_canonical":   "string",
		"market_group":             "string|null",
		"market_importance":        "number (0..1)",
		"covered_by_resume":        "boolean",
		"matched_resume_skill_raw": "string|null",
		"coverage_strength":        "strong|moderate|weak|none",
		"gap_reason":               "string",
	}},
}

// BuildPrompt renders the canonicalization prompt. The strict variant appends the
// strict JSON rules and, when priorError is set, the error of the previous attempt.
func BuildPrompt(pre *types.PreprocessedSkills, strict bool, priorError string) (string, error) {
	intro, err := prompts.Get(promptFile, "canonicalize-intro")
	if err != nil {
		return "", err
	}
	rules, err := prompts.Lines(promptFile, "canonicalize-rules")
	if err != nil {
		return "", err
	}

	if strict {
		strictRules, err := prompts.Lines(promptFile, "canonicalize-strict-rules")
		if err != nil {
			return "", err
		}
		rules = append(rules, strictRules...)
		if priorError != "" {
			note, err := prompts.Get(promptFile, "canonicalize-prior-error")
			if err != nil {
				return "", err
			}
			rules = append(rules, prompts.Format(note, map[string]string{"Error": priorError}))
		}
	}

	payload := types.CanonicalizationRequest{
		ResumeSkills: pre.ResumeSkills,
		MarketSkills: pre.MarketSkills,
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal canonicalization input: %w", err)
	}
	shape, err := json.Marshal(outputShape)
	if err != nil {
		return "", fmt.Errorf("failed to marshal output shape: %w", err)
	}

	layout, err := prompts.Get(promptFile, "canonicalize-layout")
	if err != nil {
		return "", err
	}

	return prompts.Format(layout, map[string]string{
		"Intro":  intro,
		"Rules":  strings.Join(rules, "\n"),
		"Input":  string(input),
		"Schema": string(shape),
	}), nil
}

// ValidateOutput parses a model response and checks it against the canonicalization
// contract: schema, one entry per market aggregate, and set equality between the
// returned market_skill_raw values and the aggregate display names.
func ValidateOutput(stage, text string, pre *types.PreprocessedSkills) (*types.CanonicalMarket, error) {
	document := llm.ExtractJSONObject(text)
	if !strings.HasPrefix(document, "{") {
		return nil, &ValidationError{Stage: stage, Reason: "response contains no JSON object"}
	}

	if !json.Valid([]byte(document)) {
		return nil, &ValidationError{Stage: stage, Reason: "response is not valid JSON"}
	}

	if err := schemas.ValidateDocument(schemafiles.CanonicalMarket, []byte(document)); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			return nil, &ValidationError{Stage: stage, Reason: "response does not match schema: " + verr.Summary()}
		}
		return nil, &ValidationError{Stage: stage, Reason: "response does not match schema", Cause: err}
	}

	var output types.CanonicalMarket
	if err := json.Unmarshal([]byte(document), &output); err != nil {
		return nil, &ValidationError{Stage: stage, Reason: "failed to decode response", Cause: err}
	}

	expected := len(pre.MarketSkills)
	if got := len(output.CanonicalMarket); got != expected {
		return nil, &ValidationError{
			Stage:  stage,
			Reason: fmt.Sprintf("canonical_market length %d does not match expected %d", got, expected),
		}
	}

	seen := make(map[string]struct{}, expected)
	for _, item := range output.CanonicalMarket {
		if _, known := pre.MarketSkillInputSet[item.MarketSkillRaw]; !known {
			return nil, &ValidationError{
				Stage:  stage,
				Reason: fmt.Sprintf("unexpected market_skill_raw: %s", item.MarketSkillRaw),
			}
		}
		if _, dup := seen[item.MarketSkillRaw]; dup {
			return nil, &ValidationError{
				Stage:  stage,
				Reason: fmt.Sprintf("duplicate market_skill_raw: %s", item.MarketSkillRaw),
			}
		}
		seen[item.MarketSkillRaw] = struct{}{}
	}

	return &output, nil
}

// GapsFromCanonical turns an accepted canonicalization into gap skills. Entries with
// weak or no coverage are gaps; the quintile is taken over every entry's importance.
func GapsFromCanonical(canonical *types.CanonicalMarket) []types.GapSkill {
	if canonical == nil {
		return []types.GapSkill{}
	}

	importances := make([]float64, 0, len(canonical.CanonicalMarket))
	for _, item := range canonical.CanonicalMarket {
		importances = append(importances, item.MarketImportance)
	}

	gaps := make([]types.GapSkill, 0)
	for _, item := range canonical.CanonicalMarket {
		if !item.CoverageStrength.IsGap() {
			continue
		}

		reason := item.GapReason
		if strings.TrimSpace(reason) == "" {
			reason = DefaultGapReason
		}

		name := skills.Trim(item.MarketSkillCanonical)
		if name == "" {
			name = skills.Trim(item.MarketSkillRaw)
		}

		quintile := stats.Quantile(importances, item.MarketImportance)
		gaps = append(gaps, types.GapSkill{
			SkillName:        skills.Display(name),
			Priority:         priorityFor(item.CoverageStrength, quintile),
			Reason:           skills.TruncateReason(reason, skills.DefaultReasonLength),
			MarketImportance: stats.Clamp(item.MarketImportance, 0, 1),
		})
	}

	return gaps
}
