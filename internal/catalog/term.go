package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// Semesters served by the catalog
const (
	Spring = "spring"
	Summer = "summer"
	Fall   = "fall"
)

// Term is a catalog year and semester
type Term struct {
	Year     string `json:"year"`
	Semester string `json:"semester"`
}

func (t Term) String() string {
	return t.Year + "-" + t.Semester
}

var (
	yearPattern = regexp.MustCompile(`\b(\d{4})\b`)
	wordPattern = regexp.MustCompile(`[a-z]+`)
)

var semesterAliases = map[string]string{
	"spring": Spring, "sp": Spring, "spr": Spring,
	"summer": Summer, "su": Summer, "sum": Summer,
	"fall": Fall, "fa": Fall, "autumn": Fall,
}

// ParseTerm reads a free-form term such as "Fall 2025", "2025-sp" or "spring/2026"
func ParseTerm(s string) (Term, error) {
	lowered := strings.ToLower(strings.TrimSpace(s))

	years := yearPattern.FindAllString(lowered, -1)
	if len(years) != 1 {
		return Term{}, fmt.Errorf("term %q must contain exactly one four-digit year", s)
	}

	semester := ""
	for _, word := range wordPattern.FindAllString(lowered, -1) {
		if alias, ok := semesterAliases[word]; ok {
			if semester != "" && semester != alias {
				return Term{}, fmt.Errorf("term %q names more than one semester", s)
			}
			semester = alias
		}
	}
	if semester == "" {
		return Term{}, fmt.Errorf("term %q does not name a semester (spring, summer or fall)", s)
	}

	return Term{Year: years[0], Semester: semester}, nil
}

// ValidSemester reports whether s is one of the catalog semesters
func ValidSemester(s string) bool {
	switch s {
	case Spring, Summer, Fall:
		return true
	}
	return false
}
