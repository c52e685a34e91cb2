package gap

import "fmt"

// ValidationError reports LLM output that broke the canonicalization contract.
// It is recovered inside the analyzer by retrying and then falling back, and is
// never returned to callers of Analyze.
type ValidationError struct {
	Stage  string
	Reason string
	Cause  error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Cause)
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}
