package model

// Answer is the orchestrator's response to a user question. The orchestrator
// always produces an answer; failures downstream surface as low-confidence
// fallback answers instead of errors.
type Answer struct {
	Text       string  `json:"answer"`
	Confidence float64 `json:"confidence"`
	Category   string  `json:"category"`
	Subtype    string  `json:"subtype,omitempty"`
	Reasoning  string  `json:"reasoning"`
	// ActionID is set when the question triggered an audited action.
	ActionID ActionID `json:"action_id,omitempty"`
	// Fallback marks answers produced because the LLM gateway failed.
	Fallback bool `json:"fallback,omitempty"`
}
