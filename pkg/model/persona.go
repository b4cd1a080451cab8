package model

import "time"

// Traits are personality weights in [0, 1] that shape the assistant's tone.
type Traits struct {
	Formality     float64 `json:"formality" yaml:"formality"`
	Creativity    float64 `json:"creativity" yaml:"creativity"`
	Technicality  float64 `json:"technicality" yaml:"technicality"`
	Empathy       float64 `json:"empathy" yaml:"empathy"`
	Assertiveness float64 `json:"assertiveness" yaml:"assertiveness"`
}

// Validate checks that all trait weights are within [0, 1].
func (t Traits) Validate() error {
	for _, v := range []float64{t.Formality, t.Creativity, t.Technicality, t.Empathy, t.Assertiveness} {
		if v < 0 || v > 1 {
			return ErrInvalidArgument
		}
	}
	return nil
}

// Persona is a named assistant configuration. Exactly one persona is active
// at any time.
type Persona struct {
	ID                  int64    `json:"id" yaml:"-"`
	Name                string   `json:"name" yaml:"name"`
	Description         string   `json:"description" yaml:"description"`
	SystemPrompt        string   `json:"system_prompt" yaml:"system_prompt"`
	Capabilities        []string `json:"capabilities" yaml:"capabilities"`
	Traits              Traits   `json:"personality_traits" yaml:"traits"`
	CommunicationStyle  string   `json:"communication_style" yaml:"communication_style"`
	ExpertiseFocus      string   `json:"expertise_focus" yaml:"expertise_focus"`
	LearningRate        float64  `json:"learning_rate" yaml:"learning_rate"`
	MemoryRetentionDays int      `json:"memory_retention_days" yaml:"memory_retention_days"`
	// CustomPrompt, when set, replaces the generated system prompt verbatim.
	CustomPrompt string    `json:"custom_prompt,omitempty" yaml:"custom_prompt"`
	IsActive     bool      `json:"is_active" yaml:"-"`
	CreatedAt    time.Time `json:"created_at" yaml:"-"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"-"`
}

// RetentionDays returns the persona's memory window, falling back to the
// global default.
func (p *Persona) RetentionDays() int {
	if p == nil || p.MemoryRetentionDays <= 0 {
		return DefaultRetentionDays
	}
	return p.MemoryRetentionDays
}

// Capability is a named feature the assistant may use, toggled independently
// of personas.
type Capability struct {
	ID            int64          `json:"id" yaml:"-"`
	Name          string         `json:"name" yaml:"name"`
	Description   string         `json:"description" yaml:"description"`
	Category      string         `json:"category" yaml:"category"`
	Enabled       bool           `json:"is_enabled" yaml:"enabled"`
	Configuration map[string]any `json:"configuration" yaml:"configuration"`
}

// PersonaStats are aggregate counts over personas and capabilities.
type PersonaStats struct {
	TotalPersonas       int64  `json:"total_personas"`
	ActivePersona       string `json:"active_persona"`
	TotalCapabilities   int64  `json:"total_capabilities"`
	EnabledCapabilities int64  `json:"enabled_capabilities"`
}
