package repository

import (
	_ "embed"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rapid-crm/jasper/pkg/model"
	"gopkg.in/yaml.v3"
)

//go:embed seed/seed.yml
var seedData []byte

type seedFile struct {
	Voices         []*model.Voice         `yaml:"voices"`
	Capabilities   []*model.Capability    `yaml:"capabilities"`
	Personas       []*model.Persona       `yaml:"personas"`
	AgentTemplates []*model.AgentTemplate `yaml:"agent_templates"`
}

// seed inserts static reference data. Existing rows are kept untouched so a
// reopened database preserves operator edits.
func (c *client) seed() error {
	var data seedFile
	if err := yaml.Unmarshal(seedData, &data); err != nil {
		return goerr.Wrap(err, "failed to parse seed data")
	}

	for _, v := range data.Voices {
		if _, err := c.db.Exec(
			`INSERT OR IGNORE INTO available_voices (voice_id, voice_name, provider, language, gender, is_active)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			v.ID, v.Name, v.Provider, v.Language, v.Gender, boolToInt(v.Active),
		); err != nil {
			return goerr.Wrap(err, "failed to seed voice", goerr.V("voice_id", v.ID))
		}
	}

	for _, capability := range data.Capabilities {
		cfg, err := encodeJSON(capability.Configuration)
		if err != nil {
			return err
		}
		if _, err := c.db.Exec(
			`INSERT OR IGNORE INTO ai_capabilities (name, description, category, is_enabled, configuration)
			 VALUES (?, ?, ?, ?, ?)`,
			capability.Name, capability.Description, capability.Category, boolToInt(capability.Enabled), cfg,
		); err != nil {
			return goerr.Wrap(err, "failed to seed capability", goerr.V("name", capability.Name))
		}
	}

	now := encodeTime(time.Now())
	for i, p := range data.Personas {
		caps, err := encodeJSON(p.Capabilities)
		if err != nil {
			return err
		}
		traits, err := encodeJSON(p.Traits)
		if err != nil {
			return err
		}
		// The first seeded persona starts active; later activations flip it.
		active := 0
		if i == 0 {
			active = 1
		}
		if _, err := c.db.Exec(
			`INSERT OR IGNORE INTO ai_persona_configs
			 (name, description, system_prompt, capabilities, personality_traits,
			  communication_style, expertise_focus, learning_rate, memory_retention_days,
			  custom_prompt, is_active, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.Name, p.Description, p.SystemPrompt, caps, traits,
			p.CommunicationStyle, p.ExpertiseFocus, p.LearningRate, p.MemoryRetentionDays,
			p.CustomPrompt, active, now, now,
		); err != nil {
			return goerr.Wrap(err, "failed to seed persona", goerr.V("name", p.Name))
		}
	}

	for _, tmpl := range data.AgentTemplates {
		caps, err := encodeJSON(tmpl.Capabilities)
		if err != nil {
			return err
		}
		cfg, err := encodeJSON(tmpl.Config)
		if err != nil {
			return err
		}
		if _, err := c.db.Exec(
			`INSERT OR IGNORE INTO agent_templates (type, name, description, capabilities, config)
			 VALUES (?, ?, ?, ?, ?)`,
			tmpl.Type, tmpl.Name, tmpl.Description, caps, cfg,
		); err != nil {
			return goerr.Wrap(err, "failed to seed agent template", goerr.V("type", tmpl.Type))
		}
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
