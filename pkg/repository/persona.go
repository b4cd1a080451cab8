package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rapid-crm/jasper/pkg/model"
)

const personaColumns = `id, name, description, system_prompt, capabilities, personality_traits,
	communication_style, expertise_focus, learning_rate, memory_retention_days,
	custom_prompt, is_active, created_at, updated_at`

func scanPersona(scan func(...any) error) (*model.Persona, error) {
	var (
		p            model.Persona
		caps         sql.NullString
		traits       sql.NullString
		customPrompt sql.NullString
		active       int
		created      string
		updated      string
	)
	if err := scan(&p.ID, &p.Name, &p.Description, &p.SystemPrompt, &caps, &traits,
		&p.CommunicationStyle, &p.ExpertiseFocus, &p.LearningRate, &p.MemoryRetentionDays,
		&customPrompt, &active, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, goerr.Wrap(err, "failed to scan persona")
	}

	if err := decodeJSON(caps, &p.Capabilities); err != nil {
		return nil, err
	}
	if err := decodeJSON(traits, &p.Traits); err != nil {
		return nil, err
	}
	p.CustomPrompt = customPrompt.String
	p.IsActive = active != 0

	var err error
	if p.CreatedAt, err = decodeTime(created); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = decodeTime(updated); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *client) ListPersonas(ctx context.Context) ([]*model.Persona, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+personaColumns+` FROM ai_persona_configs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list personas")
	}
	defer rows.Close()

	var personas []*model.Persona
	for rows.Next() {
		p, err := scanPersona(rows.Scan)
		if err != nil {
			return nil, err
		}
		personas = append(personas, p)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate personas")
	}
	return personas, nil
}

func (c *client) GetPersona(ctx context.Context, id int64) (*model.Persona, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+personaColumns+` FROM ai_persona_configs WHERE id = ?`, id)
	p, err := scanPersona(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(model.ErrNotFound, "persona not found", goerr.V("id", id))
		}
		return nil, err
	}
	return p, nil
}

func (c *client) GetActivePersona(ctx context.Context) (*model.Persona, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+personaColumns+` FROM ai_persona_configs WHERE is_active = 1 LIMIT 1`)
	p, err := scanPersona(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(model.ErrNotFound, "no active persona")
		}
		return nil, err
	}
	return p, nil
}

func (c *client) CreatePersona(ctx context.Context, p *model.Persona) (int64, error) {
	caps, err := encodeJSON(p.Capabilities)
	if err != nil {
		return 0, err
	}
	traits, err := encodeJSON(p.Traits)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	res, err := c.db.ExecContext(ctx,
		`INSERT INTO ai_persona_configs
		 (name, description, system_prompt, capabilities, personality_traits,
		  communication_style, expertise_focus, learning_rate, memory_retention_days,
		  custom_prompt, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		p.Name, p.Description, p.SystemPrompt, caps, traits,
		p.CommunicationStyle, p.ExpertiseFocus, p.LearningRate, p.RetentionDays(),
		p.CustomPrompt, encodeTime(now), encodeTime(now),
	)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create persona", goerr.V("name", p.Name))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get persona id")
	}
	return id, nil
}

func (c *client) UpdatePersona(ctx context.Context, p *model.Persona) error {
	caps, err := encodeJSON(p.Capabilities)
	if err != nil {
		return err
	}
	traits, err := encodeJSON(p.Traits)
	if err != nil {
		return err
	}

	res, err := c.db.ExecContext(ctx,
		`UPDATE ai_persona_configs
		 SET name = ?, description = ?, system_prompt = ?, capabilities = ?,
		     personality_traits = ?, communication_style = ?, expertise_focus = ?,
		     learning_rate = ?, memory_retention_days = ?, custom_prompt = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.Description, p.SystemPrompt, caps, traits,
		p.CommunicationStyle, p.ExpertiseFocus, p.LearningRate, p.RetentionDays(),
		p.CustomPrompt, encodeTime(time.Now()), p.ID,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to update persona", goerr.V("id", p.ID))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return goerr.Wrap(model.ErrNotFound, "persona not found", goerr.V("id", p.ID))
	}
	return nil
}

func (c *client) ActivatePersona(ctx context.Context, id int64) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	// Existence check first so a bad id never leaves zero personas active.
	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ai_persona_configs WHERE id = ?`, id).Scan(&exists); err != nil {
		return goerr.Wrap(err, "failed to check persona", goerr.V("id", id))
	}
	if exists == 0 {
		return goerr.Wrap(model.ErrNotFound, "persona not found", goerr.V("id", id))
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE ai_persona_configs SET is_active = 0 WHERE is_active = 1`); err != nil {
		return goerr.Wrap(err, "failed to deactivate personas")
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE ai_persona_configs SET is_active = 1, updated_at = ? WHERE id = ?`,
		encodeTime(time.Now()), id); err != nil {
		return goerr.Wrap(err, "failed to activate persona", goerr.V("id", id))
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit persona activation")
	}
	return nil
}

func (c *client) UpdatePersonaPrompt(ctx context.Context, id int64, prompt string) error {
	res, err := c.db.ExecContext(ctx,
		`UPDATE ai_persona_configs SET system_prompt = ?, updated_at = ? WHERE id = ?`,
		prompt, encodeTime(time.Now()), id)
	if err != nil {
		return goerr.Wrap(err, "failed to update system prompt", goerr.V("id", id))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return goerr.Wrap(model.ErrNotFound, "persona not found", goerr.V("id", id))
	}
	return nil
}

func (c *client) UpdatePersonaTraits(ctx context.Context, id int64, traits model.Traits) error {
	encoded, err := encodeJSON(traits)
	if err != nil {
		return err
	}
	res, err := c.db.ExecContext(ctx,
		`UPDATE ai_persona_configs SET personality_traits = ?, updated_at = ? WHERE id = ?`,
		encoded, encodeTime(time.Now()), id)
	if err != nil {
		return goerr.Wrap(err, "failed to update personality traits", goerr.V("id", id))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return goerr.Wrap(model.ErrNotFound, "persona not found", goerr.V("id", id))
	}
	return nil
}

func scanCapability(scan func(...any) error) (*model.Capability, error) {
	var (
		capability model.Capability
		cfg        sql.NullString
		desc       sql.NullString
		enabled    int
	)
	if err := scan(&capability.ID, &capability.Name, &desc, &capability.Category, &enabled, &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to scan capability")
	}
	capability.Description = desc.String
	capability.Enabled = enabled != 0
	if err := decodeJSON(cfg, &capability.Configuration); err != nil {
		return nil, err
	}
	return &capability, nil
}

func (c *client) ListCapabilities(ctx context.Context) ([]*model.Capability, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, name, description, category, is_enabled, configuration
		 FROM ai_capabilities
		 ORDER BY category, name`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list capabilities")
	}
	defer rows.Close()

	var caps []*model.Capability
	for rows.Next() {
		capability, err := scanCapability(rows.Scan)
		if err != nil {
			return nil, err
		}
		caps = append(caps, capability)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate capabilities")
	}
	return caps, nil
}

func (c *client) GetCapabilitiesByNames(ctx context.Context, names []string, enabledOnly bool) ([]*model.Capability, error) {
	if len(names) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	query := `SELECT id, name, description, category, is_enabled, configuration
		 FROM ai_capabilities WHERE name IN (` + placeholders + `)`
	if enabledOnly {
		query += ` AND is_enabled = 1`
	}
	query += ` ORDER BY category, name`

	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query capabilities by name")
	}
	defer rows.Close()

	var caps []*model.Capability
	for rows.Next() {
		capability, err := scanCapability(rows.Scan)
		if err != nil {
			return nil, err
		}
		caps = append(caps, capability)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate capabilities")
	}
	return caps, nil
}

func (c *client) SetCapabilityEnabled(ctx context.Context, name string, enabled bool) error {
	res, err := c.db.ExecContext(ctx,
		`UPDATE ai_capabilities SET is_enabled = ? WHERE name = ?`, boolToInt(enabled), name)
	if err != nil {
		return goerr.Wrap(err, "failed to toggle capability", goerr.V("name", name))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return goerr.Wrap(model.ErrNotFound, "capability not found", goerr.V("name", name))
	}
	return nil
}
