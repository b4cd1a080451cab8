package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rapid-crm/jasper/pkg/model"
)

func scanAgentTemplate(scan func(...any) error) (*model.AgentTemplate, error) {
	var (
		tmpl model.AgentTemplate
		desc sql.NullString
		caps sql.NullString
		cfg  sql.NullString
	)
	if err := scan(&tmpl.Type, &tmpl.Name, &desc, &caps, &cfg); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, goerr.Wrap(err, "failed to scan agent template")
	}
	tmpl.Description = desc.String
	if err := decodeJSON(caps, &tmpl.Capabilities); err != nil {
		return nil, err
	}
	if err := decodeJSON(cfg, &tmpl.Config); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (c *client) ListAgentTemplates(ctx context.Context) ([]*model.AgentTemplate, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT type, name, description, capabilities, config FROM agent_templates ORDER BY type`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list agent templates")
	}
	defer rows.Close()

	var templates []*model.AgentTemplate
	for rows.Next() {
		tmpl, err := scanAgentTemplate(rows.Scan)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate agent templates")
	}
	return templates, nil
}

func (c *client) GetAgentTemplate(ctx context.Context, agentType string) (*model.AgentTemplate, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT type, name, description, capabilities, config FROM agent_templates WHERE type = ?`,
		agentType)
	tmpl, err := scanAgentTemplate(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(model.ErrNotFound, "agent template not found", goerr.V("type", agentType))
		}
		return nil, err
	}
	return tmpl, nil
}

func (c *client) PutAgent(ctx context.Context, agent *model.Agent) error {
	cfg, err := encodeJSON(agent.Config)
	if err != nil {
		return err
	}
	if agent.CreatedAt.IsZero() {
		agent.CreatedAt = time.Now()
	}

	var lastUsed any
	if agent.LastUsed != nil {
		lastUsed = encodeTime(*agent.LastUsed)
	}

	if _, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO deployed_agents
		 (agent_id, type, name, status, config, usage_count, last_used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(agent.ID), agent.Type, agent.Name, string(agent.Status), cfg,
		agent.UsageCount, lastUsed, encodeTime(agent.CreatedAt),
	); err != nil {
		return goerr.Wrap(err, "failed to put agent", goerr.V("agent_id", agent.ID))
	}
	return nil
}

func scanAgent(scan func(...any) error) (*model.Agent, error) {
	var (
		agent    model.Agent
		cfg      sql.NullString
		lastUsed sql.NullString
		created  string
	)
	if err := scan(&agent.ID, &agent.Type, &agent.Name, &agent.Status, &cfg,
		&agent.UsageCount, &lastUsed, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, goerr.Wrap(err, "failed to scan agent")
	}
	if err := decodeJSON(cfg, &agent.Config); err != nil {
		return nil, err
	}
	if lastUsed.Valid && lastUsed.String != "" {
		t, err := decodeTime(lastUsed.String)
		if err != nil {
			return nil, err
		}
		agent.LastUsed = &t
	}
	var err error
	if agent.CreatedAt, err = decodeTime(created); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (c *client) GetAgent(ctx context.Context, id model.AgentID) (*model.Agent, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT agent_id, type, name, status, config, usage_count, last_used, created_at
		 FROM deployed_agents WHERE agent_id = ?`, string(id))
	agent, err := scanAgent(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(model.ErrNotFound, "agent not found", goerr.V("agent_id", id))
		}
		return nil, err
	}
	return agent, nil
}

func (c *client) ListAgents(ctx context.Context) ([]*model.Agent, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT agent_id, type, name, status, config, usage_count, last_used, created_at
		 FROM deployed_agents ORDER BY created_at DESC`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list agents")
	}
	defer rows.Close()

	var agents []*model.Agent
	for rows.Next() {
		agent, err := scanAgent(rows.Scan)
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate agents")
	}
	return agents, nil
}

func (c *client) UpdateAgentStatus(ctx context.Context, id model.AgentID, status model.AgentStatus) error {
	res, err := c.db.ExecContext(ctx,
		`UPDATE deployed_agents SET status = ? WHERE agent_id = ?`, string(status), string(id))
	if err != nil {
		return goerr.Wrap(err, "failed to update agent status", goerr.V("agent_id", id))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return goerr.Wrap(model.ErrNotFound, "agent not found", goerr.V("agent_id", id))
	}
	return nil
}

func (c *client) IncrementAgentUsage(ctx context.Context, id model.AgentID, usedAt time.Time) error {
	res, err := c.db.ExecContext(ctx,
		`UPDATE deployed_agents SET usage_count = usage_count + 1, last_used = ? WHERE agent_id = ?`,
		encodeTime(usedAt), string(id))
	if err != nil {
		return goerr.Wrap(err, "failed to increment agent usage", goerr.V("agent_id", id))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return goerr.Wrap(model.ErrNotFound, "agent not found", goerr.V("agent_id", id))
	}
	return nil
}

func (c *client) InsertAgentExecution(ctx context.Context, exec *model.AgentExecution) (int64, error) {
	result, err := encodeJSON(exec.Result)
	if err != nil {
		return 0, err
	}
	if exec.ExecutedAt.IsZero() {
		exec.ExecutedAt = time.Now()
	}

	res, err := c.db.ExecContext(ctx,
		`INSERT INTO agent_execution_log (agent_id, task, result, status, duration_ms, executed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(exec.AgentID), exec.Task, result, string(exec.Status),
		exec.DurationMS, encodeTime(exec.ExecutedAt))
	if err != nil {
		return 0, goerr.Wrap(err, "failed to insert agent execution", goerr.V("agent_id", exec.AgentID))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get execution id")
	}
	exec.ID = id
	return id, nil
}

func (c *client) ListAgentExecutions(ctx context.Context, id model.AgentID, limit int) ([]*model.AgentExecution, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, agent_id, task, result, status, duration_ms, executed_at
		 FROM agent_execution_log
		 WHERE agent_id = ?
		 ORDER BY executed_at DESC, id DESC
		 LIMIT ?`,
		string(id), limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list agent executions")
	}
	defer rows.Close()

	var execs []*model.AgentExecution
	for rows.Next() {
		var (
			exec     model.AgentExecution
			result   sql.NullString
			executed string
		)
		if err := rows.Scan(&exec.ID, &exec.AgentID, &exec.Task, &result, &exec.Status,
			&exec.DurationMS, &executed); err != nil {
			return nil, goerr.Wrap(err, "failed to scan agent execution")
		}
		if err := decodeJSON(result, &exec.Result); err != nil {
			return nil, err
		}
		if exec.ExecutedAt, err = decodeTime(executed); err != nil {
			return nil, err
		}
		execs = append(execs, &exec)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate agent executions")
	}
	return execs, nil
}
