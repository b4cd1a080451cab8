// Package agentfactory deploys and runs agents from registered templates.
// Agents are tagged template variants; no code is generated at runtime.
package agentfactory

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rapid-crm/jasper/pkg/model"
	"github.com/rapid-crm/jasper/pkg/repository"
	"github.com/rapid-crm/jasper/pkg/utils/logging"
)

type Service struct {
	repo repository.Repository
	now  func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(repo repository.Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListTemplates returns the registered agent templates.
func (s *Service) ListTemplates(ctx context.Context) ([]*model.AgentTemplate, error) {
	return s.repo.ListAgentTemplates(ctx)
}

// Deploy creates an agent from a template. Unknown template types fail
// before anything is stored.
func (s *Service) Deploy(ctx context.Context, agentType, name string, overrides map[string]string) (*model.Agent, error) {
	tmpl, err := s.repo.GetAgentTemplate(ctx, agentType)
	if err != nil {
		return nil, goerr.Wrap(err, "cannot deploy agent", goerr.V("type", agentType))
	}

	if name == "" {
		name = tmpl.Name
	}

	cfg := make(map[string]string, len(tmpl.Config)+len(overrides))
	for k, v := range tmpl.Config {
		cfg[k] = substitutePlaceholders(v, name, agentType)
	}
	for k, v := range overrides {
		cfg[k] = v
	}

	now := s.now()
	agent := &model.Agent{
		ID:        model.NewAgentID(agentType, now),
		Type:      agentType,
		Name:      name,
		Status:    model.AgentActive,
		Config:    cfg,
		CreatedAt: now,
	}
	if err := s.repo.PutAgent(ctx, agent); err != nil {
		return nil, err
	}

	logging.From(ctx).Info("deployed agent",
		"agent_id", agent.ID, "type", agentType, "name", name)
	return agent, nil
}

// substitutePlaceholders expands {{agent_name}} and {{agent_type}} in
// template config values.
func substitutePlaceholders(v, name, agentType string) string {
	v = strings.ReplaceAll(v, "{{agent_name}}", name)
	v = strings.ReplaceAll(v, "{{agent_type}}", agentType)
	return v
}

// ExecuteTask runs a task against a deployed agent. Every attempt, including
// failed lookups, leaves an execution log row; only successful runs touch
// the usage counter.
func (s *Service) ExecuteTask(ctx context.Context, id model.AgentID, task string) (*model.AgentExecution, error) {
	started := s.now()

	agent, err := s.repo.GetAgent(ctx, id)
	if err != nil {
		s.logExecution(ctx, id, task, nil, model.ActionFailed, started)
		return nil, goerr.Wrap(err, "cannot execute task", goerr.V("agent_id", id))
	}
	if agent.Status != model.AgentActive {
		s.logExecution(ctx, id, task, nil, model.ActionFailed, started)
		return nil, goerr.Wrap(model.ErrInvalidArgument, "agent is not active",
			goerr.V("agent_id", id), goerr.V("status", agent.Status))
	}

	result := dispatchTask(agent, task)

	exec := s.logExecution(ctx, id, task, result, model.ActionCompleted, started)
	if err := s.repo.IncrementAgentUsage(ctx, id, s.now()); err != nil {
		return nil, err
	}
	return exec, nil
}

func (s *Service) logExecution(ctx context.Context, id model.AgentID, task string, result map[string]any, status model.ActionStatus, started time.Time) *model.AgentExecution {
	exec := &model.AgentExecution{
		AgentID:    id,
		Task:       task,
		Result:     result,
		Status:     status,
		DurationMS: s.now().Sub(started).Milliseconds(),
		ExecutedAt: started,
	}
	if _, err := s.repo.InsertAgentExecution(ctx, exec); err != nil {
		logging.From(ctx).Warn("failed to log agent execution",
			"agent_id", id, "error", err)
	}
	return exec
}

// Get returns a deployed agent.
func (s *Service) Get(ctx context.Context, id model.AgentID) (*model.Agent, error) {
	return s.repo.GetAgent(ctx, id)
}

// List returns all deployed agents, newest first.
func (s *Service) List(ctx context.Context) ([]*model.Agent, error) {
	return s.repo.ListAgents(ctx)
}

// SetStatus activates or deactivates a deployed agent.
func (s *Service) SetStatus(ctx context.Context, id model.AgentID, status model.AgentStatus) error {
	if status != model.AgentActive && status != model.AgentInactive {
		return goerr.Wrap(model.ErrInvalidArgument, "invalid agent status", goerr.V("status", status))
	}
	return s.repo.UpdateAgentStatus(ctx, id, status)
}

// Executions returns the newest execution log rows for an agent.
func (s *Service) Executions(ctx context.Context, id model.AgentID, limit int) ([]*model.AgentExecution, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListAgentExecutions(ctx, id, limit)
}
