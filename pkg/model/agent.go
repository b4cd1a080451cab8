package model

import (
	"fmt"
	"math/rand"
	"time"
)

// AgentStatus is the deployment state of an agent.
type AgentStatus string

const (
	AgentActive   AgentStatus = "active"
	AgentInactive AgentStatus = "inactive"
)

// AgentTemplate is a registered agent blueprint. Agents are deployed from
// templates only; there is no runtime code generation.
type AgentTemplate struct {
	Type         string            `json:"type" yaml:"type"`
	Name         string            `json:"name" yaml:"name"`
	Description  string            `json:"description" yaml:"description"`
	Capabilities []string          `json:"capabilities" yaml:"capabilities"`
	Config       map[string]string `json:"config" yaml:"config"`
}

// AgentID identifies a deployed agent.
type AgentID string

// NewAgentID builds an agent ID from its template type, a millisecond
// timestamp and a short random suffix.
func NewAgentID(agentType string, now time.Time) AgentID {
	return AgentID(fmt.Sprintf("%s_%d_%04d", agentType, now.UnixMilli(), rand.Intn(10000)))
}

// Agent is a deployed agent instance.
type Agent struct {
	ID         AgentID           `json:"agent_id"`
	Type       string            `json:"type"`
	Name       string            `json:"name"`
	Status     AgentStatus       `json:"status"`
	Config     map[string]string `json:"config"`
	UsageCount int64             `json:"usage_count"`
	LastUsed   *time.Time        `json:"last_used,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// AgentExecution is one logged task run of a deployed agent. Failed attempts
// are logged too.
type AgentExecution struct {
	ID         int64          `json:"id"`
	AgentID    AgentID        `json:"agent_id"`
	Task       string         `json:"task"`
	Result     map[string]any `json:"result,omitempty"`
	Status     ActionStatus   `json:"status"`
	DurationMS int64          `json:"duration_ms"`
	ExecutedAt time.Time      `json:"executed_at"`
}
