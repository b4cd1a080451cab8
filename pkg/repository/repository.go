package repository

import (
	"context"
	"time"

	"github.com/rapid-crm/jasper/pkg/model"
)

// Repository is the persistence boundary of the assistant. All stores share
// one database so cross-store operations (persona activation, action audit)
// stay transactional.
type Repository interface {
	// Conversation memory
	PutMessage(ctx context.Context, msg *model.Message) error
	// GetMessages returns messages newer than since in chronological order,
	// keeping at most limit of the newest ones.
	GetMessages(ctx context.Context, userID, conversationID string, since time.Time, limit int) ([]*model.Message, error)
	GetContext(ctx context.Context, userID, conversationID string) (*model.Context, error)
	PutContext(ctx context.Context, c *model.Context) error
	ListConversations(ctx context.Context, userID string) ([]*model.ConversationStat, error)
	DeleteMessagesBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteContextsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Voice preferences
	ListVoices(ctx context.Context) ([]*model.Voice, error)
	GetVoice(ctx context.Context, voiceID string) (*model.Voice, error)
	GetVoicePreference(ctx context.Context, userID string) (*model.VoicePreference, error)
	PutVoicePreference(ctx context.Context, pref *model.VoicePreference) error

	// Personas and capabilities
	ListPersonas(ctx context.Context) ([]*model.Persona, error)
	GetPersona(ctx context.Context, id int64) (*model.Persona, error)
	GetActivePersona(ctx context.Context) (*model.Persona, error)
	CreatePersona(ctx context.Context, p *model.Persona) (int64, error)
	UpdatePersona(ctx context.Context, p *model.Persona) error
	// ActivatePersona deactivates all personas and activates id in one
	// transaction. Fails with model.ErrNotFound before touching anything
	// when id does not exist.
	ActivatePersona(ctx context.Context, id int64) error
	UpdatePersonaPrompt(ctx context.Context, id int64, prompt string) error
	UpdatePersonaTraits(ctx context.Context, id int64, traits model.Traits) error
	ListCapabilities(ctx context.Context) ([]*model.Capability, error)
	GetCapabilitiesByNames(ctx context.Context, names []string, enabledOnly bool) ([]*model.Capability, error)
	SetCapabilityEnabled(ctx context.Context, name string, enabled bool) error

	// Action audit log
	InsertActionLog(ctx context.Context, entry *model.ActionLog) error
	UpdateActionLog(ctx context.Context, id model.ActionID, status model.ActionStatus, result map[string]any, errMsg string) error
	GetActionLog(ctx context.Context, id model.ActionID) (*model.ActionLog, error)
	ListActionLogs(ctx context.Context, userID string, limit int) ([]*model.ActionLog, error)
	DeleteActionLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// CRM records
	InsertContact(ctx context.Context, c *model.Contact) (int64, error)
	UpdateContact(ctx context.Context, c *model.Contact) error
	InsertCompany(ctx context.Context, c *model.Company) (int64, error)
	InsertDeal(ctx context.Context, d *model.Deal) (int64, error)

	// Agent registry
	ListAgentTemplates(ctx context.Context) ([]*model.AgentTemplate, error)
	GetAgentTemplate(ctx context.Context, agentType string) (*model.AgentTemplate, error)
	PutAgent(ctx context.Context, agent *model.Agent) error
	GetAgent(ctx context.Context, id model.AgentID) (*model.Agent, error)
	ListAgents(ctx context.Context) ([]*model.Agent, error)
	UpdateAgentStatus(ctx context.Context, id model.AgentID, status model.AgentStatus) error
	IncrementAgentUsage(ctx context.Context, id model.AgentID, usedAt time.Time) error
	InsertAgentExecution(ctx context.Context, exec *model.AgentExecution) (int64, error)
	ListAgentExecutions(ctx context.Context, id model.AgentID, limit int) ([]*model.AgentExecution, error)

	Close() error
}
