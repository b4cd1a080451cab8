// Package action executes audited assistant actions. Every attempt writes a
// pending audit row before side effects run and settles it to a terminal
// status afterwards.
package action

import (
	"context"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/goerr/v2"
	"github.com/rapid-crm/jasper/pkg/adapter"
	"github.com/rapid-crm/jasper/pkg/model"
	"github.com/rapid-crm/jasper/pkg/repository"
	"github.com/rapid-crm/jasper/pkg/usecase/agentfactory"
	"github.com/rapid-crm/jasper/pkg/usecase/voice"
	"github.com/rapid-crm/jasper/pkg/utils/logging"
)

// Handler runs one action type and returns its structured result.
type Handler func(ctx context.Context, req *Request) (map[string]any, error)

// Request is the handler view of one action invocation.
type Request struct {
	UserID string
	Params map[string]any
}

// Definition describes one executable action.
type Definition struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
	Handler     Handler

	resolved *jsonschema.Resolved
}

// Executor validates, audits and runs actions.
type Executor struct {
	repo   repository.Repository
	backup adapter.Backup
	voices *voice.Service
	agents *agentfactory.Service
	dbPath string
	defs   map[string]*Definition
}

type Option func(*Executor)

// WithBackup sets the destination for database backups.
func WithBackup(b adapter.Backup) Option {
	return func(x *Executor) {
		x.backup = b
	}
}

// WithVoiceService enables the voice preference action.
func WithVoiceService(svc *voice.Service) Option {
	return func(x *Executor) {
		x.voices = svc
	}
}

// WithAgentService enables agent deployment and task actions.
func WithAgentService(svc *agentfactory.Service) Option {
	return func(x *Executor) {
		x.agents = svc
	}
}

// WithDatabasePath points the backup action at the live database file.
func WithDatabasePath(path string) Option {
	return func(x *Executor) {
		x.dbPath = path
	}
}

// New creates an executor with the built-in action catalog registered.
func New(repo repository.Repository, opts ...Option) (*Executor, error) {
	x := &Executor{
		repo: repo,
		defs: map[string]*Definition{},
	}
	for _, opt := range opts {
		opt(x)
	}

	for _, def := range x.builtinDefinitions() {
		if err := x.register(def); err != nil {
			return nil, err
		}
	}
	return x, nil
}

func (x *Executor) register(def *Definition) error {
	if def.Schema != nil {
		resolved, err := def.Schema.Resolve(nil)
		if err != nil {
			return goerr.Wrap(err, "failed to resolve action schema", goerr.V("action", def.Name))
		}
		def.resolved = resolved
	}
	x.defs[def.Name] = def
	return nil
}

// Definitions lists the registered actions sorted by registration map order.
func (x *Executor) Definitions() map[string]*Definition {
	return x.defs
}

// Execute runs one action. The audit invariant holds on every path: a
// pending row is written before the handler runs, and the same row ends
// completed or failed. Unknown action types are logged as failed rows too so
// the audit trail covers rejected requests.
func (x *Executor) Execute(ctx context.Context, userID, actionType string, params map[string]any) (*model.ActionLog, error) {
	if params == nil {
		params = map[string]any{}
	}
	entry := &model.ActionLog{
		ID:         model.NewActionID(),
		UserID:     userID,
		ActionType: actionType,
		Parameters: params,
		Status:     model.ActionPending,
		CreatedAt:  time.Now(),
	}

	def, ok := x.defs[actionType]
	if !ok {
		entry.Status = model.ActionFailed
		entry.Error = "unknown action type"
		if err := x.repo.InsertActionLog(ctx, entry); err != nil {
			return nil, err
		}
		if err := x.repo.UpdateActionLog(ctx, entry.ID, model.ActionFailed, nil, entry.Error); err != nil {
			return nil, err
		}
		return entry, goerr.Wrap(model.ErrNotFound, "unknown action type", goerr.V("action", actionType))
	}

	if def.resolved != nil {
		if err := def.resolved.Validate(params); err != nil {
			entry.Status = model.ActionFailed
			entry.Error = err.Error()
			if insErr := x.repo.InsertActionLog(ctx, entry); insErr != nil {
				return nil, insErr
			}
			if updErr := x.repo.UpdateActionLog(ctx, entry.ID, model.ActionFailed, nil, entry.Error); updErr != nil {
				return nil, updErr
			}
			return entry, goerr.Wrap(model.ErrInvalidArgument, "invalid action parameters",
				goerr.V("action", actionType), goerr.V("cause", err.Error()))
		}
	}

	// Log before execution so crashes leave a pending row rather than no
	// trace.
	if err := x.repo.InsertActionLog(ctx, entry); err != nil {
		return nil, err
	}

	result, err := def.Handler(ctx, &Request{UserID: userID, Params: params})
	if err != nil {
		entry.Status = model.ActionFailed
		entry.Error = err.Error()
		if updErr := x.repo.UpdateActionLog(ctx, entry.ID, model.ActionFailed, nil, entry.Error); updErr != nil {
			return nil, updErr
		}
		logging.From(ctx).Warn("action failed",
			"action", actionType, "action_id", entry.ID, "error", err)
		return entry, goerr.Wrap(err, "action failed", goerr.V("action", actionType))
	}

	entry.Status = model.ActionCompleted
	entry.Result = result
	if err := x.repo.UpdateActionLog(ctx, entry.ID, model.ActionCompleted, result, ""); err != nil {
		return nil, err
	}

	logging.From(ctx).Info("action completed", "action", actionType, "action_id", entry.ID)
	return entry, nil
}

// History returns the newest audit rows for a user.
func (x *Executor) History(ctx context.Context, userID string, limit int) ([]*model.ActionLog, error) {
	if limit <= 0 {
		limit = 50
	}
	return x.repo.ListActionLogs(ctx, userID, limit)
}
