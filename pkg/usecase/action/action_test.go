package action_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/rapid-crm/jasper/pkg/adapter"
	"github.com/rapid-crm/jasper/pkg/model"
	"github.com/rapid-crm/jasper/pkg/repository"
	"github.com/rapid-crm/jasper/pkg/usecase/action"
	"github.com/rapid-crm/jasper/pkg/usecase/agentfactory"
	"github.com/rapid-crm/jasper/pkg/usecase/voice"
)

func setup(t *testing.T) (*action.Executor, repository.Repository, string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "jasper.db")
	repo, err := repository.New(dbPath)
	gt.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	backup, err := adapter.NewDirBackup(filepath.Join(dir, "backups"))
	gt.NoError(t, err)

	x, err := action.New(repo,
		action.WithVoiceService(voice.New(repo)),
		action.WithAgentService(agentfactory.New(repo)),
		action.WithBackup(backup),
		action.WithDatabasePath(dbPath),
	)
	gt.NoError(t, err)
	return x, repo, dir
}

func TestExecuteAudit(t *testing.T) {
	ctx := context.Background()
	x, repo, _ := setup(t)

	t.Run("successful action leaves one completed row", func(t *testing.T) {
		entry, err := x.Execute(ctx, "u1", "add_contact", map[string]any{
			"first_name": "Maria",
			"email":      "maria@example.com",
		})
		gt.NoError(t, err)
		gt.V(t, entry.Status).Equal(model.ActionCompleted)
		gt.V(t, entry.Result["name"]).Equal("Maria Unknown")

		stored, err := repo.GetActionLog(ctx, entry.ID)
		gt.NoError(t, err)
		gt.V(t, stored.Status).Equal(model.ActionCompleted)
	})

	t.Run("failing handler leaves one failed row with the error", func(t *testing.T) {
		// Updating a contact that does not exist fails inside the handler.
		entry, err := x.Execute(ctx, "u1", "update_contact", map[string]any{
			"contact_id": float64(999),
			"first_name": "Nobody",
		})
		gt.Error(t, err)
		gt.V(t, entry.Status).Equal(model.ActionFailed)

		stored, err := repo.GetActionLog(ctx, entry.ID)
		gt.NoError(t, err)
		gt.V(t, stored.Status).Equal(model.ActionFailed)
		gt.S(t, stored.Error).Contains("not found")
	})

	t.Run("unknown action type is audited as failed", func(t *testing.T) {
		entry, err := x.Execute(ctx, "u1", "summon_dragon", nil)
		gt.Error(t, err)
		gt.V(t, errors.Is(err, model.ErrNotFound)).Equal(true)

		stored, err := repo.GetActionLog(ctx, entry.ID)
		gt.NoError(t, err)
		gt.V(t, stored.Status).Equal(model.ActionFailed)
	})

	t.Run("schema violation is rejected before side effects", func(t *testing.T) {
		entry, err := x.Execute(ctx, "u1", "add_contact", map[string]any{
			"email": "no-name@example.com",
		})
		gt.Error(t, err)
		gt.V(t, errors.Is(err, model.ErrInvalidArgument)).Equal(true)
		gt.V(t, entry.Status).Equal(model.ActionFailed)
	})

	t.Run("history lists the audit trail", func(t *testing.T) {
		logs, err := x.History(ctx, "u1", 10)
		gt.NoError(t, err)
		gt.V(t, len(logs)).Equal(4)
		for _, l := range logs {
			if l.Status == model.ActionPending {
				t.Errorf("action %s left pending", l.ID)
			}
		}
	})
}

func TestCRMActions(t *testing.T) {
	ctx := context.Background()
	x, _, _ := setup(t)

	company, err := x.Execute(ctx, "u1", "add_company", map[string]any{
		"name":         "Rapid Freight LLC",
		"usdot_number": "1234567",
		"state":        "OH",
	})
	gt.NoError(t, err)
	gt.V(t, company.Result["name"]).Equal("Rapid Freight LLC")

	deal, err := x.Execute(ctx, "u1", "add_deal", map[string]any{
		"title": "Annual compliance package",
		"value": 4999.0,
	})
	gt.NoError(t, err)
	gt.V(t, deal.Result["stage"]).Equal("prospecting")
}

func TestVoiceAction(t *testing.T) {
	ctx := context.Background()
	x, _, _ := setup(t)

	t.Run("valid voice", func(t *testing.T) {
		entry, err := x.Execute(ctx, "u1", "set_voice_preference", map[string]any{
			"voice_id": "sarah",
		})
		gt.NoError(t, err)
		gt.V(t, entry.Result["voice_id"]).Equal("sarah")
	})

	t.Run("unknown voice fails with audit", func(t *testing.T) {
		entry, err := x.Execute(ctx, "u1", "set_voice_preference", map[string]any{
			"voice_id": "ghost",
		})
		gt.Error(t, err)
		gt.V(t, entry.Status).Equal(model.ActionFailed)
	})
}

func TestSystemActions(t *testing.T) {
	ctx := context.Background()
	x, _, dir := setup(t)

	t.Run("backup copies the database file", func(t *testing.T) {
		entry, err := x.Execute(ctx, "u1", "backup_database", nil)
		gt.NoError(t, err)
		key, ok := entry.Result["backup_key"].(string)
		gt.V(t, ok).Equal(true)

		info, err := os.Stat(filepath.Join(dir, "backups", key))
		gt.NoError(t, err)
		gt.V(t, info.Size() > 0).Equal(true)
	})

	t.Run("cleanup logs reports a count", func(t *testing.T) {
		entry, err := x.Execute(ctx, "u1", "cleanup_logs", nil)
		gt.NoError(t, err)
		gt.V(t, entry.Result["deleted_logs"]).Equal(int64(0))
	})

	t.Run("restart is acknowledged only", func(t *testing.T) {
		entry, err := x.Execute(ctx, "u1", "restart_server", nil)
		gt.NoError(t, err)
		gt.V(t, entry.Result["restart"]).Equal("requested")
	})
}

func TestAgentActions(t *testing.T) {
	ctx := context.Background()
	x, _, _ := setup(t)

	created, err := x.Execute(ctx, "u1", "create_agent", map[string]any{
		"agent_type": "sales_automation_agent",
	})
	gt.NoError(t, err)
	agentID, ok := created.Result["agent_id"].(string)
	gt.V(t, ok).Equal(true)

	executed, err := x.Execute(ctx, "u1", "execute_agent_task", map[string]any{
		"agent_id": agentID,
		"task":     "qualify the new lead from the trade show",
	})
	gt.NoError(t, err)
	result, ok := executed.Result["result"].(map[string]any)
	gt.V(t, ok).Equal(true)
	gt.V(t, result["action"]).Equal("lead_qualification")
}
