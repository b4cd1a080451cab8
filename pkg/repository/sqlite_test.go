package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/rapid-crm/jasper/pkg/model"
	"github.com/rapid-crm/jasper/pkg/repository"
)

func setupRepo(t *testing.T) repository.Repository {
	t.Helper()
	repo, err := repository.New(filepath.Join(t.TempDir(), "jasper.db"))
	gt.NoError(t, err)
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func putMessage(t *testing.T, repo repository.Repository, userID, convID string, role model.Role, content string, ts time.Time) *model.Message {
	t.Helper()
	msg := &model.Message{
		ID:             model.NewMessageID(),
		UserID:         userID,
		ConversationID: convID,
		Role:           role,
		Content:        content,
		Timestamp:      ts,
	}
	gt.NoError(t, repo.PutMessage(context.Background(), msg))
	return msg
}

func TestMessageRetention(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	now := time.Now()
	since := now.AddDate(0, 0, -30)

	putMessage(t, repo, "u1", "c1", model.RoleUser, "old question", now.AddDate(0, 0, -31))
	putMessage(t, repo, "u1", "c1", model.RoleUser, "recent question", now.Add(-time.Hour))
	putMessage(t, repo, "u1", "c1", model.RoleAssistant, "recent answer", now.Add(-time.Minute))

	t.Run("expired messages are invisible to reads", func(t *testing.T) {
		msgs, err := repo.GetMessages(ctx, "u1", "c1", since, 20)
		gt.NoError(t, err)
		gt.V(t, len(msgs)).Equal(2)
		gt.V(t, msgs[0].Content).Equal("recent question")
		gt.V(t, msgs[1].Content).Equal("recent answer")
	})

	t.Run("limit keeps the newest messages in chronological order", func(t *testing.T) {
		msgs, err := repo.GetMessages(ctx, "u1", "c1", since, 1)
		gt.NoError(t, err)
		gt.V(t, len(msgs)).Equal(1)
		gt.V(t, msgs[0].Content).Equal("recent answer")
	})

	t.Run("cleanup removes only expired rows and is idempotent", func(t *testing.T) {
		deleted, err := repo.DeleteMessagesBefore(ctx, since)
		gt.NoError(t, err)
		gt.V(t, deleted).Equal(int64(1))

		deleted, err = repo.DeleteMessagesBefore(ctx, since)
		gt.NoError(t, err)
		gt.V(t, deleted).Equal(int64(0))

		msgs, err := repo.GetMessages(ctx, "u1", "c1", since, 20)
		gt.NoError(t, err)
		gt.V(t, len(msgs)).Equal(2)
	})
}

func TestMessageOrderingSubSecond(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	// Fractional timestamps within the same second must still compare
	// chronologically in SQL, including ones whose sub-second part ends in
	// zeros.
	base := time.Date(2026, 8, 30, 12, 0, 5, 0, time.UTC)
	older := base.Add(500 * time.Millisecond)
	newer := base.Add(510 * time.Millisecond)

	putMessage(t, repo, "u1", "c1", model.RoleUser, "older", older)
	putMessage(t, repo, "u1", "c1", model.RoleAssistant, "newer", newer)

	t.Run("chronological order holds within a second", func(t *testing.T) {
		msgs, err := repo.GetMessages(ctx, "u1", "c1", base.Add(-time.Hour), 10)
		gt.NoError(t, err)
		gt.V(t, len(msgs)).Equal(2)
		gt.V(t, msgs[0].Content).Equal("older")
		gt.V(t, msgs[1].Content).Equal("newer")
	})

	t.Run("retention cutoff between the two keeps the newer one", func(t *testing.T) {
		msgs, err := repo.GetMessages(ctx, "u1", "c1", newer, 10)
		gt.NoError(t, err)
		gt.V(t, len(msgs)).Equal(1)
		gt.V(t, msgs[0].Content).Equal("newer")
	})

	t.Run("cutoff at the older message sees both", func(t *testing.T) {
		msgs, err := repo.GetMessages(ctx, "u1", "c1", older, 10)
		gt.NoError(t, err)
		gt.V(t, len(msgs)).Equal(2)
	})

	t.Run("sub-second cleanup deletes only the older row", func(t *testing.T) {
		deleted, err := repo.DeleteMessagesBefore(ctx, newer)
		gt.NoError(t, err)
		gt.V(t, deleted).Equal(int64(1))

		msgs, err := repo.GetMessages(ctx, "u1", "c1", base.Add(-time.Hour), 10)
		gt.NoError(t, err)
		gt.V(t, len(msgs)).Equal(1)
		gt.V(t, msgs[0].Content).Equal("newer")
	})
}

func TestConversationContext(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	t.Run("missing context returns an empty context", func(t *testing.T) {
		cc, err := repo.GetContext(ctx, "u1", "c1")
		gt.NoError(t, err)
		gt.V(t, cc.Summary).Equal("")
		gt.V(t, len(cc.KeyTopics)).Equal(0)
		gt.V(t, len(cc.Preferences)).Equal(0)
	})

	t.Run("second upsert overwrites the first", func(t *testing.T) {
		gt.NoError(t, repo.PutContext(ctx, &model.Context{
			UserID:         "u1",
			ConversationID: "c1",
			Summary:        "Discussion focused on: ELD",
			KeyTopics:      []string{"ELD"},
			Preferences:    map[string]string{"voice": "eleanor"},
		}))
		gt.NoError(t, repo.PutContext(ctx, &model.Context{
			UserID:         "u1",
			ConversationID: "c1",
			Summary:        "Discussion focused on: Hours of Service",
			KeyTopics:      []string{"Hours of Service"},
			Preferences:    map[string]string{"voice": "jasper"},
		}))

		cc, err := repo.GetContext(ctx, "u1", "c1")
		gt.NoError(t, err)
		gt.V(t, cc.Summary).Equal("Discussion focused on: Hours of Service")
		gt.V(t, cc.KeyTopics).Equal([]string{"Hours of Service"})
		gt.V(t, cc.Preferences["voice"]).Equal("jasper")
	})
}

func TestListConversations(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	now := time.Now()

	putMessage(t, repo, "u1", "c1", model.RoleUser, "hello", now.Add(-2*time.Hour))
	putMessage(t, repo, "u1", "c1", model.RoleAssistant, "hi", now.Add(-2*time.Hour+time.Second))
	putMessage(t, repo, "u1", "c2", model.RoleUser, "newer conversation", now)
	putMessage(t, repo, "u2", "c9", model.RoleUser, "other user", now)

	stats, err := repo.ListConversations(ctx, "u1")
	gt.NoError(t, err)
	gt.V(t, len(stats)).Equal(2)
	gt.V(t, stats[0].ConversationID).Equal("c2")
	gt.V(t, stats[0].MessageCount).Equal(int64(1))
	gt.V(t, stats[1].ConversationID).Equal("c1")
	gt.V(t, stats[1].MessageCount).Equal(int64(2))
}

func TestVoices(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	t.Run("seeded voices are listed active-only and sorted by name", func(t *testing.T) {
		voices, err := repo.ListVoices(ctx)
		gt.NoError(t, err)
		gt.V(t, len(voices)).Equal(6)
		for i := 1; i < len(voices); i++ {
			if voices[i-1].Name > voices[i].Name {
				t.Errorf("voices not sorted: %q > %q", voices[i-1].Name, voices[i].Name)
			}
		}
	})

	t.Run("unknown voice lookup", func(t *testing.T) {
		_, err := repo.GetVoice(ctx, "no-such-voice")
		gt.Error(t, err)
		gt.V(t, errors.Is(err, model.ErrNotFound)).Equal(true)
	})

	t.Run("preference default then upsert", func(t *testing.T) {
		_, err := repo.GetVoicePreference(ctx, "u1")
		gt.V(t, errors.Is(err, model.ErrNotFound)).Equal(true)

		gt.NoError(t, repo.PutVoicePreference(ctx, &model.VoicePreference{
			UserID: "u1", VoiceID: "jasper", Provider: "unreal-speech", Speed: 1.2, AutoPlay: true,
		}))
		gt.NoError(t, repo.PutVoicePreference(ctx, &model.VoicePreference{
			UserID: "u1", VoiceID: "sarah", Provider: "unreal-speech", Speed: 0.9, AutoPlay: false,
		}))

		pref, err := repo.GetVoicePreference(ctx, "u1")
		gt.NoError(t, err)
		gt.V(t, pref.VoiceID).Equal("sarah")
		gt.V(t, pref.Speed).Equal(0.9)
		gt.V(t, pref.AutoPlay).Equal(false)
	})
}

func TestPersonaActivation(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	active, err := repo.GetActivePersona(ctx)
	gt.NoError(t, err)
	gt.V(t, active.Name).Equal("Rapid CRM AI Assistant")

	secondID, err := repo.CreatePersona(ctx, &model.Persona{
		Name:               "Dispatch Bot",
		Description:        "Terse dispatcher",
		SystemPrompt:       "You are a dispatcher.",
		Capabilities:       []string{"crm_management"},
		Traits:             model.Traits{Formality: 0.3, Creativity: 0.2, Technicality: 0.5, Empathy: 0.4, Assertiveness: 0.9},
		CommunicationStyle: "concise",
		ExpertiseFocus:     "fleet_operations",
	})
	gt.NoError(t, err)

	t.Run("activation is exclusive", func(t *testing.T) {
		gt.NoError(t, repo.ActivatePersona(ctx, secondID))

		personas, err := repo.ListPersonas(ctx)
		gt.NoError(t, err)
		activeCount := 0
		for _, p := range personas {
			if p.IsActive {
				activeCount++
				gt.V(t, p.ID).Equal(secondID)
			}
		}
		gt.V(t, activeCount).Equal(1)
	})

	t.Run("activating a missing id fails and keeps the current persona", func(t *testing.T) {
		err := repo.ActivatePersona(ctx, 9999)
		gt.Error(t, err)
		gt.V(t, errors.Is(err, model.ErrNotFound)).Equal(true)

		active, err := repo.GetActivePersona(ctx)
		gt.NoError(t, err)
		gt.V(t, active.ID).Equal(secondID)
	})
}

func TestCapabilities(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	caps, err := repo.ListCapabilities(ctx)
	gt.NoError(t, err)
	gt.V(t, len(caps)).Equal(6)

	gt.NoError(t, repo.SetCapabilityEnabled(ctx, "database_access", false))

	enabled, err := repo.GetCapabilitiesByNames(ctx, []string{"database_access", "crm_management"}, true)
	gt.NoError(t, err)
	gt.V(t, len(enabled)).Equal(1)
	gt.V(t, enabled[0].Name).Equal("crm_management")

	err = repo.SetCapabilityEnabled(ctx, "no_such_capability", true)
	gt.V(t, errors.Is(err, model.ErrNotFound)).Equal(true)
}

func TestActionLog(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	entry := &model.ActionLog{
		ID:         model.NewActionID(),
		UserID:     "u1",
		ActionType: "add_contact",
		Parameters: map[string]any{"first_name": "Maria"},
		Status:     model.ActionPending,
	}
	gt.NoError(t, repo.InsertActionLog(ctx, entry))

	gt.NoError(t, repo.UpdateActionLog(ctx, entry.ID, model.ActionCompleted,
		map[string]any{"contact_id": float64(1)}, ""))

	got, err := repo.GetActionLog(ctx, entry.ID)
	gt.NoError(t, err)
	gt.V(t, got.Status).Equal(model.ActionCompleted)
	gt.V(t, got.Result["contact_id"]).Equal(float64(1))

	logs, err := repo.ListActionLogs(ctx, "u1", 10)
	gt.NoError(t, err)
	gt.V(t, len(logs)).Equal(1)
}

func TestAgentStore(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	t.Run("templates are seeded", func(t *testing.T) {
		templates, err := repo.ListAgentTemplates(ctx)
		gt.NoError(t, err)
		gt.V(t, len(templates)).Equal(4)

		tmpl, err := repo.GetAgentTemplate(ctx, "usdot_compliance_agent")
		gt.NoError(t, err)
		gt.S(t, tmpl.Name).Contains("USDOT")
	})

	t.Run("deploy, usage and execution log", func(t *testing.T) {
		agent := &model.Agent{
			ID:     model.NewAgentID("usdot_compliance_agent", time.Now()),
			Type:   "usdot_compliance_agent",
			Name:   "Compliance Helper",
			Status: model.AgentActive,
			Config: map[string]string{"focus": "usdot_compliance"},
		}
		gt.NoError(t, repo.PutAgent(ctx, agent))

		gt.NoError(t, repo.IncrementAgentUsage(ctx, agent.ID, time.Now()))

		got, err := repo.GetAgent(ctx, agent.ID)
		gt.NoError(t, err)
		gt.V(t, got.UsageCount).Equal(int64(1))
		gt.V(t, got.LastUsed != nil).Equal(true)

		_, err = repo.InsertAgentExecution(ctx, &model.AgentExecution{
			AgentID:    agent.ID,
			Task:       "run compliance check",
			Result:     map[string]any{"status": "compliant"},
			Status:     model.ActionCompleted,
			DurationMS: 12,
		})
		gt.NoError(t, err)

		execs, err := repo.ListAgentExecutions(ctx, agent.ID, 5)
		gt.NoError(t, err)
		gt.V(t, len(execs)).Equal(1)
		gt.V(t, execs[0].Task).Equal("run compliance check")
	})

	t.Run("unknown agent", func(t *testing.T) {
		_, err := repo.GetAgent(ctx, "missing_agent")
		gt.V(t, errors.Is(err, model.ErrNotFound)).Equal(true)
	})
}
