package assistant_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/rapid-crm/jasper/pkg/adapter"
	"github.com/rapid-crm/jasper/pkg/model"
	"github.com/rapid-crm/jasper/pkg/repository"
	"github.com/rapid-crm/jasper/pkg/usecase/action"
	"github.com/rapid-crm/jasper/pkg/usecase/agentfactory"
	"github.com/rapid-crm/jasper/pkg/usecase/assistant"
	"github.com/rapid-crm/jasper/pkg/usecase/persona"
	"github.com/rapid-crm/jasper/pkg/usecase/voice"
)

type gatewayMock struct {
	completeFunc func(ctx context.Context, req *adapter.CompletionRequest) (*adapter.CompletionResponse, error)
	requests     []*adapter.CompletionRequest
}

func (m *gatewayMock) Complete(ctx context.Context, req *adapter.CompletionRequest) (*adapter.CompletionResponse, error) {
	m.requests = append(m.requests, req)
	if m.completeFunc != nil {
		return m.completeFunc(ctx, req)
	}
	return &adapter.CompletionResponse{Content: "mock response"}, nil
}

func setup(t *testing.T, gw adapter.Gateway) (*assistant.UseCase, repository.Repository) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "jasper.db")
	repo, err := repository.New(dbPath)
	gt.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	personas := persona.New(repo)
	executor, err := action.New(repo,
		action.WithVoiceService(voice.New(repo)),
		action.WithAgentService(agentfactory.New(repo)),
		action.WithDatabasePath(dbPath),
	)
	gt.NoError(t, err)

	uc := assistant.New(repo, gw, personas, assistant.WithExecutor(executor))
	return uc, repo
}

func TestAskKnowledge(t *testing.T) {
	ctx := context.Background()
	gw := &gatewayMock{}
	uc, repo := setup(t, gw)

	ans := uc.Ask(ctx, "u1", "conv1", "What are the hours of service driving time limits?")

	gt.V(t, ans.Category).Equal("hours_of_service")
	gt.V(t, ans.Subtype).Equal("driving_time")
	gt.S(t, ans.Text).Contains("11 hours")
	gt.S(t, ans.Text).Contains("49 CFR 395.3")
	gt.V(t, ans.Confidence >= 0.8).Equal(true)
	gt.S(t, ans.Reasoning).Contains("knowledge base")

	// Regulatory answers never hit the gateway.
	gt.V(t, len(gw.requests)).Equal(0)

	// Both sides of the exchange are stored.
	since := time.Now().AddDate(0, 0, -1)
	msgs, err := repo.GetMessages(ctx, "u1", "conv1", since, 10)
	gt.NoError(t, err)
	gt.V(t, len(msgs)).Equal(2)
	gt.V(t, msgs[0].Role).Equal(model.RoleUser)
	gt.V(t, msgs[1].Role).Equal(model.RoleAssistant)

	// The rolling context picked up the topic.
	convCtx, err := repo.GetContext(ctx, "u1", "conv1")
	gt.NoError(t, err)
	gt.V(t, convCtx.KeyTopics[0]).Equal("Hours of Service")
	gt.S(t, convCtx.Summary).Contains("Hours of Service")
}

func TestAskGateway(t *testing.T) {
	ctx := context.Background()

	t.Run("general questions go through the gateway", func(t *testing.T) {
		gw := &gatewayMock{
			completeFunc: func(ctx context.Context, req *adapter.CompletionRequest) (*adapter.CompletionResponse, error) {
				return &adapter.CompletionResponse{Content: "**Sure** - here is what I know about trucking routes."}, nil
			},
		}
		uc, _ := setup(t, gw)

		ans := uc.Ask(ctx, "u1", "conv1", "Which routes between Ohio and Texas are fastest?")
		gt.S(t, ans.Text).Contains("trucking routes")
		gt.V(t, ans.Fallback).Equal(false)
		gt.V(t, len(gw.requests)).Equal(1)

		req := gw.requests[0]
		gt.V(t, req.Messages[0].Role).Equal("system")
		gt.V(t, req.Messages[len(req.Messages)-1].Role).Equal("user")
		gt.V(t, req.Messages[len(req.Messages)-1].Content).Equal("Which routes between Ohio and Texas are fastest?")
	})

	t.Run("history is replayed on followup questions", func(t *testing.T) {
		gw := &gatewayMock{}
		uc, _ := setup(t, gw)

		uc.Ask(ctx, "u1", "conv1", "My company hauls refrigerated freight.")
		uc.Ask(ctx, "u1", "conv1", "What did I just tell you?")

		gt.V(t, len(gw.requests)).Equal(2)
		second := gw.requests[1]
		// system + 2 history turns + new question
		gt.V(t, len(second.Messages)).Equal(4)
		gt.V(t, second.Messages[1].Content).Equal("My company hauls refrigerated freight.")
	})

	t.Run("declined video request is not a video intent", func(t *testing.T) {
		gw := &gatewayMock{}
		uc, _ := setup(t, gw)

		ans := uc.Ask(ctx, "u1", "conv2", "Please do not create a video for this deal")
		gt.V(t, ans.Category).Equal("general")
		gt.V(t, len(gw.requests)).Equal(1)
	})
}

func TestAskStoresUserTurnFirst(t *testing.T) {
	ctx := context.Background()

	// The user message must already be persisted when the gateway runs, so
	// an interrupted completion cannot lose the question.
	var storedDuringCall []*model.Message
	gw := &gatewayMock{}
	uc, repo := setup(t, gw)

	gw.completeFunc = func(ctx context.Context, req *adapter.CompletionRequest) (*adapter.CompletionResponse, error) {
		msgs, err := repo.GetMessages(ctx, "u1", "conv1", time.Now().AddDate(0, 0, -1), 10)
		gt.NoError(t, err)
		storedDuringCall = msgs
		return &adapter.CompletionResponse{Content: "noted"}, nil
	}

	uc.Ask(ctx, "u1", "conv1", "Remember that my MC number is 445566")

	gt.V(t, len(storedDuringCall)).Equal(1)
	gt.V(t, storedDuringCall[0].Role).Equal(model.RoleUser)
	gt.V(t, storedDuringCall[0].Content).Equal("Remember that my MC number is 445566")
}

func TestAskFallback(t *testing.T) {
	ctx := context.Background()
	gw := &gatewayMock{
		completeFunc: func(ctx context.Context, req *adapter.CompletionRequest) (*adapter.CompletionResponse, error) {
			return nil, goerr.New("gateway is down")
		},
	}
	uc, repo := setup(t, gw)

	ans := uc.Ask(ctx, "u1", "conv1", "Tell me about your favorite truck stop")

	gt.V(t, ans.Fallback).Equal(true)
	gt.V(t, ans.Confidence).Equal(0.1)
	gt.S(t, ans.Text).Contains("apologize")

	// The failed exchange is still remembered.
	msgs, err := repo.GetMessages(ctx, "u1", "conv1", time.Now().AddDate(0, 0, -1), 10)
	gt.NoError(t, err)
	gt.V(t, len(msgs)).Equal(2)
}

func TestAskActionCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("add contact", func(t *testing.T) {
		gw := &gatewayMock{}
		uc, repo := setup(t, gw)

		ans := uc.Ask(ctx, "u1", "conv1", "Add a contact named John Smith")
		gt.S(t, ans.Text).Contains("John Smith")
		gt.V(t, string(ans.ActionID) != "").Equal(true)
		gt.V(t, len(gw.requests)).Equal(0)

		entry, err := repo.GetActionLog(ctx, ans.ActionID)
		gt.NoError(t, err)
		gt.V(t, entry.Status).Equal(model.ActionCompleted)
		gt.V(t, entry.ActionType).Equal("add_contact")
	})

	t.Run("change voice", func(t *testing.T) {
		gw := &gatewayMock{}
		uc, repo := setup(t, gw)

		ans := uc.Ask(ctx, "u1", "conv1", "Change my voice to sarah")
		gt.S(t, ans.Text).Contains("sarah")

		pref, err := repo.GetVoicePreference(ctx, "u1")
		gt.NoError(t, err)
		gt.V(t, pref.VoiceID).Equal("sarah")
	})

	t.Run("failed action is reported, not raised", func(t *testing.T) {
		gw := &gatewayMock{}
		uc, repo := setup(t, gw)

		ans := uc.Ask(ctx, "u1", "conv1", "Change my voice to nonexistent-voice")
		gt.S(t, ans.Text).Contains("failed")
		gt.V(t, string(ans.ActionID) != "").Equal(true)

		entry, err := repo.GetActionLog(ctx, ans.ActionID)
		gt.NoError(t, err)
		gt.V(t, entry.Status).Equal(model.ActionFailed)
	})

	t.Run("deploy agent", func(t *testing.T) {
		gw := &gatewayMock{}
		uc, _ := setup(t, gw)

		ans := uc.Ask(ctx, "u1", "conv1", "Create a sales agent for me")
		gt.S(t, ans.Text).Contains("sales_automation_agent")
	})
}

func TestCleanup(t *testing.T) {
	ctx := context.Background()
	gw := &gatewayMock{}
	uc, repo := setup(t, gw)

	old := &model.Message{
		ID:             model.NewMessageID(),
		UserID:         "u1",
		ConversationID: "conv1",
		Role:           model.RoleUser,
		Content:        "ancient question",
		Timestamp:      time.Now().AddDate(0, 0, -40),
	}
	gt.NoError(t, repo.PutMessage(ctx, old))
	fresh := &model.Message{
		ID:             model.NewMessageID(),
		UserID:         "u1",
		ConversationID: "conv1",
		Role:           model.RoleUser,
		Content:        "recent question",
		Timestamp:      time.Now(),
	}
	gt.NoError(t, repo.PutMessage(ctx, fresh))

	result, err := uc.Cleanup(ctx)
	gt.NoError(t, err)
	gt.V(t, result.Messages).Equal(int64(1))

	msgs, err := repo.GetMessages(ctx, "u1", "conv1", time.Now().AddDate(0, 0, -60), 10)
	gt.NoError(t, err)
	gt.V(t, len(msgs)).Equal(1)
	gt.V(t, msgs[0].Content).Equal("recent question")
}

func TestCleanupLoop(t *testing.T) {
	ctx := context.Background()
	gw := &gatewayMock{}
	uc, repo := setup(t, gw)

	old := &model.Message{
		ID:             model.NewMessageID(),
		UserID:         "u1",
		ConversationID: "conv1",
		Role:           model.RoleUser,
		Content:        "stale",
		Timestamp:      time.Now().AddDate(0, 0, -40),
	}
	gt.NoError(t, repo.PutMessage(ctx, old))

	loop := uc.StartCleanupLoop(ctx, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	loop.Stop()

	msgs, err := repo.GetMessages(ctx, "u1", "conv1", time.Now().AddDate(0, 0, -60), 10)
	gt.NoError(t, err)
	gt.V(t, len(msgs)).Equal(0)
}
