// Package assistant orchestrates answers: memory recall, intent
// classification, knowledge lookup, action execution and LLM completion.
package assistant

import (
	"context"
	"time"

	"github.com/rapid-crm/jasper/pkg/adapter"
	"github.com/rapid-crm/jasper/pkg/intent"
	"github.com/rapid-crm/jasper/pkg/knowledge"
	"github.com/rapid-crm/jasper/pkg/model"
	"github.com/rapid-crm/jasper/pkg/repository"
	"github.com/rapid-crm/jasper/pkg/usecase/action"
	"github.com/rapid-crm/jasper/pkg/usecase/persona"
	"github.com/rapid-crm/jasper/pkg/utils/logging"
)

const (
	defaultHistoryLimit    = 20
	lowConfidenceThreshold = 0.3

	fallbackAnswer = "I apologize, but I'm having trouble reaching my AI services right now. Please try again in a moment."
)

// UseCase is the response orchestrator.
type UseCase struct {
	repo     repository.Repository
	gateway  adapter.Gateway
	personas *persona.Service
	executor *action.Executor

	historyLimit int
}

type Option func(*UseCase)

// WithExecutor enables action command handling.
func WithExecutor(x *action.Executor) Option {
	return func(uc *UseCase) {
		uc.executor = x
	}
}

// WithHistoryLimit overrides how many messages are recalled per question.
func WithHistoryLimit(n int) Option {
	return func(uc *UseCase) {
		uc.historyLimit = n
	}
}

func New(repo repository.Repository, gateway adapter.Gateway, personas *persona.Service, opts ...Option) *UseCase {
	uc := &UseCase{
		repo:         repo,
		gateway:      gateway,
		personas:     personas,
		historyLimit: defaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Ask answers a user question. It never fails: storage or gateway trouble
// degrades to a low-confidence fallback answer instead of an error.
func (uc *UseCase) Ask(ctx context.Context, userID, conversationID, question string) *model.Answer {
	logger := logging.From(ctx)
	now := time.Now()

	// 1. Resolve the active persona and its memory window.
	var activePersona *model.Persona
	retention := model.DefaultRetentionDays
	if uc.personas != nil {
		if p, err := uc.personas.Active(ctx); err == nil {
			activePersona = p
			retention = p.RetentionDays()
		} else {
			logger.Warn("no active persona, using defaults", "error", err)
		}
	}

	// 2. Recall history and context within the retention window.
	since := now.AddDate(0, 0, -retention)
	history, err := uc.repo.GetMessages(ctx, userID, conversationID, since, uc.historyLimit)
	if err != nil {
		logger.Warn("failed to load conversation history", "error", err)
	}
	convCtx, err := uc.repo.GetContext(ctx, userID, conversationID)
	if err != nil {
		logger.Warn("failed to load conversation context", "error", err)
		convCtx = model.NewContext(userID, conversationID)
	}
	hasContext := len(history) > 0 || len(convCtx.KeyTopics) > 0

	// 3. Persist the user turn before any model or action work so a crash
	// mid-call cannot lose it.
	uc.storeMessage(ctx, userID, conversationID, model.RoleUser, question, nil, now)

	// 4. Classify the question.
	res := intent.Classify(question)

	// 5. Answer: knowledge base first, then explicit action commands,
	// otherwise the LLM gateway.
	var ans *model.Answer
	if entry, ok := knowledge.Lookup(res); ok && res.IsRegulatory() {
		ans = &model.Answer{
			Text:       entry.Answer,
			Confidence: knowledge.Score(res, entry.Answer, hasContext),
			Category:   string(res.Category),
			Subtype:    res.Subtype,
			Reasoning:  knowledge.Reasoning(res, entry),
		}
	} else if cmd, ok := parseCommand(question); ok && uc.executor != nil {
		ans = uc.runAction(ctx, userID, res, cmd)
	} else {
		ans = uc.complete(ctx, activePersona, history, convCtx, res, question, hasContext)
	}

	// 6. Persist the assistant turn.
	meta := map[string]any{
		"category":   ans.Category,
		"confidence": ans.Confidence,
	}
	if ans.ActionID != "" {
		meta["action_id"] = string(ans.ActionID)
	}
	uc.storeMessage(ctx, userID, conversationID, model.RoleAssistant, ans.Text, meta, now.Add(time.Millisecond))

	// 7. Refresh the conversation context.
	uc.updateContext(ctx, convCtx, question, ans, now)

	if ans.Confidence < lowConfidenceThreshold && !ans.Fallback {
		ans.Text += "\n\nI'm not fully confident I understood that. Could you rephrase or add a bit more detail?"
	}
	return ans
}

func (uc *UseCase) runAction(ctx context.Context, userID string, res intent.Result, cmd *command) *model.Answer {
	entry, err := uc.executor.Execute(ctx, userID, cmd.actionType, cmd.params)
	if err != nil {
		text := "I tried to run " + cmd.actionType + " but it failed: " + err.Error()
		ans := &model.Answer{
			Text:       text,
			Confidence: 0.4,
			Category:   string(res.Category),
			Reasoning:  "Detected action command " + cmd.actionType + "; execution failed",
		}
		if entry != nil {
			ans.ActionID = entry.ID
		}
		return ans
	}

	return &model.Answer{
		Text:       cmd.successText(entry),
		Confidence: 0.95,
		Category:   string(res.Category),
		Reasoning:  "Detected action command " + cmd.actionType + "; executed and audited",
		ActionID:   entry.ID,
	}
}

func (uc *UseCase) complete(ctx context.Context, p *model.Persona, history []*model.Message, convCtx *model.Context, res intent.Result, question string, hasContext bool) *model.Answer {
	systemPrompt := persona.BuildSystemPrompt(p, persona.PromptInput{
		History:     history,
		Preferences: convCtx.Preferences,
		KeyTopics:   convCtx.KeyTopics,
	})

	messages := make([]adapter.ChatMessage, 0, len(history)+2)
	messages = append(messages, adapter.ChatMessage{Role: "system", Content: systemPrompt})
	for _, msg := range history {
		messages = append(messages, adapter.ChatMessage{Role: string(msg.Role), Content: msg.Content})
	}
	messages = append(messages, adapter.ChatMessage{Role: "user", Content: question})

	resp, err := uc.gateway.Complete(ctx, &adapter.CompletionRequest{Messages: messages})
	if err != nil {
		logging.From(ctx).Error("LLM gateway failed", "error", err)
		return &model.Answer{
			Text:       fallbackAnswer,
			Confidence: 0.1,
			Category:   string(res.Category),
			Subtype:    res.Subtype,
			Reasoning:  "Fallback answer: LLM gateway error",
			Fallback:   true,
		}
	}

	return &model.Answer{
		Text:       resp.Content,
		Confidence: knowledge.Score(res, resp.Content, hasContext),
		Category:   string(res.Category),
		Subtype:    res.Subtype,
		Reasoning:  "Answered by LLM gateway as " + string(res.Category),
	}
}

func (uc *UseCase) storeMessage(ctx context.Context, userID, conversationID string, role model.Role, content string, meta map[string]any, ts time.Time) {
	msg := &model.Message{
		ID:             model.NewMessageID(),
		UserID:         userID,
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Metadata:       meta,
		Timestamp:      ts,
	}
	if err := uc.repo.PutMessage(ctx, msg); err != nil {
		logging.From(ctx).Warn("failed to store message", "role", role, "error", err)
	}
}

func (uc *UseCase) updateContext(ctx context.Context, convCtx *model.Context, question string, ans *model.Answer, now time.Time) {
	topics := mergeTopics(convCtx.KeyTopics, extractTopics(question+" "+ans.Text))
	convCtx.KeyTopics = topics
	convCtx.Summary = buildSummary(topics)
	convCtx.LastUpdated = now

	if err := uc.repo.PutContext(ctx, convCtx); err != nil {
		logging.From(ctx).Warn("failed to update conversation context", "error", err)
	}
}
