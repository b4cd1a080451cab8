package persona

import (
	"fmt"
	"strings"

	"github.com/rapid-crm/jasper/pkg/model"
)

// PromptInput carries the conversational state folded into the system
// prompt.
type PromptInput struct {
	History     []*model.Message
	Preferences map[string]string
	KeyTopics   []string
}

// BuildSystemPrompt renders the system prompt for a persona. A non-empty
// CustomPrompt wins verbatim; otherwise the prompt is generated from the
// persona configuration and extended with conversational context.
func BuildSystemPrompt(p *model.Persona, input PromptInput) string {
	if p == nil {
		p = fallbackPersona
	}
	if p.CustomPrompt != "" {
		return p.CustomPrompt
	}

	var b strings.Builder
	if p.SystemPrompt != "" {
		b.WriteString(p.SystemPrompt)
	} else {
		fmt.Fprintf(&b, "You are %s. %s\n\n", p.Name, p.Description)
		fmt.Fprintf(&b, "Communication style: %s. Expertise focus: %s.\n", p.CommunicationStyle, p.ExpertiseFocus)
		fmt.Fprintf(&b, "Personality: formality %.1f, creativity %.1f, technicality %.1f, empathy %.1f, assertiveness %.1f.\n",
			p.Traits.Formality, p.Traits.Creativity, p.Traits.Technicality, p.Traits.Empathy, p.Traits.Assertiveness)
		fmt.Fprintf(&b, "Learning rate: %.2f. Conversation memory window: %d days.\n",
			p.LearningRate, p.RetentionDays())
	}

	if len(input.History) > 0 {
		b.WriteString("\n\n## Recent Conversation\n")
		start := 0
		if len(input.History) > 6 {
			start = len(input.History) - 6
		}
		for _, msg := range input.History[start:] {
			fmt.Fprintf(&b, "- %s: %s\n", msg.Role, truncate(msg.Content, 200))
		}
	}

	if len(input.Preferences) > 0 {
		b.WriteString("\n## User Preferences\n")
		for k, v := range input.Preferences {
			fmt.Fprintf(&b, "- %s: %s\n", k, v)
		}
	}

	if len(input.KeyTopics) > 0 {
		b.WriteString("\n## Known Topics of Interest\n")
		fmt.Fprintf(&b, "%s\n", strings.Join(input.KeyTopics, ", "))
	}

	return b.String()
}

var fallbackPersona = &model.Persona{
	Name:         "Rapid CRM AI Assistant",
	Description:  "Transportation compliance and CRM assistant",
	SystemPrompt: "You are the Rapid CRM AI Assistant, a transportation compliance and CRM management AI. Be professional, direct, and helpful.",
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
