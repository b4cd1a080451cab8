package assistant

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rapid-crm/jasper/pkg/model"
)

// command is an action request extracted from natural language.
type command struct {
	actionType string
	params     map[string]any
}

var (
	reAddContact = regexp.MustCompile(`(?i)\badd (?:a |new )?contact(?: (?:named|called|for))? ([A-Za-z][A-Za-z'-]*)(?: ([A-Za-z][A-Za-z'-]*))?`)
	reAddCompany = regexp.MustCompile(`(?i)\badd (?:a |new )?company(?: (?:named|called))? (.+)`)
	reAddDeal    = regexp.MustCompile(`(?i)\badd (?:a |new )?deal(?: (?:for|named|called))? (.+)`)
	reVoice      = regexp.MustCompile(`(?i)\b(?:change|set|switch) (?:my |the )?voice to ([a-z][a-z0-9_-]*)`)
	reAgent      = regexp.MustCompile(`(?i)\b(?:create|deploy|spin up) (?:an? |new )?([a-z ]+?) agent\b`)
)

var agentTypeAliases = map[string]string{
	"compliance": "usdot_compliance_agent",
	"usdot":      "usdot_compliance_agent",
	"fleet":      "fleet_management_agent",
	"sales":      "sales_automation_agent",
	"document":   "document_processing_agent",
}

// parseCommand detects explicit action requests in a question. Detection is
// deliberately conservative: anything ambiguous falls through to the LLM.
func parseCommand(question string) (*command, bool) {
	q := strings.ToLower(question)

	if m := reAddContact.FindStringSubmatch(question); m != nil {
		params := map[string]any{"first_name": m[1]}
		if m[2] != "" {
			params["last_name"] = m[2]
		}
		return &command{actionType: "add_contact", params: params}, true
	}

	if m := reAddCompany.FindStringSubmatch(question); m != nil {
		return &command{
			actionType: "add_company",
			params:     map[string]any{"name": strings.TrimRight(strings.TrimSpace(m[1]), ".!?")},
		}, true
	}

	if m := reAddDeal.FindStringSubmatch(question); m != nil {
		return &command{
			actionType: "add_deal",
			params:     map[string]any{"title": strings.TrimRight(strings.TrimSpace(m[1]), ".!?")},
		}, true
	}

	if m := reVoice.FindStringSubmatch(question); m != nil {
		return &command{
			actionType: "set_voice_preference",
			params:     map[string]any{"voice_id": strings.ToLower(m[1])},
		}, true
	}

	if m := reAgent.FindStringSubmatch(question); m != nil {
		kind := strings.ToLower(m[1])
		for alias, agentType := range agentTypeAliases {
			if strings.Contains(kind, alias) {
				return &command{
					actionType: "create_agent",
					params:     map[string]any{"agent_type": agentType},
				}, true
			}
		}
	}

	if strings.Contains(q, "backup") && strings.Contains(q, "database") {
		return &command{actionType: "backup_database", params: map[string]any{}}, true
	}
	if (strings.Contains(q, "cleanup") || strings.Contains(q, "clean up")) && strings.Contains(q, "log") {
		return &command{actionType: "cleanup_logs", params: map[string]any{}}, true
	}
	if strings.Contains(q, "restart") && strings.Contains(q, "server") {
		return &command{actionType: "restart_server", params: map[string]any{}}, true
	}

	return nil, false
}

// successText renders a user-facing confirmation for a completed action.
func (c *command) successText(entry *model.ActionLog) string {
	switch c.actionType {
	case "add_contact":
		return fmt.Sprintf("Done. I added %v to your contacts.", entry.Result["name"])
	case "add_company":
		return fmt.Sprintf("Done. I added the company %v.", entry.Result["name"])
	case "add_deal":
		return fmt.Sprintf("Done. I created the deal %q in the %v stage.", entry.Result["title"], entry.Result["stage"])
	case "set_voice_preference":
		return fmt.Sprintf("Your voice is now set to %v.", entry.Result["voice_id"])
	case "create_agent":
		return fmt.Sprintf("Deployed a new agent (%v) with ID %v.", entry.Result["type"], entry.Result["agent_id"])
	case "backup_database":
		return fmt.Sprintf("Database backup complete (%v).", entry.Result["backup_key"])
	case "cleanup_logs":
		return fmt.Sprintf("Log cleanup complete: removed %v old entries.", entry.Result["deleted_logs"])
	case "restart_server":
		return "Server restart requested."
	default:
		return "Done. Action " + c.actionType + " completed."
	}
}
