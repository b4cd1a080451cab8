package agentfactory

import (
	"strings"

	"github.com/rapid-crm/jasper/pkg/model"
)

// taskVariant is one tagged behavior of an agent type, selected by keyword.
type taskVariant struct {
	keywords []string
	run      func(agent *model.Agent, task string) map[string]any
}

var taskVariants = map[string][]taskVariant{
	"usdot_compliance_agent": {
		{
			keywords: []string{"usdot application"},
			run: func(agent *model.Agent, task string) map[string]any {
				return map[string]any{
					"action":  "usdot_application_review",
					"status":  "reviewed",
					"message": "USDOT application checked for completeness and filing readiness",
				}
			},
		},
		{
			keywords: []string{"compliance check"},
			run: func(agent *model.Agent, task string) map[string]any {
				return map[string]any{
					"action":  "compliance_check",
					"status":  "compliant",
					"message": "Carrier records reviewed against FMCSA requirements",
				}
			},
		},
		{
			keywords: []string{"regulation"},
			run: func(agent *model.Agent, task string) map[string]any {
				return map[string]any{
					"action":  "regulation_lookup",
					"status":  "found",
					"message": "Relevant FMCSA regulations located and summarized",
				}
			},
		},
	},
	"fleet_management_agent": {
		{
			keywords: []string{"vehicle"},
			run: func(agent *model.Agent, task string) map[string]any {
				return map[string]any{
					"action":  "vehicle_tracking",
					"status":  "tracked",
					"message": "Vehicle positions and statuses compiled",
				}
			},
		},
		{
			keywords: []string{"driver"},
			run: func(agent *model.Agent, task string) map[string]any {
				return map[string]any{
					"action":  "driver_management",
					"status":  "updated",
					"message": "Driver assignments and qualifications reviewed",
				}
			},
		},
		{
			keywords: []string{"maintenance"},
			run: func(agent *model.Agent, task string) map[string]any {
				return map[string]any{
					"action":  "maintenance_scheduling",
					"status":  "scheduled",
					"message": "Upcoming maintenance items scheduled",
				}
			},
		},
	},
	"sales_automation_agent": {
		{
			keywords: []string{"lead"},
			run: func(agent *model.Agent, task string) map[string]any {
				return map[string]any{
					"action":  "lead_qualification",
					"status":  "qualified",
					"message": "Leads scored and qualified against the pipeline criteria",
				}
			},
		},
		{
			keywords: []string{"follow"},
			run: func(agent *model.Agent, task string) map[string]any {
				return map[string]any{
					"action":  "follow_up_scheduling",
					"status":  "scheduled",
					"message": "Follow-up touchpoints scheduled",
				}
			},
		},
		{
			keywords: []string{"pipeline"},
			run: func(agent *model.Agent, task string) map[string]any {
				return map[string]any{
					"action":  "pipeline_reporting",
					"status":  "reported",
					"message": "Pipeline report generated",
				}
			},
		},
	},
	"document_processing_agent": {
		{
			keywords: []string{"extract"},
			run: func(agent *model.Agent, task string) map[string]any {
				return map[string]any{
					"action":  "data_extraction",
					"status":  "extracted",
					"message": "Structured data extracted from documents",
				}
			},
		},
		{
			keywords: []string{"generate"},
			run: func(agent *model.Agent, task string) map[string]any {
				return map[string]any{
					"action":  "document_generation",
					"status":  "generated",
					"message": "Requested document generated",
				}
			},
		},
		{
			keywords: []string{"document"},
			run: func(agent *model.Agent, task string) map[string]any {
				return map[string]any{
					"action":  "document_analysis",
					"status":  "analyzed",
					"message": "Documents analyzed and classified",
				}
			},
		},
	},
}

// dispatchTask selects the agent type's variant by first keyword match over
// the lowercased task. Unmatched tasks get a generic acknowledgement so
// every accepted task produces a result.
func dispatchTask(agent *model.Agent, task string) map[string]any {
	lowered := strings.ToLower(task)
	for _, variant := range taskVariants[agent.Type] {
		for _, kw := range variant.keywords {
			if strings.Contains(lowered, kw) {
				result := variant.run(agent, task)
				result["agent_id"] = string(agent.ID)
				return result
			}
		}
	}
	return map[string]any{
		"agent_id": string(agent.ID),
		"action":   "queued",
		"status":   "accepted",
		"message":  "Task accepted by " + agent.Name,
	}
}
