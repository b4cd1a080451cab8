package assistant

import "strings"

type topicRule struct {
	keywords []string
	topic    string
}

// topicRules are checked in order so the summary lists regulatory topics
// before CRM and technical ones.
var topicRules = []topicRule{
	{[]string{"hours of service", "hos", "driving time", "duty time"}, "Hours of Service"},
	{[]string{"eld", "electronic logging", "elog"}, "ELD"},
	{[]string{"maintenance", "inspection", "dvir"}, "Vehicle Maintenance"},
	{[]string{"hazmat", "hazardous", "placard"}, "Hazmat"},
	{[]string{"crm", "contact", "company", "deal"}, "CRM"},
	{[]string{"database", "api", "integration"}, "Technical Development"},
	{[]string{"voice", "speak"}, "Voice Interaction"},
}

// extractTopics returns the known topics mentioned in the text, in rule
// order.
func extractTopics(text string) []string {
	lower := strings.ToLower(text)
	var topics []string
	for _, r := range topicRules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				topics = append(topics, r.topic)
				break
			}
		}
	}
	return topics
}

// mergeTopics appends new topics to the existing list, dropping duplicates
// while preserving first-seen order.
func mergeTopics(existing, found []string) []string {
	seen := make(map[string]bool, len(existing)+len(found))
	merged := make([]string, 0, len(existing)+len(found))
	for _, lists := range [][]string{existing, found} {
		for _, t := range lists {
			if !seen[t] {
				seen[t] = true
				merged = append(merged, t)
			}
		}
	}
	return merged
}

// buildSummary renders a short rolling summary from the topic list.
func buildSummary(topics []string) string {
	if len(topics) == 0 {
		return "General conversation"
	}
	if len(topics) > 3 {
		topics = topics[:3]
	}
	return "Discussion focused on: " + strings.Join(topics, ", ")
}
