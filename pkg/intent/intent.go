package intent

import "strings"

// Category is a coarse classification of a user question.
type Category string

const (
	HoursOfService  Category = "hours_of_service"
	ELD             Category = "eld"
	Maintenance     Category = "maintenance"
	Hazmat          Category = "hazmat"
	VideoCreation   Category = "video_creation"
	Voice           Category = "voice"
	Greeting        Category = "greeting"
	Capability      Category = "capability"
	AICollaboration Category = "ai_collaboration"
	General         Category = "general"
)

// Hours-of-service subtypes.
const (
	SubtypeDrivingTime      = "driving_time"
	SubtypeOnDutyTime       = "on_duty_time"
	SubtypeBreakRequirement = "break_requirement"
)

// Result is the outcome of classifying a question.
type Result struct {
	Category Category
	Subtype  string
}

// IsRegulatory reports whether the category is answered from the regulatory
// knowledge base rather than the LLM.
func (r Result) IsRegulatory() bool {
	switch r.Category {
	case HoursOfService, ELD, Maintenance, Hazmat:
		return true
	}
	return false
}

type rule struct {
	match  func(q string) bool
	result func(q string) Result
}

func containsAny(q string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(q, s) {
			return true
		}
	}
	return false
}

// rules are evaluated in order; the first match wins. Order is part of the
// contract: the negation guard must precede video creation, and the specific
// regulatory categories must precede the broad ai_collaboration keywords.
var rules = []rule{
	{
		// "do not create a video" must not read as a video request.
		match: func(q string) bool {
			return containsAny(q, "do not", "don't", "do not want", "no video") &&
				containsAny(q, "video")
		},
		result: func(q string) Result { return Result{Category: General} },
	},
	{
		match: func(q string) bool {
			return containsAny(q, "create", "make", "generate", "produce") &&
				containsAny(q, "video")
		},
		result: func(q string) Result { return Result{Category: VideoCreation} },
	},
	{
		match: func(q string) bool {
			return containsAny(q, "hours of service", "hos", "driving time", "driving limit",
				"11-hour", "11 hour", "14-hour", "14 hour", "30-minute", "30 minute",
				"duty time", "break requirement", "rest break")
		},
		result: func(q string) Result {
			return Result{Category: HoursOfService, Subtype: hosSubtype(q)}
		},
	},
	{
		match: func(q string) bool {
			return containsAny(q, "eld", "electronic logging", "logging device", "elog", "malfunction")
		},
		result: func(q string) Result { return Result{Category: ELD} },
	},
	{
		match: func(q string) bool {
			return containsAny(q, "maintenance", "inspection", "dvir", "repair", "vehicle check")
		},
		result: func(q string) Result { return Result{Category: Maintenance} },
	},
	{
		match: func(q string) bool {
			return containsAny(q, "hazmat", "hazardous", "placard", "dangerous goods")
		},
		result: func(q string) Result { return Result{Category: Hazmat} },
	},
	{
		match: func(q string) bool {
			return containsAny(q, "voice", "speak", "talk to me", "hear you", "text to speech")
		},
		result: func(q string) Result { return Result{Category: Voice} },
	},
	{
		match: func(q string) bool {
			return containsAny(q, "hello", "hi there", "hey", "good morning", "good afternoon", "good evening")
		},
		result: func(q string) Result { return Result{Category: Greeting} },
	},
	{
		match: func(q string) bool {
			return containsAny(q, "what can you", "can you help", "who are you", "your capabilities", "what do you do")
		},
		result: func(q string) Result { return Result{Category: Capability} },
	},
	{
		match: func(q string) bool {
			return containsAny(q, "database", "api", "system integration", "feature", "development", "collaborat")
		},
		result: func(q string) Result { return Result{Category: AICollaboration} },
	},
}

func hosSubtype(q string) string {
	switch {
	case containsAny(q, "11-hour", "11 hour", "driving time", "driving limit"):
		return SubtypeDrivingTime
	case containsAny(q, "14-hour", "14 hour", "duty time", "on-duty", "on duty"):
		return SubtypeOnDutyTime
	case containsAny(q, "30-minute", "30 minute", "break", "rest"):
		return SubtypeBreakRequirement
	default:
		return ""
	}
}

// Classify maps a question to its category. Pure and deterministic: equal
// inputs always yield equal results.
func Classify(question string) Result {
	q := strings.ToLower(question)
	for _, r := range rules {
		if r.match(q) {
			return r.result(q)
		}
	}
	return Result{Category: General}
}
