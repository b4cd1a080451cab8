package intent_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/rapid-crm/jasper/pkg/intent"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		question string
		category intent.Category
		subtype  string
	}{
		{
			name:     "negated video request stays general",
			question: "Please do not create a video of the truck",
			category: intent.General,
		},
		{
			name:     "video request",
			question: "Please create a video of the truck",
			category: intent.VideoCreation,
		},
		{
			name:     "11-hour driving rule",
			question: "What is the 11-hour driving rule?",
			category: intent.HoursOfService,
			subtype:  intent.SubtypeDrivingTime,
		},
		{
			name:     "14-hour window",
			question: "Explain the 14-hour on-duty window",
			category: intent.HoursOfService,
			subtype:  intent.SubtypeOnDutyTime,
		},
		{
			name:     "30-minute break",
			question: "When is the 30-minute break required?",
			category: intent.HoursOfService,
			subtype:  intent.SubtypeBreakRequirement,
		},
		{
			name:     "eld malfunction",
			question: "My ELD reports a malfunction, what now?",
			category: intent.ELD,
		},
		{
			name:     "dvir",
			question: "Do I need a DVIR every day?",
			category: intent.Maintenance,
		},
		{
			name:     "hazmat placards",
			question: "Which placard do I need for hazardous materials?",
			category: intent.Hazmat,
		},
		{
			name:     "voice question",
			question: "Can I change the voice you speak with?",
			category: intent.Voice,
		},
		{
			name:     "greeting",
			question: "Hello!",
			category: intent.Greeting,
		},
		{
			name:     "identity question",
			question: "Who are you and what do you do?",
			category: intent.Capability,
		},
		{
			name:     "technical collaboration",
			question: "Can we build a new API integration together?",
			category: intent.AICollaboration,
		},
		{
			name:     "database work",
			question: "I need help with the database schema",
			category: intent.AICollaboration,
		},
		{
			name:     "catch-all",
			question: "Tell me something interesting",
			category: intent.General,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := intent.Classify(tt.question)
			gt.V(t, res.Category).Equal(tt.category)
			gt.V(t, res.Subtype).Equal(tt.subtype)
		})
	}
}

func TestClassifyDeterminism(t *testing.T) {
	// Same input, same output, every time.
	q := "Do I need an ELD for my maintenance truck with hazmat placards?"
	first := intent.Classify(q)
	for i := 0; i < 100; i++ {
		gt.V(t, intent.Classify(q)).Equal(first)
	}
	// Specific categories win over later broad ones by rule order.
	gt.V(t, first.Category).Equal(intent.ELD)
}

func TestIsRegulatory(t *testing.T) {
	gt.V(t, intent.Result{Category: intent.HoursOfService}.IsRegulatory()).Equal(true)
	gt.V(t, intent.Result{Category: intent.Hazmat}.IsRegulatory()).Equal(true)
	gt.V(t, intent.Result{Category: intent.General}.IsRegulatory()).Equal(false)
	gt.V(t, intent.Result{Category: intent.VideoCreation}.IsRegulatory()).Equal(false)
}
