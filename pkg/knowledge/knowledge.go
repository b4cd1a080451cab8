// Package knowledge holds the embedded FMCSA regulatory knowledge used to
// answer compliance questions without an LLM round trip.
package knowledge

import (
	"strings"

	"github.com/rapid-crm/jasper/pkg/intent"
)

// Entry is one regulatory answer with its citation.
type Entry struct {
	Citation string
	Title    string
	Answer   string
}

var hosEntries = map[string]Entry{
	intent.SubtypeDrivingTime: {
		Citation: "49 CFR 395.3",
		Title:    "Maximum driving time for property-carrying vehicles",
		Answer: "**Maximum Driving Time (49 CFR 395.3)**\n\n" +
			"A property-carrying driver may drive a maximum of **11 hours** after 10 consecutive hours off duty.\n\n" +
			"- The 11 hours of driving must fall within the 14-hour on-duty window\n" +
			"- A new 11-hour allowance requires another 10 consecutive hours off duty",
	},
	intent.SubtypeOnDutyTime: {
		Citation: "49 CFR 395.3(a)(1)",
		Title:    "14-hour on-duty window",
		Answer: "**On-Duty Window (49 CFR 395.3(a)(1))**\n\n" +
			"A driver may not drive beyond the **14th consecutive hour** after coming on duty, following 10 consecutive hours off duty.\n\n" +
			"- Off-duty time does not extend the 14-hour window\n" +
			"- Driving after the window closes is a violation even if driving time remains",
	},
	intent.SubtypeBreakRequirement: {
		Citation: "49 CFR 395.3(a)(2)",
		Title:    "30-minute break requirement",
		Answer: "**Rest Break (49 CFR 395.3(a)(2))**\n\n" +
			"Driving is not permitted if more than 8 cumulative hours have passed since the last break of at least **30 minutes**.\n\n" +
			"- The break may be off duty, sleeper berth, or on-duty not driving\n" +
			"- Short-haul drivers under 395.1(e) are exempt",
	},
}

var hosGeneral = Entry{
	Citation: "49 CFR 395.3",
	Title:    "Hours of service overview",
	Answer: "**Hours of Service Rules (49 CFR 395.3)**\n\n" +
		"- **11 hours** maximum driving after 10 consecutive hours off duty\n" +
		"- No driving beyond the **14th consecutive hour** after coming on duty\n" +
		"- A **30-minute** break is required after 8 cumulative hours of driving\n" +
		"- 60/70-hour limits apply over 7/8 consecutive days",
}

var categoryEntries = map[intent.Category]Entry{
	intent.ELD: {
		Citation: "49 CFR 395.15",
		Title:    "Electronic logging devices",
		Answer: "**Electronic Logging Devices (49 CFR 395.15)**\n\n" +
			"Most CMV drivers required to keep records of duty status must use an ELD.\n\n" +
			"- The ELD must be registered and certified with FMCSA\n" +
			"- On malfunction, reconstruct logs on paper and repair the device within **8 days**\n" +
			"- Supporting documents must be retained for 6 months",
	},
	intent.Maintenance: {
		Citation: "49 CFR 396.11 / 396.17",
		Title:    "Vehicle inspection and maintenance",
		Answer: "**Inspection and Maintenance (49 CFR 396.11, 396.17)**\n\n" +
			"- Drivers must prepare a **DVIR** (driver vehicle inspection report) at the end of each workday when defects are found (49 CFR 396.11)\n" +
			"- Every CMV requires a **periodic (annual) inspection** (49 CFR 396.17)\n" +
			"- Defects affecting safety must be repaired before the next dispatch",
	},
	intent.Hazmat: {
		Citation: "49 CFR 177.800 / 177.817",
		Title:    "Hazardous materials transport",
		Answer: "**Hazardous Materials (49 CFR 177.800, 177.817)**\n\n" +
			"- Shipments require compliant **shipping papers** kept within the driver's reach (49 CFR 177.817)\n" +
			"- Placarding, training, and security plans are mandatory for regulated quantities\n" +
			"- Civil penalties run up to **$16,864** per violation per day, and up to **$83,439** for violations resulting in death, serious illness, or severe injury",
	},
}

// Lookup returns the knowledge entry for a regulatory classification.
func Lookup(res intent.Result) (Entry, bool) {
	switch res.Category {
	case intent.HoursOfService:
		if e, ok := hosEntries[res.Subtype]; ok {
			return e, true
		}
		return hosGeneral, true
	default:
		e, ok := categoryEntries[res.Category]
		return e, ok
	}
}

// Score computes answer confidence: 0.5 base, +0.3 for a specific intent,
// +0.2 for a CFR citation, +0.1 for structured formatting, +0.1 when prior
// conversation context exists, capped at 1.0.
func Score(res intent.Result, answer string, hasContext bool) float64 {
	score := 0.5
	if res.Category != intent.General {
		score += 0.3
	}
	if strings.Contains(answer, "49 CFR") {
		score += 0.2
	}
	if strings.Contains(answer, "**") || strings.Contains(answer, "\n-") {
		score += 0.1
	}
	if hasContext {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Reasoning describes how an answer was derived, for audit output.
func Reasoning(res intent.Result, entry Entry) string {
	var b strings.Builder
	b.WriteString("Classified question as ")
	b.WriteString(string(res.Category))
	if res.Subtype != "" {
		b.WriteString("/")
		b.WriteString(res.Subtype)
	}
	b.WriteString("; answered from regulatory knowledge base (")
	b.WriteString(entry.Citation)
	b.WriteString(")")
	return b.String()
}
