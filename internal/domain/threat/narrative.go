package threat

import "unicode/utf8"

const briefMessageLength = 50

// Reason strings produced by the heuristic path.
const (
	ReasonSemantic  = "High semantic threat indicators detected"
	ReasonSentiment = "Negative sentiment and urgency patterns identified"
	ReasonPattern   = "Specific threat patterns found (time/location references)"
	ReasonBrief     = "Message unusually brief for genuine threat"
)

// Reasons lists the heuristic conditions that fired, in evaluation order.
// The result may be empty.
func Reasons(text string, s Scores) []string {
	reasons := []string{}
	if s.Semantic > 50 {
		reasons = append(reasons, ReasonSemantic)
	}
	if s.Sentiment > 40 {
		reasons = append(reasons, ReasonSentiment)
	}
	if s.Pattern > 30 {
		reasons = append(reasons, ReasonPattern)
	}
	if utf8.RuneCountInString(text) < briefMessageLength {
		reasons = append(reasons, ReasonBrief)
	}
	return reasons
}

var recommendations = map[Classification][]string{
	ClassificationGenuine: {
		"Immediately contact law enforcement",
		"Initiate emergency protocols",
		"Preserve all evidence",
	},
	ClassificationHoax: {
		"Log incident for pattern analysis",
		"Consider source blocking",
		"Monitor for escalation",
	},
	ClassificationUncertain: {
		"Conduct secondary verification",
		"Alert security team for review",
		"Prepare contingency measures",
	},
}

// Recommendations returns the canonical action list for a classification.
// Unknown classifications get an empty list.
func Recommendations(c Classification) []string {
	recs := recommendations[c]
	out := make([]string, len(recs))
	copy(out, recs)
	return out
}

const (
	summaryCritical = `• CRITICAL THREAT DETECTED - Immediate emergency response required
• Contact law enforcement and emergency services immediately
• Evacuate all personnel from the affected area
• Activate emergency protocols and alert all security teams
• Preserve all evidence and maintain security perimeter`

	summaryHigh = `• HIGH THREAT DETECTED - Urgent attention required
• Verify threat through secondary analysis
• Prepare emergency response protocols
• Alert security personnel and management
• Monitor situation closely for escalation`

	summaryMedium = `• MEDIUM THREAT DETECTED - Requires verification
• Conduct thorough threat assessment
• Implement standard security protocols
• Notify appropriate security personnel
• Document incident for further analysis`

	summaryLow = `• LOW THREAT DETECTED - Monitor situation
• Follow standard security procedures
• Document incident for records
• Continue normal operations with increased awareness`

	summaryHoax = `• HOAX DETECTED - Likely false alarm
• Log incident for pattern analysis
• Monitor for potential escalation
• Consider source blocking if repeated
• Maintain standard security protocols`

	summaryUncertain = `• UNCERTAIN THREAT - Requires human verification
• Conduct secondary analysis and review
• Consult with security experts
• Prepare contingency measures
• Monitor situation for changes`
)

// Summary picks the bullet template for a classification and level. Any
// classification other than genuine or hoax reads as uncertain.
func Summary(c Classification, level ThreatLevel) string {
	switch c {
	case ClassificationGenuine:
		switch level {
		case LevelCritical:
			return summaryCritical
		case LevelHigh:
			return summaryHigh
		case LevelMedium:
			return summaryMedium
		default:
			return summaryLow
		}
	case ClassificationHoax:
		return summaryHoax
	default:
		return summaryUncertain
	}
}
