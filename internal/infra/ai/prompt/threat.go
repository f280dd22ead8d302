package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/truesight/internal/domain/ai"
)

// GetSystemPrompt sets the model up as a threat analyst.
func GetSystemPrompt() string {
	return "You are a security expert specializing in threat detection and analysis. " +
		"Analyze the provided content for potential bomb threats or security risks."
}

const userTemplate = `Analyze the following content for potential bomb threats or security risks. Provide your analysis in the following JSON format:

{
  "confidence": <number 0-100>,
  "classification": "<genuine|hoax|uncertain>",
  "threatLevel": "<low|medium|high|critical>",
  "summary": "<detailed bullet-point summary with key actions and findings>",
  "reasons": ["<reason1>", "<reason2>", ...],
  "recommendations": ["<recommendation1>", "<recommendation2>", ...],
  "dimensions": {
    "linguistic_analysis": <number 0-100>,
    "communication_metadata": <number 0-100>,
    "content_inconsistencies": <number 0-100>,
    "historical_patterns": <number 0-100>,
    "behavioral_indicators": <number 0-100>,
    "technical_verification": <number 0-100>,
    "contextual_analysis": <number 0-100>,
    "forensic_linguistics": <number 0-100>
  }
}

Content to analyze:
%s

Additional context:
- Source: %s
- File type: %s

Guidelines:
- Confidence: 0-25%% (likely hoax), 26-59%% (uncertain), 60-100%% (likely genuine)
- Classification: "genuine" for credible threats, "hoax" for likely false alarms, "uncertain" for unclear cases
- Threat Level: "critical" for immediate danger, "high" for urgent attention, "medium" for verification needed, "low" for minimal risk
- Summary: Provide a detailed bullet-point summary with key findings, specific threats identified, and immediate actions required
- Provide specific, actionable reasons and recommendations
- Consider context, specificity, urgency indicators, and credibility factors

Dimensions guidance:
- linguistic_analysis: word choice, syntax, modality, directness
- communication_metadata: sender, routing, channel, timing
- content_inconsistencies: contradictions, vagueness, implausibility
- historical_patterns: similarity to known hoax/genuine templates
- behavioral_indicators: demands, threats, coercion, escalation
- technical_verification: headers, file metadata, spoofing checks
- contextual_analysis: place/time specificity, operational feasibility
- forensic_linguistics: authorial markers, regionalisms, idiosyncrasies

Respond with valid JSON only.`

// GetUserPrompt embeds the content and its context into the analysis
// instructions and output schema.
func GetUserPrompt(req ai.Request) string {
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = "text"
	}
	fileType := strings.TrimSpace(req.FileType)
	if fileType == "" {
		fileType = "N/A"
	}
	return fmt.Sprintf(userTemplate, req.Content, source, fileType)
}
