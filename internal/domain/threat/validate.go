package threat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidResponseFormat means the model output was not a JSON object.
	// The caller decides whether to fall back to the heuristic path.
	ErrInvalidResponseFormat = errors.New("invalid AI response format")

	// ErrInconsistentVerdict is returned when a Check rejects a parsed verdict.
	ErrInconsistentVerdict = errors.New("inconsistent AI verdict")
)

const (
	defaultAIReason         = "AI analysis completed"
	defaultAIRecommendation = "Review analysis results"
)

// Check inspects a verdict parsed from model output. No checks run unless
// the caller passes them to ParseVerdict.
type Check func(Verdict) error

// ConsistentClassification rejects verdicts whose classification or threat
// level disagree with what the heuristic rules would derive from the same
// confidence.
func ConsistentClassification(v Verdict) error {
	want := Classify(v.Confidence)
	if v.Classification != want {
		return fmt.Errorf("%w: confidence %d implies %s, model said %s",
			ErrInconsistentVerdict, v.Confidence, want, v.Classification)
	}
	if lvl := ResolveLevel(v.Confidence, v.Classification); v.ThreatLevel != lvl {
		return fmt.Errorf("%w: confidence %d implies level %s, model said %s",
			ErrInconsistentVerdict, v.Confidence, lvl, v.ThreatLevel)
	}
	return nil
}

// ParseVerdict validates raw model output and fills every missing field
// with its default. Numeric fields are clamped; classification and threat
// level are trusted as given.
func ParseVerdict(raw string, checks ...Check) (Verdict, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &obj); err != nil || obj == nil {
		if err == nil {
			err = errors.New("not a JSON object")
		}
		return Verdict{}, fmt.Errorf("%w: %v", ErrInvalidResponseFormat, err)
	}

	v := Verdict{
		Confidence:     clamp(numberField(obj["confidence"]), 0, 100),
		Classification: Classification(stringField(obj["classification"])),
		ThreatLevel:    ThreatLevel(stringField(obj["threatLevel"])),
	}
	if v.Classification == "" {
		v.Classification = ClassificationUncertain
	}
	if v.ThreatLevel == "" {
		v.ThreatLevel = LevelLow
	}

	v.Summary = stringField(obj["summary"])
	if v.Summary == "" {
		v.Summary = Summary(v.Classification, v.ThreatLevel)
	}

	if list, ok := listField(obj["reasons"]); ok {
		v.Reasons = list
	} else {
		v.Reasons = []string{defaultAIReason}
	}
	if list, ok := listField(obj["recommendations"]); ok {
		v.Recommendations = list
	} else {
		v.Recommendations = []string{defaultAIRecommendation}
	}
	v.Dimensions = dimensionsField(obj["dimensions"])

	for _, check := range checks {
		if err := check(v); err != nil {
			return Verdict{}, err
		}
	}
	return v, nil
}

// numberField accepts JSON numbers and numeric strings; anything else is 0.
func numberField(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return roundInt(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return roundInt(f)
		}
	}
	return 0
}

func roundInt(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	if f < math.MinInt32 {
		return math.MinInt32
	}
	return int(math.Round(f))
}

func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// listField reports ok only when raw is a JSON array. Non-string items are
// kept as their JSON text.
func listField(raw json.RawMessage) ([]string, bool) {
	var items []json.RawMessage
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, string(item))
	}
	return out, true
}

func dimensionsField(raw json.RawMessage) *Dimensions {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return nil
	}
	get := func(k string) int { return clamp(numberField(m[k]), 0, 100) }
	return &Dimensions{
		LinguisticAnalysis:     get("linguistic_analysis"),
		CommunicationMetadata:  get("communication_metadata"),
		ContentInconsistencies: get("content_inconsistencies"),
		HistoricalPatterns:     get("historical_patterns"),
		BehavioralIndicators:   get("behavioral_indicators"),
		TechnicalVerification:  get("technical_verification"),
		ContextualAnalysis:     get("contextual_analysis"),
		ForensicLinguistics:    get("forensic_linguistics"),
	}
}
