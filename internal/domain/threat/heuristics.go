package threat

import (
	"math"
	"regexp"
	"strings"
)

// Published thresholds. HoaxThreshold and GenuineThreshold are part of the
// external contract and must not drift.
const (
	HoaxThreshold    = 25
	GenuineThreshold = 60

	criticalFloor = 90
	highFloor     = 70
	mediumFloor   = 50
)

// Aggregation weights for the three dimension scores.
const (
	semanticWeight  = 0.5
	sentimentWeight = 0.3
	patternWeight   = 0.2
)

var (
	threatWords    = []string{"bomb", "explode", "kill", "die", "attack", "destroy", "detonate", "casualties", "evacuate"}
	hoaxWords      = []string{"prank", "joke", "fake", "just kidding", "ha ha"}
	hoaxPhrases    = []string{"this is just a test", "this is a drill", "just kidding", "ha ha", "prank", "joke"}
	genuineBonuses = []struct {
		phrase string
		points int
	}{
		{"legitimate threat", 30},
		{"not a drill", 25},
		{"urgent", 15},
		{"immediately", 15},
	}

	negativeWords = []string{"hate", "angry", "revenge", "payback", "suffer", "casualties", "detonate"}
	urgencyWords  = []string{"now", "immediately", "urgent", "quickly", "hurry", "emergency", "alert"}
)

var (
	rxClockTime      = regexp.MustCompile(`\d{1,2}:\d{2}`)
	rxRelativeTime   = regexp.MustCompile(`\d+ (minutes?|hours?|days?)`)
	rxLocation       = regexp.MustCompile(`building|floor|room|address|street|plaza|conference`)
	rxBuildingDetail = regexp.MustCompile(`\d+.*floor|conference room|building.*\d+`)
	rxRoomLabel      = regexp.MustCompile(`(?i:room) [A-Z]`) // needs original case
	rxVague          = regexp.MustCompile(`somewhere|something|someone|maybe|might`)
	rxEvacuation     = regexp.MustCompile(`evacuate|emergency stairs|do not use elevators|law enforcement`)

	rxHeaderHints    = regexp.MustCompile(`from:|return-path:`)
	rxTransportHints = regexp.MustCompile(`received:|dkim|spf`)
	rxColloquial     = regexp.MustCompile(`(won't|gonna|ain't)`)
)

// Scores holds the three raw dimension scores for a piece of text.
type Scores struct {
	Semantic  int `json:"semantic"`
	Sentiment int `json:"sentiment"`
	Pattern   int `json:"pattern"`
}

// normalize prepares text for repeated case-insensitive scans.
func normalize(text string) string {
	return strings.ToLower(text)
}

// SemanticScore rates threat vocabulary against hoax vocabulary, in [0,100].
//
// Hoax words and hoax phrases overlap ("prank", "joke", "ha ha",
// "just kidding") so those terms are penalized twice. That is current
// behaviour, kept for compatibility with previously published scores.
func SemanticScore(text string) int {
	return semanticScore(normalize(text))
}

func semanticScore(lower string) int {
	score := 0
	for _, w := range threatWords {
		if strings.Contains(lower, w) {
			score += 20
		}
	}
	for _, w := range hoaxWords {
		if strings.Contains(lower, w) {
			score -= 30
		}
	}
	for _, p := range hoaxPhrases {
		if strings.Contains(lower, p) {
			score -= 25
		}
	}
	for _, b := range genuineBonuses {
		if strings.Contains(lower, b.phrase) {
			score += b.points
		}
	}
	return clamp(score, 0, 100)
}

// SentimentScore rates negative and urgent wording, capped at 100.
func SentimentScore(text string) int {
	return sentimentScore(normalize(text))
}

func sentimentScore(lower string) int {
	score := 0
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			score += 15
		}
	}
	for _, w := range urgencyWords {
		if strings.Contains(lower, w) {
			score += 12
		}
	}
	if score > 100 {
		score = 100
	}
	return score
}

// PatternScore rates time, place and instruction specificity. It is floored
// at 0 but has no upper bound; the aggregate is clamped instead.
func PatternScore(text string) int {
	return patternScore(text, normalize(text))
}

func patternScore(raw, lower string) int {
	score := 0
	if rxClockTime.MatchString(lower) || rxRelativeTime.MatchString(lower) {
		score += 25
	}
	if rxLocation.MatchString(lower) {
		score += 20
	}
	if rxBuildingDetail.MatchString(lower) || rxRoomLabel.MatchString(raw) {
		score += 30
	}
	if rxVague.MatchString(lower) {
		score -= 20
	}
	if rxEvacuation.MatchString(lower) {
		score += 25
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Score runs the three scorers over the text.
func Score(text string) Scores {
	lower := normalize(text)
	return Scores{
		Semantic:  semanticScore(lower),
		Sentiment: sentimentScore(lower),
		Pattern:   patternScore(text, lower),
	}
}

// Confidence combines the three scores with the fixed weights.
func Confidence(s Scores) int {
	weighted := float64(s.Semantic)*semanticWeight +
		float64(s.Sentiment)*sentimentWeight +
		float64(s.Pattern)*patternWeight
	return clamp(int(math.Round(weighted)), 0, 100)
}

// Classify maps a confidence to a classification. 60 is genuine, 25 is hoax.
func Classify(confidence int) Classification {
	switch {
	case confidence >= GenuineThreshold:
		return ClassificationGenuine
	case confidence <= HoaxThreshold:
		return ClassificationHoax
	default:
		return ClassificationUncertain
	}
}

// ResolveLevel maps confidence and classification to a threat level. Hoaxes
// are always low.
func ResolveLevel(confidence int, c Classification) ThreatLevel {
	if c == ClassificationHoax {
		return LevelLow
	}
	switch {
	case confidence >= criticalFloor:
		return LevelCritical
	case confidence >= highFloor:
		return LevelHigh
	case confidence >= mediumFloor:
		return LevelMedium
	default:
		return LevelLow
	}
}

// DeriveDimensions builds the 8-way breakdown for the heuristic path.
func DeriveDimensions(text string, s Scores) *Dimensions {
	lower := normalize(text)

	communication := 30.0
	if strings.Contains(text, "@") || rxHeaderHints.MatchString(lower) {
		communication = float64(s.Semantic)*0.6 + 20
	}
	historical := float64(s.Semantic) * 0.7
	if strings.Contains(lower, "this is a drill") {
		historical += 20
	}
	technical := 35.0
	if rxTransportHints.MatchString(lower) {
		technical = 60
	}
	forensic := float64(s.Semantic) * 0.5
	if rxColloquial.MatchString(lower) {
		forensic += 20
	}
	inconsistency := 100 - math.Min(100, float64(s.Pattern)+float64(s.Sentiment)*0.5)

	return &Dimensions{
		LinguisticAnalysis:     roundClamp(float64(s.Semantic)),
		CommunicationMetadata:  roundClamp(communication),
		ContentInconsistencies: roundClamp(inconsistency),
		HistoricalPatterns:     roundClamp(historical),
		BehavioralIndicators:   roundClamp(float64(s.Sentiment)),
		TechnicalVerification:  roundClamp(technical),
		ContextualAnalysis:     roundClamp(float64(s.Pattern)),
		ForensicLinguistics:    roundClamp(forensic),
	}
}

// Assess runs the full heuristic path over the text.
func Assess(text string) Verdict {
	scores := Score(text)
	confidence := Confidence(scores)
	classification := Classify(confidence)
	level := ResolveLevel(confidence, classification)

	return Verdict{
		Confidence:      confidence,
		Classification:  classification,
		ThreatLevel:     level,
		Summary:         Summary(classification, level),
		Reasons:         Reasons(text, scores),
		Recommendations: Recommendations(classification),
		Dimensions:      DeriveDimensions(text, scores),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundClamp(f float64) int {
	return clamp(int(math.Round(f)), 0, 100)
}
