package threat

import (
	"reflect"
	"strings"
	"testing"
)

const (
	hoaxScenario    = "Ha ha, just kidding about the bomb"
	genuineScenario = "There is a bomb in the conference room at 14:30, evacuate via emergency stairs immediately, not a drill"
)

func TestAssess_HoaxScenario(t *testing.T) {
	scores := Score(hoaxScenario)
	if scores.Semantic != 0 {
		t.Errorf("Expected semantic 0 after stacked hoax penalties, got %d", scores.Semantic)
	}

	v := Assess(hoaxScenario)
	if v.Confidence != 0 {
		t.Errorf("Expected confidence 0, got %d", v.Confidence)
	}
	if v.Classification != ClassificationHoax {
		t.Errorf("Expected hoax, got %s", v.Classification)
	}
	if v.ThreatLevel != LevelLow {
		t.Errorf("Expected low, got %s", v.ThreatLevel)
	}
	if !reflect.DeepEqual(v.Reasons, []string{ReasonBrief}) {
		t.Errorf("Unexpected reasons: %v", v.Reasons)
	}
	if v.Summary != summaryHoax {
		t.Errorf("Expected hoax summary, got %q", v.Summary)
	}
}

func TestAssess_GenuineScenario(t *testing.T) {
	scores := Score(genuineScenario)
	want := Scores{Semantic: 80, Sentiment: 24, Pattern: 100}
	if scores != want {
		t.Fatalf("Expected scores %+v, got %+v", want, scores)
	}

	v := Assess(genuineScenario)
	if v.Confidence != 67 {
		t.Errorf("Expected confidence 67, got %d", v.Confidence)
	}
	if v.Classification != ClassificationGenuine {
		t.Errorf("Expected genuine, got %s", v.Classification)
	}
	if v.ThreatLevel != LevelMedium {
		t.Errorf("Expected medium, got %s", v.ThreatLevel)
	}
	if !reflect.DeepEqual(v.Reasons, []string{ReasonSemantic, ReasonPattern}) {
		t.Errorf("Unexpected reasons: %v", v.Reasons)
	}
	if len(v.Recommendations) != 3 || v.Recommendations[0] != "Immediately contact law enforcement" {
		t.Errorf("Unexpected recommendations: %v", v.Recommendations)
	}

	wantDims := Dimensions{
		LinguisticAnalysis:     80,
		CommunicationMetadata:  30,
		ContentInconsistencies: 0,
		HistoricalPatterns:     56,
		BehavioralIndicators:   24,
		TechnicalVerification:  35,
		ContextualAnalysis:     100,
		ForensicLinguistics:    40,
	}
	if v.Dimensions == nil || *v.Dimensions != wantDims {
		t.Errorf("Expected dimensions %+v, got %+v", wantDims, v.Dimensions)
	}
}

func TestSemanticScore(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"single threat word", "a bomb", 20},
		{"case insensitive", "A BOMB", 20},
		{"repeated word counts once", "bomb bomb bomb", 20},
		{"bonuses", "legitimate threat, not a drill, urgent", 70},
		{"clamped high", "bomb explode kill attack destroy detonate casualties", 100},
		{"clamped low", "just kidding, this is a drill", 0},
		// "joke" is both a hoax word and a hoax phrase: 100 - 30 - 25.
		{"double hoax penalty", "bomb explode kill attack destroy joke", 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SemanticScore(tt.text); got != tt.want {
				t.Errorf("SemanticScore(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestSentimentScore(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"neutral", "the weather is fine", 0},
		{"mixed", "I hate you, revenge now, hurry, emergency", 66},
		{"capped", "hate angry revenge payback suffer casualties detonate now immediately urgent quickly hurry emergency alert", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SentimentScore(tt.text); got != tt.want {
				t.Errorf("SentimentScore(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestPatternScore(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"nothing", "hello there", 0},
		{"vague floors at zero", "meet me somewhere maybe", 0},
		{"duration floor and detail", "in 5 minutes on the 3rd floor", 75},
		{"room label", "Room B", 50},
		{"room without label", "room b", 20},
		{"evacuation", "do not use elevators", 25},
		{"no upper clamp", "at 10:15 in conference room, building 7, evacuate", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PatternScore(tt.text); got != tt.want {
				t.Errorf("PatternScore(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		scores Scores
		want   int
	}{
		{Scores{}, 0},
		{Scores{Semantic: 1}, 1}, // 0.5 rounds up
		{Scores{Semantic: 50, Sentiment: 50, Pattern: 50}, 50},
		{Scores{Semantic: 100, Sentiment: 100, Pattern: 125}, 100},
	}
	for _, tt := range tests {
		if got := Confidence(tt.scores); got != tt.want {
			t.Errorf("Confidence(%+v) = %d, want %d", tt.scores, got, tt.want)
		}
	}
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		confidence int
		want       Classification
	}{
		{0, ClassificationHoax},
		{25, ClassificationHoax},
		{26, ClassificationUncertain},
		{59, ClassificationUncertain},
		{60, ClassificationGenuine},
		{100, ClassificationGenuine},
	}
	for _, tt := range tests {
		if got := Classify(tt.confidence); got != tt.want {
			t.Errorf("Classify(%d) = %s, want %s", tt.confidence, got, tt.want)
		}
	}
}

func TestResolveLevel(t *testing.T) {
	tests := []struct {
		confidence int
		class      Classification
		want       ThreatLevel
	}{
		{100, ClassificationHoax, LevelLow},
		{90, ClassificationGenuine, LevelCritical},
		{89, ClassificationGenuine, LevelHigh},
		{70, ClassificationGenuine, LevelHigh},
		{69, ClassificationGenuine, LevelMedium},
		{55, ClassificationUncertain, LevelMedium},
		{49, ClassificationUncertain, LevelLow},
	}
	for _, tt := range tests {
		if got := ResolveLevel(tt.confidence, tt.class); got != tt.want {
			t.Errorf("ResolveLevel(%d, %s) = %s, want %s", tt.confidence, tt.class, got, tt.want)
		}
	}
}

func TestAssess_Invariants(t *testing.T) {
	inputs := []string{
		"",
		"x",
		hoaxScenario,
		genuineScenario,
		"URGENT!!! hate revenge payback bomb explode kill die attack destroy detonate casualties evacuate now",
		"From: someone@example.com\nReceived: via relay\nDKIM ok. I ain't gonna do nothing, maybe.",
		strings.Repeat("this is a drill ", 40),
	}
	for _, in := range inputs {
		v := Assess(in)
		if v.Confidence < 0 || v.Confidence > 100 {
			t.Errorf("confidence out of range for %q: %d", in, v.Confidence)
		}
		if v.Classification != Classify(v.Confidence) {
			t.Errorf("classification %s inconsistent with confidence %d", v.Classification, v.Confidence)
		}
		if v.Classification == ClassificationHoax && v.ThreatLevel != LevelLow {
			t.Errorf("hoax must be low, got %s", v.ThreatLevel)
		}
		if len(v.Recommendations) == 0 {
			t.Errorf("recommendations empty for %q", in)
		}
		if v.Summary == "" {
			t.Errorf("summary empty for %q", in)
		}
		for _, d := range v.Dimensions.Named() {
			if d.Value < 0 || d.Value > 100 {
				t.Errorf("dimension %s out of range: %d", d.Name, d.Value)
			}
		}
		if again := Assess(in); !reflect.DeepEqual(v, again) {
			t.Errorf("Assess not deterministic for %q", in)
		}
	}
}

func TestReasons_CanBeEmpty(t *testing.T) {
	text := "The quarterly report has been uploaded to the shared drive for review by the team."
	got := Reasons(text, Score(text))
	if got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil reasons, got %#v", got)
	}
}

func TestRecommendations_ReturnsCopy(t *testing.T) {
	recs := Recommendations(ClassificationHoax)
	recs[0] = "changed"
	if Recommendations(ClassificationHoax)[0] == "changed" {
		t.Error("Recommendations leaked its backing array")
	}
	if len(Recommendations("bogus")) != 0 {
		t.Error("Expected no recommendations for unknown classification")
	}
}

func TestSummary_Templates(t *testing.T) {
	tests := []struct {
		class  Classification
		level  ThreatLevel
		prefix string
	}{
		{ClassificationGenuine, LevelCritical, "• CRITICAL THREAT DETECTED"},
		{ClassificationGenuine, LevelHigh, "• HIGH THREAT DETECTED"},
		{ClassificationGenuine, LevelMedium, "• MEDIUM THREAT DETECTED"},
		{ClassificationGenuine, LevelLow, "• LOW THREAT DETECTED"},
		{ClassificationHoax, LevelCritical, "• HOAX DETECTED"},
		{ClassificationUncertain, LevelHigh, "• UNCERTAIN THREAT"},
		{"something-else", LevelLow, "• UNCERTAIN THREAT"},
	}
	for _, tt := range tests {
		if got := Summary(tt.class, tt.level); !strings.HasPrefix(got, tt.prefix) {
			t.Errorf("Summary(%s, %s) = %q, want prefix %q", tt.class, tt.level, got, tt.prefix)
		}
	}
}

func TestVerdict_Stamp(t *testing.T) {
	a := Verdict{Confidence: 150, Classification: ClassificationGenuine, ThreatLevel: LevelCritical}.
		Stamp("abc", Metadata{ProcessingTime: -3})
	if a.Confidence != 100 {
		t.Errorf("Expected clamped confidence 100, got %d", a.Confidence)
	}
	if a.Reasons == nil || a.Recommendations == nil {
		t.Error("Expected non-nil slices")
	}
	if a.Metadata.Source != SourceText {
		t.Errorf("Expected default source text, got %s", a.Metadata.Source)
	}
	if a.Metadata.ProcessingTime != 0 {
		t.Errorf("Expected processing time floored at 0, got %d", a.Metadata.ProcessingTime)
	}
}
