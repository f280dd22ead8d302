package threat

import (
	"time"
)

// Classification is the ternary verdict for a piece of content.
type Classification string

const (
	ClassificationGenuine   Classification = "genuine"
	ClassificationHoax      Classification = "hoax"
	ClassificationUncertain Classification = "uncertain"
)

// ThreatLevel is the four-tier severity used for response guidance.
type ThreatLevel string

const (
	LevelLow      ThreatLevel = "low"
	LevelMedium   ThreatLevel = "medium"
	LevelHigh     ThreatLevel = "high"
	LevelCritical ThreatLevel = "critical"
)

// Source says where the analysed content came from.
type Source string

const (
	SourceText     Source = "text"
	SourceEmail    Source = "email"
	SourceAudio    Source = "audio"
	SourceDocument Source = "document"
)

// ParseSource maps a free-form value to a Source. Empty input means text.
func ParseSource(s string) (Source, bool) {
	switch Source(s) {
	case "":
		return SourceText, true
	case SourceText, SourceEmail, SourceAudio, SourceDocument:
		return Source(s), true
	default:
		return "", false
	}
}

// Dimensions is the explainability breakdown; every value is in [0,100].
type Dimensions struct {
	LinguisticAnalysis     int `json:"linguistic_analysis"`
	CommunicationMetadata  int `json:"communication_metadata"`
	ContentInconsistencies int `json:"content_inconsistencies"`
	HistoricalPatterns     int `json:"historical_patterns"`
	BehavioralIndicators   int `json:"behavioral_indicators"`
	TechnicalVerification  int `json:"technical_verification"`
	ContextualAnalysis     int `json:"contextual_analysis"`
	ForensicLinguistics    int `json:"forensic_linguistics"`
}

// Named returns the dimensions as ordered (name, value) pairs.
func (d Dimensions) Named() []NamedScore {
	return []NamedScore{
		{"linguistic_analysis", d.LinguisticAnalysis},
		{"communication_metadata", d.CommunicationMetadata},
		{"content_inconsistencies", d.ContentInconsistencies},
		{"historical_patterns", d.HistoricalPatterns},
		{"behavioral_indicators", d.BehavioralIndicators},
		{"technical_verification", d.TechnicalVerification},
		{"contextual_analysis", d.ContextualAnalysis},
		{"forensic_linguistics", d.ForensicLinguistics},
	}
}

// NamedScore is a single labelled dimension value.
type NamedScore struct {
	Name  string
	Value int
}

// Metadata describes how and when an analysis was produced.
type Metadata struct {
	ProcessingTime int64     `json:"processingTime"` // ms
	Timestamp      time.Time `json:"timestamp"`
	Source         Source    `json:"source"`
	FileType       string    `json:"fileType,omitempty"`
}

// Analysis is the ThreatAnalysis record. Treat it as immutable once built:
// adjusters return copies.
type Analysis struct {
	ID              string         `json:"id"`
	Confidence      int            `json:"confidence"`
	Classification  Classification `json:"classification"`
	ThreatLevel     ThreatLevel    `json:"threatLevel"`
	Summary         string         `json:"summary"`
	Reasons         []string       `json:"reasons"`
	Recommendations []string       `json:"recommendations"`
	Dimensions      *Dimensions    `json:"dimensions,omitempty"`
	Metadata        Metadata       `json:"metadata"`
}

// Verdict is the decision part of an analysis, before it gets an identity
// and metadata. Both the heuristic path and the model path produce one.
type Verdict struct {
	Confidence      int
	Classification  Classification
	ThreatLevel     ThreatLevel
	Summary         string
	Reasons         []string
	Recommendations []string
	Dimensions      *Dimensions
}

// Stamp turns a verdict into a full analysis record.
func (v Verdict) Stamp(id string, meta Metadata) *Analysis {
	reasons := v.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	recs := v.Recommendations
	if recs == nil {
		recs = []string{}
	}
	if meta.Source == "" {
		meta.Source = SourceText
	}
	if meta.ProcessingTime < 0 {
		meta.ProcessingTime = 0
	}
	return &Analysis{
		ID:              id,
		Confidence:      clamp(v.Confidence, 0, 100),
		Classification:  v.Classification,
		ThreatLevel:     v.ThreatLevel,
		Summary:         v.Summary,
		Reasons:         reasons,
		Recommendations: recs,
		Dimensions:      v.Dimensions,
		Metadata:        meta,
	}
}

// SenderReputation is what the email intake knows about the sender.
type SenderReputation struct {
	DomainAge          int      `json:"domainAge"` // days
	SpoofingIndicators []string `json:"spoofingIndicators"`
	Reputation         string   `json:"reputation"` // trusted | suspicious | unknown
}

// Email is a parsed email ready for scoring.
type Email struct {
	Subject          string            `json:"subject"`
	Body             string            `json:"body"`
	Sender           string            `json:"sender"`
	Headers          map[string]string `json:"headers"`
	SenderReputation SenderReputation  `json:"senderReputation"`
}

// AudioSignals carries transcription output and quality signals.
type AudioSignals struct {
	Transcription string  `json:"transcription"`
	Speakers      int     `json:"speakers"`
	Confidence    float64 `json:"confidence"` // transcription confidence, 0..1
	Duration      float64 `json:"duration"`   // seconds
	Language      string  `json:"language,omitempty"`
}
