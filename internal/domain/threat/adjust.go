package threat

import "strings"

// Email and audio reason strings.
const (
	ReasonSuspiciousSender = "Sender has suspicious reputation"
	ReasonNewDomain        = "Sender domain is newly registered"
	ReasonSpoofing         = "Email spoofing indicators detected"

	ReasonMultipleSpeakers = "Multiple speakers detected - possible coordination"
	ReasonLowTranscription = "Low transcription confidence - audio quality issues"
	ReasonShortAudio       = "Very short audio duration - typical of hoax calls"
)

const (
	newDomainDays             = 30
	lowTranscriptionThreshold = 0.8
	shortAudioSeconds         = 10
)

// SenderDelta is the confidence boost earned by the sender's reputation.
func SenderDelta(rep SenderReputation) int {
	delta := 0
	if rep.Reputation == "suspicious" {
		delta += 20
	}
	if rep.DomainAge < newDomainDays {
		delta += 15
	}
	if len(rep.SpoofingIndicators) > 0 {
		delta += 25
	}
	return delta
}

// HeaderDelta is the confidence boost earned by routing and spoofing
// signals in the headers. Header names match case-insensitively.
func HeaderDelta(headers map[string]string) int {
	delta := 0
	if received, ok := header(headers, "received"); ok {
		if strings.Contains(received, "tor") || strings.Contains(received, "proxy") {
			delta += 20
		}
	}
	returnPath, hasReturnPath := header(headers, "return-path")
	from, hasFrom := header(headers, "from")
	if hasReturnPath != hasFrom || returnPath != from {
		delta += 15
	}
	return delta
}

// AdjustForEmail returns a copy of base with confidence raised by the email
// signals and the sender reasons appended. Classification and threat level
// are left as computed on base.
func AdjustForEmail(base *Analysis, rep SenderReputation, headers map[string]string) *Analysis {
	var extra []string
	if rep.Reputation == "suspicious" {
		extra = append(extra, ReasonSuspiciousSender)
	}
	if rep.DomainAge < newDomainDays {
		extra = append(extra, ReasonNewDomain)
	}
	if len(rep.SpoofingIndicators) > 0 {
		extra = append(extra, ReasonSpoofing)
	}
	return raise(base, SenderDelta(rep)+HeaderDelta(headers), extra)
}

// AdjustForAudio returns a copy of base with confidence raised by the audio
// quality signals and the audio reasons appended.
func AdjustForAudio(base *Analysis, sig AudioSignals) *Analysis {
	delta := 0
	if sig.Confidence < lowTranscriptionThreshold {
		delta += 10
	}
	if sig.Speakers > 1 {
		delta += 15
	}

	var extra []string
	if sig.Speakers > 1 {
		extra = append(extra, ReasonMultipleSpeakers)
	}
	if sig.Confidence < lowTranscriptionThreshold {
		extra = append(extra, ReasonLowTranscription)
	}
	if sig.Duration < shortAudioSeconds {
		extra = append(extra, ReasonShortAudio)
	}
	return raise(base, delta, extra)
}

// raise never lowers confidence and never touches the base record.
func raise(base *Analysis, delta int, extra []string) *Analysis {
	out := *base
	if delta < 0 {
		delta = 0
	}
	out.Confidence = base.Confidence + delta
	if out.Confidence > 100 {
		out.Confidence = 100
	}
	if out.Confidence < base.Confidence {
		out.Confidence = base.Confidence
	}

	reasons := make([]string, 0, len(base.Reasons)+len(extra))
	reasons = append(reasons, base.Reasons...)
	reasons = append(reasons, extra...)
	out.Reasons = reasons

	out.Recommendations = append([]string(nil), base.Recommendations...)
	if base.Dimensions != nil {
		d := *base.Dimensions
		out.Dimensions = &d
	}
	return &out
}

func header(headers map[string]string, name string) (string, bool) {
	if v, ok := headers[name]; ok {
		return v, true
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}
