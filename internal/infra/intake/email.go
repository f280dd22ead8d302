package intake

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/bryanwahyu/truesight/internal/domain/threat"
)

// ParseEmail splits a raw message into headers and body. Headers run up to
// the first blank line; names are lower-cased and later duplicates win.
// Without a blank line the whole input is treated as body as well.
func ParseEmail(raw string) threat.Email {
	lines := strings.Split(raw, "\n")
	headers := map[string]string{}
	bodyStart := 0

	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			bodyStart = i + 1
			break
		}
		if idx := strings.Index(line, ":"); idx > 0 {
			key := strings.ToLower(line[:idx])
			headers[key] = strings.TrimSpace(line[idx+1:])
		}
	}

	body := strings.TrimSpace(strings.Join(lines[bodyStart:], "\n"))
	return threat.Email{
		Subject: headers["subject"],
		Body:    body,
		Sender:  headers["from"],
		Headers: headers,
	}
}

// Address pulls the bare address out of a From value such as
// "Jane <jane@example.com>". Unparseable input is returned trimmed.
func Address(sender string) string {
	sender = strings.TrimSpace(sender)
	if a, err := mail.ParseAddress(sender); err == nil {
		return a.Address
	}
	return sender
}

// Domain returns the lower-cased part after the last @, or "".
func Domain(sender string) string {
	addr := Address(sender)
	at := strings.LastIndex(addr, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(strings.Trim(addr[at+1:], " >"))
}

var (
	rxDigit    = regexp.MustCompile(`[0-9]`)
	lookalikes = []string{"gmai1.com", "yah00.com"}
)

const (
	maxAddrDots  = 3
	newDomainAge = 30
	oldDomainAge = 365
)

// SpoofingIndicators lists the spoofing heuristics the sender trips.
func SpoofingIndicators(sender string) []string {
	addr := Address(sender)
	indicators := []string{}

	local := addr
	if at := strings.Index(addr, "@"); at >= 0 {
		local = addr[:at]
	}
	if rxDigit.MatchString(local) {
		indicators = append(indicators, "Numbers in username")
	}
	for _, l := range lookalikes {
		if strings.Contains(strings.ToLower(addr), l) {
			indicators = append(indicators, "Lookalike domain detected")
			break
		}
	}
	if strings.Count(addr, ".") > maxAddrDots {
		indicators = append(indicators, "Excessive dots in email address")
	}
	return indicators
}

// Reputer derives a sender reputation from spoofing heuristics and a
// domain age lookup.
type Reputer struct {
	Ages DomainAgeLookup
}

func NewReputer(ages DomainAgeLookup) *Reputer {
	if ages == nil {
		ages = DefaultDomainAges()
	}
	return &Reputer{Ages: ages}
}

func (r *Reputer) Reputation(sender string) threat.SenderReputation {
	age := r.Ages.DomainAge(Domain(sender))
	indicators := SpoofingIndicators(sender)

	rep := "unknown"
	switch {
	case len(indicators) > 0 || age < newDomainAge:
		rep = "suspicious"
	case age > oldDomainAge:
		rep = "trusted"
	}
	return threat.SenderReputation{
		DomainAge:          age,
		SpoofingIndicators: indicators,
		Reputation:         rep,
	}
}
