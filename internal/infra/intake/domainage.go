package intake

import "strings"

// DomainAgeLookup reports how many days ago a domain was registered.
type DomainAgeLookup interface {
	DomainAge(domain string) int
}

// StaticDomainAges answers from a fixed table. Unknown domains get Default.
type StaticDomainAges struct {
	Known   map[string]int
	Default int
}

const (
	providerAgeDays = 3650
	unknownAgeDays  = 365
)

// DefaultDomainAges knows the large mail providers. Everything else is
// treated as a year old, which reads as neither new nor established.
func DefaultDomainAges() *StaticDomainAges {
	return &StaticDomainAges{
		Known: map[string]int{
			"gmail.com":   providerAgeDays,
			"yahoo.com":   providerAgeDays,
			"outlook.com": providerAgeDays,
			"hotmail.com": providerAgeDays,
		},
		Default: unknownAgeDays,
	}
}

func (s *StaticDomainAges) DomainAge(domain string) int {
	if age, ok := s.Known[strings.ToLower(domain)]; ok {
		return age
	}
	return s.Default
}
