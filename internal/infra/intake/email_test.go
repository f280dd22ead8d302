package intake

import (
	"reflect"
	"testing"
)

func TestParseEmail(t *testing.T) {
	raw := "From: Jane Doe <jane@example.com>\r\n" +
		"Subject: Meeting moved\r\n" +
		"Return-Path: <bounce@other.test>\r\n" +
		"X-Empty:\r\n" +
		"\r\n" +
		"  The meeting is at 14:30 in room B.\r\n\r\nThanks\r\n"

	e := ParseEmail(raw)
	if e.Subject != "Meeting moved" {
		t.Errorf("Expected subject, got %q", e.Subject)
	}
	if e.Sender != "Jane Doe <jane@example.com>" {
		t.Errorf("Expected sender, got %q", e.Sender)
	}
	if e.Headers["return-path"] != "<bounce@other.test>" {
		t.Errorf("Expected lower-cased header keys, got %v", e.Headers)
	}
	if v, ok := e.Headers["x-empty"]; !ok || v != "" {
		t.Errorf("Expected empty header value kept, got %q %v", v, ok)
	}
	if e.Body != "The meeting is at 14:30 in room B.\r\n\r\nThanks" {
		t.Errorf("Unexpected body %q", e.Body)
	}
}

func TestParseEmail_NoBlankLine(t *testing.T) {
	e := ParseEmail("Subject: hi\nbomb in the lobby")
	if e.Subject != "hi" {
		t.Errorf("Expected subject hi, got %q", e.Subject)
	}
	if e.Body != "Subject: hi\nbomb in the lobby" {
		t.Errorf("Expected whole input as body, got %q", e.Body)
	}
}

func TestDomain(t *testing.T) {
	tests := []struct{ in, want string }{
		{"jane@Example.COM", "example.com"},
		{"Jane <jane@gmail.com>", "gmail.com"},
		{"no-at-sign", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Domain(tt.in); got != tt.want {
			t.Errorf("Domain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSpoofingIndicators(t *testing.T) {
	tests := []struct {
		sender string
		want   []string
	}{
		{"jane@gmail.com", []string{}},
		{"jane42@gmail.com", []string{"Numbers in username"}},
		{"ceo@gmai1.com", []string{"Lookalike domain detected"}},
		{"a.b.c.d@mail.example.com", []string{"Excessive dots in email address"}},
		{"Boss <b0ss@yah00.com>", []string{"Numbers in username", "Lookalike domain detected"}},
	}
	for _, tt := range tests {
		if got := SpoofingIndicators(tt.sender); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SpoofingIndicators(%q) = %v, want %v", tt.sender, got, tt.want)
		}
	}
}

func TestReputer_Reputation(t *testing.T) {
	ages := &StaticDomainAges{
		Known:   map[string]int{"gmail.com": 5000, "fresh.test": 3},
		Default: 200,
	}
	r := NewReputer(ages)

	tests := []struct {
		sender string
		want   string
		age    int
	}{
		{"jane@gmail.com", "trusted", 5000},
		{"jane@fresh.test", "suspicious", 3},
		{"jane@corp.test", "unknown", 200},
		{"jane7@gmail.com", "suspicious", 5000},
	}
	for _, tt := range tests {
		got := r.Reputation(tt.sender)
		if got.Reputation != tt.want || got.DomainAge != tt.age {
			t.Errorf("Reputation(%q) = %+v, want %s/%d", tt.sender, got, tt.want, tt.age)
		}
	}
}

func TestDefaultDomainAges(t *testing.T) {
	r := NewReputer(nil)
	if got := r.Reputation("someone@outlook.com"); got.Reputation != "trusted" {
		t.Errorf("Expected trusted for a large provider, got %+v", got)
	}
	if got := r.Reputation("someone@unheard-of.test"); got.Reputation != "unknown" || got.DomainAge != 365 {
		t.Errorf("Expected unknown/365, got %+v", got)
	}
}
