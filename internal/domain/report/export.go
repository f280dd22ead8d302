package report

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bryanwahyu/truesight/internal/domain/threat"
)

// Version is stamped into every export package.
const Version = "v1.0"

var (
	ErrEmptyID           = errors.New("analysis id cannot be empty")
	ErrEmptyInput        = errors.New("input text cannot be empty")
	ErrMissingReport     = errors.New("summary report is required")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

// ParseFormat accepts the format names used by the API. "pdf" is an alias
// for the printable HTML export.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "text", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "html", "pdf":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Extension is the filename extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatText:
		return "txt"
	default:
		return string(f)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	case FormatHTML:
		return "text/html"
	default:
		return "text/plain"
	}
}

type Metadata struct {
	AnalysisID string    `json:"analysis_id"`
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"trueSight_version"`
}

type InputData struct {
	Text           string `json:"text"`
	CharacterCount int    `json:"character_count"`
}

type Results struct {
	SummaryReport  *threat.Analysis `json:"summary_report"`
	DetailedReport *threat.Analysis `json:"detailed_report"`
}

// Package is the audit export of one analysis session.
type Package struct {
	Metadata  Metadata  `json:"metadata"`
	InputData InputData `json:"input_data"`
	Results   Results   `json:"results"`
}

// NewPackage assembles an export package. detailed may be nil.
func NewPackage(id, input string, summary, detailed *threat.Analysis) (*Package, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrEmptyID
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyInput
	}
	if summary == nil {
		return nil, ErrMissingReport
	}
	return &Package{
		Metadata: Metadata{
			AnalysisID: id,
			Timestamp:  summary.Metadata.Timestamp,
			Version:    Version,
		},
		InputData: InputData{
			Text:           input,
			CharacterCount: utf8.RuneCountInString(input),
		},
		Results: Results{SummaryReport: summary, DetailedReport: detailed},
	}, nil
}

var rxUnsafeID = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Filename builds trueSight_analysis_<id>_<timestamp>.<ext>.
func Filename(id string, f Format, ts time.Time) string {
	clean := rxUnsafeID.ReplaceAllString(id, "_")
	return fmt.Sprintf("trueSight_analysis_%s_%s.%s", clean, ts.UTC().Format("2006-01-02T15-04-05Z"), f.Extension())
}

// ConfidenceLevel labels a 0..100 score.
func ConfidenceLevel(score int) string {
	switch {
	case score >= 90:
		return "Very High"
	case score >= 70:
		return "High"
	case score >= 50:
		return "Medium"
	case score >= 30:
		return "Low"
	default:
		return "Very Low"
	}
}

// Document is a rendered export ready to download or upload.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Render encodes the package in the given format.
func Render(p *Package, f Format) (*Document, error) {
	var (
		body []byte
		err  error
	)
	switch f {
	case FormatJSON:
		body, err = renderJSON(p)
	case FormatText:
		body = renderText(p)
	case FormatCSV:
		body, err = renderCSV(p)
	case FormatHTML:
		body, err = renderHTML(p)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s export: %w", f, err)
	}
	return &Document{
		Filename:    Filename(p.Metadata.AnalysisID, f, p.Metadata.Timestamp),
		ContentType: f.ContentType(),
		Body:        body,
	}, nil
}
