package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"
	"strconv"
	"strings"

	"github.com/bryanwahyu/truesight/internal/domain/threat"
)

func renderJSON(p *Package) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

var rule80 = strings.Repeat("=", 80)

func underline(title string) string {
	return title + "\n" + strings.Repeat("-", len(title)) + "\n"
}

func renderText(p *Package) []byte {
	a := p.Results.SummaryReport
	var b strings.Builder

	b.WriteString(rule80 + "\nTRUESIGHT THREAT ANALYSIS AUDIT LOG\n" + rule80 + "\n\n")

	b.WriteString(underline("ANALYSIS METADATA:"))
	fmt.Fprintf(&b, "Analysis ID: %s\n", p.Metadata.AnalysisID)
	fmt.Fprintf(&b, "Timestamp: %s\n", p.Metadata.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"))
	fmt.Fprintf(&b, "System Version: %s\n\n", p.Metadata.Version)

	b.WriteString(underline("INPUT DATA:"))
	fmt.Fprintf(&b, "Character Count: %d\n", p.InputData.CharacterCount)
	fmt.Fprintf(&b, "Input Text: %s\n\n", p.InputData.Text)

	b.WriteString(underline("ANALYSIS RESULTS:"))
	fmt.Fprintf(&b, "Overall Score: %d%% (%s)\n", a.Confidence, ConfidenceLevel(a.Confidence))
	fmt.Fprintf(&b, "Classification: %s\n", strings.ToUpper(string(a.Classification)))
	fmt.Fprintf(&b, "Threat Level: %s\n", strings.ToUpper(string(a.ThreatLevel)))
	fmt.Fprintf(&b, "Processing Time: %dms\n", a.Metadata.ProcessingTime)
	fmt.Fprintf(&b, "Source: %s\n\n", strings.ToUpper(string(a.Metadata.Source)))

	b.WriteString(underline("SUMMARY:"))
	b.WriteString(a.Summary + "\n\n")

	writeNumbered(&b, "KEY INDICATORS:", a.Reasons)
	writeNumbered(&b, "RECOMMENDATIONS:", a.Recommendations)

	if a.Dimensions != nil {
		b.WriteString(underline("DETAILED ANALYSIS DIMENSIONS:"))
		for _, d := range sortedDimensions(a.Dimensions) {
			fmt.Fprintf(&b, "%s: %d%% (%s)\n", titleCase(d.Name), d.Value, ConfidenceLevel(d.Value))
		}
		b.WriteString("\n")
	}

	b.WriteString(rule80 + "\nEND OF AUDIT LOG\nGenerated by trueSight Threat Detection System\n" + rule80 + "\n")
	return []byte(b.String())
}

func writeNumbered(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(underline(title))
	for i, item := range items {
		fmt.Fprintf(b, "%d. %s\n", i+1, item)
	}
	b.WriteString("\n")
}

// sortedDimensions orders by value, highest first. Ties keep field order.
func sortedDimensions(d *threat.Dimensions) []threat.NamedScore {
	named := d.Named()
	sort.SliceStable(named, func(i, j int) bool { return named[i].Value > named[j].Value })
	return named
}

// titleCase turns snake_case into Title Case.
func titleCase(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func renderCSV(p *Package) ([]byte, error) {
	a := p.Results.SummaryReport
	rows := [][]string{
		{"Field", "Value"},
		{"analysis_id", p.Metadata.AnalysisID},
		{"timestamp", p.Metadata.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z")},
		{"trueSight_version", p.Metadata.Version},
		{"input_character_count", strconv.Itoa(p.InputData.CharacterCount)},
		{"overall_score", strconv.Itoa(a.Confidence)},
		{"classification", string(a.Classification)},
		{"threat_level", string(a.ThreatLevel)},
		{"processing_time_ms", strconv.FormatInt(a.Metadata.ProcessingTime, 10)},
		{"source", string(a.Metadata.Source)},
	}
	if a.Dimensions != nil {
		for _, d := range a.Dimensions.Named() {
			rows = append(rows, []string{"dimension_" + d.Name, strconv.Itoa(d.Value)})
		}
	}
	rows = append(rows,
		[]string{"key_indicators_count", strconv.Itoa(len(a.Reasons))},
		[]string{"recommendations_count", strconv.Itoa(len(a.Recommendations))},
	)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"upper": func(v any) string { return strings.ToUpper(fmt.Sprint(v)) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>TrueSight Threat Analysis Report</title>
<style>
body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; margin: 40px; color: #333; }
.header { text-align: center; border-bottom: 3px solid #2563eb; padding-bottom: 20px; margin-bottom: 30px; }
.header h1 { color: #2563eb; margin: 0; font-size: 28px; }
.section { margin-bottom: 25px; padding: 20px; border: 1px solid #e5e7eb; border-radius: 8px; background: #f9fafb; }
.badge { display: inline-block; padding: 8px 16px; border-radius: 20px; font-weight: bold; }
.genuine, .threat-low { background: #dcfce7; color: #166534; }
.hoax, .threat-medium { background: #fef3c7; color: #92400e; }
.uncertain { background: #dbeafe; color: #1e40af; }
.threat-high { background: #fed7d7; color: #c53030; }
.threat-critical { background: #fecaca; color: #991b1b; }
.summary, .input-text { white-space: pre-wrap; }
.input-text { font-family: 'Courier New', monospace; background: #f8fafc; border: 1px solid #e2e8f0; padding: 15px; }
.metadata { font-size: 12px; color: #6b7280; }
@media print { body { margin: 20px; } .section { break-inside: avoid; } }
</style>
</head>
<body>
{{- $a := .Results.SummaryReport }}
<div class="header">
<h1>TrueSight Threat Analysis Report</h1>
<p>Analysis ID: {{ .Metadata.AnalysisID }} | Generated: {{ .Metadata.Timestamp.UTC.Format "2006-01-02 15:04:05 UTC" }}</p>
</div>
<div class="section">
<h2>Analysis Summary</h2>
<p><strong>Classification:</strong> <span class="badge {{ $a.Classification }}">{{ upper $a.Classification }}</span></p>
<p><strong>Threat Level:</strong> <span class="badge threat-{{ $a.ThreatLevel }}">{{ upper $a.ThreatLevel }}</span></p>
<p><strong>Confidence Score:</strong> {{ $a.Confidence }}%</p>
<div class="summary">{{ $a.Summary }}</div>
</div>
<div class="section">
<h2>Key Findings</h2>
<ul>{{ range $a.Reasons }}<li>{{ . }}</li>{{ end }}</ul>
</div>
<div class="section">
<h2>Recommendations</h2>
<ul>{{ range $a.Recommendations }}<li>{{ . }}</li>{{ end }}</ul>
</div>
<div class="section">
<h2>Original Input</h2>
<div class="input-text">{{ .InputData.Text }}</div>
</div>
<div class="metadata">
<p>Source: {{ $a.Metadata.Source }}</p>
<p>Processing Time: {{ $a.Metadata.ProcessingTime }}ms</p>
<p>Character Count: {{ .InputData.CharacterCount }}</p>
<p>TrueSight Version: {{ .Metadata.Version }}</p>
</div>
</body>
</html>
`))

func renderHTML(p *Package) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlReport.Execute(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
