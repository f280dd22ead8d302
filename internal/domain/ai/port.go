package ai

import "context"

// Request is the content handed to a language model for a threat verdict.
type Request struct {
	Content  string
	Source   string
	FileType string
}

// Client returns the raw model output for a request. Parsing and
// validation of that output happen in the caller.
type Client interface {
	Analyze(ctx context.Context, req Request) (string, error)
}
