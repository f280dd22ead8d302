package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/bryanwahyu/truesight/internal/domain/ai"
	"github.com/bryanwahyu/truesight/internal/logger"
)

// Provider is a named model client.
type Provider interface {
	ai.Client
	Name() string
}

// Failover tries each provider in order until one answers.
type Failover struct {
	providers []Provider
	log       *logger.Logger
}

func NewFailover(log *logger.Logger, providers ...Provider) *Failover {
	if log == nil {
		log = logger.Nop()
	}
	return &Failover{providers: providers, log: log}
}

// Providers lists the configured provider names in call order.
func (f *Failover) Providers() []string {
	names := make([]string, len(f.providers))
	for i, p := range f.providers {
		names[i] = p.Name()
	}
	return names
}

// Analyze returns ai.ErrNotConfigured when there are no providers. When all
// of them fail the errors are joined, so errors.Is still finds
// ai.ErrQuotaExceeded.
func (f *Failover) Analyze(ctx context.Context, req ai.Request) (string, error) {
	if len(f.providers) == 0 {
		return "", ai.ErrNotConfigured
	}
	var errs []error
	for i, p := range f.providers {
		out, err := p.Analyze(ctx, req)
		if err == nil {
			return out, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
		if i+1 < len(f.providers) {
			f.log.Warn().Err(err).
				Str("provider", p.Name()).
				Str("next", f.providers[i+1].Name()).
				Msg("provider failed, trying next")
		}
	}
	return "", fmt.Errorf("all AI providers failed: %w", errors.Join(errs...))
}
