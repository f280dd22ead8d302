package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/truesight/internal/application"
	"github.com/bryanwahyu/truesight/internal/domain/ai"
	"github.com/bryanwahyu/truesight/internal/domain/report"
	"github.com/bryanwahyu/truesight/internal/domain/threat"
	"github.com/bryanwahyu/truesight/internal/logger"
)

var (
	// ErrInvalidInput wraps every request validation failure.
	ErrInvalidInput = errors.New("invalid input")

	ErrEmptyContent  = fmt.Errorf("%w: content is empty", ErrInvalidInput)
	ErrUnknownSource = fmt.Errorf("%w: unknown source", ErrInvalidInput)

	// ErrExportDisabled means no object store is configured for exports.
	ErrExportDisabled = errors.New("export storage not configured")
)

const (
	defaultLatest   = 20
	defaultPageSize = 20
	maxPageSize     = 100
)

// ResponseCache stores raw model output per request.
type ResponseCache interface {
	Get(req ai.Request) (string, bool)
	Set(req ai.Request, raw string)
}

// Recorder receives analysis counters.
type Recorder interface {
	AnalysisRecorded(engine threat.Engine)
	ModelFailed()
	FellBack()
}

// SenderReputer derives a reputation for an email sender.
type SenderReputer interface {
	Reputation(sender string) threat.SenderReputation
}

// ObjectStore uploads rendered exports and returns their URL.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// Service implements the threat analysis use-cases.
// Safe for concurrent use once constructed.
type Service struct {
	Repo    threat.Repository
	AI      ai.Client // nil means heuristic only
	Cache   ResponseCache
	Senders SenderReputer
	Exports ObjectStore
	Metrics Recorder
	Clock   application.Clock
	Log     *logger.Logger

	// Checks run on every parsed model verdict.
	Checks []threat.Check

	NewID func() string
}

//
// ==== COMMANDS ====
//

type TextCommand struct {
	TenantID string
	Text     string
	Source   string
	FileType string
}

type EmailCommand struct {
	TenantID string
	Email    threat.Email
}

type AudioCommand struct {
	TenantID string
	Signals  threat.AudioSignals
}

type DocumentCommand struct {
	TenantID string
	Text     string
	FileType string
}

// ValidateCommand carries model output produced outside the service.
type ValidateCommand struct {
	TenantID       string
	RawModelOutput string
	Text           string // optional, stored with the record
	Source         string
	FileType       string
	ProcessingTime int64 // ms, optional
}

//
// ==== USE CASES ====
//

// AnalyzeText scores free text. Source defaults to text.
func (s *Service) AnalyzeText(ctx context.Context, cmd TextCommand) (*threat.Analysis, error) {
	src, ok := threat.ParseSource(cmd.Source)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cmd.Source)
	}
	a, engine, err := s.analyze(ctx, ai.Request{Content: cmd.Text, Source: string(src), FileType: cmd.FileType})
	if err != nil {
		return nil, err
	}
	if err := s.store(ctx, cmd.TenantID, a, cmd.Text, engine); err != nil {
		return nil, err
	}
	return a, nil
}

// AnalyzeEmail scores subject and body together, then raises confidence for
// sender and header signals.
func (s *Service) AnalyzeEmail(ctx context.Context, cmd EmailCommand) (*threat.Analysis, error) {
	e := cmd.Email
	text := strings.TrimSpace(e.Subject + " " + e.Body)
	base, engine, err := s.analyze(ctx, ai.Request{Content: text, Source: string(threat.SourceEmail)})
	if err != nil {
		return nil, err
	}

	a := threat.AdjustForEmail(base, s.reputation(e), e.Headers)
	if err := s.store(ctx, cmd.TenantID, a, text, engine); err != nil {
		return nil, err
	}
	return a, nil
}

// AnalyzeAudio scores a transcription, then raises confidence for audio
// quality signals.
func (s *Service) AnalyzeAudio(ctx context.Context, cmd AudioCommand) (*threat.Analysis, error) {
	sig := cmd.Signals
	base, engine, err := s.analyze(ctx, ai.Request{
		Content:  sig.Transcription,
		Source:   string(threat.SourceAudio),
		FileType: "audio",
	})
	if err != nil {
		return nil, err
	}

	a := threat.AdjustForAudio(base, sig)
	if err := s.store(ctx, cmd.TenantID, a, sig.Transcription, engine); err != nil {
		return nil, err
	}
	return a, nil
}

// AnalyzeDocument scores text already extracted from a document.
func (s *Service) AnalyzeDocument(ctx context.Context, cmd DocumentCommand) (*threat.Analysis, error) {
	a, engine, err := s.analyze(ctx, ai.Request{
		Content:  cmd.Text,
		Source:   string(threat.SourceDocument),
		FileType: cmd.FileType,
	})
	if err != nil {
		return nil, err
	}
	if err := s.store(ctx, cmd.TenantID, a, cmd.Text, engine); err != nil {
		return nil, err
	}
	return a, nil
}

// ValidateModelOutput runs the model-validation path on caller supplied
// output. Unlike the analyze use-cases there is no heuristic fallback:
// threat.ErrInvalidResponseFormat is returned as is.
func (s *Service) ValidateModelOutput(ctx context.Context, cmd ValidateCommand) (*threat.Analysis, error) {
	src, ok := threat.ParseSource(cmd.Source)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cmd.Source)
	}
	v, err := threat.ParseVerdict(cmd.RawModelOutput, s.Checks...)
	if err != nil {
		return nil, err
	}
	a := v.Stamp(s.newID(), threat.Metadata{
		ProcessingTime: cmd.ProcessingTime,
		Timestamp:      s.now(),
		Source:         src,
		FileType:       cmd.FileType,
	})

	input := cmd.Text
	if strings.TrimSpace(input) == "" {
		input = cmd.RawModelOutput
	}
	if err := s.store(ctx, cmd.TenantID, a, input, threat.EngineAI); err != nil {
		return nil, err
	}
	return a, nil
}

// Get ambil 1 analysis by id
func (s *Service) Get(ctx context.Context, tenant, id string) (*threat.Record, error) {
	return s.Repo.Get(ctx, tenant, id)
}

// Latest ambil N analysis terakhir
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*threat.Record, error) {
	if limit <= 0 {
		limit = defaultLatest
	}
	return s.Repo.Latest(ctx, tenant, limit)
}

// Paginate lists a tenant's analyses, newest first.
func (s *Service) Paginate(ctx context.Context, tenant string, page, pageSize int) (threat.Page, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return s.Repo.Paginate(ctx, tenant, page, pageSize)
}

// Export renders a stored analysis in the given format.
func (s *Service) Export(ctx context.Context, tenant, id string, f report.Format) (*report.Document, error) {
	rec, err := s.Repo.Get(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	pkg, err := report.NewPackage(rec.Analysis.ID, rec.Input, rec.Analysis, nil)
	if err != nil {
		return nil, err
	}
	return report.Render(pkg, f)
}

// PublishExport renders a stored analysis and uploads it to object storage
// under <tenant>/exports/<filename>.
func (s *Service) PublishExport(ctx context.Context, tenant, id string, f report.Format) (string, error) {
	if s.Exports == nil {
		return "", ErrExportDisabled
	}
	doc, err := s.Export(ctx, tenant, id, f)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s/exports/%s", tenant, doc.Filename)
	url, err := s.Exports.Put(ctx, key, doc.ContentType, doc.Body)
	if err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}
	return url, nil
}

//
// ==== INTERNALS ====
//

// analyze picks the model path when a client is configured and falls back
// to the heuristic path on any provider or format failure.
func (s *Service) analyze(ctx context.Context, req ai.Request) (*threat.Analysis, threat.Engine, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, "", ErrEmptyContent
	}
	start := time.Now()
	ts := s.now()

	v, engine := s.verdict(ctx, req)
	a := v.Stamp(s.newID(), threat.Metadata{
		ProcessingTime: time.Since(start).Milliseconds(),
		Timestamp:      ts,
		Source:         threat.Source(req.Source),
		FileType:       req.FileType,
	})
	return a, engine, nil
}

func (s *Service) verdict(ctx context.Context, req ai.Request) (threat.Verdict, threat.Engine) {
	if s.AI == nil {
		return threat.Assess(req.Content), threat.EngineHeuristic
	}
	log := s.logger()

	if s.Cache != nil {
		if raw, ok := s.Cache.Get(req); ok {
			if v, err := threat.ParseVerdict(raw, s.Checks...); err == nil {
				log.Debug().Str("source", req.Source).Msg("model response served from cache")
				return v, threat.EngineAI
			}
		}
	}

	raw, err := s.AI.Analyze(ctx, req)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			return threat.Assess(req.Content), threat.EngineHeuristic
		}
		s.modelFailed()
		log.Warn().Err(err).Str("source", req.Source).Msg("model analysis failed, using heuristic analysis")
		return s.fallback(req.Content)
	}

	v, err := threat.ParseVerdict(raw, s.Checks...)
	if err != nil {
		log.Warn().Err(err).Str("source", req.Source).Msg("model response rejected, using heuristic analysis")
		return s.fallback(req.Content)
	}
	if s.Cache != nil {
		s.Cache.Set(req, raw)
	}
	return v, threat.EngineAI
}

func (s *Service) fallback(text string) (threat.Verdict, threat.Engine) {
	if s.Metrics != nil {
		s.Metrics.FellBack()
	}
	return threat.Assess(text), threat.EngineHeuristic
}

func (s *Service) modelFailed() {
	if s.Metrics != nil {
		s.Metrics.ModelFailed()
	}
}

var neutralReputation = threat.SenderReputation{DomainAge: 365, Reputation: "unknown", SpoofingIndicators: []string{}}

// reputation uses the supplied reputation when present, otherwise derives
// one from the sender. With neither, the sender is treated as neutral.
func (s *Service) reputation(e threat.Email) threat.SenderReputation {
	if e.SenderReputation.Reputation != "" {
		return e.SenderReputation
	}
	if s.Senders != nil && strings.TrimSpace(e.Sender) != "" {
		return s.Senders.Reputation(e.Sender)
	}
	return neutralReputation
}

func (s *Service) store(ctx context.Context, tenant string, a *threat.Analysis, input string, engine threat.Engine) error {
	if s.Metrics != nil {
		s.Metrics.AnalysisRecorded(engine)
	}
	rec := &threat.Record{
		TenantID:  tenant,
		Analysis:  a,
		Input:     input,
		Engine:    engine,
		CreatedAt: s.now(),
	}
	if err := s.Repo.Save(ctx, rec); err != nil {
		return fmt.Errorf("save analysis %s: %w", a.ID, err)
	}
	s.logger().Info().
		Str("tenant", tenant).
		Str("id", a.ID).
		Str("engine", string(engine)).
		Str("classification", string(a.Classification)).
		Int("confidence", a.Confidence).
		Msg("analysis stored")
	return nil
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.New().String()
}

func (s *Service) logger() *logger.Logger {
	if s.Log == nil {
		return logger.Nop()
	}
	return s.Log
}
