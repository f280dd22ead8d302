package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/truesight/internal/application/analysis"
	domai "github.com/bryanwahyu/truesight/internal/domain/ai"
	"github.com/bryanwahyu/truesight/internal/domain/report"
	"github.com/bryanwahyu/truesight/internal/domain/threat"
	"github.com/bryanwahyu/truesight/internal/infra/intake"
	"github.com/bryanwahyu/truesight/internal/logger"
	"github.com/bryanwahyu/truesight/internal/middleware"
)

// maxBodyBytes caps request bodies; text itself is capped by the validator.
const maxBodyBytes = 2 << 20

// Options carries the router's ambient wiring.
type Options struct {
	Log     *logger.Logger
	Metrics *middleware.Metrics

	// tenant -> api key; empty disables auth
	APIKeys        map[string]string
	AllowedOrigins []string

	RateLimit struct {
		Enabled           bool
		RequestsPerSecond float64
		Burst             int
	}
	// Stop ends background goroutines (rate limiter janitor).
	Stop <-chan struct{}

	Health middleware.HealthInfo
	Checks map[string]middleware.HealthChecker
}

type Router struct {
	svc *analysis.Service
	log *logger.Logger
}

func NewRouter(svc *analysis.Service, opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = middleware.Global()
	}
	r := &Router{svc: svc, log: log.WithComponent("httpserver")}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.RequestLogger(log))
	mux.Use(chimw.Recoverer)
	mux.Use(metrics.Middleware)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-Id"},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.HealthHandler(opts.Health, opts.Checks))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", metrics.Handler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(opts.APIKeys))
		rt.Use(middleware.RequireValidTenant)
		if opts.RateLimit.Enabled {
			rt.Use(middleware.RateLimitMiddleware(opts.RateLimit.RequestsPerSecond, opts.RateLimit.Burst, opts.Stop))
		}

		rt.Post("/analyze/text", r.wrap(r.handleAnalyzeText))
		rt.Post("/analyze/email", r.wrap(r.handleAnalyzeEmail))
		rt.Post("/analyze/audio", r.wrap(r.handleAnalyzeAudio))
		rt.Post("/analyze/document", r.wrap(r.handleAnalyzeDocument))
		rt.Post("/analyze/validate", r.wrap(r.handleValidate))

		rt.Get("/analyses", r.wrap(r.handleLatest))
		rt.Get("/analyses/page", r.wrap(r.handlePaginate))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
		rt.Get("/analyses/{id}/export", r.wrap(r.handleExport))
		rt.Post("/analyses/{id}/export", r.wrap(r.handlePublishExport))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// errBadRequest marks decode and parameter failures.
var errBadRequest = errors.New("bad request")

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			r.log.WithRequestID(chimw.GetReqID(req.Context())).Error().Err(err).
				Str("path", req.URL.Path).
				Msg("request failed")
		}
		msg := err.Error()
		if status == http.StatusInternalServerError {
			msg = "internal server error"
		}
		writeJSON(w, status, map[string]string{"error": msg})
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, threat.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, analysis.ErrInvalidInput),
		errors.Is(err, report.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, threat.ErrInvalidResponseFormat),
		errors.Is(err, threat.ErrInconsistentVerdict),
		errors.Is(err, report.ErrEmptyInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domai.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, analysis.ErrExportDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func decode(req *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(req.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

func checkText(text string) error {
	if err := middleware.ValidateText(text); err != nil {
		return fmt.Errorf("%w: %v", analysis.ErrInvalidInput, err)
	}
	return nil
}

// POST /v1/{tenant}/analyze/text
func (r *Router) handleAnalyzeText(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Text     string `json:"text"`
		Source   string `json:"source"`
		FileType string `json:"fileType"`
	}
	if err := decode(req, &body); err != nil {
		return err
	}
	if err := checkText(body.Text); err != nil {
		return err
	}

	a, err := r.svc.AnalyzeText(req.Context(), analysis.TextCommand{
		TenantID: chi.URLParam(req, "tenant"),
		Text:     body.Text,
		Source:   body.Source,
		FileType: middleware.SanitizeString(body.FileType),
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

// POST /v1/{tenant}/analyze/email
// Body is either the parsed email or {"raw": "<rfc822 text>"}.
func (r *Router) handleAnalyzeEmail(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Raw              string                   `json:"raw"`
		Subject          string                   `json:"subject"`
		Body             string                   `json:"body"`
		Sender           string                   `json:"sender"`
		Headers          map[string]string        `json:"headers"`
		SenderReputation *threat.SenderReputation `json:"senderReputation"`
	}
	if err := decode(req, &body); err != nil {
		return err
	}

	var e threat.Email
	if body.Raw != "" {
		e = intake.ParseEmail(body.Raw)
	} else {
		e = threat.Email{Subject: body.Subject, Body: body.Body, Sender: body.Sender, Headers: body.Headers}
	}
	if body.SenderReputation != nil {
		e.SenderReputation = *body.SenderReputation
	}
	if err := checkText(e.Subject + " " + e.Body); err != nil {
		return err
	}

	a, err := r.svc.AnalyzeEmail(req.Context(), analysis.EmailCommand{
		TenantID: chi.URLParam(req, "tenant"),
		Email:    e,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

// POST /v1/{tenant}/analyze/audio
func (r *Router) handleAnalyzeAudio(w http.ResponseWriter, req *http.Request) error {
	var sig threat.AudioSignals
	if err := decode(req, &sig); err != nil {
		return err
	}
	if err := checkText(sig.Transcription); err != nil {
		return err
	}

	a, err := r.svc.AnalyzeAudio(req.Context(), analysis.AudioCommand{
		TenantID: chi.URLParam(req, "tenant"),
		Signals:  sig,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

// POST /v1/{tenant}/analyze/document
func (r *Router) handleAnalyzeDocument(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Text     string `json:"text"`
		FileType string `json:"fileType"`
	}
	if err := decode(req, &body); err != nil {
		return err
	}
	if err := checkText(body.Text); err != nil {
		return err
	}

	a, err := r.svc.AnalyzeDocument(req.Context(), analysis.DocumentCommand{
		TenantID: chi.URLParam(req, "tenant"),
		Text:     body.Text,
		FileType: middleware.SanitizeString(body.FileType),
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

// POST /v1/{tenant}/analyze/validate
func (r *Router) handleValidate(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		RawModelOutput string `json:"rawModelOutput"`
		Text           string `json:"text"`
		Source         string `json:"source"`
		FileType       string `json:"fileType"`
		ProcessingTime int64  `json:"processingTime"`
	}
	if err := decode(req, &body); err != nil {
		return err
	}

	a, err := r.svc.ValidateModelOutput(req.Context(), analysis.ValidateCommand{
		TenantID:       chi.URLParam(req, "tenant"),
		RawModelOutput: body.RawModelOutput,
		Text:           body.Text,
		Source:         body.Source,
		FileType:       middleware.SanitizeString(body.FileType),
		ProcessingTime: body.ProcessingTime,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

// GET /v1/{tenant}/analyses?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.svc.Latest(req.Context(), chi.URLParam(req, "tenant"), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/{tenant}/analyses/page?page=&page_size=
func (r *Router) handlePaginate(w http.ResponseWriter, req *http.Request) error {
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.svc.Paginate(req.Context(), chi.URLParam(req, "tenant"), page, size)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

func analysisID(req *http.Request) (string, error) {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAnalysisID(id); err != nil {
		return "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return id, nil
}

// GET /v1/{tenant}/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id, err := analysisID(req)
	if err != nil {
		return err
	}
	rec, err := r.svc.Get(req.Context(), chi.URLParam(req, "tenant"), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rec)
}

// GET /v1/{tenant}/analyses/{id}/export?format=json|text|csv|html
func (r *Router) handleExport(w http.ResponseWriter, req *http.Request) error {
	id, err := analysisID(req)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(req.URL.Query().Get("format"))
	if err != nil {
		return err
	}

	doc, err := r.svc.Export(req.Context(), chi.URLParam(req, "tenant"), id, format)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(doc.Body)
	return err
}

// POST /v1/{tenant}/analyses/{id}/export?format=
func (r *Router) handlePublishExport(w http.ResponseWriter, req *http.Request) error {
	id, err := analysisID(req)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(req.URL.Query().Get("format"))
	if err != nil {
		return err
	}

	url, err := r.svc.PublishExport(req.Context(), chi.URLParam(req, "tenant"), id, format)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, map[string]string{
		"id":     id,
		"format": string(format),
		"url":    url,
	})
}
