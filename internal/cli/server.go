package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/matzehuels/layoutfix/pkg/archetype"
	"github.com/matzehuels/layoutfix/pkg/buildinfo"
	"github.com/matzehuels/layoutfix/pkg/errors"
	"github.com/matzehuels/layoutfix/pkg/imageanalysis"
	"github.com/matzehuels/layoutfix/pkg/layer"
	"github.com/matzehuels/layoutfix/pkg/pipeline"
)

// requestIDHeader carries the per-request ID in both directions.
const requestIDHeader = "X-Request-ID"

// MaxLayers bounds the layers accepted in one request.
const MaxLayers = 500

// =============================================================================
// Requests
// =============================================================================

type canvasRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (c canvasRequest) Validate() error {
	if c.Width == 0 && c.Height == 0 {
		return nil
	}
	return errors.ValidateCanvas(c.Width, c.Height)
}

type correctRequest struct {
	Canvas           canvasRequest           `json:"canvas"`
	Layers           []layer.Layer           `json:"layers"`
	Analysis         *imageanalysis.Analysis `json:"analysis,omitempty"`
	ImageURL         string                  `json:"image_url,omitempty"`
	Brand            string                  `json:"brand,omitempty"`
	RecentArchetypes []string                `json:"recent_archetypes,omitempty"`
	Validate         bool                    `json:"validate,omitempty"`
	ApplyArchetype   bool                    `json:"apply_archetype,omitempty"`
	MaxRevisions     int                     `json:"max_revisions,omitempty"`
	Refresh          bool                    `json:"refresh,omitempty"`
}

func (r correctRequest) validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Canvas),
		validation.Field(&r.Layers, validation.Required, validation.Length(1, MaxLayers), validation.Skip),
		validation.Field(&r.ImageURL, validation.When(r.ImageURL != "", validation.By(func(any) error {
			return errors.ValidateURL(r.ImageURL)
		}))),
		validation.Field(&r.MaxRevisions, validation.Min(-1), validation.Max(pipeline.MaxRevisionsLimit)),
	)
}

func (r correctRequest) options() pipeline.Options {
	return pipeline.Options{
		Width:            r.Canvas.Width,
		Height:           r.Canvas.Height,
		RecentArchetypes: r.RecentArchetypes,
		Brand:            r.Brand,
		ApplyArchetype:   r.ApplyArchetype,
		ImageURL:         r.ImageURL,
		Validate:         r.Validate,
		MaxRevisions:     r.MaxRevisions,
		Refresh:          r.Refresh,
	}
}

type critiqueRequest struct {
	Canvas   canvasRequest           `json:"canvas"`
	Layers   []layer.Layer           `json:"layers"`
	Analysis *imageanalysis.Analysis `json:"analysis,omitempty"`
}

func (r critiqueRequest) validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Canvas),
		validation.Field(&r.Layers, validation.Required, validation.Length(1, MaxLayers), validation.Skip),
	)
}

type archetypeRequest struct {
	Focal  archetype.Focal `json:"focal"`
	Recent []string        `json:"recent,omitempty"`
	Brand  string          `json:"brand,omitempty"`
	Width  int             `json:"width,omitempty"`
	Height int             `json:"height,omitempty"`
}

func (r archetypeRequest) validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Focal, validation.By(func(any) error {
			return validation.ValidateStruct(&r.Focal,
				validation.Field(&r.Focal.X, validation.Min(0.0), validation.Max(1.0)),
				validation.Field(&r.Focal.Y, validation.Min(0.0), validation.Max(1.0)),
			)
		})),
		validation.Field(&r.Width, validation.Min(0), validation.Max(int(errors.MaxCanvasSide))),
		validation.Field(&r.Height, validation.Min(0), validation.Max(int(errors.MaxCanvasSide))),
	)
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// =============================================================================
// Server
// =============================================================================

// server exposes the pipeline over HTTP.
type server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	maxBody int64
	width   float64
	height  float64
}

func (c *CLI) newServer(runner *pipeline.Runner) *server {
	return &server{
		runner:  runner,
		logger:  c.Logger,
		maxBody: c.Config.Server.MaxBodyBytes,
		width:   c.Config.Canvas.Width,
		height:  c.Config.Canvas.Height,
	}
}

// routes builds the API router.
func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/correct", s.correct)
		r.Post("/critique", s.critique)
		r.Post("/archetype", s.archetype)
	})
	return r
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *server) correct(w http.ResponseWriter, r *http.Request) {
	var req correctRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request"))
		return
	}

	opts := s.withCanvas(req.options())
	opts.Logger = s.logger.With("request_id", requestIDFrom(r.Context()))
	res, err := s.runner.Execute(r.Context(), req.Layers, req.Analysis, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) critique(w http.ResponseWriter, r *http.Request) {
	var req critiqueRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request"))
		return
	}
	for i, l := range req.Layers {
		if err := l.Validate(); err != nil {
			s.fail(w, r, errors.InvalidLayer(i, l.Name, err))
			return
		}
	}

	an := imageanalysis.Default()
	if req.Analysis != nil {
		an = *req.Analysis
	}
	opts := s.withCanvas(pipeline.Options{Width: req.Canvas.Width, Height: req.Canvas.Height})
	res, err := s.runner.Critique(r.Context(), req.Layers, an, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) archetype(w http.ResponseWriter, r *http.Request) {
	var req archetypeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request"))
		return
	}

	ctx := r.Context()
	catalog := s.runner.Catalog()
	recent := req.Recent
	if len(recent) == 0 && req.Brand != "" {
		recent = s.runner.History().Recent(ctx, req.Brand)
	}
	picked := catalog.Select(req.Focal, recent)
	if req.Brand != "" {
		if _, err := s.runner.History().Record(ctx, req.Brand, picked); err != nil {
			s.logger.Warn("record archetype history", "brand", req.Brand, "err", err)
		}
	}

	width, height := req.Width, req.Height
	if width == 0 {
		width = int(s.width)
	}
	if height == 0 {
		height = int(s.height)
	}
	writeJSON(w, http.StatusOK, archetypeOutput{
		Selected:  picked,
		Archetype: catalog.Get(picked).Scale(width, height),
		Recent:    recent,
		Scores:    catalog.Ranked(req.Focal, recent),
	})
}

// withCanvas fills a missing canvas from the server config.
func (s *server) withCanvas(opts pipeline.Options) pipeline.Options {
	if opts.Width == 0 {
		opts.Width = s.width
	}
	if opts.Height == 0 {
		opts.Height = s.height
	}
	return opts
}

// decode reads a size-limited JSON body into v, writing the error response
// itself when it fails.
func (s *server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if s.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "request body exceeds %d bytes", tooLarge.Limit))
		case stderrors.Is(err, io.EOF):
			s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "request body is empty"))
		default:
			s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request"))
		}
		return false
	}
	return true
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	id := requestIDFrom(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", id, "path", r.URL.Path, "err", err)
	}
	msg := err.Error()
	if code := errors.GetCode(err); code != "" {
		msg = errors.UserMessage(err)
		var cause *errors.Error
		if stderrors.As(err, &cause) && cause.Cause != nil {
			msg += ": " + cause.Cause.Error()
		}
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: string(errors.GetCode(err)), RequestID: id})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch {
	case stderrors.Is(err, context.Canceled):
		return 499
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidLayer, errors.ErrCodeInvalidCanvas,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeNetwork:
		return http.StatusBadGateway
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// =============================================================================
// Middleware
// =============================================================================

type requestIDKey struct{}

// requestID propagates the caller's X-Request-ID or assigns a new UUID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", requestIDFrom(r.Context()),
		)
	})
}
