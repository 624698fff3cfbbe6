// Package http exposes the editing API over HTTP for browser-based editors.
//
// It is a thin adapter: every route maps onto one Editor operation and speaks
// the wire shapes from internal/dto, so payloads round-trip with the
// persistence contract.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/espalier"
	"github.com/aretw0/espalier/internal/dto"
	"github.com/aretw0/espalier/internal/logging"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server routes editing requests to an Editor.
type Server struct {
	editor *espalier.Editor
	logger *slog.Logger
}

// Option configures the handler.
type Option func(*handlerConfig)

type handlerConfig struct {
	logger   *slog.Logger
	registry *prometheus.Registry
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *handlerConfig) {
		c.logger = logger
	}
}

// WithMetricsRegistry exposes the given registry under /metrics.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(c *handlerConfig) {
		c.registry = reg
	}
}

// NewHandler creates the HTTP handler for the editing API.
func NewHandler(editor *espalier.Editor, opts ...Option) http.Handler {
	cfg := &handlerConfig{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Server{editor: editor, logger: cfg.logger}

	r := chi.NewRouter()
	r.Route("/questions", func(r chi.Router) {
		r.Get("/", s.listQuestions)
		r.Route("/{questionID}", func(r chi.Router) {
			r.Get("/", s.getOptions)
			r.Put("/", s.putOptions)
			r.Get("/findings", s.getFindings)
			r.Post("/link", s.postLink)
			r.Post("/unlink", s.postUnlink)
			r.Post("/replace", s.postReplace)
			r.Post("/source", s.postSource)
		})
	})
	if cfg.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.registry, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// transitionResponse is the body returned by every transition route.
type transitionResponse struct {
	Config       *dto.DynamicOptions `json:"config"`
	CreatedBlock *createdBlock       `json:"createdBlock,omitempty"`
	Warnings     []domain.Warning    `json:"warnings,omitempty"`
}

type createdBlock struct {
	ID                 string `json:"id"`
	OutputListVariable string `json:"outputListVariable"`
}

func (s *Server) listQuestions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.editor.Sessions().List(r.Context())
	if err != nil {
		s.fail(w, "list questions", err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"questions": ids})
}

func (s *Server) getOptions(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")
	cfg, err := s.editor.Options(r.Context(), questionID)
	if err != nil {
		s.fail(w, "get options", err)
		return
	}
	s.respond(w, http.StatusOK, dto.FromDomain(cfg))
}

func (s *Server) putOptions(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")

	var wire dto.DynamicOptions
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cfg, err := wire.ToDomain()
	if err != nil {
		s.fail(w, "decode options", err)
		return
	}
	if err := s.editor.SetOptions(r.Context(), questionID, cfg); err != nil {
		s.fail(w, "save options", err)
		return
	}
	s.respond(w, http.StatusOK, dto.FromDomain(cfg))
}

func (s *Server) getFindings(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")
	findings, err := s.editor.Check(r.Context(), questionID)
	if err != nil {
		s.fail(w, "check options", err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"findings": findings})
}

func (s *Server) postLink(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")
	var body struct {
		SectionID string `json:"sectionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	res, err := s.editor.CreateLink(r.Context(), questionID, body.SectionID)
	if err != nil {
		s.fail(w, "create link", err)
		return
	}
	s.respondTransition(w, res)
}

func (s *Server) postUnlink(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")
	var body struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	res, err := s.editor.Unlink(r.Context(), questionID, espalier.UnlinkMode(body.Mode))
	if err != nil {
		s.fail(w, "unlink", err)
		return
	}
	s.respondTransition(w, res)
}

func (s *Server) postReplace(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")
	var body struct {
		Mode      string `json:"mode"`
		SectionID string `json:"sectionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	res, err := s.editor.Replace(r.Context(), questionID, espalier.ReplaceMode(body.Mode), body.SectionID)
	if err != nil {
		s.fail(w, "replace link", err)
		return
	}
	s.respondTransition(w, res)
}

func (s *Server) postSource(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")
	var body struct {
		ListVariable string `json:"listVariable"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	res, err := s.editor.ChangeListVariable(r.Context(), questionID, body.ListVariable)
	if err != nil {
		s.fail(w, "change source", err)
		return
	}
	s.respondTransition(w, res)
}

func (s *Server) respondTransition(w http.ResponseWriter, res *espalier.Result) {
	out := transitionResponse{
		Config:   dto.FromDomain(res.Config),
		Warnings: res.Warnings,
	}
	if res.CreatedBlock != nil {
		out.CreatedBlock = &createdBlock{
			ID:                 res.CreatedBlock.ID,
			OutputListVariable: res.CreatedBlock.OutputListVariable,
		}
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encode response failed", "err", err)
	}
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	var validationErr *domain.ValidationError
	var invariantErr *domain.InvariantViolation
	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
	case errors.As(err, &invariantErr):
		http.Error(w, invariantErr.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrConfigNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		s.logger.Error(op+" failed", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
