// Package api serves the outreach HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/outreach"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "HOF Capital VC Outreach"

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

// Generator produces an outreach draft for a company name.
type Generator interface {
	Handle(ctx context.Context, company string) (*outreach.Result, error)
}

// Config configures the HTTP layer.
type Config struct {
	Port           int
	APIKey         string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server is the outreach HTTP API.
type Server struct {
	gen      Generator
	cfg      Config
	validate *validator.Validate
	limiter  *clientLimiter
	nowFunc  func() time.Time
}

// NewServer builds a server around gen. A zero RateLimitRPS disables
// inbound limiting.
func NewServer(gen Generator, cfg Config) (*Server, error) {
	if gen == nil {
		return nil, eris.New("api: generator is required")
	}
	s := &Server{
		gen:      gen,
		cfg:      cfg,
		validate: validator.New(),
		nowFunc:  time.Now,
	}
	if cfg.RateLimitRPS > 0 {
		l, err := newClientLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		if err != nil {
			return nil, eris.Wrap(err, "api: create rate limiter")
		}
		s.limiter = l
	}
	if cfg.APIKey == "" {
		zap.L().Warn("api: no API key configured, authentication disabled")
	}
	return s, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Group(func(r chi.Router) {
			if s.limiter != nil {
				r.Use(s.limiter.middleware)
			}
			r.Use(requireAPIKey(s.cfg.APIKey))
			r.Post("/generate-outreach", s.handleGenerate)
		})
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("api: starting server", zap.Int("port", s.cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "api: listen")
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("api: shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "api: shutdown")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Service: ServiceName})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	start := s.nowFunc()

	var req generateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", msgBadRequest)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err), msgBadRequest)
		return
	}

	res, err := s.gen.Handle(r.Context(), req.CompanyName)
	switch {
	case errors.Is(err, outreach.ErrEmptyCompany):
		writeError(w, http.StatusBadRequest, "Company name is required", msgBadRequest)
		return
	case err != nil:
		zap.L().Error("api: generate outreach",
			zap.String("company", req.CompanyName),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, NewErrorResponse(err))
		return
	}

	writeJSON(w, http.StatusOK, NewSuccessResponse(res, s.nowFunc().Sub(start)))
}

// validationMessage turns a validator error into a client-facing message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		ve := verrs[0]
		if ve.Field() == "CompanyName" && ve.Tag() == "required" {
			return "Company name is required"
		}
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	return "validation error: invalid request"
}
