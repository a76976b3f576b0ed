// Package httpapi exposes a job form session as a JSON API. A web surface
// renders the returned views and posts field changes back.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-jobform/pkg/fmeflow"
	"github.com/goliatone/go-jobform/pkg/formstate"
	"github.com/goliatone/go-jobform/pkg/model"
	"github.com/goliatone/go-jobform/pkg/params"
	"github.com/goliatone/go-jobform/pkg/render"
	"github.com/goliatone/go-jobform/pkg/session"
	"github.com/goliatone/go-jobform/pkg/workspace"
)

const maxBodyBytes = 32 << 20

// Submitter delivers a valid payload to the processing service.
type Submitter interface {
	Submit(ctx context.Context, payload formstate.Payload) (fmeflow.Result, error)
}

// ViewRenderer renders a view as a document, such as an HTML fragment.
type ViewRenderer interface {
	Render(ctx context.Context, view render.View) ([]byte, error)
	ContentType() string
}

// Server routes HTTP requests to a session.
type Server struct {
	router    chi.Router
	session   *session.Session
	submitter Submitter
	renderer  ViewRenderer
	timeout   time.Duration
	logger    *slog.Logger
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithSubmitter sets where submissions go. Without one, submit only
// validates and echoes the payload.
func WithSubmitter(submitter Submitter) ServerOption {
	return func(s *Server) {
		s.submitter = submitter
	}
}

// WithViewRenderer exposes the form as a rendered document on GET
// /form/view.
func WithViewRenderer(renderer ViewRenderer) ServerOption {
	return func(s *Server) {
		s.renderer = renderer
	}
}

// WithRequestTimeout bounds each request. Zero disables the timeout.
func WithRequestTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		s.timeout = d
	}
}

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a server around sess.
func NewServer(sess *session.Session, opts ...ServerOption) *Server {
	s := &Server{
		session: sess,
		timeout: 60 * time.Second,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.router = s.setupRouter()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.timeout > 0 {
		r.Use(middleware.Timeout(s.timeout))
	}
	r.Use(s.loggingMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Post("/retry", s.handleRetry)

	r.Route("/workspaces", func(r chi.Router) {
		r.Get("/", s.handleListWorkspaces)
		r.Post("/{name}", s.handleSelectWorkspace)
	})

	r.Route("/form", func(r chi.Router) {
		r.Get("/", s.handleGetForm)
		if s.renderer != nil {
			r.Get("/view", s.handleRenderForm)
		}
		r.Patch("/fields/{field}", s.handleUpdateField)
		r.Put("/geometry", s.handleSetGeometry)
		r.Post("/submit", s.handleSubmit)
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

type formResponse struct {
	View   render.View    `json:"view"`
	Status session.Status `json:"status"`
}

type workspacesResponse struct {
	Repository string                    `json:"repository"`
	Workspaces []params.WorkspaceSummary `json:"workspaces"`
	Status     session.Status            `json:"status"`
}

type fieldUpdate struct {
	Value any         `json:"value"`
	File  *fileUpload `json:"file,omitempty"`
}

type fileUpload struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Data        []byte `json:"data"`
}

type geometryUpdate struct {
	Geometry string `json:"geometry"`
}

type submitResponse struct {
	Workspace string          `json:"workspace"`
	Payload   map[string]any  `json:"payload,omitempty"`
	Result    *fmeflow.Result `json:"result,omitempty"`
	Status    session.Status  `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.session.Status())
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Retry(r.Context()); err != nil {
		s.respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.form())
}

func (s *Server) handleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	if err := s.session.LoadWorkspaces(r.Context()); err != nil {
		s.respondSessionError(w, err)
		return
	}
	items := s.session.Workspaces()
	if items == nil {
		items = []params.WorkspaceSummary{}
	}
	respondJSON(w, http.StatusOK, workspacesResponse{
		Repository: s.session.Repository(),
		Workspaces: items,
		Status:     s.session.Status(),
	})
}

func (s *Server) handleSelectWorkspace(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.session.Select(r.Context(), name); err != nil {
		s.respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.form())
}

func (s *Server) handleGetForm(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.form())
}

func (s *Server) handleRenderForm(w http.ResponseWriter, r *http.Request) {
	body, err := s.renderer.Render(r.Context(), s.session.View())
	if err != nil {
		s.logger.Error("render form", "error", err)
		respondError(w, http.StatusInternalServerError, "RENDER_FAILED", err.Error())
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	var body fieldUpdate
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	value := body.Value
	if body.File != nil {
		value = model.File{Name: body.File.Name, ContentType: body.File.ContentType, Data: body.File.Data}
	}
	if _, err := s.session.Update(chi.URLParam(r, "field"), value); err != nil {
		s.respondSessionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.form())
}

func (s *Server) handleSetGeometry(w http.ResponseWriter, r *http.Request) {
	var body geometryUpdate
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	s.session.SetGeometry(body.Geometry)
	respondJSON(w, http.StatusOK, s.form())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var (
		result  fmeflow.Result
		sendErr error
		sent    bool
	)
	sink := formstate.SinkFunc(func(payload formstate.Payload) {
		sent = true
		if s.submitter != nil {
			result, sendErr = s.submitter.Submit(r.Context(), payload)
		}
	})

	payload, err := s.session.Submit(sink)
	if err != nil {
		s.respondSessionError(w, err)
		return
	}
	if sendErr != nil {
		s.respondSessionError(w, sendErr)
		return
	}

	resp := submitResponse{Workspace: payload.Type, Status: s.session.Status()}
	if s.submitter != nil && sent {
		resp.Result = &result
	} else {
		resp.Payload = payload.Summary()
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) form() formResponse {
	return formResponse{View: s.session.View(), Status: s.session.Status()}
}

// respondSessionError maps session, form and remote errors to HTTP statuses.
func (s *Server) respondSessionError(w http.ResponseWriter, err error) {
	var (
		verr     *formstate.ValidationError
		fetchErr *workspace.FetchError
		flowErr  *fmeflow.Error
	)
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   err.Error(),
			"code":    "VALIDATION",
			"invalid": verr.Count,
			"status":  s.session.Status(),
		})
	case errors.Is(err, formstate.ErrUnknownField):
		respondError(w, http.StatusNotFound, "UNKNOWN_FIELD", err.Error())
	case errors.Is(err, formstate.ErrNotInitialized):
		respondError(w, http.StatusConflict, "NOT_INITIALIZED", err.Error())
	case errors.Is(err, session.ErrNoRepository):
		respondError(w, http.StatusUnprocessableEntity, workspace.CodeConfiguration, err.Error())
	case errors.As(err, &fetchErr):
		status := http.StatusBadGateway
		switch fetchErr.Code {
		case workspace.CodeNotFound:
			status = http.StatusNotFound
		case workspace.CodeConfiguration:
			status = http.StatusUnprocessableEntity
		}
		respondError(w, status, fetchErr.Code, err.Error())
	case errors.As(err, &flowErr):
		respondError(w, http.StatusBadGateway, flowErr.Code, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "CANCELLED", err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}
