package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/pfrederiksen/community-site/internal/form"
	"github.com/pfrederiksen/community-site/internal/logger"
	"github.com/pfrederiksen/community-site/internal/pages"
	"github.com/pfrederiksen/community-site/internal/storage"
	"github.com/pfrederiksen/community-site/internal/validate"
)

// maxRequestBody bounds a POST: one photo at the upload limit plus fields.
const maxRequestBody = validate.MaxUploadSize + 2<<20

// RequestIDHeader carries the request ID on requests and responses.
const RequestIDHeader = "X-Request-ID"

// Server renders pages through their controllers over HTTP.
type Server struct {
	store   *storage.Storage
	deps    pages.Deps
	log     *logger.Logger
	metrics *logger.Metrics
	router  *chi.Mux
}

// New creates a Server. Controllers get deps with a per-request logger.
func New(store *storage.Storage, deps pages.Deps, log *logger.Logger, metrics *logger.Metrics) *Server {
	if log == nil {
		log = logger.Default()
	}
	if metrics == nil {
		metrics = logger.DefaultMetrics()
	}
	s := &Server{store: store, deps: deps, log: log, metrics: metrics}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	r.Get("/healthz", s.health)
	r.Get("/metrics", s.metricsSnapshot)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/community", http.StatusFound)
	})
	r.Get("/{page}", s.renderPage)
	r.Post("/{page}", s.submitPage)

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("Server listening", logger.Fields{"addr": addr})
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.log.Info("Server stopped", nil)
	return nil
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

type logKey struct{}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		log := s.log.With(logger.Fields{"request_id": id})
		r = r.WithContext(context.WithValue(r.Context(), logKey{}, log))

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		elapsed := time.Since(start)
		s.metrics.RecordTiming("server.request", elapsed)
		s.metrics.IncrCounter(fmt.Sprintf("http.status.%d", sw.status))
		log.Info("Request served", logger.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      sw.status,
			"duration_ms": elapsed.Milliseconds(),
		})
	})
}

func requestLogger(r *http.Request) *logger.Logger {
	if log, ok := r.Context().Value(logKey{}).(*logger.Logger); ok {
		return log
	}
	return logger.Default()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	names, err := s.store.Names()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "pages": names})
}

func (s *Server) metricsSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

func pageName(r *http.Request) string {
	return strings.TrimSuffix(chi.URLParam(r, "page"), ".html")
}

// open loads the template for the request's page and attaches its controller.
func (s *Server) open(w http.ResponseWriter, r *http.Request) (*pages.Page, bool) {
	name := pageName(r)
	pc, err := s.store.LoadContext(r.Context(), name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, storage.ErrInvalidName) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("page %q not found", name))
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}

	deps := s.deps
	deps.Log = requestLogger(r)
	p, err := pages.Init(r.Context(), name, pc, deps)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return p, true
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request) {
	p, ok := s.open(w, r)
	if !ok {
		return
	}
	s.writePage(w, p)
}

// submitPage fills the page's form from the posted fields and submits it.
// The response is the page as it stands once the submit handler returns;
// delayed follow-ups (modal close, form reset) are cancelled.
func (s *Server) submitPage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	data, err := readForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, ok := s.open(w, r)
	if !ok {
		return
	}
	if err := p.Fill(data); err != nil {
		p.Teardown()
		writeError(w, http.StatusMethodNotAllowed, err.Error())
		return
	}
	s.writePage(w, p)
}

func (s *Server) writePage(w http.ResponseWriter, p *pages.Page) {
	var markup string
	var err error
	p.Context.Exclusive(func() {
		markup, err = p.Context.HTML()
	})
	p.Teardown()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, markup)
}

// readForm turns a urlencoded or multipart body into form data. Multipart
// files become attachments.
func readForm(r *http.Request) (form.Data, error) {
	var data form.Data
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(validate.MaxUploadSize + 1<<20); err != nil {
			return nil, fmt.Errorf("parsing form: %w", err)
		}
		for name, values := range r.MultipartForm.Value {
			for _, v := range values {
				data.Add(name, v)
			}
		}
		for name, headers := range r.MultipartForm.File {
			for _, h := range headers {
				f, err := readPart(h)
				if err != nil {
					return nil, err
				}
				data.AddFile(name, f)
			}
		}
		return data, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parsing form: %w", err)
	}
	for name, values := range r.PostForm {
		for _, v := range values {
			data.Add(name, v)
		}
	}
	return data, nil
}

func readPart(h *multipart.FileHeader) (*form.File, error) {
	f, err := h.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload %s: %w", h.Filename, err)
	}
	defer f.Close()
	body, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading upload %s: %w", h.Filename, err)
	}
	return &form.File{
		Name:        h.Filename,
		ContentType: h.Header.Get("Content-Type"),
		Data:        body,
	}, nil
}
