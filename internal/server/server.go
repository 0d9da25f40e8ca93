// Package server provides the docs preview server: it serves the rendered
// in-memory docs graph plus health and metrics endpoints. It exists for
// authoring and CI smoke checks; production serving is the static site.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/pinchtab/pinchtab.com/internal/docmodel"
	"github.com/pinchtab/pinchtab.com/internal/logfields"
	"github.com/pinchtab/pinchtab.com/internal/metrics"
)

// Server serves one built docs graph.
type Server struct {
	data     *docmodel.DocsData
	registry *prom.Registry
	tmpl     *template.Template
}

// New creates a preview server for data. registry may be nil to disable the
// /metrics endpoint.
func New(data *docmodel.DocsData, registry *prom.Registry) *Server {
	return &Server{
		data:     data,
		registry: registry,
		tmpl:     template.Must(template.New("page").Parse(pageTemplate)),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /docs.json", s.handleDocsJSON)
	mux.HandleFunc("GET /docs/{slug}", s.handlePage)
	mux.HandleFunc("GET /{$}", s.handleIndex)
	if s.registry != nil {
		mux.Handle("GET /metrics", metrics.HTTPHandler(s.registry))
	}
	return logRequests(mux)
}

// ListenAndServe runs the server until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	slog.Info("preview server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"pages":  len(s.data.Pages),
	})
}

func (s *Server) handleDocsJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(s.data)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.data.FirstSlug == "" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/docs/"+s.data.FirstSlug, http.StatusFound)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page := s.data.PageBySlug(r.PathValue("slug"))
	if page == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := s.tmpl.Execute(w, pageView{
		Site:     s.data.Name,
		Page:     page,
		Sections: s.data.Sections,
		Body:     template.HTML(page.HTML),
	})
	if err != nil {
		slog.Error("render page", logfields.Slug(page.Slug), logfields.Error(err))
	}
}

type pageView struct {
	Site     string
	Page     *docmodel.Page
	Sections []docmodel.ManifestSection
	Body     template.HTML
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t0 := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			logfields.DurationMS(float64(time.Since(t0).Milliseconds())))
	})
}

const pageTemplate = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Page.Title}} — {{.Site}} Docs</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
<nav>
{{range .Sections}}<section>
<h2>{{.Label}}</h2>
<ul>{{range .Items}}<li><a href="/docs/{{.Slug}}">{{.Title}}</a></li>{{end}}</ul>
</section>{{end}}
</nav>
<main>
{{.Body}}
</main>
</body>
</html>
`
