package pipeline

import (
	"context"
	"net/http"
	"sync"

	"github.com/pinchtab/pinchtab.com/internal/config"
	"github.com/pinchtab/pinchtab.com/internal/docmodel"
	"github.com/pinchtab/pinchtab.com/internal/metrics"
)

// Loader memoizes one pipeline run for the lifetime of the process. The
// first Load triggers the build; concurrent callers block on the same
// in-flight run and share its result. A failed run is cached too: the
// pipeline never silently retries; a new process is required to pick up
// upstream content changes.
type Loader struct {
	cfg    *config.Config
	client *http.Client
	rec    metrics.Recorder

	once   sync.Once
	data   *docmodel.DocsData
	report *Report
	err    error
}

// NewLoader creates a Loader. client and rec may be nil for defaults.
func NewLoader(cfg *config.Config, client *http.Client, rec metrics.Recorder) *Loader {
	return &Loader{cfg: cfg, client: client, rec: rec}
}

// Load returns the memoized docs data, building it on first call.
func (l *Loader) Load(ctx context.Context) (*docmodel.DocsData, error) {
	l.once.Do(func() {
		l.data, l.report, l.err = Build(ctx, l.cfg, l.client, l.rec)
	})
	return l.data, l.err
}

// Report returns the build report of the memoized run, or nil before the
// first Load completes.
func (l *Loader) Report() *Report {
	return l.report
}
