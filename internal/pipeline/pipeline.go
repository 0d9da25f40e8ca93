// Package pipeline assembles the docs ingestion run: manifest fetch, per-page
// resolution and rendering, and final section assembly. The run executes as a
// fixed sequence of named stages with per-stage timing; any stage error is
// fatal to the whole run; there is no partial-success mode.
package pipeline

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pinchtab/pinchtab.com/internal/apiref"
	"github.com/pinchtab/pinchtab.com/internal/config"
	"github.com/pinchtab/pinchtab.com/internal/docerr"
	"github.com/pinchtab/pinchtab.com/internal/docmodel"
	"github.com/pinchtab/pinchtab.com/internal/htmlproc"
	"github.com/pinchtab/pinchtab.com/internal/logfields"
	"github.com/pinchtab/pinchtab.com/internal/manifest"
	"github.com/pinchtab/pinchtab.com/internal/markdown"
	"github.com/pinchtab/pinchtab.com/internal/metrics"
	"github.com/pinchtab/pinchtab.com/internal/resolver"
	"github.com/pinchtab/pinchtab.com/internal/slug"
)

// Stage is a discrete unit of work in the pipeline run.
type Stage func(ctx context.Context, bs *buildState) error

// Canonical stage names.
const (
	StageFetchManifest = "fetch_manifest"
	StageBuildPages    = "build_pages"
	StageAssemble      = "assemble"
)

type stageDef struct {
	name string
	fn   Stage
}

func stages() []stageDef {
	return []stageDef{
		{StageFetchManifest, stageFetchManifest},
		{StageBuildPages, stageBuildPages},
		{StageAssemble, stageAssemble},
	}
}

// buildState carries mutable state across stages.
type buildState struct {
	cfg    *config.Config
	client *http.Client
	rec    metrics.Recorder
	report *Report

	manifest *manifest.Config
	skip     map[string]struct{}

	// registry maps normalized source path to its already-built page so
	// repeated references across sections reuse one render.
	registry map[string]*docmodel.Page
	slugs    *slug.Deduper

	sections []docmodel.ManifestSection
	pages    []*docmodel.Page
	data     *docmodel.DocsData
}

// Build runs the whole pipeline once. Fetches are issued sequentially in
// manifest order so later documents can be satisfied by the dedup registry
// populated by earlier ones.
func Build(ctx context.Context, cfg *config.Config, client *http.Client, rec metrics.Recorder) (*docmodel.DocsData, *Report, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	bs := &buildState{
		cfg:      cfg,
		client:   client,
		rec:      rec,
		report:   newReport(),
		skip:     skipSet(cfg.Content.Skip),
		registry: make(map[string]*docmodel.Page),
		slugs:    slug.NewDeduper(),
	}

	start := time.Now()
	for _, st := range stages() {
		select {
		case <-ctx.Done():
			return nil, bs.fail(ctx.Err()), ctx.Err()
		default:
		}
		t0 := time.Now()
		err := st.fn(ctx, bs)
		d := time.Since(t0)
		bs.report.StageDurationsMS[st.name] = d.Milliseconds()
		rec.ObserveStageDuration(st.name, d)
		slog.Debug("stage finished",
			logfields.BuildID(bs.report.ID),
			logfields.Stage(st.name),
			logfields.DurationMS(float64(d.Milliseconds())))
		if err != nil {
			return nil, bs.fail(err), err
		}
	}

	total := time.Since(start)
	rec.ObserveBuildDuration(total)
	rec.SetPagesBuilt(len(bs.pages))
	rec.SetSectionsBuilt(len(bs.sections))
	rec.IncBuildOutcome("success")

	bs.report.DurationMS = total.Milliseconds()
	bs.report.Pages = len(bs.pages)
	bs.report.Sections = len(bs.sections)
	bs.report.Outcome = "success"
	return bs.data, bs.report, nil
}

func (bs *buildState) fail(err error) *Report {
	bs.report.Outcome = "failed"
	bs.report.Error = err.Error()
	bs.rec.IncBuildOutcome("failed")
	return bs.report
}

func stageFetchManifest(ctx context.Context, bs *buildState) error {
	m, err := manifest.Fetch(ctx, bs.client, bs.cfg.ManifestURL())
	if err != nil {
		return err
	}
	bs.manifest = m
	slog.Info("docs manifest loaded",
		logfields.URL(m.URL),
		logfields.Sections(len(m.Sections)))
	return nil
}

func stageBuildPages(ctx context.Context, bs *buildState) error {
	for _, sec := range bs.manifest.Sections {
		label := SectionLabel(sec.ID)
		var items []docmodel.ManifestItem
		for _, src := range sec.Sources {
			if bs.skipped(src) {
				bs.report.Skipped = append(bs.report.Skipped, src)
				slog.Info("source skipped", logfields.Section(sec.ID), logfields.Path(src))
				continue
			}
			key, err := registryKey(src)
			if err != nil {
				return err
			}
			page, ok := bs.registry[key]
			if !ok {
				page, err = bs.buildPage(ctx, sec.ID, label, src)
				if err != nil {
					return err
				}
				bs.registry[key] = page
				bs.pages = append(bs.pages, page)
			}
			items = append(items, page.ManifestItem)
		}
		// Sections resolving to zero items are omitted; pages fetched for
		// them stay in the registry for later references.
		if len(items) > 0 {
			bs.sections = append(bs.sections, docmodel.ManifestSection{
				ID:    sec.ID,
				Label: label,
				Items: items,
			})
		}
	}
	return nil
}

func stageAssemble(_ context.Context, bs *buildState) error {
	if len(bs.pages) == 0 {
		return &docerr.EmptyResultError{ManifestURL: bs.manifest.URL}
	}
	firstSlug := ""
	if len(bs.sections) > 0 && len(bs.sections[0].Items) > 0 {
		firstSlug = bs.sections[0].Items[0].Slug
	}
	bs.data = &docmodel.DocsData{
		Name:        bs.cfg.Site.Name,
		Branch:      bs.cfg.Content.Branch,
		DocsJSONURL: bs.manifest.URL,
		Sections:    bs.sections,
		Pages:       bs.pages,
		FirstSlug:   firstSlug,
	}
	return nil
}

// buildPage fetches, normalizes, renders, and post-processes one source
// document.
func (bs *buildState) buildPage(ctx context.Context, sectionID, sectionLabel, src string) (*docmodel.Page, error) {
	t0 := time.Now()
	res, err := resolver.Fetch(ctx, bs.client, src, bs.manifest.BaseURLs)
	bs.rec.ObserveFetchDuration(time.Since(t0), err == nil)
	if err != nil {
		return nil, err
	}

	content := res.Body
	if apiref.IsReference(src) {
		content, err = apiref.Synthesize(src, []byte(res.Body))
		if err != nil {
			return nil, err
		}
	}

	rendered, headings, err := markdown.Render(content)
	if err != nil {
		return nil, err
	}
	processed, err := htmlproc.Process(rendered, htmlproc.Context{SourceURL: res.URL})
	if err != nil {
		return nil, err
	}

	page := &docmodel.Page{
		ManifestItem: docmodel.ManifestItem{
			Slug:       bs.slugs.Claim(PageSlug(src)),
			Title:      markdown.Title(content, src),
			SourcePath: src,
		},
		SectionID:    sectionID,
		SectionLabel: sectionLabel,
		Content:      content,
		HTML:         processed,
		Headings:     headings,
		SourceURL:    res.URL,
	}
	slog.Debug("page built",
		logfields.Section(sectionID),
		logfields.Slug(page.Slug),
		logfields.URL(res.URL))
	return page, nil
}

// registryKey canonicalizes a source path for dedup purposes. Absolute URLs
// are their own key.
func registryKey(src string) (string, error) {
	if resolver.IsAbsolute(src) {
		return src, nil
	}
	return resolver.Normalize(src)
}

func skipSet(paths []string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if n, err := resolver.Normalize(p); err == nil {
			set[strings.ToLower(n)] = struct{}{}
		}
	}
	return set
}

func (bs *buildState) skipped(src string) bool {
	key := src
	if n, err := resolver.Normalize(src); err == nil {
		key = n
	}
	_, ok := bs.skip[strings.ToLower(key)]
	return ok
}
