package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/papertrim/internal/errs"
	"github.com/dgallion1/papertrim/internal/pages"
)

// Fetcher retrieves the raw bytes behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Loader receives finished documents. Ready reports whether it is configured
// well enough to accept one, without making a call.
type Loader interface {
	Ready() error
	Submit(ctx context.Context, name string, pdf []byte) (map[string]any, error)
}

// Request describes one paper to process.
type Request struct {
	PaperURL      string `json:"paperUrl"`
	Name          string `json:"name"`
	PagesToDelete []int  `json:"pagesToDelete,omitempty"`
	Forward       bool   `json:"forward,omitempty"`
}

// Result is the processed paper. PDF is always the complete output; there is
// no partial result.
type Result struct {
	Name          string         `json:"name"`
	PDF           []byte         `json:"-"`
	OriginalPages int            `json:"original_pages"`
	Pages         int            `json:"pages"`
	Removed       []int          `json:"removed"`
	ContentHash   string         `json:"content_hash"`
	Loader        map[string]any `json:"loader,omitempty"`
}

// Orchestrator runs fetch, page removal and the optional loader hand-off in
// sequence. The first failing step aborts the run.
type Orchestrator struct {
	fetcher Fetcher
	loader  Loader
	log     *slog.Logger
}

// NewOrchestrator wires the pipeline. loader may be nil, in which case any
// request that asks to forward fails with a configuration error.
func NewOrchestrator(fetcher Fetcher, loader Loader, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		fetcher: fetcher,
		loader:  loader,
		log:     log,
	}
}

// Run processes req. The URL suffix and loader configuration are checked
// before any network call.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	log := o.log.With("name", req.Name, "url", req.PaperURL)
	start := time.Now()

	if !strings.HasSuffix(req.PaperURL, "pdf") {
		return nil, errs.InvalidRequest("Not a pdf")
	}
	if req.Forward {
		if o.loader == nil {
			return nil, errs.Configuration("Missing API key")
		}
		if err := o.loader.Ready(); err != nil {
			return nil, err
		}
	}

	src, err := o.fetcher.Fetch(ctx, req.PaperURL)
	if err != nil {
		log.Error("fetch failed", "error", err)
		return nil, err
	}
	log.Debug("fetched", "bytes", len(src))

	res := &Result{
		Name:    req.Name,
		PDF:     src,
		Removed: []int{},
	}

	if len(req.PagesToDelete) > 0 {
		out, err := pages.Remove(src, req.PagesToDelete)
		if err != nil {
			log.Warn("page removal failed", "pages", req.PagesToDelete, "error", err)
			return nil, err
		}
		res.PDF = out
		res.Removed = append(res.Removed, req.PagesToDelete...)
	}

	if err := o.countPages(log, src, res); err != nil {
		return nil, err
	}
	res.ContentHash = ContentHashHex(res.PDF)

	if req.Forward {
		reply, err := o.loader.Submit(ctx, req.Name, res.PDF)
		if err != nil {
			log.Error("hand-off failed", "error", err)
			return nil, err
		}
		res.Loader = reply
	}

	log.Info("paper processed",
		"original_pages", res.OriginalPages,
		"pages", res.Pages,
		"removed", len(res.Removed),
		"forwarded", req.Forward,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// countPages fills in page counts with a reader independent of the one that
// rebuilt the document and checks that exactly the requested pages are gone.
// Untouched bytes that reader cannot open are validated with the rebuilding
// parser instead, so a non-PDF never passes through.
func (o *Orchestrator) countPages(log *slog.Logger, src []byte, res *Result) error {
	before, err := pages.Count(src)
	if err != nil {
		if len(res.Removed) > 0 {
			log.Warn("page count unavailable", "error", err)
			return nil
		}
		n, verr := pages.PageCount(src)
		if verr != nil {
			return verr
		}
		res.OriginalPages = n
		res.Pages = n
		return nil
	}
	after := before
	if len(res.Removed) > 0 {
		after, err = pages.Count(res.PDF)
		if err != nil {
			log.Warn("page count unavailable for output", "error", err)
			return nil
		}
	}
	if after != before-len(res.Removed) {
		return fmt.Errorf("page count mismatch: %d pages, removed %d, got %d", before, len(res.Removed), after)
	}
	res.OriginalPages = before
	res.Pages = after
	return nil
}
