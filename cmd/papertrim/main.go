// Command papertrim fetches one PDF, removes pages from it and writes the
// result to a file, or forwards it to the configured loader.
//
//	papertrim -url https://arxiv.org/pdf/1706.03762.pdf -name attention -delete 2,4 -out attention.pdf
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dgallion1/papertrim/internal/config"
	"github.com/dgallion1/papertrim/internal/errs"
	"github.com/dgallion1/papertrim/internal/fetch"
	"github.com/dgallion1/papertrim/internal/handoff"
	"github.com/dgallion1/papertrim/internal/pages"
	"github.com/dgallion1/papertrim/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	var (
		paperURL = flag.String("url", "", "URL of the paper; must end in pdf")
		name     = flag.String("name", "", "document name, used for the output and loader filename")
		deleteIn = flag.String("delete", "", `pages to remove in original numbering, e.g. "2,4-6"`)
		out      = flag.String("out", "", "output file (default <name>.pdf)")
		forward  = flag.Bool("forward", false, "send the result to LOADER_URL instead of writing a file")
	)
	flag.Parse()

	// A missing .env is normal outside local development.
	envErr := godotenv.Load()

	cfg := config.Load()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	if envErr != nil {
		log.Debug("no .env loaded", "error", envErr)
	}

	toDelete, err := pages.ParseSelection(*deleteIn, 0)
	if err != nil {
		fail(log, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fetcher := fetch.NewClient(cfg.FetchTimeout, cfg.MaxDownloadBytes, nil)
	defer fetcher.Close()
	loader := handoff.NewClient(cfg.LoaderURL, cfg.LoaderAPIKey, cfg.LoaderTimeout)
	defer loader.Close()

	orch := pipeline.NewOrchestrator(fetcher, loader, log)
	res, err := orch.Run(ctx, pipeline.Request{
		PaperURL:      *paperURL,
		Name:          *name,
		PagesToDelete: toDelete,
		Forward:       *forward,
	})
	if err != nil {
		fail(log, err)
	}

	if *forward {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(res)
		return
	}

	path := *out
	if path == "" {
		path = handoff.Filename(*name)
	}
	if err := os.WriteFile(path, res.PDF, 0o644); err != nil {
		fail(log, fmt.Errorf("write %s: %w", path, err))
	}
	log.Info("wrote pdf", "path", path, "pages", res.Pages, "bytes", len(res.PDF))
}

func fail(log *slog.Logger, err error) {
	log.Error("papertrim failed", "kind", errs.KindOf(err), "error", err)
	os.Exit(1)
}
