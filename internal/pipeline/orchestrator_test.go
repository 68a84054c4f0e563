package pipeline

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/dgallion1/papertrim/internal/errs"
	"github.com/dgallion1/papertrim/internal/pages"
	"github.com/dgallion1/papertrim/internal/pdftest"
)

type stubFetcher struct {
	body  []byte
	err   error
	calls int
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls++
	return f.body, f.err
}

type stubLoader struct {
	readyErr error
	got      []byte
	name     string
}

func (l *stubLoader) Ready() error { return l.readyErr }

func (l *stubLoader) Submit(ctx context.Context, name string, pdf []byte) (map[string]any, error) {
	l.name = name
	l.got = pdf
	return map[string]any{"job_id": "job-7"}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_RejectsNonPDFBeforeFetching(t *testing.T) {
	f := &stubFetcher{body: pdftest.Build(2)}
	o := NewOrchestrator(f, nil, quietLogger())

	_, err := o.Run(context.Background(), Request{PaperURL: "https://arxiv.org/abs/1706.03762", Name: "x"})
	if !errs.Is(err, errs.KindInvalidRequest) {
		t.Fatalf("expected invalid_request, got %v", err)
	}
	if err.Error() != "invalid_request: Not a pdf" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if f.calls != 0 {
		t.Errorf("expected no fetch, got %d calls", f.calls)
	}
}

func TestRun_RemovesRequestedPages(t *testing.T) {
	f := &stubFetcher{body: pdftest.Build(5)}
	o := NewOrchestrator(f, nil, quietLogger())

	res, err := o.Run(context.Background(), Request{
		PaperURL:      "https://example.org/paper.pdf",
		Name:          "paper",
		PagesToDelete: []int{2, 4},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OriginalPages != 5 || res.Pages != 3 {
		t.Fatalf("expected 5 -> 3 pages, got %d -> %d", res.OriginalPages, res.Pages)
	}
	if !reflect.DeepEqual(res.Removed, []int{2, 4}) {
		t.Errorf("expected removed [2 4], got %v", res.Removed)
	}
	want := []string{"Page 1", "Page 3", "Page 5"}
	if got := pdftest.Labels(t, res.PDF); !reflect.DeepEqual(got, want) {
		t.Errorf("expected pages %v, got %v", want, got)
	}
	if res.ContentHash != ContentHashHex(res.PDF) {
		t.Error("content hash does not match output bytes")
	}
}

func TestRun_NoDeletionsReturnsFetchedBytes(t *testing.T) {
	src := pdftest.Build(3)
	o := NewOrchestrator(&stubFetcher{body: src}, nil, quietLogger())

	res, err := o.Run(context.Background(), Request{PaperURL: "https://example.org/a.pdf", Name: "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(res.PDF, src) {
		t.Error("expected fetched bytes to pass through untouched")
	}
	if res.OriginalPages != 3 || res.Pages != 3 {
		t.Errorf("expected 3 pages, got %d -> %d", res.OriginalPages, res.Pages)
	}
	if len(res.Removed) != 0 {
		t.Errorf("expected nothing removed, got %v", res.Removed)
	}
}

func TestRun_FetchErrorPropagates(t *testing.T) {
	f := &stubFetcher{err: errs.Fetch(nil, "get x: status 503")}
	o := NewOrchestrator(f, nil, quietLogger())

	res, err := o.Run(context.Background(), Request{PaperURL: "https://example.org/a.pdf", PagesToDelete: []int{1}})
	if !errs.Is(err, errs.KindFetch) {
		t.Fatalf("expected fetch_error, got %v", err)
	}
	if res != nil {
		t.Error("expected no partial result")
	}
}

func TestRun_MalformedDocument(t *testing.T) {
	f := &stubFetcher{body: []byte("<html>login required</html>")}
	o := NewOrchestrator(f, nil, quietLogger())

	_, err := o.Run(context.Background(), Request{PaperURL: "https://example.org/a.pdf", PagesToDelete: []int{1}})
	if !errs.Is(err, errs.KindMalformedDocument) {
		t.Fatalf("expected malformed_document, got %v", err)
	}
}

func TestRun_NoDeletionsStillRejectsNonPDF(t *testing.T) {
	f := &stubFetcher{body: []byte("<html>login required</html>")}
	o := NewOrchestrator(f, nil, quietLogger())

	res, err := o.Run(context.Background(), Request{PaperURL: "https://example.org/a.pdf", Name: "a"})
	if !errs.Is(err, errs.KindMalformedDocument) {
		t.Fatalf("expected malformed_document, got %v", err)
	}
	if res != nil {
		t.Error("expected no result")
	}
}

func TestRun_BadDeletionList(t *testing.T) {
	o := NewOrchestrator(&stubFetcher{body: pdftest.Build(5)}, nil, quietLogger())
	ctx := context.Background()

	_, err := o.Run(ctx, Request{PaperURL: "https://example.org/a.pdf", PagesToDelete: []int{3, 3}})
	if !errs.Is(err, errs.KindInvalidRequest) {
		t.Errorf("duplicate: expected invalid_request, got %v", err)
	}
	_, err = o.Run(ctx, Request{PaperURL: "https://example.org/a.pdf", PagesToDelete: []int{4, 1}})
	if !errs.Is(err, errs.KindInvalidRequest) {
		t.Errorf("descending: expected invalid_request, got %v", err)
	}
	_, err = o.Run(ctx, Request{PaperURL: "https://example.org/a.pdf", PagesToDelete: []int{6}})
	if !errs.Is(err, errs.KindPageOutOfRange) {
		t.Errorf("beyond end: expected page_out_of_range, got %v", err)
	}
}

func TestRun_ForwardWithoutLoader(t *testing.T) {
	f := &stubFetcher{body: pdftest.Build(2)}
	o := NewOrchestrator(f, nil, quietLogger())

	_, err := o.Run(context.Background(), Request{PaperURL: "https://example.org/a.pdf", Forward: true})
	if !errs.Is(err, errs.KindConfiguration) {
		t.Fatalf("expected configuration_error, got %v", err)
	}
	if f.calls != 0 {
		t.Errorf("expected no fetch, got %d calls", f.calls)
	}
}

func TestRun_ForwardLoaderNotReady(t *testing.T) {
	f := &stubFetcher{body: pdftest.Build(2)}
	l := &stubLoader{readyErr: errs.Configuration("Missing API key")}
	o := NewOrchestrator(f, l, quietLogger())

	_, err := o.Run(context.Background(), Request{PaperURL: "https://example.org/a.pdf", Forward: true})
	if !errs.Is(err, errs.KindConfiguration) {
		t.Fatalf("expected configuration_error, got %v", err)
	}
	if f.calls != 0 || l.got != nil {
		t.Error("expected nothing fetched or submitted")
	}
}

func TestRun_ForwardSubmitsTrimmedPDF(t *testing.T) {
	l := &stubLoader{}
	o := NewOrchestrator(&stubFetcher{body: pdftest.Build(4)}, l, quietLogger())

	res, err := o.Run(context.Background(), Request{
		PaperURL:      "https://example.org/a.pdf",
		Name:          "attention",
		PagesToDelete: []int{4},
		Forward:       true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.name != "attention" {
		t.Errorf("expected name attention, got %q", l.name)
	}
	if !bytes.Equal(l.got, res.PDF) {
		t.Error("expected the loader to receive the trimmed pdf")
	}
	if n, _ := pages.Count(l.got); n != 3 {
		t.Errorf("expected loader copy to have 3 pages, got %d", n)
	}
	if res.Loader["job_id"] != "job-7" {
		t.Errorf("expected loader reply in result, got %v", res.Loader)
	}
}
