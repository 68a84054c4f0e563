package pages

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgallion1/papertrim/internal/errs"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// Keep pdfcpu from creating a config directory under $HOME.
	api.DisableConfigDir()
}

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

// Remove returns a new PDF built from src without the given pages.
//
// pageNumbers refer to the original 1-based numbering and must be strictly
// ascending. Rather than deleting one page at a time and correcting each
// later index for the pages already gone, the request is turned into the set
// of pages to keep and the document is rebuilt from that set, so the result
// always holds the surviving pages in their original order. An empty request
// re-serializes the document unchanged.
func Remove(src []byte, pageNumbers []int) ([]byte, error) {
	pageCount, err := PageCount(src)
	if err != nil {
		return nil, err
	}
	if err := checkRequest(pageNumbers, pageCount); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if len(pageNumbers) == 0 {
		if err := api.Optimize(bytes.NewReader(src), &out, newConfiguration()); err != nil {
			return nil, fmt.Errorf("rewrite pdf: %w", err)
		}
		return out.Bytes(), nil
	}

	keep := keptPages(pageNumbers, pageCount)
	if err := api.Trim(bytes.NewReader(src), &out, keep, newConfiguration()); err != nil {
		return nil, fmt.Errorf("rebuild pdf: %w", err)
	}
	return out.Bytes(), nil
}

// PageCount validates src with the same parser Remove uses and returns its
// page count.
func PageCount(src []byte) (int, error) {
	if len(src) == 0 {
		return 0, errs.MalformedDocument(errors.New("empty input"))
	}
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(src), newConfiguration())
	if err != nil {
		return 0, errs.MalformedDocument(err)
	}
	return ctx.PageCount, nil
}

// checkRequest rejects anything that would make the original numbering
// ambiguous: out-of-range pages, repeats, and descending runs. Every entry is
// range-checked before ordering is looked at.
func checkRequest(pageNumbers []int, pageCount int) error {
	for _, p := range pageNumbers {
		if p < 1 || p > pageCount {
			return errs.PageOutOfRange(p, pageCount)
		}
	}
	for i := 1; i < len(pageNumbers); i++ {
		p, prev := pageNumbers[i], pageNumbers[i-1]
		if p == prev {
			return errs.InvalidRequest("page %d listed more than once", p)
		}
		if p < prev {
			return errs.InvalidRequest("pages must be in ascending order: %d follows %d", p, prev)
		}
	}
	if len(pageNumbers) > 0 && len(pageNumbers) == pageCount {
		return errs.InvalidRequest("cannot remove all %d pages", pageCount)
	}
	return nil
}

// keptPages returns the complement of removed within 1..pageCount as pdfcpu
// page selections.
func keptPages(removed []int, pageCount int) []string {
	drop := make(map[int]bool, len(removed))
	for _, p := range removed {
		drop[p] = true
	}
	keep := make([]string, 0, pageCount-len(removed))
	for p := 1; p <= pageCount; p++ {
		if !drop[p] {
			keep = append(keep, strconv.Itoa(p))
		}
	}
	return keep
}
