package pages

import (
	"bytes"

	"github.com/dgallion1/papertrim/internal/errs"
	pdflib "github.com/ledongthuc/pdf"
)

// Count returns the number of pages in src. It reads the page tree with a
// different parser than Remove writes with, so callers can use it to check
// a rebuilt document independently.
func Count(src []byte) (int, error) {
	r, err := pdflib.NewReader(bytes.NewReader(src), int64(len(src)))
	if err != nil {
		return 0, errs.MalformedDocument(err)
	}
	return r.NumPage(), nil
}
