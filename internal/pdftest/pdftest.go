// Package pdftest builds small, valid PDFs for tests. Each page carries the
// text "Page N" so tests can tell pages apart after they have been rearranged.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	pdflib "github.com/ledongthuc/pdf"
)

// Build returns an uncompressed PDF with n Letter-size pages.
func Build(n int) []byte {
	var buf bytes.Buffer
	var offsets []int

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	// Objects 1-3 are fixed; each page then takes a page object and a content stream.
	kids := make([]string, n)
	for i := 0; i < n; i++ {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i := 0; i < n; i++ {
		content := fmt.Sprintf("BT /F1 24 Tf 72 720 Td (Page %d) Tj ET", i+1)
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// Labels returns the "Page N" label found on each page of b, in page order.
func Labels(t testing.TB, b []byte) []string {
	t.Helper()
	r, err := pdflib.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		t.Fatalf("open pdf: %v", err)
	}
	labels := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		var sb strings.Builder
		for _, txt := range r.Page(i).Content().Text {
			sb.WriteString(txt.S)
		}
		labels = append(labels, strings.TrimSpace(sb.String()))
	}
	return labels
}
