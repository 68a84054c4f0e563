package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/papertrim/internal/errs"
	"github.com/dgallion1/papertrim/internal/pages"
	"github.com/dgallion1/papertrim/internal/pipeline"
)

// handlePapers fetches a paper by URL and returns it with the requested pages
// removed. With "forward" set, the trimmed PDF goes to the loader and the
// response is a JSON summary instead of the document.
func (s *Server) handlePapers(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req pipeline.Request
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), errs.KindInvalidRequest, http.StatusBadRequest)
		return
	}

	res, err := s.orchestrator.Run(r.Context(), req)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	if req.Forward {
		writeJSON(w, http.StatusOK, res)
		return
	}
	writePDF(w, pdfInfo{
		name:          res.Name,
		originalPages: res.OriginalPages,
		pages:         res.Pages,
		contentHash:   res.ContentHash,
	}, res.PDF)
}

// handleRemovePages removes pages from an uploaded PDF. The "pages" field is a
// selection like "2,4-6"; leaving it empty re-saves the document unchanged.
func (s *Server) handleRemovePages(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), errs.KindInvalidRequest, http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), errs.KindInvalidRequest, http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(name)), errs.KindInvalidRequest, http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", "", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), errs.KindInvalidRequest, http.StatusRequestEntityTooLarge)
		return
	}

	pageCount, err := pages.PageCount(data)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	toDelete, err := pages.ParseSelection(r.FormValue("pages"), pageCount)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	out, err := pages.Remove(data, toDelete)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	info := pdfInfo{name: name, contentHash: pipeline.ContentHashHex(out)}
	if n, err := pages.Count(data); err == nil {
		info.originalPages = n
	}
	if n, err := pages.Count(out); err == nil {
		info.pages = n
	}
	s.log.Info("pages removed", "file", name, "removed", toDelete, "pages", info.pages)
	writePDF(w, info, out)
}
