package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dgallion1/papertrim/internal/errs"
	"github.com/dgallion1/papertrim/internal/handoff"
)

func jsonError(w http.ResponseWriter, msg string, kind errs.Kind, code int) {
	body := map[string]string{"error": msg}
	if kind != "" {
		body["kind"] = string(kind)
	}
	writeJSON(w, code, body)
}

// writeErr responds with the status that matches err's kind. Uncategorized
// errors are reported without their details.
func (s *Server) writeErr(w http.ResponseWriter, err error) {
	code := errs.HTTPStatus(err)
	kind := errs.KindOf(err)
	if kind == "" {
		s.log.Error("internal error", "error", err)
		jsonError(w, "internal error", "", code)
		return
	}
	jsonError(w, err.Error(), kind, code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

type pdfInfo struct {
	name          string
	originalPages int
	pages         int
	contentHash   string
}

func writePDF(w http.ResponseWriter, info pdfInfo, data []byte) {
	h := w.Header()
	h.Set("Content-Type", "application/pdf")
	h.Set("Content-Length", strconv.Itoa(len(data)))
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", handoff.Filename(info.name)))
	h.Set("X-Original-Page-Count", strconv.Itoa(info.originalPages))
	h.Set("X-Page-Count", strconv.Itoa(info.pages))
	h.Set("X-Content-Hash", info.contentHash)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
