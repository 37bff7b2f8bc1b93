package report

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"time"

	"Acero/internal/auth"
	"Acero/internal/calc/rebar"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	Sessions rebar.Sessions
	Title    string
	// Now stamps the export; time.Now when nil.
	Now func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) build(w http.ResponseWriter, r *http.Request) (Report, bool) {
	sid, ok := auth.SessionID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return Report{}, false
	}
	reg := h.Sessions.Registry(sid)
	snap := reg.Snapshot()
	return Build(snap, rebar.Aggregate(reg.Table(), snap), h.now()), true
}

// XLSX streams the two-sheet workbook as a download.
func (h *Handler) XLSX(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.build(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, rep); err != nil {
		log.Printf("report: %v", err)
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.Filename))
	w.Write(buf.Bytes())
}

func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.build(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := WritePDF(&buf, rep, h.Title); err != nil {
		log.Printf("report: %v", err)
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.PDFName()))
	w.Write(buf.Bytes())
}
