package web

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/fastaframes/internal/core"
	"github.com/JonMunkholm/fastaframes/internal/metrics"
	"github.com/JonMunkholm/fastaframes/internal/tableio"
	"github.com/JonMunkholm/fastaframes/internal/web/templates"
)

// multipartMemory is how much of a multipart upload is held in memory
// before spilling to temporary files.
const multipartMemory = 32 << 20

const fastaContentType = "text/x-fasta; charset=utf-8"

// tableResponse is the JSON body of a conversion to table. It decodes as
// a tableio JSON table, so it can be posted back to /api/fasta.
type tableResponse struct {
	Columns  []string       `json:"columns"`
	Rows     []core.Row     `json:"rows"`
	Warnings []core.Warning `json:"warnings"`
}

type columnInfo struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Canonical bool   `json:"canonical"`
}

type batchResponse struct {
	ID       string         `json:"id"`
	Records  int            `json:"records"`
	Warnings []core.Warning `json:"warnings"`
}

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Index(core.AllColumns(), s.cfg.Fasta.MaxUploadSize).Render(r.Context(), w); err != nil {
		respondError(w, r, err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status": "ok",
		"store":  s.store != nil,
	})
}

// handleColumns lists the recognized columns and their types.
func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	cols := make([]columnInfo, 0, len(core.Columns)+len(core.ExtraColumns))
	for _, c := range core.Columns {
		cols = append(cols, columnInfo{Name: c.Name, Type: c.Type.String(), Canonical: true})
	}
	for _, c := range core.ExtraColumns {
		cols = append(cols, columnInfo{Name: c.Name, Type: c.Type.String()})
	}
	writeJSON(w, r, http.StatusOK, cols)
}

// handleToTable converts an uploaded FASTA file to a table.
// Query: format=json|csv|tsv (default json), protein_id=true.
func (s *Server) handleToTable(w http.ResponseWriter, r *http.Request) {
	format, err := queryFormat(r, tableio.FormatJSON)
	if err != nil {
		respondError(w, r, err)
		return
	}

	entries, warnings, err := s.readFasta(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if queryBool(r, "protein_id") {
		entries = core.WithProteinIDs(entries)
	}

	t := core.EntriesToTable(entries)
	w.Header().Set("X-Fasta-Records", strconv.Itoa(t.Len()))
	w.Header().Set("X-Fasta-Warnings", strconv.Itoa(len(warnings)))

	if format == tableio.FormatJSON {
		writeJSON(w, r, http.StatusOK, tableResponse{
			Columns:  t.Columns,
			Rows:     nonNil(t.Rows),
			Warnings: nonNil(warnings),
		})
		return
	}
	s.writeTable(w, r, t, format)
}

// handleToFasta converts a posted table to FASTA. The table format comes
// from ?format or the Content-Type, defaulting to CSV. ?width overrides
// the wrap width.
func (s *Server) handleToFasta(w http.ResponseWriter, r *http.Request) {
	format, ok := tableio.FormatFromContentType(r.Header.Get("Content-Type"))
	if !ok {
		format = tableio.FormatCSV
	}
	format, err := queryFormat(r, format)
	if err != nil {
		respondError(w, r, err)
		return
	}
	width, err := queryWidth(r, s.service.WrapWidth())
	if err != nil {
		respondError(w, r, err)
		return
	}

	start := time.Now()
	t, err := tableio.Read(r.Body, format)
	if err != nil {
		s.observe(metrics.ToText, 0, start, err)
		respondError(w, r, err)
		return
	}
	s.respondFasta(w, r, core.TableToEntries(t), width, start)
}

// handlePreview renders an uploaded FASTA file as an HTML table.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	entries, warnings, err := s.readFasta(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Preview(core.EntriesToTable(entries), warnings).Render(r.Context(), w); err != nil {
		respondError(w, r, err)
	}
}

// ---- Batch handlers

func (s *Server) handleSaveBatch(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}

	entries, warnings, err := s.readFasta(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if queryBool(r, "protein_id") {
		entries = core.WithProteinIDs(entries)
	}

	id, err := s.store.SaveEntries(r.Context(), entries)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/batches/"+id+"/table")
	writeJSON(w, r, http.StatusCreated, batchResponse{
		ID:       id,
		Records:  len(entries),
		Warnings: nonNil(warnings),
	})
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}

	batches, err := s.store.ListBatches(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"batches": nonNil(batches)})
}

func (s *Server) handleBatchFasta(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	width, err := queryWidth(r, s.service.WrapWidth())
	if err != nil {
		respondError(w, r, err)
		return
	}

	start := time.Now()
	entries, err := s.store.LoadEntries(r.Context(), chi.URLParam(r, "batchID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.respondFasta(w, r, entries, width, start)
}

func (s *Server) handleBatchTable(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	format, err := queryFormat(r, tableio.FormatJSON)
	if err != nil {
		respondError(w, r, err)
		return
	}

	entries, err := s.store.LoadEntries(r.Context(), chi.URLParam(r, "batchID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.writeTable(w, r, core.EntriesToTable(entries), format)
}

func (s *Server) handleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}

	if err := s.store.DeleteBatch(r.Context(), chi.URLParam(r, "batchID")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- Helpers

func (s *Server) requireStore(w http.ResponseWriter, r *http.Request) bool {
	if s.store == nil {
		respondError(w, r, core.ErrStoreUnavailable)
		return false
	}
	return true
}

// readFasta parses the request's FASTA, taken from the multipart "file"
// field or the raw body.
func (s *Server) readFasta(r *http.Request) ([]core.Entry, []core.Warning, error) {
	in, done, err := fastaInput(r)
	if err != nil {
		return nil, nil, err
	}
	defer done()

	start := time.Now()
	entries, warnings, err := s.service.ReadEntries(r.Context(), in)
	s.observe(metrics.ToTable, len(entries), start, err)
	return entries, warnings, err
}

func fastaInput(r *http.Request) (io.Reader, func(), error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.Body, func() {}, nil
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			return nil, nil, err
		}
		return nil, nil, badRequest("invalid multipart form")
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, badRequest("no file provided")
	}
	return file, func() { file.Close() }, nil
}

// respondFasta renders entries into a buffer first so a failure can still
// be reported with an error status.
func (s *Server) respondFasta(w http.ResponseWriter, r *http.Request, entries []core.Entry, width int, start time.Time) {
	svc := s.service
	if width != svc.WrapWidth() {
		svc = core.NewService(core.WithWrapWidth(width))
	}

	var buf bytes.Buffer
	err := svc.WriteText(r.Context(), &buf, entries)
	s.observe(metrics.ToText, len(entries), start, err)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", fastaContentType)
	w.Header().Set("X-Fasta-Records", strconv.Itoa(len(entries)))
	if _, err := buf.WriteTo(w); err != nil {
		s.logWriteError(r, err)
	}
}

func (s *Server) writeTable(w http.ResponseWriter, r *http.Request, t *core.Table, format tableio.Format) {
	var buf bytes.Buffer
	if err := tableio.Write(&buf, t, format); err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	if _, err := buf.WriteTo(w); err != nil {
		s.logWriteError(r, err)
	}
}

func (s *Server) observe(direction string, records int, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveConversion(direction, records, time.Since(start).Seconds(), err)
}

func (s *Server) logWriteError(r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	respondLog(r).Warn("write response", "error", err)
}

func queryFormat(r *http.Request, def tableio.Format) (tableio.Format, error) {
	name := r.URL.Query().Get("format")
	if name == "" {
		return def, nil
	}
	return tableio.ParseFormat(name)
}

// queryWidth reads ?width; 0 disables wrapping.
func queryWidth(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("width")
	if raw == "" {
		return def, nil
	}
	width, err := strconv.Atoi(raw)
	if err != nil || width < 0 {
		return 0, badRequest("width must be a non-negative integer")
	}
	return width, nil
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
