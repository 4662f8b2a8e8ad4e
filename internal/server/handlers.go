package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/alnah/go-cvbuilder"
	"github.com/alnah/go-cvbuilder/internal/format"
	"github.com/alnah/go-cvbuilder/internal/layout"
	"github.com/alnah/go-cvbuilder/internal/state"
)

// Response headers set by the export endpoint.
const (
	HeaderExportID       = "X-Export-ID"
	HeaderExportKind     = "X-Export-Kind"
	HeaderExportEngine   = "X-Export-Engine"
	HeaderExportFallback = "X-Export-Fallback"
	HeaderDraftRevision  = "X-Draft-Revision"
)

// reloadScript polls the preview and reloads when its ETag changes.
const reloadScript = `(function () {
  var tag = null;
  setInterval(function () {
    var headers = tag ? {"If-None-Match": tag} : {};
    fetch(location.pathname, {headers: headers, cache: "no-store"}).then(function (r) {
      var next = r.headers.get("ETag");
      if (tag && r.status === 200 && next !== tag) { location.reload(); }
      tag = next || tag;
    }).catch(function () {});
  }, 1000);
})();`

// jsonError writes a JSON error response with the given status code.
func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// jsonOK writes a JSON response with status 200.
func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps library errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, cvbuilder.ErrTemplateNotFound),
		errors.Is(err, cvbuilder.ErrUnknownFormat),
		errors.Is(err, cvbuilder.ErrUnknownExportKind):
		return http.StatusBadRequest
	case errors.Is(err, cvbuilder.ErrEmptyPreview):
		return http.StatusUnprocessableEntity
	case errors.Is(err, cvbuilder.ErrExportInProgress):
		return http.StatusConflict
	case errors.Is(err, cvbuilder.ErrPopupBlocked):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body exceeds %d bytes", MaxBodySize)
		}
		return errors.New("invalid JSON body")
	}
	return nil
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]string{"status": "ok"})
}

// handlePreview handles GET /: the draft rendered as a page that reloads
// itself when the draft changes.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	page, err := s.builder.Render(r.Context(), s.store.Snapshot().Document())
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	writeHTML(w, r, layout.InjectScript(page, reloadScript))
}

// templatesResponse lists the available layouts.
type templatesResponse struct {
	Templates []string `json:"templates"`
	Default   string   `json:"default"`
	Formats   []string `json:"formats"`
}

// handleTemplates handles GET /api/templates.
func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	keys, err := s.builder.Templates()
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	modes := format.Modes()
	formats := make([]string, len(modes))
	for i, m := range modes {
		formats[i] = string(m)
	}
	jsonOK(w, templatesResponse{Templates: keys, Default: cvbuilder.DefaultTemplate, Formats: formats})
}

// handleRender handles POST /api/render: a JSON Document in, HTML out.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var doc cvbuilder.Document
	if err := decodeJSON(w, r, &doc); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := s.builder.Render(r.Context(), doc)
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	writeHTML(w, r, page)
}

// writeDraft writes the current draft with its revision.
func (s *Server) writeDraft(w http.ResponseWriter, st state.State) {
	w.Header().Set(HeaderDraftRevision, fmt.Sprint(st.Revision))
	jsonOK(w, state.NewDraft(st))
}

// handleGetDraft handles GET /api/draft.
func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	s.writeDraft(w, s.store.Snapshot())
}

// handlePutDraft handles PUT /api/draft. Unlike loading a draft file, an
// unknown format or template is rejected.
func (s *Server) handlePutDraft(w http.ResponseWriter, r *http.Request) {
	var d state.Draft
	if err := decodeJSON(w, r, &d); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := format.ParseMode(d.Format); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if d.Template != "" && !s.builder.HasTemplate(d.Template) {
		jsonError(w, fmt.Sprintf("%v: %q", cvbuilder.ErrTemplateNotFound, d.Template), http.StatusBadRequest)
		return
	}

	st, err := s.store.Dispatch(state.Load{State: d.State()})
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeDraft(w, st)
}

// handleDeleteDraft handles DELETE /api/draft: clears every field.
func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.Dispatch(state.Reset{})
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeDraft(w, st)
}

// handleExport handles POST /api/export/{kind}. The body is an optional
// JSON Document; without one the draft is exported. Only one export runs
// at a time.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	kind, err := cvbuilder.ParseExportKind(chi.URLParam(r, "kind"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := s.exportDocument(w, r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := s.store.Dispatch(state.ExportStarted{}); err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	defer func() { _, _ = s.store.Dispatch(state.ExportFinished{}) }()

	id := uuid.NewString()
	logger := s.logger.With("export", id, "kind", kind)
	logger.Info("export started")

	res, err := s.builder.Export(r.Context(), doc, kind)
	if err != nil {
		logger.Warn("export failed", "error", err)
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	if res.FellBack {
		logger.Warn("PDF export fell back to print", "cause", res.Cause)
	}
	logger.Info("export finished", "result", res.Kind, "bytes", len(res.Data))

	h := w.Header()
	h.Set(HeaderExportID, id)
	h.Set(HeaderExportKind, string(res.Kind))
	if res.Engine != "" {
		h.Set(HeaderExportEngine, res.Engine)
	}
	if res.FellBack {
		h.Set(HeaderExportFallback, "print")
	}
	h.Set("Content-Type", res.Kind.ContentType())
	h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, FileStem(doc.Name), res.Kind.Ext()))
	_, _ = w.Write(res.Data)
}

// exportDocument returns the request's Document, or the draft when the
// body is empty.
func (s *Server) exportDocument(w http.ResponseWriter, r *http.Request) (cvbuilder.Document, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return cvbuilder.Document{}, fmt.Errorf("reading body: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return s.store.Snapshot().Document(), nil
	}

	var doc cvbuilder.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return cvbuilder.Document{}, errors.New("invalid JSON body")
	}
	return doc, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// FileStem derives a download file name from a CV owner's name:
// "Jane Doe" becomes "jane-doe-cv". An empty name yields "cv".
func FileStem(name string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		return "cv"
	}
	return slug + "-cv"
}
