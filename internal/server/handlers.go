package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/conneroisu/webbuilder/internal/canvas"
	"github.com/conneroisu/webbuilder/internal/catalog"
	"github.com/conneroisu/webbuilder/internal/errors"
	"github.com/conneroisu/webbuilder/internal/export"
	"github.com/conneroisu/webbuilder/internal/site"
	"github.com/conneroisu/webbuilder/internal/version"
)

const maxBodySize = 1 << 20

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// PagesResponse is the body of GET /api/pages.
type PagesResponse struct {
	Pages        []site.Page `json:"pages"`
	ActivePageID string      `json:"activePageId"`
}

// ElementsResponse carries a page's element list and its history flags.
type ElementsResponse struct {
	PageID   string      `json:"pageId"`
	Elements canvas.List `json:"elements"`
	CanUndo  bool        `json:"canUndo"`
	CanRedo  bool        `json:"canRedo"`
}

type addPageRequest struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type addElementRequest struct {
	TemplateID string `json:"templateId"`
}

func (s *PreviewServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	name := s.workspace.Name()
	pages := len(s.workspace.Pages())
	dirty := s.dirty
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": s.now().UTC(),
		"version":   version.GetBuildInfo().Short(),
		"project":   name,
		"pages":     pages,
		"unsaved":   dirty,
		"clients":   s.ClientCount(),
	})
}

func (s *PreviewServer) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.catalog()
	q := r.URL.Query()

	var templates []catalog.Template
	switch {
	case q.Get("q") != "":
		templates = cat.Search(q.Get("q"))
	case q.Get("category") != "":
		templates = cat.FilterByCategory(q.Get("category"))
	default:
		templates = cat.All()
	}
	if templates == nil {
		templates = []catalog.Template{}
	}

	writeJSON(w, http.StatusOK, templates)
}

func (s *PreviewServer) handlePages(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := PagesResponse{Pages: s.workspace.Pages(), ActivePageID: s.workspace.ActivePage().ID}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *PreviewServer) handleAddPage(w http.ResponseWriter, r *http.Request) {
	var req addPageRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	page, err := s.workspace.AddPage(r.Context(), req.Name, req.Path)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, page)
}

func (s *PreviewServer) handleElements(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp, err := s.elementsResponse(r.PathValue("id"))
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *PreviewServer) handleAddElement(w http.ResponseWriter, r *http.Request) {
	var req addElementRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	el, err := s.workspace.AddElement(r.Context(), r.PathValue("id"), req.TemplateID)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, el)
}

func (s *PreviewServer) handleUpdateElement(w http.ResponseWriter, r *http.Request) {
	var patch canvas.Patch
	if !s.decode(w, r, &patch) {
		return
	}

	s.mu.Lock()
	el, err := s.workspace.UpdateElement(r.Context(), pageParam(r), r.PathValue("id"), patch)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, el)
}

func (s *PreviewServer) handleDeleteElement(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.workspace.DeleteElement(r.Context(), pageParam(r), r.PathValue("id"))
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *PreviewServer) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.travel(w, r, true)
}

func (s *PreviewServer) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.travel(w, r, false)
}

func (s *PreviewServer) travel(w http.ResponseWriter, r *http.Request, back bool) {
	pageID := pageParam(r)

	s.mu.Lock()
	var err error
	if back {
		_, err = s.workspace.Undo(r.Context(), pageID)
	} else {
		_, err = s.workspace.Redo(r.Context(), pageID)
	}
	var resp ElementsResponse
	if err == nil {
		resp, err = s.elementsResponse(pageID)
	}
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleExport serves one artifact of the page given by ?page= (default the
// active page). ?download=1 adds an attachment disposition.
func (s *PreviewServer) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")

	s.mu.Lock()
	name := s.workspace.Name()
	elements, err := s.workspace.Elements(pageParam(r))
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var body []byte
	var contentType string
	switch format {
	case "html":
		body = []byte(export.Document(elements, name, s.catalog()))
		contentType = "text/html; charset=utf-8"
	case "css":
		body = []byte(export.Stylesheet(elements))
		contentType = "text/css; charset=utf-8"
	case "json":
		body, err = export.ProjectJSON(elements, name, s.now())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		contentType = "application/json"
	default:
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error: fmt.Sprintf("unknown export format %q (want html, css or json)", format),
		})
		return
	}

	w.Header().Set("Content-Type", contentType)
	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="%s.%s"`, export.FileStem(name), format))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *PreviewServer) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "saving is not configured"})
		return
	}
	if err := s.Save(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "project": s.projectName()})
}

// elementsResponse must be called with mu held.
func (s *PreviewServer) elementsResponse(pageID string) (ElementsResponse, error) {
	if pageID == "" {
		pageID = s.workspace.ActivePage().ID
	}
	elements, err := s.workspace.Elements(pageID)
	if err != nil {
		return ElementsResponse{}, err
	}

	return ElementsResponse{
		PageID:   pageID,
		Elements: elements,
		CanUndo:  s.workspace.CanUndo(pageID),
		CanRedo:  s.workspace.CanRedo(pageID),
	}, nil
}

func (s *PreviewServer) catalog() *catalog.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.workspace.Catalog()
}

// decode reads a JSON body into v, answering 400 itself on failure.
func (s *PreviewServer) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && err != io.EOF {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}

	return true
}

func (s *PreviewServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Error: err.Error()}
	if be, ok := errors.AsBuilderError(err); ok {
		resp.Error = be.Message
		resp.Code = be.Code
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), err, "request failed", "path", r.URL.Path)
	}

	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	switch errors.GetType(err) {
	case errors.ErrorTypeValidation:
		return http.StatusBadRequest
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound
	case errors.ErrorTypeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func pageParam(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("page"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}
