package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/orgtree/internal/buffer"
	"github.com/dgallion1/orgtree/internal/importer"
	"github.com/dgallion1/orgtree/internal/outline"
	"github.com/dgallion1/orgtree/internal/parser"
	"github.com/dgallion1/orgtree/internal/session"
	"github.com/go-chi/chi/v5"
)

type documentRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type documentResponse struct {
	session.Snapshot
	Text   string            `json:"text"`
	Cursor outline.Position `json:"cursor"`
}

// handleCreateDocument opens a session from JSON text or an uploaded file.
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var title, filename, text string
	if mediaType == "multipart/form-data" {
		var status int
		var err error
		title, filename, text, status, err = s.importUpload(r)
		if err != nil {
			jsonError(w, err.Error(), status)
			return
		}
	} else {
		var req documentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if int64(len(req.Text)) > s.cfg.MaxUploadBytes {
			jsonError(w, fmt.Sprintf("text exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		title, text = req.Title, req.Text
	}

	sess := s.store.Create(title, filename, text)
	s.log.Info("document opened", "doc_id", sess.ID, "filename", filename)
	writeJSON(w, http.StatusCreated, s.documentBody(sess))
}

func (s *Server) importUpload(r *http.Request) (title, filename, text string, status int, err error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return "", "", "", http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", "", http.StatusBadRequest, fmt.Errorf("file is required: %w", err)
	}
	defer file.Close()

	filename = sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		return "", "", "", http.StatusBadRequest, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}

	res, err := importer.ImportReader(r.Context(), file, s.cfg.MaxUploadBytes, filename, importer.Options{
		Marker:            s.cfg.HeadingMarker,
		FallbackPdftotext: s.cfg.PDFFallbackPdftotext,
		Summaries:         r.FormValue("summaries") != "false",
		Log:               s.log,
	})
	if errors.Is(err, importer.ErrTooLarge) {
		return "", "", "", http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	if err != nil {
		return "", "", "", http.StatusUnprocessableEntity, err
	}

	title = r.FormValue("title")
	if title == "" {
		title = res.Title
	}
	return title, filename, res.Text, http.StatusCreated, nil
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"documents": s.store.List()})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.documentBody(sess))
}

// handleReplaceDocument swaps the whole text of a session.
func (s *Server) handleReplaceDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024)
	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	sess.Do(func(doc *buffer.Document) error {
		doc.Replace(req.Text)
		return nil
	})
	writeJSON(w, http.StatusOK, s.documentBody(sess))
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if err := s.store.Delete(docID); err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": docID})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(chi.URLParam(r, "docID"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

func (s *Server) documentBody(sess *session.Session) documentResponse {
	resp := documentResponse{Snapshot: sess.Snapshot()}
	sess.View(func(doc *buffer.Document) {
		resp.Text = doc.String()
		resp.Cursor = doc.Cursor()
	})
	return resp
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
