package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dgallion1/orgtree/internal/buffer"
	"github.com/dgallion1/orgtree/internal/doctree"
	"github.com/dgallion1/orgtree/internal/outline"
	"github.com/dgallion1/orgtree/internal/progress"
	"github.com/go-chi/chi/v5"
)

type commandRequest struct {
	Selections []outline.Selection `json:"selections"`
	// State forces the toggle target instead of inferring it.
	State *outline.State `json:"state,omitempty"`
	// Version, when set, must match the document's current version.
	Version int64 `json:"version,omitempty"`
}

type commandResponse struct {
	Version int64            `json:"version"`
	Text    string           `json:"text"`
	Cursor  outline.Position `json:"cursor"`
	Edits   int              `json:"edits"`
}

var errVersionConflict = errors.New("version conflict")

// handleCommand runs one engine command against a document's selections.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	cmd, err := outline.ParseCommand(chi.URLParam(r, "command"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.State != nil && cmd != outline.CmdToggleCheckbox {
		jsonError(w, "state is only valid for "+string(outline.CmdToggleCheckbox), http.StatusBadRequest)
		return
	}

	// A disconnecting client must not leave a cascade half applied.
	ctx := context.WithoutCancel(r.Context())
	log := s.log.With("doc_id", sess.ID, "command", string(cmd))

	var resp commandResponse
	start := time.Now()
	err = sess.Do(func(doc *buffer.Document) error {
		if req.Version != 0 && req.Version != doc.Version() {
			return fmt.Errorf("%w: document is at version %d", errVersionConflict, doc.Version())
		}
		if len(req.Selections) > 0 {
			doc.SetSelections(req.Selections)
		}
		e := outline.New(doc, outline.WithHeadingMarker(s.cfg.HeadingMarker), outline.WithLogger(log))

		var err error
		if req.State != nil {
			err = e.SetCheckboxes(ctx, *req.State)
		} else {
			err = e.Run(ctx, cmd)
		}
		resp = commandResponse{
			Version: doc.Version(),
			Text:    doc.String(),
			Cursor:  doc.Cursor(),
			Edits:   e.Edits(),
		}
		return err
	})
	s.stats.Record(string(cmd), time.Since(start), err != nil)

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, errVersionConflict):
		jsonError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, outline.ErrInvalidState), errors.Is(err, outline.ErrInvalidPosition):
		jsonError(w, err.Error(), http.StatusBadRequest)
	default:
		// Edits applied before the failure stay in the document.
		log.Warn("command failed", "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   err.Error(),
			"version": resp.Version,
			"text":    resp.Text,
			"edits":   resp.Edits,
		})
	}
}

// handleInspect reports the node at a 1-based line.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	line, err := strconv.Atoi(chi.URLParam(r, "line"))
	if err != nil || line < 1 {
		jsonError(w, "line must be a positive integer", http.StatusBadRequest)
		return
	}

	var info outline.NodeInfo
	sess.View(func(doc *buffer.Document) {
		info, err = outline.New(doc, outline.WithHeadingMarker(s.cfg.HeadingMarker)).Inspect(line - 1)
	})
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleProgress reports checkbox completion per section.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var report progress.Report
	sess.View(func(doc *buffer.Document) {
		tree := doctree.FromOutline(sess.Title, doc.Lines(), s.cfg.HeadingMarker)
		report = progress.Build(tree)
	})
	writeJSON(w, http.StatusOK, report)
}
