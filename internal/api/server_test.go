package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/orgtree/internal/config"
	"github.com/dgallion1/orgtree/internal/session"
)

const testKey = "secret"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{
		APIKey:         testKey,
		MaxUploadBytes: 1 << 20,
		HeadingMarker:  '*',
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(session.NewStore(time.Hour), session.NewCommandStats(time.Hour), log, cfg)
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", "Bearer "+testKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func createDoc(t *testing.T, s *Server, text string) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/documents", map[string]string{"title": "t", "text": text})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID string `json:"doc_id"`
	}
	decode(t, rec, &resp)
	return resp.ID
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)
	for _, header := range []string{"", "Bearer wrong", "Basic " + testKey} {
		req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestDocumentLifecycle(t *testing.T) {
	s := newTestServer(t)
	id := createDoc(t, s, "* Tasks [/]\n- [ ] a\n- [ ] b\n")

	rec := do(t, s, http.MethodGet, "/api/documents/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/api/documents", nil)
	var list struct {
		Documents []session.Snapshot `json:"documents"`
	}
	decode(t, rec, &list)
	if len(list.Documents) != 1 || list.Documents[0].ID != id {
		t.Errorf("unexpected list %+v", list)
	}

	rec = do(t, s, http.MethodPut, "/api/documents/"+id, map[string]string{"text": "- [ ] only\n"})
	var doc documentResponse
	decode(t, rec, &doc)
	if doc.Text != "- [ ] only\n" || doc.Lines != 1 {
		t.Errorf("unexpected replaced doc %+v", doc)
	}

	if rec := do(t, s, http.MethodDelete, "/api/documents/"+id, nil); rec.Code != http.StatusOK {
		t.Errorf("delete: %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/documents/"+id, nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestCommand_ToggleCheckbox(t *testing.T) {
	s := newTestServer(t)
	id := createDoc(t, s, "* Tasks [/]\n- [ ] a\n- [ ] b\n")

	rec := do(t, s, http.MethodPost, "/api/documents/"+id+"/commands/toggle-checkbox", map[string]any{
		"selections": []map[string]any{{"start": map[string]int{"line": 1}, "end": map[string]int{"line": 1}}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("command: %d %s", rec.Code, rec.Body.String())
	}
	var resp commandResponse
	decode(t, rec, &resp)
	if resp.Text != "* Tasks [1/2]\n- [x] a\n- [ ] b\n" {
		t.Errorf("unexpected text %q", resp.Text)
	}
	if resp.Edits != 2 || resp.Version == 0 {
		t.Errorf("unexpected response %+v", resp)
	}

	stats := do(t, s, http.MethodGet, "/api/stats/commands", nil)
	if !strings.Contains(stats.Body.String(), `"toggle-checkbox"`) {
		t.Errorf("expected command stats, got %s", stats.Body.String())
	}
}

func TestCommand_ExplicitState(t *testing.T) {
	s := newTestServer(t)
	id := createDoc(t, s, "- [x] a\n- [x] b\n")

	rec := do(t, s, http.MethodPost, "/api/documents/"+id+"/commands/toggle-checkbox", map[string]any{
		"selections": []map[string]any{{"start": map[string]int{"line": 0}, "end": map[string]int{"line": 1}}},
		"state":      "unchecked",
	})
	var resp commandResponse
	decode(t, rec, &resp)
	if resp.Text != "- [ ] a\n- [ ] b\n" {
		t.Errorf("unexpected text %q", resp.Text)
	}

	rec = do(t, s, http.MethodPost, "/api/documents/"+id+"/commands/renumber-list", map[string]any{"state": "checked"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for state on renumber, got %d", rec.Code)
	}
	rec = do(t, s, http.MethodPost, "/api/documents/"+id+"/commands/toggle-checkbox", map[string]any{"state": "error"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for error state, got %d", rec.Code)
	}
}

func TestCommand_RenumberAndAppend(t *testing.T) {
	s := newTestServer(t)
	id := createDoc(t, s, "* List\n1. a\n5. b\n")

	rec := do(t, s, http.MethodPost, "/api/documents/"+id+"/commands/append-list-item", map[string]any{
		"selections": []map[string]any{{"start": map[string]int{"line": 2, "col": 4}, "end": map[string]int{"line": 2, "col": 4}}},
	})
	var resp commandResponse
	decode(t, rec, &resp)
	if resp.Text != "* List\n1. a\n2. b\n3. \n" {
		t.Errorf("unexpected text %q", resp.Text)
	}
	if resp.Cursor.Line != 3 || resp.Cursor.Col != 3 {
		t.Errorf("unexpected cursor %+v", resp.Cursor)
	}
}

func TestCommand_Errors(t *testing.T) {
	s := newTestServer(t)
	id := createDoc(t, s, "- [ ] a\n")

	if rec := do(t, s, http.MethodPost, "/api/documents/"+id+"/commands/explode", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown command: expected 404, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/documents/nope/commands/dwim", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown doc: expected 404, got %d", rec.Code)
	}
	rec := do(t, s, http.MethodPost, "/api/documents/"+id+"/commands/dwim", map[string]any{"version": 99})
	if rec.Code != http.StatusConflict {
		t.Errorf("stale version: expected 409, got %d", rec.Code)
	}
}

func TestInspectAndProgress(t *testing.T) {
	s := newTestServer(t)
	id := createDoc(t, s, "* Tasks [1/2]\n- [x] a\n- [ ] b\n")

	rec := do(t, s, http.MethodGet, "/api/documents/"+id+"/nodes/2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("inspect: %d %s", rec.Code, rec.Body.String())
	}
	var info struct {
		Line     int    `json:"line"`
		Checkbox string `json:"checkbox"`
		Parent   int    `json:"parent"`
		Siblings []int  `json:"siblings"`
	}
	decode(t, rec, &info)
	if info.Line != 2 || info.Checkbox != "checked" || info.Parent != 1 {
		t.Errorf("unexpected node %+v", info)
	}
	if rec := do(t, s, http.MethodGet, "/api/documents/"+id+"/nodes/9", nil); rec.Code != http.StatusNotFound {
		t.Errorf("out of range: expected 404, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/documents/"+id+"/nodes/zero", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad line: expected 400, got %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/api/documents/"+id+"/progress", nil)
	var report struct {
		Total   int `json:"total"`
		Done    int `json:"done"`
		Percent int `json:"percent"`
	}
	decode(t, rec, &report)
	if report.Total != 2 || report.Done != 1 || report.Percent != 50 {
		t.Errorf("unexpected progress %+v", report)
	}
}

func TestCreateDocument_Upload(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "plan.md")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("# Launch\n\n- [x] build\n- [ ] ship\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &body)
	req.Header.Set("Authorization", "Bearer "+testKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: %d %s", rec.Code, rec.Body.String())
	}
	var doc documentResponse
	decode(t, rec, &doc)
	if doc.Title != "plan" || doc.Filename != "plan.md" {
		t.Errorf("unexpected metadata %+v", doc.Snapshot)
	}
	if !strings.Contains(doc.Text, "* Launch [1/2]\n") {
		t.Errorf("expected recalculated heading, got:\n%s", doc.Text)
	}
}

func TestCreateDocument_UnsupportedUpload(t *testing.T) {
	s := newTestServer(t)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "x.exe")
	fw.Write([]byte("MZ"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &body)
	req.Header.Set("Authorization", "Bearer "+testKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSanitizeFilename(t *testing.T) {
	for in, want := range map[string]string{
		"../../etc/todo.org": "todo.org",
		"":                   "unnamed",
		"a..b.md":            "a_b.md",
	} {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
