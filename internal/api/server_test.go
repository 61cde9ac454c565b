package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/sketchfmt/internal/config"
	"github.com/dgallion1/sketchfmt/internal/parser"
	"github.com/dgallion1/sketchfmt/internal/pipeline"
)

const testKey = "test-key"

func newTestServer(t *testing.T, start bool) (*Server, *pipeline.Orchestrator) {
	t.Helper()
	cfg := config.Config{
		APIKey:             testKey,
		WorkerCount:        1,
		MaxQueueSize:       4,
		MaxConcurrentParse: 1,
		MaxUploadBytes:     1024,
		JobTTL:             time.Hour,
		StatsWindow:        time.Hour,
		Groups:             parser.DefaultGroups(),
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, nil, log)
	if start {
		orch.Start(context.Background())
	}
	t.Cleanup(orch.Stop)
	return NewServer(orch, log, cfg), orch
}

func do(t *testing.T, s *Server, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+testKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth_NoAuth(t *testing.T) {
	s, _ := newTestServer(t, false)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

func TestAuth(t *testing.T) {
	s, _ := newTestServer(t, false)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader("")))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without header, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(""))
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong key, got %d", rec.Code)
	}
	if decodeBody(t, rec)["error"] != "invalid api key" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestParse_Text(t *testing.T) {
	s, orch := newTestServer(t, false)
	rec := do(t, s, http.MethodPost, "/api/parse", strings.NewReader(`Marker: (hello);`), "text/plain")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	atoms, _ := body["atoms"].([]any)
	if len(atoms) != 1 {
		t.Fatalf("expected 1 atom, got %v", body)
	}
	atom := atoms[0].(map[string]any)
	if atom["type"] != "marker" || atom["message"] != "hello" {
		t.Errorf("unexpected atom %v", atom)
	}
	if orch.Stats().Snapshot().Count != 1 {
		t.Error("expected the decode to be recorded in stats")
	}
}

func TestParse_GrammarError(t *testing.T) {
	s, _ := newTestServer(t, false)
	rec := do(t, s, http.MethodPost, "/api/parse", strings.NewReader("Scribble: [000000]"), "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["kind"] != "grammar" {
		t.Errorf("expected grammar error, got %v", body)
	}
	if body["offset"] != float64(0) || body["token"] != "Scribble" {
		t.Errorf("expected offset 0 token Scribble, got %v", body)
	}
}

func TestParse_NumberError(t *testing.T) {
	s, _ := newTestServer(t, false)
	rec := do(t, s, http.MethodPost, "/api/parse", strings.NewReader("Data: [00000-]"), "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["kind"] != "number" {
		t.Errorf("expected number error, got %v", body)
	}
}

func TestParse_Multipart(t *testing.T) {
	s, _ := newTestServer(t, false)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "pen.hsc")
	fw.Write([]byte("Pencil: [000000 001001]"))
	mw.Close()

	rec := do(t, s, http.MethodPost, "/api/parse", &buf, mw.FormDataContentType())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	elements, _ := decodeBody(t, rec)["elements"].([]any)
	if len(elements) != 1 || elements[0].(map[string]any)["kind"] != "pencil" {
		t.Errorf("expected one pencil element, got %v", elements)
	}
}

func TestParse_TooLarge(t *testing.T) {
	s, _ := newTestServer(t, false)
	rec := do(t, s, http.MethodPost, "/api/parse", strings.NewReader(strings.Repeat("x", 2048)), "")
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func TestParseRaw(t *testing.T) {
	s, _ := newTestServer(t, false)
	rec := do(t, s, http.MethodPost, "/api/parse/raw", strings.NewReader("0A0B\n1C1D\n"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	strokes, _ := decodeBody(t, rec)["strokes"].([]any)
	if len(strokes) != 2 {
		t.Errorf("expected 2 strokes, got %v", strokes)
	}

	rec = do(t, s, http.MethodPost, "/api/parse/raw", strings.NewReader("0A0"), "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["kind"] != "raw_format" {
		t.Errorf("expected raw_format error, got %v", body)
	}
}

func TestTokens(t *testing.T) {
	s, _ := newTestServer(t, false)
	rec := do(t, s, http.MethodPost, "/api/tokens", strings.NewReader(`Marker: ("a b")`), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out struct {
		Tokens []tokenJSON `json:"tokens"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Tokens) == 0 || out.Tokens[0].Text != "Marker" || out.Tokens[0].Offset != 0 {
		t.Fatalf("unexpected tokens %+v", out.Tokens)
	}
	found := false
	for _, tok := range out.Tokens {
		if tok.Text == `("a b")` && tok.Kind == "string" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected string token, got %+v", out.Tokens)
	}
}

func TestJobs_SubmitAndPoll(t *testing.T) {
	s, _ := newTestServer(t, true)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("files", "notes.md")
	fw.Write([]byte("```raw\n0A0B\n```\n"))
	fw, _ = mw.CreateFormFile("files", "sheet.csv")
	fw.Write([]byte("a,b"))
	mw.Close()

	rec := do(t, s, http.MethodPost, "/api/jobs", &buf, mw.FormDataContentType())
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Jobs []map[string]any `json:"jobs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Jobs) != 2 {
		t.Fatalf("expected 2 entries, got %v", resp.Jobs)
	}
	if resp.Jobs[1]["error"] == nil {
		t.Errorf("expected unsupported file to be rejected, got %v", resp.Jobs[1])
	}
	jobID, _ := resp.Jobs[0]["job_id"].(string)
	if jobID == "" {
		t.Fatalf("expected job id, got %v", resp.Jobs[0])
	}

	var snap pipeline.JobSnapshot
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec = do(t, s, http.MethodGet, "/api/jobs/"+jobID, nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if snap.Status == pipeline.StatusCompleted {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if snap.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed job, got %q", snap.Status)
	}
	if len(snap.Results) != 1 || snap.Results[0].Raw == nil || len(snap.Results[0].Raw.Strokes) != 1 {
		t.Errorf("unexpected results %+v", snap.Results)
	}
}

func TestJobs_NoFiles(t *testing.T) {
	s, _ := newTestServer(t, false)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("note", "empty")
	mw.Close()
	rec := do(t, s, http.MethodPost, "/api/jobs", &buf, mw.FormDataContentType())
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestJobStatus_NotFound(t *testing.T) {
	s, _ := newTestServer(t, false)
	rec := do(t, s, http.MethodGet, "/api/jobs/nope", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestParseStats(t *testing.T) {
	s, _ := newTestServer(t, false)
	do(t, s, http.MethodPost, "/api/parse/raw", strings.NewReader("0A0B"), "")
	rec := do(t, s, http.MethodGet, "/api/stats/parse", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out struct {
		Stats      pipeline.StatsSnapshot `json:"stats"`
		QueueDepth int                    `json:"queue_depth"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Stats.Count != 1 || out.Stats.ByFormat["raw"] != 1 {
		t.Errorf("unexpected stats %+v", out.Stats)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"../../etc/passwd.hsc": "passwd.hsc",
		"dir/pen.raw":          "pen.raw",
		"":                     "unnamed",
		"a\\b.md":              "a_b.md",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q): expected %q, got %q", in, want, got)
		}
	}
}
