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

	"github.com/dgallion1/treeflat/internal/archive"
	"github.com/dgallion1/treeflat/internal/condition"
	"github.com/dgallion1/treeflat/internal/config"
	"github.com/dgallion1/treeflat/internal/flatten"
	"github.com/dgallion1/treeflat/internal/pipeline"
	"github.com/dgallion1/treeflat/internal/stats"
)

const forestText = `self_cpi_min <= 0.695117
|   all_cpi_mean <= 9.148936
|   |   self_cpi_mean <= 2.000000: 0
|   |   self_cpi_mean > 2.000000: 1
|   all_cpi_mean > 9.148936: 1
self_cpi_min > 0.695117: 1
`

type memForests struct {
	forests map[string]*archive.Forest
}

func (m *memForests) GetForest(_ context.Context, name string) (*archive.Forest, error) {
	return m.forests[name], nil
}

func (m *memForests) ListForests(_ context.Context, limit int) ([]archive.Summary, error) {
	var out []archive.Summary
	for name, f := range m.forests {
		out = append(out, archive.Summary{Key: archive.Prefix + "/" + name, Value: f.Trees})
	}
	return out, nil
}

func (m *memForests) DeleteForest(_ context.Context, name string) error {
	delete(m.forests, name)
	return nil
}

func newTestServer(t *testing.T, forests ForestStore) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		TreeflatAPIKey: "test-key",
		WorkerCount:    1,
		MaxQueueSize:   4,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
	}
	conv := &pipeline.Converter{
		Vocab:       condition.DefaultVocabulary(),
		Concurrency: 2,
		Stats:       stats.NewLatency(time.Hour),
		Log:         log,
	}
	orch := pipeline.NewOrchestrator(cfg, conv, nil, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, forests, log, cfg)
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	req.Header.Set("Authorization", "Bearer test-key")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth_NoAuth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsExposed(t *testing.T) {
	s := newTestServer(t, nil)
	do(t, s, httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(forestText)))

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "treeflat_convert_trees_total") {
		t.Error("expected conversion counter in metrics output")
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, nil)
	tests := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"wrong", "Bearer nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(forestText))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestConvert_DZN(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(forestText)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "feature_idx = [|\n1, 3, -1, 2, -1, -1, -1 |];\n") {
		t.Errorf("unexpected DZN output:\n%s", body)
	}
	if rec.Header().Get("X-Treeflat-Trees") != "1" || rec.Header().Get("X-Treeflat-Width") != "7" {
		t.Errorf("unexpected shape headers: %v", rec.Header())
	}
}

func TestConvert_JSON(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/convert?format=json", strings.NewReader(forestText)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var a flatten.Arrays
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.NumTrees() != 1 || a.Width() != 7 {
		t.Errorf("expected 1x7 arrays, got %dx%d", a.NumTrees(), a.Width())
	}
}

func TestConvert_Markdown(t *testing.T) {
	s := newTestServer(t, nil)
	md := "# Model\n\n```tree\n" + forestText + "```\n"
	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/convert?filename=model.md", strings.NewReader(md)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestConvert_Rejected(t *testing.T) {
	s := newTestServer(t, nil)
	bad := strings.Replace(forestText, "all_cpi_mean <= 9.148936", "mystery <= 9.148936", 1)
	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(bad)))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var body map[string]any
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["kind"] != "unknown_feature" {
		t.Errorf("expected unknown_feature, got %v", body["kind"])
	}
	if body["tree"] != float64(1) || body["line"] != float64(2) {
		t.Errorf("expected tree 1 line 2, got %v", body)
	}
}

func TestConvert_BadRequests(t *testing.T) {
	s := newTestServer(t, nil)
	tests := []struct {
		name string
		url  string
		body string
		want int
	}{
		{"bad format", "/api/convert?format=csv", forestText, http.StatusBadRequest},
		{"bad extension", "/api/convert?filename=x.xlsx", forestText, http.StatusBadRequest},
		{"empty", "/api/convert", "\n\n", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, httptest.NewRequest(http.MethodPost, tt.url, strings.NewReader(tt.body)))
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func uploadRequest(t *testing.T, filename, name string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	if name != "" {
		mw.WriteField("name", name)
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestJobs_SubmitPollResult(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, uploadRequest(t, "CPI Model.txt", "", []byte(forestText)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var accepted map[string]any
	json.Unmarshal(rec.Body.Bytes(), &accepted)
	jobID, _ := accepted["job_id"].(string)
	if jobID == "" {
		t.Fatal("expected job_id")
	}
	if accepted["name"] != "cpi-model" {
		t.Errorf("expected name from filename, got %v", accepted["name"])
	}

	var snap pipeline.JobSnapshot
	deadline := time.Now().Add(5 * time.Second)
	for {
		rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/jobs/"+jobID, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status: expected 200, got %d", rec.Code)
		}
		json.Unmarshal(rec.Body.Bytes(), &snap)
		if snap.Status.Terminal() {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job stuck in %q", snap.Status)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if snap.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed, got %q (%v)", snap.Status, snap.Progress.Errors)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/jobs/"+jobID+"/result?format=json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("result: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"feature_idx"`) {
		t.Errorf("expected JSON arrays, got %s", rec.Body.String())
	}
}

func TestJobs_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, uploadRequest(t, "model.xlsx", "", []byte(forestText)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unsupported upload: expected 400, got %d", rec.Code)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/jobs/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing job: expected 404, got %d", rec.Code)
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/jobs/missing/result", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing result: expected 404, got %d", rec.Code)
	}
}

func TestForests(t *testing.T) {
	store := &memForests{forests: map[string]*archive.Forest{
		"cpi": {
			Name:  "cpi",
			Trees: 1,
			Width: 3,
			Arrays: &flatten.Arrays{
				Feature:   [][]int{{4, -1, -1}},
				Relation:  [][]condition.Relation{{condition.LT, condition.Leaf, condition.Leaf}},
				Threshold: [][]string{{"3.5", "-1", "-1"}},
				Child:     [][]int{{2, -1, -1}},
				Value:     [][]int{{-1, 0, 1}},
				Nodes:     []int{3},
			},
		},
	}}
	s := newTestServer(t, store)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/forests", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "forests/cpi") {
		t.Fatalf("list: got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/forests/cpi?format=dzn", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "feature_rel = [|\nLT, LEAF, LEAF |];") {
		t.Fatalf("get dzn: got %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, httptest.NewRequest(http.MethodDelete, "/api/forests/cpi", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: got %d", rec.Code)
	}
	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/forests/cpi", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestForests_ArchiveDisabled(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/forests", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestConversionStats(t *testing.T) {
	s := newTestServer(t, nil)
	do(t, s, httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(forestText)))

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/stats/conversion", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Stats stats.Snapshot `json:"stats"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Stats.Count != 1 || body.Stats.Trees != 1 {
		t.Errorf("expected one sample, got %+v", body.Stats)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"../../etc/passwd": "passwd",
		"":                 "unnamed",
		"forest.tree":      "forest.tree",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
