package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"grabarr/internal/downloads"
	"grabarr/internal/models"
)

type mockManager struct {
	startResult *downloads.StartResult
	startErr    error
	startedWith *models.DownloadRequest

	cancelOK bool
	record   models.ProgressRecord
	found    bool

	// progressFn, when set, overrides the static record/found pair.
	progressFn func(id string) (models.ProgressRecord, bool)

	finished chan string
}

func (m *mockManager) Start(ctx context.Context, req models.DownloadRequest) (*downloads.StartResult, error) {
	m.startedWith = &req
	return m.startResult, m.startErr
}

func (m *mockManager) Cancel(id string) bool { return m.cancelOK }

func (m *mockManager) Progress(id string) (models.ProgressRecord, bool) {
	if m.progressFn != nil {
		return m.progressFn(id)
	}
	return m.record, m.found
}

func (m *mockManager) Finish(ctx context.Context, id string, fileSize int64) {
	if m.finished != nil {
		m.finished <- id
	}
}

type mockMetadata struct {
	meta     *models.VideoMetadata
	err      error
	filename string
}

func (m *mockMetadata) Fetch(ctx context.Context, rawURL string) (*models.VideoMetadata, error) {
	return m.meta, m.err
}

func (m *mockMetadata) Filename(ctx context.Context, rawURL string) string {
	if m.filename == "" {
		return "video.mp4"
	}
	return m.filename
}

type mockHistory struct {
	entries []models.HistoryEntry
	err     error
}

func (m *mockHistory) Recent(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	return m.entries, m.err
}

func testRouter(mgr *mockManager, md *mockMetadata, hist *mockHistory) http.Handler {
	if md == nil {
		md = &mockMetadata{}
	}
	return NewRouter(Deps{Manager: mgr, Metadata: md, History: hist})
}

func tempOutputFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dl-1.mp4")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestStartDownloadStreamsFile(t *testing.T) {
	path := tempOutputFile(t, "fake video bytes")
	mgr := &mockManager{startResult: &downloads.StartResult{FilePath: path, Ext: "mp4"}}
	router := testRouter(mgr, nil, nil)

	body := `{"url":"https://www.youtube.com/watch?v=abc123","quality":"1080p","format":"video","downloadId":"dl-1","title":"My Video"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/downloads", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "video/mp4" {
		t.Errorf("Content-Type = %q, want video/mp4", got)
	}
	if got := rec.Header().Get("X-Download-Id"); got != "dl-1" {
		t.Errorf("X-Download-Id = %q, want dl-1", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="My Video.mp4"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if rec.Body.String() != "fake video bytes" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if mgr.startedWith == nil || mgr.startedWith.DownloadID != "dl-1" {
		t.Errorf("manager not started with client id: %+v", mgr.startedWith)
	}
}

func TestStartDownloadGeneratesID(t *testing.T) {
	path := tempOutputFile(t, "x")
	mgr := &mockManager{startResult: &downloads.StartResult{FilePath: path, Ext: "mp4"}}
	router := testRouter(mgr, nil, nil)

	body := `{"url":"https://www.youtube.com/watch?v=abc123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/downloads", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if mgr.startedWith == nil || !strings.HasPrefix(mgr.startedWith.DownloadID, "download_") {
		t.Errorf("generated id = %+v, want download_ prefix", mgr.startedWith)
	}
}

func TestStartDownloadRejectsBadRequests(t *testing.T) {
	mgr := &mockManager{}
	router := testRouter(mgr, nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{"not json", "{{{"},
		{"missing url", `{"quality":"best"}`},
		{"unsupported site", `{"url":"https://example.com/v"}`},
		{"bad format", `{"url":"https://youtu.be/a","format":"gif"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/downloads", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			var resp models.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid error envelope: %v", err)
			}
			if resp.Success || resp.Error == "" {
				t.Errorf("envelope = %+v", resp)
			}
		})
	}
}

func TestDirectDownloadQueryParams(t *testing.T) {
	path := tempOutputFile(t, "x")
	mgr := &mockManager{startResult: &downloads.StartResult{FilePath: path, Ext: "mp3"}}
	router := testRouter(mgr, nil, nil)

	target := "/api/v1/downloads?url=https%3A%2F%2Fyoutu.be%2Fabc&format=audio&id=dl-2&title=Song&duration=212.5"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "audio/mpeg" {
		t.Errorf("Content-Type = %q, want audio/mpeg", got)
	}
	if mgr.startedWith.Duration != 212.5 {
		t.Errorf("duration = %v, want 212.5", mgr.startedWith.Duration)
	}
}

func TestCancelDownload(t *testing.T) {
	router := testRouter(&mockManager{cancelOK: true}, nil, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/downloads/dl-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCancelDownloadUnknown(t *testing.T) {
	router := testRouter(&mockManager{cancelOK: false}, nil, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/downloads/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestMetadataEndpoint(t *testing.T) {
	md := &mockMetadata{meta: &models.VideoMetadata{
		Type:  models.MetadataVideo,
		ID:    "abc123",
		Title: "Test",
		Formats: []models.Format{
			{Resolution: "1920x1080", ACodec: "none"},
		},
	}}
	router := testRouter(&mockManager{}, md, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/metadata?url=https%3A%2F%2Fyoutu.be%2Fabc123", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			ID                 string                 `json:"id"`
			AvailableQualities []models.QualityOption `json:"availableQualities"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Data.ID != "abc123" {
		t.Errorf("resp = %+v", resp)
	}
	if len(resp.Data.AvailableQualities) != 1 || resp.Data.AvailableQualities[0].Quality != "1080p" {
		t.Errorf("qualities = %+v", resp.Data.AvailableQualities)
	}
}

func TestMetadataEndpointRequiresURL(t *testing.T) {
	router := testRouter(&mockManager{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metadata", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	hist := &mockHistory{entries: []models.HistoryEntry{
		{ID: 1, DownloadID: "dl-1", URL: "u", Status: "complete"},
	}}
	router := testRouter(&mockManager{}, nil, hist)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var entries []models.HistoryEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].DownloadID != "dl-1" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestProgressEventsTerminalClose(t *testing.T) {
	mgr := &mockManager{
		found: true,
		record: models.ProgressRecord{
			Phase:   models.PhaseComplete,
			Percent: 100,
		},
	}
	srv := httptest.NewServer(testRouter(mgr, nil, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/downloads/dl-1/events")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q", got)
	}

	body := readAll(t, resp.Body)
	if !strings.Contains(body, "data: {") {
		t.Errorf("no SSE frame in %q", body)
	}
	if !strings.Contains(body, `"status":"complete"`) {
		t.Errorf("no terminal status in %q", body)
	}
	// The stream must close after the terminal push, exactly one frame.
	if strings.Count(body, "data: ") != 1 {
		t.Errorf("expected one frame, got %q", body)
	}
}

func TestProgressEventsStreamingClose(t *testing.T) {
	// The streaming phase hands the session off to file delivery; the
	// stream must close after pushing it exactly once, not keep ticking
	// for the whole delivery.
	mgr := &mockManager{
		found: true,
		record: models.ProgressRecord{
			Phase:   models.PhaseStreaming,
			Percent: 100,
		},
	}
	srv := httptest.NewServer(testRouter(mgr, nil, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/downloads/dl-1/events")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body := readAll(t, resp.Body)
	if !strings.Contains(body, `"status":"streaming"`) {
		t.Errorf("no streaming frame in %q", body)
	}
	if got := strings.Count(body, "data: "); got != 1 {
		t.Errorf("expected one frame, got %d in %q", got, body)
	}
}

func TestProgressEventsCloseOnceSessionGone(t *testing.T) {
	// A session observed once and then torn down (cancelled or finished)
	// must close the stream on the next tick, not linger for the
	// unknown-id grace window.
	var calls int
	mgr := &mockManager{
		progressFn: func(id string) (models.ProgressRecord, bool) {
			calls++
			if calls == 1 {
				return models.ProgressRecord{Phase: models.PhaseDownloading, Percent: 10}, true
			}
			return models.ProgressRecord{}, false
		},
	}
	srv := httptest.NewServer(testRouter(mgr, nil, nil))
	defer srv.Close()

	start := time.Now()
	resp, err := http.Get(srv.URL + "/api/v1/downloads/dl-1/events")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body := readAll(t, resp.Body)
	elapsed := time.Since(start)

	if got := strings.Count(body, "data: "); got != 1 {
		t.Errorf("expected one frame, got %d in %q", got, body)
	}
	if elapsed > 5*time.Second {
		t.Errorf("stream lingered %v after session disappeared", elapsed)
	}
}

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	buf := make([]byte, 4096)
	var out strings.Builder
	for {
		n, err := r.Read(buf)
		out.Write(buf[:n])
		if err != nil {
			break
		}
	}
	return out.String()
}

func TestAttachmentName(t *testing.T) {
	tests := []struct {
		title, ext, id, want string
	}{
		{"My Video", "mp4", "dl-1", "My Video.mp4"},
		{"Song Title.webm", "mp3", "dl-1", "Song Title.mp3"},
		{"", "mp4", "dl-1", "dl-1.mp4"},
		{"///", "mp4", "dl-1", "dl-1.mp4"},
	}
	for _, tt := range tests {
		if got := attachmentName(tt.title, tt.ext, tt.id); got != tt.want {
			t.Errorf("attachmentName(%q, %q, %q) = %q, want %q",
				tt.title, tt.ext, tt.id, got, tt.want)
		}
	}
}
