package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/reelcut/reelcut-agent/internal/catalog"
	"github.com/reelcut/reelcut-agent/internal/mixer"
	"github.com/reelcut/reelcut-agent/internal/session"
	"github.com/reelcut/reelcut-agent/internal/upload"
)

const testToken = "test-token"

type fakeUploader struct {
	target *upload.Target
	err    error
}

func (f *fakeUploader) RequestUploadTarget(ctx context.Context, fileName, contentType string) (*upload.Target, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.target, nil
}

type fakeConfig struct {
	bucket      string
	credentials bool
}

func (f *fakeConfig) Port() int                    { return 8788 }
func (f *fakeConfig) LogLevel() string             { return "info" }
func (f *fakeConfig) DataDir() string              { return "/tmp/reelcut-test" }
func (f *fakeConfig) DBPath() string               { return "/tmp/reelcut-test/reelcut.db" }
func (f *fakeConfig) FramesDir() string            { return "/tmp/reelcut-test/frames" }
func (f *fakeConfig) Headless() bool               { return true }
func (f *fakeConfig) S3Bucket() string             { return f.bucket }
func (f *fakeConfig) S3Region() string             { return "us-east-1" }
func (f *fakeConfig) S3Prefix() string             { return "uploads/" }
func (f *fakeConfig) S3AccessKey() string          { return "" }
func (f *fakeConfig) S3SecretKey() string          { return "" }
func (f *fakeConfig) HasCredentials() bool         { return f.credentials }
func (f *fakeConfig) PresignExpiry() time.Duration { return 900 * time.Second }
func (f *fakeConfig) FFmpegPath() string           { return "ffmpeg" }

type fakeRepo struct {
	token string
}

func (f *fakeRepo) CreateVideo(ctx context.Context, v *catalog.Video) error  { return nil }
func (f *fakeRepo) GetVideo(ctx context.Context, id string) (*catalog.Video, error) {
	return nil, nil
}
func (f *fakeRepo) ListVideos(ctx context.Context) ([]*catalog.Video, error) { return nil, nil }
func (f *fakeRepo) DeleteVideo(ctx context.Context, id string) error         { return nil }
func (f *fakeRepo) UpdateVideoUploadedKey(ctx context.Context, id, key string) error {
	return nil
}
func (f *fakeRepo) CountVideos(ctx context.Context) (int, error) { return 0, nil }
func (f *fakeRepo) GetConfig(ctx context.Context, key string) (string, error) {
	return f.token, nil
}
func (f *fakeRepo) SetConfig(ctx context.Context, key, value string) error { return nil }

type fakeCatalog struct {
	videos []*catalog.Video
}

func (f *fakeCatalog) SaveVideo(ctx context.Context, title, mediaURI string, duration float64) (*catalog.Video, error) {
	if mediaURI == "" {
		return nil, errors.New("media URI is required")
	}
	v := &catalog.Video{ID: "v1", Title: title, MediaURI: mediaURI, Duration: duration, CreatedAt: time.Now()}
	f.videos = append(f.videos, v)
	return v, nil
}

func (f *fakeCatalog) GetVideo(ctx context.Context, id string) (*catalog.Video, error) {
	return nil, nil
}

func (f *fakeCatalog) GetVideos(ctx context.Context) ([]*catalog.Video, error) {
	return f.videos, nil
}

func (f *fakeCatalog) RemoveVideo(ctx context.Context, id string) error { return nil }

func (f *fakeCatalog) MarkUploaded(ctx context.Context, id, key string) error {
	if id == "missing" {
		return errors.New("video not found")
	}
	return nil
}

func (f *fakeCatalog) CountVideos(ctx context.Context) (int, error) { return len(f.videos), nil }

func testServerConfig() ServerConfig {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return ServerConfig{
		Port:           8788,
		Config:         &fakeConfig{bucket: "pitch-videos", credentials: true},
		Sessions:       session.NewManager(nil, logger),
		CatalogService: &fakeCatalog{},
		Repository:     &fakeRepo{token: testToken},
		Uploader: &fakeUploader{target: &upload.Target{
			URL:       "https://pitch-videos.s3.amazonaws.com/uploads/x?sig=y",
			Key:       "uploads/20250314-093000-pitch.mp4",
			Bucket:    "pitch-videos",
			Region:    "us-east-1",
			ExpiresIn: 900,
		}},
		Mixer:        mixer.NewStubMixer(logger),
		MixOutputDir: "/tmp/reelcut-test",
		Logger:       logger,
		StartTime:    time.Now(),
	}
}

func decodeJSONBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}

	return body
}

func authedRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}

func TestHealthHandler_WireShape(t *testing.T) {
	cfg := testServerConfig()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	healthHandler(cfg).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}

	body := decodeJSONBody(t, rr)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if _, ok := body["timestamp"].(string); !ok {
		t.Error("timestamp missing from response")
	}

	configMap, ok := body["config"].(map[string]interface{})
	if !ok {
		t.Fatal("config missing from response")
	}
	if configMap["bucket"] != "pitch-videos" {
		t.Errorf("config.bucket = %v, want pitch-videos", configMap["bucket"])
	}
	if got, ok := configMap["hasCredentials"].(bool); !ok || !got {
		t.Errorf("config.hasCredentials = %v, want true", configMap["hasCredentials"])
	}
	if got, ok := configMap["presignedExpirySeconds"].(float64); !ok || got != 900 {
		t.Errorf("config.presignedExpirySeconds = %v, want 900", configMap["presignedExpirySeconds"])
	}
}

func TestPresignHandler_Success(t *testing.T) {
	cfg := testServerConfig()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/get-presigned-url",
		bytes.NewBufferString(`{"fileName":"pitch.mp4","contentType":"video/mp4"}`))

	presignHandler(cfg).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}

	body := decodeJSONBody(t, rr)
	if got, ok := body["success"].(bool); !ok || !got {
		t.Errorf("success = %v, want true", body["success"])
	}
	for _, field := range []string{"presignedUrl", "key", "bucket", "region", "expiresIn"} {
		if _, ok := body[field]; !ok {
			t.Errorf("%s missing from response", field)
		}
	}
}

func TestPresignHandler_MissingFileName(t *testing.T) {
	cfg := testServerConfig()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/get-presigned-url",
		bytes.NewBufferString(`{"contentType":"video/mp4"}`))

	presignHandler(cfg).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusBadRequest)
	}

	body := decodeJSONBody(t, rr)
	if got, ok := body["success"].(bool); !ok || got {
		t.Errorf("success = %v, want false", body["success"])
	}
	if body["error"] != "fileName is required" {
		t.Errorf("error = %v, want fileName is required", body["error"])
	}
}

func TestPresignHandler_NotConfigured(t *testing.T) {
	cfg := testServerConfig()
	cfg.Uploader = &fakeUploader{err: upload.ErrNotConfigured}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/get-presigned-url",
		bytes.NewBufferString(`{"fileName":"pitch.mp4"}`))

	presignHandler(cfg).ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}

	body := decodeJSONBody(t, rr)
	if body["error"] != "upload not configured" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestRouter_RequiresAuthForSessions(t *testing.T) {
	router := NewRouter(testServerConfig())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sessions",
		bytes.NewBufferString(`{"media_uri":"file:///a.mp4","duration":10}`))

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRouter_HealthIsUnauthenticated(t *testing.T) {
	router := NewRouter(testServerConfig())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
}
