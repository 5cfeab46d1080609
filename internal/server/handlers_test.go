package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/synthetix-ai/drafter/internal/domain"
	"github.com/synthetix-ai/drafter/internal/drafts"
	"github.com/synthetix-ai/drafter/pkg/config"
	pkgerrors "github.com/synthetix-ai/drafter/pkg/errors"
	"github.com/synthetix-ai/drafter/pkg/logger"
)

// fakeComposer scripts composer behavior per test.
type fakeComposer struct {
	generateErr error
	records     []domain.DraftRecord

	editErr  error
	imageErr error

	speechURL string
	speechErr error

	authenticated bool

	batches    []*domain.Batch
	historyErr error

	lastIdea     string
	lastTone     domain.Tone
	lastPlatform domain.Platform
	lastRatio    domain.AspectRatio
	lastSize     domain.ImageSize
}

func (f *fakeComposer) Generate(ctx context.Context, idea string, tone domain.Tone) ([]domain.DraftRecord, error) {
	f.lastIdea, f.lastTone = idea, tone
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return f.records, nil
}

func (f *fakeComposer) Snapshot() []domain.DraftRecord { return f.records }

func (f *fakeComposer) EditContent(platform domain.Platform, content string) ([]domain.DraftRecord, error) {
	f.lastPlatform = platform
	if f.editErr != nil {
		return nil, f.editErr
	}
	return f.records, nil
}

func (f *fakeComposer) RequestImage(ctx context.Context, platform domain.Platform, ratio domain.AspectRatio, size domain.ImageSize) error {
	f.lastPlatform, f.lastRatio, f.lastSize = platform, ratio, size
	return f.imageErr
}

func (f *fakeComposer) RequestSpeech(ctx context.Context, platform domain.Platform) (string, error) {
	f.lastPlatform = platform
	return f.speechURL, f.speechErr
}

func (f *fakeComposer) IsAuthenticated(ctx context.Context) (bool, error) {
	return f.authenticated, nil
}

func (f *fakeComposer) History(ctx context.Context, limit int) ([]*domain.Batch, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.batches, nil
}

func (f *fakeComposer) ScheduleHistoryCleanup(ctx context.Context) error { return nil }

func (f *fakeComposer) Close() {}

func newTestServer(t *testing.T, fake *fakeComposer) *Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.RateLimit.GeneratePerMinute = 100
	cfg.RateLimit.GenerateBurst = 100

	return New(Opts{
		Composer: fake,
		Logger:   logger.NewNop(),
		Config:   cfg,
	})
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	s.httpSrv.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	return resp.Error
}

func TestHandleGenerateSuccess(t *testing.T) {
	t.Parallel()

	fake := &fakeComposer{records: []domain.DraftRecord{
		{Platform: domain.PlatformInstagram, Content: "hello", SuggestedAspectRatio: domain.RatioSquare},
	}}
	s := newTestServer(t, fake)

	rec := do(t, s, http.MethodPost, "/api/generate", `{"idea":"eco sneakers","tone":"Witty"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if fake.lastIdea != "eco sneakers" || fake.lastTone != domain.ToneWitty {
		t.Fatalf("composer called with idea=%q tone=%q", fake.lastIdea, fake.lastTone)
	}

	var resp draftsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Drafts) != 1 || resp.Drafts[0].Platform != domain.PlatformInstagram {
		t.Fatalf("unexpected drafts payload: %+v", resp.Drafts)
	}
}

func TestHandleGenerateStatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{name: "bad json", body: `{"idea":`, want: http.StatusBadRequest},
		{name: "unknown tone", body: `{"idea":"x","tone":"Sarcastic"}`, want: http.StatusBadRequest},
		{name: "empty idea", body: `{"idea":"","tone":"Professional"}`, err: pkgerrors.ErrInvalidInput, want: http.StatusBadRequest},
		{name: "missing credential", body: `{"idea":"x","tone":"Professional"}`, err: pkgerrors.ErrMissingCredential, want: http.StatusUnauthorized},
		{name: "exhausted fallback", body: `{"idea":"x","tone":"Professional"}`, err: pkgerrors.ErrExhaustedFallback, want: http.StatusBadGateway},
		{name: "unexpected", body: `{"idea":"x","tone":"Professional"}`, err: context.DeadlineExceeded, want: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := newTestServer(t, &fakeComposer{generateErr: tc.err})
			rec := do(t, s, http.MethodPost, "/api/generate", tc.body)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
			if msg := decodeError(t, rec); msg == "" {
				t.Fatal("expected a non-empty error message")
			}
		})
	}
}

func TestHandleGenerateRateLimited(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.RateLimit.GeneratePerMinute = 1
	cfg.RateLimit.GenerateBurst = 1
	s := New(Opts{Composer: &fakeComposer{}, Logger: logger.NewNop(), Config: cfg})

	first := do(t, s, http.MethodPost, "/api/generate", `{"idea":"x","tone":"Professional"}`)
	if first.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", first.Code)
	}

	second := do(t, s, http.MethodPost, "/api/generate", `{"idea":"x","tone":"Professional"}`)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", second.Code)
	}
}

func TestHandleDrafts(t *testing.T) {
	t.Parallel()

	fake := &fakeComposer{records: []domain.DraftRecord{
		{Platform: domain.PlatformTwitter, Content: "short take"},
	}}
	s := newTestServer(t, fake)

	rec := do(t, s, http.MethodGet, "/api/drafts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp draftsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Drafts) != 1 || resp.Drafts[0].Content != "short take" {
		t.Fatalf("unexpected drafts payload: %+v", resp.Drafts)
	}
}

func TestHandleEditContent(t *testing.T) {
	t.Parallel()

	fake := &fakeComposer{records: []domain.DraftRecord{{Platform: domain.PlatformLinkedIn}}}
	s := newTestServer(t, fake)

	rec := do(t, s, http.MethodPatch, "/api/drafts/LinkedIn", `{"content":"Updated copy"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if fake.lastPlatform != domain.PlatformLinkedIn {
		t.Fatalf("composer called with platform %q", fake.lastPlatform)
	}
}

func TestHandleEditContentUnknownPlatform(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeComposer{})

	rec := do(t, s, http.MethodPatch, "/api/drafts/Snapchat", `{"content":"x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleEditContentRecordMissing(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeComposer{editErr: drafts.ErrNotFound})

	rec := do(t, s, http.MethodPatch, "/api/drafts/Reddit", `{"content":"x"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandleRequestImageAccepted(t *testing.T) {
	t.Parallel()

	fake := &fakeComposer{}
	s := newTestServer(t, fake)

	rec := do(t, s, http.MethodPost, "/api/drafts/Instagram/image", `{"aspectRatio":"16:9","size":"2K"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if fake.lastRatio != domain.RatioLandscape || fake.lastSize != domain.Size2K {
		t.Fatalf("composer called with ratio=%q size=%q", fake.lastRatio, fake.lastSize)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["status"] != "generating" {
		t.Fatalf("unexpected body: %v", resp)
	}
}

func TestHandleRequestImageDefaultsSize(t *testing.T) {
	t.Parallel()

	fake := &fakeComposer{}
	s := newTestServer(t, fake)

	rec := do(t, s, http.MethodPost, "/api/drafts/Instagram/image", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if fake.lastRatio != "" || fake.lastSize != domain.Size1K {
		t.Fatalf("composer called with ratio=%q size=%q", fake.lastRatio, fake.lastSize)
	}
}

func TestHandleRequestImageBadRatio(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeComposer{})

	rec := do(t, s, http.MethodPost, "/api/drafts/Instagram/image", `{"aspectRatio":"7:3"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleRequestSpeech(t *testing.T) {
	t.Parallel()

	fake := &fakeComposer{speechURL: "https://cdn.example/audio.mp3"}
	s := newTestServer(t, fake)

	rec := do(t, s, http.MethodPost, "/api/drafts/TikTok/speech", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["audioUrl"] != "https://cdn.example/audio.mp3" {
		t.Fatalf("unexpected body: %v", resp)
	}
}

func TestHandleRequestSpeechFailure(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeComposer{speechErr: pkgerrors.ErrTransport})

	rec := do(t, s, http.MethodPost, "/api/drafts/TikTok/speech", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestHandleAuth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeComposer{authenticated: true})

	rec := do(t, s, http.MethodGet, "/api/auth", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]bool
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp["authenticated"] {
		t.Fatalf("unexpected body: %v", resp)
	}
}

func TestHandleHistoryLimitValidation(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeComposer{})

	for _, raw := range []string{"0", "-3", "101", "abc"} {
		rec := do(t, s, http.MethodGet, "/api/history?limit="+raw, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("limit=%s: expected 400, got %d", raw, rec.Code)
		}
	}

	rec := do(t, s, http.MethodGet, "/api/history?limit=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandleHealthz(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &fakeComposer{})

	rec := do(t, s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz response: %d %q", rec.Code, rec.Body.String())
	}
}
