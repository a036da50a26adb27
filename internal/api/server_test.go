package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"replyai/internal/domain"
	"replyai/internal/metrics"
	"replyai/internal/prompt"
	"replyai/internal/reply"
)

type mockProvider struct {
	mu      sync.Mutex
	content string
	err     error
	last    domain.ChatRequest
	calls   int
}

func (m *mockProvider) Name() string                  { return "mock" }
func (m *mockProvider) Healthy(context.Context) error { return nil }
func (m *mockProvider) Chat(_ context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.last = req
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ChatResponse{Content: m.content}, nil
}

func (m *mockProvider) set(content string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content, m.err = content, err
}

func (m *mockProvider) snapshot() (domain.ChatRequest, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, m.calls
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestServer(t *testing.T, p *mockProvider) (*httptest.Server, *metrics.Replies) {
	t.Helper()
	composer, err := prompt.New()
	require.NoError(t, err)
	collector := metrics.NewCollector("replyai")
	rm := metrics.NewReplies(collector)

	svc := reply.NewService(reply.Config{
		Provider:    p,
		Composer:    composer,
		Model:       "gpt-4.1-mini",
		Temperature: 0.85,
		TopP:        0.9,
		Metrics:     rm,
		Logger:      testLogger(),
	})
	s := NewServer(ServerConfig{
		Replies:      svc,
		Metrics:      collector,
		ReplyMetrics: rm,
		Version:      "test",
		ProviderName: p.Name(),
		Logger:       testLogger(),
	})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, rm
}

func postJSON(t *testing.T, url string, body string) (*http.Response, map[string]string) {
	t.Helper()
	resp, err := http.Post(url+"/api/generate-reply", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

const scenarioBody = `{
	"conversationHistory": [{"role": "user", "content": "Thanks! Tell me more"}],
	"salespersonProfile": {"name": "Ana", "agency": "", "role": "", "signature": ""},
	"scoutingMessage": "Hi, loved your store",
	"storeOwnerReply": "Thanks! Tell me more",
	"tone": "friendly",
	"goal": "book_call",
	"length": "short",
	"salesProofUrls": [],
	"portfolioUrls": []
}`

func TestGenerateReply_Success(t *testing.T) {
	p := &mockProvider{content: "  Happy to explain! Free for a quick call tomorrow?  "}
	ts, _ := newTestServer(t, p)

	resp, out := postJSON(t, ts.URL, scenarioBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Happy to explain! Free for a quick call tomorrow?", out["reply"])
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	last, _ := p.snapshot()
	system := last.Messages[0].Content
	require.Contains(t, system, "Use a warm, friendly, relaxed tone.")
	require.Contains(t, system, "Your main goal is to book a quick call or voice chat and agree on a time.")
}

func TestGenerateReply_MissingFields(t *testing.T) {
	p := &mockProvider{content: "x"}
	ts, _ := newTestServer(t, p)

	resp, out := postJSON(t, ts.URL, `{"scoutingMessage": "", "storeOwnerReply": "Thanks"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, map[string]string{"error": "scoutingMessage and storeOwnerReply are required"}, out)
	_, calls := p.snapshot()
	require.Zero(t, calls)
}

func TestGenerateReply_InvalidJSON(t *testing.T) {
	ts, _ := newTestServer(t, &mockProvider{})

	resp, out := postJSON(t, ts.URL, `{"scoutingMessage": `)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid JSON body", out["error"])
}

func TestGenerateReply_UpstreamFailure(t *testing.T) {
	p := &mockProvider{err: errors.New("openai 500: upstream exploded with secret detail")}
	ts, rm := newTestServer(t, p)

	resp, out := postJSON(t, ts.URL, scenarioBody)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "Failed to generate reply", out["error"])
	require.EqualValues(t, 1, rm.OutcomeCount(metrics.OutcomeUpstreamError))

	// The server keeps serving after a failed request.
	p.set("recovered", nil)
	resp, out = postJSON(t, ts.URL, scenarioBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "recovered", out["reply"])
}

func TestGenerateReply_EmptyCompletion(t *testing.T) {
	ts, _ := newTestServer(t, &mockProvider{content: "   "})

	resp, out := postJSON(t, ts.URL, scenarioBody)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "No reply generated", out["error"])
}

func TestRequestID_Propagated(t *testing.T) {
	ts, _ := newTestServer(t, &mockProvider{})

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/status", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestStatus(t *testing.T) {
	ts, _ := newTestServer(t, &mockProvider{})

	resp, err := http.Get(ts.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "ok", out["status"])
	require.Equal(t, "test", out["version"])
	require.Equal(t, "mock", out["provider"])
	_, err = time.Parse(time.RFC3339, out["time"].(string))
	require.NoError(t, err)
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, &mockProvider{content: "hello"})
	postJSON(t, ts.URL, scenarioBody)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Contains(t, string(body), `replyai_replies_total{outcome="ok"} 1`)
	require.Contains(t, string(body), `replyai_http_requests_total{route="/api/generate-reply",status="200"} 1`)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewServer(ServerConfig{Replies: reply.NewService(reply.Config{}), Logger: testLogger()})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/status")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

type slowGenerator struct {
	entered chan struct{}
	release chan struct{}
}

func (g *slowGenerator) GenerateReply(ctx context.Context, _ domain.GenerationRequest) (string, error) {
	close(g.entered)
	<-g.release
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpstreamError, err)
	}
	return "finished after shutdown began", nil
}

func TestServe_DrainsInFlightRequest(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	gen := &slowGenerator{entered: make(chan struct{}), release: make(chan struct{})}
	s := NewServer(ServerConfig{Replies: gen, ShutdownTimeout: 5 * time.Second, Logger: testLogger()})
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- s.Serve(ctx, ln) }()

	type result struct {
		status int
		body   map[string]string
		err    error
	}
	replied := make(chan result, 1)
	go func() {
		resp, err := http.Post("http://"+ln.Addr().String()+"/api/generate-reply", "application/json", strings.NewReader(scenarioBody))
		if err != nil {
			replied <- result{err: err}
			return
		}
		defer resp.Body.Close()
		var out map[string]string
		err = json.NewDecoder(resp.Body).Decode(&out)
		replied <- result{status: resp.StatusCode, body: out, err: err}
	}()

	<-gen.entered
	cancel()

	select {
	case err := <-served:
		t.Fatalf("Serve returned while a request was in flight: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(gen.release)
	r := <-replied
	require.NoError(t, r.err)
	require.Equal(t, http.StatusOK, r.status)
	require.Equal(t, "finished after shutdown began", r.body["reply"])

	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after draining")
	}
}
