package http

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bodhi/internal/chatcompletion"
	"bodhi/internal/config"
	"bodhi/internal/engine"
	"bodhi/internal/hub"
	"bodhi/internal/objs"
	"bodhi/internal/store"
)

// fakeModel is an engine.ModelHandle that replays a fixed token sequence,
// letting these tests drive the real HTTP layer without linking the
// llama.cpp cgo binding.
type fakeModel struct {
	params objs.GptParams
	tokens []string
}

func (m *fakeModel) Predict(_ string, _ engine.SamplingParams, stop <-chan struct{}, out chan<- engine.CompletionChunk) error {
	defer close(out)
	for _, tok := range m.tokens {
		select {
		case out <- engine.CompletionChunk{Token: tok}:
		case <-stop:
			return nil
		}
	}
	return nil
}

func (m *fakeModel) Close() error           { return nil }
func (m *fakeModel) Params() objs.GptParams { return m.params }

// testServer builds a Server with its gin engine wired up through
// setupRoutes, as Start does but without Start's CORS layer and without
// binding a real listener, over a pipeline whose
// shared model context is seeded with a fake engine via
// engine.NewWithLoader.
func testServer(t *testing.T, tokens []string) *Server {
	t.Helper()

	bodhiHome := t.TempDir()
	hfHome := t.TempDir()

	h, err := hub.New(bodhiHome, hfHome)
	require.NoError(t, err)

	alias := objs.Alias{
		Alias:        "tiny:latest",
		Repo:         "owner/repo",
		Filename:     "model.gguf",
		Snapshot:     "main",
		Features:     []objs.Feature{objs.FeatureChat},
		ChatTemplate: objs.ChatTemplate{ID: objs.ChatTemplateLlama3},
	}
	require.NoError(t, h.SaveAlias(alias))

	snapshotDir := filepath.Join(hfHome, "hub", "models--owner--repo", "snapshots", "main")
	require.NoError(t, os.MkdirAll(snapshotDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(snapshotDir, "model.gguf"), []byte("gguf"), 0o644))

	smc := engine.NewWithLoader(func(p objs.GptParams) (engine.ModelHandle, error) {
		return &fakeModel{params: p, tokens: tokens}, nil
	})
	pipeline := chatcompletion.New(h, smc)

	conversations, err := store.Open(filepath.Join(t.TempDir(), "bodhi.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conversations.Close() })

	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 1135, ShutdownTimeout: 30},
		Home:   config.HomeConfig{BodhiHome: bodhiHome, HFHome: hfHome},
	}

	s := NewServer(cfg, logger, pipeline, h, conversations)
	gin.SetMode(gin.TestMode)
	s.engine = gin.New()
	s.setupRoutes()
	return s
}

func TestPing(t *testing.T) {
	s := testServer(t, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	s.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestChatCompletionsUnknownModelReturns404(t *testing.T) {
	s := testServer(t, nil)

	body := `{"model":"does-not-exist","messages":[{"role":"user","content":"hi"}]}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var errBody chatcompletion.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.Contains(t, errBody.Error.Message, "does-not-exist")
}

func TestChatCompletionsNonStreaming(t *testing.T) {
	s := testServer(t, []string{"hel", "lo"})

	body := `{"model":"tiny:latest","messages":[{"role":"user","content":"hi"}]}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp chatcompletion.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "hello", resp.Choices[0].Message.Content)
	assert.Equal(t, "tiny:latest", resp.Model)
	assert.Equal(t, "stop", resp.Choices[0].FinishReason)
}

// TestChatCompletionsStreaming drives the SSE path through a real
// listening server: httptest.NewRecorder doesn't implement http.Flusher,
// so the handler's incremental flushes would otherwise go unobserved.
func TestChatCompletionsStreaming(t *testing.T) {
	s := testServer(t, []string{"a", "b", "c"})

	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	body := `{"model":"tiny:latest","stream":true,"messages":[{"role":"user","content":"hi"}]}`
	resp, err := http.Post(srv.URL+"/v1/chat/completions", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var frames []string
	scanner := bufio.NewScanner(resp.Body)
	var current strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if current.Len() > 0 {
				frames = append(frames, current.String())
				current.Reset()
			}
			continue
		}
		current.WriteString(strings.TrimPrefix(line, "data: "))
	}
	require.NoError(t, scanner.Err())

	require.Len(t, frames, 4, "3 token chunks plus the terminal [DONE] frame")
	assert.Equal(t, "[DONE]", frames[3])

	var content strings.Builder
	for _, f := range frames[:3] {
		var chunk chatcompletion.Chunk
		require.NoError(t, json.Unmarshal([]byte(f), &chunk))
		require.Len(t, chunk.Choices, 1)
		content.WriteString(chunk.Choices[0].Delta.Content)
	}
	assert.Equal(t, "abc", content.String())
}
