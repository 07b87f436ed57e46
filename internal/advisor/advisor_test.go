package advisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeReturnsPlan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])
		msgs := req["messages"].([]any)
		require.Len(t, msgs, 2)
		system := msgs[0].(map[string]any)
		assert.Equal(t, "system", system["role"])
		assert.Contains(t, system["content"], "不逆势抄底")

		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"buy at 100"}}]}`))
	}))
	defer srv.Close()

	a := New("test-key", srv.URL, "test-model")
	plan, err := a.Analyze(context.Background(), "Ticker: AAPL, Price: 100.00", "不逆势抄底")
	require.NoError(t, err)
	assert.Equal(t, "buy at 100", plan)
}

func TestAnalyzeWithoutKey(t *testing.T) {
	a := New("", "", "")
	assert.False(t, a.Enabled())
	_, err := a.Analyze(context.Background(), "ctx", "")
	assert.Error(t, err)
}

func TestAnalyzeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	a := New("k", srv.URL, "m")
	_, err := a.Analyze(context.Background(), "ctx", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestChatStreamsChunks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, true, req["stream"])

		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"hel\"}}]}\n\n"))
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n"))
		w.Write([]byte(": keep-alive comment, ignored\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer srv.Close()

	a := New("k", srv.URL, "m")
	var got strings.Builder
	err := a.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, "market ctx", "rules",
		func(chunk string) { got.WriteString(chunk) })
	require.NoError(t, err)
	assert.Equal(t, "hello", got.String())
}

func TestChatStopsOnCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"first\"}}]}\n\n"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	a := New("k", srv.URL, "m")
	err := a.Chat(ctx, []Message{{Role: "user", Content: "hi"}}, "", "",
		func(string) { cancel() })
	assert.Error(t, err)
}
