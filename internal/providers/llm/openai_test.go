package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/isthissoup/internal/models"
)

func sseChunk(content string) string {
	return fmt.Sprintf(`data: {"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4o","choices":[{"index":0,"delta":{"content":%q}}]}`+"\n\n", content)
}

func TestOpenAI_StreamAnswer(t *testing.T) {
	bodies := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies <- body

		w.Header().Set("Content-Type", "text/event-stream")
		for _, c := range []string{"**No.**", "\n\nRamen has", " substantial noodles..."} {
			fmt.Fprint(w, sseChunk(c))
			w.(http.Flusher).Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	p, err := NewOpenAI("test-key", srv.URL+"/v1", "")
	require.NoError(t, err)

	got, err := drain(p.StreamAnswer(context.Background(), models.Prompt{
		System:          "be a food critic",
		User:            "Is 'ramen' soup?",
		MaxOutputTokens: 300,
	}))

	require.NoError(t, err)
	assert.Equal(t, []string{"**No.**", "\n\nRamen has", " substantial noodles..."}, got)

	body := <-bodies
	assert.Equal(t, "gpt-4o", body["model"])
	assert.Equal(t, float64(300), body["max_tokens"])
	assert.Equal(t, true, body["stream"])
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, map[string]any{"role": "system", "content": "be a food critic"}, msgs[0])
	assert.Equal(t, map[string]any{"role": "user", "content": "Is 'ramen' soup?"}, msgs[1])
}

func TestOpenAI_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	p, err := NewOpenAI("bad-key", srv.URL+"/v1", "gpt-4o")
	require.NoError(t, err)

	got, err := drain(p.StreamAnswer(context.Background(), models.Prompt{User: "Is 'pho' soup?"}))

	assert.Empty(t, got)
	assert.Error(t, err)
}

func TestNewOpenAI_RequiresKey(t *testing.T) {
	_, err := NewOpenAI("", "", "")
	assert.Error(t, err)
}
