package ai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visioneers/marketplace-api/internal/config"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		OpenAIAPIKey:  "test-key",
		OpenAIBaseURL: baseURL,
		AgentModel:    "gpt-4o",
		WhisperModel:  "whisper-1",
		TTSModel:      "tts-1",
		TTSVoice:      "alloy",
		AITimeout:     5 * time.Second,
	}
}

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"model": "gpt-4o",
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
		"usage": map[string]int{"total_tokens": 42},
	})
	return string(b)
}

func TestChat(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(completionBody("  hello world \n")))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	result, err := client.Chat(
		[]Message{{Role: "user", Content: "hi"}},
		ChatOptions{MaxTokens: 100, Temperature: 0.5},
	)
	require.NoError(t, err)

	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o", gotBody["model"])
	assert.Equal(t, float64(100), gotBody["max_tokens"])

	assert.Equal(t, "hello world", result.Content)
	assert.Equal(t, "gpt-4o", result.Model)
	assert.Equal(t, 42, result.TokensUsed)
}

func TestChatAzureRouting(t *testing.T) {
	var gotPath, gotQuery, gotAPIKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAPIKey = r.Header.Get("api-key")
		w.Write([]byte(completionBody("ok")))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.OpenAIAPIBase = srv.URL
	cfg.OpenAIDeploymentName = "my-deployment"
	cfg.OpenAIAPIVersion = "2024-02-15-preview"

	client := NewClient(cfg)
	_, err := client.Chat([]Message{{Role: "user", Content: "hi"}}, ChatOptions{})
	require.NoError(t, err)

	assert.Equal(t, "/openai/deployments/my-deployment/chat/completions", gotPath)
	assert.Equal(t, "api-version=2024-02-15-preview", gotQuery)
	assert.Equal(t, "test-key", gotAPIKey)
}

func TestChatErrors(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		cfg := testConfig("http://localhost:0")
		cfg.OpenAIAPIKey = ""
		_, err := NewClient(cfg).Chat(nil, ChatOptions{})
		assert.Error(t, err)
	})

	t.Run("non-200 surfaces the body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := NewClient(testConfig(srv.URL)).Chat(nil, ChatOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("empty choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices": []}`))
		}))
		defer srv.Close()

		_, err := NewClient(testConfig(srv.URL)).Chat(nil, ChatOptions{})
		assert.Error(t, err)
	})
}

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "text", r.FormValue("response_format"))

		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "audio.wav", header.Filename)

		w.Write([]byte("set the price to fifty dollars\n"))
	}))
	defer srv.Close()

	text, err := NewClient(testConfig(srv.URL)).Transcribe([]byte{0x52, 0x49, 0x46, 0x46})
	require.NoError(t, err)
	assert.Equal(t, "set the price to fifty dollars", text)
}

func TestSpeak(t *testing.T) {
	audio := []byte{0x01, 0x02, 0x03}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tts-1", req["model"])
		assert.Equal(t, "alloy", req["voice"])
		assert.Equal(t, "hello", req["input"])
		w.Write(audio)
	}))
	defer srv.Close()

	got, err := NewClient(testConfig(srv.URL)).Speak("hello")
	require.NoError(t, err)
	assert.Equal(t, audio, got)
}

func TestTrimMarkdownFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, TrimMarkdownFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, TrimMarkdownFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, TrimMarkdownFences(`{"a":1}`))
}
