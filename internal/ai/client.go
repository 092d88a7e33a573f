// Package ai is a thin client for OpenAI-compatible chat, vision and speech
// endpoints, supporting both standard OpenAI and Azure deployment URLs.
package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/visioneers/marketplace-api/internal/config"
)

// Message is a role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions tune a single completion call. Model falls back to the
// configured agent model when empty.
type ChatOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// ChatResult is a completed chat turn.
type ChatResult struct {
	Content    string
	Model      string
	TokensUsed int
}

// ChatCompleter is the surface the agent service depends on.
type ChatCompleter interface {
	Chat(messages []Message, opts ChatOptions) (*ChatResult, error)
}

type Client struct {
	cfg    *config.Config
	client *http.Client
}

func NewClient(cfg *config.Config) *Client {
	timeout := cfg.AITimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model       string      `json:"model,omitempty"`
	Messages    interface{} `json:"messages"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
	Temperature float64     `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Chat runs one completion against the configured provider.
func (c *Client) Chat(messages []Message, opts ChatOptions) (*ChatResult, error) {
	return c.completeRaw(messages, opts)
}

// visionContent is the multi-part message content used for image analysis.
type visionContent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL *struct {
		URL string `json:"url"`
	} `json:"image_url,omitempty"`
}

type visionMessage struct {
	Role    string          `json:"role"`
	Content []visionContent `json:"content"`
}

// ChatVision sends a prompt plus one base64 JPEG to the vision model.
func (c *Client) ChatVision(prompt, imageBase64 string, opts ChatOptions) (*ChatResult, error) {
	img := &struct {
		URL string `json:"url"`
	}{URL: "data:image/jpeg;base64," + imageBase64}

	msgs := []visionMessage{{
		Role: "user",
		Content: []visionContent{
			{Type: "text", Text: prompt},
			{Type: "image_url", ImageURL: img},
		},
	}}
	return c.completeRaw(msgs, opts)
}

func (c *Client) completeRaw(messages interface{}, opts ChatOptions) (*ChatResult, error) {
	if c.cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}

	model := opts.Model
	if model == "" {
		model = c.cfg.AgentModel
	}

	var apiURL string
	req := chatRequest{
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	if c.cfg.AzureEnabled() {
		// Azure routes by deployment, not by model name.
		apiURL = fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			strings.TrimSuffix(c.cfg.OpenAIAPIBase, "/"), c.cfg.OpenAIDeploymentName, c.cfg.OpenAIAPIVersion)
	} else {
		apiURL = c.cfg.OpenAIBaseURL + "/chat/completions"
		req.Model = model
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest("POST", apiURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setAuth(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	usedModel := parsed.Model
	if usedModel == "" {
		usedModel = model
	}
	return &ChatResult{
		Content:    strings.TrimSpace(parsed.Choices[0].Message.Content),
		Model:      usedModel,
		TokensUsed: parsed.Usage.TotalTokens,
	}, nil
}

// Transcribe converts audio bytes to text via the Whisper endpoint.
func (c *Client) Transcribe(audio []byte) (string, error) {
	if c.cfg.OpenAIAPIKey == "" {
		return "", fmt.Errorf("API key not configured")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audio); err != nil {
		return "", err
	}
	if err := writer.WriteField("model", c.cfg.WhisperModel); err != nil {
		return "", err
	}
	if err := writer.WriteField("response_format", "text"); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	httpReq, err := http.NewRequest("POST", c.cfg.OpenAIBaseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	c.setAuth(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned %d: %s", resp.StatusCode, string(body))
	}
	return strings.TrimSpace(string(body)), nil
}

type speechRequest struct {
	Model string `json:"model"`
	Voice string `json:"voice"`
	Input string `json:"input"`
}

// Speak converts text to audio bytes via the TTS endpoint.
func (c *Client) Speak(text string) ([]byte, error) {
	if c.cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}

	body, err := json.Marshal(speechRequest{
		Model: c.cfg.TTSModel,
		Voice: c.cfg.TTSVoice,
		Input: text,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest("POST", c.cfg.OpenAIBaseURL+"/audio/speech", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setAuth(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned %d: %s", resp.StatusCode, string(audio))
	}
	return audio, nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.cfg.AzureEnabled() {
		req.Header.Set("api-key", c.cfg.OpenAIAPIKey)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)
	}
}

// TrimMarkdownFences removes ```json fences models wrap JSON answers in.
func TrimMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
