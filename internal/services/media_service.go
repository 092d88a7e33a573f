package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/visioneers/marketplace-api/internal/ai"
	"github.com/visioneers/marketplace-api/internal/config"
	"github.com/visioneers/marketplace-api/internal/models"
)

// suggestibleCategories is the fixed taxonomy offered for classification.
var suggestibleCategories = []string{
	"Electronics", "Clothing & Fashion", "Home & Garden", "Sports & Outdoors",
	"Books & Media", "Automotive", "Health & Beauty", "Toys & Games",
	"Food & Beverages", "Other",
}

// ProductAnalysis is the listing candidate extracted from a product photo.
// Confidence degrades through the fallback tiers instead of erroring.
type ProductAnalysis struct {
	Name           string                 `json:"name"`
	Brand          string                 `json:"brand"`
	Model          string                 `json:"model"`
	SuggestedPrice float64                `json:"suggested_price"`
	Description    string                 `json:"description"`
	Specifications map[string]interface{} `json:"specifications"`
	Condition      string                 `json:"condition"`
	Confidence     float64                `json:"confidence"`
	Error          string                 `json:"error,omitempty"`
}

// MediaService wraps the vision and speech endpoints with product-shaped
// prompts and fail-soft parsing.
type MediaService struct {
	cfg    *config.Config
	client *ai.Client
}

func NewMediaService(cfg *config.Config, client *ai.Client) *MediaService {
	return &MediaService{cfg: cfg, client: client}
}

const analyzePrompt = `Analyze this product image and extract the following information:

- Product name
- Brand
- Model (if applicable)
- Suggested price (based on market research)
- Product description
- Key specifications/features
- Product condition (new, used, refurbished)

Return the information in JSON format with these fields:
{
    "name": "Product Name",
    "brand": "Brand Name",
    "model": "Model Number",
    "suggested_price": 0.0,
    "description": "Product description",
    "specifications": {
        "key1": "value1",
        "key2": "value2"
    },
    "condition": "new/used/refurbished",
    "confidence": 0.85
}

Be accurate and realistic with pricing. If you can't identify the product clearly, indicate low confidence.`

// AnalyzeProductImage runs a vision pass and always returns a well-formed
// candidate: parsed JSON at the model's confidence, raw text at 0.5, parse
// failure at 0.3, API failure at 0.0 with the error recorded.
func (s *MediaService) AnalyzeProductImage(imageBase64 string) *ProductAnalysis {
	result, err := s.client.ChatVision(analyzePrompt, imageBase64, ai.ChatOptions{
		Model:       s.cfg.VisionModel,
		MaxTokens:   500,
		Temperature: 0.1,
	})
	if err != nil {
		slog.Error("image analysis failed", "error", err)
		return &ProductAnalysis{
			Name:           "Product",
			Brand:          "Unknown",
			Description:    "Product information could not be extracted automatically.",
			Specifications: map[string]interface{}{},
			Condition:      "new",
			Confidence:     0.0,
			Error:          err.Error(),
		}
	}

	content := result.Content
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return &ProductAnalysis{
			Name:           "Product",
			Brand:          "Unknown",
			Description:    content,
			Specifications: map[string]interface{}{},
			Condition:      "new",
			Confidence:     0.5,
		}
	}

	var analysis ProductAnalysis
	if err := json.Unmarshal([]byte(content[start:end+1]), &analysis); err != nil {
		slog.Warn("image analysis returned malformed JSON", "error", err)
		return &ProductAnalysis{
			Name:           "Product",
			Brand:          "Unknown",
			Description:    content,
			Specifications: map[string]interface{}{},
			Condition:      "new",
			Confidence:     0.3,
		}
	}

	if analysis.Name == "" {
		analysis.Name = "Product"
	}
	if analysis.Condition == "" {
		analysis.Condition = "new"
	}
	if analysis.Specifications == nil {
		analysis.Specifications = map[string]interface{}{}
	}
	return &analysis
}

// SuggestCategory picks one label from the fixed taxonomy based on the
// information already extracted from the image. Anything off-list, and any
// failure, becomes "Other".
func (s *MediaService) SuggestCategory(analysis *ProductAnalysis) string {
	prompt := fmt.Sprintf(`Based on this product information, suggest the most appropriate category:

Product: %s
Brand: %s
Description: %s

Choose from these categories:
- %s

Respond with just the category name.`,
		analysis.Name, analysis.Brand, analysis.Description,
		strings.Join(suggestibleCategories, "\n- "))

	result, err := s.client.Chat(
		[]ai.Message{{Role: models.RoleMessageUser, Content: prompt}},
		ai.ChatOptions{MaxTokens: 20, Temperature: 0.1},
	)
	if err != nil {
		slog.Warn("category suggestion failed", "error", err)
		return "Other"
	}

	suggestion := strings.TrimSpace(result.Content)
	for _, category := range suggestibleCategories {
		if strings.EqualFold(suggestion, category) {
			return category
		}
	}
	return "Other"
}

// SpeechToText transcribes raw audio bytes.
func (s *MediaService) SpeechToText(audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("empty audio payload")
	}
	return s.client.Transcribe(audio)
}

// TextToSpeech synthesizes audio for a reply.
func (s *MediaService) TextToSpeech(text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text")
	}
	return s.client.Speak(text)
}
