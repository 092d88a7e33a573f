package handlers

import (
	"encoding/base64"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/visioneers/marketplace-api/internal/dto"
	"github.com/visioneers/marketplace-api/internal/middleware"
	"github.com/visioneers/marketplace-api/internal/services"
)

// SellerHandler serves the seller console: product CRUD, image-assisted
// listing, the seller-mode assistant and store analytics.
type SellerHandler struct {
	products *services.ProductService
	agent    *services.AgentService
	media    *services.MediaService
}

func NewSellerHandler(products *services.ProductService, agent *services.AgentService, media *services.MediaService) *SellerHandler {
	return &SellerHandler{products: products, agent: agent, media: media}
}

func (h *SellerHandler) ListProducts(c *fiber.Ctx) error {
	sellerID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	products, err := h.products.BySeller(sellerID, c.QueryInt("limit", 50))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load products",
		})
	}
	return c.JSON(productList(products))
}

func (h *SellerHandler) CreateProduct(c *fiber.Ctx) error {
	sellerID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.ProductCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	product, err := h.products.CreateProduct(sellerID, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(ProductView(product))
}

func (h *SellerHandler) UpdateProduct(c *fiber.Ctx) error {
	sellerID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid product id",
		})
	}

	var req dto.ProductUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	product, err := h.products.UpdateProduct(sellerID, uint(id), &req)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Product not found",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.JSON(ProductView(product))
}

func (h *SellerHandler) DeleteProduct(c *fiber.Ctx) error {
	sellerID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid product id",
		})
	}

	if err := h.products.DeleteProduct(sellerID, uint(id)); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Product not found",
		})
	}
	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

// AnalyzeImage extracts listing fields from a product photo. The response is
// always well formed; low confidence signals a degraded analysis.
func (h *SellerHandler) AnalyzeImage(c *fiber.Ctx) error {
	var req struct {
		ImageData string `json:"image_data"` // base64 encoded
	}
	if err := c.BodyParser(&req); err != nil || req.ImageData == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "image_data is required",
		})
	}

	analysis := h.media.AnalyzeProductImage(req.ImageData)
	category := h.media.SuggestCategory(analysis)

	return c.JSON(fiber.Map{
		"success":            analysis.Error == "",
		"analysis":           analysis,
		"suggested_category": category,
	})
}

func (h *SellerHandler) Chat(c *fiber.Ctx) error {
	sellerID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil || req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "message is required",
		})
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	turn, err := h.agent.ProcessSellerMessage(req.Message, sellerID, req.SessionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process message",
		})
	}

	return c.JSON(dto.ChatResponse{
		Success:      true,
		SessionID:    req.SessionID,
		Response:     turn.Content,
		Metadata:     turn.Metadata,
		Intent:       turn.Intent,
		ResponseTime: turn.ResponseTime,
	})
}

// VoiceMessage transcribes seller audio and runs it through the seller
// assistant as a normal chat turn.
func (h *SellerHandler) VoiceMessage(c *fiber.Ctx) error {
	sellerID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.VoiceMessageRequest
	if err := c.BodyParser(&req); err != nil || req.AudioData == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "audio_data is required",
		})
	}

	audio, err := base64.StdEncoding.DecodeString(req.AudioData)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "audio_data must be base64 encoded",
		})
	}

	transcript, err := h.media.SpeechToText(audio)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: true, Message: "Transcription failed",
		})
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	turn, err := h.agent.ProcessSellerMessage(transcript, sellerID, sessionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process message",
		})
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"session_id":    sessionID,
		"transcription": transcript,
		"response":      turn.Content,
		"metadata":      turn.Metadata,
		"intent":        turn.Intent,
		"response_time": turn.ResponseTime,
	})
}

// UpdatePrice changes a product price from either an explicit value or a
// spoken command ("set the price to fifty dollars").
func (h *SellerHandler) UpdatePrice(c *fiber.Ctx) error {
	sellerID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid product id",
		})
	}

	var req struct {
		Price        float64 `json:"price"`
		VoiceCommand string  `json:"voice_command"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	price := req.Price
	if price <= 0 && req.VoiceCommand != "" {
		extracted, ok := h.agent.ExtractPriceFromVoice(req.VoiceCommand)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Could not extract a price from the command",
			})
		}
		price = extracted
	}
	if price <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "A positive price or a voice_command is required",
		})
	}

	product, err := h.products.UpdateProduct(sellerID, uint(id), &dto.ProductUpdateRequest{Price: &price})
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Product not found",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Price updated successfully",
		"product": ProductView(product),
	})
}

func (h *SellerHandler) Analytics(c *fiber.Ctx) error {
	sellerID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c)
	}

	analytics, err := h.products.Analytics(sellerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to compute analytics",
		})
	}
	return c.JSON(analytics)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}
