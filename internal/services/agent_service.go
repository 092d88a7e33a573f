package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/visioneers/marketplace-api/internal/ai"
	"github.com/visioneers/marketplace-api/internal/config"
	"github.com/visioneers/marketplace-api/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const buyerSystemPrompt = `You are an AI shopping assistant for Visioneers Marketplace. Your role is to help users find products, make recommendations, and assist with purchases through natural language interactions.

Key capabilities:
1. Product Search: Help users find specific products based on their needs
2. Recommendations: Suggest products based on user preferences and browsing history
3. Product Information: Provide detailed information about products
4. Purchase Assistance: Help users complete purchases
5. Support: Answer questions about orders, shipping, returns, etc.

IMPORTANT: Always maintain conversation context. Remember previous user preferences, search criteria, and product discussions. When users refer to products mentioned earlier, use that context to provide relevant responses.

Always be helpful, friendly, and professional. When suggesting products, provide relevant details like price, features, and availability. If you don't have information about a specific product, say so and suggest alternatives.`

const sellerSystemPrompt = `You are an AI assistant for marketplace sellers. Help them with:

1. Product Management: Adding, editing, deleting products
2. Pricing Strategy: Market research, price optimization
3. Inventory Management: Stock updates, restock alerts
4. Analytics: Sales reports, performance insights
5. Store Optimization: SEO, marketing, customer service

Be helpful, professional, and provide actionable advice.`

const apologyReply = "I'm sorry, I'm having trouble processing your request right now. Please try again in a moment."

// Closed intent label sets; anything else falls back to general.
var (
	buyerIntents  = []string{"product_search", "product_info", "purchase", "recommendation", "general"}
	sellerIntents = []string{"product_management", "pricing", "analytics", "inventory", "general"}
)

// TurnResult is one processed chat turn.
type TurnResult struct {
	Content      string
	Metadata     map[string]interface{}
	Intent       string
	ResponseTime float64
}

type agentReply struct {
	content  string
	metadata map[string]interface{}
}

// AgentService is the conversation turn processor.
type AgentService struct {
	db       *gorm.DB
	cfg      *config.Config
	llm      ai.ChatCompleter
	products *ProductService
}

func NewAgentService(db *gorm.DB, cfg *config.Config, llm ai.ChatCompleter, products *ProductService) *AgentService {
	return &AgentService{db: db, cfg: cfg, llm: llm, products: products}
}

// ProcessBuyerMessage runs one buyer chat turn: resolve user and
// conversation, classify intent, dispatch, persist both messages.
func (s *AgentService) ProcessBuyerMessage(message string, userID uint, sessionID string) (*TurnResult, error) {
	return s.processTurn(message, userID, sessionID, buyerIntents, s.dispatchBuyer)
}

// ProcessSellerMessage is the seller-mode counterpart.
func (s *AgentService) ProcessSellerMessage(message string, userID uint, sessionID string) (*TurnResult, error) {
	return s.processTurn(message, userID, sessionID, sellerIntents, s.dispatchSeller)
}

func (s *AgentService) processTurn(
	message string,
	userID uint,
	sessionID string,
	intents []string,
	dispatch func(intent, message string, history []ai.Message) agentReply,
) (*TurnResult, error) {
	start := time.Now()

	if _, err := s.resolveUser(userID); err != nil {
		return nil, err
	}

	conversation, err := s.getOrCreateConversation(userID, sessionID)
	if err != nil {
		return nil, err
	}

	history, err := s.conversationHistory(conversation.ID)
	if err != nil {
		return nil, err
	}

	intent := s.classifyIntent(message, history, intents)
	reply := dispatch(intent, message, history)

	elapsed := time.Since(start).Seconds()

	if err := s.saveMessage(conversation.ID, models.RoleMessageUser, message, nil, "", 0); err != nil {
		return nil, err
	}
	if err := s.saveMessage(conversation.ID, models.RoleMessageAssistant, reply.content, reply.metadata, s.cfg.AgentModel, elapsed); err != nil {
		return nil, err
	}
	if err := s.db.Model(conversation).Updates(map[string]interface{}{"intent": intent}).Error; err != nil {
		slog.Warn("failed to update conversation intent", "session_id", sessionID, "error", err)
	}

	return &TurnResult{
		Content:      reply.content,
		Metadata:     reply.metadata,
		Intent:       intent,
		ResponseTime: elapsed,
	}, nil
}

func (s *AgentService) dispatchBuyer(intent, message string, history []ai.Message) agentReply {
	switch intent {
	case "product_search":
		return s.handleProductSearch(message)
	case "product_info":
		return s.handleProductInfo(message)
	case "purchase":
		return s.handlePurchase(message)
	case "recommendation":
		return s.handleRecommendation(message)
	default:
		return s.handleGeneral(message, history, buyerSystemPrompt)
	}
}

func (s *AgentService) dispatchSeller(intent, message string, history []ai.Message) agentReply {
	switch intent {
	case "product_management":
		return agentReply{
			content: "I can help you manage your products! Here's what I can do:\n\n" +
				"• **Add Products**: Upload an image and I'll extract product info\n" +
				"• **Edit Products**: Change names, descriptions, prices, etc.\n" +
				"• **Delete Products**: Remove products from your store\n" +
				"• **Bulk Operations**: Manage multiple products at once\n\n" +
				"Just tell me what you'd like to do, or upload a product image to get started!",
			metadata: map[string]interface{}{"capabilities": []string{"add", "edit", "delete", "bulk"}},
		}
	case "pricing":
		return agentReply{
			content: "I can help you with pricing strategies!\n\n" +
				"• **Market Research**: I can search current market prices\n" +
				"• **Price Optimization**: Suggest optimal pricing based on competition\n" +
				"• **Dynamic Pricing**: Adjust prices based on demand\n" +
				"• **Price Updates**: Change prices via voice or text\n\n" +
				"What pricing help do you need?",
			metadata: map[string]interface{}{"pricing_features": []string{"market_research", "optimization", "dynamic", "updates"}},
		}
	case "analytics":
		return agentReply{
			content: "Here are your store analytics insights:\n\n" +
				"• **Sales Performance**: Track revenue and growth\n" +
				"• **Product Performance**: See which products sell best\n" +
				"• **Customer Insights**: Understand buyer behavior\n" +
				"• **Inventory Analytics**: Monitor stock levels and turnover\n\n" +
				"I can provide detailed reports and recommendations!",
			metadata: map[string]interface{}{"analytics_types": []string{"sales", "products", "customers", "inventory"}},
		}
	case "inventory":
		return agentReply{
			content: "I can help you manage your inventory!\n\n" +
				"• **Stock Updates**: Update quantities via voice or text\n" +
				"• **Low Stock Alerts**: Get notified when items run low\n" +
				"• **Inventory Reports**: Track stock levels and movement\n" +
				"• **Restock Suggestions**: Get recommendations for reordering\n\n" +
				"What inventory help do you need?",
			metadata: map[string]interface{}{"inventory_features": []string{"updates", "alerts", "reports", "restock"}},
		}
	default:
		return s.handleSellerGeneral(message, history)
	}
}

// resolveUser looks up the chat user, auto-provisioning a placeholder buyer
// when enabled. Demo-grade policy, not a trust boundary.
func (s *AgentService) resolveUser(userID uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "id = ?", userID).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if !s.cfg.AgentAutoProvision {
		return nil, ErrUserNotFound
	}

	user = models.User{
		ID:             userID,
		Email:          fmt.Sprintf("user%d@example.com", userID),
		Username:       fmt.Sprintf("user%d", userID),
		HashedPassword: "auto-provisioned",
		FullName:       fmt.Sprintf("User %d", userID),
		Role:           models.RoleBuyer,
		IsActive:       true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to auto-provision user: %w", err)
	}
	slog.Warn("auto-provisioned placeholder user", "user_id", userID)
	return &user, nil
}

func (s *AgentService) getOrCreateConversation(userID uint, sessionID string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := s.db.Where("session_id = ? AND is_active = ?", sessionID, true).First(&conversation).Error
	if err == nil {
		return &conversation, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conversation = models.Conversation{
		UserID:    userID,
		SessionID: sessionID,
		Context:   datatypes.JSONMap{},
		Intent:    "general",
		IsActive:  true,
	}
	if err := s.db.Create(&conversation).Error; err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return &conversation, nil
}

// conversationHistory returns the most recent messages, oldest first.
func (s *AgentService) conversationHistory(conversationID uint) ([]ai.Message, error) {
	limit := s.cfg.MaxConversationHistory
	if limit <= 0 {
		limit = 10
	}

	var messages []models.Message
	err := s.db.Where("conversation_id = ?", conversationID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, err
	}

	history := make([]ai.Message, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		history = append(history, ai.Message{Role: messages[i].Role, Content: messages[i].Content})
	}
	return history, nil
}

// classifyIntent asks the model for a single label out of the closed set.
// Any failure or out-of-set answer degrades to "general".
func (s *AgentService) classifyIntent(message string, history []ai.Message, intents []string) string {
	context := history
	if len(context) > 3 {
		context = context[len(context)-3:]
	}
	contextJSON, _ := json.MarshalIndent(context, "", "  ")

	var lines strings.Builder
	for _, intent := range intents {
		lines.WriteString("- " + intent + "\n")
	}

	prompt := fmt.Sprintf(`Analyze the user's intent from this message: %q

Previous conversation context:
%s

Classify the intent as one of:
%s
Respond with just the intent category.`, message, contextJSON, lines.String())

	result, err := s.llm.Chat(
		[]ai.Message{{Role: models.RoleMessageUser, Content: prompt}},
		ai.ChatOptions{MaxTokens: 10, Temperature: 0.1},
	)
	if err != nil {
		slog.Warn("intent classification failed", "error", err)
		return "general"
	}

	label := strings.ToLower(strings.TrimSpace(result.Content))
	for _, intent := range intents {
		if label == intent {
			return intent
		}
	}
	return "general"
}

func (s *AgentService) handleProductSearch(message string) agentReply {
	criteria := ExtractSearchCriteria(message)
	products, err := s.products.Search(criteria)
	if err != nil {
		slog.Error("product search failed", "error", err)
		return agentReply{content: apologyReply, metadata: map[string]interface{}{"error": err.Error()}}
	}

	if len(products) == 0 {
		return agentReply{
			content:  "I couldn't find any products matching your criteria. Could you please provide more details about what you're looking for?",
			metadata: map[string]interface{}{"products": []interface{}{}},
		}
	}

	if len(products) > 5 {
		products = products[:5]
	}

	suggestions := make([]map[string]interface{}, 0, len(products))
	var text strings.Builder
	text.WriteString("Here are some products that match your search:\n\n")
	for i, p := range products {
		suggestions = append(suggestions, productMetadata(&p))
		fmt.Fprintf(&text, "%d. **%s** - $%.2f\n", i+1, p.Name, p.Price)
		fmt.Fprintf(&text, "   Brand: %s\n", p.Brand)
		fmt.Fprintf(&text, "   %s\n\n", p.Description)
	}
	text.WriteString("Would you like me to show you more details about any of these products?")

	return agentReply{
		content: text.String(),
		metadata: map[string]interface{}{
			"products":        suggestions,
			"search_criteria": criteriaMetadata(criteria),
		},
	}
}

func (s *AgentService) handleProductInfo(message string) agentReply {
	identifier := ExtractProductIdentifier(message)
	if identifier == "" {
		return agentReply{
			content:  "I couldn't identify which product you're asking about. Could you please specify the product name or ID?",
			metadata: map[string]interface{}{},
		}
	}

	product, err := s.products.GetByIdentifier(identifier)
	if err != nil {
		return agentReply{
			content:  fmt.Sprintf("I couldn't find a product matching '%s'. Could you please check the product name or try a different search?", identifier),
			metadata: map[string]interface{}{},
		}
	}

	categoryName := "N/A"
	if product.Category != nil {
		categoryName = product.Category.Name
	}

	var text strings.Builder
	fmt.Fprintf(&text, "**%s**\n\n", product.Name)
	fmt.Fprintf(&text, "**Price:** $%.2f\n", product.Price)
	fmt.Fprintf(&text, "**Brand:** %s\n", product.Brand)
	fmt.Fprintf(&text, "**Category:** %s\n", categoryName)
	fmt.Fprintf(&text, "**Condition:** %s\n", product.Condition)
	fmt.Fprintf(&text, "**Stock:** %d available\n\n", product.StockQuantity)
	fmt.Fprintf(&text, "**Description:**\n%s\n\n", product.Description)

	if len(product.Specifications) > 0 {
		text.WriteString("**Specifications:**\n")
		for key, value := range product.Specifications {
			fmt.Fprintf(&text, "- %s: %v\n", key, value)
		}
	}
	text.WriteString("\nWould you like to purchase this product or see similar items?")

	return agentReply{
		content: text.String(),
		metadata: map[string]interface{}{
			"product": map[string]interface{}{
				"id":             product.ID,
				"name":           product.Name,
				"price":          product.Price,
				"brand":          product.Brand,
				"stock_quantity": product.StockQuantity,
			},
		},
	}
}

func (s *AgentService) handlePurchase(message string) agentReply {
	info, err := s.extractPurchaseInfo(message)
	if err != nil || info == nil {
		return agentReply{
			content:  "I couldn't understand your purchase request. Could you please specify which product you'd like to buy and the quantity?",
			metadata: map[string]interface{}{},
		}
	}

	var product *models.Product
	if info.ProductID != 0 {
		product, err = s.products.GetByID(info.ProductID)
	} else {
		product, err = s.products.GetByIdentifier(info.ProductName)
	}
	if err != nil {
		return agentReply{
			content:  "I couldn't find the product you're trying to purchase. Please check the product ID or name.",
			metadata: map[string]interface{}{},
		}
	}

	if product.StockQuantity < info.Quantity {
		return agentReply{
			content: fmt.Sprintf("Sorry, only %d units of %s are available. Would you like to purchase the available quantity?",
				product.StockQuantity, product.Name),
			metadata: map[string]interface{}{"available_quantity": product.StockQuantity},
		}
	}

	total := product.Price * float64(info.Quantity)

	var text strings.Builder
	text.WriteString("Great! Here's your order summary:\n\n")
	fmt.Fprintf(&text, "**Product:** %s\n", product.Name)
	fmt.Fprintf(&text, "**Quantity:** %d\n", info.Quantity)
	fmt.Fprintf(&text, "**Price per unit:** $%.2f\n", product.Price)
	fmt.Fprintf(&text, "**Total:** $%.2f\n\n", total)
	text.WriteString("Would you like to proceed with the purchase? I can help you complete the checkout process.")

	return agentReply{
		content: text.String(),
		metadata: map[string]interface{}{
			"purchase_info": map[string]interface{}{
				"product_id": product.ID,
				"quantity":   info.Quantity,
				"unit_price": product.Price,
				"total":      total,
			},
		},
	}
}

func (s *AgentService) handleRecommendation(message string) agentReply {
	prefs := ExtractPreferences(message)
	products, err := s.products.Recommendations(prefs, 10)
	if err != nil {
		slog.Error("recommendation query failed", "error", err)
		return agentReply{content: apologyReply, metadata: map[string]interface{}{"error": err.Error()}}
	}

	if len(products) == 0 {
		return agentReply{
			content:  "I couldn't find any recommendations based on your preferences. Could you tell me more about what you're looking for?",
			metadata: map[string]interface{}{"recommendations": []interface{}{}},
		}
	}

	if len(products) > 5 {
		products = products[:5]
	}

	summaries := make([]map[string]interface{}, 0, len(products))
	var text strings.Builder
	text.WriteString("Based on your preferences, here are some recommendations:\n\n")
	for i, p := range products {
		summaries = append(summaries, map[string]interface{}{
			"id": p.ID, "name": p.Name, "price": p.Price,
		})
		fmt.Fprintf(&text, "%d. **%s** - $%.2f\n", i+1, p.Name, p.Price)
		fmt.Fprintf(&text, "   %s...\n\n", truncate(p.Description, 100))
	}

	return agentReply{
		content:  text.String(),
		metadata: map[string]interface{}{"recommendations": summaries},
	}
}

// handleGeneral forwards to the chat model with a role-specific system
// prompt. API failures become an apology, never an error.
func (s *AgentService) handleGeneral(message string, history []ai.Message, systemPrompt string) agentReply {
	var contextSummary strings.Builder
	if len(history) > 0 {
		recent := history
		if len(recent) > 3 {
			recent = recent[len(recent)-3:]
		}
		contextSummary.WriteString("\n\nRecent conversation context:\n")
		for _, msg := range recent {
			fmt.Fprintf(&contextSummary, "- %s: %s...\n", msg.Role, truncate(msg.Content, 100))
		}
	}

	messages := []ai.Message{
		{Role: models.RoleMessageSystem, Content: systemPrompt + contextSummary.String()},
		{Role: models.RoleMessageUser, Content: message},
	}

	result, err := s.llm.Chat(messages, ai.ChatOptions{
		MaxTokens:   500,
		Temperature: s.cfg.AgentTemperature,
	})
	if err != nil {
		slog.Warn("chat completion failed", "error", err)
		return agentReply{
			content:  apologyReply,
			metadata: map[string]interface{}{"error": err.Error()},
		}
	}

	return agentReply{content: result.Content, metadata: map[string]interface{}{}}
}

// handleSellerGeneral replays the last few turns as real chat messages so
// the model keeps full seller context, unlike the buyer path's summary.
func (s *AgentService) handleSellerGeneral(message string, history []ai.Message) agentReply {
	recent := history
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}

	messages := make([]ai.Message, 0, len(recent)+2)
	messages = append(messages, ai.Message{Role: models.RoleMessageSystem, Content: sellerSystemPrompt})
	messages = append(messages, recent...)
	messages = append(messages, ai.Message{Role: models.RoleMessageUser, Content: message})

	result, err := s.llm.Chat(messages, ai.ChatOptions{
		MaxTokens:   500,
		Temperature: s.cfg.AgentTemperature,
	})
	if err != nil {
		slog.Warn("chat completion failed", "error", err)
		return agentReply{
			content:  apologyReply,
			metadata: map[string]interface{}{"error": err.Error()},
		}
	}

	return agentReply{content: result.Content, metadata: map[string]interface{}{}}
}

// AnalyzeIntent classifies a standalone message (no conversation state).
func (s *AgentService) AnalyzeIntent(message string) string {
	return s.classifyIntent(message, nil, buyerIntents)
}

// Suggestions runs criteria extraction plus search for typeahead-style hints.
func (s *AgentService) Suggestions(query string) ([]models.Product, error) {
	return s.products.Search(ExtractSearchCriteria(query))
}

// GetConversation returns the conversation and its messages for a session.
func (s *AgentService) GetConversation(sessionID string) (*models.Conversation, []models.Message, error) {
	var conversation models.Conversation
	if err := s.db.Where("session_id = ?", sessionID).First(&conversation).Error; err != nil {
		return nil, nil, errors.New("conversation not found")
	}

	var messages []models.Message
	if err := s.db.Where("conversation_id = ?", conversation.ID).
		Order("created_at ASC").Order("id ASC").
		Find(&messages).Error; err != nil {
		return nil, nil, err
	}
	return &conversation, messages, nil
}

// ClearConversation bulk-deletes the session's messages. Other sessions are
// untouched; a missing conversation is not an error.
func (s *AgentService) ClearConversation(sessionID string) error {
	var conversation models.Conversation
	err := s.db.Where("session_id = ?", sessionID).First(&conversation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.db.Where("conversation_id = ?", conversation.ID).Delete(&models.Message{}).Error
}

// ExtractPriceFromVoice pulls a dollar amount out of a transcribed command.
func (s *AgentService) ExtractPriceFromVoice(text string) (float64, bool) {
	prompt := fmt.Sprintf(`Extract the price from this voice command: %q

Look for:
- Dollar amounts (e.g., "fifty dollars" = $50.00)
- Numbers followed by "dollars" or "$"
- Price ranges (take the first mentioned price)

Return only the numeric price value, or null if no price found.`, text)

	result, err := s.llm.Chat(
		[]ai.Message{{Role: models.RoleMessageUser, Content: prompt}},
		ai.ChatOptions{MaxTokens: 10, Temperature: 0.1},
	)
	if err != nil {
		return 0, false
	}

	var price float64
	if _, err := fmt.Sscanf(strings.TrimSpace(result.Content), "%f", &price); err != nil {
		return 0, false
	}
	return price, true
}

var productUpdateFields = map[string]bool{
	"name": true, "price": true, "description": true, "condition": true,
	"stock_quantity": true, "brand": true, "model": true,
}

// ExtractProductUpdates asks the model for a whitelisted field patch from a
// voice command; nil when nothing usable came back.
func (s *AgentService) ExtractProductUpdates(text string, product *models.Product) map[string]interface{} {
	prompt := fmt.Sprintf(`Extract product updates from this voice command: %q

Current product info:
- Name: %s
- Price: $%.2f
- Description: %s
- Condition: %s
- Stock: %d

Look for updates to:
- name: Product name changes
- price: Price changes (numeric values)
- description: Description updates
- condition: Condition changes (new, used, refurbished)
- stock_quantity: Stock quantity changes (numeric values)
- brand: Brand changes
- model: Model changes

Return a JSON object with only the fields that need to be updated, or null if no valid updates found. Return only the JSON object, no additional text.`,
		text, product.Name, product.Price, product.Description, product.Condition, product.StockQuantity)

	result, err := s.llm.Chat(
		[]ai.Message{{Role: models.RoleMessageUser, Content: prompt}},
		ai.ChatOptions{MaxTokens: 100, Temperature: 0.1},
	)
	if err != nil {
		return nil
	}

	var updates map[string]interface{}
	if err := json.Unmarshal([]byte(ai.TrimMarkdownFences(result.Content)), &updates); err != nil {
		return nil
	}

	filtered := make(map[string]interface{}, len(updates))
	for k, v := range updates {
		if productUpdateFields[k] {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return filtered
}

type purchaseInfo struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

func (s *AgentService) extractPurchaseInfo(message string) (*purchaseInfo, error) {
	prompt := fmt.Sprintf(`Extract purchase details from this message: %q

Return a JSON object with:
- product_id: numeric product id if one is mentioned, else 0
- product_name: the product name if mentioned, else ""
- quantity: the quantity to buy (default 1)

Return only the JSON object, no additional text.`, message)

	result, err := s.llm.Chat(
		[]ai.Message{{Role: models.RoleMessageUser, Content: prompt}},
		ai.ChatOptions{MaxTokens: 100, Temperature: 0.1},
	)
	if err != nil {
		return nil, err
	}

	var info purchaseInfo
	if err := json.Unmarshal([]byte(ai.TrimMarkdownFences(result.Content)), &info); err != nil {
		return nil, err
	}
	if info.ProductID == 0 && info.ProductName == "" {
		return nil, nil
	}
	if info.Quantity <= 0 {
		info.Quantity = 1
	}
	return &info, nil
}

func (s *AgentService) saveMessage(conversationID uint, role, content string, metadata map[string]interface{}, modelUsed string, responseTime float64) error {
	message := models.Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		Metadata:       datatypes.JSONMap(metadata),
		ModelUsed:      modelUsed,
		ResponseTime:   responseTime,
	}
	return s.db.Create(&message).Error
}

// Keyword heuristics for search criteria, matching the original demo lists.
var (
	criteriaCategories = []string{"electronics", "clothing", "books", "home", "sports"}
	criteriaBrands     = []string{"apple", "samsung", "nike", "adidas", "sony"}
)

// ExtractSearchCriteria derives a criteria bag from a chat message.
func ExtractSearchCriteria(message string) SearchCriteria {
	lower := strings.ToLower(message)
	criteria := SearchCriteria{InStockOnly: true, Limit: 20}

	if strings.Contains(lower, "under") || strings.Contains(lower, "less than") {
		maxPrice := 100.0
		criteria.MaxPrice = &maxPrice
	}
	for _, category := range criteriaCategories {
		if strings.Contains(lower, category) {
			criteria.Category = category
			break
		}
	}
	for _, brand := range criteriaBrands {
		if strings.Contains(lower, brand) {
			criteria.Brand = brand
			break
		}
	}
	if criteria.Category == "" && criteria.Brand == "" && criteria.MaxPrice == nil {
		criteria.Query = strings.TrimSpace(message)
	}
	return criteria
}

var (
	quotedRe   = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	idTokenRe  = regexp.MustCompile(`\b(\d+)\b`)
	trailingRe = regexp.MustCompile(`(?i)\b(?:about|for|of)\s+(?:the\s+)?(.+?)[.?!]?$`)
)

// ExtractProductIdentifier pulls a product id or name fragment from a
// message: quoted phrase first, then a numeric token, then the phrase after a
// trailing "about/for/of".
func ExtractProductIdentifier(message string) string {
	if m := quotedRe.FindStringSubmatch(message); m != nil {
		if m[1] != "" {
			return m[1]
		}
		return m[2]
	}
	if m := idTokenRe.FindStringSubmatch(message); m != nil {
		return m[1]
	}
	if m := trailingRe.FindStringSubmatch(message); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// ExtractPreferences maps budget words onto a price range.
func ExtractPreferences(message string) Preferences {
	lower := strings.ToLower(message)
	prefs := Preferences{}
	if strings.Contains(lower, "cheap") || strings.Contains(lower, "budget") {
		prefs.PriceRange = "low"
	} else if strings.Contains(lower, "premium") || strings.Contains(lower, "high-end") {
		prefs.PriceRange = "high"
	}
	for _, category := range criteriaCategories {
		if strings.Contains(lower, category) {
			prefs.Category = category
			break
		}
	}
	for _, brand := range criteriaBrands {
		if strings.Contains(lower, brand) {
			prefs.Brand = brand
			break
		}
	}
	return prefs
}

func productMetadata(p *models.Product) map[string]interface{} {
	categoryName := ""
	if p.Category != nil {
		categoryName = p.Category.Name
	}
	return map[string]interface{}{
		"id":             p.ID,
		"name":           p.Name,
		"price":          p.Price,
		"description":    p.Description,
		"brand":          p.Brand,
		"model":          p.Model,
		"condition":      p.Condition,
		"stock_quantity": p.StockQuantity,
		"category":       categoryName,
		"seller_id":      p.SellerID,
		"images":         []string(p.Images),
		"specifications": map[string]interface{}(p.Specifications),
		"tags":           []string(p.Tags),
		"is_active":      p.IsActive,
		"is_featured":    p.IsFeatured,
	}
}

func criteriaMetadata(c SearchCriteria) map[string]interface{} {
	m := map[string]interface{}{}
	if c.Query != "" {
		m["keyword"] = c.Query
	}
	if c.Category != "" {
		m["category"] = c.Category
	}
	if c.Brand != "" {
		m["brand"] = c.Brand
	}
	if c.MaxPrice != nil {
		m["max_price"] = *c.MaxPrice
	}
	if c.MinPrice != nil {
		m["min_price"] = *c.MinPrice
	}
	return m
}

// truncate cuts on runes so multi-byte characters are never split.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
