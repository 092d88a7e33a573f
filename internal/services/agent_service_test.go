package services

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visioneers/marketplace-api/internal/ai"
	"github.com/visioneers/marketplace-api/internal/models"
	"gorm.io/gorm"
)

// stubLLM plays back scripted completions, recording each call's messages
// and options.
type stubLLM struct {
	replies []string
	err     error
	calls   []ai.ChatOptions
	prompts [][]ai.Message
}

func (s *stubLLM) Chat(messages []ai.Message, opts ai.ChatOptions) (*ai.ChatResult, error) {
	s.calls = append(s.calls, opts)
	s.prompts = append(s.prompts, messages)
	if s.err != nil {
		return nil, s.err
	}
	reply := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return &ai.ChatResult{Content: reply, Model: "stub"}, nil
}

func newAgent(t *testing.T, db *gorm.DB, llm ai.ChatCompleter) *AgentService {
	t.Helper()
	return NewAgentService(db, newTestConfig(), llm, NewProductService(db))
}

func TestProcessBuyerMessagePersistsTurn(t *testing.T) {
	db := newTestDB(t)
	llm := &stubLLM{replies: []string{"general", "Hello there!"}}
	agent := newAgent(t, db, llm)

	turn, err := agent.ProcessBuyerMessage("hi", 1, "session-1")
	require.NoError(t, err)

	assert.Equal(t, "general", turn.Intent)
	assert.Equal(t, "Hello there!", turn.Content)
	assert.GreaterOrEqual(t, turn.ResponseTime, 0.0)

	var messages []models.Message
	require.NoError(t, db.Order("id ASC").Find(&messages).Error)
	require.Len(t, messages, 2)
	assert.Equal(t, models.RoleMessageUser, messages[0].Role)
	assert.Equal(t, "hi", messages[0].Content)
	assert.Equal(t, models.RoleMessageAssistant, messages[1].Role)
	assert.Equal(t, "gpt-4o", messages[1].ModelUsed)

	// Same session reuses the conversation.
	llm.replies = []string{"general", "Hi again"}
	_, err = agent.ProcessBuyerMessage("hello again", 1, "session-1")
	require.NoError(t, err)

	var conversations int64
	require.NoError(t, db.Model(&models.Conversation{}).Count(&conversations).Error)
	assert.EqualValues(t, 1, conversations)
	require.NoError(t, db.Model(&models.Message{}).Count(&conversations).Error)
	assert.EqualValues(t, 4, conversations)
}

func TestTurnDegradesWhenModelUnavailable(t *testing.T) {
	db := newTestDB(t)
	agent := newAgent(t, db, &stubLLM{err: errors.New("connection refused")})

	turn, err := agent.ProcessBuyerMessage("hi", 1, "session-1")
	require.NoError(t, err)

	assert.Equal(t, "general", turn.Intent)
	assert.Equal(t, apologyReply, turn.Content)
	assert.Contains(t, turn.Metadata, "error")

	// The failed turn is still recorded.
	var count int64
	require.NoError(t, db.Model(&models.Message{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestUnknownIntentLabelBecomesGeneral(t *testing.T) {
	db := newTestDB(t)
	llm := &stubLLM{replies: []string{"banana", "Hi!"}}
	agent := newAgent(t, db, llm)

	turn, err := agent.ProcessBuyerMessage("hi", 1, "s")
	require.NoError(t, err)
	assert.Equal(t, "general", turn.Intent)

	// Classifier runs cheap and cold.
	require.NotEmpty(t, llm.calls)
	assert.Equal(t, 10, llm.calls[0].MaxTokens)
	assert.InDelta(t, 0.1, llm.calls[0].Temperature, 0.001)
}

func TestProductSearchTurn(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	agent := newAgent(t, db, &stubLLM{replies: []string{"product_search"}})

	turn, err := agent.ProcessBuyerMessage("show me adidas sneakers", 1, "s")
	require.NoError(t, err)

	assert.Equal(t, "product_search", turn.Intent)
	assert.Contains(t, turn.Content, "Adidas Gazelle")
	products, ok := turn.Metadata["products"].([]map[string]interface{})
	require.True(t, ok)
	assert.Len(t, products, 1)

	// The classified intent lands on the conversation row.
	var conversation models.Conversation
	require.NoError(t, db.Where("session_id = ?", "s").First(&conversation).Error)
	assert.Equal(t, "product_search", conversation.Intent)
}

func TestProductInfoTurn(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	agent := newAgent(t, db, &stubLLM{replies: []string{"product_info"}})

	turn, err := agent.ProcessBuyerMessage(`Tell me about "Adidas Gazelle"`, 1, "s")
	require.NoError(t, err)

	assert.Equal(t, "product_info", turn.Intent)
	assert.Contains(t, turn.Content, "$85.00")
	assert.Contains(t, turn.Content, "10 available")
}

func TestPurchaseTurn(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)

	t.Run("order summary", func(t *testing.T) {
		agent := newAgent(t, db, &stubLLM{replies: []string{
			"purchase",
			`{"product_id": 1, "product_name": "", "quantity": 2}`,
		}})

		turn, err := agent.ProcessBuyerMessage("I want to buy product 1, two of them", 1, "s1")
		require.NoError(t, err)

		assert.Equal(t, "purchase", turn.Intent)
		assert.Contains(t, turn.Content, "Total:** $170.00")
		assert.Contains(t, turn.Metadata, "purchase_info")
	})

	t.Run("insufficient stock", func(t *testing.T) {
		agent := newAgent(t, db, &stubLLM{replies: []string{
			"purchase",
			`{"product_id": 1, "product_name": "", "quantity": 50}`,
		}})

		turn, err := agent.ProcessBuyerMessage("buy 50 of product 1", 1, "s2")
		require.NoError(t, err)
		assert.Contains(t, turn.Content, "only 10 units")
	})
}

func TestSellerIntentsAreTemplated(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)

	agent := newAgent(t, db, &stubLLM{replies: []string{"pricing"}})
	turn, err := agent.ProcessSellerMessage("help me price my shoes", 1, "s")
	require.NoError(t, err)

	assert.Equal(t, "pricing", turn.Intent)
	assert.Contains(t, turn.Content, "pricing strategies")
	assert.Contains(t, turn.Metadata, "pricing_features")
}

func TestSellerGeneralReplaysRecentHistory(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)

	llm := &stubLLM{replies: []string{
		"pricing", "inventory", "analytics",
		"general", "Happy to help with your store!",
	}}
	agent := newAgent(t, db, llm)

	// Three templated turns build six messages of history.
	for _, msg := range []string{"price my shoes", "restock alerts?", "show my sales"} {
		_, err := agent.ProcessSellerMessage(msg, 1, "s")
		require.NoError(t, err)
	}

	turn, err := agent.ProcessSellerMessage("any other advice?", 1, "s")
	require.NoError(t, err)
	assert.Equal(t, "general", turn.Intent)
	assert.Equal(t, "Happy to help with your store!", turn.Content)

	// system prompt + last five history entries + the new user message.
	prompt := llm.prompts[len(llm.prompts)-1]
	require.Len(t, prompt, 7)
	assert.Equal(t, models.RoleMessageSystem, prompt[0].Role)
	assert.Contains(t, prompt[0].Content, "marketplace sellers")

	roles := make([]string, 0, 5)
	for _, m := range prompt[1:6] {
		roles = append(roles, m.Role)
	}
	assert.Equal(t, []string{
		models.RoleMessageAssistant,
		models.RoleMessageUser,
		models.RoleMessageAssistant,
		models.RoleMessageUser,
		models.RoleMessageAssistant,
	}, roles)
	assert.Equal(t, "restock alerts?", prompt[2].Content)

	assert.Equal(t, models.RoleMessageUser, prompt[6].Role)
	assert.Equal(t, "any other advice?", prompt[6].Content)
}

func TestAutoProvisioning(t *testing.T) {
	t.Run("disabled rejects unknown users", func(t *testing.T) {
		db := newTestDB(t)
		cfg := newTestConfig()
		cfg.AgentAutoProvision = false
		agent := NewAgentService(db, cfg, &stubLLM{replies: []string{"general", "hi"}}, NewProductService(db))

		_, err := agent.ProcessBuyerMessage("hi", 42, "s")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("enabled creates a placeholder buyer", func(t *testing.T) {
		db := newTestDB(t)
		agent := newAgent(t, db, &stubLLM{replies: []string{"general", "hi"}})

		_, err := agent.ProcessBuyerMessage("hi", 42, "s")
		require.NoError(t, err)

		var user models.User
		require.NoError(t, db.First(&user, 42).Error)
		assert.Equal(t, models.RoleBuyer, user.Role)
	})
}

func TestConversationLifecycle(t *testing.T) {
	db := newTestDB(t)
	llm := &stubLLM{replies: []string{"general", "reply"}}
	agent := newAgent(t, db, llm)

	_, err := agent.ProcessBuyerMessage("hi", 1, "s1")
	require.NoError(t, err)

	conversation, messages, err := agent.GetConversation("s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", conversation.SessionID)
	assert.Len(t, messages, 2)

	require.NoError(t, agent.ClearConversation("s1"))
	_, messages, err = agent.GetConversation("s1")
	require.NoError(t, err)
	assert.Empty(t, messages)

	// Clearing an unknown session is a no-op.
	assert.NoError(t, agent.ClearConversation("ghost"))

	_, _, err = agent.GetConversation("ghost")
	assert.Error(t, err)
}

func TestExtractPriceFromVoice(t *testing.T) {
	agent := newAgent(t, newTestDB(t), &stubLLM{replies: []string{"49.99"}})
	price, ok := agent.ExtractPriceFromVoice("set the price to fifty dollars")
	require.True(t, ok)
	assert.InDelta(t, 49.99, price, 0.001)

	agent = newAgent(t, newTestDB(t), &stubLLM{replies: []string{"null"}})
	_, ok = agent.ExtractPriceFromVoice("no price here")
	assert.False(t, ok)
}

func TestExtractProductUpdates(t *testing.T) {
	product := &models.Product{Name: "Gazelle", Price: 85, Condition: "new", StockQuantity: 10}

	t.Run("whitelists fields", func(t *testing.T) {
		agent := newAgent(t, newTestDB(t), &stubLLM{replies: []string{
			"```json\n{\"price\": 49.99, \"seller_id\": 7}\n```",
		}})
		updates := agent.ExtractProductUpdates("drop the price", product)
		require.NotNil(t, updates)
		assert.Contains(t, updates, "price")
		assert.NotContains(t, updates, "seller_id")
	})

	t.Run("garbage yields nil", func(t *testing.T) {
		agent := newAgent(t, newTestDB(t), &stubLLM{replies: []string{"not json at all"}})
		assert.Nil(t, agent.ExtractProductUpdates("mumble", product))
	})
}

func TestExtractSearchCriteria(t *testing.T) {
	criteria := ExtractSearchCriteria("show me adidas electronics under $100")
	assert.Equal(t, "adidas", criteria.Brand)
	assert.Equal(t, "electronics", criteria.Category)
	require.NotNil(t, criteria.MaxPrice)
	assert.Equal(t, 100.0, *criteria.MaxPrice)
	assert.Empty(t, criteria.Query)

	// Nothing recognized: the whole message becomes the keyword.
	criteria = ExtractSearchCriteria("running shoes")
	assert.Equal(t, "running shoes", criteria.Query)
	assert.True(t, criteria.InStockOnly)
}

func TestExtractPreferences(t *testing.T) {
	prefs := ExtractPreferences("something cheap from sony")
	assert.Equal(t, "low", prefs.PriceRange)
	assert.Equal(t, "sony", prefs.Brand)

	prefs = ExtractPreferences("premium home gear")
	assert.Equal(t, "high", prefs.PriceRange)
	assert.Equal(t, "home", prefs.Category)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	description := "Ürün açıklaması: çok şık süet spor ayakkabı"

	out := truncate(description, 20)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, 20, len([]rune(out)))
	assert.Equal(t, "Ürün açıklaması: çok", out)

	assert.Equal(t, description, truncate(description, 500))
}

func TestExtractProductIdentifier(t *testing.T) {
	assert.Equal(t, "Adidas Gazelle", ExtractProductIdentifier(`tell me about "Adidas Gazelle"`))
	assert.Equal(t, "42", ExtractProductIdentifier("show product 42"))
	assert.Equal(t, "vans old skool", ExtractProductIdentifier("tell me about the vans old skool?"))
	assert.Equal(t, "", ExtractProductIdentifier("hello"))
}
