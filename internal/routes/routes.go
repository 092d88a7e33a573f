package routes

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/visioneers/marketplace-api/internal/config"
	"github.com/visioneers/marketplace-api/internal/handlers"
	"github.com/visioneers/marketplace-api/internal/middleware"
	"github.com/visioneers/marketplace-api/internal/models"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	productHandler *handlers.ProductHandler,
	sellerHandler *handlers.SellerHandler,
	agentHandler *handlers.AgentHandler,
	agentWS *handlers.AgentWSHandler,
	orderHandler *handlers.OrderHandler,
) {
	api := app.Group("/api/v1")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/verify/:token", authHandler.Verify)
	api.Get("/auth/me", middleware.JWTProtected(cfg), authHandler.Me)

	// Public catalog. Static paths come before /:id so Fiber doesn't
	// swallow them as id params.
	products := api.Group("/products")
	products.Get("/search", productHandler.Search)
	products.Get("/featured", productHandler.Featured)
	products.Get("/categories", productHandler.Categories)
	products.Get("/category/:name", productHandler.ByCategory)
	products.Get("/brand/:name", productHandler.ByBrand)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Seller console (JWT + seller role)
	seller := api.Group("/seller",
		middleware.JWTProtected(cfg),
		middleware.RequireRole(db, models.RoleSeller),
	)
	seller.Get("/products", sellerHandler.ListProducts)
	seller.Post("/products", sellerHandler.CreateProduct)
	seller.Put("/products/:id", sellerHandler.UpdateProduct)
	seller.Delete("/products/:id", sellerHandler.DeleteProduct)
	seller.Put("/products/:id/update-price", sellerHandler.UpdatePrice)
	seller.Post("/analyze-image", sellerHandler.AnalyzeImage)
	seller.Post("/chat", sellerHandler.Chat)
	seller.Post("/voice-message", sellerHandler.VoiceMessage)
	seller.Get("/analytics", sellerHandler.Analytics)

	// Orders (any authenticated user)
	orders := api.Group("/orders", middleware.JWTProtected(cfg))
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.Get)

	// Shopping assistant
	agent := api.Group("/agent")
	agent.Post("/chat", agentHandler.Chat)
	agent.Get("/intent", agentHandler.AnalyzeMessageIntent)
	agent.Get("/suggestions", agentHandler.Suggestions)
	agent.Post("/voice-message", agentHandler.VoiceMessage)
	agent.Get("/conversation/:session_id", agentHandler.GetConversation)
	agent.Post("/conversation/:session_id/clear", agentHandler.ClearConversation)
	agent.Use("/ws/:session_id", agentWS.Upgrade)
	agent.Get("/ws/:session_id", websocket.New(agentWS.Serve))
}
