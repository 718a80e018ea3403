package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// categoryPages mapea rutas de catálogo estático a su template.
var categoryPages = map[string]string{
	"/clothes":          "clothes.html",
	"/health":           "health.html",
	"/beauty":           "beauty.html",
	"/orders":           "order.html",
	"/fashion_trends":   "fashion_trends.html",
	"/mobiles":          "mobiles.html",
	"/new_arrival_toys": "new_arrival_toys.html",
	"/pet_care":         "pet_care.html",
	"/furniture":        "furniture.html",
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	authH *AuthHandler,
	cartH *CartHandler,
	chatH *ChatHandler,
	pagesH *PagesHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	r.GET("/", pagesH.Home)
	for route, tmpl := range categoryPages {
		r.GET(route, pagesH.Static(tmpl))
	}

	r.GET("/signup", authH.ShowSignup)
	r.POST("/signup", authH.Signup)
	r.GET("/login", authH.ShowLogin)
	r.POST("/login", authH.Login)
	r.GET("/logout", authH.Logout)
	r.GET("/forgot-password", authH.ShowForgotPassword)
	r.POST("/forgot-password", authH.ForgotPassword)
	r.GET("/reset-password", authH.ShowResetPassword)
	r.POST("/reset-password", authH.ResetPassword)
	r.GET("/profile", authH.Profile)

	r.GET("/cart", cartH.Cart)
	r.POST("/cart/add", cartH.AddToCart)
	r.POST("/cart/remove", cartH.RemoveFromCart)
	r.GET("/checkout", cartH.Checkout)
	r.POST("/checkout", cartH.ConfirmCheckout)
	r.GET("/order-confirmation", cartH.OrderConfirmation)

	r.GET("/chatbot", chatH.ChatbotPage)
	r.POST("/get_ai_response", chatH.GetAIResponse)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
