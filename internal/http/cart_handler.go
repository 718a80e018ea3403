package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"shopfront/internal/domain"
	"shopfront/internal/service"
	"shopfront/internal/session"
)

// CartHandler mantiene dependencias para carrito y checkout. El carrito vive
// en la sesión; no hay persistencia de órdenes.
type CartHandler struct {
	logger   *zap.Logger
	sessions *session.Manager
}

func NewCartHandler(logger *zap.Logger, sessions *session.Manager) *CartHandler {
	return &CartHandler{
		logger:   logger,
		sessions: sessions,
	}
}

// Cart maneja GET /cart.
func (h *CartHandler) Cart(c *gin.Context) {
	items := h.sessions.Cart(c.Request.Context())
	htmlWithFlash(c, h.sessions, http.StatusOK, "cart.html", gin.H{"CartItems": items})
}

// AddToCart maneja POST /cart/add.
func (h *CartHandler) AddToCart(c *gin.Context) {
	ctx := c.Request.Context()

	name := strings.TrimSpace(c.PostForm("name"))
	price, priceErr := strconv.ParseFloat(c.PostForm("price"), 64)
	quantity, qtyErr := strconv.Atoi(c.DefaultPostForm("quantity", "1"))

	if name == "" || priceErr != nil || price < 0 || qtyErr != nil || quantity < 1 {
		h.sessions.SetFlash(ctx, "error", "Invalid item.")
		c.Redirect(http.StatusSeeOther, "/cart")
		return
	}

	items := h.sessions.Cart(ctx)
	items = append(items, domain.CartItem{
		ID:       uuid.NewString(),
		Name:     name,
		Price:    price,
		Quantity: quantity,
	})
	h.sessions.SetCart(ctx, items)

	h.sessions.SetFlash(ctx, "success", "Item added to cart.")
	c.Redirect(http.StatusSeeOther, "/cart")
}

// RemoveFromCart maneja POST /cart/remove.
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.PostForm("id")

	items := h.sessions.Cart(ctx)
	kept := items[:0]
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	h.sessions.SetCart(ctx, kept)
	c.Redirect(http.StatusSeeOther, "/cart")
}

// Checkout maneja GET /checkout.
func (h *CartHandler) Checkout(c *gin.Context) {
	ctx := c.Request.Context()
	items := h.sessions.Cart(ctx)
	totals := service.ComputeCartTotals(items)
	htmlWithFlash(c, h.sessions, http.StatusOK, "checkout.html", gin.H{
		"CartItems": items,
		"Totals":    totals,
	})
}

// ConfirmCheckout maneja POST /checkout: solo renderiza la confirmación con
// los totales calculados, no se crea ningún registro de orden.
func (h *CartHandler) ConfirmCheckout(c *gin.Context) {
	ctx := c.Request.Context()
	totals := service.ComputeCartTotals(h.sessions.Cart(ctx))
	htmlWithFlash(c, h.sessions, http.StatusOK, "order_confirmation.html", gin.H{
		"Totals": totals,
	})
}

// OrderConfirmation maneja GET /order-confirmation.
func (h *CartHandler) OrderConfirmation(c *gin.Context) {
	htmlWithFlash(c, h.sessions, http.StatusOK, "order_confirmation.html", nil)
}
