package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shopfront/internal/service"
	"shopfront/internal/session"
)

// PagesHandler sirve la home y las páginas estáticas de categorías.
type PagesHandler struct {
	logger     *zap.Logger
	userServ   *service.UserService
	sessions   *session.Manager
	mapsAPIKey string
}

func NewPagesHandler(logger *zap.Logger, userServ *service.UserService, sessions *session.Manager, mapsAPIKey string) *PagesHandler {
	return &PagesHandler{
		logger:     logger,
		userServ:   userServ,
		sessions:   sessions,
		mapsAPIKey: mapsAPIKey,
	}
}

// Home maneja GET /. El usuario es opcional; la clave de maps solo pasa acá.
func (h *PagesHandler) Home(c *gin.Context) {
	ctx := c.Request.Context()
	data := gin.H{"MapsAPIKey": h.mapsAPIKey}

	if userEmail := h.sessions.UserEmail(ctx); userEmail != "" {
		user, err := h.userServ.GetByEmail(ctx, userEmail)
		if err == nil {
			data["User"] = user
		} else if !errors.Is(err, service.ErrUserNotFound) {
			h.logger.Error("home user lookup failed", zap.Error(err))
		}
	}

	htmlWithFlash(c, h.sessions, http.StatusOK, "index.html", data)
}

// Static devuelve un handler que renderiza una página de catálogo fija.
func (h *PagesHandler) Static(tmpl string) gin.HandlerFunc {
	return func(c *gin.Context) {
		htmlWithFlash(c, h.sessions, http.StatusOK, tmpl, nil)
	}
}
