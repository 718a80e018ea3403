package http

import (
	"github.com/gin-gonic/gin"

	"shopfront/internal/session"
)

// htmlWithFlash renderiza un template inyectando el flash pendiente de la
// sesión, que se consume al mostrarse.
func htmlWithFlash(c *gin.Context, sessions *session.Manager, status int, tmpl string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if flash, ok := sessions.PopFlash(c.Request.Context()); ok {
		data["Flash"] = flash
	}
	c.HTML(status, tmpl, data)
}
