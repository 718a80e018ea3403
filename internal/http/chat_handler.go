package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shopfront/internal/llm"
	"shopfront/internal/session"
)

// fallbackReply es la respuesta fija ante cualquier falla del proveedor.
const fallbackReply = "An error occurred while processing your request."

// ChatHandler reenvía mensajes del chatbot al proveedor de chat-completions.
type ChatHandler struct {
	logger   *zap.Logger
	sessions *session.Manager
	chat     llm.ChatClient
}

func NewChatHandler(logger *zap.Logger, sessions *session.Manager, chat llm.ChatClient) *ChatHandler {
	return &ChatHandler{
		logger:   logger,
		sessions: sessions,
		chat:     chat,
	}
}

// ChatbotPage maneja GET /chatbot.
func (h *ChatHandler) ChatbotPage(c *gin.Context) {
	htmlWithFlash(c, h.sessions, http.StatusOK, "chatbot.html", nil)
}

// GetAIResponse maneja POST /get_ai_response. El mensaje se reenvía tal cual
// y la respuesta vuelve verbatim; toda falla colapsa en la respuesta fija.
func (h *ChatHandler) GetAIResponse(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chatbot request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"response": fallbackReply})
		return
	}

	if h.chat == nil {
		c.JSON(http.StatusOK, gin.H{"response": fallbackReply})
		return
	}

	reply, err := h.chat.Reply(c.Request.Context(), req.Message)
	if err != nil {
		h.logger.Warn("chat provider failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"response": fallbackReply})
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply})
}
