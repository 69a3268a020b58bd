package delivery

import (
	"net/http"

	"github.com/Anniix/kisanx-backend/internal/clients"
	"github.com/Anniix/kisanx-backend/internal/middleware"
	"github.com/Anniix/kisanx-backend/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ChatHandler struct {
	useCase usecase.ChatUseCase
	log     *logrus.Logger
}

func NewChatHandler(uc usecase.ChatUseCase, logger *logrus.Logger) *ChatHandler {
	return &ChatHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *ChatHandler) RegisterRoutes(router gin.IRouter, protect gin.HandlerFunc) {
	router.POST("/chat", protect, h.Chat)
}

type chatRequest struct {
	Messages []clients.ChatMessage `json:"messages" binding:"required"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (h *ChatHandler) Chat(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Messages array is required")
		return
	}

	reply, err := h.useCase.Chat(c.Request.Context(), user.ID, req.Messages)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Chat reply generated", chatResponse{Reply: reply})
}
