package delivery

import (
	"net/http"

	"github.com/Anniix/kisanx-backend/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type MarketHandler struct {
	useCase usecase.MarketUseCase
	log     *logrus.Logger
}

func NewMarketHandler(uc usecase.MarketUseCase, logger *logrus.Logger) *MarketHandler {
	return &MarketHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *MarketHandler) RegisterRoutes(router gin.IRouter) {
	market := router.Group("/market")
	{
		market.GET("/rates", h.GetRates)
	}
}

// GetRates is public. Prices fluctuate hourly so the mobile app can poll
// without authentication.
func (h *MarketHandler) GetRates(c *gin.Context) {
	rates := h.useCase.Rates(c.Request.Context(), c.Query("search"))
	SuccessResponse(c, http.StatusOK, "Market rates retrieved successfully", rates)
}
