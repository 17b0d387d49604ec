package handlers

import (
	"net/http"

	"github.com/bdvbs4e/backtriviapp/internal/services"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	statsService *services.GameStatsService
}

func NewDashboardHandler(statsService *services.GameStatsService) *DashboardHandler {
	return &DashboardHandler{statsService: statsService}
}

// GetStats godoc
// @Summary      Aggregate dashboard statistics
// @Description  Totals, accuracy, top winners and categories across all games
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} services.DashboardStats
// @Router       /api/dashboard/stats [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.GetDashboardStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
