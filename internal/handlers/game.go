package handlers

import (
	"net/http"

	"github.com/bdvbs4e/backtriviapp/internal/services"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	recordService *services.GameRecordService
}

func NewGameHandler(recordService *services.GameRecordService) *GameHandler {
	return &GameHandler{recordService: recordService}
}

// ListGames godoc
// @Summary      List all game records
// @Tags         games
// @Produce      json
// @Success      200 {array} models.GameRecord
// @Router       /api/games [get]
func (h *GameHandler) ListGames(c *gin.Context) {
	records, err := h.recordService.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list games"})
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetGameStats godoc
// @Summary      Global finished-game stats
// @Tags         games
// @Produce      json
// @Success      200 {object} services.GlobalGameStats
// @Router       /api/games/stats [get]
func (h *GameHandler) GetGameStats(c *gin.Context) {
	stats, err := h.recordService.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetGame godoc
// @Summary      Get one game record by room id
// @Tags         games
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Success      200 {object} models.GameRecord
// @Failure      404 {object} ErrorResponse
// @Router       /api/games/{roomId} [get]
func (h *GameHandler) GetGame(c *gin.Context) {
	record, err := h.recordService.GetByRoomID(c.Param("roomId"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}
