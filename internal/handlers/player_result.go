package handlers

import (
	"net/http"

	"github.com/bdvbs4e/backtriviapp/internal/models"
	"github.com/bdvbs4e/backtriviapp/internal/services"

	"github.com/gin-gonic/gin"
)

type PlayerResultHandler struct {
	resultService *services.PlayerResultService
}

func NewPlayerResultHandler(resultService *services.PlayerResultService) *PlayerResultHandler {
	return &PlayerResultHandler{resultService: resultService}
}

// GetResultsByRoom godoc
// @Summary      Results for one room, ordered by score
// @Tags         player-results
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Success      200 {array} models.PlayerResult
// @Router       /api/player-results/room/{roomId} [get]
func (h *PlayerResultHandler) GetResultsByRoom(c *gin.Context) {
	results, err := h.resultService.QueryByRoom(c.Param("roomId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to query results"})
		return
	}
	c.JSON(http.StatusOK, results)
}

// UpsertResult godoc
// @Summary      Create or update one player result
// @Tags         player-results
// @Accept       json
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Param        request body models.PlayerResult true "Result data"
// @Success      200 {object} MessageResponse
// @Router       /api/player-results/room/{roomId} [post]
func (h *PlayerResultHandler) UpsertResult(c *gin.Context) {
	var result models.PlayerResult
	if err := c.ShouldBindJSON(&result); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if result.PlayerID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "playerId required"})
		return
	}

	if err := h.resultService.Upsert(c.Param("roomId"), result); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to upsert result"})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "result saved"})
}

type EliminationRequest struct {
	Eliminated      bool `json:"eliminated"`
	EliminatedRound *int `json:"eliminatedRound"`
}

// UpdateElimination godoc
// @Summary      Update a player's elimination state
// @Tags         player-results
// @Accept       json
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Param        playerId path string true "Player ID"
// @Param        request body EliminationRequest true "Elimination data"
// @Success      200 {object} MessageResponse
// @Router       /api/player-results/room/{roomId}/player/{playerId}/elimination [put]
func (h *PlayerResultHandler) UpdateElimination(c *gin.Context) {
	var req EliminationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	err := h.resultService.UpdateElimination(c.Param("roomId"), c.Param("playerId"), req.Eliminated, req.EliminatedRound)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to update elimination"})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "elimination updated"})
}

type ScoreRequest struct {
	Score int `json:"score"`
}

// UpdateScore godoc
// @Summary      Update a player's score
// @Tags         player-results
// @Accept       json
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Param        playerId path string true "Player ID"
// @Param        request body ScoreRequest true "Score data"
// @Success      200 {object} MessageResponse
// @Router       /api/player-results/room/{roomId}/player/{playerId}/score [put]
func (h *PlayerResultHandler) UpdateScore(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.resultService.UpdateScore(c.Param("roomId"), c.Param("playerId"), req.Score); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to update score"})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "score updated"})
}

// GetPlayerStats godoc
// @Summary      Aggregate stats for one player across games
// @Tags         player-results
// @Produce      json
// @Param        playerId path string true "Player ID"
// @Success      200 {object} services.PlayerStats
// @Failure      404 {object} ErrorResponse
// @Router       /api/player-results/player/{playerId}/stats [get]
func (h *PlayerResultHandler) GetPlayerStats(c *gin.Context) {
	stats, err := h.resultService.GetPlayerStats(c.Param("playerId"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
