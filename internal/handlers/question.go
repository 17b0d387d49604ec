package handlers

import (
	"net/http"
	"strconv"

	"github.com/bdvbs4e/backtriviapp/internal/models"
	"github.com/bdvbs4e/backtriviapp/internal/services"

	"github.com/gin-gonic/gin"
)

type QuestionHandler struct {
	questionService *services.QuestionService
}

func NewQuestionHandler(questionService *services.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

type QuestionRequest struct {
	Category      string   `json:"category" binding:"required"`
	Text          string   `json:"text" binding:"required"`
	Options       []string `json:"options" binding:"required"`
	CorrectAnswer string   `json:"correctAnswer" binding:"required"`
}

// ListQuestions godoc
// @Summary      List all questions
// @Tags         questions
// @Produce      json
// @Success      200 {array} models.Question
// @Router       /api/questions [get]
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	questions, err := h.questionService.ListQuestions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, questions)
}

// GetQuestion godoc
// @Summary      Get one question
// @Tags         questions
// @Produce      json
// @Param        id path int true "Question ID"
// @Success      200 {object} models.Question
// @Failure      404 {object} ErrorResponse
// @Router       /api/questions/{id} [get]
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid question id"})
		return
	}

	question, err := h.questionService.GetQuestion(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, question)
}

// CreateQuestion godoc
// @Summary      Create a question
// @Tags         questions
// @Accept       json
// @Produce      json
// @Param        request body QuestionRequest true "Question data"
// @Success      201 {object} models.Question
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/questions [post]
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	question := models.Question{
		Category:      req.Category,
		Text:          req.Text,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
	}
	if err := h.questionService.CreateQuestion(&question); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, question)
}

// UpdateQuestion godoc
// @Summary      Update a question
// @Tags         questions
// @Accept       json
// @Produce      json
// @Param        id path int true "Question ID"
// @Param        request body QuestionRequest true "Question data"
// @Success      200 {object} models.Question
// @Security     BearerAuth
// @Router       /api/questions/{id} [put]
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid question id"})
		return
	}

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	updated, err := h.questionService.UpdateQuestion(uint(id), &models.Question{
		Category:      req.Category,
		Text:          req.Text,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteQuestion godoc
// @Summary      Delete a question
// @Tags         questions
// @Param        id path int true "Question ID"
// @Success      200 {object} MessageResponse
// @Security     BearerAuth
// @Router       /api/questions/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid question id"})
		return
	}

	if err := h.questionService.DeleteQuestion(uint(id)); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "question deleted"})
}
