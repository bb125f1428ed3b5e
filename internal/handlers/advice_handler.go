package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/services"
)

// AdviceHandler handles the financial assistant conversation.
type AdviceHandler struct {
	adviceService services.AdviceServicer
}

// NewAdviceHandler creates a new AdviceHandler.
func NewAdviceHandler(adviceService services.AdviceServicer) *AdviceHandler {
	return &AdviceHandler{adviceService: adviceService}
}

// AdviceRequest represents a question for the assistant.
type AdviceRequest struct {
	Prompt string `json:"prompt" binding:"required,max=4000"`
}

// AdviceResponse represents the assistant's answer.
type AdviceResponse struct {
	Answer string `json:"answer"`
}

// GetAdvice handles a free-form financial question
// @Summary     Ask the financial assistant
// @Description Ask a question; the assistant answers with the user's finances as context
// @Tags        assistant
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AdviceRequest true "Question"
// @Success     200 {object} AdviceResponse "Assistant answer"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /assistant [post]
func (h *AdviceHandler) GetAdvice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AdviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	answer, err := h.adviceService.GetAdvice(c.Request.Context(), userID, req.Prompt)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
