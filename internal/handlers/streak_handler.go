package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"centavo/internal/services"
)

// StreakHandler handles streak and badge requests.
type StreakHandler struct {
	streakService services.StreakServicer
}

// NewStreakHandler creates a new StreakHandler.
func NewStreakHandler(streakService services.StreakServicer) *StreakHandler {
	return &StreakHandler{streakService: streakService}
}

// Touch handles recording activity for today
// @Summary     Touch the streak
// @Description Record app activity for today and return the reconciled streak
// @Tags        gamification
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.Streak "Current streak"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /streak/touch [post]
func (h *StreakHandler) Touch(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	streak, err := h.streakService.Touch(userID, time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"streak": streak})
}

// GetStreak handles the retrieval of the current streak
// @Summary     Get the streak
// @Description Get the user's consecutive-day streak without touching it
// @Tags        gamification
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.Streak "Current streak"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /streak [get]
func (h *StreakHandler) GetStreak(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	streak, err := h.streakService.GetStreak(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"streak": streak})
}

// GetBadges handles the retrieval of derived achievements
// @Summary     Get badges
// @Description Get the user's achievements derived from goals, investments and streak
// @Tags        gamification
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.Badge "Badge list"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /badges [get]
func (h *StreakHandler) GetBadges(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	badges, err := h.streakService.GetBadges(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"badges": badges})
}
