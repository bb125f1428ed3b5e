package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
	"centavo/internal/services"
)

// --- mock goal service ---

type mockGoalService struct {
	createGoalFn   func(userID uint, name string, targetAmount int64, deadline *time.Time) (*models.Goal, error)
	getUserGoalsFn func(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Goal], error)
	getGoalByIDFn  func(userID, goalID uint) (*models.Goal, error)
	updateGoalFn   func(userID, goalID uint, name *string, targetAmount, currentAmount *int64, deadline *time.Time) (*models.Goal, error)
	deleteGoalFn   func(userID, goalID uint) error
}

func (m *mockGoalService) CreateGoal(userID uint, name string, targetAmount int64, deadline *time.Time) (*models.Goal, error) {
	if m.createGoalFn != nil {
		return m.createGoalFn(userID, name, targetAmount, deadline)
	}
	return &models.Goal{}, nil
}

func (m *mockGoalService) GetUserGoals(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Goal], error) {
	if m.getUserGoalsFn != nil {
		return m.getUserGoalsFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.Goal{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockGoalService) GetGoalByID(userID, goalID uint) (*models.Goal, error) {
	if m.getGoalByIDFn != nil {
		return m.getGoalByIDFn(userID, goalID)
	}
	return &models.Goal{}, nil
}

func (m *mockGoalService) UpdateGoal(userID, goalID uint, name *string, targetAmount, currentAmount *int64, deadline *time.Time) (*models.Goal, error) {
	if m.updateGoalFn != nil {
		return m.updateGoalFn(userID, goalID, name, targetAmount, currentAmount, deadline)
	}
	return &models.Goal{}, nil
}

func (m *mockGoalService) DeleteGoal(userID, goalID uint) error {
	if m.deleteGoalFn != nil {
		return m.deleteGoalFn(userID, goalID)
	}
	return nil
}

var _ services.GoalServicer = (*mockGoalService)(nil)

func setupGoalRouter(handler *GoalHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.POST("/goals", handler.CreateGoal)
	auth.GET("/goals", handler.GetUserGoals)
	auth.GET("/goals/:id", handler.GetGoalByID)
	auth.PUT("/goals/:id", handler.UpdateGoal)
	auth.DELETE("/goals/:id", handler.DeleteGoal)
	return r
}

func TestGoalHandler_CreateGoal(t *testing.T) {
	t.Run("returns 201 with goal", func(t *testing.T) {
		goalSvc := &mockGoalService{
			createGoalFn: func(userID uint, name string, targetAmount int64, deadline *time.Time) (*models.Goal, error) {
				return &models.Goal{
					Base:         models.Base{ID: 1},
					UserID:       userID,
					Name:         name,
					TargetAmount: targetAmount,
				}, nil
			},
		}
		handler := NewGoalHandler(goalSvc)
		r := setupGoalRouter(handler)

		rec := doRequest(r, "POST", "/goals",
			`{"name":"Reserva de Emergência","target_amount":1000000}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		goal := result["goal"].(map[string]interface{})
		if goal["name"] != "Reserva de Emergência" {
			t.Errorf("expected goal name, got %v", goal["name"])
		}
	})

	t.Run("returns 400 on non-positive target", func(t *testing.T) {
		handler := NewGoalHandler(&mockGoalService{})
		r := setupGoalRouter(handler)

		rec := doRequest(r, "POST", "/goals", `{"name":"Viagem","target_amount":0}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on bad deadline", func(t *testing.T) {
		handler := NewGoalHandler(&mockGoalService{})
		r := setupGoalRouter(handler)

		rec := doRequest(r, "POST", "/goals",
			`{"name":"Viagem","target_amount":500000,"deadline":"31/12/2025"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestGoalHandler_UpdateGoal(t *testing.T) {
	t.Run("passes only provided fields", func(t *testing.T) {
		var gotName *string
		var gotCurrent *int64
		var gotTarget *int64
		goalSvc := &mockGoalService{
			updateGoalFn: func(_, _ uint, name *string, targetAmount, currentAmount *int64, _ *time.Time) (*models.Goal, error) {
				gotName, gotTarget, gotCurrent = name, targetAmount, currentAmount
				return &models.Goal{Base: models.Base{ID: 1}, CurrentAmount: *currentAmount}, nil
			},
		}
		handler := NewGoalHandler(goalSvc)
		r := setupGoalRouter(handler)

		rec := doRequest(r, "PUT", "/goals/1", `{"current_amount":250000}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotName != nil || gotTarget != nil {
			t.Error("expected untouched fields to be nil")
		}
		if gotCurrent == nil || *gotCurrent != 250000 {
			t.Errorf("expected current amount 250000, got %v", gotCurrent)
		}
	})

	t.Run("returns 404 for unknown goal", func(t *testing.T) {
		goalSvc := &mockGoalService{
			updateGoalFn: func(_, _ uint, _ *string, _, _ *int64, _ *time.Time) (*models.Goal, error) {
				return nil, apperrors.ErrGoalNotFound
			},
		}
		handler := NewGoalHandler(goalSvc)
		r := setupGoalRouter(handler)

		rec := doRequest(r, "PUT", "/goals/99", `{"current_amount":100}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "GOAL_NOT_FOUND")
	})
}

func TestGoalHandler_DeleteGoal(t *testing.T) {
	handler := NewGoalHandler(&mockGoalService{})
	r := setupGoalRouter(handler)

	rec := doRequest(r, "DELETE", "/goals/1", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
