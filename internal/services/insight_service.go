package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
)

// formatBRL renders cents as a Brazilian Real amount for user-facing text.
func formatBRL(cents int64) string {
	return money.New(cents, money.BRL).Display()
}

// SpendingShares returns essential and non-essential expenses as
// percentages of total expenses. Both are 0 when there are no expenses.
func SpendingShares(stats LedgerStats) (essentialPct, nonEssentialPct float64) {
	if stats.TotalExpenses <= 0 {
		return 0, 0
	}
	essentialPct = float64(stats.EssentialExpenses) / float64(stats.TotalExpenses) * 100
	nonEssentialPct = float64(stats.NonEssentialExpenses) / float64(stats.TotalExpenses) * 100
	return essentialPct, nonEssentialPct
}

// goalAccelerationFloor is the minimum suggested saving, in cents, below
// which the goal tip is not worth showing.
const goalAccelerationFloor = 5000

// BuildInsights generates the insight list from period stats and the
// user's goals. The order is fixed so the most severe observations come
// first.
func BuildInsights(stats LedgerStats, goals []models.Goal) []Insight {
	list := []Insight{}
	essentialPct, nonEssentialPct := SpendingShares(stats)

	if stats.TotalExpenses > stats.TotalIncome && stats.TotalIncome > 0 {
		list = append(list, Insight{
			Type:    "danger",
			Title:   "Gastos Superando Ganhos",
			Message: "Você está gastando mais do que ganha. Revise seus gastos não essenciais imediatamente.",
		})
	}

	if essentialPct > 60 {
		list = append(list, Insight{
			Type:    "warning",
			Title:   "Gastos Essenciais Altos",
			Message: fmt.Sprintf("Seus gastos fixos consomem %.0f%% do orçamento. O ideal é manter abaixo de 50%%.", essentialPct),
		})
	} else if essentialPct > 0 && essentialPct < 50 {
		list = append(list, Insight{
			Type:    "success",
			Title:   "Orçamento Saudável",
			Message: "Ótimo equilíbrio! Seus gastos essenciais estão sob controle.",
		})
	}

	if stats.TotalInvested == 0 && stats.TotalIncome > 0 {
		list = append(list, Insight{
			Type:    "info",
			Title:   "Comece a Investir",
			Message: "Você tem saldo positivo mas nenhum investimento. Que tal começar sua Reserva de Emergência?",
		})
	}

	if nonEssentialPct > 40 {
		list = append(list, Insight{
			Type:    "warning",
			Title:   "Atenção aos Supérfluos",
			Message: fmt.Sprintf("Você gastou %.0f%% com não essenciais este mês. Reduzir aqui é o caminho mais rápido para atingir suas metas.", nonEssentialPct),
		})
	}

	// Goal acceleration tip: suggest redirecting 20% of non-essential
	// spending to the first incomplete goal, when it is worth mentioning.
	if activeGoal := firstIncompleteGoal(goals); activeGoal != nil && stats.NonEssentialExpenses > 0 {
		potentialSavings := stats.NonEssentialExpenses / 5
		if potentialSavings > goalAccelerationFloor {
			list = append(list, Insight{
				Type:    "info",
				Title:   "Acelere sua Meta",
				Message: fmt.Sprintf("Se economizar %s em gastos supérfluos, você pode atingir a meta %q mais rápido!", formatBRL(potentialSavings), activeGoal.Name),
			})
		}
	}

	return list
}

// firstIncompleteGoal returns the first goal that is not yet complete.
func firstIncompleteGoal(goals []models.Goal) *models.Goal {
	for i := range goals {
		if !goals[i].Completed() {
			return &goals[i]
		}
	}
	return nil
}

// isEmergencyGoal reports whether a goal looks like an emergency fund.
func isEmergencyGoal(g *models.Goal) bool {
	name := strings.ToLower(g.Name)
	return strings.Contains(name, "emergência") || strings.Contains(name, "reserva")
}

// Simulate runs a "can I afford this" check against the current balance
// and the user's goals.
func Simulate(amount int64, stats LedgerStats, goals []models.Goal) SimulationResult {
	remaining := stats.TotalBalance - amount
	allowed := remaining >= 0

	var balanceImpact string
	if allowed {
		balanceImpact = fmt.Sprintf("Saldo final positivo: %s", formatBRL(remaining))
	} else {
		balanceImpact = fmt.Sprintf("Saldo final NEGATIVO: %s", formatBRL(remaining))
	}

	emergencyImpact := "Não afeta a reserva."
	affectedGoals := []string{}
	if !allowed {
		var emergency *models.Goal
		for i := range goals {
			if isEmergencyGoal(&goals[i]) {
				emergency = &goals[i]
				break
			}
		}
		if emergency != nil && emergency.CurrentAmount > 0 {
			deficit := -remaining
			emergencyImpact = fmt.Sprintf("Consome %s da reserva.", formatBRL(deficit))
			affectedGoals = append(affectedGoals, emergency.Name)
		} else {
			emergencyImpact = "Deixa você no vermelho (sem reserva)."
		}
	}

	goalImpact := "Sem impacto direto."
	if target := nearestGapGoal(goals); target != nil {
		pct := float64(amount) / float64(target.Remaining()) * 100
		if pct > 100 {
			goalImpact = fmt.Sprintf("Valor superior ao restante para %q.", target.Name)
		} else {
			goalImpact = fmt.Sprintf("Equivale a %.1f%% do que falta para %q.", pct, target.Name)
		}
	}

	var impactMessage string
	if allowed {
		impactMessage = fmt.Sprintf("Você pode comprar! %s", balanceImpact)
	} else {
		impactMessage = fmt.Sprintf("Cuidado! %s", balanceImpact)
	}

	return SimulationResult{
		Allowed:          allowed,
		RemainingBalance: remaining,
		ImpactMessage:    impactMessage,
		AffectedGoals:    affectedGoals,
		Impacts: SimulationImpacts{
			Balance:   balanceImpact,
			Emergency: emergencyImpact,
			Goals:     goalImpact,
		},
	}
}

// nearestGapGoal returns the incomplete goal closest to completion.
func nearestGapGoal(goals []models.Goal) *models.Goal {
	var best *models.Goal
	for i := range goals {
		g := &goals[i]
		if g.Completed() {
			continue
		}
		if best == nil || g.Remaining() < best.Remaining() {
			best = g
		}
	}
	return best
}

// ComputeHealthScore derives a 0-100 financial health score from period
// stats. A user with no income scores 0. The components are a savings
// rate (max 40), an investment presence bonus (max 30), and an
// essential-spending ratio against income (max 30).
func ComputeHealthScore(stats LedgerStats) HealthScore {
	hs := HealthScore{}
	if stats.TotalIncome == 0 {
		return hs
	}

	hs.SavingsRate = float64(stats.TotalIncome-stats.TotalExpenses) / float64(stats.TotalIncome) * 100
	hs.InvestmentRate = float64(stats.TotalInvested) / float64(stats.TotalIncome) * 100
	hs.EssentialRate = float64(stats.EssentialExpenses) / float64(stats.TotalIncome) * 100

	score := 0.0

	switch {
	case hs.SavingsRate > 20:
		hs.SavingsPoints = 40
	case hs.SavingsRate > 0:
		hs.SavingsPoints = int(math.Round(hs.SavingsRate * 2))
	}
	score += float64(hs.SavingsPoints)

	if stats.TotalInvested > 0 {
		hs.InvestPoints = 20
		if hs.InvestmentRate > 10 {
			hs.InvestPoints += 10
		}
	}
	score += float64(hs.InvestPoints)

	switch {
	case hs.EssentialRate < 55:
		hs.EssentialPoints = 30
	case hs.EssentialRate < 70:
		hs.EssentialPoints = 15
	}
	score += float64(hs.EssentialPoints)

	hs.Score = int(math.Min(math.Round(score), 100))
	return hs
}

// ProjectGoal estimates when a goal will be reached based on its average
// monthly accumulation since creation. A goal with nothing saved has no
// trajectory; a complete goal needs no projection.
func ProjectGoal(goal *models.Goal, today time.Time) GoalProjection {
	p := GoalProjection{GoalID: goal.ID}

	if goal.Completed() {
		p.Completed = true
		return p
	}
	if goal.CurrentAmount <= 0 {
		return p
	}

	months := int(today.Sub(goal.CreatedAt).Hours() / 24 / 30)
	if months < 1 {
		months = 1
	}

	p.HasTrajectory = true
	p.AvgPerMonth = goal.CurrentAmount / int64(months)
	p.MonthsToReach = int(math.Ceil(float64(goal.Remaining()) / float64(p.AvgPerMonth)))
	projected := today.AddDate(0, p.MonthsToReach, 0)
	p.ProjectedDate = &projected

	return p
}

// insightService exposes the pure insight and report calculations over
// the user's persisted data.
type insightService struct {
	db           *gorm.DB
	transactions TransactionServicer
}

// NewInsightService creates a new InsightServicer.
func NewInsightService(db *gorm.DB, transactions TransactionServicer) InsightServicer {
	return &insightService{db: db, transactions: transactions}
}

// userGoals loads every goal for the user, oldest first.
func (s *insightService) userGoals(userID uint) ([]models.Goal, error) {
	var goals []models.Goal
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goals, nil
}

// GetInsights generates the insight list for the filtered period.
func (s *insightService) GetInsights(userID uint, filter TransactionFilter) ([]Insight, error) {
	stats, err := s.transactions.GetStats(userID, filter)
	if err != nil {
		return nil, err
	}
	goals, err := s.userGoals(userID)
	if err != nil {
		return nil, err
	}
	return BuildInsights(*stats, goals), nil
}

// SimulatePurchase checks whether a purchase of the given amount fits the
// user's all-time balance.
func (s *insightService) SimulatePurchase(userID uint, amount int64) (*SimulationResult, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	stats, err := s.transactions.GetStats(userID, TransactionFilter{})
	if err != nil {
		return nil, err
	}
	goals, err := s.userGoals(userID)
	if err != nil {
		return nil, err
	}
	result := Simulate(amount, *stats, goals)
	return &result, nil
}

// GetHealthScore computes the financial health score for the filtered period.
func (s *insightService) GetHealthScore(userID uint, filter TransactionFilter) (*HealthScore, error) {
	stats, err := s.transactions.GetStats(userID, filter)
	if err != nil {
		return nil, err
	}
	hs := ComputeHealthScore(*stats)
	return &hs, nil
}

// GetGoalProjection estimates the completion date for one goal.
func (s *insightService) GetGoalProjection(userID, goalID uint, today time.Time) (*GoalProjection, error) {
	var goal models.Goal
	if err := s.db.Where("user_id = ?", userID).First(&goal, goalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	p := ProjectGoal(&goal, today)
	return &p, nil
}
