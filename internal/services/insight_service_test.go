package services

import (
	"strings"
	"testing"
	"time"

	"centavo/internal/models"
	"centavo/internal/testutil"
)

func insightTitles(list []Insight) []string {
	titles := make([]string, len(list))
	for i, in := range list {
		titles[i] = in.Title
	}
	return titles
}

func hasInsight(list []Insight, title string) bool {
	for _, in := range list {
		if in.Title == title {
			return true
		}
	}
	return false
}

func TestBuildInsights(t *testing.T) {
	t.Run("overspending_comes_first", func(t *testing.T) {
		stats := LedgerStats{
			TotalIncome:          100000,
			TotalExpenses:        120000,
			EssentialExpenses:    90000,
			NonEssentialExpenses: 30000,
		}
		list := BuildInsights(stats, nil)

		if len(list) == 0 || list[0].Title != "Gastos Superando Ganhos" {
			t.Errorf("expected overspending insight first, got %v", insightTitles(list))
		}
		if list[0].Type != "danger" {
			t.Errorf("expected danger severity, got %s", list[0].Type)
		}
	})

	t.Run("high_essential_share", func(t *testing.T) {
		stats := LedgerStats{
			TotalIncome:          200000,
			TotalExpenses:        100000,
			EssentialExpenses:    70000,
			NonEssentialExpenses: 30000,
			TotalInvested:        1,
		}
		list := BuildInsights(stats, nil)

		if !hasInsight(list, "Gastos Essenciais Altos") {
			t.Errorf("expected high-essentials warning, got %v", insightTitles(list))
		}
		if hasInsight(list, "Orçamento Saudável") {
			t.Error("healthy-budget praise must not coexist with the warning")
		}
	})

	t.Run("healthy_budget_praise", func(t *testing.T) {
		stats := LedgerStats{
			TotalIncome:          200000,
			TotalExpenses:        100000,
			EssentialExpenses:    40000,
			NonEssentialExpenses: 60000,
			TotalInvested:        1,
		}
		list := BuildInsights(stats, nil)

		if !hasInsight(list, "Orçamento Saudável") {
			t.Errorf("expected healthy-budget insight, got %v", insightTitles(list))
		}
	})

	t.Run("start_investing_nudge", func(t *testing.T) {
		stats := LedgerStats{TotalIncome: 100000, TotalExpenses: 50000, EssentialExpenses: 25000, NonEssentialExpenses: 25000}
		list := BuildInsights(stats, nil)

		if !hasInsight(list, "Comece a Investir") {
			t.Errorf("expected investing nudge, got %v", insightTitles(list))
		}

		stats.TotalInvested = 10000
		list = BuildInsights(stats, nil)
		if hasInsight(list, "Comece a Investir") {
			t.Error("nudge must disappear once anything is invested")
		}
	})

	t.Run("goal_acceleration_needs_meaningful_savings", func(t *testing.T) {
		goal := models.Goal{Name: "Viagem", TargetAmount: 500000}

		// 20% of 20000 is 4000, below the floor.
		small := LedgerStats{TotalIncome: 100000, TotalExpenses: 20000, NonEssentialExpenses: 20000, TotalInvested: 1}
		if hasInsight(BuildInsights(small, []models.Goal{goal}), "Acelere sua Meta") {
			t.Error("tip must be suppressed when the potential saving is negligible")
		}

		// 20% of 50000 is 10000, above the floor.
		big := LedgerStats{TotalIncome: 200000, TotalExpenses: 50000, NonEssentialExpenses: 50000, TotalInvested: 1}
		list := BuildInsights(big, []models.Goal{goal})
		if !hasInsight(list, "Acelere sua Meta") {
			t.Errorf("expected goal tip, got %v", insightTitles(list))
		}
		for _, in := range list {
			if in.Title == "Acelere sua Meta" && !strings.Contains(in.Message, "Viagem") {
				t.Errorf("tip should name the goal, got %s", in.Message)
			}
		}
	})

	t.Run("empty_stats_yield_no_insights", func(t *testing.T) {
		list := BuildInsights(LedgerStats{}, nil)
		if len(list) != 0 {
			t.Errorf("expected no insights, got %v", insightTitles(list))
		}
	})
}

func TestSimulate(t *testing.T) {
	t.Run("affordable_purchase", func(t *testing.T) {
		stats := LedgerStats{TotalBalance: 100000}
		result := Simulate(30000, stats, nil)

		if !result.Allowed {
			t.Error("expected purchase to be allowed")
		}
		if result.RemainingBalance != 70000 {
			t.Errorf("expected remaining 70000, got %d", result.RemainingBalance)
		}
		if !strings.HasPrefix(result.ImpactMessage, "Você pode comprar!") {
			t.Errorf("unexpected message: %s", result.ImpactMessage)
		}
		if result.Impacts.Emergency != "Não afeta a reserva." {
			t.Errorf("unexpected emergency impact: %s", result.Impacts.Emergency)
		}
	})

	t.Run("overdraft_eats_the_emergency_fund", func(t *testing.T) {
		stats := LedgerStats{TotalBalance: 10000}
		goals := []models.Goal{{Name: "Reserva de Emergência", TargetAmount: 600000, CurrentAmount: 300000}}

		result := Simulate(50000, stats, goals)

		if result.Allowed {
			t.Error("expected purchase to be denied")
		}
		if !strings.HasPrefix(result.ImpactMessage, "Cuidado!") {
			t.Errorf("unexpected message: %s", result.ImpactMessage)
		}
		if !strings.HasPrefix(result.Impacts.Emergency, "Consome") {
			t.Errorf("expected the deficit to hit the reserve, got %s", result.Impacts.Emergency)
		}
		if len(result.AffectedGoals) != 1 || result.AffectedGoals[0] != "Reserva de Emergência" {
			t.Errorf("expected the reserve among affected goals, got %v", result.AffectedGoals)
		}
	})

	t.Run("overdraft_without_reserve", func(t *testing.T) {
		result := Simulate(50000, LedgerStats{TotalBalance: 10000}, nil)

		if result.Impacts.Emergency != "Deixa você no vermelho (sem reserva)." {
			t.Errorf("unexpected emergency impact: %s", result.Impacts.Emergency)
		}
	})

	t.Run("goal_impact_uses_nearest_gap", func(t *testing.T) {
		goals := []models.Goal{
			{Name: "Casa", TargetAmount: 10000000, CurrentAmount: 0},
			{Name: "Notebook", TargetAmount: 500000, CurrentAmount: 400000},
		}
		result := Simulate(50000, LedgerStats{TotalBalance: 1000000}, goals)

		// 50000 of the 100000 still missing for the notebook.
		if !strings.Contains(result.Impacts.Goals, "Notebook") || !strings.Contains(result.Impacts.Goals, "50.0%") {
			t.Errorf("unexpected goal impact: %s", result.Impacts.Goals)
		}
	})

	t.Run("amount_above_goal_gap", func(t *testing.T) {
		goals := []models.Goal{{Name: "Notebook", TargetAmount: 500000, CurrentAmount: 490000}}
		result := Simulate(50000, LedgerStats{TotalBalance: 1000000}, goals)

		if !strings.HasPrefix(result.Impacts.Goals, "Valor superior ao restante") {
			t.Errorf("unexpected goal impact: %s", result.Impacts.Goals)
		}
	})
}

func TestComputeHealthScore(t *testing.T) {
	t.Run("no_income_scores_zero", func(t *testing.T) {
		hs := ComputeHealthScore(LedgerStats{TotalExpenses: 50000, TotalInvested: 100000})
		if hs.Score != 0 {
			t.Errorf("expected score 0 without income, got %d", hs.Score)
		}
	})

	t.Run("full_marks", func(t *testing.T) {
		// Savings 50%, invested 20% of income, essentials 30% of income.
		hs := ComputeHealthScore(LedgerStats{
			TotalIncome:       100000,
			TotalExpenses:     50000,
			EssentialExpenses: 30000,
			TotalInvested:     20000,
		})
		if hs.Score != 100 {
			t.Errorf("expected score 100, got %d", hs.Score)
		}
		if hs.SavingsPoints != 40 || hs.InvestPoints != 30 || hs.EssentialPoints != 30 {
			t.Errorf("unexpected breakdown: %+v", hs)
		}
	})

	t.Run("partial_savings_rate", func(t *testing.T) {
		// Savings rate 10% earns 20 points; essentials at 90% earn none.
		hs := ComputeHealthScore(LedgerStats{
			TotalIncome:       100000,
			TotalExpenses:     90000,
			EssentialExpenses: 90000,
		})
		if hs.SavingsPoints != 20 {
			t.Errorf("expected 20 savings points, got %d", hs.SavingsPoints)
		}
		if hs.InvestPoints != 0 || hs.EssentialPoints != 0 {
			t.Errorf("unexpected breakdown: %+v", hs)
		}
		if hs.Score != 20 {
			t.Errorf("expected score 20, got %d", hs.Score)
		}
	})

	t.Run("moderate_essentials_band", func(t *testing.T) {
		// Essentials at 60% of income fall in the 15-point band.
		hs := ComputeHealthScore(LedgerStats{
			TotalIncome:       100000,
			TotalExpenses:     70000,
			EssentialExpenses: 60000,
		})
		if hs.EssentialPoints != 15 {
			t.Errorf("expected 15 essential points, got %d", hs.EssentialPoints)
		}
	})
}

func TestProjectGoal(t *testing.T) {
	today := time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC)

	t.Run("steady_accumulation", func(t *testing.T) {
		// Created 200 days ago with 1200 saved of 3000: 6 months of
		// history, 200 per month, 1800 to go.
		goal := &models.Goal{
			Name:          "Carro",
			TargetAmount:  3000,
			CurrentAmount: 1200,
		}
		goal.CreatedAt = today.AddDate(0, 0, -200)

		p := ProjectGoal(goal, today)

		if !p.HasTrajectory {
			t.Fatal("expected a trajectory")
		}
		if p.AvgPerMonth != 200 {
			t.Errorf("expected 200 per month, got %d", p.AvgPerMonth)
		}
		if p.MonthsToReach != 9 {
			t.Errorf("expected 9 months to reach, got %d", p.MonthsToReach)
		}
		if p.ProjectedDate == nil || !p.ProjectedDate.Equal(today.AddDate(0, 9, 0)) {
			t.Errorf("unexpected projected date: %v", p.ProjectedDate)
		}
	})

	t.Run("new_goal_counts_one_month", func(t *testing.T) {
		goal := &models.Goal{TargetAmount: 10000, CurrentAmount: 2000}
		goal.CreatedAt = today.AddDate(0, 0, -3)

		p := ProjectGoal(goal, today)

		if p.AvgPerMonth != 2000 {
			t.Errorf("history shorter than a month counts as one: got %d", p.AvgPerMonth)
		}
	})

	t.Run("nothing_saved_has_no_trajectory", func(t *testing.T) {
		goal := &models.Goal{TargetAmount: 10000}
		goal.CreatedAt = today.AddDate(0, -6, 0)

		p := ProjectGoal(goal, today)

		if p.HasTrajectory || p.ProjectedDate != nil {
			t.Errorf("expected no trajectory, got %+v", p)
		}
	})

	t.Run("completed_goal", func(t *testing.T) {
		goal := &models.Goal{TargetAmount: 10000, CurrentAmount: 10000}
		goal.CreatedAt = today.AddDate(0, -6, 0)

		p := ProjectGoal(goal, today)

		if !p.Completed || p.HasTrajectory {
			t.Errorf("expected completed without trajectory, got %+v", p)
		}
	})
}

func TestSimulatePurchase(t *testing.T) {
	t.Run("uses_all_time_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		txSvc := NewTransactionService(db)
		svc := NewInsightService(db, txSvc)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeIncome, 100000)
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, 40000)

		result, err := svc.SimulatePurchase(user.ID, 50000)
		testutil.AssertNoError(t, err)

		if !result.Allowed || result.RemainingBalance != 10000 {
			t.Errorf("expected allowed with remaining 10000, got %+v", result)
		}
	})

	t.Run("rejects_non_positive_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewInsightService(db, NewTransactionService(db))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.SimulatePurchase(user.ID, 0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetGoalProjection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewInsightService(db, NewTransactionService(db))
	user := testutil.CreateTestUser(t, db)

	_, err := svc.GetGoalProjection(user.ID, 999, time.Now())
	testutil.AssertAppError(t, err, "GOAL_NOT_FOUND")
}
