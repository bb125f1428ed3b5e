package services

import (
	"testing"
	"time"

	"centavo/internal/models"
	"centavo/internal/pagination"
	"centavo/internal/testutil"
)

func TestNextOccurrence(t *testing.T) {
	cases := []struct {
		name      string
		date      time.Time
		frequency models.Frequency
		want      time.Time
	}{
		{
			name:      "weekly",
			date:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			frequency: models.FrequencyWeekly,
			want:      time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "monthly_plain",
			date:      time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			frequency: models.FrequencyMonthly,
			want:      time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "monthly_clamps_jan_31_to_feb_29",
			date:      time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			frequency: models.FrequencyMonthly,
			want:      time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "monthly_clamps_jan_31_to_feb_28",
			date:      time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
			frequency: models.FrequencyMonthly,
			want:      time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "monthly_clamps_may_31_to_jun_30",
			date:      time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
			frequency: models.FrequencyMonthly,
			want:      time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "monthly_crosses_year",
			date:      time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			frequency: models.FrequencyMonthly,
			want:      time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "yearly_clamps_leap_day",
			date:      time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
			frequency: models.FrequencyYearly,
			want:      time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NextOccurrence(tc.date, tc.frequency)
			testutil.AssertNoError(t, err)
			if !got.Equal(tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}

	t.Run("unknown_frequency", func(t *testing.T) {
		_, err := NextOccurrence(time.Now(), models.Frequency("daily"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestCreateRecurring(t *testing.T) {
	t.Run("first_run_is_start_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)
		user := testutil.CreateTestUser(t, db)

		start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		recurring, err := svc.CreateRecurring(user.ID, RecurringInput{
			Description: "Internet",
			Amount:      12000,
			Category:    models.CategoryFixedExpense,
			Type:        models.TransactionTypeExpense,
			IsEssential: true,
			Frequency:   models.FrequencyMonthly,
			StartDate:   start,
		})
		testutil.AssertNoError(t, err)

		if !recurring.NextRunDate.Equal(start) {
			t.Errorf("expected next run %v, got %v", start, recurring.NextRunDate)
		}
		if !recurring.Active {
			t.Error("new template should start active")
		}
	})

	t.Run("rejects_bad_frequency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateRecurring(user.ID, RecurringInput{
			Description: "x",
			Amount:      100,
			Category:    models.CategoryOther,
			Type:        models.TransactionTypeExpense,
			Frequency:   models.Frequency("hourly"),
			StartDate:   time.Now(),
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestProcessDue(t *testing.T) {
	t.Run("advances_one_period_per_call", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)
		user := testutil.CreateTestUser(t, db)

		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		today := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
		template := testutil.CreateTestRecurring(t, db, user.ID, models.FrequencyWeekly, start)

		created, err := svc.ProcessDue(user.ID, today)
		testutil.AssertNoError(t, err)

		// One entry per call, even when several periods are overdue.
		if created != 1 {
			t.Fatalf("expected 1 created transaction, got %d", created)
		}

		var tx models.Transaction
		if err := db.Where("user_id = ?", user.ID).First(&tx).Error; err != nil {
			t.Fatalf("expected a materialized transaction: %v", err)
		}
		if !tx.Date.Equal(start) {
			t.Errorf("expected transaction dated %v, got %v", start, tx.Date)
		}

		var reloaded models.RecurringTransaction
		db.First(&reloaded, template.ID)
		want := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
		if !reloaded.NextRunDate.Equal(want) {
			t.Errorf("expected next run %v, got %v", want, reloaded.NextRunDate)
		}
	})

	t.Run("repeated_calls_converge", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)
		user := testutil.CreateTestUser(t, db)

		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		today := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
		testutil.CreateTestRecurring(t, db, user.ID, models.FrequencyWeekly, start)

		total := 0
		for i := 0; i < 5; i++ {
			created, err := svc.ProcessDue(user.ID, today)
			testutil.AssertNoError(t, err)
			total += created
		}

		// Jan 1, 8 and 15 are due by Jan 20; Jan 22 is not.
		if total != 3 {
			t.Errorf("expected 3 materialized transactions, got %d", total)
		}
		created, err := svc.ProcessDue(user.ID, today)
		testutil.AssertNoError(t, err)
		if created != 0 {
			t.Errorf("expected convergence, got %d more transactions", created)
		}
	})

	t.Run("skips_inactive_and_future", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)
		user := testutil.CreateTestUser(t, db)

		today := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
		paused := testutil.CreateTestRecurring(t, db, user.ID, models.FrequencyMonthly, today.AddDate(0, 0, -5))
		db.Model(paused).Update("active", false)
		testutil.CreateTestRecurring(t, db, user.ID, models.FrequencyMonthly, today.AddDate(0, 0, 5))

		created, err := svc.ProcessDue(user.ID, today)
		testutil.AssertNoError(t, err)
		if created != 0 {
			t.Errorf("expected no transactions, got %d", created)
		}
	})
}

func TestSetActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewRecurringService(db)
	user := testutil.CreateTestUser(t, db)
	template := testutil.CreateTestRecurring(t, db, user.ID, models.FrequencyMonthly, time.Now())

	updated, err := svc.SetActive(user.ID, template.ID, false)
	testutil.AssertNoError(t, err)
	if updated.Active {
		t.Error("expected template to be paused")
	}

	updated, err = svc.SetActive(user.ID, template.ID, true)
	testutil.AssertNoError(t, err)
	if !updated.Active {
		t.Error("expected template to be resumed")
	}
}

func TestDeleteRecurring(t *testing.T) {
	t.Run("owner_can_delete", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)
		user := testutil.CreateTestUser(t, db)
		template := testutil.CreateTestRecurring(t, db, user.ID, models.FrequencyMonthly, time.Now())

		testutil.AssertNoError(t, svc.DeleteRecurring(user.ID, template.ID))

		page, err := svc.GetUserRecurring(user.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if len(page.Data) != 0 {
			t.Errorf("expected no templates, got %d", len(page.Data))
		}
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewRecurringService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		template := testutil.CreateTestRecurring(t, db, user1.ID, models.FrequencyMonthly, time.Now())

		err := svc.DeleteRecurring(user2.ID, template.ID)
		testutil.AssertAppError(t, err, "RECURRING_NOT_FOUND")
	})
}
