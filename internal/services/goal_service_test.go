package services

import (
	"strings"
	"testing"

	"fintrack/internal/finance"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/testutil"
)

func TestCreateGoal(t *testing.T) {
	tests := []struct {
		name     string
		input    GoalInput
		wantCode string
	}{
		{name: "missing_name", input: GoalInput{Target: 100}, wantCode: "INVALID_INPUT"},
		{name: "zero_target", input: GoalInput{Name: "Car"}, wantCode: "INVALID_INPUT"},
		{name: "negative_current", input: GoalInput{Name: "Car", Target: 100, CurrentAmount: -1}, wantCode: "INVALID_INPUT"},
		{name: "bad_priority", input: GoalInput{Name: "Car", Target: 100, Priority: "urgent"}, wantCode: "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			defer testutil.TeardownTestDB(t, db)
			svc := NewGoalService(db, nil)
			user := testutil.CreateTestUser(t, db)

			_, err := svc.CreateGoal(user.ID, tt.input)
			testutil.AssertAppError(t, err, tt.wantCode)
		})
	}

	t.Run("defaults_and_progress", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db, nil)
		user := testutil.CreateTestUser(t, db)

		view, err := svc.CreateGoal(user.ID, GoalInput{Name: "Vacation", Target: 200000, CurrentAmount: 150000})
		testutil.AssertNoError(t, err)

		if view.Priority != models.GoalPriorityMedium {
			t.Errorf("expected default priority medium, got %s", view.Priority)
		}
		if view.Progress != 75 || view.Remaining != 50000 || view.Status != finance.GoalStatusActive {
			t.Errorf("unexpected derived fields %+v", view)
		}
		if view.IsCompleted {
			t.Error("goal should not be completed")
		}
	})

	t.Run("created_at_target", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		notifications := NewNotificationService(db, nil)
		svc := NewGoalService(db, notifications)
		user := testutil.CreateTestUser(t, db)

		view, err := svc.CreateGoal(user.ID, GoalInput{Name: "Phone", Target: 1000, CurrentAmount: 1000})
		testutil.AssertNoError(t, err)
		if !view.IsCompleted || view.Status != finance.GoalStatusAchieved {
			t.Errorf("expected completed goal, got %+v", view)
		}
		if n := notificationsOf(t, db, user.ID); len(n) != 1 || n[0].Kind != models.NotificationGoalAchieved {
			t.Errorf("expected a goal_achieved notification, got %+v", n)
		}
	})
}

func TestUpdateGoal(t *testing.T) {
	t.Run("reaching_target_completes_once", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db, NewNotificationService(db, nil))
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, user.ID, 10000, 2000)

		current := int64(12000)
		view, err := svc.UpdateGoal(user.ID, goal.ID, GoalUpdate{CurrentAmount: &current})
		testutil.AssertNoError(t, err)
		if !view.IsCompleted || view.Progress != 100 || view.Remaining != 0 {
			t.Errorf("expected completed goal, got %+v", view)
		}

		more := int64(15000)
		_, err = svc.UpdateGoal(user.ID, goal.ID, GoalUpdate{CurrentAmount: &more})
		testutil.AssertNoError(t, err)

		notes := notificationsOf(t, db, user.ID)
		if len(notes) != 1 {
			t.Fatalf("expected exactly 1 notification, got %d", len(notes))
		}
		want := `Goal "` + goal.Name + `" achieved!`
		if notes[0].Message != want {
			t.Errorf("expected %q, got %q", want, notes[0].Message)
		}

		stored, err := svc.GetGoalByID(user.ID, goal.ID)
		testutil.AssertNoError(t, err)
		if !stored.IsCompleted || stored.CurrentAmount != 15000 {
			t.Errorf("unexpected stored goal %+v", stored)
		}
	})

	t.Run("reopen", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db, nil)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, user.ID, 10000, 2000)

		done := true
		view, err := svc.UpdateGoal(user.ID, goal.ID, GoalUpdate{IsCompleted: &done})
		testutil.AssertNoError(t, err)
		if !view.IsCompleted || view.Status != finance.GoalStatusAchieved {
			t.Errorf("expected completed goal, got %+v", view)
		}

		open := false
		view, err = svc.UpdateGoal(user.ID, goal.ID, GoalUpdate{IsCompleted: &open})
		testutil.AssertNoError(t, err)
		if view.IsCompleted || view.Status != finance.GoalStatusBehind {
			t.Errorf("expected reopened goal, got %+v", view)
		}
	})

	t.Run("invalid_priority", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewGoalService(db, nil)
		user := testutil.CreateTestUser(t, db)
		goal := testutil.CreateTestGoal(t, db, user.ID, 10000, 0)

		p := models.GoalPriority("urgent")
		_, err := svc.UpdateGoal(user.ID, goal.ID, GoalUpdate{Priority: &p})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserGoalsAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGoalService(db, nil)
	user := testutil.CreateTestUser(t, db)

	low, err := svc.CreateGoal(user.ID, GoalInput{Name: "Low", Target: 100, Priority: models.GoalPriorityLow})
	testutil.AssertNoError(t, err)
	_, err = svc.CreateGoal(user.ID, GoalInput{Name: "High", Target: 100, Priority: models.GoalPriorityHigh})
	testutil.AssertNoError(t, err)
	_, err = svc.CreateGoal(user.ID, GoalInput{Name: "Done", Target: 100, Priority: models.GoalPriorityHigh, IsCompleted: true})
	testutil.AssertNoError(t, err)

	resp, err := svc.GetUserGoals(user.ID, pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if len(resp.Data) != 3 {
		t.Fatalf("expected 3 goals, got %d", len(resp.Data))
	}
	names := []string{resp.Data[0].Name, resp.Data[1].Name, resp.Data[2].Name}
	if names[0] != "High" || names[1] != "Low" || names[2] != "Done" {
		t.Errorf("unexpected order %v", names)
	}

	testutil.AssertNoError(t, svc.DeleteGoal(user.ID, low.ID))
	_, err = svc.GetGoalByID(user.ID, low.ID)
	testutil.AssertAppError(t, err, "GOAL_NOT_FOUND")
}

func TestGetUserGoals_UndatedLast(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGoalService(db, nil)
	user := testutil.CreateTestUser(t, db)

	later := testutil.Today().AddDate(0, 6, 0)
	sooner := testutil.Today().AddDate(0, 1, 0)
	for _, in := range []GoalInput{
		{Name: "Someday", Target: 100, Priority: models.GoalPriorityMedium},
		{Name: "Later", Target: 100, Priority: models.GoalPriorityMedium, TargetDate: &later},
		{Name: "Sooner", Target: 100, Priority: models.GoalPriorityMedium, TargetDate: &sooner},
	} {
		_, err := svc.CreateGoal(user.ID, in)
		testutil.AssertNoError(t, err)
	}

	resp, err := svc.GetUserGoals(user.ID, pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	got := make([]string, 0, len(resp.Data))
	for _, g := range resp.Data {
		got = append(got, g.Name)
	}
	if strings.Join(got, ",") != "Sooner,Later,Someday" {
		t.Errorf("expected dated goals first, got %v", got)
	}
}

func TestGoalSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewGoalService(db, nil)
	user := testutil.CreateTestUser(t, db)

	past := testutil.Today().AddDate(0, 0, -3)
	_, err := svc.CreateGoal(user.ID, GoalInput{Name: "Late", Target: 10000, CurrentAmount: 2500, TargetDate: &past, Priority: models.GoalPriorityHigh})
	testutil.AssertNoError(t, err)
	_, err = svc.CreateGoal(user.ID, GoalInput{Name: "Done", Target: 30000, CurrentAmount: 30000})
	testutil.AssertNoError(t, err)
	testutil.CreateTestAsset(t, db, user.ID, 5000)
	testutil.CreateTestSavingsAccount(t, db, user.ID, 7000, 10)

	summary, err := svc.GetSummary(user.ID)
	testutil.AssertNoError(t, err)

	if summary.TotalGoals != 2 || summary.CompletedGoals != 1 || summary.ActiveGoals != 1 {
		t.Errorf("unexpected counts %+v", summary)
	}
	if summary.TotalTargetAmount != 40000 || summary.TotalCurrentAmount != 32500 {
		t.Errorf("unexpected amounts %+v", summary)
	}
	if summary.CompletionRate != 50 || summary.OverallProgress != 81.25 {
		t.Errorf("unexpected rates %+v", summary)
	}
	if summary.AverageGoalAmount != 20000 || summary.OverdueGoals != 1 {
		t.Errorf("unexpected average/overdue %+v", summary)
	}
	if summary.PriorityDistribution["high"] != 1 || summary.PriorityDistribution["medium"] != 1 || summary.PriorityDistribution["low"] != 0 {
		t.Errorf("unexpected priority distribution %v", summary.PriorityDistribution)
	}
	if summary.TotalWealth != 12000 {
		t.Errorf("expected total wealth 12000, got %d", summary.TotalWealth)
	}
}
