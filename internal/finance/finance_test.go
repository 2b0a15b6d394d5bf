package finance

import (
	"testing"
	"time"

	"fintrack/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name        string
		part, whole int64
		want        float64
		capped      float64
	}{
		{"third", 1, 3, 33.33, 33.33},
		{"two_thirds", 2, 3, 66.67, 66.67},
		{"over", 150, 100, 150, 100},
		{"zero_whole", 10, 0, 0, 0},
		{"negative_whole", 10, -5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percent(tt.part, tt.whole); got != tt.want {
				t.Errorf("Percent(%d, %d) = %v, want %v", tt.part, tt.whole, got, tt.want)
			}
			if got := CappedPercent(tt.part, tt.whole); got != tt.capped {
				t.Errorf("CappedPercent(%d, %d) = %v, want %v", tt.part, tt.whole, got, tt.capped)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 ₽"},
		{5, "0,05 ₽"},
		{1050, "10,50 ₽"},
		{100000, "1 000 ₽"},
		{1234500, "12 345 ₽"},
		{123456789, "1 234 567,89 ₽"},
		{-100000, "-1 000 ₽"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := Rubles(-123456); got != "-1234.56" {
		t.Errorf("Rubles(-123456) = %q", got)
	}
	if got := Rubles(500); got != "5.00" {
		t.Errorf("Rubles(500) = %q", got)
	}
}

func TestMonthlyInterest(t *testing.T) {
	if got := MonthlyInterest(1_000_000, 12); got != 10_000 {
		t.Errorf("expected 10000, got %d", got)
	}
	if got := MonthlyInterest(100, 7.5); got != 1 {
		t.Errorf("expected half-up rounding to 1, got %d", got)
	}
	if got := MonthlyInterest(0, 10); got != 0 {
		t.Errorf("expected 0 for empty balance, got %d", got)
	}
}

func TestAverageRate(t *testing.T) {
	if got := AverageRate(nil); got != 0 {
		t.Errorf("expected 0 for no rates, got %v", got)
	}
	if got := AverageRate([]float64{5, 7.5, 10}); got != 7.5 {
		t.Errorf("expected 7.5, got %v", got)
	}
	if got := AverageRate([]float64{1, 1, 2}); got != 1.33 {
		t.Errorf("expected 1.33, got %v", got)
	}
}

func TestNetWorth(t *testing.T) {
	if got := NetWorth(500, 300, 1000); got != -200 {
		t.Errorf("expected -200, got %d", got)
	}
}

func TestMonthTotals(t *testing.T) {
	march := date(2024, time.March, 15)
	ops := []models.Operation{
		{CategoryID: "food", Type: models.OperationTypeExpense, Amount: -3000, Date: date(2024, time.March, 1)},
		{CategoryID: "food", Type: models.OperationTypeExpense, Amount: -2000, Date: date(2024, time.March, 31)},
		{CategoryID: "salary", Type: models.OperationTypeIncome, Amount: 100000, Date: date(2024, time.March, 5)},
		{CategoryID: "food", Type: models.OperationTypeExpense, Amount: -7000, Date: date(2024, time.February, 29)},
		{CategoryID: "food", Type: models.OperationTypeExpense, Amount: -9000, Date: date(2023, time.March, 10)},
	}

	totals := MonthTotals(ops, march)
	if totals.Income != 100000 || totals.Expenses != 5000 || totals.Count != 3 {
		t.Errorf("unexpected totals %+v", totals)
	}
	if totals.Balance() != 95000 {
		t.Errorf("expected balance 95000, got %d", totals.Balance())
	}

	if got := CategoryMonthExpenses(ops, "food", march); got != 5000 {
		t.Errorf("expected food spending 5000, got %d", got)
	}
	if got := CategoryMonthExpenses(ops, "salary", march); got != 0 {
		t.Errorf("income must not count as spending, got %d", got)
	}

	byCat := ExpensesByCategory(ops, march)
	if byCat["food"] != 5000 || len(byCat) != 1 {
		t.Errorf("unexpected per-category spending %v", byCat)
	}

	all := Sum(ops)
	if all.Expenses != 21000 || all.Count != 5 {
		t.Errorf("unexpected overall totals %+v", all)
	}
}

func TestEvaluateLimit(t *testing.T) {
	tests := []struct {
		name     string
		spent    int64
		limit    int64
		pct      float64
		exceeded bool
		level    LimitLevel
	}{
		{"no_limit", 5000, 0, 0, false, LimitLevelOK},
		{"at_seventy", 7000, 10000, 70, false, LimitLevelOK},
		{"above_seventy", 7100, 10000, 71, false, LimitLevelWarning},
		{"at_ninety", 9000, 10000, 90, false, LimitLevelWarning},
		{"above_ninety", 9100, 10000, 91, false, LimitLevelCritical},
		{"exactly_limit", 10000, 10000, 100, false, LimitLevelCritical},
		{"over_limit", 10001, 10000, 100, true, LimitLevelCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := EvaluateLimit(tt.spent, tt.limit)
			if u.Percentage != tt.pct {
				t.Errorf("percentage = %v, want %v", u.Percentage, tt.pct)
			}
			if u.Exceeded != tt.exceeded {
				t.Errorf("exceeded = %v, want %v", u.Exceeded, tt.exceeded)
			}
			if u.Level != tt.level {
				t.Errorf("level = %s, want %s", u.Level, tt.level)
			}
			if u.HasLimit != (tt.limit > 0) {
				t.Errorf("has_limit = %v", u.HasLimit)
			}
		})
	}
}

func TestMonthsLeft(t *testing.T) {
	tests := []struct {
		balance, payment int64
		want             int
	}{
		{100000, 30000, 4},
		{90000, 30000, 3},
		{10, 30000, 1},
		{0, 30000, 0},
		{5000, 0, 1},
	}
	for _, tt := range tests {
		if got := MonthsLeft(tt.balance, tt.payment); got != tt.want {
			t.Errorf("MonthsLeft(%d, %d) = %d, want %d", tt.balance, tt.payment, got, tt.want)
		}
	}
}

func TestLoanProgress(t *testing.T) {
	if got := LoanProgress(90000, 30000); got != 0 {
		t.Errorf("exact multiple should have 0 progress, got %v", got)
	}
	if got := LoanProgress(100000, 30000); got != 16.67 {
		t.Errorf("expected 16.67, got %v", got)
	}
	if got := LoanProgress(0, 30000); got != 100 {
		t.Errorf("repaid loan should be 100, got %v", got)
	}
}

func TestSchedule(t *testing.T) {
	got := Schedule(100000, 30000, date(2024, time.January, 31))
	want := []Installment{
		{1, 30000, date(2024, time.January, 31)},
		{2, 30000, date(2024, time.February, 29)},
		{3, 30000, date(2024, time.March, 31)},
		{4, 10000, date(2024, time.April, 30)},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d installments, got %d", len(want), len(got))
	}
	var total int64
	for i := range want {
		if got[i].Number != want[i].Number || got[i].Amount != want[i].Amount || !got[i].Due.Equal(want[i].Due) {
			t.Errorf("installment %d = %+v, want %+v", i, got[i], want[i])
		}
		total += got[i].Amount
	}
	if total != 100000 {
		t.Errorf("schedule must sum to balance, got %d", total)
	}

	if empty := Schedule(0, 30000, date(2024, time.January, 1)); len(empty) != 0 {
		t.Errorf("expected empty schedule, got %v", empty)
	}
}

func TestDaysUntilAndStatus(t *testing.T) {
	now := time.Date(2024, time.March, 2, 15, 30, 0, 0, time.UTC)
	if got := DaysUntil(date(2024, time.March, 5), now); got != 3 {
		t.Errorf("expected 3 days, got %d", got)
	}
	if got := DaysUntil(date(2024, time.February, 28), now); got != -3 {
		t.Errorf("expected -3 days, got %d", got)
	}

	tests := []struct {
		days int
		want PaymentStatus
	}{
		{-1, PaymentOverdue},
		{0, PaymentAttention},
		{3, PaymentAttention},
		{4, PaymentSoon},
		{7, PaymentSoon},
		{8, PaymentOK},
	}
	for _, tt := range tests {
		if got := PaymentStatusFor(tt.days); got != tt.want {
			t.Errorf("PaymentStatusFor(%d) = %s, want %s", tt.days, got, tt.want)
		}
	}
}

func TestAddMonths(t *testing.T) {
	if got := AddMonths(date(2023, time.January, 31), 1); !got.Equal(date(2023, time.February, 28)) {
		t.Errorf("expected Feb 28, got %s", got)
	}
	if got := AddMonths(date(2023, time.December, 15), 1); !got.Equal(date(2024, time.January, 15)) {
		t.Errorf("expected Jan 15 next year, got %s", got)
	}
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(time.Date(2024, time.December, 17, 10, 0, 0, 0, time.UTC))
	if !start.Equal(date(2024, time.December, 1)) || !end.Equal(date(2025, time.January, 1)) {
		t.Errorf("unexpected range %s..%s", start, end)
	}
	m, err := ParseMonth("2024-02")
	if err != nil || !m.Equal(date(2024, time.February, 1)) {
		t.Errorf("ParseMonth: %v %v", m, err)
	}
	if _, err := ParseMonth("2024-13"); err == nil {
		t.Error("expected error for invalid month")
	}
}

func TestGoalProgressAndStatus(t *testing.T) {
	tests := []struct {
		name            string
		current, target int64
		completed       bool
		progress        float64
		status          GoalStatus
	}{
		{"zero_target", 100, 0, false, 0, GoalStatusBehind},
		{"behind", 4000, 10000, false, 40, GoalStatusBehind},
		{"normal", 5000, 10000, false, 50, GoalStatusNormal},
		{"active", 7500, 10000, false, 75, GoalStatusActive},
		{"reached", 12000, 10000, false, 100, GoalStatusAchieved},
		{"flagged", 1000, 10000, true, 10, GoalStatusAchieved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := GoalProgress(tt.current, tt.target)
			if p != tt.progress {
				t.Errorf("progress = %v, want %v", p, tt.progress)
			}
			if s := GoalStatusFor(tt.completed, p); s != tt.status {
				t.Errorf("status = %s, want %s", s, tt.status)
			}
		})
	}
	if r := GoalRemaining(12000, 10000); r != 0 {
		t.Errorf("remaining must not be negative, got %d", r)
	}
}

func TestSummarizeGoals(t *testing.T) {
	now := date(2024, time.June, 10)
	past := date(2024, time.June, 1)
	future := date(2024, time.December, 1)
	goals := []models.Goal{
		{Target: 10000, CurrentAmount: 10000, IsCompleted: true, Priority: models.GoalPriorityHigh, TargetDate: &past},
		{Target: 20000, CurrentAmount: 5000, Priority: models.GoalPriorityHigh, TargetDate: &past},
		{Target: 30000, CurrentAmount: 0, Priority: models.GoalPriorityLow, TargetDate: &future},
	}

	o := SummarizeGoals(goals, now)
	if o.TotalGoals != 3 || o.CompletedGoals != 1 || o.ActiveGoals != 2 {
		t.Errorf("unexpected counts %+v", o)
	}
	if o.TotalTargetAmount != 60000 || o.TotalCurrentAmount != 15000 {
		t.Errorf("unexpected amounts %+v", o)
	}
	if o.CompletionRate != 33.33 {
		t.Errorf("expected completion rate 33.33, got %v", o.CompletionRate)
	}
	if o.OverallProgress != 25 {
		t.Errorf("expected overall progress 25, got %v", o.OverallProgress)
	}
	if o.AverageGoalAmount != 20000 {
		t.Errorf("expected average 20000, got %d", o.AverageGoalAmount)
	}
	if o.OverdueGoals != 1 {
		t.Errorf("expected 1 overdue goal, got %d", o.OverdueGoals)
	}
	if o.PriorityDistribution["high"] != 2 || o.PriorityDistribution["low"] != 1 || o.PriorityDistribution["medium"] != 0 {
		t.Errorf("unexpected distribution %v", o.PriorityDistribution)
	}

	empty := SummarizeGoals(nil, now)
	if empty.CompletionRate != 0 || empty.OverallProgress != 0 {
		t.Errorf("empty summary should be zeroed, got %+v", empty)
	}
}

func TestRules(t *testing.T) {
	t.Run("limit_exceeded", func(t *testing.T) {
		a, ok := LimitExceeded("Food", 1_200_000, 1_000_000)
		if !ok {
			t.Fatal("expected alert")
		}
		if a.Kind != models.NotificationLimitExceeded {
			t.Errorf("unexpected kind %s", a.Kind)
		}
		want := `Limit exceeded for category "Food": spent 12 000 ₽ of 10 000 ₽`
		if a.Message != want {
			t.Errorf("message = %q, want %q", a.Message, want)
		}
		if _, ok := LimitExceeded("Food", 1_000_000, 1_000_000); ok {
			t.Error("spending exactly the limit must not alert")
		}
		if _, ok := LimitExceeded("Food", 1_000_000, 0); ok {
			t.Error("uncapped category must not alert")
		}
	})

	t.Run("large_income", func(t *testing.T) {
		a, ok := LargeIncome(DefaultLargeIncomeThreshold, DefaultLargeIncomeThreshold)
		if !ok || a.Message != "Income received: +10 000 ₽" {
			t.Errorf("unexpected alert %+v %v", a, ok)
		}
		if _, ok := LargeIncome(999_999, DefaultLargeIncomeThreshold); ok {
			t.Error("below threshold must not alert")
		}
		if _, ok := LargeIncome(5_000_000, 0); ok {
			t.Error("disabled threshold must not alert")
		}
	})

	t.Run("loan_payment", func(t *testing.T) {
		tests := []struct {
			days int
			ok   bool
			kind models.NotificationKind
			msg  string
		}{
			{-1, true, models.NotificationPaymentOverdue, `Payment for "Car" is overdue by 1 day`},
			{-5, true, models.NotificationPaymentOverdue, `Payment for "Car" is overdue by 5 days`},
			{0, true, models.NotificationPaymentDue, `Payment for "Car" is due today`},
			{2, true, models.NotificationPaymentDue, `Payment for "Car" is due in 2 days`},
			{3, true, models.NotificationPaymentDue, `Payment for "Car" is due in 3 days`},
			{4, false, "", ""},
		}
		for _, tt := range tests {
			a, ok := LoanPayment("Car", tt.days)
			if ok != tt.ok || a.Kind != tt.kind || a.Message != tt.msg {
				t.Errorf("LoanPayment(%d) = %+v %v", tt.days, a, ok)
			}
		}
	})

	t.Run("goal_achieved", func(t *testing.T) {
		a := GoalAchieved("Vacation")
		if a.Kind != models.NotificationGoalAchieved || a.Message != `Goal "Vacation" achieved!` {
			t.Errorf("unexpected alert %+v", a)
		}
	})
}
