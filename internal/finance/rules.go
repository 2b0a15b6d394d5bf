package finance

import (
	"fmt"

	"fintrack/internal/models"
)

// DefaultLargeIncomeThreshold is 10 000 ₽ in kopecks.
const DefaultLargeIncomeThreshold int64 = 1_000_000

// Alert is a notification produced by one of the rules below.
type Alert struct {
	Kind    models.NotificationKind
	Message string
}

// LimitExceeded fires when a capped category's monthly spending is strictly above its limit.
func LimitExceeded(category string, spent, limit int64) (Alert, bool) {
	if !EvaluateLimit(spent, limit).Exceeded {
		return Alert{}, false
	}
	return Alert{
		Kind: models.NotificationLimitExceeded,
		Message: fmt.Sprintf("Limit exceeded for category %q: spent %s of %s",
			category, FormatAmount(spent), FormatAmount(limit)),
	}, true
}

// LargeIncome fires for income at or above threshold. A non-positive threshold disables the rule.
func LargeIncome(amount, threshold int64) (Alert, bool) {
	if threshold <= 0 || amount < threshold {
		return Alert{}, false
	}
	return Alert{
		Kind:    models.NotificationIncome,
		Message: "Income received: +" + FormatAmount(amount),
	}, true
}

// LoanPayment fires for payments due within ReminderWindowDays and for overdue ones.
func LoanPayment(loan string, days int) (Alert, bool) {
	switch {
	case days < 0:
		return Alert{
			Kind:    models.NotificationPaymentOverdue,
			Message: fmt.Sprintf("Payment for %q is overdue by %s", loan, pluralDays(-days)),
		}, true
	case days == 0:
		return Alert{
			Kind:    models.NotificationPaymentDue,
			Message: fmt.Sprintf("Payment for %q is due today", loan),
		}, true
	case days <= ReminderWindowDays:
		return Alert{
			Kind:    models.NotificationPaymentDue,
			Message: fmt.Sprintf("Payment for %q is due in %s", loan, pluralDays(days)),
		}, true
	}
	return Alert{}, false
}

// GoalAchieved is emitted when a goal first reaches its target.
func GoalAchieved(goal string) Alert {
	return Alert{
		Kind:    models.NotificationGoalAchieved,
		Message: fmt.Sprintf("Goal %q achieved!", goal),
	}
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
