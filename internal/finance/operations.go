package finance

import (
	"time"

	"fintrack/internal/models"
)

// Totals aggregates a set of operations. Expenses is reported as a positive number.
type Totals struct {
	Income   int64 `json:"total_income"`
	Expenses int64 `json:"total_expenses"`
	Count    int   `json:"count"`
}

// Balance is income minus expenses.
func (t Totals) Balance() int64 { return t.Income - t.Expenses }

// Sum folds operations into income and expense totals.
func Sum(ops []models.Operation) Totals {
	var t Totals
	for i := range ops {
		t.add(&ops[i])
	}
	return t
}

// MonthTotals is Sum restricted to operations dated in month's calendar month.
func MonthTotals(ops []models.Operation, month time.Time) Totals {
	var t Totals
	for i := range ops {
		if SameMonth(ops[i].Date, month) {
			t.add(&ops[i])
		}
	}
	return t
}

// CategoryMonthExpenses sums absolute expense amounts of one category within month.
func CategoryMonthExpenses(ops []models.Operation, categoryID string, month time.Time) int64 {
	var spent int64
	for i := range ops {
		op := &ops[i]
		if op.CategoryID == categoryID && op.Type == models.OperationTypeExpense && SameMonth(op.Date, month) {
			spent += op.Abs()
		}
	}
	return spent
}

// ExpensesByCategory sums absolute expense amounts per category within month.
func ExpensesByCategory(ops []models.Operation, month time.Time) map[string]int64 {
	out := make(map[string]int64)
	for i := range ops {
		op := &ops[i]
		if op.Type == models.OperationTypeExpense && SameMonth(op.Date, month) {
			out[op.CategoryID] += op.Abs()
		}
	}
	return out
}

func (t *Totals) add(op *models.Operation) {
	t.Count++
	switch op.Type {
	case models.OperationTypeIncome:
		t.Income += op.Abs()
	case models.OperationTypeExpense:
		t.Expenses += op.Abs()
	}
}
