package finance

import "time"

// PaymentStatus classifies how soon the next loan payment is.
type PaymentStatus string

const (
	PaymentOverdue   PaymentStatus = "overdue"
	PaymentAttention PaymentStatus = "attention"
	PaymentSoon      PaymentStatus = "soon"
	PaymentOK        PaymentStatus = "ok"
)

// ReminderWindowDays is how many days ahead a payment triggers a reminder.
const ReminderWindowDays = 3

// MonthsLeft estimates remaining monthly payments: ceil(balance/payment),
// at least 1 while anything is owed, 0 once the loan is repaid.
func MonthsLeft(balance, payment int64) int {
	if balance <= 0 {
		return 0
	}
	if payment <= 0 {
		return 1
	}
	months := balance / payment
	if balance%payment != 0 {
		months++
	}
	if months < 1 {
		months = 1
	}
	return int(months)
}

// LoanProgress is the share of the planned repayment already covered:
// planned = payment*months_left, paid = max(planned-balance, 0).
func LoanProgress(balance, payment int64) float64 {
	months := MonthsLeft(balance, payment)
	if months == 0 {
		return 100
	}
	planned := payment * int64(months)
	paid := planned - balance
	if paid < 0 {
		paid = 0
	}
	return CappedPercent(paid, planned)
}

// PaymentStatusFor maps days until the payment date onto a status.
func PaymentStatusFor(days int) PaymentStatus {
	switch {
	case days < 0:
		return PaymentOverdue
	case days <= ReminderWindowDays:
		return PaymentAttention
	case days <= 7:
		return PaymentSoon
	default:
		return PaymentOK
	}
}

// Installment is one future loan payment.
type Installment struct {
	Number int       `json:"installment"`
	Amount int64     `json:"amount"`
	Due    time.Time `json:"due"`
}

// Schedule lists the remaining installments starting at firstDue, one per
// month. Every installment is the regular payment except the last, which
// carries whatever remains.
func Schedule(balance, payment int64, firstDue time.Time) []Installment {
	months := MonthsLeft(balance, payment)
	if months == 0 {
		return []Installment{}
	}
	if payment <= 0 {
		payment = balance
	}
	out := make([]Installment, 0, months)
	remaining := balance
	for i := 0; i < months; i++ {
		amount := payment
		if i == months-1 || amount > remaining {
			amount = remaining
		}
		out = append(out, Installment{
			Number: i + 1,
			Amount: amount,
			Due:    AddMonths(DateOnly(firstDue), i),
		})
		remaining -= amount
	}
	return out
}
