package finance

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Percent returns part/whole*100 rounded to two decimals, or 0 when whole is not positive.
func Percent(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(whole)).Round(2).InexactFloat64()
}

// CappedPercent is Percent limited to 100.
func CappedPercent(part, whole int64) float64 {
	p := Percent(part, whole)
	if p > 100 {
		return 100
	}
	return p
}

// MonthlyInterest estimates one month of simple interest on balance at an
// annual percentage rate, rounded half away from zero to whole kopecks.
func MonthlyInterest(balance int64, annualRate float64) int64 {
	if balance <= 0 || annualRate <= 0 {
		return 0
	}
	return decimal.NewFromInt(balance).
		Mul(decimal.NewFromFloat(annualRate)).
		Div(decimal.NewFromInt(1200)).
		Round(0).
		IntPart()
}

// AverageRate is the arithmetic mean of rates rounded to two decimals.
func AverageRate(rates []float64) float64 {
	if len(rates) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, r := range rates {
		sum = sum.Add(decimal.NewFromFloat(r))
	}
	return sum.Div(decimal.NewFromInt(int64(len(rates)))).Round(2).InexactFloat64()
}

// NetWorth is assets plus savings minus outstanding loans.
func NetWorth(assets, savings, loans int64) int64 {
	return assets + savings - loans
}

// FormatAmount renders kopecks as rubles, grouping thousands with spaces and
// omitting the fraction when it is zero: 1234500 -> "12 345 ₽", 1050 -> "10,50 ₽".
func FormatAmount(kopecks int64) string {
	d := decimal.New(kopecks, -2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString(groupThousands(whole))
	if frac != "00" {
		b.WriteString(",")
		b.WriteString(frac)
	}
	b.WriteString(" ₽")
	return b.String()
}

// Rubles renders kopecks as a plain decimal with two fraction digits: 1050 -> "10.50".
func Rubles(kopecks int64) string {
	return decimal.New(kopecks, -2).StringFixed(2)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
