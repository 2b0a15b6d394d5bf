// Package finance holds the pure, single-pass reducers behind the dashboard
// figures: monthly totals, limit usage, loan estimates, goal progress and the
// rules that turn those figures into notifications.
//
// Amounts are int64 kopecks. Percentages are rounded to two decimals with
// shopspring/decimal so that 1/3 renders as 33.33 on every platform.
package finance
