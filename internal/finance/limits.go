package finance

// LimitLevel colours how close spending is to the category limit.
type LimitLevel string

const (
	LimitLevelOK       LimitLevel = "ok"
	LimitLevelWarning  LimitLevel = "warning"
	LimitLevelCritical LimitLevel = "critical"
)

const (
	warningThreshold  = 70
	criticalThreshold = 90
)

// LimitUsage describes one category's spending against its monthly limit.
type LimitUsage struct {
	Spent      int64      `json:"spent"`
	Limit      int64      `json:"limit"`
	HasLimit   bool       `json:"has_limit"`
	Percentage float64    `json:"percentage"`
	Exceeded   bool       `json:"exceeded"`
	Level      LimitLevel `json:"level"`
}

// EvaluateLimit compares spent with limit. A non-positive limit means the
// category is uncapped: percentage stays 0 and nothing is ever exceeded.
// Exceeded is strict: spending exactly the limit is allowed.
func EvaluateLimit(spent, limit int64) LimitUsage {
	u := LimitUsage{Spent: spent, Level: LimitLevelOK}
	if limit <= 0 {
		return u
	}
	u.Limit = limit
	u.HasLimit = true
	u.Percentage = CappedPercent(spent, limit)
	u.Exceeded = spent > limit
	switch {
	case u.Percentage > criticalThreshold:
		u.Level = LimitLevelCritical
	case u.Percentage > warningThreshold:
		u.Level = LimitLevelWarning
	}
	return u
}
