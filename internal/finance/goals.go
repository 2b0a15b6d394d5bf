package finance

import (
	"time"

	"fintrack/internal/models"
)

// GoalStatus is a coarse reading of goal progress.
type GoalStatus string

const (
	GoalStatusAchieved GoalStatus = "achieved"
	GoalStatusActive   GoalStatus = "active"
	GoalStatusNormal   GoalStatus = "normal"
	GoalStatusBehind   GoalStatus = "behind"
)

// GoalProgress is current/target*100 capped at 100, 0 for a non-positive target.
func GoalProgress(current, target int64) float64 {
	return CappedPercent(current, target)
}

// GoalRemaining is how much is still missing, never negative.
func GoalRemaining(current, target int64) int64 {
	if r := target - current; r > 0 {
		return r
	}
	return 0
}

// GoalStatusFor derives a status from the completion flag and progress.
func GoalStatusFor(completed bool, progress float64) GoalStatus {
	switch {
	case completed || progress >= 100:
		return GoalStatusAchieved
	case progress >= 75:
		return GoalStatusActive
	case progress >= 50:
		return GoalStatusNormal
	default:
		return GoalStatusBehind
	}
}

// GoalsOverview aggregates a user's goals.
type GoalsOverview struct {
	TotalGoals           int            `json:"total_goals"`
	CompletedGoals       int            `json:"completed_goals"`
	ActiveGoals          int            `json:"active_goals"`
	TotalTargetAmount    int64          `json:"total_target_amount"`
	TotalCurrentAmount   int64          `json:"total_current_amount"`
	CompletionRate       float64        `json:"completion_rate"`
	OverallProgress      float64        `json:"overall_progress"`
	AverageGoalAmount    int64          `json:"average_goal_amount"`
	PriorityDistribution map[string]int `json:"priority_distribution"`
	OverdueGoals         int            `json:"overdue_goals"`
}

// SummarizeGoals folds goals into a GoalsOverview as of now.
func SummarizeGoals(goals []models.Goal, now time.Time) GoalsOverview {
	o := GoalsOverview{
		TotalGoals: len(goals),
		PriorityDistribution: map[string]int{
			string(models.GoalPriorityHigh):   0,
			string(models.GoalPriorityMedium): 0,
			string(models.GoalPriorityLow):    0,
		},
	}
	today := DateOnly(now)
	for i := range goals {
		g := &goals[i]
		o.TotalTargetAmount += g.Target
		o.TotalCurrentAmount += g.CurrentAmount
		if g.IsCompleted {
			o.CompletedGoals++
		} else {
			o.ActiveGoals++
			if g.TargetDate != nil && DateOnly(*g.TargetDate).Before(today) {
				o.OverdueGoals++
			}
		}
		if _, ok := o.PriorityDistribution[string(g.Priority)]; ok {
			o.PriorityDistribution[string(g.Priority)]++
		}
	}
	if o.TotalGoals > 0 {
		o.CompletionRate = Percent(int64(o.CompletedGoals), int64(o.TotalGoals))
		o.AverageGoalAmount = o.TotalTargetAmount / int64(o.TotalGoals)
	}
	o.OverallProgress = CappedPercent(o.TotalCurrentAmount, o.TotalTargetAmount)
	return o
}
