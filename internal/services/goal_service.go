package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/finance"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// goalService handles financial goals.
type goalService struct {
	db            *gorm.DB
	notifications NotificationServicer
	now           func() time.Time
}

// NewGoalService creates a new GoalServicer. notifications may be nil.
func NewGoalService(db *gorm.DB, notifications NotificationServicer) GoalServicer {
	return &goalService{db: db, notifications: notifications, now: time.Now}
}

func newGoalView(goal models.Goal) GoalView {
	progress := finance.GoalProgress(goal.CurrentAmount, goal.Target)
	return GoalView{
		Goal:      goal,
		Progress:  progress,
		Remaining: finance.GoalRemaining(goal.CurrentAmount, goal.Target),
		Status:    finance.GoalStatusFor(goal.IsCompleted, progress),
	}
}

func validPriority(p models.GoalPriority) bool {
	switch p {
	case models.GoalPriorityLow, models.GoalPriorityMedium, models.GoalPriorityHigh:
		return true
	}
	return false
}

// CreateGoal creates a goal. A goal created already at its target is
// completed straight away.
func (s *goalService) CreateGoal(userID string, in GoalInput) (*GoalView, error) {
	name := strings.TrimSpace(in.Name)
	if in.Priority == "" {
		in.Priority = models.GoalPriorityMedium
	}
	switch {
	case name == "":
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal name is required")
	case in.Target <= 0:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target must be greater than zero")
	case in.CurrentAmount < 0:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "current_amount cannot be negative")
	case !validPriority(in.Priority):
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "priority must be low, medium or high")
	}

	goal := models.Goal{
		UserID:        userID,
		Name:          name,
		Target:        in.Target,
		CurrentAmount: in.CurrentAmount,
		IsCompleted:   in.IsCompleted,
		Description:   strings.TrimSpace(in.Description),
		Priority:      in.Priority,
		Category:      strings.TrimSpace(in.Category),
	}
	if in.TargetDate != nil {
		d := finance.DateOnly(*in.TargetDate)
		goal.TargetDate = &d
	}
	achieved := !goal.IsCompleted && goal.CurrentAmount >= goal.Target
	if achieved {
		goal.IsCompleted = true
	}

	if err := s.db.Create(&goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if achieved {
		s.notifyAchieved(userID, &goal)
	}
	view := newGoalView(goal)
	return &view, nil
}

// GetUserGoals lists goals, open ones first, then by priority and target date.
func (s *goalService) GetUserGoals(userID string, page pagination.PageRequest) (*pagination.PageResponse[GoalView], error) {
	q := s.db.Model(&models.Goal{}).Scopes(ownedBy(userID))
	order := "is_completed ASC, CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END, target_date IS NULL, target_date ASC, created_at ASC"
	goals, err := pagination.Find[models.Goal](q, page, order)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	views := make([]GoalView, 0, len(goals.Data))
	for _, g := range goals.Data {
		views = append(views, newGoalView(g))
	}
	resp := pagination.NewPageResponse(views, goals.Page, goals.PageSize, goals.TotalItems)
	return &resp, nil
}

func (s *goalService) getGoal(userID, goalID string) (*models.Goal, error) {
	var goal models.Goal
	if err := s.db.Scopes(ownedBy(userID)).Where("id = ?", goalID).First(&goal).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrGoalNotFound)
	}
	return &goal, nil
}

// GetGoalByID retrieves a goal with its derived progress.
func (s *goalService) GetGoalByID(userID, goalID string) (*GoalView, error) {
	goal, err := s.getGoal(userID, goalID)
	if err != nil {
		return nil, err
	}
	view := newGoalView(*goal)
	return &view, nil
}

// UpdateGoal applies the non-nil fields of in. Reaching the target on an
// open goal completes it and raises a goal_achieved notification.
func (s *goalService) UpdateGoal(userID, goalID string, in GoalUpdate) (*GoalView, error) {
	goal, err := s.getGoal(userID, goalID)
	if err != nil {
		return nil, err
	}
	wasCompleted := goal.IsCompleted

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal name cannot be empty")
		}
		goal.Name = name
		updates["name"] = name
	}
	if in.Target != nil {
		if *in.Target <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target must be greater than zero")
		}
		goal.Target = *in.Target
		updates["target"] = *in.Target
	}
	if in.CurrentAmount != nil {
		if *in.CurrentAmount < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "current_amount cannot be negative")
		}
		goal.CurrentAmount = *in.CurrentAmount
		updates["current_amount"] = *in.CurrentAmount
	}
	if in.Description != nil {
		goal.Description = strings.TrimSpace(*in.Description)
		updates["description"] = goal.Description
	}
	if in.TargetDate != nil {
		d := finance.DateOnly(*in.TargetDate)
		goal.TargetDate = &d
		updates["target_date"] = d
	}
	if in.Priority != nil {
		if !validPriority(*in.Priority) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "priority must be low, medium or high")
		}
		goal.Priority = *in.Priority
		updates["priority"] = *in.Priority
	}
	if in.Category != nil {
		goal.Category = strings.TrimSpace(*in.Category)
		updates["category"] = goal.Category
	}
	if in.IsCompleted != nil {
		goal.IsCompleted = *in.IsCompleted
		updates["is_completed"] = *in.IsCompleted
	}

	achieved := !wasCompleted && !goal.IsCompleted && goal.CurrentAmount >= goal.Target
	if achieved {
		goal.IsCompleted = true
		updates["is_completed"] = true
	}

	if len(updates) > 0 {
		if err := s.db.Model(goal).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	if achieved {
		s.notifyAchieved(userID, goal)
	}
	view := newGoalView(*goal)
	return &view, nil
}

// DeleteGoal soft-deletes a goal.
func (s *goalService) DeleteGoal(userID, goalID string) error {
	goal, err := s.getGoal(userID, goalID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(goal).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetSummary aggregates the user's goals and reports current wealth
// (assets plus savings) to compare them against.
func (s *goalService) GetSummary(userID string) (*GoalSummary, error) {
	var goals []models.Goal
	if err := s.db.Scopes(ownedBy(userID)).Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	assets, err := balanceSummary(s.db, &models.Asset{}, userID)
	if err != nil {
		return nil, err
	}
	savings, err := balanceSummary(s.db, &models.SavingsAccount{}, userID)
	if err != nil {
		return nil, err
	}

	return &GoalSummary{
		GoalsOverview: finance.SummarizeGoals(goals, s.now()),
		TotalWealth:   assets.Total + savings.Total,
	}, nil
}

func (s *goalService) notifyAchieved(userID string, goal *models.Goal) {
	if s.notifications == nil {
		return
	}
	if _, err := s.notifications.Notify(userID, finance.GoalAchieved(goal.Name)); err != nil {
		logger.Get().Errorw("failed to create goal notification", "error", err, "goal_id", goal.ID)
	}
}
