package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fintrack/internal/models"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Today returns midnight UTC of the current day.
func Today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CreateTestUser creates a user with a unique login and TestPassword.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithLogin(t, db, fmt.Sprintf("user%d", nextID()))
}

// CreateTestUserWithLogin creates a user with the given login.
func CreateTestUserWithLogin(t *testing.T, db *gorm.DB, login string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Login:       login,
		DisplayName: "Test " + login,
		Email:       login + "@example.com",
		Password:    string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates an empty category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string) *models.Category {
	t.Helper()
	return CreateTestCategoryNamed(t, db, userID, fmt.Sprintf("Category %d", nextID()))
}

// CreateTestCategoryNamed creates an empty category with the given name.
func CreateTestCategoryNamed(t *testing.T, db *gorm.DB, userID, name string) *models.Category {
	t.Helper()

	category := &models.Category{UserID: userID, Name: name}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestLimit caps categoryID at limit kopecks per month.
func CreateTestLimit(t *testing.T, db *gorm.DB, userID, categoryID string, limit int64) *models.CategoryLimit {
	t.Helper()

	cl := &models.CategoryLimit{UserID: userID, CategoryID: categoryID, Limit: limit}
	if err := db.Create(cl).Error; err != nil {
		t.Fatalf("failed to create test limit: %v", err)
	}
	return cl
}

// CreateTestOperation records an operation and applies it to the category
// balance, keeping the balance invariant intact.
func CreateTestOperation(t *testing.T, db *gorm.DB, userID, categoryID string, typ models.OperationType, amount int64, date time.Time) *models.Operation {
	t.Helper()

	op := &models.Operation{
		UserID:     userID,
		CategoryID: categoryID,
		Type:       typ,
		Amount:     models.SignedAmount(typ, amount),
		Date:       date,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(op).Error; err != nil {
			return err
		}
		return tx.Model(&models.Category{}).Where("id = ?", categoryID).
			Update("balance", gorm.Expr("balance + ?", op.Amount)).Error
	})
	if err != nil {
		t.Fatalf("failed to create test operation: %v", err)
	}
	return op
}

// CreateTestAsset creates an asset with the given balance.
func CreateTestAsset(t *testing.T, db *gorm.DB, userID string, balance int64) *models.Asset {
	t.Helper()

	asset := &models.Asset{UserID: userID, Name: fmt.Sprintf("Asset %d", nextID()), Balance: balance}
	if err := db.Create(asset).Error; err != nil {
		t.Fatalf("failed to create test asset: %v", err)
	}
	return asset
}

// CreateTestSavingsAccount creates a deposit with the given balance and annual rate.
func CreateTestSavingsAccount(t *testing.T, db *gorm.DB, userID string, balance int64, rate float64) *models.SavingsAccount {
	t.Helper()

	acc := &models.SavingsAccount{
		UserID:       userID,
		Name:         fmt.Sprintf("Deposit %d", nextID()),
		Balance:      balance,
		InterestRate: rate,
	}
	if err := db.Create(acc).Error; err != nil {
		t.Fatalf("failed to create test savings account: %v", err)
	}
	return acc
}

// CreateTestLoan creates a loan with the next payment on paymentDate.
func CreateTestLoan(t *testing.T, db *gorm.DB, userID string, balance, payment int64, paymentDate time.Time) *models.Loan {
	t.Helper()

	loan := &models.Loan{
		UserID:      userID,
		Name:        fmt.Sprintf("Loan %d", nextID()),
		Balance:     balance,
		Payment:     payment,
		PaymentDate: paymentDate,
	}
	if err := db.Create(loan).Error; err != nil {
		t.Fatalf("failed to create test loan: %v", err)
	}
	return loan
}

// CreateTestGoal creates a medium-priority goal.
func CreateTestGoal(t *testing.T, db *gorm.DB, userID string, target, current int64) *models.Goal {
	t.Helper()

	goal := &models.Goal{
		UserID:        userID,
		Name:          fmt.Sprintf("Goal %d", nextID()),
		Target:        target,
		CurrentAmount: current,
		Priority:      models.GoalPriorityMedium,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

// CreateTestNotification stores a notification of the given kind.
func CreateTestNotification(t *testing.T, db *gorm.DB, userID string, kind models.NotificationKind) *models.Notification {
	t.Helper()

	n := &models.Notification{UserID: userID, Kind: kind, Message: fmt.Sprintf("notification %d", nextID())}
	if err := db.Create(n).Error; err != nil {
		t.Fatalf("failed to create test notification: %v", err)
	}
	return n
}
