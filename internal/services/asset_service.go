package services

import (
	"strings"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// assetService handles the user's assets.
type assetService struct {
	db *gorm.DB
}

// NewAssetService creates a new AssetServicer.
func NewAssetService(db *gorm.DB) AssetServicer {
	return &assetService{db: db}
}

// CreateAsset creates a new asset.
func (s *assetService) CreateAsset(userID, name string, balance int64) (*models.Asset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "asset name is required")
	}

	asset := &models.Asset{UserID: userID, Name: name, Balance: balance}
	if err := s.db.Create(asset).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return asset, nil
}

// GetUserAssets retrieves a paginated list of assets.
func (s *assetService) GetUserAssets(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Asset], error) {
	q := s.db.Model(&models.Asset{}).Scopes(ownedBy(userID))
	resp, err := pagination.Find[models.Asset](q, page, "created_at ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &resp, nil
}

// GetAssetByID retrieves an asset by ID for a specific user.
func (s *assetService) GetAssetByID(userID, assetID string) (*models.Asset, error) {
	var asset models.Asset
	if err := s.db.Scopes(ownedBy(userID)).Where("id = ?", assetID).First(&asset).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrAssetNotFound)
	}
	return &asset, nil
}

// UpdateAsset changes the name and/or balance of an asset.
func (s *assetService) UpdateAsset(userID, assetID string, name *string, balance *int64) (*models.Asset, error) {
	asset, err := s.GetAssetByID(userID, assetID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "asset name cannot be empty")
		}
		asset.Name = trimmed
		updates["name"] = trimmed
	}
	if balance != nil {
		asset.Balance = *balance
		updates["balance"] = *balance
	}
	if len(updates) == 0 {
		return asset, nil
	}

	if err := s.db.Model(asset).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return asset, nil
}

// DeleteAsset soft-deletes an asset.
func (s *assetService) DeleteAsset(userID, assetID string) error {
	asset, err := s.GetAssetByID(userID, assetID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(asset).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetSummary totals the user's asset balances.
func (s *assetService) GetSummary(userID string) (*BalanceSummary, error) {
	return balanceSummary(s.db, &models.Asset{}, userID)
}

// balanceSummary sums the balance column of model's table for userID.
func balanceSummary(db *gorm.DB, model interface{}, userID string) (*BalanceSummary, error) {
	var summary BalanceSummary
	err := db.Model(model).Scopes(ownedBy(userID)).
		Select("COALESCE(SUM(balance), 0) AS total, COUNT(*) AS count").
		Scan(&summary).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &summary, nil
}
