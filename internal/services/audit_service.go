package services

import (
	"encoding/json"
	"reflect"

	"gorm.io/gorm"

	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// auditService appends mutation records to audit_logs.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records a mutation of resourceType/resourceID by userID. The call
// never fails the request it belongs to; write errors are only logged.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	log := logger.Named("audit").With("user_id", userID, "action", action, "resource_id", resourceID)

	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
	}

	payload, err := encodeChanges(changes)
	if err != nil {
		log.Warnw("audit changes are not serializable", "error", err)
		payload = "{}"
	}
	entry.Changes = payload

	if err := s.db.Create(entry).Error; err != nil {
		log.Errorw("failed to write audit entry", "error", err, "resource_type", resourceType)
	}
}

// encodeChanges serializes the non-nil values of changes. Optional update
// fields arrive as nil pointers and carry no information.
func encodeChanges(changes map[string]interface{}) (string, error) {
	filtered := make(map[string]interface{}, len(changes))
	for k, v := range changes {
		if isNil(v) {
			continue
		}
		filtered[k] = v
	}
	if len(filtered) == 0 {
		return "", nil
	}
	data, err := json.Marshal(filtered)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}
