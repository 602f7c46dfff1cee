package services

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"moneylens/internal/logger"
	"moneylens/internal/models"
)

// emptyChanges is stored when an event carries no change set.
const emptyChanges = "{}"

// auditService appends one audit row per user mutation.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log stores an audit event for userID. Failures are logged and swallowed,
// and the insert survives cancellation of ctx.
func (s *auditService) Log(ctx context.Context, userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	log := logger.Get().With("action", action, "resource_type", resourceType, "resource_id", resourceID)
	if userID == "" {
		log.Warnw("audit event without a user dropped")
		return
	}

	encoded, err := encodeChanges(changes)
	if err != nil {
		log.Errorw("audit changes not encodable, storing empty set", "error", err)
	}

	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      encoded,
	}
	if err := s.db.WithContext(context.WithoutCancel(ctx)).Create(entry).Error; err != nil {
		log.Errorw("audit insert failed", "error", err, "user_id", userID)
	}
}

// encodeChanges renders a change set as a JSON object. A nil or empty set,
// or one that fails to encode, becomes emptyChanges.
func encodeChanges(changes map[string]interface{}) (string, error) {
	if len(changes) == 0 {
		return emptyChanges, nil
	}
	data, err := json.Marshal(changes)
	if err != nil {
		return emptyChanges, err
	}
	return string(data), nil
}
