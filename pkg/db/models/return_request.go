package models

import (
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	"github.com/google/uuid"
)

// ReturnRequest records a user's intent to return an assigned asset.
type ReturnRequest struct {
	ID           uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AssignmentID uuid.UUID                 `gorm:"column:assignment_id;type:uuid;not null"`
	AcceptedByID *uuid.UUID                `gorm:"column:accepted_by_id;type:uuid"`
	ReturnedDate time.Time                 `gorm:"column:returned_date;not null"`
	Status       enums.ReturnRequestStatus `gorm:"column:status;type:text;not null;default:'waiting_for_returning'"`
	IsDeleted    bool                      `gorm:"column:is_deleted;not null;default:false"`
	Assignment   *Assignment               `gorm:"foreignKey:AssignmentID"`
	AcceptedBy   *User                     `gorm:"foreignKey:AcceptedByID"`
	CreatedAt    time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
