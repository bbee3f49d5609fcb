package models

import (
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	"github.com/google/uuid"
)

// Assignment binds an asset to a user for a period and is state-tracked itself.
type Assignment struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AssetID       uuid.UUID              `gorm:"column:asset_id;type:uuid;not null"`
	AssignedToID  uuid.UUID              `gorm:"column:assigned_to_id;type:uuid;not null"`
	AssignedByID  uuid.UUID              `gorm:"column:assigned_by_id;type:uuid;not null"`
	AssignedDate  time.Time              `gorm:"column:assigned_date;not null"`
	Note          string                 `gorm:"column:note;type:text"`
	Status        enums.AssignmentStatus `gorm:"column:status;type:text;not null;default:'waiting_for_acceptance'"`
	IsDeleted     bool                   `gorm:"column:is_deleted;not null;default:false"`
	Asset         *Asset                 `gorm:"foreignKey:AssetID"`
	AssignedTo    *User                  `gorm:"foreignKey:AssignedToID"`
	AssignedBy    *User                  `gorm:"foreignKey:AssignedByID"`
	ReturnRequest *ReturnRequest         `gorm:"foreignKey:AssignmentID"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
