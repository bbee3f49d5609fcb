package models

import (
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	"github.com/google/uuid"
)

// Asset represents a trackable physical item with a lifecycle status.
type Asset struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AssetCode     string            `gorm:"column:asset_code;type:text;not null;uniqueIndex"`
	Name          string            `gorm:"column:name;type:text;not null"`
	CategoryID    uuid.UUID         `gorm:"column:category_id;type:uuid;not null"`
	LocationID    uuid.UUID         `gorm:"column:location_id;type:uuid;not null"`
	Specification string            `gorm:"column:specification;type:text"`
	InstalledDate time.Time         `gorm:"column:installed_date;not null"`
	Status        enums.AssetStatus `gorm:"column:status;type:text;not null;default:'available'"`
	IsDeleted     bool              `gorm:"column:is_deleted;not null;default:false"`
	Category      *Category         `gorm:"foreignKey:CategoryID"`
	Location      *Location         `gorm:"foreignKey:LocationID"`
	Assignments   []Assignment      `gorm:"foreignKey:AssetID"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
