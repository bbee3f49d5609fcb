package models

import (
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	"github.com/google/uuid"
)

// User represents a staff member who can hold asset assignments.
type User struct {
	ID           uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StaffCode    string       `gorm:"column:staff_code;type:text;not null;uniqueIndex"`
	Username     string       `gorm:"column:username;type:text;not null;uniqueIndex"`
	PasswordHash string       `gorm:"column:password_hash;not null"`
	FirstName    string       `gorm:"column:first_name;not null"`
	LastName     string       `gorm:"column:last_name;not null"`
	DateOfBirth  time.Time    `gorm:"column:date_of_birth;not null"`
	JoinedDate   time.Time    `gorm:"column:joined_date;not null"`
	Gender       enums.Gender `gorm:"column:gender;type:text;not null"`
	RoleID       uuid.UUID    `gorm:"column:role_id;type:uuid;not null"`
	LocationID   uuid.UUID    `gorm:"column:location_id;type:uuid;not null"`
	FirstLogin   bool         `gorm:"column:first_login;not null;default:true"`
	IsDeleted    bool         `gorm:"column:is_deleted;not null;default:false"`
	Role         *Role        `gorm:"foreignKey:RoleID"`
	Location     *Location    `gorm:"foreignKey:LocationID"`
	CreatedAt    time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

// FullName joins the user's first and last names for display and username generation.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
