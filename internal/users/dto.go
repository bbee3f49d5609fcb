package users

import (
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/google/uuid"
)

// UserDTO is the transport representation of a user.
type UserDTO struct {
	ID           uuid.UUID `json:"id"`
	StaffCode    string    `json:"staff_code"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	FullName     string    `json:"full_name"`
	DateOfBirth  time.Time `json:"date_of_birth"`
	JoinedDate   time.Time `json:"joined_date"`
	Gender       string    `json:"gender"`
	Role         string    `json:"role,omitempty"`
	LocationID   uuid.UUID `json:"location_id"`
	LocationName string    `json:"location_name,omitempty"`
	FirstLogin   bool      `json:"first_login"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreatedUserDTO carries the one-time credentials issued alongside a new user.
type CreatedUserDTO struct {
	UserDTO
	TemporaryPassword string `json:"temporary_password"`
}

// ToDTO maps a user entity onto its transport shape.
func ToDTO(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	dto := &UserDTO{
		ID:          user.ID,
		StaffCode:   user.StaffCode,
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		FullName:    user.FullName(),
		DateOfBirth: user.DateOfBirth,
		JoinedDate:  user.JoinedDate,
		Gender:      user.Gender.String(),
		LocationID:  user.LocationID,
		FirstLogin:  user.FirstLogin,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
	if user.Role != nil {
		dto.Role = user.Role.Name
	}
	if user.Location != nil {
		dto.LocationName = user.Location.Name
	}
	return dto
}

// ToDTOs maps a slice of user entities.
func ToDTOs(rows []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out
}
