package returnrequests

import (
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/google/uuid"
)

// ReturnRequestDTO is the transport representation of a return request.
type ReturnRequestDTO struct {
	ID                  uuid.UUID  `json:"id"`
	AssignmentID        uuid.UUID  `json:"assignment_id"`
	AssetCode           string     `json:"asset_code,omitempty"`
	AssetName           string     `json:"asset_name,omitempty"`
	RequestedByUsername string     `json:"requested_by_username,omitempty"`
	AcceptedByID        *uuid.UUID `json:"accepted_by_id,omitempty"`
	AcceptedByUsername  string     `json:"accepted_by_username,omitempty"`
	AssignedDate        *time.Time `json:"assigned_date,omitempty"`
	ReturnedDate        time.Time  `json:"returned_date"`
	State               string     `json:"state"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// ToDTO maps a return request entity onto its transport shape.
func ToDTO(request *models.ReturnRequest) *ReturnRequestDTO {
	if request == nil {
		return nil
	}
	dto := &ReturnRequestDTO{
		ID:           request.ID,
		AssignmentID: request.AssignmentID,
		AcceptedByID: request.AcceptedByID,
		ReturnedDate: request.ReturnedDate,
		State:        request.Status.String(),
		CreatedAt:    request.CreatedAt,
		UpdatedAt:    request.UpdatedAt,
	}
	if request.Assignment != nil {
		date := request.Assignment.AssignedDate
		dto.AssignedDate = &date
		if request.Assignment.Asset != nil {
			dto.AssetCode = request.Assignment.Asset.AssetCode
			dto.AssetName = request.Assignment.Asset.Name
		}
		if request.Assignment.AssignedTo != nil {
			dto.RequestedByUsername = request.Assignment.AssignedTo.Username
		}
	}
	if request.AcceptedBy != nil {
		dto.AcceptedByUsername = request.AcceptedBy.Username
	}
	return dto
}

// ToDTOs maps a slice of return request entities.
func ToDTOs(rows []models.ReturnRequest) []ReturnRequestDTO {
	out := make([]ReturnRequestDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out
}
