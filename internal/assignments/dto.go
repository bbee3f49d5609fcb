package assignments

import (
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/google/uuid"
)

// AssignmentDTO is the transport representation of an assignment.
type AssignmentDTO struct {
	ID                 uuid.UUID `json:"id"`
	AssetID            uuid.UUID `json:"asset_id"`
	AssetCode          string    `json:"asset_code,omitempty"`
	AssetName          string    `json:"asset_name,omitempty"`
	AssignedToID       uuid.UUID `json:"assigned_to_id"`
	AssignedToUsername string    `json:"assigned_to_username,omitempty"`
	AssignedByID       uuid.UUID `json:"assigned_by_id"`
	AssignedByUsername string    `json:"assigned_by_username,omitempty"`
	AssignedDate       time.Time `json:"assigned_date"`
	Note               string    `json:"note,omitempty"`
	State              string    `json:"state"`
	HasReturnRequest   bool      `json:"has_return_request"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ToDTO maps an assignment entity onto its transport shape.
func ToDTO(assignment *models.Assignment) *AssignmentDTO {
	if assignment == nil {
		return nil
	}
	dto := &AssignmentDTO{
		ID:               assignment.ID,
		AssetID:          assignment.AssetID,
		AssignedToID:     assignment.AssignedToID,
		AssignedByID:     assignment.AssignedByID,
		AssignedDate:     assignment.AssignedDate,
		Note:             assignment.Note,
		State:            assignment.Status.String(),
		HasReturnRequest: assignment.ReturnRequest != nil,
		CreatedAt:        assignment.CreatedAt,
		UpdatedAt:        assignment.UpdatedAt,
	}
	if assignment.Asset != nil {
		dto.AssetCode = assignment.Asset.AssetCode
		dto.AssetName = assignment.Asset.Name
	}
	if assignment.AssignedTo != nil {
		dto.AssignedToUsername = assignment.AssignedTo.Username
	}
	if assignment.AssignedBy != nil {
		dto.AssignedByUsername = assignment.AssignedBy.Username
	}
	return dto
}

// ToDTOs maps a slice of assignment entities.
func ToDTOs(rows []models.Assignment) []AssignmentDTO {
	out := make([]AssignmentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out
}
