package assets

import (
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/google/uuid"
)

// AssetDTO is the transport representation of an asset.
type AssetDTO struct {
	ID            uuid.UUID `json:"id"`
	AssetCode     string    `json:"asset_code"`
	Name          string    `json:"name"`
	CategoryID    uuid.UUID `json:"category_id"`
	CategoryName  string    `json:"category_name,omitempty"`
	LocationID    uuid.UUID `json:"location_id"`
	LocationName  string    `json:"location_name,omitempty"`
	Specification string    `json:"specification,omitempty"`
	InstalledDate time.Time `json:"installed_date"`
	State         string    `json:"state"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ToDTO maps an asset entity onto its transport shape.
func ToDTO(asset *models.Asset) *AssetDTO {
	if asset == nil {
		return nil
	}
	dto := &AssetDTO{
		ID:            asset.ID,
		AssetCode:     asset.AssetCode,
		Name:          asset.Name,
		CategoryID:    asset.CategoryID,
		LocationID:    asset.LocationID,
		Specification: asset.Specification,
		InstalledDate: asset.InstalledDate,
		State:         asset.Status.String(),
		CreatedAt:     asset.CreatedAt,
		UpdatedAt:     asset.UpdatedAt,
	}
	if asset.Category != nil {
		dto.CategoryName = asset.Category.Name
	}
	if asset.Location != nil {
		dto.LocationName = asset.Location.Name
	}
	return dto
}

// ToDTOs maps a slice of asset entities.
func ToDTOs(rows []models.Asset) []AssetDTO {
	out := make([]AssetDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out
}
