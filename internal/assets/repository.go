package assets

import (
	"context"
	"errors"
	"fmt"

	"github.com/assetdesk/assetdesk-backend/internal/query"
	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// categoryNameExpr resolves the category name for sorting without forcing a join.
const categoryNameExpr = "(SELECT c.name FROM categories c WHERE c.id = assets.category_id)"

var listSort = query.Sort{
	Columns: map[string]string{
		"asset_code":     "asset_code",
		"name":           "name",
		"category":       categoryNameExpr,
		"state":          "status",
		"installed_date": "installed_date",
	},
	Default: "asset_code",
}

// ListParams drive the asset listing query.
type ListParams struct {
	Page       int
	Search     string
	SortKey    string
	SortDir    string
	LocationID uuid.UUID
	States     []enums.AssetStatus
	CategoryID uuid.UUID
	PriorityID uuid.UUID
}

// Repository wraps asset persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a non-deleted asset with its category and location.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	var asset models.Asset
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Location").
		Scopes(query.NotDeleted).
		First(&asset, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// LatestCodeForPrefix returns the highest asset code in the prefix's
// sequence, or empty when the prefix is unused. The length constraint keeps
// overlapping prefixes apart: "LA" must not pick up "LAP000001".
func (r *Repository) LatestCodeForPrefix(ctx context.Context, prefix string, digits int) (string, error) {
	var code string
	err := r.db.WithContext(ctx).
		Model(&models.Asset{}).
		Where("asset_code LIKE ? AND LENGTH(asset_code) = ?", prefix+"%", len(prefix)+digits).
		Order("asset_code DESC").
		Limit(1).
		Pluck("asset_code", &code).
		Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	return code, nil
}

// Create inserts a new asset row.
func (r *Repository) Create(ctx context.Context, asset *models.Asset) (int64, error) {
	res := r.db.WithContext(ctx).Create(asset)
	return res.RowsAffected, res.Error
}

// Save persists all fields of an existing asset.
func (r *Repository) Save(ctx context.Context, asset *models.Asset) (int64, error) {
	res := r.db.WithContext(ctx).Save(asset)
	return res.RowsAffected, res.Error
}

// SetStatus updates the asset status unconditionally.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status enums.AssetStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Asset{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("status", status)
	return res.RowsAffected, res.Error
}

// SetStatusIf updates the asset status only when the current status matches
// from. A zero row count means the asset changed state underneath the caller.
func (r *Repository) SetStatusIf(ctx context.Context, id uuid.UUID, from, to enums.AssetStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Asset{}).
		Where("id = ? AND status = ? AND is_deleted = ?", id, from, false).
		Update("status", to)
	return res.RowsAffected, res.Error
}

// SoftDelete marks the asset deleted.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Asset{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	return res.RowsAffected, res.Error
}

// HasAssignments reports whether the asset has any assignment rows at all,
// soft-deleted ones included. History blocks deletion.
func (r *Repository) HasAssignments(ctx context.Context, assetID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("asset_id = ?", assetID).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns one page of assets matching the params plus the filtered total.
func (r *Repository) List(ctx context.Context, params ListParams) ([]models.Asset, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Asset{}).
		Scopes(
			query.NotDeleted,
			query.Search(params.Search, "asset_code", "name"),
		)
	if params.LocationID != uuid.Nil {
		base = base.Where("location_id = ?", params.LocationID)
	}
	if len(params.States) > 0 {
		base = base.Where("status IN ?", params.States)
	}
	if params.CategoryID != uuid.Nil {
		base = base.Where("category_id = ?", params.CategoryID)
	}

	// Session snapshots the accumulated conditions so Count does not leak
	// state into the row query.
	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Asset
	err := base.Session(&gorm.Session{}).
		Preload("Category").
		Preload("Location").
		Scopes(
			query.Prioritize("assets.id", params.PriorityID),
			listSort.Scope(params.SortKey, params.SortDir),
			query.Paginate(params.Page),
		).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// DefaultListStates is the state filter applied when the caller sends none.
func DefaultListStates() []enums.AssetStatus {
	return []enums.AssetStatus{
		enums.AssetStatusAvailable,
		enums.AssetStatusNotAvailable,
		enums.AssetStatusAssigned,
	}
}

// ParseStateFilter maps raw state filter values onto asset statuses. Empty
// input selects the default view; the sentinel "all" lifts the constraint.
func ParseStateFilter(values []string) ([]enums.AssetStatus, error) {
	if len(values) == 0 {
		return DefaultListStates(), nil
	}
	states := make([]enums.AssetStatus, 0, len(values))
	for _, raw := range values {
		if raw == "all" {
			return nil, nil
		}
		state, err := enums.ParseAssetStatus(raw)
		if err != nil {
			return nil, fmt.Errorf("unknown asset state %q", raw)
		}
		states = append(states, state)
	}
	return states, nil
}
