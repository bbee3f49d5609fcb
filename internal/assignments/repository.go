package assignments

import (
	"context"
	"fmt"
	"time"

	"github.com/assetdesk/assetdesk-backend/internal/query"
	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var listSort = query.Sort{
	Columns: map[string]string{
		"asset_code":    "assets.asset_code",
		"asset_name":    "assets.name",
		"assigned_to":   "assigned_to.username",
		"assigned_by":   "assigned_by.username",
		"assigned_date": "assignments.assigned_date",
		"state":         "assignments.status",
	},
	Default: "assigned_date",
}

var mySort = query.Sort{
	Columns: map[string]string{
		"asset_code":    "assets.asset_code",
		"asset_name":    "assets.name",
		"assigned_date": "assignments.assigned_date",
		"state":         "assignments.status",
	},
	Default: "asset_code",
}

// ListParams drive the assignment listing query.
type ListParams struct {
	Page         int
	Search       string
	SortKey      string
	SortDir      string
	Statuses     []enums.AssignmentStatus
	AssignedDate *time.Time
	PriorityID   uuid.UUID
}

// Repository wraps assignment persistence plus the asset and user reads the
// assignment workflow needs inside its transactions.
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

// FindByID loads a non-deleted assignment with its asset and both users.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.WithContext(ctx).
		Preload("Asset").
		Preload("AssignedTo").
		Preload("AssignedBy").
		Preload("ReturnRequest", "is_deleted = ?", false).
		Scopes(query.NotDeleted).
		First(&assignment, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Create inserts a new assignment row.
func (r *Repository) Create(ctx context.Context, assignment *models.Assignment) (int64, error) {
	res := r.db.WithContext(ctx).Create(assignment)
	return res.RowsAffected, res.Error
}

// Save persists all fields of an existing assignment.
func (r *Repository) Save(ctx context.Context, assignment *models.Assignment) (int64, error) {
	res := r.db.WithContext(ctx).Save(assignment)
	return res.RowsAffected, res.Error
}

// SetStatus updates the assignment status.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status enums.AssignmentStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("status", status)
	return res.RowsAffected, res.Error
}

// SoftDelete marks the assignment deleted.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	return res.RowsAffected, res.Error
}

// FindAsset loads a non-deleted asset by id.
func (r *Repository) FindAsset(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	var asset models.Asset
	err := r.db.WithContext(ctx).
		Scopes(query.NotDeleted).
		First(&asset, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// FindUser loads a user by id regardless of the soft-delete flag so callers
// can distinguish missing from disabled.
func (r *Repository) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SetAssetStatus updates the asset status unconditionally.
func (r *Repository) SetAssetStatus(ctx context.Context, assetID uuid.UUID, status enums.AssetStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Asset{}).
		Where("id = ? AND is_deleted = ?", assetID, false).
		Update("status", status)
	return res.RowsAffected, res.Error
}

// SetAssetStatusIf updates the asset status only when the current status
// matches from, closing the race between availability check and claim.
func (r *Repository) SetAssetStatusIf(ctx context.Context, assetID uuid.UUID, from, to enums.AssetStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Asset{}).
		Where("id = ? AND status = ? AND is_deleted = ?", assetID, from, false).
		Update("status", to)
	return res.RowsAffected, res.Error
}

// HasActiveForUser reports whether the user holds any assignment still
// waiting for acceptance or accepted.
func (r *Repository) HasActiveForUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Scopes(query.NotDeleted).
		Where("assigned_to_id = ? AND status IN ?", userID, enums.ActiveAssignmentStatuses).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) listBase(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Joins("JOIN assets ON assets.id = assignments.asset_id").
		Joins("JOIN users assigned_to ON assigned_to.id = assignments.assigned_to_id").
		Joins("JOIN users assigned_by ON assigned_by.id = assignments.assigned_by_id").
		Scopes(query.NotDeletedIn("assignments"))
}

// List returns one page of assignments matching the params plus the filtered total.
func (r *Repository) List(ctx context.Context, params ListParams) ([]models.Assignment, int64, error) {
	base := r.listBase(ctx).
		Scopes(query.Search(params.Search, "assets.asset_code", "assets.name", "assigned_to.username"))
	if len(params.Statuses) > 0 {
		base = base.Where("assignments.status IN ?", params.Statuses)
	}
	if params.AssignedDate != nil {
		base = base.Where("DATE(assignments.assigned_date) = DATE(?)", *params.AssignedDate)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Assignment
	err := base.Session(&gorm.Session{}).
		Preload("Asset").
		Preload("AssignedTo").
		Preload("AssignedBy").
		Scopes(
			query.Prioritize("assignments.id", params.PriorityID),
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

// ListForUser returns the user's own open assignments: not declined or
// returned, not dated in the future.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID, page int, sortKey, sortDir string) ([]models.Assignment, int64, error) {
	base := r.listBase(ctx).
		Where("assignments.assigned_to_id = ?", userID).
		Where("assignments.status IN ?", enums.ActiveAssignmentStatuses).
		Where("DATE(assignments.assigned_date) <= DATE(?)", time.Now())

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Assignment
	err := base.Session(&gorm.Session{}).
		Preload("Asset").
		Preload("AssignedBy").
		Scopes(
			mySort.Scope(sortKey, sortDir),
			query.Paginate(page),
		).
		Find(&rows).
		Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// DefaultListStatuses is the state filter applied when the caller sends none.
func DefaultListStatuses() []enums.AssignmentStatus {
	return append([]enums.AssignmentStatus(nil), enums.ActiveAssignmentStatuses...)
}

// ParseStatusFilter maps raw status filter values onto assignment statuses.
// Empty input selects the default view; the sentinel "all" lifts the
// constraint entirely.
func ParseStatusFilter(values []string) ([]enums.AssignmentStatus, error) {
	if len(values) == 0 {
		return DefaultListStatuses(), nil
	}
	statuses := make([]enums.AssignmentStatus, 0, len(values))
	for _, raw := range values {
		if raw == "all" {
			return nil, nil
		}
		status, err := enums.ParseAssignmentStatus(raw)
		if err != nil {
			return nil, fmt.Errorf("unknown assignment state %q", raw)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
