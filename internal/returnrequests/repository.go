package returnrequests

import (
	"context"
	"time"

	"github.com/assetdesk/assetdesk-backend/internal/query"
	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var listSort = query.Sort{
	Columns: map[string]string{
		"id":            "return_requests.id",
		"asset_code":    "assets.asset_code",
		"asset_name":    "assets.name",
		"requested_by":  "requester.username",
		"assigned_date": "assignments.assigned_date",
		"returned_date": "return_requests.returned_date",
		"state":         "return_requests.status",
	},
	Default: "id",
}

// ListParams drive the return request listing query.
type ListParams struct {
	Page         int
	Search       string
	SortKey      string
	SortDir      string
	Statuses     []enums.ReturnRequestStatus
	ReturnedDate *time.Time
	PriorityID   uuid.UUID
}

// Repository wraps return request persistence plus the assignment and asset
// writes the return workflow performs.
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

// FindByID loads a non-deleted return request with its assignment chain.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error) {
	var request models.ReturnRequest
	err := r.db.WithContext(ctx).
		Preload("Assignment").
		Preload("Assignment.Asset").
		Preload("Assignment.AssignedTo").
		Preload("AcceptedBy").
		Scopes(query.NotDeleted).
		First(&request, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// FindAssignment loads a non-deleted assignment with its asset.
func (r *Repository) FindAssignment(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	var assignment models.Assignment
	err := r.db.WithContext(ctx).
		Preload("Asset").
		Scopes(query.NotDeleted).
		First(&assignment, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// HasOpenForAssignment reports whether a non-deleted return request already
// exists for the assignment.
func (r *Repository) HasOpenForAssignment(ctx context.Context, assignmentID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ReturnRequest{}).
		Scopes(query.NotDeleted).
		Where("assignment_id = ?", assignmentID).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new return request row.
func (r *Repository) Create(ctx context.Context, request *models.ReturnRequest) (int64, error) {
	res := r.db.WithContext(ctx).Create(request)
	return res.RowsAffected, res.Error
}

// Complete marks the request completed, stamping the acceptor and date.
func (r *Repository) Complete(ctx context.Context, id, acceptedByID uuid.UUID, returnedDate time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ReturnRequest{}).
		Where("id = ? AND status = ? AND is_deleted = ?", id, enums.ReturnRequestStatusWaitingForReturning, false).
		Updates(map[string]any{
			"status":         enums.ReturnRequestStatusCompleted,
			"accepted_by_id": acceptedByID,
			"returned_date":  returnedDate,
		})
	return res.RowsAffected, res.Error
}

// SoftDelete marks the request deleted. Already-deleted rows affect nothing,
// which is how cancel stays idempotent.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ReturnRequest{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	return res.RowsAffected, res.Error
}

// SetAssignmentStatus updates the parent assignment status.
func (r *Repository) SetAssignmentStatus(ctx context.Context, assignmentID uuid.UUID, status enums.AssignmentStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ? AND is_deleted = ?", assignmentID, false).
		Update("status", status)
	return res.RowsAffected, res.Error
}

// SetAssetStatus updates the backing asset status.
func (r *Repository) SetAssetStatus(ctx context.Context, assetID uuid.UUID, status enums.AssetStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Asset{}).
		Where("id = ? AND is_deleted = ?", assetID, false).
		Update("status", status)
	return res.RowsAffected, res.Error
}

// List returns one page of return requests matching the params plus the
// filtered total.
func (r *Repository) List(ctx context.Context, params ListParams) ([]models.ReturnRequest, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.ReturnRequest{}).
		Joins("JOIN assignments ON assignments.id = return_requests.assignment_id").
		Joins("JOIN assets ON assets.id = assignments.asset_id").
		Joins("JOIN users requester ON requester.id = assignments.assigned_to_id").
		Scopes(
			query.NotDeletedIn("return_requests"),
			query.Search(params.Search, "assets.asset_code", "assets.name", "requester.username"),
		)
	if len(params.Statuses) > 0 {
		base = base.Where("return_requests.status IN ?", params.Statuses)
	}
	if params.ReturnedDate != nil {
		base = base.Where("DATE(return_requests.returned_date) = DATE(?)", *params.ReturnedDate)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ReturnRequest
	err := base.Session(&gorm.Session{}).
		Preload("Assignment").
		Preload("Assignment.Asset").
		Preload("Assignment.AssignedTo").
		Preload("AcceptedBy").
		Scopes(
			query.Prioritize("return_requests.id", params.PriorityID),
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
