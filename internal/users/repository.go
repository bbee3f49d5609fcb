package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/assetdesk/assetdesk-backend/internal/query"
	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const fullNameExpr = "(users.first_name || ' ' || users.last_name)"

var listSort = query.Sort{
	Columns: map[string]string{
		"staff_code":  "users.staff_code",
		"name":        fullNameExpr,
		"username":    "users.username",
		"joined_date": "users.joined_date",
		"role":        "roles.name",
	},
	Default: "staff_code",
}

// ListParams drive the user listing query.
type ListParams struct {
	Page       int
	Search     string
	SortKey    string
	SortDir    string
	LocationID uuid.UUID
	RoleNames  []string
	PriorityID uuid.UUID
}

// Repository wraps user persistence.
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

// FindByID loads a non-deleted user with role and location.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("Location").
		Scopes(query.NotDeleted).
		First(&user, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername loads a non-deleted user by username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("Location").
		Scopes(query.NotDeleted).
		First(&user, "username = ?", username).
		Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user row.
func (r *Repository) Create(ctx context.Context, user *models.User) (int64, error) {
	res := r.db.WithContext(ctx).Create(user)
	return res.RowsAffected, res.Error
}

// Save persists all fields of an existing user.
func (r *Repository) Save(ctx context.Context, user *models.User) (int64, error) {
	res := r.db.WithContext(ctx).Save(user)
	return res.RowsAffected, res.Error
}

// SoftDelete marks the user deleted.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	return res.RowsAffected, res.Error
}

// LatestStaffCode returns the highest staff code with the given prefix, or
// empty when none exists. Soft-deleted users still occupy their code.
func (r *Repository) LatestStaffCode(ctx context.Context, prefix string) (string, error) {
	var code string
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("staff_code LIKE ?", prefix+"%").
		Order("staff_code DESC").
		Limit(1).
		Pluck("staff_code", &code).
		Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	return code, nil
}

// UsernamesLike returns every username starting with base, deleted users
// included, so generated usernames never collide with historical ones.
func (r *Repository) UsernamesLike(ctx context.Context, base string) ([]string, error) {
	var usernames []string
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username LIKE ?", base+"%").
		Pluck("username", &usernames).
		Error
	if err != nil {
		return nil, err
	}
	return usernames, nil
}

// List returns one page of users matching the params plus the filtered total.
func (r *Repository) List(ctx context.Context, params ListParams) ([]models.User, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN roles ON roles.id = users.role_id").
		Scopes(
			query.NotDeletedIn("users"),
			query.Search(params.Search, "users.staff_code", "users.username", fullNameExpr),
		)
	if params.LocationID != uuid.Nil {
		base = base.Where("users.location_id = ?", params.LocationID)
	}
	if len(params.RoleNames) > 0 {
		base = base.Where("roles.name IN ?", params.RoleNames)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.User
	err := base.Session(&gorm.Session{}).
		Preload("Role").
		Preload("Location").
		Scopes(
			query.Prioritize("users.id", params.PriorityID),
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

// ParseRoleFilter validates the role filter. Empty input and the sentinel
// "all" lift the constraint.
func ParseRoleFilter(values []string) ([]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	roles := make([]string, 0, len(values))
	for _, raw := range values {
		switch raw {
		case "all":
			return nil, nil
		case models.RoleAdmin, models.RoleStaff:
			roles = append(roles, raw)
		default:
			return nil, fmt.Errorf("unknown role %q", raw)
		}
	}
	return roles, nil
}
