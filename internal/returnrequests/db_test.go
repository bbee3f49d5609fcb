package returnrequests

import (
	"fmt"
	"testing"
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSchema = `
CREATE TABLE categories (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	prefix TEXT NOT NULL UNIQUE,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE locations (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE roles (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE users (
	id TEXT PRIMARY KEY,
	staff_code TEXT NOT NULL UNIQUE,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	date_of_birth DATETIME NOT NULL,
	joined_date DATETIME NOT NULL,
	gender TEXT NOT NULL,
	role_id TEXT NOT NULL,
	location_id TEXT NOT NULL,
	first_login BOOLEAN NOT NULL DEFAULT TRUE,
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE assets (
	id TEXT PRIMARY KEY,
	asset_code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	category_id TEXT NOT NULL,
	location_id TEXT NOT NULL,
	specification TEXT,
	installed_date DATETIME NOT NULL,
	status TEXT NOT NULL DEFAULT 'available',
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE assignments (
	id TEXT PRIMARY KEY,
	asset_id TEXT NOT NULL,
	assigned_to_id TEXT NOT NULL,
	assigned_by_id TEXT NOT NULL,
	assigned_date DATETIME NOT NULL,
	note TEXT,
	status TEXT NOT NULL DEFAULT 'waiting_for_acceptance',
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
	created_at DATETIME,
	updated_at DATETIME
);
CREATE TABLE return_requests (
	id TEXT PRIMARY KEY,
	assignment_id TEXT NOT NULL,
	accepted_by_id TEXT,
	returned_date DATETIME NOT NULL,
	status TEXT NOT NULL DEFAULT 'waiting_for_returning',
	is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
	created_at DATETIME,
	updated_at DATETIME
);
`

type fixture struct {
	conn     *gorm.DB
	category *models.Category
	location *models.Location
	role     *models.Role
	seq      int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	// Shared cache keeps every pooled connection on the same in-memory
	// database; the unique name isolates fixtures from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(testSchema).Error)

	f := &fixture{conn: conn}
	f.category = &models.Category{ID: uuid.New(), Name: "Laptop", Prefix: "LA"}
	require.NoError(t, conn.Create(f.category).Error)
	f.location = &models.Location{ID: uuid.New(), Name: "Hanoi"}
	require.NoError(t, conn.Create(f.location).Error)
	f.role = &models.Role{ID: uuid.New(), Name: models.RoleStaff}
	require.NoError(t, conn.Create(f.role).Error)
	return f
}

func (f *fixture) mustCreateUser(t *testing.T, username string) *models.User {
	t.Helper()
	f.seq++
	user := &models.User{
		ID:           uuid.New(),
		StaffCode:    fmt.Sprintf("SD%04d", f.seq),
		Username:     username,
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "User",
		DateOfBirth:  time.Date(1995, 5, 5, 0, 0, 0, 0, time.UTC),
		JoinedDate:   time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC),
		Gender:       enums.GenderMale,
		RoleID:       f.role.ID,
		LocationID:   f.location.ID,
	}
	require.NoError(t, f.conn.Create(user).Error)
	return user
}

func (f *fixture) mustCreateAsset(t *testing.T, status enums.AssetStatus) *models.Asset {
	t.Helper()
	f.seq++
	asset := &models.Asset{
		ID:            uuid.New(),
		AssetCode:     fmt.Sprintf("LA%06d", f.seq),
		Name:          fmt.Sprintf("Laptop %d", f.seq),
		CategoryID:    f.category.ID,
		LocationID:    f.location.ID,
		InstalledDate: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		Status:        status,
	}
	require.NoError(t, f.conn.Create(asset).Error)
	return asset
}

func (f *fixture) mustCreateAssignment(t *testing.T, asset *models.Asset, assignedTo *models.User, status enums.AssignmentStatus) *models.Assignment {
	t.Helper()
	assignment := &models.Assignment{
		ID:           uuid.New(),
		AssetID:      asset.ID,
		AssignedToID: assignedTo.ID,
		AssignedByID: assignedTo.ID,
		AssignedDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		Status:       status,
	}
	require.NoError(t, f.conn.Create(assignment).Error)
	return assignment
}

func (f *fixture) assetStatus(t *testing.T, id uuid.UUID) enums.AssetStatus {
	t.Helper()
	var status string
	require.NoError(t, f.conn.Raw("SELECT status FROM assets WHERE id = ?", id).Scan(&status).Error)
	return enums.AssetStatus(status)
}

func (f *fixture) assignmentStatus(t *testing.T, id uuid.UUID) enums.AssignmentStatus {
	t.Helper()
	var status string
	require.NoError(t, f.conn.Raw("SELECT status FROM assignments WHERE id = ?", id).Scan(&status).Error)
	return enums.AssignmentStatus(status)
}
