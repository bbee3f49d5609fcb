package assets

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
`

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Shared cache keeps every pooled connection on the same in-memory
	// database; the unique name isolates fixtures from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(testSchema).Error)
	return conn
}

func mustCreateCategory(t *testing.T, conn *gorm.DB, name, prefix string) *models.Category {
	t.Helper()
	category := &models.Category{ID: uuid.New(), Name: name, Prefix: prefix}
	require.NoError(t, conn.Create(category).Error)
	return category
}

func mustCreateLocation(t *testing.T, conn *gorm.DB, name string) *models.Location {
	t.Helper()
	location := &models.Location{ID: uuid.New(), Name: name}
	require.NoError(t, conn.Create(location).Error)
	return location
}

func mustCreateAsset(t *testing.T, conn *gorm.DB, category *models.Category, location *models.Location, seq int, status enums.AssetStatus) *models.Asset {
	t.Helper()
	asset := &models.Asset{
		ID:            uuid.New(),
		AssetCode:     fmt.Sprintf("%s%06d", category.Prefix, seq),
		Name:          fmt.Sprintf("Asset %s %d", category.Name, seq),
		CategoryID:    category.ID,
		LocationID:    location.ID,
		InstalledDate: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		Status:        status,
	}
	require.NoError(t, conn.Create(asset).Error)
	return asset
}

func mustCreateAssignmentRow(t *testing.T, conn *gorm.DB, assetID uuid.UUID, status enums.AssignmentStatus) *models.Assignment {
	t.Helper()
	assignment := &models.Assignment{
		ID:           uuid.New(),
		AssetID:      assetID,
		AssignedToID: uuid.New(),
		AssignedByID: uuid.New(),
		AssignedDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:       status,
	}
	require.NoError(t, conn.Create(assignment).Error)
	return assignment
}
