package users

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
`

type fixture struct {
	conn     *gorm.DB
	location *models.Location
	admin    *models.Role
	staff    *models.Role
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
	f.location = &models.Location{ID: uuid.New(), Name: "Hanoi"}
	require.NoError(t, conn.Create(f.location).Error)
	f.admin = &models.Role{ID: uuid.New(), Name: models.RoleAdmin}
	require.NoError(t, conn.Create(f.admin).Error)
	f.staff = &models.Role{ID: uuid.New(), Name: models.RoleStaff}
	require.NoError(t, conn.Create(f.staff).Error)
	return f
}

func (f *fixture) mustCreateUser(t *testing.T, username string, role *models.Role) *models.User {
	t.Helper()
	f.seq++
	user := &models.User{
		ID:           uuid.New(),
		StaffCode:    fmt.Sprintf("SD%04d", f.seq),
		Username:     username,
		PasswordHash: "hash",
		FirstName:    "Seed",
		LastName:     "User",
		DateOfBirth:  time.Date(1990, 4, 4, 0, 0, 0, 0, time.UTC),
		JoinedDate:   time.Date(2020, 2, 3, 0, 0, 0, 0, time.UTC),
		Gender:       enums.GenderOther,
		RoleID:       role.ID,
		LocationID:   f.location.ID,
	}
	require.NoError(t, f.conn.Create(user).Error)
	return user
}
