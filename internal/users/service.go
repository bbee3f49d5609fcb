package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/assetdesk/assetdesk-backend/pkg/config"
	"github.com/assetdesk/assetdesk-backend/pkg/db"
	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/assetdesk/assetdesk-backend/pkg/pagination"
	"github.com/assetdesk/assetdesk-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	staffCodePrefix = "SD"
	staffCodeDigits = 4
	minAgeYears     = 18
)

// Service exposes user management operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreatedUserDTO, error)
	Disable(ctx context.Context, id uuid.UUID) (bool, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	List(ctx context.Context, input ListInput) (pagination.Page[UserDTO], error)
}

// CreateInput holds the validated payload to create a user.
type CreateInput struct {
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	JoinedDate  time.Time
	Gender      string
	RoleID      uuid.UUID
	LocationID  uuid.UUID
}

// ListInput carries raw listing parameters; filter parsing happens here.
type ListInput struct {
	Page       int
	Search     string
	SortKey    string
	SortDir    string
	LocationID uuid.UUID
	Roles      []string
	PriorityID uuid.UUID
}

type roleLoader interface {
	FindRole(ctx context.Context, id uuid.UUID) (*models.Role, error)
}

type locationLoader interface {
	FindLocation(ctx context.Context, id uuid.UUID) (*models.Location, error)
}

type activeAssignmentChecker interface {
	HasActiveForUser(ctx context.Context, userID uuid.UUID) (bool, error)
}

// tokenInvalidator tears down the disabled user's live sessions so issued
// tokens stop working immediately.
type tokenInvalidator interface {
	RevokeUser(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo        *Repository
	dbClient    *db.Client
	roles       roleLoader
	locations   locationLoader
	assignments activeAssignmentChecker
	tokens      tokenInvalidator
	passwordCfg config.PasswordConfig
}

// NewService constructs a user service instance.
func NewService(
	repo *Repository,
	dbClient *db.Client,
	roles roleLoader,
	locations locationLoader,
	assignments activeAssignmentChecker,
	tokens tokenInvalidator,
	passwordCfg config.PasswordConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if roles == nil {
		return nil, fmt.Errorf("role loader required")
	}
	if locations == nil {
		return nil, fmt.Errorf("location loader required")
	}
	if assignments == nil {
		return nil, fmt.Errorf("assignment checker required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token invalidator required")
	}
	return &service{
		repo:        repo,
		dbClient:    dbClient,
		roles:       roles,
		locations:   locations,
		assignments: assignments,
		tokens:      tokens,
		passwordCfg: passwordCfg,
	}, nil
}

// Create provisions a staff member: staff code, username, and a temporary
// password are all generated server-side. Generation runs inside the insert
// transaction so concurrent creates cannot collide on code or username.
func (s *service) Create(ctx context.Context, input CreateInput) (*CreatedUserDTO, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first and last name are required")
	}
	gender, err := enums.ParseGender(input.Gender)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown gender %q", input.Gender))
	}
	if !input.JoinedDate.After(input.DateOfBirth) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "joined date must be after date of birth")
	}
	if input.JoinedDate.Before(input.DateOfBirth.AddDate(minAgeYears, 0, 0)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff must be at least 18 at their joined date")
	}

	if _, err := s.roles.FindRole(ctx, input.RoleID); err != nil {
		return nil, notFoundOr(err, "role not found")
	}
	if _, err := s.locations.FindLocation(ctx, input.LocationID); err != nil {
		return nil, notFoundOr(err, "location not found")
	}

	user := &models.User{
		ID:          uuid.New(),
		FirstName:   firstName,
		LastName:    lastName,
		DateOfBirth: input.DateOfBirth,
		JoinedDate:  input.JoinedDate,
		Gender:      gender,
		RoleID:      input.RoleID,
		LocationID:  input.LocationID,
		FirstLogin:  true,
	}

	var tempPassword string
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		staffCode, err := nextStaffCode(ctx, txRepo)
		if err != nil {
			return err
		}
		user.StaffCode = staffCode

		username, err := generateUsername(ctx, txRepo, firstName, lastName)
		if err != nil {
			return err
		}
		user.Username = username

		tempPassword = fmt.Sprintf("%s@%s", username, input.DateOfBirth.Format("02012006"))
		hash, err := security.HashPassword(tempPassword, s.passwordCfg)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash temporary password")
		}
		user.PasswordHash = hash

		rows, err := txRepo.Create(ctx, user)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "insert user")
		}
		if rows == 0 {
			return pkgerrors.Persistence("user_insert", "user insert affected no rows")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto, err := s.Get(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &CreatedUserDTO{UserDTO: *dto, TemporaryPassword: tempPassword}, nil
}

// Disable soft-deletes a user and invalidates their tokens. A user holding
// an assignment that is waiting for acceptance or accepted cannot be
// disabled; that case reports false without touching anything.
func (s *service) Disable(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return false, notFoundOr(err, "user not found")
	}

	active, err := s.assignments.HasActiveForUser(ctx, id)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active assignments")
	}
	if active {
		return false, nil
	}

	var affected int64
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).SoftDelete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "soft delete user")
		}
		affected = rows
		return nil
	})
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	// Token teardown happens after the commit: a rolled-back disable must
	// not lock the user out.
	if err := s.tokens.RevokeUser(ctx, id); err != nil {
		return true, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke user sessions")
	}
	return true, nil
}

// Get loads a single user.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	return ToDTO(user), nil
}

// List returns one page of users for the caller's location.
func (s *service) List(ctx context.Context, input ListInput) (pagination.Page[UserDTO], error) {
	var empty pagination.Page[UserDTO]

	roles, err := ParseRoleFilter(input.Roles)
	if err != nil {
		return empty, pkgerrors.New(pkgerrors.CodeInvalidFilter, err.Error()).
			WithDetails(map[string]any{"filter": "role", "values": input.Roles})
	}

	rows, total, err := s.repo.List(ctx, ListParams{
		Page:       input.Page,
		Search:     input.Search,
		SortKey:    input.SortKey,
		SortDir:    input.SortDir,
		LocationID: input.LocationID,
		RoleNames:  roles,
		PriorityID: input.PriorityID,
	})
	if err != nil {
		return empty, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}

	return pagination.NewPage(ToDTOs(rows), total, input.Page), nil
}

// nextStaffCode derives the next code in the SD sequence.
func nextStaffCode(ctx context.Context, repo *Repository) (string, error) {
	latest, err := repo.LatestStaffCode(ctx, staffCodePrefix)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest staff code")
	}

	seq := 1
	if latest != "" {
		parsed, err := strconv.Atoi(strings.TrimPrefix(latest, staffCodePrefix))
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("malformed staff code %q", latest))
		}
		seq = parsed + 1
	}
	return fmt.Sprintf("%s%0*d", staffCodePrefix, staffCodeDigits, seq), nil
}

// generateUsername builds the login name from the first name plus the
// initial of each last-name word, lowercased, with a numeric suffix when the
// base is already taken.
func generateUsername(ctx context.Context, repo *Repository, firstName, lastName string) (string, error) {
	base := strings.ToLower(strings.ReplaceAll(firstName, " ", ""))
	for _, word := range strings.Fields(lastName) {
		runes := []rune(word)
		base += strings.ToLower(string(runes[0]))
	}

	existing, err := repo.UsernamesLike(ctx, base)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load existing usernames")
	}

	maxSuffix := -1
	for _, name := range existing {
		tail := strings.TrimPrefix(name, base)
		if tail == "" {
			if maxSuffix < 0 {
				maxSuffix = 0
			}
			continue
		}
		if !allDigits(tail) {
			continue
		}
		if n, err := strconv.Atoi(tail); err == nil && n > maxSuffix {
			maxSuffix = n
		}
	}

	if maxSuffix < 0 {
		return base, nil
	}
	return fmt.Sprintf("%s%d", base, maxSuffix+1), nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
