package assets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/db"
	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/assetdesk/assetdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const assetCodeDigits = 6

// Service exposes asset management operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*AssetDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*AssetDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*AssetDTO, error)
	List(ctx context.Context, input ListInput) (pagination.Page[AssetDTO], error)
}

// CreateInput holds the validated payload to create an asset.
type CreateInput struct {
	Name          string
	CategoryID    uuid.UUID
	LocationID    uuid.UUID
	Specification string
	InstalledDate time.Time
	State         string
}

// UpdateInput holds optional mutation values for an asset.
type UpdateInput struct {
	Name          *string
	Specification *string
	InstalledDate *time.Time
	State         *string
}

// ListInput carries raw listing parameters; filter parsing happens here.
type ListInput struct {
	Page       int
	Search     string
	SortKey    string
	SortDir    string
	LocationID uuid.UUID
	States     []string
	CategoryID uuid.UUID
	PriorityID uuid.UUID
}

type categoryLoader interface {
	FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

type locationLoader interface {
	FindLocation(ctx context.Context, id uuid.UUID) (*models.Location, error)
}

type service struct {
	repo       *Repository
	dbClient   *db.Client
	categories categoryLoader
	locations  locationLoader
}

// NewService constructs an asset service instance.
func NewService(repo *Repository, dbClient *db.Client, categories categoryLoader, locations locationLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("asset repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category loader required")
	}
	if locations == nil {
		return nil, fmt.Errorf("location loader required")
	}
	return &service{repo: repo, dbClient: dbClient, categories: categories, locations: locations}, nil
}

// Create generates the asset code from the category prefix and inserts the
// asset in one unit of work.
func (s *service) Create(ctx context.Context, input CreateInput) (*AssetDTO, error) {
	state, err := enums.ParseAssetStatus(input.State)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown asset state %q", input.State))
	}
	if state != enums.AssetStatusAvailable && state != enums.AssetStatusNotAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "new assets must be available or not_available")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset name is required")
	}

	category, err := s.categories.FindCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, notFoundOr(err, "category not found")
	}
	if _, err := s.locations.FindLocation(ctx, input.LocationID); err != nil {
		return nil, notFoundOr(err, "location not found")
	}

	asset := &models.Asset{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(input.Name),
		CategoryID:    input.CategoryID,
		LocationID:    input.LocationID,
		Specification: input.Specification,
		InstalledDate: input.InstalledDate,
		Status:        state,
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		code, err := nextAssetCode(ctx, txRepo, category.Prefix)
		if err != nil {
			return err
		}
		asset.AssetCode = code

		rows, err := txRepo.Create(ctx, asset)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "insert asset")
		}
		if rows == 0 {
			return pkgerrors.Persistence("asset_insert", "asset insert affected no rows")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, asset.ID)
}

// Update mutates an asset's editable fields. Assets currently assigned cannot
// be edited.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*AssetDTO, error) {
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "asset not found")
	}
	if asset.Status == enums.AssetStatusAssigned {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "assigned assets cannot be edited")
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "asset name cannot be blank")
		}
		asset.Name = strings.TrimSpace(*input.Name)
	}
	if input.Specification != nil {
		asset.Specification = *input.Specification
	}
	if input.InstalledDate != nil {
		asset.InstalledDate = *input.InstalledDate
	}
	if input.State != nil {
		state, err := enums.ParseAssetStatus(*input.State)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown asset state %q", *input.State))
		}
		if state == enums.AssetStatusAssigned {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "assets cannot be moved to assigned directly")
		}
		asset.Status = state
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).Save(ctx, asset)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "update asset")
		}
		if rows == 0 {
			return pkgerrors.Persistence("asset_update", "asset update affected no rows")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, asset.ID)
}

// Delete soft-deletes an asset. Assets with any assignment history are kept
// for audit and cannot be removed.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "asset not found")
	}
	if asset.Status == enums.AssetStatusAssigned {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "assigned assets cannot be deleted")
	}

	hasHistory, err := s.repo.HasAssignments(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check asset assignment history")
	}
	if hasHistory {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "assets with assignment history cannot be deleted")
	}

	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).SoftDelete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "soft delete asset")
		}
		if rows == 0 {
			return pkgerrors.Persistence("asset_soft_delete", "asset delete affected no rows")
		}
		return nil
	})
}

// Get loads a single asset.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*AssetDTO, error) {
	asset, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "asset not found")
	}
	return ToDTO(asset), nil
}

// List returns one page of assets for the caller's location.
func (s *service) List(ctx context.Context, input ListInput) (pagination.Page[AssetDTO], error) {
	var empty pagination.Page[AssetDTO]

	states, err := ParseStateFilter(input.States)
	if err != nil {
		return empty, pkgerrors.New(pkgerrors.CodeInvalidFilter, err.Error()).
			WithDetails(map[string]any{"filter": "state", "values": input.States})
	}

	rows, total, err := s.repo.List(ctx, ListParams{
		Page:       input.Page,
		Search:     input.Search,
		SortKey:    input.SortKey,
		SortDir:    input.SortDir,
		LocationID: input.LocationID,
		States:     states,
		CategoryID: input.CategoryID,
		PriorityID: input.PriorityID,
	})
	if err != nil {
		return empty, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assets")
	}

	return pagination.NewPage(ToDTOs(rows), total, input.Page), nil
}

// nextAssetCode derives the next code in the category's sequence. Runs inside
// the create transaction so two concurrent creates cannot pick the same code.
func nextAssetCode(ctx context.Context, repo *Repository, prefix string) (string, error) {
	latest, err := repo.LatestCodeForPrefix(ctx, prefix, assetCodeDigits)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest asset code")
	}

	seq := 1
	if latest != "" {
		tail := strings.TrimPrefix(latest, prefix)
		parsed, err := strconv.Atoi(tail)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("malformed asset code %q", latest))
		}
		seq = parsed + 1
	}
	return fmt.Sprintf("%s%0*d", prefix, assetCodeDigits, seq), nil
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
