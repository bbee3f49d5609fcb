package assignments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/db"
	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/assetdesk/assetdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes the assignment workflow operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*AssignmentDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*AssignmentDTO, error)
	Respond(ctx context.Context, id, responderID uuid.UUID, accepted string) (*AssignmentDTO, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Get(ctx context.Context, id uuid.UUID) (*AssignmentDTO, error)
	List(ctx context.Context, input ListInput) (pagination.Page[AssignmentDTO], error)
	ListMy(ctx context.Context, userID uuid.UUID, input MyListInput) (pagination.Page[AssignmentDTO], error)
}

// CreateInput holds the validated payload to create an assignment.
type CreateInput struct {
	AssetID      uuid.UUID
	AssignedToID uuid.UUID
	AssignedByID uuid.UUID
	AssignedDate time.Time
	Note         string
}

// UpdateInput holds optional mutation values for an assignment.
type UpdateInput struct {
	AssetID      *uuid.UUID
	AssignedToID *uuid.UUID
	AssignedByID *uuid.UUID
	AssignedDate *time.Time
	Note         *string
	State        *string
}

// ListInput carries raw listing parameters; filter parsing happens here.
type ListInput struct {
	Page         int
	Search       string
	SortKey      string
	SortDir      string
	States       []string
	AssignedDate *time.Time
	PriorityID   uuid.UUID
}

// MyListInput carries the staff-facing listing parameters.
type MyListInput struct {
	Page    int
	SortKey string
	SortDir string
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs an assignment service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("assignment repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

// Create assigns an available asset to a user. The insert and the asset
// status flip run in one unit of work; the availability check is repeated by
// the conditional update so two racing creates cannot both claim the asset.
func (s *service) Create(ctx context.Context, input CreateInput) (*AssignmentDTO, error) {
	asset, err := s.repo.FindAsset(ctx, input.AssetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeAssetUnavailable, "asset does not exist or was deleted")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load asset")
	}
	if asset.Status != enums.AssetStatusAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeAssetUnavailable,
			fmt.Sprintf("asset %s is %s", asset.AssetCode, asset.Status)).
			WithDetails(map[string]any{"asset_code": asset.AssetCode, "state": asset.Status.String()})
	}

	if err := s.ensureActiveUser(ctx, input.AssignedToID, "assigned-to user"); err != nil {
		return nil, err
	}
	if err := s.ensureActiveUser(ctx, input.AssignedByID, "assigned-by user"); err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		ID:           uuid.New(),
		AssetID:      input.AssetID,
		AssignedToID: input.AssignedToID,
		AssignedByID: input.AssignedByID,
		AssignedDate: input.AssignedDate,
		Note:         input.Note,
		Status:       enums.AssignmentStatusWaitingForAcceptance,
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		rows, err := txRepo.Create(ctx, assignment)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "insert assignment")
		}
		if rows == 0 {
			return pkgerrors.Persistence("assignment_insert", "assignment insert affected no rows")
		}

		rows, err = txRepo.SetAssetStatusIf(ctx, input.AssetID, enums.AssetStatusAvailable, enums.AssetStatusAssigned)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "claim asset")
		}
		if rows == 0 {
			return s.explainAssetClaimFailure(ctx, txRepo, input.AssetID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, assignment.ID)
}

// explainAssetClaimFailure distinguishes a lost availability race from a
// write that silently affected nothing.
func (s *service) explainAssetClaimFailure(ctx context.Context, txRepo *Repository, assetID uuid.UUID) error {
	current, err := txRepo.FindAsset(ctx, assetID)
	if err != nil || current.Status != enums.AssetStatusAvailable {
		return pkgerrors.New(pkgerrors.CodeAssetUnavailable, "asset was claimed by a concurrent assignment")
	}
	return pkgerrors.Persistence("asset_status_update", "assignment created but asset status update failed")
}

// Update edits an assignment, optionally moving it to a different asset. When
// the asset changes, the old asset is released and the new one claimed in the
// same unit of work as the field update.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*AssignmentDTO, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "assignment not found")
	}

	if input.AssignedToID != nil {
		if err := s.ensureActiveUser(ctx, *input.AssignedToID, "assigned-to user"); err != nil {
			return nil, err
		}
		assignment.AssignedToID = *input.AssignedToID
	}
	if input.AssignedByID != nil {
		if err := s.ensureActiveUser(ctx, *input.AssignedByID, "assigned-by user"); err != nil {
			return nil, err
		}
		assignment.AssignedByID = *input.AssignedByID
	}
	if input.AssignedDate != nil {
		assignment.AssignedDate = *input.AssignedDate
	}
	if input.Note != nil {
		assignment.Note = *input.Note
	}
	if input.State != nil {
		// Unknown state values are ignored rather than rejected.
		if status, err := enums.ParseAssignmentStatus(*input.State); err == nil {
			assignment.Status = status
		}
	}

	oldAssetID := assignment.AssetID
	assetChanged := input.AssetID != nil && *input.AssetID != oldAssetID
	if assetChanged {
		newAsset, err := s.repo.FindAsset(ctx, *input.AssetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeAssetUnavailable, "replacement asset does not exist or was deleted")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load replacement asset")
		}
		if newAsset.Status != enums.AssetStatusAvailable {
			return nil, pkgerrors.New(pkgerrors.CodeAssetUnavailable,
				fmt.Sprintf("replacement asset %s is %s", newAsset.AssetCode, newAsset.Status))
		}
		assignment.AssetID = *input.AssetID
	}

	// Drop preloaded associations so Save writes only assignment columns.
	assignment.Asset = nil
	assignment.AssignedTo = nil
	assignment.AssignedBy = nil
	assignment.ReturnRequest = nil

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		rows, err := txRepo.Save(ctx, assignment)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "update assignment")
		}
		if rows == 0 {
			return pkgerrors.Persistence("assignment_update", "assignment update affected no rows")
		}

		if !assetChanged {
			return nil
		}

		rows, err = txRepo.SetAssetStatus(ctx, oldAssetID, enums.AssetStatusAvailable)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "release old asset")
		}
		if rows == 0 {
			return pkgerrors.Persistence("old_asset_release", "assignment updated but old asset release failed")
		}

		rows, err = txRepo.SetAssetStatusIf(ctx, assignment.AssetID, enums.AssetStatusAvailable, enums.AssetStatusAssigned)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "claim new asset")
		}
		if rows == 0 {
			return s.explainAssetClaimFailure(ctx, txRepo, assignment.AssetID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, assignment.ID)
}

// Respond records the assignee's accept/decline decision. Declining releases
// the asset back to the available pool.
func (s *service) Respond(ctx context.Context, id, responderID uuid.UUID, accepted string) (*AssignmentDTO, error) {
	acceptedFlag, err := strconv.ParseBool(accepted)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("accepted flag %q is not a boolean", accepted))
	}

	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "assignment not found")
	}
	if assignment.AssignedToID != responderID {
		return nil, pkgerrors.New(pkgerrors.CodeNotYourAssignment, "only the assignee can respond to an assignment")
	}
	if assignment.Asset == nil || assignment.Asset.Status != enums.AssetStatusAssigned {
		return nil, pkgerrors.New(pkgerrors.CodeAssetNotAssigned, "backing asset is not in assigned state")
	}

	status := enums.AssignmentStatusAccepted
	if !acceptedFlag {
		status = enums.AssignmentStatusDeclined
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		rows, err := txRepo.SetStatus(ctx, id, status)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "record assignment response")
		}
		if rows == 0 {
			return pkgerrors.Persistence("assignment_response", "assignment response affected no rows")
		}

		if acceptedFlag {
			return nil
		}

		rows, err = txRepo.SetAssetStatus(ctx, assignment.AssetID, enums.AssetStatusAvailable)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "release declined asset")
		}
		if rows == 0 {
			return pkgerrors.Persistence("asset_release", "assignment declined but asset release failed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// Delete soft-deletes an assignment. A missing assignment is an expected
// empty case, not an error. Accepted assignments cannot be deleted. An
// assignment still waiting for acceptance releases its asset on deletion.
func (s *service) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
	}
	if assignment.Status == enums.AssignmentStatusAccepted {
		return false, pkgerrors.New(pkgerrors.CodeCannotDeleteAccepted, "accepted assignments cannot be deleted")
	}

	holdsAsset := assignment.Status == enums.AssignmentStatusWaitingForAcceptance

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		rows, err := txRepo.SoftDelete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "soft delete assignment")
		}
		if rows == 0 {
			return pkgerrors.Persistence("assignment_soft_delete", "assignment delete affected no rows")
		}

		if !holdsAsset {
			return nil
		}

		rows, err = txRepo.SetAssetStatusIf(ctx, assignment.AssetID, enums.AssetStatusAssigned, enums.AssetStatusAvailable)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "release asset")
		}
		if rows == 0 {
			return pkgerrors.Persistence("asset_release", "assignment deleted but asset release failed")
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Get loads a single assignment.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*AssignmentDTO, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "assignment not found")
	}
	return ToDTO(assignment), nil
}

// List returns one page of assignments for the management view.
func (s *service) List(ctx context.Context, input ListInput) (pagination.Page[AssignmentDTO], error) {
	var empty pagination.Page[AssignmentDTO]

	statuses, err := ParseStatusFilter(input.States)
	if err != nil {
		return empty, pkgerrors.New(pkgerrors.CodeInvalidFilter, err.Error()).
			WithDetails(map[string]any{"filter": "state", "values": input.States})
	}

	rows, total, err := s.repo.List(ctx, ListParams{
		Page:         input.Page,
		Search:       input.Search,
		SortKey:      input.SortKey,
		SortDir:      input.SortDir,
		Statuses:     statuses,
		AssignedDate: input.AssignedDate,
		PriorityID:   input.PriorityID,
	})
	if err != nil {
		return empty, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignments")
	}

	return pagination.NewPage(ToDTOs(rows), total, input.Page), nil
}

// ListMy returns the caller's own open assignments.
func (s *service) ListMy(ctx context.Context, userID uuid.UUID, input MyListInput) (pagination.Page[AssignmentDTO], error) {
	var empty pagination.Page[AssignmentDTO]

	rows, total, err := s.repo.ListForUser(ctx, userID, input.Page, input.SortKey, input.SortDir)
	if err != nil {
		return empty, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list my assignments")
	}
	return pagination.NewPage(ToDTOs(rows), total, input.Page), nil
}

func (s *service) ensureActiveUser(ctx context.Context, id uuid.UUID, label string) error {
	user, err := s.repo.FindUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, label+" not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+label)
	}
	if user.IsDeleted {
		return pkgerrors.New(pkgerrors.CodeUserDisabled, label+" is disabled")
	}
	return nil
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
