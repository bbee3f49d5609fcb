package returnrequests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/db"
	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/assetdesk/assetdesk-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes the return request workflow operations.
type Service interface {
	Create(ctx context.Context, assignmentID uuid.UUID) (*ReturnRequestDTO, error)
	Complete(ctx context.Context, id, acceptedByID uuid.UUID) (*ReturnRequestDTO, error)
	Cancel(ctx context.Context, id uuid.UUID) (bool, error)
	Get(ctx context.Context, id uuid.UUID) (*ReturnRequestDTO, error)
	List(ctx context.Context, input ListInput) (pagination.Page[ReturnRequestDTO], error)
}

// ListInput carries raw listing parameters; filter parsing happens here.
type ListInput struct {
	Page         int
	Search       string
	SortKey      string
	SortDir      string
	States       []string
	ReturnedDate *time.Time
	PriorityID   uuid.UUID
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	now      func() time.Time
}

// NewService constructs a return request service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("return request repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, now: time.Now}, nil
}

// Create opens a return request for an accepted assignment.
func (s *service) Create(ctx context.Context, assignmentID uuid.UUID) (*ReturnRequestDTO, error) {
	assignment, err := s.repo.FindAssignment(ctx, assignmentID)
	if err != nil {
		return nil, notFoundOr(err, "assignment not found")
	}
	if assignment.Status != enums.AssignmentStatusAccepted {
		return nil, pkgerrors.New(pkgerrors.CodeNotEligible,
			fmt.Sprintf("assignment is %s, only accepted assignments can be returned", assignment.Status)).
			WithDetails(map[string]any{"state": assignment.Status.String()})
	}

	open, err := s.repo.HasOpenForAssignment(ctx, assignmentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check open return requests")
	}
	if open {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "assignment already has an open return request")
	}

	request := &models.ReturnRequest{
		ID:           uuid.New(),
		AssignmentID: assignmentID,
		ReturnedDate: s.now(),
		Status:       enums.ReturnRequestStatusWaitingForReturning,
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).Create(ctx, request)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "insert return request")
		}
		if rows == 0 {
			return pkgerrors.Persistence("return_request_insert", "return request insert affected no rows")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, request.ID)
}

// Complete finishes a return: the request completes, the assignment becomes
// returned, and the asset goes back to the available pool, all in one unit of
// work.
func (s *service) Complete(ctx context.Context, id, acceptedByID uuid.UUID) (*ReturnRequestDTO, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "return request not found")
	}
	if request.Status != enums.ReturnRequestStatusWaitingForReturning {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "return request is not waiting for returning")
	}
	if request.Assignment == nil || request.Assignment.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assignment for return request not found")
	}
	if request.Assignment.Asset == nil || request.Assignment.Asset.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset for return request not found")
	}

	completedAt := s.now()
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		rows, err := txRepo.Complete(ctx, id, acceptedByID, completedAt)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "complete return request")
		}
		if rows == 0 {
			return pkgerrors.Persistence("return_request_complete", "return request completion affected no rows")
		}

		rows, err = txRepo.SetAssignmentStatus(ctx, request.AssignmentID, enums.AssignmentStatusReturned)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "mark assignment returned")
		}
		if rows == 0 {
			return pkgerrors.Persistence("assignment_returned", "return completed but assignment update failed")
		}

		rows, err = txRepo.SetAssetStatus(ctx, request.Assignment.AssetID, enums.AssetStatusAvailable)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "release returned asset")
		}
		if rows == 0 {
			return pkgerrors.Persistence("asset_release", "return completed but asset release failed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// Cancel soft-deletes a pending return request. A missing or already
// cancelled request reports false rather than erroring, so cancel is
// idempotent. Completed requests cannot be cancelled.
func (s *service) Cancel(ctx context.Context, id uuid.UUID) (bool, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load return request")
	}
	if request.Status == enums.ReturnRequestStatusCompleted {
		return false, pkgerrors.New(pkgerrors.CodeCannotCancelCompleted, "completed return requests cannot be cancelled")
	}

	var affected int64
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).SoftDelete(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "cancel return request")
		}
		affected = rows
		return nil
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Get loads a single return request.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*ReturnRequestDTO, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "return request not found")
	}
	return ToDTO(request), nil
}

// List returns one page of return requests.
func (s *service) List(ctx context.Context, input ListInput) (pagination.Page[ReturnRequestDTO], error) {
	var empty pagination.Page[ReturnRequestDTO]

	statuses, err := parseStateFilter(input.States)
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
		ReturnedDate: input.ReturnedDate,
		PriorityID:   input.PriorityID,
	})
	if err != nil {
		return empty, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list return requests")
	}

	return pagination.NewPage(ToDTOs(rows), total, input.Page), nil
}

// parseStateFilter maps raw state filter values onto return request statuses.
// Empty input and the "all" sentinel both lift the constraint; there is no
// narrower default view for returns.
func parseStateFilter(values []string) ([]enums.ReturnRequestStatus, error) {
	if len(values) == 0 {
		return nil, nil
	}
	statuses := make([]enums.ReturnRequestStatus, 0, len(values))
	for _, raw := range values {
		if raw == "all" {
			return nil, nil
		}
		status, err := enums.ParseReturnRequestStatus(raw)
		if err != nil {
			return nil, fmt.Errorf("unknown return request state %q", raw)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
