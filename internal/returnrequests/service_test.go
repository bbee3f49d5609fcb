package returnrequests

import (
	"context"
	"testing"
	"time"

	"github.com/assetdesk/assetdesk-backend/pkg/db"
	"github.com/assetdesk/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*service, *fixture) {
	t.Helper()
	f := newFixture(t)
	svc, err := NewService(NewRepository(f.conn), db.FromConn(f.conn))
	require.NoError(t, err)
	return svc.(*service), f
}

func TestCreateRequiresAcceptedAssignment(t *testing.T) {
	svc, f := newTestService(t)
	ctx := context.Background()
	staff := f.mustCreateUser(t, "binhnv")

	for _, status := range []enums.AssignmentStatus{
		enums.AssignmentStatusWaitingForAcceptance,
		enums.AssignmentStatusDeclined,
		enums.AssignmentStatusReturned,
	} {
		asset := f.mustCreateAsset(t, enums.AssetStatusAssigned)
		assignment := f.mustCreateAssignment(t, asset, staff, status)
		_, err := svc.Create(ctx, assignment.ID)
		require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotEligible), "status %s: got %v", status, err)
	}
}

func TestCreateOpensWaitingRequest(t *testing.T) {
	svc, f := newTestService(t)
	ctx := context.Background()
	staff := f.mustCreateUser(t, "binhnv")
	asset := f.mustCreateAsset(t, enums.AssetStatusAssigned)
	assignment := f.mustCreateAssignment(t, asset, staff, enums.AssignmentStatusAccepted)

	created, err := svc.Create(ctx, assignment.ID)
	require.NoError(t, err)
	require.Equal(t, "waiting_for_returning", created.State)
	require.Equal(t, asset.AssetCode, created.AssetCode)
	require.Equal(t, "binhnv", created.RequestedByUsername)

	// At most one open request per assignment.
	_, err = svc.Create(ctx, assignment.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestCreateMissingAssignmentIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), uuid.New())
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestCompleteFinishesWholeChain(t *testing.T) {
	svc, f := newTestService(t)
	ctx := context.Background()
	staff := f.mustCreateUser(t, "binhnv")
	admin := f.mustCreateUser(t, "adminsd")
	asset := f.mustCreateAsset(t, enums.AssetStatusAssigned)
	assignment := f.mustCreateAssignment(t, asset, staff, enums.AssignmentStatusAccepted)

	completedAt := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return completedAt }

	created, err := svc.Create(ctx, assignment.ID)
	require.NoError(t, err)

	// Scenario C: completing flips all three entities together.
	completed, err := svc.Complete(ctx, created.ID, admin.ID)
	require.NoError(t, err)
	require.Equal(t, "completed", completed.State)
	require.Equal(t, "adminsd", completed.AcceptedByUsername)
	require.True(t, completed.ReturnedDate.Equal(completedAt))
	require.Equal(t, enums.AssignmentStatusReturned, f.assignmentStatus(t, assignment.ID))
	require.Equal(t, enums.AssetStatusAvailable, f.assetStatus(t, asset.ID))

	// A completed request cannot be completed again.
	_, err = svc.Complete(ctx, created.ID, admin.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestCancelIsIdempotent(t *testing.T) {
	svc, f := newTestService(t)
	ctx := context.Background()
	staff := f.mustCreateUser(t, "binhnv")
	asset := f.mustCreateAsset(t, enums.AssetStatusAssigned)
	assignment := f.mustCreateAssignment(t, asset, staff, enums.AssignmentStatusAccepted)

	created, err := svc.Create(ctx, assignment.ID)
	require.NoError(t, err)

	ok, err := svc.Cancel(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)

	// Cancelling again finds nothing to do and must not mutate further.
	ok, err = svc.Cancel(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, ok)

	// Assignment and asset are untouched by cancellation.
	require.Equal(t, enums.AssignmentStatusAccepted, f.assignmentStatus(t, assignment.ID))
	require.Equal(t, enums.AssetStatusAssigned, f.assetStatus(t, asset.ID))
}

func TestCancelCompletedRequestRefused(t *testing.T) {
	svc, f := newTestService(t)
	ctx := context.Background()
	staff := f.mustCreateUser(t, "binhnv")
	admin := f.mustCreateUser(t, "adminsd")
	asset := f.mustCreateAsset(t, enums.AssetStatusAssigned)
	assignment := f.mustCreateAssignment(t, asset, staff, enums.AssignmentStatusAccepted)

	created, err := svc.Create(ctx, assignment.ID)
	require.NoError(t, err)
	_, err = svc.Complete(ctx, created.ID, admin.ID)
	require.NoError(t, err)

	ok, err := svc.Cancel(ctx, created.ID)
	require.False(t, ok)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeCannotCancelCompleted))
}

func TestListFiltersAndSearch(t *testing.T) {
	svc, f := newTestService(t)
	ctx := context.Background()
	staff := f.mustCreateUser(t, "binhnv")
	admin := f.mustCreateUser(t, "adminsd")

	openAsset := f.mustCreateAsset(t, enums.AssetStatusAssigned)
	openAssignment := f.mustCreateAssignment(t, openAsset, staff, enums.AssignmentStatusAccepted)
	open, err := svc.Create(ctx, openAssignment.ID)
	require.NoError(t, err)

	doneAsset := f.mustCreateAsset(t, enums.AssetStatusAssigned)
	doneAssignment := f.mustCreateAssignment(t, doneAsset, staff, enums.AssignmentStatusAccepted)
	done, err := svc.Create(ctx, doneAssignment.ID)
	require.NoError(t, err)
	_, err = svc.Complete(ctx, done.ID, admin.ID)
	require.NoError(t, err)

	all, err := svc.List(ctx, ListInput{Page: 1})
	require.NoError(t, err)
	require.EqualValues(t, 2, all.TotalCount)

	waiting, err := svc.List(ctx, ListInput{Page: 1, States: []string{"waiting_for_returning"}})
	require.NoError(t, err)
	require.EqualValues(t, 1, waiting.TotalCount)
	require.Equal(t, open.ID, waiting.Items[0].ID)

	byCode, err := svc.List(ctx, ListInput{Page: 1, Search: doneAsset.AssetCode})
	require.NoError(t, err)
	require.EqualValues(t, 1, byCode.TotalCount)
	require.Equal(t, done.ID, byCode.Items[0].ID)

	_, err = svc.List(ctx, ListInput{Page: 1, States: []string{"vanished"}})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidFilter))
}
