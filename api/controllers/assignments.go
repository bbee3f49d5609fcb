package controllers

import (
	"net/http"

	"github.com/assetdesk/assetdesk-backend/api/responses"
	"github.com/assetdesk/assetdesk-backend/api/validators"
	assignmentsvc "github.com/assetdesk/assetdesk-backend/internal/assignments"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/assetdesk/assetdesk-backend/pkg/logger"
	"github.com/google/uuid"
)

type createAssignmentRequest struct {
	AssetID      uuid.UUID `json:"asset_id" validate:"required"`
	AssignedToID uuid.UUID `json:"assigned_to_id" validate:"required"`
	AssignedDate string    `json:"assigned_date" validate:"required"`
	Note         string    `json:"note"`
}

type updateAssignmentRequest struct {
	AssetID      *uuid.UUID `json:"asset_id,omitempty"`
	AssignedToID *uuid.UUID `json:"assigned_to_id,omitempty"`
	AssignedDate *string    `json:"assigned_date,omitempty"`
	Note         *string    `json:"note,omitempty"`
	State        *string    `json:"state,omitempty"`
}

type respondAssignmentRequest struct {
	Accepted string `json:"accepted" validate:"required"`
}

func CreateAssignment(svc assignmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assignerID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createAssignmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignedDate, err := parseBodyDate(body.AssignedDate, "assigned_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignment, err := svc.Create(r.Context(), assignmentsvc.CreateInput{
			AssetID:      body.AssetID,
			AssignedToID: body.AssignedToID,
			AssignedByID: assignerID,
			AssignedDate: assignedDate,
			Note:         body.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, assignment)
	}
}

func UpdateAssignment(svc assignmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "assignmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateAssignmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignedDate, err := parseOptionalBodyDate(body.AssignedDate, "assigned_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignment, err := svc.Update(r.Context(), id, assignmentsvc.UpdateInput{
			AssetID:      body.AssetID,
			AssignedToID: body.AssignedToID,
			AssignedDate: assignedDate,
			Note:         body.Note,
			State:        body.State,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, assignment)
	}
}

// RespondAssignment records the assignee's accept/decline decision.
func RespondAssignment(svc assignmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "assignmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responderID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body respondAssignmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignment, err := svc.Respond(r.Context(), id, responderID, body.Accepted)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, assignment)
	}
}

func DeleteAssignment(svc assignmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "assignmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ok, err := svc.Delete(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found"))
			return
		}

		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func GetAssignment(svc assignmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "assignmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignment, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, assignment)
	}
}

func ListAssignments(svc assignmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParseQueryInt(r, "page", 1, 1, maxPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		assignedDate, err := validators.ParseQueryDate(r, "assigned_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		priorityID, err := validators.ParseQueryUUID(r, "priority_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), assignmentsvc.ListInput{
			Page:         page,
			Search:       validators.SanitizeString(r.URL.Query().Get("search"), maxSearchLen),
			SortKey:      r.URL.Query().Get("sort"),
			SortDir:      r.URL.Query().Get("order"),
			States:       validators.QueryStrings(r, "state"),
			AssignedDate: assignedDate,
			PriorityID:   priorityID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// MyAssignments lists the caller's own active assignments up to today.
func MyAssignments(svc assignmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, maxPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListMy(r.Context(), userID, assignmentsvc.MyListInput{
			Page:    page,
			SortKey: r.URL.Query().Get("sort"),
			SortDir: r.URL.Query().Get("order"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
