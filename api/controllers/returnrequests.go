package controllers

import (
	"net/http"

	"github.com/assetdesk/assetdesk-backend/api/responses"
	"github.com/assetdesk/assetdesk-backend/api/validators"
	returnsvc "github.com/assetdesk/assetdesk-backend/internal/returnrequests"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/assetdesk/assetdesk-backend/pkg/logger"
	"github.com/google/uuid"
)

type createReturnRequestBody struct {
	AssignmentID uuid.UUID `json:"assignment_id" validate:"required"`
}

func CreateReturnRequest(svc returnsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createReturnRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Create(r.Context(), body.AssignmentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

// CompleteReturnRequest closes the loop: the admin confirms the physical
// return, freeing the asset.
func CompleteReturnRequest(svc returnsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "returnRequestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		acceptedByID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Complete(r.Context(), id, acceptedByID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, request)
	}
}

func CancelReturnRequest(svc returnsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "returnRequestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ok, err := svc.Cancel(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "return request not found"))
			return
		}

		responses.WriteSuccess(w, map[string]bool{"cancelled": true})
	}
}

func GetReturnRequest(svc returnsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "returnRequestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, request)
	}
}

func ListReturnRequests(svc returnsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParseQueryInt(r, "page", 1, 1, maxPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		returnedDate, err := validators.ParseQueryDate(r, "returned_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		priorityID, err := validators.ParseQueryUUID(r, "priority_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), returnsvc.ListInput{
			Page:         page,
			Search:       validators.SanitizeString(r.URL.Query().Get("search"), maxSearchLen),
			SortKey:      r.URL.Query().Get("sort"),
			SortDir:      r.URL.Query().Get("order"),
			States:       validators.QueryStrings(r, "state"),
			ReturnedDate: returnedDate,
			PriorityID:   priorityID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
