package controllers

import (
	"net/http"

	"github.com/assetdesk/assetdesk-backend/api/responses"
	"github.com/assetdesk/assetdesk-backend/api/validators"
	usersvc "github.com/assetdesk/assetdesk-backend/internal/users"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/assetdesk/assetdesk-backend/pkg/logger"
	"github.com/google/uuid"
)

type createUserRequest struct {
	FirstName   string    `json:"first_name" validate:"required"`
	LastName    string    `json:"last_name" validate:"required"`
	DateOfBirth string    `json:"date_of_birth" validate:"required"`
	JoinedDate  string    `json:"joined_date" validate:"required"`
	Gender      string    `json:"gender" validate:"required"`
	RoleID      uuid.UUID `json:"role_id" validate:"required"`
	LocationID  uuid.UUID `json:"location_id" validate:"required"`
}

// CreateUser provisions a staff member and returns the generated one-time
// credentials. This is the only place the temporary password ever leaves the
// server.
func CreateUser(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dob, err := parseBodyDate(body.DateOfBirth, "date_of_birth")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		joined, err := parseBodyDate(body.JoinedDate, "joined_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), usersvc.CreateInput{
			FirstName:   body.FirstName,
			LastName:    body.LastName,
			DateOfBirth: dob,
			JoinedDate:  joined,
			Gender:      body.Gender,
			RoleID:      body.RoleID,
			LocationID:  body.LocationID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// DisableUser soft-deletes a user. A user still holding an active
// assignment cannot be disabled.
func DisableUser(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ok, err := svc.Disable(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, "user has a pending or accepted assignment"))
			return
		}

		responses.WriteSuccess(w, map[string]bool{"disabled": true})
	}
}

func GetUser(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}

func ListUsers(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParseQueryInt(r, "page", 1, 1, maxPage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		locationID, err := validators.ParseQueryUUID(r, "location_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		priorityID, err := validators.ParseQueryUUID(r, "priority_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), usersvc.ListInput{
			Page:       page,
			Search:     validators.SanitizeString(r.URL.Query().Get("search"), maxSearchLen),
			SortKey:    r.URL.Query().Get("sort"),
			SortDir:    r.URL.Query().Get("order"),
			LocationID: locationID,
			Roles:      validators.QueryStrings(r, "role"),
			PriorityID: priorityID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
