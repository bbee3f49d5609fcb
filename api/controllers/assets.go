package controllers

import (
	"net/http"

	"github.com/assetdesk/assetdesk-backend/api/responses"
	"github.com/assetdesk/assetdesk-backend/api/validators"
	assetsvc "github.com/assetdesk/assetdesk-backend/internal/assets"
	"github.com/assetdesk/assetdesk-backend/pkg/logger"
	"github.com/google/uuid"
)

type createAssetRequest struct {
	Name          string    `json:"name" validate:"required"`
	CategoryID    uuid.UUID `json:"category_id" validate:"required"`
	LocationID    uuid.UUID `json:"location_id" validate:"required"`
	Specification string    `json:"specification"`
	InstalledDate string    `json:"installed_date" validate:"required"`
	State         string    `json:"state" validate:"required"`
}

type updateAssetRequest struct {
	Name          *string `json:"name,omitempty"`
	Specification *string `json:"specification,omitempty"`
	InstalledDate *string `json:"installed_date,omitempty"`
	State         *string `json:"state,omitempty"`
}

func CreateAsset(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createAssetRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		installed, err := parseBodyDate(body.InstalledDate, "installed_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := svc.Create(r.Context(), assetsvc.CreateInput{
			Name:          body.Name,
			CategoryID:    body.CategoryID,
			LocationID:    body.LocationID,
			Specification: body.Specification,
			InstalledDate: installed,
			State:         body.State,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, asset)
	}
}

func UpdateAsset(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateAssetRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		installed, err := parseOptionalBodyDate(body.InstalledDate, "installed_date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := svc.Update(r.Context(), id, assetsvc.UpdateInput{
			Name:          body.Name,
			Specification: body.Specification,
			InstalledDate: installed,
			State:         body.State,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, asset)
	}
}

func DeleteAsset(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func GetAsset(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "assetId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		asset, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, asset)
	}
}

func ListAssets(svc assetsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		categoryID, err := validators.ParseQueryUUID(r, "category_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		priorityID, err := validators.ParseQueryUUID(r, "priority_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), assetsvc.ListInput{
			Page:       page,
			Search:     validators.SanitizeString(r.URL.Query().Get("search"), maxSearchLen),
			SortKey:    r.URL.Query().Get("sort"),
			SortDir:    r.URL.Query().Get("order"),
			LocationID: locationID,
			States:     validators.QueryStrings(r, "state"),
			CategoryID: categoryID,
			PriorityID: priorityID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
