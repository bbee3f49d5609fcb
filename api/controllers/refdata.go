package controllers

import (
	"context"
	"net/http"

	"github.com/assetdesk/assetdesk-backend/api/responses"
	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/assetdesk/assetdesk-backend/pkg/logger"
	"github.com/google/uuid"
)

// ReferenceData is the read-only lookup surface for form dropdowns.
type ReferenceData interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListLocations(ctx context.Context) ([]models.Location, error)
}

type categoryDTO struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Prefix string    `json:"prefix"`
}

type locationDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func ListCategories(repo ReferenceData, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := repo.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories"))
			return
		}

		out := make([]categoryDTO, 0, len(rows))
		for _, row := range rows {
			out = append(out, categoryDTO{ID: row.ID, Name: row.Name, Prefix: row.Prefix})
		}
		responses.WriteSuccess(w, out)
	}
}

func ListLocations(repo ReferenceData, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := repo.ListLocations(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list locations"))
			return
		}

		out := make([]locationDTO, 0, len(rows))
		for _, row := range rows {
			out = append(out, locationDTO{ID: row.ID, Name: row.Name})
		}
		responses.WriteSuccess(w, out)
	}
}
