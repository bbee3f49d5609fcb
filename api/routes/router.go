package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/assetdesk/assetdesk-backend/api/controllers"
	"github.com/assetdesk/assetdesk-backend/api/middleware"
	assetsvc "github.com/assetdesk/assetdesk-backend/internal/assets"
	assignmentsvc "github.com/assetdesk/assetdesk-backend/internal/assignments"
	"github.com/assetdesk/assetdesk-backend/internal/auth"
	returnsvc "github.com/assetdesk/assetdesk-backend/internal/returnrequests"
	usersvc "github.com/assetdesk/assetdesk-backend/internal/users"
	"github.com/assetdesk/assetdesk-backend/pkg/auth/session"
	"github.com/assetdesk/assetdesk-backend/pkg/config"
	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	"github.com/assetdesk/assetdesk-backend/pkg/logger"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    controllers.Pinger
	Sessions session.AccessSessionChecker

	Auth           auth.Service
	Assets         assetsvc.Service
	Assignments    assignmentsvc.Service
	ReturnRequests returnsvc.Service
	Users          usersvc.Service
	RefData        controllers.ReferenceData
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
			r.Post("/logout", controllers.AuthLogout(d.Auth, logg))
			r.Post("/change-password", controllers.AuthChangePassword(d.Auth, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))

		adminOnly := middleware.RequireRole(models.RoleAdmin, logg)

		// Staff-facing routes.
		r.Get("/my-assignments", controllers.MyAssignments(d.Assignments, logg))
		r.Get("/categories", controllers.ListCategories(d.RefData, logg))
		r.Get("/locations", controllers.ListLocations(d.RefData, logg))

		r.Route("/assets", func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", controllers.ListAssets(d.Assets, logg))
			r.Post("/", controllers.CreateAsset(d.Assets, logg))
			r.Get("/{assetId}", controllers.GetAsset(d.Assets, logg))
			r.Patch("/{assetId}", controllers.UpdateAsset(d.Assets, logg))
			r.Delete("/{assetId}", controllers.DeleteAsset(d.Assets, logg))
		})

		r.Route("/assignments", func(r chi.Router) {
			// The assignee responds to their own assignment; everything
			// else is management.
			r.Post("/{assignmentId}/respond", controllers.RespondAssignment(d.Assignments, logg))

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/", controllers.ListAssignments(d.Assignments, logg))
				r.Post("/", controllers.CreateAssignment(d.Assignments, logg))
				r.Get("/{assignmentId}", controllers.GetAssignment(d.Assignments, logg))
				r.Patch("/{assignmentId}", controllers.UpdateAssignment(d.Assignments, logg))
				r.Delete("/{assignmentId}", controllers.DeleteAssignment(d.Assignments, logg))
			})
		})

		r.Route("/return-requests", func(r chi.Router) {
			// Any authenticated user may request a return for an accepted
			// assignment.
			r.Post("/", controllers.CreateReturnRequest(d.ReturnRequests, logg))

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/", controllers.ListReturnRequests(d.ReturnRequests, logg))
				r.Get("/{returnRequestId}", controllers.GetReturnRequest(d.ReturnRequests, logg))
				r.Post("/{returnRequestId}/complete", controllers.CompleteReturnRequest(d.ReturnRequests, logg))
				r.Delete("/{returnRequestId}", controllers.CancelReturnRequest(d.ReturnRequests, logg))
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", controllers.ListUsers(d.Users, logg))
			r.Post("/", controllers.CreateUser(d.Users, logg))
			r.Get("/{userId}", controllers.GetUser(d.Users, logg))
			r.Delete("/{userId}", controllers.DisableUser(d.Users, logg))
		})
	})

	return r
}
