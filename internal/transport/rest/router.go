package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/meeting-manager/api"
	"github.com/frahmantamala/meeting-manager/internal/department"
	"github.com/frahmantamala/meeting-manager/internal/meeting"
	"github.com/frahmantamala/meeting-manager/internal/notification"
	"github.com/frahmantamala/meeting-manager/internal/organization"
	"github.com/frahmantamala/meeting-manager/internal/report"
	"github.com/frahmantamala/meeting-manager/internal/transport/middleware"
	"github.com/frahmantamala/meeting-manager/internal/transport/swagger"
	"github.com/frahmantamala/meeting-manager/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups the HTTP handlers mounted under /api/v1. Nil handlers
// leave their routes unregistered.
type Handlers struct {
	Department   *department.Handler
	Organization *organization.Handler
	User         *user.Handler
	Meeting      *meeting.Handler
	Notification *notification.Handler
	Report       *report.Handler
}

type Options struct {
	AllowedOrigins string
	// Validator, when set, checks requests against the OpenAPI document.
	Validator *middleware.RequestValidator
	// Storage is included in the health check when set.
	Storage Pinger
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, opts Options, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, opts.Storage)

	// Apply global middleware
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.UserContext)
	router.Use(middleware.LoggingMiddleware(logger))
	if opts.Validator != nil {
		router.Use(opts.Validator.Middleware)
	}

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get(swagger.DocumentURL, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(api.OpenAPI)
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireActor)

		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Department != nil {
			r.Route("/departments", func(dr chi.Router) {
				dr.Get("/", h.Department.ListDepartments)
				dr.Post("/", h.Department.CreateDepartment)
				dr.Get("/{id}", h.Department.GetDepartment)
				dr.Put("/{id}", h.Department.UpdateDepartment)
				dr.Delete("/{id}", h.Department.DeleteDepartment)
			})
		}

		if h.Organization != nil {
			r.Route("/organizations", func(or chi.Router) {
				or.Get("/", h.Organization.ListOrganizations)
				or.Post("/", h.Organization.CreateOrganization)
				or.Get("/{id}", h.Organization.GetOrganization)
				or.Put("/{id}", h.Organization.UpdateOrganization)
				or.Delete("/{id}", h.Organization.DeleteOrganization)
			})
		}

		if h.User != nil {
			r.Route("/users", func(ur chi.Router) {
				ur.Get("/", h.User.ListUsers)
				ur.Post("/", h.User.CreateUser)
				ur.Get("/me", h.User.GetCurrentUser)
				ur.Get("/{id}", h.User.GetUser)
				ur.Put("/{id}/profile", h.User.UpdateProfile)
				ur.Get("/{id}/affiliations", h.User.ListAffiliations)
				ur.Post("/{id}/affiliations", h.User.AddAffiliation)
				ur.Patch("/{id}/affiliations/{affiliationID}", h.User.SetAffiliationActive)
				ur.Delete("/{id}/affiliations/{affiliationID}", h.User.RemoveAffiliation)
			})
		}

		r.Route("/meetings", func(mr chi.Router) {
			if h.Report != nil {
				mr.Get("/export", h.Report.ExportMeetings)
				mr.Get("/{id}/attendance", h.Report.GetAttendance)
			}
			if h.Meeting == nil {
				return
			}
			mr.Get("/", h.Meeting.ListMeetings)
			mr.Post("/", h.Meeting.CreateMeeting)
			mr.Get("/statuses", h.Meeting.StatusOptions)
			mr.Get("/{id}", h.Meeting.GetMeeting)
			mr.Put("/{id}", h.Meeting.UpdateMeeting)
			mr.Delete("/{id}", h.Meeting.DeleteMeeting)

			mr.Post("/{id}/participants", h.Meeting.AddParticipant)
			mr.Delete("/{id}/participants/{participantID}", h.Meeting.RemoveParticipant)
			mr.Patch("/{id}/participants/{participantID}/attendance", h.Meeting.SetAttendance)

			mr.Get("/{id}/minutes", h.Meeting.GetMinutes)
			mr.Post("/{id}/minutes", h.Meeting.CreateMinutes)
			mr.Put("/{id}/minutes", h.Meeting.UpdateMinutes)

			mr.Get("/{id}/files", h.Meeting.ListFiles)
			mr.Post("/{id}/files", h.Meeting.UploadFile)
			mr.Get("/{id}/files/{fileID}", h.Meeting.DownloadFile)
			mr.Delete("/{id}/files/{fileID}", h.Meeting.DeleteFile)
		})

		if h.Notification != nil {
			r.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", h.Notification.ListNotifications)
				nr.Patch("/read-all", h.Notification.MarkAllRead)
				nr.Patch("/{id}/read", h.Notification.MarkRead)
			})
		}
	})
}
