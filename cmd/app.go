package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/meeting-manager/internal"
	"github.com/frahmantamala/meeting-manager/internal/core/events"
	"github.com/frahmantamala/meeting-manager/internal/database"
	"github.com/frahmantamala/meeting-manager/internal/department"
	departmentPostgres "github.com/frahmantamala/meeting-manager/internal/department/postgres"
	"github.com/frahmantamala/meeting-manager/internal/meeting"
	meetingPostgres "github.com/frahmantamala/meeting-manager/internal/meeting/postgres"
	"github.com/frahmantamala/meeting-manager/internal/notification"
	notificationPostgres "github.com/frahmantamala/meeting-manager/internal/notification/postgres"
	numberingPostgres "github.com/frahmantamala/meeting-manager/internal/numbering/postgres"
	"github.com/frahmantamala/meeting-manager/internal/organization"
	organizationPostgres "github.com/frahmantamala/meeting-manager/internal/organization/postgres"
	"github.com/frahmantamala/meeting-manager/internal/report"
	"github.com/frahmantamala/meeting-manager/internal/storage"
	"github.com/frahmantamala/meeting-manager/internal/user"
	userPostgres "github.com/frahmantamala/meeting-manager/internal/user/postgres"
)

// memoryStorageEndpoint keeps uploaded files in process memory. Development only.
const memoryStorageEndpoint = "memory"

// fileStore is what the meeting service and the health check need from a blob store.
type fileStore interface {
	meeting.FileStore
	Ping(ctx context.Context) error
}

// application holds the wired services shared by the server and the workers.
type application struct {
	Config *internal.Config
	DB     *database.Handles
	Store  fileStore
	Logger *slog.Logger

	Departments   *department.Service
	Organizations *organization.Service
	Users         *user.Service
	Meetings      *meeting.Service
	Notifications *notification.Service
	Reports       *report.Service
	Dispatcher    *notification.Dispatcher
	Planner       *notification.Planner
	Reminders     *notification.ReminderJob
}

func newApplication(ctx context.Context, cfg *internal.Config, logger *slog.Logger) (*application, error) {
	db, err := database.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	store, err := newFileStore(ctx, cfg.Storage, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	bus := events.NewEventBus(logger)
	zalo := notification.NewZaloDeliverer(cfg.Notification.ZaloEnabled, logger)
	notification.NewEventHandler(zalo, logger).RegisterEventHandlers(bus)

	notificationRepo := notificationPostgres.NewNotificationRepository(db.Gorm)
	planner := notification.NewPlanner(notificationPostgres.NewDirectory(db.Gorm))
	dispatcher := notification.NewDispatcher(notificationRepo, bus, logger)

	meetingRepo := meetingPostgres.NewMeetingRepository(db.Gorm, numberingPostgres.NewSequenceAllocator)
	meetings := meeting.NewService(meetingRepo, planner, logger).
		WithNumbering(cfg.Numbering.Prefix, cfg.Numbering.MaxRetries)
	if store != nil {
		meetings.WithFiles(meetingRepo, store, cfg.Storage.MaxUploadBytes)
	}

	app := &application{
		Config:        cfg,
		DB:            db,
		Store:         store,
		Logger:        logger,
		Departments:   department.NewService(departmentPostgres.NewDepartmentRepository(db.Gorm), logger),
		Organizations: organization.NewService(organizationPostgres.NewOrganizationRepository(db.Gorm), logger),
		Users:         user.NewService(userPostgres.NewUserRepository(db.Gorm), 0, logger),
		Meetings:      meetings,
		Notifications: notification.NewService(notificationRepo, logger),
		Reports:       report.NewService(db.SQL, meetings, logger),
		Dispatcher:    dispatcher,
		Planner:       planner,
	}
	app.Reminders = notification.NewReminderJob(meetings, planner, dispatcher, notificationRepo, cfg.Notification.ReminderLead, logger)
	return app, nil
}

func newFileStore(ctx context.Context, cfg internal.StorageConfig, logger *slog.Logger) (fileStore, error) {
	switch {
	case cfg.Endpoint == memoryStorageEndpoint:
		logger.Warn("meeting files are kept in memory and lost on restart")
		return storage.NewMemoryStore(), nil
	case cfg.Enabled():
		store, err := storage.NewMinioStore(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
		return store, nil
	default:
		logger.Info("object storage not configured, file uploads disabled")
		return nil, nil
	}
}

func (a *application) Close() error {
	return a.DB.Close()
}
