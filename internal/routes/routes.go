package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/agenda-engine/internal/audit"
	"github.com/BruksfildServices01/agenda-engine/internal/config"
	"github.com/BruksfildServices01/agenda-engine/internal/credentials"
	domain "github.com/BruksfildServices01/agenda-engine/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-engine/internal/handlers"
	"github.com/BruksfildServices01/agenda-engine/internal/infra/kv"
	infraRepo "github.com/BruksfildServices01/agenda-engine/internal/infra/repository"
	"github.com/BruksfildServices01/agenda-engine/internal/middleware"
	"github.com/BruksfildServices01/agenda-engine/internal/store"
	"github.com/BruksfildServices01/agenda-engine/internal/timeutil"
	ucAppointment "github.com/BruksfildServices01/agenda-engine/internal/usecase/appointment"
)

// Deps are the process-wide singletons the routes are built from.
type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	KV     kv.Store
	// nil keeps status changes local
	Remote domain.RemoteAppointmentAPI
	Audit  *audit.Dispatcher
	Logger *zap.Logger
}

// Settings derives the business defaults from configuration.
func Settings(cfg *config.Config) ucAppointment.Settings {
	s := ucAppointment.DefaultSettings()
	s.Location = timeutil.Location(cfg.Timezone)
	s.Hours = domain.BusinessHours{StartHour: cfg.BusinessStartHour, EndHour: cfg.BusinessEndHour}
	s.StepMinutes = cfg.SlotStepMinutes
	s.ServiceMinutes = cfg.DefaultServiceMinutes
	s.RemoteTimeout = cfg.RemoteTimeout
	return s
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	cfg := deps.Config
	settings := Settings(cfg)

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	registry := store.NewRegistry(deps.KV, store.RegistryOptions{
		Location:          settings.Location,
		Clock:             settings.Clock,
		NotificationLimit: cfg.NotificationLimit,
		Logger:            deps.Logger.Named("store"),
	})

	catalog := infraRepo.NewCatalogGormRepository(deps.DB)
	auditLogger := audit.New(deps.DB)

	creds := credentials.Chain{
		credentials.Request{},
		credentials.Static(cfg.RemoteServiceToken),
	}

	// ======================================================
	// USE CASES
	// ======================================================
	availabilityUC := ucAppointment.NewGetAvailability(registry, catalog, catalog, settings)
	createUC := ucAppointment.NewCreateAppointment(registry, catalog, deps.Audit, settings)
	editUC := ucAppointment.NewEditAppointment(registry, catalog, deps.Audit, settings)
	removeUC := ucAppointment.NewRemoveAppointment(registry, deps.Audit)
	changeStatusUC := ucAppointment.NewChangeStatus(
		registry,
		creds,
		deps.Remote,
		deps.Audit,
		settings,
		deps.Logger.Named("status"),
	)
	listByDateUC := ucAppointment.NewListAppointmentsByDate(registry, settings)
	listUpcomingUC := ucAppointment.NewListUpcomingAppointments(registry, settings)
	listClientUC := ucAppointment.NewListClientAppointments(registry, settings)

	// ======================================================
	// HANDLERS
	// ======================================================
	appointmentHandler := handlers.NewAppointmentHandler(
		availabilityUC,
		createUC,
		editUC,
		removeUC,
		changeStatusUC,
		listByDateUC,
		listUpcomingUC,
	)
	clientHandler := handlers.NewClientHandler(listClientUC)
	notificationHandler := handlers.NewNotificationHandler(registry)
	serviceHandler := handlers.NewServiceHandler(catalog)
	businessHoursHandler := handlers.NewBusinessHoursHandler(catalog, settings.Hours, settings.StepMinutes)
	auditLogsHandler := handlers.NewAuditLogsHandler(auditLogger)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	secured := api.Group("/")
	secured.Use(middleware.AuthMiddleware(cfg))
	{
		secured.GET("/availability", appointmentHandler.Availability)

		// ------------------------------
		// APPOINTMENTS
		// ------------------------------
		secured.GET("/appointments", appointmentHandler.ListByDate)
		secured.GET("/appointments/upcoming", appointmentHandler.Upcoming)
		secured.POST("/appointments", appointmentHandler.Create)
		secured.PATCH("/appointments/:id", appointmentHandler.Update)
		secured.DELETE("/appointments/:id", appointmentHandler.Delete)
		secured.PATCH("/appointments/:id/status", appointmentHandler.ChangeStatus)

		secured.GET("/clients/:id/appointments", clientHandler.Appointments)

		// ------------------------------
		// NOTIFICATIONS
		// ------------------------------
		secured.GET("/notifications", notificationHandler.List)
		secured.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		secured.PATCH("/notifications/read-all", notificationHandler.MarkAllRead)
		secured.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
		secured.DELETE("/notifications", notificationHandler.Clear)

		// ------------------------------
		// CATALOG
		// ------------------------------
		secured.GET("/services", serviceHandler.List)
		secured.POST("/services", serviceHandler.Create)
		secured.GET("/business-hours", businessHoursHandler.Get)
		secured.PUT("/business-hours", businessHoursHandler.Update)

		secured.GET("/audit-logs", auditLogsHandler.List)
	}
}
