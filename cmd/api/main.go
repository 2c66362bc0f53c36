package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dhairyajangir/CuraLink/internal/appointments"
	"github.com/dhairyajangir/CuraLink/internal/auth"
	"github.com/dhairyajangir/CuraLink/internal/cache"
	"github.com/dhairyajangir/CuraLink/internal/config"
	"github.com/dhairyajangir/CuraLink/internal/db"
	"github.com/dhairyajangir/CuraLink/internal/doctors"
	"github.com/dhairyajangir/CuraLink/internal/jobs"
	"github.com/dhairyajangir/CuraLink/internal/middleware"
	"github.com/dhairyajangir/CuraLink/internal/models"
	"github.com/dhairyajangir/CuraLink/internal/notifications"
	"github.com/dhairyajangir/CuraLink/internal/payments"
	"github.com/dhairyajangir/CuraLink/internal/reviews"
	"github.com/dhairyajangir/CuraLink/internal/users"
	"github.com/dhairyajangir/CuraLink/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("mongo connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("mongo connected")
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		logger.Error("index creation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var cacheStore cache.Cache = cache.NewNoop()
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("redis connected", slog.String("addr", cfg.RedisAddr))
		cacheStore = redisCache
	}

	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	jwtManager := &auth.Manager{
		Secret:     []byte(cfg.JWTSecret),
		AccessTTL:  time.Duration(cfg.AccessTTLMinutes) * time.Minute,
		RefreshTTL: time.Duration(cfg.RefreshTTLMinutes) * time.Minute,
		Issuer:     "curalink",
	}

	mailer := notifications.NewBrevoClient(cfg.BrevoAPIKey, cfg.BrevoSenderEmail, cfg.BrevoSenderName, cfg.BrevoSandbox)
	if mailer == nil {
		logger.Info("brevo mailer disabled")
	} else {
		logger.Info("brevo mailer enabled", slog.String("sender", cfg.BrevoSenderEmail), slog.Bool("sandbox", cfg.BrevoSandbox))
	}

	val := validation.New()

	usersRepo := users.NewMongoRepository(cols.Users)
	usersService := users.NewService(usersRepo, jwtManager, logger)
	usersHandler := users.NewHandler(usersService, val, logger)

	hub := notifications.NewHub(logger)
	notificationsRepo := notifications.NewMongoRepository(cols.Notifications)
	dispatcher := notifications.NewDispatcher(notificationsRepo, usersRepo, hub, mailer, logger)
	notificationsHandler := notifications.NewHandler(notificationsRepo, hub, logger)

	doctorsRepo := doctors.NewRepository(cols.Users)
	doctorsService := doctors.NewService(doctorsRepo, cacheStore, cfg.Timezone)
	doctorsHandler := doctors.NewHandler(doctorsService, val, logger, cacheStore, time.Duration(cfg.SlotCacheTTLSec)*time.Second)

	appointmentsRepo := appointments.NewRepository(cols.Appointments)
	appointmentsService := appointments.NewService(appointmentsRepo, doctorsService, dispatcher, cfg.Timezone, logger)
	appointmentsHandler := appointments.NewHandler(appointmentsService, val, logger)

	reviewsRepo := reviews.NewMongoRepository(cols.Reviews)
	reviewsService := reviews.NewService(reviewsRepo, appointmentsRepo, doctorsService, usersRepo, logger)
	reviewsHandler := reviews.NewHandler(reviewsService, val, logger)

	paymentsRepo := payments.NewMongoRepository(cols.Payments)
	paymentsService := payments.NewService(paymentsRepo, appointmentsRepo, appointmentsService, logger)
	paymentsHandler := payments.NewHandler(paymentsService, val, logger)

	reminders := jobs.NewReminders(appointmentsRepo, dispatcher, cfg.ReminderCronSpec, cfg.Timezone, logger)
	if err := reminders.Start(); err != nil {
		logger.Error("reminder job failed to start", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer reminders.Stop()

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.FrontendOrigin))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	bookingLimiter := middleware.NewRateLimiter(cfg.RateLimitBookings, time.Duration(cfg.RateLimitWindowSec)*time.Second)
	reviewLimiter := middleware.NewRateLimiter(cfg.RateLimitReviews, time.Duration(cfg.RateLimitWindowSec)*time.Second)

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", usersHandler.Register)
		api.Post("/auth/login", usersHandler.Login)
		api.Post("/auth/refresh", usersHandler.Refresh)

		api.Get("/doctors", doctorsHandler.List)
		api.Get("/doctors/{id}", doctorsHandler.Get)
		api.Get("/doctors/{id}/slots", doctorsHandler.GetSlots)
		api.Get("/doctors/{id}/reviews", reviewsHandler.ListByDoctor)

		api.Group(func(authed chi.Router) {
			authed.Use(middleware.RequireAuth(jwtManager))

			authed.Get("/auth/me", usersHandler.Me)

			authed.With(middleware.RequireRole(models.RolePatient), bookingLimiter.Middleware).
				Post("/appointments", appointmentsHandler.Create)
			authed.Get("/appointments", appointmentsHandler.List)
			authed.Get("/appointments/{id}", appointmentsHandler.Get)
			authed.Delete("/appointments/{id}", appointmentsHandler.Cancel)
			authed.Patch("/appointments/{id}/status", appointmentsHandler.SetStatus)

			authed.With(middleware.RequireRole(models.RoleDoctor)).
				Put("/doctors/{id}/availability", doctorsHandler.UpdateAvailability)

			authed.With(middleware.RequireRole(models.RolePatient), reviewLimiter.Middleware).
				Post("/doctors/{id}/reviews", reviewsHandler.Create)

			authed.With(middleware.RequireRole(models.RolePatient)).
				Post("/payments/intent", paymentsHandler.CreateIntent)
			authed.Get("/payments", paymentsHandler.History)

			authed.Get("/notifications", notificationsHandler.List)
			authed.Patch("/notifications/{id}/read", notificationsHandler.MarkRead)
			authed.Get("/ws", notificationsHandler.ServeWS)

			authed.Group(func(admin chi.Router) {
				admin.Use(middleware.RequireRole(models.RoleAdmin))
				admin.Get("/admin/doctors", doctorsHandler.AdminList)
				admin.Patch("/admin/doctors/{id}/approval", doctorsHandler.AdminSetApproval)
			})
		})
	})

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: r,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
}
