package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/agendou/backend/internal/booking"
	"github.com/agendou/backend/internal/handlers"
	"github.com/agendou/backend/internal/mail"
	"github.com/agendou/backend/internal/outbox"
	"github.com/agendou/backend/internal/reminder"
	"github.com/agendou/backend/internal/storage"
	"github.com/agendou/backend/libs/config"
	"github.com/agendou/backend/libs/db"
	"github.com/agendou/backend/libs/httpx"
	"github.com/agendou/backend/libs/kafkax"
	otelx "github.com/agendou/backend/libs/otel"
	"github.com/agendou/backend/libs/runtime"
)

func main() {
	service := config.String("SERVICE_NAME", "agendou-api")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	apptRepo := storage.NewAppointmentRepository(pool)
	ratingRepo := storage.NewRatingRepository(pool)
	proRepo := storage.NewProfessionalRepository(pool)
	userRepo := storage.NewUserRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	mailer := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     config.String("SMTP_HOST", ""),
		Port:     config.String("SMTP_PORT", "587"),
		From:     config.String("SMTP_FROM", ""),
		Inbox:    config.String("CONTACT_INBOX", ""),
		Username: config.String("SMTP_USER", ""),
		Password: config.String("SMTP_PASSWORD", ""),
	})
	if !mailer.Configured() {
		logger.Warn("smtp not configured; email notifications disabled")
	}

	sweeper := reminder.NewSweeper(apptRepo, mailer, outbox.NewReminderEvents(outboxRepo), logger, reminder.Config{
		Interval: durationFromEnv("REMINDER_SWEEP_MINUTES", 60),
	})
	go sweeper.Run(ctx)

	kafkaBrokers := strings.TrimSpace(config.String("KAFKA_BROKERS", ""))
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   kafkaBrokers,
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	bookingSvc := booking.NewService(apptRepo, ratingRepo, outboxRepo, mailer, sweeper, logger)

	jwtSecret := config.String("JWT_SECRET", "dev-secret")
	authMW := &handlers.Auth{Secret: jwtSecret}

	apptH := handlers.NewAppointmentHandler(bookingSvc, apptRepo, sweeper, logger)
	ratingH := handlers.NewRatingHandler(ratingRepo, apptRepo, logger)
	proH := handlers.NewProfessionalHandler(proRepo, apptRepo, logger)
	userH := handlers.NewUserHandler(userRepo, outboxRepo, logger)
	authH := handlers.NewAuthHandler(userRepo, jwtSecret, logger)
	contactH := handlers.NewContactHandler(mailer, logger)

	rateLimit := publicRateLimiter(logger)

	readyChecks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
	}
	// With no brokers configured the publisher disables itself, so readiness
	// must not gate on Kafka.
	if kafkaBrokers != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers)})
	}
	mux := runtime.NewBaseMuxWithReady(readyChecks...)

	mux.Handle("POST /appointments", rateLimit(http.HandlerFunc(apptH.Create)))
	mux.Handle("GET /appointments", authMW.RequireAdmin(http.HandlerFunc(apptH.List)))
	mux.Handle("GET /appointments/{id}", authMW.RequireUser(http.HandlerFunc(apptH.Get)))
	mux.Handle("PATCH /appointments/{id}", authMW.RequireAdmin(http.HandlerFunc(apptH.SetStatus)))
	mux.Handle("PATCH /appointments/{id}/cancel", authMW.RequireUser(http.HandlerFunc(apptH.Cancel)))
	mux.Handle("DELETE /appointments/{id}", authMW.RequireAdmin(http.HandlerFunc(apptH.Delete)))
	mux.Handle("POST /appointments/enviar-lembretes", authMW.RequireAdmin(http.HandlerFunc(apptH.SendReminders)))

	mux.Handle("POST /ratings", authMW.RequireUser(http.HandlerFunc(ratingH.Create)))
	mux.Handle("GET /ratings/mine", authMW.RequireUser(http.HandlerFunc(ratingH.ListMine)))
	mux.Handle("GET /ratings/appointment/{id}", authMW.RequireUser(http.HandlerFunc(ratingH.GetByAppointment)))
	mux.Handle("PUT /ratings/{id}", authMW.RequireUser(http.HandlerFunc(ratingH.Update)))
	mux.Handle("DELETE /ratings/{id}", authMW.RequireUser(http.HandlerFunc(ratingH.Delete)))
	mux.Handle("GET /ratings", authMW.RequireAdmin(http.HandlerFunc(ratingH.ListAll)))
	mux.Handle("GET /ratings/stats", authMW.RequireAdmin(http.HandlerFunc(ratingH.Stats)))

	mux.HandleFunc("GET /professionals/public", proH.ListPublic)
	mux.Handle("GET /professionals", authMW.RequireAdmin(http.HandlerFunc(proH.List)))
	mux.Handle("POST /professionals", authMW.RequireAdmin(http.HandlerFunc(proH.Create)))
	mux.Handle("GET /professionals/stats", authMW.RequireAdmin(http.HandlerFunc(proH.Stats)))
	mux.Handle("GET /professionals/{id}", authMW.RequireAdmin(http.HandlerFunc(proH.Get)))
	mux.Handle("PUT /professionals/{id}", authMW.RequireAdmin(http.HandlerFunc(proH.Update)))
	mux.Handle("DELETE /professionals/{id}", authMW.RequireAdmin(http.HandlerFunc(proH.Delete)))
	mux.Handle("PATCH /professionals/{id}/toggle-status", authMW.RequireAdmin(http.HandlerFunc(proH.ToggleStatus)))
	mux.Handle("GET /professionals/{id}/appointments", authMW.RequireAdmin(http.HandlerFunc(proH.Appointments)))

	mux.HandleFunc("POST /users", userH.Register)
	mux.Handle("GET /users", authMW.RequireAdmin(http.HandlerFunc(userH.List)))
	mux.Handle("DELETE /users/{id}", authMW.RequireAdmin(http.HandlerFunc(userH.Delete)))

	mux.HandleFunc("POST /auth/login", authH.Login)
	mux.HandleFunc("POST /auth/login-admin", authH.LoginAdmin)
	mux.Handle("GET /auth/verify", authMW.RequireUser(http.HandlerFunc(authH.Verify)))
	mux.Handle("GET /auth/verify-admin", authMW.RequireAdmin(http.HandlerFunc(authH.Verify)))
	mux.HandleFunc("GET /auth/check-token", authH.CheckToken)

	mux.HandleFunc("POST /admin/register-admin", userH.RegisterFirstAdmin)
	mux.Handle("POST /admin/create-admin", authMW.RequireAdmin(http.HandlerFunc(userH.CreateAdmin)))

	mux.Handle("POST /contact", rateLimit(http.HandlerFunc(contactH.Send)))

	httpHandler := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   parseList(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods:   parseList(config.String("CORS_ALLOWED_METHODS", "GET,POST,PUT,PATCH,DELETE,OPTIONS")),
			AllowedHeaders:   parseList(config.String("CORS_ALLOWED_HEADERS", "Authorization,Content-Type,X-Request-Id")),
			AllowCredentials: false,
			MaxAge:           10 * time.Minute,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(1<<20),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, service)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

// publicRateLimiter guards the unauthenticated write endpoints. Redis-backed
// when REDIS_ADDR is set so multiple instances share the window; in-memory
// otherwise.
func publicRateLimiter(logger *slog.Logger) httpx.Middleware {
	limitPerMinute := config.Int("RATE_LIMIT_PER_MINUTE", 60)
	if limitPerMinute <= 0 {
		limitPerMinute = 60
	}

	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "rl"))
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
		return rl.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
	}

	rl := httpx.NewRateLimiter(limitPerMinute, time.Minute)
	logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	return rl.Middleware()
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func durationFromEnv(key string, fallbackMinutes int) time.Duration {
	v := config.Int(key, fallbackMinutes)
	if v <= 0 {
		v = fallbackMinutes
	}
	return time.Duration(v) * time.Minute
}
