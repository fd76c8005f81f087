// @title API Clínica Veterinaria
// @version 1.0
// @description Gestión de la clínica: usuarios, propietarios, mascotas, catálogo de servicios, citas, historial clínico y caja.
// @BasePath /
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vet-clinic/internal/adapters/auth/token"
	"vet-clinic/internal/middleware"
	"vet-clinic/internal/notifications"
	"vet-clinic/internal/platform/config"
	"vet-clinic/internal/platform/logger"
	"vet-clinic/internal/router"

	"github.com/redis/go-redis/v9"
)

func main() {
	log := logger.NewFromEnv()

	port, err := config.Port("PORT", "8080")
	if err != nil {
		log.WithError(err).Fatal("configuración inválida")
	}
	addr := ":" + port

	opts := router.Options{Logger: log}

	// Sin secret corre en modo dev: sin tokens, auth por headers de debug.
	if secret := config.String("AUTH_TOKEN_SECRET", ""); secret != "" {
		mgr := token.NewManager(secret, config.Duration("AUTH_TOKEN_TTL", 8*time.Hour))
		opts.AuthVerifier = mgr
		opts.TokenIssuer = mgr
	} else {
		log.Warn("AUTH_TOKEN_SECRET no configurado: modo dev sin verificación de tokens")
	}

	var rdb *redis.Client
	if raddr := config.String("REDIS_ADDR", ""); raddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: raddr})
	}
	opts.LoginLimiter = middleware.NewLoginLimiter(
		rdb,
		config.Int("LOGIN_RATE_LIMIT", 10),
		config.Duration("LOGIN_RATE_WINDOW", time.Minute),
		logger.WithComponent(log, "ratelimit"),
	)

	res := router.NewRouter(opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher := notifications.NewPublisher(res.Outbox, logger.WithComponent(log, "outbox"), notifications.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		Topic:     config.String("KAFKA_TOPIC", "clinic.appointments"),
		PollEvery: config.Duration("OUTBOX_POLL_EVERY", 2*time.Second),
		BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
	})
	go publisher.Run(ctx)

	srv := &http.Server{
		Addr:         addr,
		Handler:      res.Handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", addr).Info("starting server")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server error")
	}
}
