package router

import (
	"database/sql"
	"net/http"
	"os"

	_ "vet-clinic/docs"
	mem "vet-clinic/internal/adapters/storage/memory"
	pg "vet-clinic/internal/adapters/storage/postgres"
	"vet-clinic/internal/domain/accounts"
	"vet-clinic/internal/domain/appointments"
	"vet-clinic/internal/domain/billing"
	"vet-clinic/internal/domain/owners"
	"vet-clinic/internal/domain/pets"
	"vet-clinic/internal/domain/records"
	"vet-clinic/internal/domain/services"
	"vet-clinic/internal/middleware"
	"vet-clinic/internal/notifications"
	"vet-clinic/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// TokenIssuer emite tokens en /auth/login (nil en modo dev).
	TokenIssuer accounts.TokenIssuer

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// LoginLimiter protege /auth/login (nil lo deshabilita).
	LoginLimiter *middleware.LoginLimiter

	Logger *logrus.Entry
}

// Result expone, además del handler, las piezas que main necesita para
// arrancar workers (el outbox que drena el publicador de Kafka).
type Result struct {
	Handler http.Handler
	Outbox  notifications.OutboxRepository
}

func NewRouter(opts Options) Result {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		accountsRepo      accounts.Repository
		ownersRepo        owners.Repository
		petsRepo          pets.Repository
		servicesRepo      services.Repository
		apptsRepo         appointments.Repository
		waitlistRepo      appointments.WaitlistRepository
		recordsRepo       records.Repository
		billingRepo       billing.Repository
		notificationsRepo notifications.Repository
		outboxRepo        notifications.OutboxRepository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else if opts.Logger != nil {
				opts.Logger.WithError(err).Warn("no se pudo abrir Postgres, usando almacenamiento en memoria")
			}
		}
	}

	if db != nil {
		accountsRepo = pg.NewAccountsRepo(db)
		ownersRepo = pg.NewOwnersRepo(db)
		petsRepo = pg.NewPetsRepo(db)
		servicesRepo = pg.NewServicesRepo(db)
		apptsRepo = pg.NewAppointmentsRepo(db)
		waitlistRepo = pg.NewWaitlistRepo(db)
		recordsRepo = pg.NewRecordsRepo(db)
		billingRepo = pg.NewBillingRepo(db)
		notificationsRepo = pg.NewNotificationsRepo(db)
		outboxRepo = pg.NewOutboxRepo(db)
	} else {
		accountsRepo = mem.NewAccountsRepo()
		ownersRepo = mem.NewOwnersRepo()
		petsRepo = mem.NewPetsRepo()
		servicesRepo = mem.NewServicesRepo()
		apptsRepo = mem.NewAppointmentsRepo()
		waitlistRepo = mem.NewWaitlistRepo()
		recordsRepo = mem.NewRecordsRepo()
		billingRepo = mem.NewBillingRepo()
		notificationsRepo = mem.NewNotificationsRepo()
		outboxRepo = mem.NewOutboxRepo()
	}

	// Services por módulo
	accountsSvc := accounts.NewService(accountsRepo)
	ownersSvc := owners.NewService(ownersRepo)
	petsSvc := pets.NewService(petsRepo)
	catalog := services.NewCatalog(servicesRepo)
	apptsSvc := appointments.NewService(apptsRepo, waitlistRepo, petsSvc)
	recordsSvc := records.NewService(recordsRepo, apptsSvc)
	billingSvc := billing.NewService(billingRepo, apptsSvc)

	// Cruces entre módulos: el catálogo consulta citas futuras antes de
	// desactivar un servicio; las citas publican sus transiciones.
	catalog.BindAppointments(apptsSvc)

	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	apptsSvc.SetNotifier(notifications.NewDispatcher(notificationsRepo, outboxRepo, ownersSvc, logger))

	// Rutas por módulo
	var loginMW func(http.Handler) http.Handler
	if opts.LoginLimiter != nil {
		loginMW = opts.LoginLimiter.Middleware
	}
	accounts.RegisterRoutes(r, accountsSvc, opts.TokenIssuer, loginMW)
	owners.RegisterRoutes(r, ownersSvc)
	pets.RegisterRoutes(r, petsSvc, ownersSvc)
	services.RegisterRoutes(r, catalog)
	appointments.RegisterRoutes(r, apptsSvc, ownersSvc)
	records.RegisterRoutes(r, recordsSvc, petsSvc, ownersSvc)
	billing.RegisterRoutes(r, billingSvc, ownersSvc)
	notifications.RegisterRoutes(r, notificationsRepo)

	return Result{Handler: r, Outbox: outboxRepo}
}
