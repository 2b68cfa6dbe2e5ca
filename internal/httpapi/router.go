package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"outingpass/internal/admin"
	"outingpass/internal/api"
	"outingpass/internal/auth"
	"outingpass/internal/ban"
	"outingpass/internal/booking"
	"outingpass/internal/directory"
	"outingpass/internal/events"
	"outingpass/internal/gate"
	"outingpass/internal/guard"
	"outingpass/internal/listing"
	"outingpass/internal/metrics"
	"outingpass/internal/notify"
	"outingpass/internal/slot"
	"outingpass/pkg/config"
	"outingpass/pkg/mailer"
)

type Dependencies struct {
	Cfg config.Config
	DB  *pgxpool.Pool
	// Redis is optional; without it the action guard is per-process.
	Redis *redis.Client
}

func newGuard(deps Dependencies) *guard.Guard {
	gc := deps.Cfg.Guard
	g := &guard.Guard{ReleaseDelay: gc.ReleaseDelay}
	if deps.Redis != nil {
		g.Confirm = guard.RedisConfirmer{Client: deps.Redis, Window: gc.ConfirmWindow, Prefix: "outingpass:"}
		g.Lock = guard.RedisLock{Client: deps.Redis, TTL: gc.LockTTL, Prefix: "outingpass:"}
		return g
	}
	g.Confirm = guard.NewMemoryConfirmer(gc.ConfirmWindow)
	g.Lock = guard.NewMemoryLock(gc.LockTTL)
	return g
}

func newNotifier(cfg config.MailerConfig) booking.Notifier {
	if cfg.FunctionURL == "" {
		return nil
	}
	return notify.Dispatcher{Mailer: mailer.Client{
		HTTPClient:    &http.Client{Timeout: cfg.Timeout},
		FunctionURL:   cfg.FunctionURL,
		APIKey:        cfg.APIKey,
		SigningSecret: cfg.SigningSecret,
	}}
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(api.Instrument)
	r.Use(api.CORSMiddleware(api.CORSOptions{
		AllowedOrigins: deps.Cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAgeSeconds:  600,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if deps.Cfg.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler())
	}

	loc := deps.Cfg.Location()
	dirRepo := directory.NewRepository(deps.DB)
	bookingRepo := booking.NewRepository(deps.DB)
	banRepo := ban.NewRepository(deps.DB)

	bookingService := &booking.Service{
		Store:    bookingRepo,
		Notifier: newNotifier(deps.Cfg.Mailer),
		Students: dirRepo,
		Bans:     ban.Service{Store: banRepo},
		Now:      time.Now,
		Location: loc,
	}

	authHandlers := auth.Handlers{
		Cfg:      deps.Cfg.Auth,
		Verifier: auth.GoogleVerifier{ClientID: deps.Cfg.Auth.GoogleClientID},
		Staff:    dirRepo,
	}
	bookingHandlers := booking.Handlers{
		Service:  bookingService,
		Guard:    newGuard(deps),
		Timeline: events.Reader{DB: deps.DB},
	}
	listingHandlers := listing.Handlers{Bookings: bookingRepo, Location: loc}
	gateHandlers := gate.Handlers{Service: gate.Service{Codes: bookingRepo}}
	banHandlers := ban.Handlers{DB: deps.DB, Bans: banRepo, Location: loc}
	slotHandlers := slot.Handlers{Actions: deps.DB, Slots: slot.NewRepository(deps.DB)}
	adminHandlers := admin.Handlers{Directory: dirRepo, Actions: deps.DB, EmailDomain: deps.Cfg.Auth.AllowedEmailDomain}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/google", authHandlers.GoogleLogin)
		r.Post("/auth/staff", authHandlers.StaffLogin)

		// Student self-service
		r.Group(func(r chi.Router) {
			r.Use(api.StudentAuth(deps.Cfg.Auth))

			r.Get("/me/bookings", bookingHandlers.ListMine)
			r.Post("/me/bookings", bookingHandlers.Create)
			r.Delete("/me/bookings/{id}", bookingHandlers.DeleteMine)
			r.Get("/me/ban", banHandlers.Mine)
		})

		// Staff
		r.Group(func(r chi.Router) {
			r.Use(api.StaffAuth(deps.Cfg.Auth, dirRepo))

			r.Group(func(r chi.Router) {
				r.Use(api.RequireRole(directory.RoleStaff, directory.RoleWarden, directory.RoleSuperadmin))

				r.Get("/bookings", listingHandlers.List)
				r.Get("/bookings/export.xlsx", listingHandlers.Export)
				r.Get("/bookings/{id}", bookingHandlers.Get)
				r.Get("/bookings/{id}/events", bookingHandlers.Events)
				r.Post("/bookings/{id}/transitions", bookingHandlers.Transition)

				r.Get("/slots", slotHandlers.List)
				r.Post("/slots", slotHandlers.Create)
				r.Delete("/slots/{id}", slotHandlers.Delete)
			})

			r.Group(func(r chi.Router) {
				r.Use(api.RequireRole(directory.RoleWarden, directory.RoleSuperadmin))

				r.Get("/bans", banHandlers.List)
				r.Post("/bans", banHandlers.Create)
				r.Delete("/bans/{id}", banHandlers.Delete)
			})

			r.With(api.RequireRole(directory.RoleGate, directory.RoleSuperadmin)).
				Post("/gate/verify", gateHandlers.Verify)

			r.Group(func(r chi.Router) {
				r.Use(api.RequireRole(directory.RoleSuperadmin))

				r.Post("/admin/students/import", adminHandlers.ImportStudents)
				r.Post("/admin/staff", adminHandlers.CreateStaff)
			})
		})
	})

	return r
}
