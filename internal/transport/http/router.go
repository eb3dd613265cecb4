package http

import (
	"net/http"
	"strings"
	"time"

	"byod/internal/httpx"
	obsmw "byod/internal/observability/middleware"
	"byod/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Auth          service.AuthService
	Tokens        service.TokenService
	Devices       service.DeviceService
	Requests      service.AccessRequestService
	Notifications service.NotificationService
	Dashboard     service.DashboardService
	Audit         service.AuditService

	CORSOrigins        []string
	RateLimitPerMinute int
	RequestTimeout     time.Duration
}

type handler struct {
	Deps
}

func NewRouter(d Deps) http.Handler {
	h := &handler{Deps: d}
	if h.RequestTimeout <= 0 {
		h.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(obsmw.WithRequestAndTrace)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(httpx.LogRequests)
	r.Use(obsmw.WithMetrics)
	r.Use(chimw.Timeout(h.RequestTimeout))
	if origins := originsIfSet(d.CORSOrigins); len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type", obsmw.HeaderRequestID, obsmw.HeaderTraceID},
			ExposedHeaders:   []string{obsmw.HeaderRequestID, obsmw.HeaderTraceID},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	if d.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(d.RateLimitPerMinute, time.Minute))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/.well-known/jwks.json", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, h.Tokens.JWKS())
	})

	r.Post("/v1/auth/login", h.login)

	r.Group(func(pr chi.Router) {
		pr.Use(h.requireActor)

		pr.Get("/v1/auth/me", h.me)

		pr.Route("/v1/users", func(r chi.Router) {
			r.Post("/", h.createUser)
			r.Get("/", h.listUsers)
		})

		pr.Route("/v1/devices", func(r chi.Router) {
			r.Post("/", h.registerDevice)
			r.Get("/", h.listDevices)
			r.Get("/{deviceID}", h.getDevice)
			r.Post("/{deviceID}/suspend", h.suspendDevice)
			r.Post("/{deviceID}/reactivate", h.reactivateDevice)
			r.Post("/{deviceID}/compliance", h.setCompliance)
		})

		pr.Route("/v1/access-requests", func(r chi.Router) {
			r.Get("/", h.requestQueue)
			r.Get("/mine", h.myRequests)
			r.Get("/{requestID}", h.getRequest)
			r.Post("/{requestID}/approve", h.approveRequest)
			r.Post("/{requestID}/reject", h.rejectRequest)
		})

		pr.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", h.listNotifications)
			r.Get("/unread-count", h.unreadCount)
			r.Post("/read-all", h.markAllRead)
			r.Post("/{notificationID}/read", h.markRead)
		})

		pr.Get("/v1/dashboard", h.dashboard)
		pr.Get("/v1/audit", h.auditLog)
	})

	return r
}

func originsIfSet(in []string) []string {
	out := []string{}
	for _, o := range in {
		if s := strings.TrimSpace(o); s != "" {
			out = append(out, s)
		}
	}
	return out
}
