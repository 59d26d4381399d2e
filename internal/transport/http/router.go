package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lokeshloki65/college-event/internal/notifier"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	Admission   RegistrationSubmitter
	Lifecycle   RegistrationLifecycle
	Reviewer    RegistrationReviewer
	Hub         *notifier.Hub
	Logger      *zap.Logger
	CORSOrigins []string
}

// NewRouter assembles the full route table with the shared middleware
// stack.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Get("/health", HealthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(RequireActor)

		r.Post("/events/{eventID}/registrations", HandleSubmitRegistration(deps.Admission))

		r.Route("/registrations", func(r chi.Router) {
			r.Get("/", HandleListRegistrations(deps.Lifecycle))
			r.Get("/{number}", HandleGetRegistration(deps.Lifecycle))
			r.Patch("/{number}", HandleUpdateRegistration(deps.Lifecycle))
			r.Post("/{number}/cancel", HandleCancelRegistration(deps.Lifecycle))
		})

		r.Route("/admin/registrations", func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Patch("/{number}/status", HandleReviewTransition(deps.Reviewer))
		})

		r.Get("/ws", HandleStream(deps.Hub, deps.Logger))
	})

	r.NotFound(NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	return RequestLogger(CORS(deps.CORSOrigins, r), deps.Logger)
}
