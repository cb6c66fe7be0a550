package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	accountant "github.com/theaccountant/accountant"
	"github.com/theaccountant/accountant/internal/handler"
	prommetrics "github.com/theaccountant/accountant/metrics/prometheus"
	"github.com/theaccountant/accountant/middleware"
)

// Handlers collects the route groups mounted on the router.
type Handlers struct {
	User     *handler.User
	Category *handler.Category
	Income   *handler.Income
	Loan     *handler.Loan
}

// NewRouter assembles the middleware chain and routes. Order matters:
// request IDs first, then CORS so preflights are answered before the
// session gate sees them, then the gate guarding everything below it.
func NewRouter(auth *accountant.Service, metrics *accountant.Metrics, h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(cors.Handler(middleware.CORSOptions()))
	r.Use(middleware.Gate(auth, middleware.DefaultAllowedPaths(), metrics))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("accountant api"))
	})

	// Behind the gate: scraping requires a session.
	r.Method(http.MethodGet, "/metrics", prommetrics.NewExporter(metrics).Handler())

	h.User.Register(r)
	h.Category.Register(r)
	h.Income.Register(r)
	h.Loan.Register(r)

	return r
}
