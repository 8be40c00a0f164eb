package wire

import (
	"net/http"

	"event-ticketing/internal/adaptor"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/metrics"
	"event-ticketing/pkg/middleware"
	"event-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// App menyimpan semua dependencies
type App struct {
	Router  *chi.Mux
	Sweeper *usecase.Sweeper
}

// Wiring builds services, handlers and the router
func Wiring(
	repo *repository.Repository,
	config *utils.Config,
	deps usecase.Dependencies,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, config, deps, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, config, deps.Metrics, gatherer, logger)

	return &App{
		Router:  router,
		Sweeper: service.Sweeper,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	config *utils.Config,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Metrics(m))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))
	}

	r.Route("/api", func(r chi.Router) {
		if config.App.RequestTimeout > 0 {
			r.Use(chimw.Timeout(config.App.RequestTimeout))
		}

		auth := middleware.Authenticate(config.JWT.Secret, logger)

		wireSeat(r, handler.Seat, auth, logger)
		wireBooking(r, handler.Booking, auth, logger)
		wireCheckIn(r, handler.CheckIn, auth, logger)
	})

	return r
}
