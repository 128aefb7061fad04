package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Router wraps the stdlib ServeMux.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the mux wrapped in recovery and request logging.
func (r *Router) Handler() http.Handler {
	return Chain(r.mux, Recovery(r.logger), Logging(r.logger))
}

func (r *Router) RegisterAlertRoutes(h *AlertHandler) {
	r.HandleHandler(alertsPrefix, h)
	r.HandleHandler(alertsPrefix+"/", h)
}

func (r *Router) RegisterMeasurementRoutes(h *MeasurementHandler) {
	r.HandleHandler(measurementsPrefix, h)
	r.HandleHandler(measurementsPrefix+"/", h)
}

func (r *Router) RegisterIndicatorRoutes(h *IndicatorHandler) {
	r.HandleHandler(indicatorsPrefix, h)
	r.HandleHandler(indicatorsPrefix+"/", h)
}

func (r *Router) RegisterReferenceRoutes(h *ReferenceHandler) {
	r.Handle(regionsPrefix, h.ServeRegions)
	r.Handle(regionsPrefix+"/", h.ServeRegions)
	r.Handle(categoriesPrefix, h.ServeCategories)
	r.Handle(categoriesPrefix+"/", h.ServeCategories)
}

func (r *Router) RegisterStatsRoutes(h *StatsHandler) {
	r.Handle("/api/v1/stats/alerts", h.GetAlertStats)
	r.Handle("/api/v1/user/activity", h.ListActivity)
}

// RegisterOpsRoutes /health and the prometheus scrape endpoint.
func (r *Router) RegisterOpsRoutes() {
	r.Handle("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, Ok(map[string]string{"status": "ok"}))
	})
	r.HandleHandler("/metrics", promhttp.Handler())
}
