package api

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/kriss2012/Real-Time-IoT-Dashboard/api/resources"
	"github.com/kriss2012/Real-Time-IoT-Dashboard/internal/registry"
)

type Router struct {
	router    *mux.Router
	resources *resources.Resources
}

func NewRouter(reg *registry.Registry, health http.HandlerFunc, metrics http.Handler) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		resources: resources.NewResources(reg),
	}
	r.resources.SetHealthCheck(health)
	r.resources.SetMetrics(metrics)

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", r.resources.HealthCheck).Methods(http.MethodGet)
	api.Handle("/metrics", r.resources.Metrics).Methods(http.MethodGet)

	// Devices
	devices := api.PathPrefix("/devices").Subrouter()
	devices.HandleFunc("", r.resources.Devices.ListDevices).Methods(http.MethodGet)
	devices.HandleFunc("", r.resources.Devices.CreateDevice).Methods(http.MethodPost)
	devices.HandleFunc("/{id}", r.resources.Devices.GetDevice).Methods(http.MethodGet)
	devices.HandleFunc("/{id}", r.resources.Devices.DeleteDevice).Methods(http.MethodDelete)
	devices.HandleFunc("/{id}/config", r.resources.Devices.UpdateDeviceConfig).Methods(http.MethodPut)
	devices.HandleFunc("/{id}/history", r.resources.Devices.GetDeviceHistory).Methods(http.MethodGet)
}

// Handler wraps the router with recovery, request logging and CORS so
// the browser dashboard can call the API from any origin.
func (r *Router) Handler() http.Handler {
	h := handlers.RecoveryHandler()(r.router)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
	return handlers.CombinedLoggingHandler(os.Stdout, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
