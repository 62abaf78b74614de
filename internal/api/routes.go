package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all API routes. Everything under /api/v1
// except registration and login requires a bearer token; the remaining
// prefix serves the static frontend.
func SetupRoutes(handler *Handler, staticDir string) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/register", handler.Register).Methods("POST")
	api.HandleFunc("/auth/login", handler.Login).Methods("POST")

	protected := api.NewRoute().Subrouter()
	protected.Use(handler.auth.Middleware)
	protected.HandleFunc("/quotes", handler.GetQuotes).Methods("GET")
	protected.HandleFunc("/quotes/{symbol}", handler.GetQuote).Methods("GET")
	protected.HandleFunc("/trades", handler.CreateTrade).Methods("POST")
	protected.HandleFunc("/trades", handler.GetTrades).Methods("GET")
	protected.HandleFunc("/positions", handler.GetPositions).Methods("GET")
	protected.HandleFunc("/positions/{symbol}", handler.GetPosition).Methods("GET")
	protected.HandleFunc("/portfolio", handler.GetPortfolio).Methods("GET")

	if staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}

	return r
}
