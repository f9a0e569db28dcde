package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pixelbridge-systems/pixelbridge/internal/handlers"
	"github.com/pixelbridge-systems/pixelbridge/internal/logging"
	"github.com/pixelbridge-systems/pixelbridge/internal/middleware"
)

// NewRouter constructs a ServeMux with the relay's routes registered.
func NewRouter(webhook *handlers.WebhookHandler, admin *handlers.AdminHandler, logger *logging.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/webhook", webhook.Handle)
	mux.HandleFunc("/admin", admin.Dashboard)

	mux.HandleFunc("/healthz", handlers.Health)
	mux.HandleFunc("/readyz", handlers.Ready)

	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(middleware.Recover(logger.Logger, mux))
}
