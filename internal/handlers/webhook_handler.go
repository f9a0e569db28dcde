package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pixelbridge-systems/pixelbridge/internal/attribution"
	"github.com/pixelbridge-systems/pixelbridge/internal/logging"
	"github.com/pixelbridge-systems/pixelbridge/internal/metrics"
	"github.com/pixelbridge-systems/pixelbridge/internal/models"
	"github.com/pixelbridge-systems/pixelbridge/internal/service"
	"github.com/pixelbridge-systems/pixelbridge/internal/signature"
)

// SignatureHeader carries the HMAC of the raw request body when the
// bot platform is configured with a shared secret.
const SignatureHeader = "X-Hub-Signature-256"

// WebhookProcessor is the slice of RelayService the webhook handler needs.
type WebhookProcessor interface {
	ProcessWebhook(ctx context.Context, event *models.WebhookEvent, attr models.ClientUpdate) service.Result
}

type WebhookHandler struct {
	service WebhookProcessor
	secret  string
	logger  *logging.Logger
}

func NewWebhookHandler(svc WebhookProcessor, secret string, logger *logging.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: svc,
		secret:  secret,
		logger:  logger,
	}
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, models.WebhookResponse{
			Status: "error", Error: "method not allowed",
		})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		metrics.WebhooksTotal.WithLabelValues("error").Inc()
		writeJSON(w, http.StatusBadRequest, models.WebhookResponse{
			Status: "error", Error: "failed to read body",
		})
		return
	}
	defer r.Body.Close()

	if h.secret != "" {
		if !signature.Verify(h.secret, body, r.Header.Get(SignatureHeader)) {
			metrics.WebhooksTotal.WithLabelValues("rejected").Inc()
			h.logger.WarnContext(r.Context(), "webhook signature mismatch")
			writeJSON(w, http.StatusForbidden, models.WebhookResponse{
				Status: "error", Error: "invalid signature",
			})
			return
		}
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		metrics.WebhooksTotal.WithLabelValues("error").Inc()
		writeJSON(w, http.StatusBadRequest, models.WebhookResponse{
			Status: "error", Error: "invalid JSON body",
		})
		return
	}

	attr := attribution.Extract(r.URL.Query())
	res := h.service.ProcessWebhook(r.Context(), &event, attr)

	// Delivery is best-effort: the sender never learns whether the
	// event went out, only that the webhook was accepted.
	if res.EventName != "" {
		h.logger.InfoContext(r.Context(), "webhook processed",
			"client_id", event.ClientID,
			"type", event.Type,
			"event", res.EventName,
			"forwarded", res.Forwarded,
		)
	}

	metrics.WebhooksTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, models.WebhookResponse{Status: "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
