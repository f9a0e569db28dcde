package service

import (
	"context"
	"errors"
	"time"

	"github.com/pixelbridge-systems/pixelbridge/internal/capi"
	"github.com/pixelbridge-systems/pixelbridge/internal/logging"
	"github.com/pixelbridge-systems/pixelbridge/internal/metrics"
	"github.com/pixelbridge-systems/pixelbridge/internal/models"
	"github.com/pixelbridge-systems/pixelbridge/internal/repository"
)

// Sender delivers a conversion event to the advertising platform.
type Sender interface {
	Send(ctx context.Context, dest capi.Destination, event capi.Event) error
}

// RelayService ties an inbound lifecycle event to the stored client
// record and decides what, if anything, goes out to the ad platform.
type RelayService struct {
	repo   repository.Repository
	sender Sender
	logger *logging.Logger
	now    func() time.Time
}

func NewRelayService(repo repository.Repository, sender Sender, logger *logging.Logger) *RelayService {
	return &RelayService{
		repo:   repo,
		sender: sender,
		logger: logger,
		now:    time.Now,
	}
}

// Result records what processing one webhook actually did. Store and
// delivery failures land here instead of propagating: the webhook is
// acknowledged either way, and the caller decides what to log.
type Result struct {
	Merged     bool
	MergeErr   error
	EventName  string
	Forwarded  bool
	ForwardErr error
}

// eventNames maps inbound lifecycle event types to Conversions API
// event names. Unknown types are acknowledged and dropped.
var eventNames = map[string]string{
	"subscribe":    "Subscribe",
	"registration": "CompleteRegistration",
	"purchase":     "Purchase",
}

func classify(event *models.WebhookEvent) (string, *capi.CustomData, bool) {
	name, ok := eventNames[event.Type]
	if !ok {
		return "", nil, false
	}
	if event.Type == "purchase" {
		return name, &capi.CustomData{Value: event.OrderValue, Currency: "USD"}, true
	}
	return name, nil, true
}

// ProcessWebhook merges any supplied attribution into the client
// record, then forwards the event if its type maps to a conversion
// and the client has a pixel destination. The merge happens first so
// attribution arriving on the same request is visible to the
// destination lookup.
func (s *RelayService) ProcessWebhook(ctx context.Context, event *models.WebhookEvent, attr models.ClientUpdate) Result {
	var res Result

	if event.ClientID == "" {
		s.logger.DebugContext(ctx, "webhook without client id, nothing to do",
			"type", event.Type)
		return res
	}

	update := s.enrich(event, attr)
	if !update.IsEmpty() {
		if err := s.repo.Merge(ctx, event.ClientID, update); err != nil {
			metrics.StoreErrorsTotal.WithLabelValues("merge").Inc()
			s.logger.ErrorContext(ctx, "failed to merge client update",
				"client_id", event.ClientID, "error", err)
			res.MergeErr = err
		} else {
			res.Merged = true
		}
	}

	name, customData, ok := classify(event)
	if !ok {
		return res
	}
	res.EventName = name

	client, err := s.repo.Get(ctx, event.ClientID)
	if err != nil {
		// Treated as "no record": the event legitimately has no
		// destination, so there is nothing to forward.
		if !errors.Is(err, repository.ErrClientNotFound) {
			metrics.StoreErrorsTotal.WithLabelValues("get").Inc()
			s.logger.WarnContext(ctx, "failed to read client before forwarding",
				"client_id", event.ClientID, "error", err)
		}
		return res
	}

	if !client.HasDestination() {
		s.logger.DebugContext(ctx, "client has no pixel destination, skipping forward",
			"client_id", event.ClientID, "event", name)
		return res
	}

	conversion := s.buildEvent(name, customData, client, event)
	dest := capi.Destination{
		PixelID:     client.FBPixelID,
		AccessToken: client.FBAccessToken,
	}

	if err := s.sender.Send(ctx, dest, conversion); err != nil {
		metrics.ForwardErrorsTotal.Inc()
		s.logger.ErrorContext(ctx, "failed to forward conversion event",
			"client_id", event.ClientID, "event", name, "error", err)
		res.ForwardErr = err
		return res
	}

	metrics.EventsForwardedTotal.WithLabelValues(name).Inc()
	res.Forwarded = true
	return res
}

// enrich folds the event's own identifying fields into the
// attribution update so one merge persists everything this webhook
// taught us about the client.
func (s *RelayService) enrich(event *models.WebhookEvent, attr models.ClientUpdate) models.ClientUpdate {
	set := func(dst **string, v string) {
		if v != "" {
			copied := v
			*dst = &copied
		}
	}
	set(&attr.Name, event.Name)
	set(&attr.Status, event.Status)
	set(&attr.IPAddress, event.IPAddress)
	set(&attr.UserAgent, event.UserAgent)
	set(&attr.ClickID, event.ClickID)
	return attr
}

func (s *RelayService) buildEvent(name string, customData *capi.CustomData, client *models.Client, event *models.WebhookEvent) capi.Event {
	now := s.now()

	// Prefer the stored record; fall back to the inbound event when a
	// field never made it into the store (a failed merge, say).
	ip := client.IPAddress
	if ip == "" {
		ip = event.IPAddress
	}
	userAgent := client.UserAgent
	if userAgent == "" {
		userAgent = event.UserAgent
	}
	clickID := client.ClickID
	if clickID == "" {
		clickID = event.ClickID
	}

	userData := capi.UserData{
		ClientIPAddress: ip,
		ClientUserAgent: userAgent,
	}
	if clickID != "" {
		userData.FBC = capi.BuildFBC(now, clickID)
	}

	return capi.Event{
		EventName:  name,
		EventTime:  now.Unix(),
		UserData:   userData,
		CustomData: customData,
	}
}
