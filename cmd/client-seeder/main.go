// client-seeder posts synthetic lifecycle webhooks at a running relay
// so the dashboard has something to show during development.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/pixelbridge-systems/pixelbridge/internal/models"
	"github.com/pixelbridge-systems/pixelbridge/internal/signature"
)

var (
	relayURL = flag.String("url", "http://localhost:8080/webhook", "webhook endpoint URL")
	secret   = flag.String("secret", "", "webhook shared secret (omit if relay runs without one)")
	count    = flag.Int("count", 50, "number of webhooks to send")
	interval = flag.Duration("interval", 50*time.Millisecond, "interval between webhooks")
	clients  = flag.Int("clients", 10, "number of distinct client ids to spread events over")
)

var eventTypes = []string{"subscribe", "registration", "purchase", "message", "unsubscribe"}

func main() {
	flag.Parse()

	gofakeit.Seed(time.Now().UnixNano())

	log.Printf("Seeding %d webhooks over %d clients to %s", *count, *clients, *relayURL)

	clientIDs := make([]string, *clients)
	for i := range clientIDs {
		clientIDs[i] = fmt.Sprintf("%d", gofakeit.Number(100000, 999999))
	}

	sent := 0
	for i := 0; i < *count; i++ {
		event := models.WebhookEvent{
			ClientID:  clientIDs[rand.Intn(len(clientIDs))],
			Type:      eventTypes[rand.Intn(len(eventTypes))],
			Name:      gofakeit.Name(),
			Status:    "active",
			IPAddress: gofakeit.IPv4Address(),
			UserAgent: gofakeit.UserAgent(),
		}
		if event.Type == "purchase" {
			event.OrderValue = gofakeit.Price(5, 500)
		}

		params := url.Values{}
		// Every few webhooks carry fresh attribution, like real
		// tracking-link traffic.
		if i%5 == 0 {
			params.Set("utm_source", gofakeit.RandomString([]string{"facebook", "instagram", "telegram"}))
			params.Set("utm_campaign", gofakeit.Word())
			params.Set("utm_fb_pixel", fmt.Sprintf("%d", gofakeit.Number(1000000000, 9999999999)))
			params.Set("utm_fb_token", gofakeit.UUID())
			event.ClickID = gofakeit.UUID()
		}

		if err := send(event, params); err != nil {
			log.Printf("send failed: %v", err)
		} else {
			sent++
		}

		time.Sleep(*interval)
	}

	log.Printf("Done: %d/%d webhooks delivered", sent, *count)
}

func send(event models.WebhookEvent, params url.Values) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	target := *relayURL
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if *secret != "" {
		req.Header.Set("X-Hub-Signature-256", signature.Sign(*secret, body))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay returned status %d", resp.StatusCode)
	}
	return nil
}
