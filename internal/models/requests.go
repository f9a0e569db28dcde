package models

// WebhookEvent is the lifecycle event body posted by the bot platform.
// Only client_id and type are guaranteed; the rest travels when the
// platform knows it.
type WebhookEvent struct {
	ClientID   string  `json:"client_id"`
	Type       string  `json:"type"`
	Name       string  `json:"name,omitempty"`
	Status     string  `json:"status,omitempty"`
	OrderValue float64 `json:"order_value,omitempty"`
	IPAddress  string  `json:"ip,omitempty"`
	UserAgent  string  `json:"user_agent,omitempty"`
	ClickID    string  `json:"fbclid,omitempty"`
}

// WebhookResponse is the JSON body returned to the bot platform.
type WebhookResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
