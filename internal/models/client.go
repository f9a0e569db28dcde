package models

import "time"

// Client is one tracked end user of the bot platform, keyed by the
// opaque id the platform assigns.
type Client struct {
	ID            string    `json:"id"`
	Name          string    `json:"name,omitempty"`
	Status        string    `json:"status,omitempty"`
	UTMSource     string    `json:"utm_source,omitempty"`
	UTMCampaign   string    `json:"utm_campaign,omitempty"`
	FBPixelID     string    `json:"utm_fb_pixel,omitempty"`
	FBAccessToken string    `json:"utm_fb_token,omitempty"`
	IPAddress     string    `json:"ip,omitempty"`
	UserAgent     string    `json:"user_agent,omitempty"`
	ClickID       string    `json:"fbclid,omitempty"`
	LastActivity  time.Time `json:"last_activity"`
}

// HasDestination reports whether the client carries a complete
// Conversions API destination (pixel id and access token).
func (c *Client) HasDestination() bool {
	return c.FBPixelID != "" && c.FBAccessToken != ""
}

// ClientUpdate is a partial update to a Client. Nil fields are left
// untouched on merge, so callers set only what they actually know.
type ClientUpdate struct {
	Name          *string
	Status        *string
	UTMSource     *string
	UTMCampaign   *string
	FBPixelID     *string
	FBAccessToken *string
	IPAddress     *string
	UserAgent     *string
	ClickID       *string
}

// IsEmpty reports whether the update carries no fields at all.
func (u ClientUpdate) IsEmpty() bool {
	return u.Name == nil && u.Status == nil &&
		u.UTMSource == nil && u.UTMCampaign == nil &&
		u.FBPixelID == nil && u.FBAccessToken == nil &&
		u.IPAddress == nil && u.UserAgent == nil && u.ClickID == nil
}

// Apply copies the set fields of the update onto the client. The
// caller is responsible for refreshing LastActivity.
func (u ClientUpdate) Apply(c *Client) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.UTMSource != nil {
		c.UTMSource = *u.UTMSource
	}
	if u.UTMCampaign != nil {
		c.UTMCampaign = *u.UTMCampaign
	}
	if u.FBPixelID != nil {
		c.FBPixelID = *u.FBPixelID
	}
	if u.FBAccessToken != nil {
		c.FBAccessToken = *u.FBAccessToken
	}
	if u.IPAddress != nil {
		c.IPAddress = *u.IPAddress
	}
	if u.UserAgent != nil {
		c.UserAgent = *u.UserAgent
	}
	if u.ClickID != nil {
		c.ClickID = *u.ClickID
	}
}

// Fields returns the set fields as a flat map using the bot platform's
// wire names. Used by the remote repository's update_data payload.
func (u ClientUpdate) Fields() map[string]string {
	m := make(map[string]string)
	set := func(key string, v *string) {
		if v != nil {
			m[key] = *v
		}
	}
	set("name", u.Name)
	set("status", u.Status)
	set("utm_source", u.UTMSource)
	set("utm_campaign", u.UTMCampaign)
	set("utm_fb_pixel", u.FBPixelID)
	set("utm_fb_token", u.FBAccessToken)
	set("ip", u.IPAddress)
	set("user_agent", u.UserAgent)
	set("fbclid", u.ClickID)
	return m
}
