// Package attribution derives marketing attribution from webhook
// query parameters.
package attribution

import (
	"net/url"

	"github.com/pixelbridge-systems/pixelbridge/internal/models"
)

// Query parameter names attached by tracking links.
const (
	ParamSource   = "utm_source"
	ParamCampaign = "utm_campaign"
	ParamPixelID  = "utm_fb_pixel"
	ParamToken    = "utm_fb_token"
)

// Extract returns an update carrying exactly the attribution
// parameters that were present and non-empty. Absent parameters stay
// unset so a later merge never blanks stored values. A pixel id
// without a token (or the reverse) still comes through; whether that
// makes a usable destination is the relay's decision, not ours.
func Extract(query url.Values) models.ClientUpdate {
	var update models.ClientUpdate

	if v := query.Get(ParamSource); v != "" {
		update.UTMSource = &v
	}
	if v := query.Get(ParamCampaign); v != "" {
		update.UTMCampaign = &v
	}
	if v := query.Get(ParamPixelID); v != "" {
		update.FBPixelID = &v
	}
	if v := query.Get(ParamToken); v != "" {
		update.FBAccessToken = &v
	}

	return update
}
