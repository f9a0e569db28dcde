package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestClientUpdate_Apply_PartialMerge(t *testing.T) {
	client := &Client{
		ID:        "c1",
		UTMSource: "facebook",
		FBPixelID: "px-1",
	}

	update := ClientUpdate{UTMCampaign: strPtr("summer")}
	update.Apply(client)

	// Untouched fields survive a partial update.
	assert.Equal(t, "facebook", client.UTMSource)
	assert.Equal(t, "px-1", client.FBPixelID)
	assert.Equal(t, "summer", client.UTMCampaign)
}

func TestClientUpdate_Apply_OverwritesSetFields(t *testing.T) {
	client := &Client{ID: "c1", UTMSource: "old"}

	update := ClientUpdate{
		UTMSource:     strPtr("new"),
		FBAccessToken: strPtr("tok"),
	}
	update.Apply(client)

	assert.Equal(t, "new", client.UTMSource)
	assert.Equal(t, "tok", client.FBAccessToken)
}

func TestClientUpdate_IsEmpty(t *testing.T) {
	assert.True(t, ClientUpdate{}.IsEmpty())
	assert.False(t, ClientUpdate{Name: strPtr("x")}.IsEmpty())
	assert.False(t, ClientUpdate{ClickID: strPtr("abc")}.IsEmpty())
}

func TestClientUpdate_Fields(t *testing.T) {
	update := ClientUpdate{
		UTMSource: strPtr("fb"),
		FBPixelID: strPtr("px"),
	}

	fields := update.Fields()

	assert.Equal(t, map[string]string{
		"utm_source":   "fb",
		"utm_fb_pixel": "px",
	}, fields)
}

func TestClient_HasDestination(t *testing.T) {
	tests := []struct {
		name     string
		client   Client
		expected bool
	}{
		{"both set", Client{FBPixelID: "px", FBAccessToken: "tok"}, true},
		{"pixel only", Client{FBPixelID: "px"}, false},
		{"token only", Client{FBAccessToken: "tok"}, false},
		{"neither", Client{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.client.HasDestination())
		})
	}
}
