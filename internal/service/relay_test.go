package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelbridge-systems/pixelbridge/internal/capi"
	"github.com/pixelbridge-systems/pixelbridge/internal/logging"
	"github.com/pixelbridge-systems/pixelbridge/internal/models"
	"github.com/pixelbridge-systems/pixelbridge/internal/repository"
)

type mockRepository struct {
	getFunc   func(ctx context.Context, id string) (*models.Client, error)
	mergeFunc func(ctx context.Context, id string, update models.ClientUpdate) error
	listFunc  func(ctx context.Context) ([]*models.Client, error)
}

func (m *mockRepository) Get(ctx context.Context, id string) (*models.Client, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return nil, repository.ErrClientNotFound
}

func (m *mockRepository) Merge(ctx context.Context, id string, update models.ClientUpdate) error {
	if m.mergeFunc != nil {
		return m.mergeFunc(ctx, id, update)
	}
	return nil
}

func (m *mockRepository) List(ctx context.Context) ([]*models.Client, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockRepository) Close() error { return nil }

type sentEvent struct {
	dest  capi.Destination
	event capi.Event
}

type mockSender struct {
	sent []sentEvent
	err  error
}

func (m *mockSender) Send(ctx context.Context, dest capi.Destination, event capi.Event) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEvent{dest: dest, event: event})
	return nil
}

func strPtr(s string) *string { return &s }

func newTestService(repo repository.Repository, sender Sender) *RelayService {
	svc := NewRelayService(repo, sender, logging.Default())
	svc.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return svc
}

func TestProcessWebhook_Classification(t *testing.T) {
	tests := []struct {
		eventType  string
		wantName   string
		wantCustom *capi.CustomData
	}{
		{"subscribe", "Subscribe", nil},
		{"registration", "CompleteRegistration", nil},
		{"purchase", "Purchase", &capi.CustomData{Value: 19.5, Currency: "USD"}},
		{"message", "", nil},
		{"", "", nil},
	}

	for _, tt := range tests {
		t.Run("type "+tt.eventType, func(t *testing.T) {
			repo := repository.NewInMemoryRepository()
			require.NoError(t, repo.Merge(context.Background(), "c1", models.ClientUpdate{
				FBPixelID:     strPtr("px-1"),
				FBAccessToken: strPtr("tok-1"),
			}))
			sender := &mockSender{}
			svc := newTestService(repo, sender)

			res := svc.ProcessWebhook(context.Background(), &models.WebhookEvent{
				ClientID:   "c1",
				Type:       tt.eventType,
				OrderValue: 19.5,
			}, models.ClientUpdate{})

			assert.Equal(t, tt.wantName, res.EventName)
			if tt.wantName == "" {
				assert.Empty(t, sender.sent)
				return
			}

			require.Len(t, sender.sent, 1)
			assert.Equal(t, tt.wantName, sender.sent[0].event.EventName)
			assert.Equal(t, tt.wantCustom, sender.sent[0].event.CustomData)
			assert.True(t, res.Forwarded)
		})
	}
}

func TestProcessWebhook_NoDestinationIsSilentNoop(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	require.NoError(t, repo.Merge(context.Background(), "c1", models.ClientUpdate{
		UTMSource: strPtr("facebook"),
	}))
	sender := &mockSender{}
	svc := newTestService(repo, sender)

	res := svc.ProcessWebhook(context.Background(), &models.WebhookEvent{
		ClientID: "c1",
		Type:     "purchase",
	}, models.ClientUpdate{})

	assert.Empty(t, sender.sent)
	assert.Equal(t, "Purchase", res.EventName)
	assert.False(t, res.Forwarded)
	assert.NoError(t, res.ForwardErr)
}

func TestProcessWebhook_UnknownClientIsSilentNoop(t *testing.T) {
	sender := &mockSender{}
	svc := newTestService(repository.NewInMemoryRepository(), sender)

	res := svc.ProcessWebhook(context.Background(), &models.WebhookEvent{
		ClientID: "ghost",
		Type:     "subscribe",
	}, models.ClientUpdate{})

	assert.Empty(t, sender.sent)
	assert.False(t, res.Forwarded)
}

func TestProcessWebhook_FreshAttributionUsedForForward(t *testing.T) {
	// A previously pixel-less client sends a purchase whose request
	// carries the pixel and token: the forward must use them.
	repo := repository.NewInMemoryRepository()
	require.NoError(t, repo.Merge(context.Background(), "c1", models.ClientUpdate{
		UTMSource: strPtr("facebook"),
	}))
	sender := &mockSender{}
	svc := newTestService(repo, sender)

	res := svc.ProcessWebhook(context.Background(), &models.WebhookEvent{
		ClientID:   "c1",
		Type:       "purchase",
		OrderValue: 100,
	}, models.ClientUpdate{
		FBPixelID:     strPtr("px-new"),
		FBAccessToken: strPtr("tok-new"),
	})

	assert.True(t, res.Merged)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "px-new", sender.sent[0].dest.PixelID)
	assert.Equal(t, "tok-new", sender.sent[0].dest.AccessToken)
}

func TestProcessWebhook_EndToEndSubscribe(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	require.NoError(t, repo.Merge(context.Background(), "c1", models.ClientUpdate{
		FBPixelID:     strPtr("PX1"),
		FBAccessToken: strPtr("TOK1"),
	}))
	sender := &mockSender{}
	svc := newTestService(repo, sender)

	res := svc.ProcessWebhook(context.Background(), &models.WebhookEvent{
		ClientID: "c1",
		Type:     "subscribe",
	}, models.ClientUpdate{})

	require.Len(t, sender.sent, 1)
	sent := sender.sent[0]
	assert.Equal(t, "PX1", sent.dest.PixelID)
	assert.Equal(t, "TOK1", sent.dest.AccessToken)
	assert.Equal(t, "Subscribe", sent.event.EventName)
	assert.Nil(t, sent.event.CustomData)
	assert.Equal(t, int64(1700000000), sent.event.EventTime)
	assert.True(t, res.Forwarded)
}

func TestProcessWebhook_MergeFailureDoesNotBlockForward(t *testing.T) {
	stored := &models.Client{
		ID:            "c1",
		FBPixelID:     "px-old",
		FBAccessToken: "tok-old",
	}
	mergeErr := errors.New("db down")
	repo := &mockRepository{
		mergeFunc: func(ctx context.Context, id string, update models.ClientUpdate) error {
			return mergeErr
		},
		getFunc: func(ctx context.Context, id string) (*models.Client, error) {
			return stored, nil
		},
	}
	sender := &mockSender{}
	svc := newTestService(repo, sender)

	res := svc.ProcessWebhook(context.Background(), &models.WebhookEvent{
		ClientID: "c1",
		Type:     "purchase",
	}, models.ClientUpdate{UTMSource: strPtr("fb")})

	assert.ErrorIs(t, res.MergeErr, mergeErr)
	// Forwarding proceeds with the last successfully read record.
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "px-old", sender.sent[0].dest.PixelID)
	assert.True(t, res.Forwarded)
}

func TestProcessWebhook_GetFailureShortCircuitsForward(t *testing.T) {
	repo := &mockRepository{
		getFunc: func(ctx context.Context, id string) (*models.Client, error) {
			return nil, errors.New("db down")
		},
	}
	sender := &mockSender{}
	svc := newTestService(repo, sender)

	res := svc.ProcessWebhook(context.Background(), &models.WebhookEvent{
		ClientID: "c1",
		Type:     "subscribe",
	}, models.ClientUpdate{})

	assert.Empty(t, sender.sent)
	assert.False(t, res.Forwarded)
}

func TestProcessWebhook_SendFailureIsNonFatal(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	require.NoError(t, repo.Merge(context.Background(), "c1", models.ClientUpdate{
		FBPixelID:     strPtr("px"),
		FBAccessToken: strPtr("tok"),
	}))
	sendErr := errors.New("network down")
	sender := &mockSender{err: sendErr}
	svc := newTestService(repo, sender)

	res := svc.ProcessWebhook(context.Background(), &models.WebhookEvent{
		ClientID: "c1",
		Type:     "subscribe",
	}, models.ClientUpdate{})

	assert.False(t, res.Forwarded)
	assert.ErrorIs(t, res.ForwardErr, sendErr)
}

func TestProcessWebhook_ClickIDBuildsFBC(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	require.NoError(t, repo.Merge(context.Background(), "c1", models.ClientUpdate{
		FBPixelID:     strPtr("px"),
		FBAccessToken: strPtr("tok"),
	}))
	sender := &mockSender{}
	svc := newTestService(repo, sender)

	svc.ProcessWebhook(context.Background(), &models.WebhookEvent{
		ClientID: "c1",
		Type:     "subscribe",
		ClickID:  "click-xyz",
	}, models.ClientUpdate{})

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "fb.1.1700000000123.click-xyz", sender.sent[0].event.UserData.FBC)
}

func TestProcessWebhook_NoClickIDOmitsFBC(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	require.NoError(t, repo.Merge(context.Background(), "c1", models.ClientUpdate{
		FBPixelID:     strPtr("px"),
		FBAccessToken: strPtr("tok"),
	}))
	sender := &mockSender{}
	svc := newTestService(repo, sender)

	svc.ProcessWebhook(context.Background(), &models.WebhookEvent{
		ClientID: "c1",
		Type:     "subscribe",
	}, models.ClientUpdate{})

	require.Len(t, sender.sent, 1)
	assert.Empty(t, sender.sent[0].event.UserData.FBC)
}

func TestProcessWebhook_EventUserDataPersisted(t *testing.T) {
	repo := repository.NewInMemoryRepository()
	sender := &mockSender{}
	svc := newTestService(repo, sender)

	svc.ProcessWebhook(context.Background(), &models.WebhookEvent{
		ClientID:  "c1",
		Type:      "message",
		Name:      "Alice",
		IPAddress: "1.2.3.4",
		UserAgent: "agent-x",
	}, models.ClientUpdate{})

	client, err := repo.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", client.Name)
	assert.Equal(t, "1.2.3.4", client.IPAddress)
	assert.Equal(t, "agent-x", client.UserAgent)
}

func TestProcessWebhook_EmptyClientIDIsNoop(t *testing.T) {
	merges := 0
	repo := &mockRepository{
		mergeFunc: func(ctx context.Context, id string, update models.ClientUpdate) error {
			merges++
			return nil
		},
	}
	sender := &mockSender{}
	svc := newTestService(repo, sender)

	res := svc.ProcessWebhook(context.Background(), &models.WebhookEvent{
		Type: "subscribe",
	}, models.ClientUpdate{UTMSource: strPtr("fb")})

	assert.Zero(t, merges)
	assert.Empty(t, sender.sent)
	assert.Empty(t, res.EventName)
}
