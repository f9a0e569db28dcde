package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pixelbridge-systems/pixelbridge/internal/models"
)

// InMemoryRepository keeps clients in a map. Used for tests and for
// running the relay without external storage.
type InMemoryRepository struct {
	clients map[string]*models.Client
	mu      sync.RWMutex
	now     func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		clients: make(map[string]*models.Client),
		now:     time.Now,
	}
}

func (r *InMemoryRepository) Get(ctx context.Context, id string) (*models.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, exists := r.clients[id]
	if !exists {
		return nil, ErrClientNotFound
	}

	copied := *client
	return &copied, nil
}

func (r *InMemoryRepository) Merge(ctx context.Context, id string, update models.ClientUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	client, exists := r.clients[id]
	if !exists {
		client = &models.Client{ID: id}
		r.clients[id] = client
	}

	update.Apply(client)
	client.LastActivity = r.now()
	return nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*models.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*models.Client, 0, len(r.clients))
	for _, client := range r.clients {
		copied := *client
		clients = append(clients, &copied)
	}

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].LastActivity.After(clients[j].LastActivity)
	})

	return clients, nil
}

func (r *InMemoryRepository) Close() error {
	return nil
}
