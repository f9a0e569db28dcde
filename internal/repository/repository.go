package repository

import (
	"context"
	"errors"

	"github.com/pixelbridge-systems/pixelbridge/internal/models"
)

var ErrClientNotFound = errors.New("client not found")

// Repository is the durable client store. Merge is an upsert: it
// creates the record when absent, otherwise applies only the set
// fields of the update, and always refreshes last activity.
type Repository interface {
	Get(ctx context.Context, id string) (*models.Client, error)
	Merge(ctx context.Context, id string, update models.ClientUpdate) error
	List(ctx context.Context) ([]*models.Client, error)
	Close() error
}
