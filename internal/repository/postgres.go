package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pixelbridge-systems/pixelbridge/internal/models"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		SELECT id, COALESCE(name, ''), COALESCE(status, ''),
		       COALESCE(utm_source, ''), COALESCE(utm_campaign, ''),
		       COALESCE(fb_pixel_id, ''), COALESCE(fb_access_token, ''),
		       COALESCE(ip_address, ''), COALESCE(user_agent, ''),
		       COALESCE(click_id, ''), last_activity
		FROM clients
		WHERE id = $1
	`

	var client models.Client
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&client.ID, &client.Name, &client.Status,
		&client.UTMSource, &client.UTMCampaign,
		&client.FBPixelID, &client.FBAccessToken,
		&client.IPAddress, &client.UserAgent,
		&client.ClickID, &client.LastActivity,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return &client, nil
}

// Merge upserts per field: NULL update values leave the stored column
// as-is via COALESCE, so a partial update never clears other fields.
func (r *PostgresRepository) Merge(ctx context.Context, id string, update models.ClientUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO clients (
			id, name, status, utm_source, utm_campaign,
			fb_pixel_id, fb_access_token, ip_address, user_agent, click_id,
			last_activity
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name            = COALESCE(EXCLUDED.name, clients.name),
			status          = COALESCE(EXCLUDED.status, clients.status),
			utm_source      = COALESCE(EXCLUDED.utm_source, clients.utm_source),
			utm_campaign    = COALESCE(EXCLUDED.utm_campaign, clients.utm_campaign),
			fb_pixel_id     = COALESCE(EXCLUDED.fb_pixel_id, clients.fb_pixel_id),
			fb_access_token = COALESCE(EXCLUDED.fb_access_token, clients.fb_access_token),
			ip_address      = COALESCE(EXCLUDED.ip_address, clients.ip_address),
			user_agent      = COALESCE(EXCLUDED.user_agent, clients.user_agent),
			click_id        = COALESCE(EXCLUDED.click_id, clients.click_id),
			last_activity   = NOW()
	`

	_, err := r.pool.Exec(ctx, query, id,
		update.Name, update.Status,
		update.UTMSource, update.UTMCampaign,
		update.FBPixelID, update.FBAccessToken,
		update.IPAddress, update.UserAgent, update.ClickID,
	)

	if err != nil {
		return fmt.Errorf("failed to merge client: %w", err)
	}

	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := `
		SELECT id, COALESCE(name, ''), COALESCE(status, ''),
		       COALESCE(utm_source, ''), COALESCE(utm_campaign, ''),
		       COALESCE(fb_pixel_id, ''), COALESCE(fb_access_token, ''),
		       COALESCE(ip_address, ''), COALESCE(user_agent, ''),
		       COALESCE(click_id, ''), last_activity
		FROM clients
		ORDER BY last_activity DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := make([]*models.Client, 0)
	for rows.Next() {
		var client models.Client
		err := rows.Scan(
			&client.ID, &client.Name, &client.Status,
			&client.UTMSource, &client.UTMCampaign,
			&client.FBPixelID, &client.FBAccessToken,
			&client.IPAddress, &client.UserAgent,
			&client.ClickID, &client.LastActivity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, &client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return clients, nil
}
