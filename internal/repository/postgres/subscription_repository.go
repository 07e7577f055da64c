package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/freshcrate/subscription-service/internal/domain"
	"github.com/freshcrate/subscription-service/internal/repository"
	"github.com/freshcrate/subscription-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSubscriptionRepository реализация репозитория подписок для PostgreSQL
type PostgresSubscriptionRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewPostgresSubscriptionRepository создает новый репозиторий подписок для PostgreSQL
func NewPostgresSubscriptionRepository(pool *pgxpool.Pool, log *logger.Logger) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{
		pool: pool,
		log:  log,
	}
}

const subscriptionColumns = `id, customer_id, product, frequency, plan_id, external_id, one_time, status, cancelled_at, created_at, updated_at`

func scanSubscription(row pgx.Row) (domain.Subscription, error) {
	var s domain.Subscription
	err := row.Scan(&s.ID, &s.CustomerID, &s.Product, &s.Frequency, &s.PlanID,
		&s.ExternalID, &s.OneTime, &s.Status, &s.CancelledAt, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func scanSubscriptions(rows pgx.Rows) ([]domain.Subscription, error) {
	defer rows.Close()

	var subscriptions []domain.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subscriptions = append(subscriptions, s)
	}
	return subscriptions, rows.Err()
}

// GetByID возвращает подписку по ID
func (r *PostgresSubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`

	subscription, err := scanSubscription(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Subscription{}, repository.ErrNotFound
		}
		r.log.Errorw("Failed to get subscription by ID", "error", err, "subscriptionID", id)
		return domain.Subscription{}, fmt.Errorf("repository: failed to get subscription by ID: %w", err)
	}

	return subscription, nil
}

// GetByExternalID возвращает подписку по идентификатору Razorpay
func (r *PostgresSubscriptionRepository) GetByExternalID(ctx context.Context, externalID string) (domain.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE external_id = $1`

	subscription, err := scanSubscription(r.pool.QueryRow(ctx, query, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Subscription{}, repository.ErrNotFound
		}
		r.log.Errorw("Failed to get subscription by external ID", "error", err, "externalID", externalID)
		return domain.Subscription{}, fmt.Errorf("repository: failed to get subscription by external ID: %w", err)
	}

	return subscription, nil
}

// GetActiveByCustomerAndProduct возвращает неотмененные подписки клиента на товар
func (r *PostgresSubscriptionRepository) GetActiveByCustomerAndProduct(ctx context.Context, customerID uuid.UUID, product string) ([]domain.Subscription, error) {
	query := `
        SELECT ` + subscriptionColumns + `
        FROM subscriptions
        WHERE customer_id = $1 AND product = $2 AND status <> $3
        ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, customerID, product, domain.SubscriptionStatusCancelled)
	if err != nil {
		r.log.Errorw("Failed to get active subscriptions", "error", err, "customerID", customerID, "product", product)
		return nil, fmt.Errorf("repository: failed to get active subscriptions: %w", err)
	}

	return scanSubscriptions(rows)
}

// GetByCustomerID возвращает подписки по ID клиента
func (r *PostgresSubscriptionRepository) GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]domain.Subscription, error) {
	query := `
        SELECT ` + subscriptionColumns + `
        FROM subscriptions
        WHERE customer_id = $1
        ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		r.log.Errorw("Failed to get subscriptions by customer ID", "error", err, "customerID", customerID)
		return nil, fmt.Errorf("repository: failed to get subscriptions by customer ID: %w", err)
	}

	return scanSubscriptions(rows)
}

// GetLatest возвращает последние подписки (новые в начале)
func (r *PostgresSubscriptionRepository) GetLatest(ctx context.Context, limit int) ([]domain.Subscription, error) {
	query := `
        SELECT ` + subscriptionColumns + `
        FROM subscriptions
        ORDER BY created_at DESC
        LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		r.log.Errorw("Failed to get latest subscriptions", "error", err)
		return nil, fmt.Errorf("repository: failed to get latest subscriptions: %w", err)
	}

	return scanSubscriptions(rows)
}

// Create сохраняет новую подписку
func (r *PostgresSubscriptionRepository) Create(ctx context.Context, subscription domain.Subscription) (domain.Subscription, error) {
	now := time.Now()
	subscription.CreatedAt = now
	subscription.UpdatedAt = now

	query := `
        INSERT INTO subscriptions (id, customer_id, product, frequency, plan_id, external_id, one_time, status, cancelled_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		subscription.ID, subscription.CustomerID, subscription.Product, subscription.Frequency,
		subscription.PlanID, subscription.ExternalID, subscription.OneTime, subscription.Status,
		subscription.CancelledAt, subscription.CreatedAt, subscription.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Subscription{}, repository.ErrDuplicate
		}
		r.log.Errorw("Failed to create subscription", "error", err, "externalID", subscription.ExternalID)
		return domain.Subscription{}, fmt.Errorf("repository: failed to create subscription: %w", err)
	}

	r.log.Debugw("Created subscription", "subscriptionID", subscription.ID, "externalID", subscription.ExternalID)
	return subscription, nil
}

// Update обновляет изменяемые поля подписки: status, cancelled_at, frequency, updated_at
func (r *PostgresSubscriptionRepository) Update(ctx context.Context, subscription domain.Subscription) error {
	subscription.UpdatedAt = time.Now()

	query := `
        UPDATE subscriptions SET
            status = $2,
            cancelled_at = $3,
            frequency = $4,
            updated_at = $5
        WHERE id = $1`

	result, err := r.pool.Exec(ctx, query,
		subscription.ID, subscription.Status, subscription.CancelledAt,
		subscription.Frequency, subscription.UpdatedAt,
	)
	if err != nil {
		r.log.Errorw("Failed to update subscription", "error", err, "subscriptionID", subscription.ID)
		return fmt.Errorf("repository: failed to update subscription: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}
