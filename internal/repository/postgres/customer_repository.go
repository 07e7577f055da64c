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

// uniqueViolation код ошибки PostgreSQL для нарушения уникальности
const uniqueViolation = "23505"

// PostgresCustomerRepository реализация репозитория клиентов для PostgreSQL
type PostgresCustomerRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewPostgresCustomerRepository создает новый репозиторий клиентов для PostgreSQL
func NewPostgresCustomerRepository(pool *pgxpool.Pool, log *logger.Logger) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{
		pool: pool,
		log:  log,
	}
}

const customerColumns = `id, email, name, contact, razorpay_customer_id, created_at, updated_at`

func scanCustomer(row pgx.Row) (domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.Email, &c.Name, &c.Contact, &c.RazorpayCustomerID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// GetByID возвращает клиента по ID
func (r *PostgresCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	customer, err := scanCustomer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Customer{}, repository.ErrNotFound
		}
		r.log.Errorw("Failed to get customer by ID", "error", err, "customerID", id)
		return domain.Customer{}, fmt.Errorf("repository: failed to get customer by ID: %w", err)
	}

	return customer, nil
}

// GetByEmail возвращает клиента по email
func (r *PostgresCustomerRepository) GetByEmail(ctx context.Context, email string) (domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`

	customer, err := scanCustomer(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Customer{}, repository.ErrNotFound
		}
		r.log.Errorw("Failed to get customer by email", "error", err, "email", email)
		return domain.Customer{}, fmt.Errorf("repository: failed to get customer by email: %w", err)
	}

	return customer, nil
}

// Create создает нового клиента
func (r *PostgresCustomerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	now := time.Now()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	query := `
        INSERT INTO customers (id, email, name, contact, razorpay_customer_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		customer.ID, customer.Email, customer.Name, customer.Contact,
		customer.RazorpayCustomerID, customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Customer{}, repository.ErrDuplicate
		}
		r.log.Errorw("Failed to create customer", "error", err, "email", customer.Email)
		return domain.Customer{}, fmt.Errorf("repository: failed to create customer: %w", err)
	}

	r.log.Debugw("Created customer", "customerID", customer.ID, "email", customer.Email)
	return customer, nil
}

// Update обновляет существующего клиента. Email не обновляется — это натуральный ключ.
func (r *PostgresCustomerRepository) Update(ctx context.Context, customer domain.Customer) error {
	customer.UpdatedAt = time.Now()

	query := `
        UPDATE customers SET
            name = $2,
            contact = $3,
            razorpay_customer_id = $4,
            updated_at = $5
        WHERE id = $1`

	result, err := r.pool.Exec(ctx, query,
		customer.ID, customer.Name, customer.Contact,
		customer.RazorpayCustomerID, customer.UpdatedAt,
	)
	if err != nil {
		r.log.Errorw("Failed to update customer", "error", err, "customerID", customer.ID)
		return fmt.Errorf("repository: failed to update customer: %w", err)
	}

	if result.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}
