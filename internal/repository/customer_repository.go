package repository

import (
	"context"
	"errors"
	"fmt"

	"compass/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var ErrCustomerNotFound = errors.New("customer not found")

// customerColumns lists base columns plus the derived features computed in
// SQL on every read: debt-to-income ratio, digital engagement score, and the
// number of held products (comma count over existing_products).
var customerColumns = []string{
	"customer_id", "age", "income", "city", "employment_status", "credit_score",
	"existing_products", "account_balance", "total_debt", "number_of_open_accounts",
	"payment_history", "app_logins_per_month", "customer_service_calls",
	"website_visits_per_month", "created_at",
	"total_debt / NULLIF(income, 0) AS debt_to_income_ratio",
	"app_logins_per_month + website_visits_per_month AS engagement_score",
	"LENGTH(existing_products) - LENGTH(REPLACE(existing_products, ',', '')) + 1 AS product_count",
}

type CustomerRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCustomerRepository(db *pgxpool.Pool, logger *zap.Logger) *CustomerRepository {
	return &CustomerRepository{
		db:     db,
		logger: logger,
	}
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	query := squirrel.Select(customerColumns...).
		From("customers").
		Where(squirrel.Eq{"customer_id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var c models.Customer
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&c.ID, &c.Age, &c.Income, &c.City, &c.EmploymentStatus, &c.CreditScore,
		&c.ExistingProducts, &c.AccountBalance, &c.TotalDebt, &c.OpenAccounts,
		&c.PaymentHistory, &c.AppLoginsPerMonth, &c.ServiceCalls,
		&c.WebVisitsPerMonth, &c.CreatedAt,
		&c.DebtToIncomeRatio, &c.EngagementScore, &c.ProductCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to load customer %d: %w", id, err)
	}

	return &c, nil
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	query := squirrel.Insert("customers").
		Columns("customer_id", "age", "income", "city", "employment_status", "credit_score",
			"existing_products", "account_balance", "total_debt", "number_of_open_accounts",
			"payment_history", "app_logins_per_month", "customer_service_calls",
			"website_visits_per_month", "created_at").
		Values(c.ID, c.Age, c.Income, c.City, c.EmploymentStatus, c.CreditScore,
			c.ExistingProducts, c.AccountBalance, c.TotalDebt, c.OpenAccounts,
			c.PaymentHistory, c.AppLoginsPerMonth, c.ServiceCalls,
			c.WebVisitsPerMonth, c.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	sql, args, err := squirrel.Select("COUNT(*)").
		From("customers").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return count, nil
}
