package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"compass/internal/knowledge"
	"compass/internal/models"
	"compass/internal/repository"
	"compass/pkg/config"
	"compass/pkg/logger"
	"compass/pkg/postgres"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const defaultCustomerCount = 500

var productList = []string{
	"Savings Account", "Checking Account", "Credit Card", "Mortgage",
	"Personal Loan", "Auto Loan", "Investment Account",
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	appLogger.Info("Starting database seeding...")

	if err := ensureSchema(ctx, db); err != nil {
		appLogger.Fatal("Failed to create schema", zap.Error(err))
	}

	if err := writeKnowledgeBase(cfg.Knowledge.ProductsPath, appLogger); err != nil {
		appLogger.Fatal("Failed to write knowledge base", zap.Error(err))
	}

	customerRepo := repository.NewCustomerRepository(db, appLogger)
	if err := seedCustomers(ctx, customerRepo, appLogger); err != nil {
		appLogger.Fatal("Failed to seed customers", zap.Error(err))
	}

	appLogger.Info("Database seeding completed successfully!")
}

func ensureSchema(ctx context.Context, db *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS customers (
			customer_id BIGINT PRIMARY KEY,
			age INT NOT NULL,
			income DOUBLE PRECISION NOT NULL,
			city TEXT NOT NULL,
			employment_status TEXT NOT NULL,
			credit_score INT NOT NULL,
			existing_products TEXT NOT NULL,
			account_balance DOUBLE PRECISION NOT NULL,
			total_debt DOUBLE PRECISION NOT NULL,
			number_of_open_accounts INT NOT NULL,
			payment_history TEXT NOT NULL,
			app_logins_per_month INT NOT NULL,
			customer_service_calls INT NOT NULL,
			website_visits_per_month INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// seedCustomers generates synthetic banking customers. Debt is derived from
// income via a random debt-to-income ratio so the profiles hang together.
func seedCustomers(ctx context.Context, repo *repository.CustomerRepository, appLogger *zap.Logger) error {
	existing, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if existing > 0 {
		appLogger.Info("Customers already seeded, skipping", zap.Int64("count", existing))
		return nil
	}

	count := defaultCustomerCount
	if v := os.Getenv("SEED_CUSTOMERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			count = n
		}
	}

	faker := gofakeit.New(0)
	start := time.Now()
	appLogger.Info("Generating synthetic customers", zap.Int("count", count))

	for i := 0; i < count; i++ {
		income := float64(faker.IntRange(25000, 250000))
		dti := faker.Float64Range(0.1, 1.5)

		c := &models.Customer{
			ID:                int64(i + 1),
			Age:               faker.IntRange(18, 80),
			Income:            income,
			City:              faker.City(),
			EmploymentStatus:  pickEmployment(faker),
			CreditScore:       faker.IntRange(300, 850),
			ExistingProducts:  pickProducts(faker),
			AccountBalance:    faker.Float64Range(500, 150000),
			TotalDebt:         income * dti,
			OpenAccounts:      faker.IntRange(1, 15),
			PaymentHistory:    pickPaymentHistory(faker),
			AppLoginsPerMonth: faker.IntRange(0, 50),
			ServiceCalls:      faker.IntRange(0, 10),
			WebVisitsPerMonth: faker.IntRange(0, 30),
			CreatedAt:         time.Now(),
		}

		if err := repo.Create(ctx, c); err != nil {
			return err
		}

		if (i+1)%100 == 0 {
			appLogger.Info("Seeding progress", zap.Int("generated", i+1), zap.Int("total", count))
		}
	}

	appLogger.Info("Customer generation finished",
		zap.Int("count", count),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func pickEmployment(faker *gofakeit.Faker) models.EmploymentStatus {
	v, _ := faker.Weighted(
		[]any{models.EmploymentEmployed, models.EmploymentSelfEmployed, models.EmploymentUnemployed, models.EmploymentStudent},
		[]float32{0.6, 0.2, 0.1, 0.1},
	)
	return v.(models.EmploymentStatus)
}

func pickPaymentHistory(faker *gofakeit.Faker) models.PaymentHistory {
	v, _ := faker.Weighted(
		[]any{models.PaymentOnTime, models.PaymentLate, models.PaymentMixed},
		[]float32{0.7, 0.1, 0.2},
	)
	return v.(models.PaymentHistory)
}

// pickProducts samples 1-4 distinct products from the catalog.
func pickProducts(faker *gofakeit.Faker) string {
	shuffled := make([]string, len(productList))
	copy(shuffled, productList)
	faker.ShuffleStrings(shuffled)

	n := faker.IntRange(1, 4)
	result := shuffled[0]
	for i := 1; i < n; i++ {
		result += "," + shuffled[i]
	}
	return result
}

// writeKnowledgeBase writes the default product knowledge base file when it
// does not already exist.
func writeKnowledgeBase(path string, appLogger *zap.Logger) error {
	if _, err := os.Stat(path); err == nil {
		appLogger.Info("Knowledge base already exists, skipping", zap.String("path", path))
		return nil
	}

	appLogger.Info("Writing default knowledge base", zap.String("path", path))
	return os.WriteFile(path, []byte(defaultKnowledgeBase), 0644)
}

var defaultKnowledgeBase = `Savings Account
A high-yield savings account with no monthly fees and a competitive interest rate.
Ideal for customers building an emergency fund or saving toward a goal. No minimum
balance requirement and unlimited deposits.
` + knowledge.Separator + `
Checking Account
An everyday checking account with no overdraft fees, free online bill pay, and a
debit card. Suited to customers who want a simple primary account for salary
deposits and daily spending.
` + knowledge.Separator + `
Credit Card
A rewards credit card with cash back on everyday purchases and no annual fee.
Best for customers with a good credit score and on-time payment history who do
not yet hold a card with us.
` + knowledge.Separator + `
Mortgage
A fixed-rate home loan with flexible terms from 15 to 30 years. Designed for
customers with stable income, a strong credit score, and a manageable
debt-to-income ratio who are ready to buy a home.
` + knowledge.Separator + `
Personal Loan
An unsecured personal loan for consolidating debt or covering large expenses,
with fixed monthly payments. A fit for customers with higher debt-to-income
ratios looking to simplify their obligations.
` + knowledge.Separator + `
Auto Loan
A competitive-rate vehicle loan with terms up to 72 months and no prepayment
penalty. Suited to employed customers planning a car purchase.
` + knowledge.Separator + `
Investment Account
A brokerage account with low-cost index funds and advisory support. Aimed at
high-balance customers with low debt who want their surplus cash working
harder than a savings rate.
`
