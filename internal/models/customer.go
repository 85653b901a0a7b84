package models

import "time"

type EmploymentStatus string

const (
	EmploymentEmployed     EmploymentStatus = "Employed"
	EmploymentSelfEmployed EmploymentStatus = "Self-Employed"
	EmploymentUnemployed   EmploymentStatus = "Unemployed"
	EmploymentStudent      EmploymentStatus = "Student"
)

type PaymentHistory string

const (
	PaymentOnTime PaymentHistory = "On-time"
	PaymentLate   PaymentHistory = "Late"
	PaymentMixed  PaymentHistory = "Mixed"
)

// Customer is a feature-engineered banking customer profile. Base columns are
// written by cmd/seed; the derived fields (DebtToIncomeRatio, EngagementScore,
// ProductCount) are computed in SQL when the record is read.
type Customer struct {
	ID                   int64            `db:"customer_id"`
	Age                  int              `db:"age"`
	Income               float64          `db:"income"`
	City                 string           `db:"city"`
	EmploymentStatus     EmploymentStatus `db:"employment_status"`
	CreditScore          int              `db:"credit_score"`
	ExistingProducts     string           `db:"existing_products"` // comma-separated product names
	AccountBalance       float64          `db:"account_balance"`
	TotalDebt            float64          `db:"total_debt"`
	OpenAccounts         int              `db:"number_of_open_accounts"`
	PaymentHistory       PaymentHistory   `db:"payment_history"`
	AppLoginsPerMonth    int              `db:"app_logins_per_month"`
	ServiceCalls         int              `db:"customer_service_calls"`
	WebVisitsPerMonth    int              `db:"website_visits_per_month"`
	CreatedAt            time.Time        `db:"created_at"`

	DebtToIncomeRatio float64 `db:"debt_to_income_ratio"`
	EngagementScore   int     `db:"engagement_score"`
	ProductCount      int     `db:"product_count"`
}
