package dto

type RetrievedProductResponse struct {
	ProductID  string  `json:"product_id"`
	Similarity float64 `json:"similarity"`
}

type RecommendationResponse struct {
	CustomerID    int64                      `json:"customer_id"`
	Summary       string                     `json:"summary"`
	Retrieved     []RetrievedProductResponse `json:"retrieved"`
	Justification string                     `json:"justification"`
	CreatedAt     string                     `json:"created_at"`
}

type CustomerResponse struct {
	CustomerID        int64   `json:"customer_id"`
	Age               int     `json:"age"`
	Income            float64 `json:"income"`
	City              string  `json:"city"`
	EmploymentStatus  string  `json:"employment_status"`
	CreditScore       int     `json:"credit_score"`
	ExistingProducts  string  `json:"existing_products"`
	AccountBalance    float64 `json:"account_balance"`
	TotalDebt         float64 `json:"total_debt"`
	DebtToIncomeRatio float64 `json:"debt_to_income_ratio"`
	EngagementScore   int     `json:"engagement_score"`
	ProductCount      int     `json:"product_count"`
	PaymentHistory    string  `json:"payment_history"`
}
