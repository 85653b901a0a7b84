package handlers

import (
	"errors"
	"time"

	"compass/internal/dto"
	"compass/internal/faults"
	"compass/internal/models"
	"compass/internal/repository"
	"compass/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CustomerHandler struct {
	customerRepo *repository.CustomerRepository
	recommender  *service.RecommenderService
	logger       *zap.Logger
}

func NewCustomerHandler(
	customerRepo *repository.CustomerRepository,
	recommender *service.RecommenderService,
	logger *zap.Logger,
) *CustomerHandler {
	return &CustomerHandler{
		customerRepo: customerRepo,
		recommender:  recommender,
		logger:       logger,
	}
}

// GetCustomer godoc
// @Summary Get a customer snapshot
// @Description Get a customer profile with derived features
// @Tags customers
// @Produce json
// @Param id path int true "Customer ID"
// @Security Bearer
// @Success 200 {object} dto.CustomerResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid customer ID",
		})
	}

	customer, err := h.customerRepo.GetByID(c.Context(), int64(id))
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Customer not found",
			})
		}
		h.logger.Error("Failed to load customer", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load customer",
		})
	}

	return c.JSON(toCustomerResponse(customer))
}

// Recommend godoc
// @Summary Generate a product recommendation
// @Description Run the retrieval-and-justification pipeline for a customer
// @Tags customers
// @Produce json
// @Param id path int true "Customer ID"
// @Param k query int false "Number of products to retrieve" default(3)
// @Security Bearer
// @Success 200 {object} dto.RecommendationResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /api/v1/customers/{id}/recommendation [post]
func (h *CustomerHandler) Recommend(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid customer ID",
		})
	}
	k := c.QueryInt("k", 0)

	customer, err := h.customerRepo.GetByID(c.Context(), int64(id))
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Customer not found",
			})
		}
		h.logger.Error("Failed to load customer", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load customer",
		})
	}

	rec, err := h.recommender.Recommend(c.Context(), customer, k)
	if err != nil {
		h.logger.Error("Recommendation failed",
			zap.Int64("customer_id", customer.ID),
			zap.Error(err),
		)
		return c.Status(statusForFault(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	retrieved := make([]dto.RetrievedProductResponse, 0, len(rec.Retrieved))
	for _, r := range rec.Retrieved {
		retrieved = append(retrieved, dto.RetrievedProductResponse{
			ProductID:  r.ProductID,
			Similarity: r.Similarity,
		})
	}

	return c.JSON(dto.RecommendationResponse{
		CustomerID:    rec.CustomerID,
		Summary:       rec.Summary,
		Retrieved:     retrieved,
		Justification: rec.Justification,
		CreatedAt:     rec.CreatedAt.Format(time.RFC3339),
	})
}

// statusForFault maps pipeline error kinds to HTTP statuses. The dashboard
// shows the message in an error banner and withholds the recommendation.
func statusForFault(err error) int {
	switch faults.KindOf(err) {
	case faults.KindInvalidInput, faults.KindDimensionMismatch:
		return fiber.StatusBadRequest
	case faults.KindGenerationFailure:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func toCustomerResponse(c *models.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		CustomerID:        c.ID,
		Age:               c.Age,
		Income:            c.Income,
		City:              c.City,
		EmploymentStatus:  string(c.EmploymentStatus),
		CreditScore:       c.CreditScore,
		ExistingProducts:  c.ExistingProducts,
		AccountBalance:    c.AccountBalance,
		TotalDebt:         c.TotalDebt,
		DebtToIncomeRatio: c.DebtToIncomeRatio,
		EngagementScore:   c.EngagementScore,
		ProductCount:      c.ProductCount,
		PaymentHistory:    string(c.PaymentHistory),
	}
}
