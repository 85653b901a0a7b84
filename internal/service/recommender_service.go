package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"compass/internal/faults"
	"compass/internal/models"
	"compass/internal/vector"
)

// SimilarityIndex is the read-only query surface of the product index.
type SimilarityIndex interface {
	Query(q []float32, k int) ([]vector.Result, error)
}

// RecommenderService runs the retrieval-and-justification pipeline for one
// customer: profile summary -> embedding -> nearest-neighbor retrieval ->
// grounding prompt -> generated justification. It holds only read-only
// state and is safe for concurrent requests.
type RecommenderService struct {
	embedder  Embedder
	index     SimilarityIndex
	generator Generator
	products  map[string]models.ProductEntry
	topK      int
	logger    *zap.Logger
}

func NewRecommenderService(
	embedder Embedder,
	index SimilarityIndex,
	generator Generator,
	entries []models.ProductEntry,
	topK int,
	logger *zap.Logger,
) *RecommenderService {
	products := make(map[string]models.ProductEntry, len(entries))
	for _, e := range entries {
		products[e.ID] = e
	}
	if topK <= 0 {
		topK = 3
	}
	return &RecommenderService{
		embedder:  embedder,
		index:     index,
		generator: generator,
		products:  products,
		topK:      topK,
		logger:    logger,
	}
}

// Recommend returns the top-k retrieved products for the customer together
// with a generated justification for the single best next product. k <= 0
// falls back to the configured default.
func (s *RecommenderService) Recommend(ctx context.Context, customer *models.Customer, k int) (*models.Recommendation, error) {
	if k <= 0 {
		k = s.topK
	}

	summary := ProfileSummary(customer)

	queryVec, err := s.embedder.Embed(ctx, summary)
	if err != nil {
		return nil, fmt.Errorf("failed to embed profile summary: %w", err)
	}

	hits, err := s.index.Query(queryVec, k)
	if err != nil {
		return nil, faults.New(faults.KindRetrievalFailure, "product retrieval failed", err)
	}

	prompt := s.buildPrompt(summary, hits)

	justification, err := s.generateWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	retrieved := make([]models.RetrievedProduct, 0, len(hits))
	for _, h := range hits {
		retrieved = append(retrieved, models.RetrievedProduct{
			ProductID:  h.ID,
			Similarity: h.Score,
		})
	}

	s.logger.Info("Recommendation generated",
		zap.Int64("customer_id", customer.ID),
		zap.Int("retrieved", len(retrieved)),
	)

	return &models.Recommendation{
		CustomerID:    customer.ID,
		Summary:       summary,
		Retrieved:     retrieved,
		Justification: sanitizeUTF8(justification),
		CreatedAt:     time.Now(),
	}, nil
}

// generateWithRetry invokes the generator, retrying exactly once when the
// failure is transient. A second failure surfaces to the caller.
func (s *RecommenderService) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	text, err := s.generator.Generate(ctx, prompt)
	if err == nil {
		return text, nil
	}
	if !faults.IsTransient(err) {
		return "", err
	}

	s.logger.Warn("Transient generation failure, retrying once", zap.Error(err))
	return s.generator.Generate(ctx, prompt)
}

// ProfileSummary renders a customer record into the fixed natural-language
// template used as the retrieval query and as prompt context.
func ProfileSummary(c *models.Customer) string {
	return fmt.Sprintf(
		"Customer profile: Age %d. Income of $%.0f. Credit score is %d. "+
			"Debt-to-income ratio is %.2f. Holds %d products, including: %s. "+
			"Digital engagement score is %d. Employment status: %s.",
		c.Age, c.Income, c.CreditScore,
		c.DebtToIncomeRatio, c.ProductCount, c.ExistingProducts,
		c.EngagementScore, c.EmploymentStatus,
	)
}

// buildPrompt assembles the grounding prompt: profile summary, the retrieved
// product descriptions labeled with their ids, and the instruction to pick
// and justify the single best next product among them.
func (s *RecommenderService) buildPrompt(summary string, hits []vector.Result) string {
	var b strings.Builder

	b.WriteString("You are an expert banking relationship manager. Your task is to recommend ")
	b.WriteString("the single best product for a customer based on their profile and a list of relevant products.\n\n")

	b.WriteString("Customer Profile:\n")
	b.WriteString(summary)
	b.WriteString("\n\nRelevant Products (from our knowledge base):\n")

	for i, h := range hits {
		entry, ok := s.products[h.ID]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, entry.ID, entry.Text)
	}

	b.WriteString("\nBased on all of this information, what is the single best product to recommend ")
	b.WriteString("to this customer? Choose only among the products listed above and refer to it by its id. ")
	b.WriteString("Provide a concise, one-paragraph justification explaining why it is the best fit, ")
	b.WriteString("referencing the customer's profile.\n\nRecommendation:\n")

	return b.String()
}
