package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"compass/internal/faults"
	"compass/internal/knowledge"
	"compass/internal/models"
	"compass/internal/vector"
)

const testKnowledgeBase = `Savings Account
A high-yield savings account with no monthly fees and competitive interest rates.
Ideal for customers with healthy balances looking to grow their money safely.
--------------------------------
Credit Card
A rewards credit card with cashback on everyday purchases and no annual fee.
Best suited for customers with good credit scores and regular spending.
--------------------------------
Home Loan
A fixed-rate mortgage with flexible terms for first-time and repeat buyers.
Designed for customers with stable income and strong payment history.`

// stubGenerator replays a scripted sequence of replies and errors and counts
// how many times it was invoked.
type stubGenerator struct {
	replies []string
	errs    []error
	calls   int
}

func (g *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	i := g.calls
	g.calls++
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.replies) {
		return g.replies[i], nil
	}
	return "", errors.New("stub exhausted")
}

type failingIndex struct{ err error }

func (f *failingIndex) Query(_ []float32, _ int) ([]vector.Result, error) {
	return nil, f.err
}

type failingEmbedder struct{ err error }

func (f *failingEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, f.err
}

func testCustomer() *models.Customer {
	return &models.Customer{
		ID:                42,
		Age:               34,
		Income:            95000,
		City:              "Austin",
		EmploymentStatus:  models.EmploymentEmployed,
		CreditScore:       742,
		ExistingProducts:  "checking_account,savings_account",
		AccountBalance:    48000,
		TotalDebt:         12000,
		DebtToIncomeRatio: 0.13,
		EngagementScore:   22,
		ProductCount:      2,
	}
}

// testPipeline builds a recommender over the fixture knowledge base using the
// deterministic embedder, so retrieval results are reproducible.
func testPipeline(t *testing.T, gen Generator) (*RecommenderService, []models.ProductEntry, *vector.Index, Embedder) {
	t.Helper()

	entries, err := knowledge.Parse(testKnowledgeBase)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	embedder := vector.NewMockEmbedder(64)
	vecs := make([]vector.Entry, 0, len(entries))
	for _, e := range entries {
		v, err := embedder.Embed(context.Background(), e.Text)
		if err != nil {
			t.Fatalf("Embed() error: %v", err)
		}
		vecs = append(vecs, vector.Entry{ID: e.ID, Vector: v})
	}
	idx, err := vector.Build(vecs, knowledge.Fingerprint(entries))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	svc := NewRecommenderService(embedder, idx, gen, entries, 3, zap.NewNop())
	return svc, entries, idx, embedder
}

func TestRecommendPipeline(t *testing.T) {
	customer := testCustomer()

	// Precompute the expected top hit so the stub reply can reference it.
	_, entries, idx, embedder := testPipeline(t, &stubGenerator{})
	queryVec, err := embedder.Embed(context.Background(), ProfileSummary(customer))
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	expected, err := idx.Query(queryVec, 2)
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if len(expected) != 2 {
		t.Fatalf("probe query returned %d results, want 2", len(expected))
	}

	gen := &stubGenerator{replies: []string{
		fmt.Sprintf("The best next product is [%s] because it matches the customer's strong balance and credit profile.", expected[0].ID),
	}}
	svc, _, _, _ := testPipeline(t, gen)

	rec, err := svc.Recommend(context.Background(), customer, 2)
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}

	if rec.CustomerID != customer.ID {
		t.Errorf("CustomerID = %d, want %d", rec.CustomerID, customer.ID)
	}
	if rec.Summary != ProfileSummary(customer) {
		t.Errorf("Summary = %q, want the rendered profile summary", rec.Summary)
	}
	if len(rec.Retrieved) != 2 {
		t.Fatalf("Retrieved has %d products, want 2", len(rec.Retrieved))
	}
	for i, r := range rec.Retrieved {
		if r.ProductID != expected[i].ID {
			t.Errorf("Retrieved[%d].ProductID = %q, want %q", i, r.ProductID, expected[i].ID)
		}
		if r.Similarity != expected[i].Score {
			t.Errorf("Retrieved[%d].Similarity = %v, want %v", i, r.Similarity, expected[i].Score)
		}
	}
	if rec.Justification == "" {
		t.Error("Justification should not be empty")
	}
	if !strings.Contains(rec.Justification, expected[0].ID) {
		t.Errorf("Justification %q should reference the top retrieved id %q", rec.Justification, expected[0].ID)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}

	// Retrieval never returns ids outside the knowledge base.
	known := make(map[string]bool, len(entries))
	for _, e := range entries {
		known[e.ID] = true
	}
	for _, r := range rec.Retrieved {
		if !known[r.ProductID] {
			t.Errorf("Retrieved product %q is not in the knowledge base", r.ProductID)
		}
	}
}

func TestRecommendDefaultK(t *testing.T) {
	gen := &stubGenerator{replies: []string{"Pick the savings-account."}}
	svc, _, _, _ := testPipeline(t, gen)

	rec, err := svc.Recommend(context.Background(), testCustomer(), 0)
	if err != nil {
		t.Fatalf("Recommend() error: %v", err)
	}
	if len(rec.Retrieved) != 3 {
		t.Errorf("Retrieved has %d products with default k, want 3", len(rec.Retrieved))
	}
}

func TestRecommendRetriesTransientOnce(t *testing.T) {
	transient := faults.Newf(faults.KindGenerationFailure, "upstream 503").MarkTransient()
	gen := &stubGenerator{
		errs:    []error{transient, nil},
		replies: []string{"", "The credit-card is the best fit."},
	}
	svc, _, _, _ := testPipeline(t, gen)

	rec, err := svc.Recommend(context.Background(), testCustomer(), 2)
	if err != nil {
		t.Fatalf("Recommend() error after transient failure: %v", err)
	}
	if gen.calls != 2 {
		t.Errorf("generator called %d times, want 2", gen.calls)
	}
	if rec.Justification != "The credit-card is the best fit." {
		t.Errorf("Justification = %q, want the retry reply", rec.Justification)
	}
}

func TestRecommendNoRetryOnPermanentFailure(t *testing.T) {
	permanent := faults.Newf(faults.KindGenerationFailure, "invalid api key")
	gen := &stubGenerator{errs: []error{permanent}}
	svc, _, _, _ := testPipeline(t, gen)

	_, err := svc.Recommend(context.Background(), testCustomer(), 2)
	if !faults.Is(err, faults.KindGenerationFailure) {
		t.Fatalf("Recommend() error kind = %q, want %q", faults.KindOf(err), faults.KindGenerationFailure)
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
}

func TestRecommendGivesUpAfterSecondTransientFailure(t *testing.T) {
	transient := func() error {
		return faults.Newf(faults.KindGenerationFailure, "upstream timeout").MarkTransient()
	}
	gen := &stubGenerator{errs: []error{transient(), transient()}}
	svc, _, _, _ := testPipeline(t, gen)

	_, err := svc.Recommend(context.Background(), testCustomer(), 2)
	if !faults.Is(err, faults.KindGenerationFailure) {
		t.Fatalf("Recommend() error kind = %q, want %q", faults.KindOf(err), faults.KindGenerationFailure)
	}
	if gen.calls != 2 {
		t.Errorf("generator called %d times, want 2", gen.calls)
	}
}

func TestRecommendIndexFailure(t *testing.T) {
	svc := NewRecommenderService(
		vector.NewMockEmbedder(64),
		&failingIndex{err: errors.New("graph not initialized")},
		&stubGenerator{},
		nil, 3, zap.NewNop(),
	)

	_, err := svc.Recommend(context.Background(), testCustomer(), 2)
	if !faults.Is(err, faults.KindRetrievalFailure) {
		t.Fatalf("Recommend() error kind = %q, want %q", faults.KindOf(err), faults.KindRetrievalFailure)
	}
}

func TestRecommendEmbedFailure(t *testing.T) {
	cause := faults.Newf(faults.KindRetrievalFailure, "embedding request failed")
	svc := NewRecommenderService(
		&failingEmbedder{err: cause},
		&failingIndex{err: errors.New("unreachable")},
		&stubGenerator{},
		nil, 3, zap.NewNop(),
	)

	_, err := svc.Recommend(context.Background(), testCustomer(), 2)
	if !faults.Is(err, faults.KindRetrievalFailure) {
		t.Fatalf("Recommend() error kind = %q, want %q", faults.KindOf(err), faults.KindRetrievalFailure)
	}
}

func TestProfileSummary(t *testing.T) {
	got := ProfileSummary(testCustomer())
	want := "Customer profile: Age 34. Income of $95000. Credit score is 742. " +
		"Debt-to-income ratio is 0.13. Holds 2 products, including: checking_account,savings_account. " +
		"Digital engagement score is 22. Employment status: Employed."
	if got != want {
		t.Errorf("ProfileSummary() = %q, want %q", got, want)
	}
}

func TestBuildPromptGroundsOnRetrievedProducts(t *testing.T) {
	svc, entries, idx, embedder := testPipeline(t, &stubGenerator{})

	queryVec, err := embedder.Embed(context.Background(), "growing savings safely")
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	hits, err := idx.Query(queryVec, 2)
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}

	prompt := svc.buildPrompt("Customer profile: test.", hits)

	if !strings.Contains(prompt, "Customer Profile:") {
		t.Error("prompt should contain the profile section")
	}
	for i, h := range hits {
		label := fmt.Sprintf("%d. [%s]", i+1, h.ID)
		if !strings.Contains(prompt, label) {
			t.Errorf("prompt should label retrieved product as %q", label)
		}
	}
	for _, e := range entries {
		inHits := false
		for _, h := range hits {
			if h.ID == e.ID {
				inHits = true
			}
		}
		if !inHits && strings.Contains(prompt, "["+e.ID+"]") {
			t.Errorf("prompt should not include unretrieved product %q", e.ID)
		}
	}
	if !strings.Contains(prompt, "single best product") {
		t.Error("prompt should instruct the model to pick the single best product")
	}
}
