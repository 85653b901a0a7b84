package models

import "time"

// RetrievedProduct is one nearest-neighbor hit: product ID plus its cosine
// similarity to the customer query vector.
type RetrievedProduct struct {
	ProductID  string
	Similarity float64
}

// Recommendation is the result of one pipeline run. It is returned to the
// caller and not persisted.
type Recommendation struct {
	CustomerID    int64
	Summary       string // natural-language profile summary used as the query
	Retrieved     []RetrievedProduct
	Justification string // generator output, verbatim
	CreatedAt     time.Time
}
