package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"compass/internal/faults"
	"compass/internal/knowledge"
	"compass/internal/models"
	"compass/internal/vector"
)

// BuildOrLoadIndex restores the persisted product index when its stored
// fingerprint matches the current knowledge base content, and otherwise
// rebuilds it by embedding every product and saves the result. It runs to
// completion before the server starts accepting queries.
func BuildOrLoadIndex(
	ctx context.Context,
	embedder Embedder,
	entries []models.ProductEntry,
	indexPath string,
	logger *zap.Logger,
) (*vector.Index, error) {
	fingerprint := knowledge.Fingerprint(entries)

	idx, err := vector.Load(indexPath)
	switch {
	case err == nil && idx.Fingerprint() == fingerprint:
		logger.Info("Loaded persisted index",
			zap.String("path", indexPath),
			zap.Int("entries", idx.Len()),
		)
		return idx, nil
	case err == nil:
		logger.Info("Persisted index is stale, rebuilding", zap.String("path", indexPath))
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("No persisted index found, building", zap.String("path", indexPath))
	default:
		logger.Warn("Persisted index unreadable, rebuilding", zap.Error(err))
	}

	return rebuildIndex(ctx, embedder, entries, fingerprint, indexPath, logger)
}

func rebuildIndex(
	ctx context.Context,
	embedder Embedder,
	entries []models.ProductEntry,
	fingerprint string,
	indexPath string,
	logger *zap.Logger,
) (*vector.Index, error) {
	if len(entries) == 0 {
		return nil, faults.Newf(faults.KindEmptyCorpus, "knowledge base has no product entries")
	}

	logger.Info("Embedding product descriptions", zap.Int("count", len(entries)))

	vectorEntries := make([]vector.Entry, 0, len(entries))
	for _, e := range entries {
		vec, err := embedder.Embed(ctx, e.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed product %q: %w", e.ID, err)
		}
		vectorEntries = append(vectorEntries, vector.Entry{ID: e.ID, Vector: vec})
	}

	idx, err := vector.Build(vectorEntries, fingerprint)
	if err != nil {
		return nil, err
	}

	if err := idx.Save(indexPath); err != nil {
		// Queries work from the in-memory index; persistence only speeds up
		// the next start.
		logger.Warn("Failed to persist index", zap.String("path", indexPath), zap.Error(err))
	} else {
		logger.Info("Index built and persisted",
			zap.String("path", indexPath),
			zap.Int("entries", idx.Len()),
			zap.Int("dimension", idx.Dimension()),
		)
	}

	return idx, nil
}
