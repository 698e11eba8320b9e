package service

import (
	"context"
	"log/slog"

	"github.com/vbonduro/fridgechef/internal/domain"
	"github.com/vbonduro/fridgechef/internal/session"
	"github.com/vbonduro/fridgechef/internal/vision"
)

// ImageFailure records one image whose extraction failed.
type ImageFailure struct {
	Index int
	Err   error
}

type BatchResult struct {
	Processed int
	// Added lists names that were new to the session's ingredient set.
	Added    []string
	Failures []ImageFailure
}

// BatchProcessor runs the extractor over a batch of images one at a time, in
// submission order, merging each result into the session.
type BatchProcessor struct {
	extractor vision.Extractor
	logger    *slog.Logger
}

func NewBatchProcessor(extractor vision.Extractor, logger *slog.Logger) *BatchProcessor {
	return &BatchProcessor{extractor: extractor, logger: logger}
}

// ProcessBatch never fails because of an individual image; those failures are
// recorded in the result and the batch continues. The only error is
// session.ErrBusy, returned before anything is touched.
func (p *BatchProcessor) ProcessBatch(ctx context.Context, sess *session.Session, images []domain.ImageRecord) (BatchResult, error) {
	result := BatchResult{Added: []string{}}

	if err := sess.Begin(); err != nil {
		return result, err
	}
	defer sess.End()

	p.logger.Info("image batch started", "session_id", sess.ID, "images", len(images))

	for i, img := range images {
		sess.AddImage(img)
		result.Processed++

		names, err := p.extractor.Extract(ctx, img)
		if err != nil {
			p.logger.Error("ingredient extraction failed", "session_id", sess.ID, "image", i, "error", err)
			result.Failures = append(result.Failures, ImageFailure{Index: i, Err: err})
			continue
		}

		added := sess.MergeIngredients(names)
		result.Added = append(result.Added, added...)
		p.logger.Debug("image processed", "session_id", sess.ID, "image", i, "detected", len(names), "added", len(added))
	}

	p.logger.Info("image batch complete", "session_id", sess.ID, "processed", result.Processed, "failed", len(result.Failures))
	return result, nil
}
