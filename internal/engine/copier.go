package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/pkovacs/cloudkeeper/internal/classify"
	"github.com/pkovacs/cloudkeeper/internal/scan"
	"github.com/pkovacs/cloudkeeper/pkg/fileops"
)

// CopyResult is the outcome of CopyIfMissing for one item
type CopyResult int

const (
	// ResultSkipped - the item was already present at the destination
	ResultSkipped CopyResult = iota
	// ResultCopied - the item was copied to the delivery folder (or simulated in dry-run)
	ResultCopied
	// ResultFailed - the item could not be classified or never landed within the retry budget
	ResultFailed
)

// String returns the string representation of CopyResult
func (r CopyResult) String() string {
	switch r {
	case ResultSkipped:
		return "skipped"
	case ResultCopied:
		return "copied"
	case ResultFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DefaultVisibilityTimeout bounds how long one copy attempt waits for the
// destination file to surface before the attempt counts as failed.
const DefaultVisibilityTimeout = 10 * time.Second

// Copier classifies one item and copies it to the delivery folder when missing.
type Copier struct {
	Classifier        *classify.Classifier
	DeliveryDir       string
	DryRun            bool
	Retries           int
	RetryDelay        time.Duration
	VisibilityTimeout time.Duration
	Logger            *slog.Logger

	// copyFile and waitVisible are swappable for tests.
	copyFile    func(src, dst string, cancel <-chan struct{}) (int64, error)
	waitVisible func(path string, timeout time.Duration, cancel <-chan struct{}) error
}

// NewCopier creates a Copier with the real filesystem primitives.
func NewCopier(classifier *classify.Classifier, deliveryDir string, logger *slog.Logger) *Copier {
	if logger == nil {
		logger = slog.Default()
	}

	return &Copier{
		Classifier:        classifier,
		DeliveryDir:       deliveryDir,
		Retries:           1,
		VisibilityTimeout: DefaultVisibilityTimeout,
		Logger:            logger,
		copyFile:          fileops.CopyFile,
		waitVisible:       fileops.WaitVisible,
	}
}

// CopyIfMissing classifies the item and, when missing, copies it with
// retry-until-visible semantics. A Failed result is reported but never fatal
// to the run; no partial-file cleanup beyond the copy primitive's own is
// attempted.
func (c *Copier) CopyIfMissing(ctx context.Context, item *scan.SourceItem) (CopyResult, error) {
	present, err := c.Classifier.IsPresent(ctx, item)
	if err != nil {
		return ResultFailed, err
	}

	if present {
		return ResultSkipped, nil
	}

	if c.DryRun {
		c.Logger.Info("would copy", "item", item.Name, "size", item.Size, "to", c.DeliveryDir)

		return ResultCopied, nil
	}

	return c.copyWithRetry(item)
}

// copyWithRetry issues one copy attempt per retry slot and polls for the
// destination file after each, absorbing destinations that surface new files
// asynchronously or reject a write transiently.
func (c *Copier) copyWithRetry(item *scan.SourceItem) (CopyResult, error) {
	dst := filepath.Join(c.DeliveryDir, item.Name)

	var lastErr error

	for attempt := 1; attempt <= c.Retries; attempt++ {
		if attempt > 1 {
			time.Sleep(c.RetryDelay)

			c.Logger.Debug("retrying copy", "item", item.Name, "attempt", attempt)
		}

		_, err := c.copyFile(item.Path, dst, nil)
		if err != nil {
			lastErr = err

			c.Logger.Warn("copy attempt failed", "item", item.Name, "attempt", attempt, "error", err)

			continue
		}

		err = c.waitVisible(dst, c.VisibilityTimeout, nil)
		if err == nil {
			return ResultCopied, nil
		}

		lastErr = err
	}

	return ResultFailed, fmt.Errorf("copy of %s gave up after %d attempts: %w", item.Name, c.Retries, lastErr)
}
