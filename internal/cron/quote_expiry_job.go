package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/coopmercado/coopmercado-backend/pkg/logger"
)

type quoteExpirer interface {
	ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// QuoteExpiryJobParams configure the quote expiry sweep.
type QuoteExpiryJobParams struct {
	Logger  *logger.Logger
	Expirer quoteExpirer
}

// NewQuoteExpiryJob builds the job that persists expiry for open quotes
// whose validity window has passed. Reads already treat such quotes as
// expired; the sweep makes the stored status match.
func NewQuoteExpiryJob(params QuoteExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Expirer == nil {
		return nil, fmt.Errorf("quote expirer required")
	}
	return &quoteExpiryJob{
		logg:    params.Logger,
		expirer: params.Expirer,
		now:     time.Now,
	}, nil
}

type quoteExpiryJob struct {
	logg    *logger.Logger
	expirer quoteExpirer
	now     func() time.Time
}

func (j *quoteExpiryJob) Name() string { return "quote-expiry" }

func (j *quoteExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	count, err := j.expirer.ExpireBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("expire quotes: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "count", count)
	j.logg.Info(logCtx, "quote expiry sweep complete")
	return nil
}
