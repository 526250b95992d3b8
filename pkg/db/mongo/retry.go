package mongo

import (
	"context"
	"errors"
	"hopper/pkg/logger"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

type RetryConfig struct {
	MaxAttempts int
	Backoff     time.Duration
}

// WithRetry runs fn up to MaxAttempts times, doubling the backoff between
// attempts. Only transient persistence failures are retried; domain errors
// and duplicate keys surface immediately.
func WithRetry(ctx context.Context, cfg RetryConfig, log *logger.Logger, op string, fn func(ctx context.Context) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	backoff := cfg.Backoff
	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		log.Warn("Transient persistence failure, retrying",
			"operation", op,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return err
}

// IsTransient reports whether a persistence error is worth retrying:
// network failures, timeouts, and the driver's transient transaction labels.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return false
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return true
	}

	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		return serverErr.HasErrorLabel("TransientTransactionError") ||
			serverErr.HasErrorLabel("UnknownTransactionCommitResult")
	}
	return false
}
