package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"hopper/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Service: "test"})
}

func transientErr() error {
	return mongo.CommandError{
		Code:    112,
		Message: "write conflict",
		Labels:  []string{"TransientTransactionError"},
	}
}

func TestWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, Backoff: time.Millisecond}

	calls := 0
	err := WithRetry(context.Background(), cfg, testLogger(), "insert", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return transientErr()
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestWithRetry_DoesNotRetryDomainErrors(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, Backoff: time.Millisecond}
	domainErr := errors.New("slot already booked")

	calls := 0
	err := WithRetry(context.Background(), cfg, testLogger(), "insert", func(ctx context.Context) error {
		calls++
		return domainErr
	})

	if !errors.Is(err, domainErr) {
		t.Fatalf("expected domain error to surface, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", calls)
	}
}

func TestWithRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 2, Backoff: time.Millisecond}

	calls := 0
	err := WithRetry(context.Background(), cfg, testLogger(), "insert", func(ctx context.Context) error {
		calls++
		return transientErr()
	})

	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"transient transaction label", transientErr(), true},
		{"unknown commit result", mongo.CommandError{Labels: []string{"UnknownTransactionCommitResult"}}, true},
		{"other server error", mongo.CommandError{Code: 11000, Message: "duplicate"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.transient {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.transient)
			}
		})
	}
}
