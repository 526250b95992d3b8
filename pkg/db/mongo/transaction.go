// Package mongo carries the transactional plumbing the booking admission
// path runs on: a session-scoped TransactionManager plus a bounded retry
// helper for transient persistence failures.
package mongo

import (
	"context"
	"fmt"
	apperrors "hopper/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// TransactionFunc runs inside a Mongo session. Repositories recognize the
// session context and skip wrapping it with their own timeouts, so the
// overlap recheck, the booking insert and the credit debit all commit or
// roll back together.
type TransactionFunc func(ctx mongo.SessionContext) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
}

func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{
		client: client,
	}
}

func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	})

	if err != nil {
		// Admission rejections (conflict, capacity, credits) abort the
		// transaction but must keep their codes for the HTTP mapping.
		if apperrors.IsAppError(err) {
			return err
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}
