package store

import (
	"context"
	"time"

	"go.uber.org/zap"

	"socialgraph/backend/internal/state"
	apperrors "socialgraph/backend/pkg/errors"
	"socialgraph/backend/pkg/logger"
)

// DB bundles the four entity collections. It is passed explicitly to every
// component that needs it.
type DB struct {
	Users       EntityStore[state.User]
	Profiles    EntityStore[state.Profile]
	Posts       EntityStore[state.Post]
	MemberTypes EntityStore[state.MemberType]

	writer chan struct{}
	logger *zap.Logger
}

type txKey struct{}

// New creates an empty database
func New() *DB {
	log := logger.Get()
	return &DB{
		Users:       NewCollection[state.User]("user", log),
		Profiles:    NewCollection[state.Profile]("profile", log),
		Posts:       NewCollection[state.Post]("post", log),
		MemberTypes: NewCollection[state.MemberType]("memberType", log),
		writer:      make(chan struct{}, 1),
		logger:      log,
	}
}

// RunInTransaction runs fn as the only writer scope on db. Scopes are
// serialized; single reads and plain writes outside a scope are not blocked.
// Nested calls with the ctx handed to fn run inline. There is no rollback:
// when fn fails, the steps it already completed stay applied.
func (db *DB) RunInTransaction(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if owner, ok := ctx.Value(txKey{}).(*DB); ok && owner == db {
		return fn(ctx)
	}

	start := time.Now()
	select {
	case db.writer <- struct{}{}:
	case <-ctx.Done():
		return apperrors.NewContextCancelled(name, ctx.Err())
	}
	defer func() { <-db.writer }()

	waited := time.Since(start)
	err := fn(context.WithValue(ctx, txKey{}, db))

	fields := []zap.Field{
		zap.String("operation", name),
		zap.Duration("waited", waited),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		db.logger.Debug("Transaction aborted", append(fields, zap.Error(err))...)
		return err
	}
	db.logger.Debug("Transaction committed", fields...)
	return nil
}
