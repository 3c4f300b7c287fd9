package graph

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"socialgraph/backend/internal/state"
	"socialgraph/backend/internal/store"
	apperrors "socialgraph/backend/pkg/errors"
	"socialgraph/backend/pkg/logger"
)

// Repository owns every mutation that spans collections and keeps the
// cross-entity invariants: one profile per user, valid member types, posts
// owned by existing users, and subscription edges that never dangle after a
// user is removed.
type Repository struct {
	db      *store.DB
	cascade CascadePolicy
	logger  *zap.Logger
}

// Option configures a Repository
type Option func(*Repository)

// WithCascadePolicy selects how many posts a user deletion removes
func WithCascadePolicy(p CascadePolicy) Option {
	return func(r *Repository) {
		r.cascade = p
	}
}

// NewRepository creates a new repository over db
func NewRepository(db *store.DB, opts ...Option) *Repository {
	r := &Repository{
		db:      db,
		cascade: CascadeFirstPost,
		logger:  logger.Get(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DB returns the underlying store
func (r *Repository) DB() *store.DB {
	return r.db
}

// inconsistent turns a NotFound hit in the middle of a sequence into a conflict.
func inconsistent(operation, step string, err error) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NewConflict(operation, step, err)
	}
	return err
}

// invalid reports an entity or patch validation failure as ValidationFailed
func invalid(err error) error {
	var e state.ErrInvalidEntity
	if errors.As(err, &e) {
		return apperrors.NewValidationFailed(e.Field, e.Reason)
	}
	return err
}

func (r *Repository) tx(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	return r.db.RunInTransaction(ctx, name, fn)
}
