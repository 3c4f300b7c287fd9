package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"socialgraph/backend/internal/query"
	apperrors "socialgraph/backend/pkg/errors"
)

// Record is implemented by every stored entity type.
type Record[T any] interface {
	EntityID() string
	WithID(id string) T
	Clone() T
}

// EntityStore is the per-type record store. Every operation is atomic with
// respect to its own collection only.
type EntityStore[T any] interface {
	// Create stores entity under a freshly generated id.
	Create(ctx context.Context, entity T) (T, error)
	// Insert stores entity under its own id. Used for seeding lookup tables.
	Insert(ctx context.Context, entity T) (T, error)
	// FindOne returns the first match in insertion order. No match is not an error.
	FindOne(ctx context.Context, p query.Predicate[T]) (T, bool, error)
	// FindMany returns every match in insertion order.
	FindMany(ctx context.Context, p query.Predicate[T]) ([]T, error)
	// Change applies mutate to the stored entity. The id cannot be changed.
	Change(ctx context.Context, id string, mutate func(*T) error) (T, error)
	// Delete removes and returns the entity.
	Delete(ctx context.Context, id string) (T, error)
	Len() int
}

// Collection is an in-memory EntityStore guarded by a RWMutex. Entities are
// cloned on the way in and on the way out.
type Collection[T Record[T]] struct {
	entity string
	logger *zap.Logger

	mu    sync.RWMutex
	order []string
	items map[string]T
}

// NewCollection creates an empty collection. entity names the type in errors.
func NewCollection[T Record[T]](entity string, logger *zap.Logger) *Collection[T] {
	return &Collection[T]{
		entity: entity,
		logger: logger,
		items:  make(map[string]T),
	}
}

func (c *Collection[T]) Create(ctx context.Context, entity T) (T, error) {
	if err := c.checkContext(ctx, "create"); err != nil {
		var zero T
		return zero, err
	}
	stored := entity.WithID(uuid.NewString()).Clone()

	c.mu.Lock()
	c.put(stored)
	c.mu.Unlock()

	c.logger.Debug("Entity created", zap.String("entity", c.entity), zap.String("id", stored.EntityID()))
	return stored.Clone(), nil
}

func (c *Collection[T]) Insert(ctx context.Context, entity T) (T, error) {
	var zero T
	if err := c.checkContext(ctx, "insert"); err != nil {
		return zero, err
	}
	id := entity.EntityID()
	if id == "" {
		return zero, apperrors.NewValidationFailed(c.entity+".id", "cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items[id]; exists {
		return zero, apperrors.NewConflict(c.entity+".insert", "id already exists: "+id, nil)
	}
	stored := entity.Clone()
	c.put(stored)
	return stored.Clone(), nil
}

func (c *Collection[T]) FindOne(ctx context.Context, p query.Predicate[T]) (T, bool, error) {
	var zero T
	if err := c.checkContext(ctx, "findOne"); err != nil {
		return zero, false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, id := range c.order {
		if e := c.items[id]; query.Match(p, e) {
			return e.Clone(), true, nil
		}
	}
	return zero, false, nil
}

func (c *Collection[T]) FindMany(ctx context.Context, p query.Predicate[T]) ([]T, error) {
	if err := c.checkContext(ctx, "findMany"); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		if e := c.items[id]; query.Match(p, e) {
			out = append(out, e.Clone())
		}
	}

	c.logger.Debug("Entities queried",
		zap.String("entity", c.entity),
		zap.String("predicate", query.Describe(p)),
		zap.Int("matched", len(out)))
	return out, nil
}

func (c *Collection[T]) Change(ctx context.Context, id string, mutate func(*T) error) (T, error) {
	var zero T
	if err := c.checkContext(ctx, "change"); err != nil {
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	current, ok := c.items[id]
	if !ok {
		return zero, apperrors.NewNotFound(c.entity, id)
	}
	next := current.Clone()
	if err := mutate(&next); err != nil {
		return zero, err
	}
	next = next.WithID(id)
	c.items[id] = next
	return next.Clone(), nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) (T, error) {
	var zero T
	if err := c.checkContext(ctx, "delete"); err != nil {
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	removed, ok := c.items[id]
	if !ok {
		return zero, apperrors.NewNotFound(c.entity, id)
	}
	delete(c.items, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}

	c.logger.Debug("Entity deleted", zap.String("entity", c.entity), zap.String("id", id))
	return removed, nil
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// put must be called with mu held
func (c *Collection[T]) put(e T) {
	id := e.EntityID()
	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = e
}

func (c *Collection[T]) checkContext(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewContextCancelled(c.entity+"."+op, err)
	}
	return nil
}
