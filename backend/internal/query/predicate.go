// Package query evaluates the closed set of predicates the store understands.
package query

import (
	"fmt"
	"strings"
)

// Key reads a scalar string attribute from an entity.
type Key[T any] struct {
	Name string
	Get  func(T) string
}

// Membership is a set-valued attribute.
type Membership interface {
	Contains(id string) bool
}

// SetKey reads a set-valued attribute from an entity.
type SetKey[T any] struct {
	Name string
	Get  func(T) Membership
}

// Predicate is a match condition over entities of type T. The set of
// variants is closed: Equals, EqualsAnyOf, ArrayContains and None.
type Predicate[T any] interface {
	predicate(T)
}

// Equals matches when Key(entity) == Value.
type Equals[T any] struct {
	Key   Key[T]
	Value string
}

// EqualsAnyOf matches when Key(entity) is one of Values. No values match nothing.
type EqualsAnyOf[T any] struct {
	Key    Key[T]
	Values []string
}

// ArrayContains matches when the set at Key(entity) contains Value.
type ArrayContains[T any] struct {
	Key   SetKey[T]
	Value string
}

// None matches every entity.
type None[T any] struct{}

func (Equals[T]) predicate(T)        {}
func (EqualsAnyOf[T]) predicate(T)   {}
func (ArrayContains[T]) predicate(T) {}
func (None[T]) predicate(T)          {}

// Eq builds an Equals predicate.
func Eq[T any](key Key[T], value string) Predicate[T] {
	return Equals[T]{Key: key, Value: value}
}

// In builds an EqualsAnyOf predicate.
func In[T any](key Key[T], values []string) Predicate[T] {
	return EqualsAnyOf[T]{Key: key, Values: values}
}

// Contains builds an ArrayContains predicate.
func Contains[T any](key SetKey[T], value string) Predicate[T] {
	return ArrayContains[T]{Key: key, Value: value}
}

// All builds a None predicate.
func All[T any]() Predicate[T] {
	return None[T]{}
}

// Match reports whether entity satisfies p. A nil predicate matches everything.
func Match[T any](p Predicate[T], entity T) bool {
	switch q := p.(type) {
	case nil, None[T]:
		return true
	case Equals[T]:
		return q.Key.Get(entity) == q.Value
	case EqualsAnyOf[T]:
		v := q.Key.Get(entity)
		for _, candidate := range q.Values {
			if candidate == v {
				return true
			}
		}
		return false
	case ArrayContains[T]:
		set := q.Key.Get(entity)
		return set != nil && set.Contains(q.Value)
	default:
		panic(fmt.Sprintf("query: unknown predicate %T", p))
	}
}

// Describe renders p for log fields.
func Describe[T any](p Predicate[T]) string {
	switch q := p.(type) {
	case nil, None[T]:
		return "*"
	case Equals[T]:
		return fmt.Sprintf("%s = %q", q.Key.Name, q.Value)
	case EqualsAnyOf[T]:
		return fmt.Sprintf("%s in [%s]", q.Key.Name, strings.Join(q.Values, ","))
	case ArrayContains[T]:
		return fmt.Sprintf("%s contains %q", q.Key.Name, q.Value)
	default:
		return fmt.Sprintf("%T", p)
	}
}
