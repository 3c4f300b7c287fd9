package graphql

import (
	_ "embed"
	"fmt"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

//go:embed schema.graphql
var schemaSDL string

// Schema wraps a parsed GraphQL schema.
type Schema struct {
	ast *ast.Schema
}

// ParseSchema parses a GraphQL SDL string and returns a Schema.
func ParseSchema(sdl string) (*Schema, error) {
	source := &ast.Source{
		Name:  "schema.graphql",
		Input: sdl,
	}

	schema, err := gqlparser.LoadSchema(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GraphQL schema: %w", err)
	}
	return &Schema{ast: schema}, nil
}

// DefaultSchema parses the embedded social graph schema.
func DefaultSchema() (*Schema, error) {
	return ParseSchema(schemaSDL)
}

// AST returns the underlying gqlparser schema.
func (s *Schema) AST() *ast.Schema {
	return s.ast
}

// Type returns the named type definition, or nil.
func (s *Schema) Type(name string) *ast.Definition {
	return s.ast.Types[name]
}

// Root returns the root type for an operation.
func (s *Schema) Root(op ast.Operation) *ast.Definition {
	switch op {
	case ast.Mutation:
		return s.ast.Mutation
	case ast.Subscription:
		return s.ast.Subscription
	default:
		return s.ast.Query
	}
}

// implements reports whether the object type named typeName satisfies the
// type condition cond.
func (s *Schema) implements(cond, typeName string) bool {
	if cond == "" || cond == typeName {
		return true
	}
	def := s.Type(cond)
	if def == nil || (def.Kind != ast.Union && def.Kind != ast.Interface) {
		return false
	}
	for _, possible := range s.ast.GetPossibleTypes(def) {
		if possible.Name == typeName {
			return true
		}
	}
	return false
}
