package graphql

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/validator"
	"go.uber.org/zap"

	apperrors "socialgraph/backend/pkg/errors"
	"socialgraph/backend/pkg/logger"
)

// ResolveParams is handed to every field resolver.
type ResolveParams struct {
	// Source is the parent value; nil for root fields.
	Source interface{}
	// Args holds the coerced field arguments.
	Args map[string]interface{}
	// Field is the selected field.
	Field *ast.Field
}

// FieldResolver produces the value of one field.
type FieldResolver func(ctx context.Context, p ResolveParams) (interface{}, error)

// TypeResolver names the concrete object type of a union or interface value.
type TypeResolver func(value interface{}) string

// Executor executes GraphQL operations against registered resolvers.
type Executor struct {
	schema        *Schema
	resolvers     map[string]FieldResolver // "Query.user" -> resolver
	typeResolvers map[string]TypeResolver  // "UserResult" -> resolver
	logger        *zap.Logger
}

// NewExecutor creates an executor with no resolvers.
func NewExecutor(schema *Schema) *Executor {
	return &Executor{
		schema:        schema,
		resolvers:     make(map[string]FieldResolver),
		typeResolvers: make(map[string]TypeResolver),
		logger:        logger.Get(),
	}
}

// Resolve registers the resolver for path ("Type.field").
func (e *Executor) Resolve(path string, fn FieldResolver) {
	e.resolvers[path] = fn
}

// ResolveType registers the concrete type resolver for an abstract type.
func (e *Executor) ResolveType(abstract string, fn TypeResolver) {
	e.typeResolvers[abstract] = fn
}

// Execute parses, validates and runs req.
func (e *Executor) Execute(ctx context.Context, req *Request) *Response {
	if req == nil || strings.TrimSpace(req.Query) == "" {
		return &Response{Errors: []Error{{Message: "query is required"}}}
	}

	doc, errs := gqlparser.LoadQuery(e.schema.AST(), req.Query)
	if len(errs) > 0 {
		return &Response{Errors: fromGQLErrors(errs)}
	}

	op, err := selectOperation(doc, req.OperationName)
	if err != nil {
		return &Response{Errors: []Error{{Message: err.Error()}}}
	}

	vars, err := validator.VariableValues(e.schema.AST(), op, req.Variables)
	if err != nil {
		if gqlErr, ok := err.(*gqlerror.Error); ok {
			return &Response{Errors: fromGQLErrors(gqlerror.List{gqlErr})}
		}
		return &Response{Errors: []Error{{Message: err.Error()}}}
	}

	root := e.schema.Root(op.Operation)
	if root == nil {
		return &Response{Errors: []Error{{Message: fmt.Sprintf("schema does not support %s operations", op.Operation)}}}
	}

	x := &execution{executor: e, doc: doc, vars: vars}
	data, ok := x.executeSelectionSet(ctx, root, nil, op.SelectionSet, nil)

	resp := &Response{Errors: x.errors, executed: true}
	if ok {
		resp.Data = data
	}
	return resp
}

func selectOperation(doc *ast.QueryDocument, name string) (*ast.OperationDefinition, error) {
	if name != "" {
		if op := doc.Operations.ForName(name); op != nil {
			return op, nil
		}
		return nil, fmt.Errorf("operation %q not found", name)
	}
	switch len(doc.Operations) {
	case 0:
		return nil, fmt.Errorf("no operation found in query")
	case 1:
		return doc.Operations[0], nil
	default:
		return nil, fmt.Errorf("operationName is required when the document holds several operations")
	}
}

func fromGQLErrors(list gqlerror.List) []Error {
	out := make([]Error, 0, len(list))
	for _, err := range list {
		e := Error{Message: err.Message, Extensions: err.Extensions}
		for _, loc := range err.Locations {
			e.Locations = append(e.Locations, Location{Line: loc.Line, Column: loc.Column})
		}
		out = append(out, e)
	}
	return out
}

// execution carries the state of a single operation run.
type execution struct {
	executor *Executor
	doc      *ast.QueryDocument
	vars     map[string]interface{}
	errors   []Error
}

// executeSelectionSet resolves every selected field of an object value. A
// false result means a non-null field came back null and the object itself
// must become null.
func (x *execution) executeSelectionSet(ctx context.Context, objType *ast.Definition, source interface{}, selections ast.SelectionSet, path []interface{}) (map[string]interface{}, bool) {
	keys, grouped := x.collectFields(objType.Name, selections, nil, nil, map[string]bool{})

	result := make(map[string]interface{}, len(keys))
	for _, key := range keys {
		value, ok := x.executeField(ctx, objType, source, grouped[key], appendPath(path, key))
		if !ok {
			return nil, false
		}
		result[key] = value
	}
	return result, true
}

// collectFields flattens fragments and groups fields by response key,
// keeping the order of first appearance.
func (x *execution) collectFields(typeName string, selections ast.SelectionSet, keys []string, grouped map[string][]*ast.Field, visited map[string]bool) ([]string, map[string][]*ast.Field) {
	if grouped == nil {
		grouped = make(map[string][]*ast.Field)
	}

	for _, sel := range selections {
		switch s := sel.(type) {
		case *ast.Field:
			if !x.included(s.Directives) {
				continue
			}
			key := s.Alias
			if key == "" {
				key = s.Name
			}
			if _, seen := grouped[key]; !seen {
				keys = append(keys, key)
			}
			grouped[key] = append(grouped[key], s)

		case *ast.InlineFragment:
			if !x.included(s.Directives) || !x.executor.schema.implements(s.TypeCondition, typeName) {
				continue
			}
			keys, grouped = x.collectFields(typeName, s.SelectionSet, keys, grouped, visited)

		case *ast.FragmentSpread:
			if visited[s.Name] || !x.included(s.Directives) {
				continue
			}
			visited[s.Name] = true
			frag := s.Definition
			if frag == nil {
				frag = x.doc.Fragments.ForName(s.Name)
			}
			if frag == nil || !x.executor.schema.implements(frag.TypeCondition, typeName) {
				continue
			}
			keys, grouped = x.collectFields(typeName, frag.SelectionSet, keys, grouped, visited)
		}
	}
	return keys, grouped
}

// included evaluates @skip and @include.
func (x *execution) included(directives ast.DirectiveList) bool {
	if d := directives.ForName("skip"); d != nil {
		if skip, _ := d.ArgumentMap(x.vars)["if"].(bool); skip {
			return false
		}
	}
	if d := directives.ForName("include"); d != nil {
		if include, _ := d.ArgumentMap(x.vars)["if"].(bool); !include {
			return false
		}
	}
	return true
}

func (x *execution) executeField(ctx context.Context, objType *ast.Definition, source interface{}, fields []*ast.Field, path []interface{}) (interface{}, bool) {
	field := fields[0]
	if field.Name == "__typename" {
		return objType.Name, true
	}

	def := objType.Fields.ForName(field.Name)
	if def == nil {
		def = field.Definition
	}
	if def == nil {
		x.addError(fmt.Sprintf("unknown field %s.%s", objType.Name, field.Name), path)
		return nil, false
	}

	fieldPath := objType.Name + "." + field.Name
	resolve, ok := x.executor.resolvers[fieldPath]
	if !ok {
		resolve = defaultResolver
	}

	value, err := resolve(ctx, ResolveParams{
		Source: source,
		Args:   field.ArgumentMap(x.vars),
		Field:  field,
	})
	if err != nil {
		x.executor.logger.Warn("Field resolver failed", zap.String("field", fieldPath), zap.Error(err))
		x.addError(publicMessage(err), path)
		if def.Type.NonNull {
			return nil, false
		}
		value = nil
	}

	return x.completeValue(ctx, def.Type, fields, value, path)
}

// completeValue shapes a resolved value according to its declared type.
// A false result asks the caller to null out the nearest nullable parent.
func (x *execution) completeValue(ctx context.Context, typ *ast.Type, fields []*ast.Field, value interface{}, path []interface{}) (interface{}, bool) {
	if typ.NonNull {
		v, ok := x.completeNullable(ctx, typ, fields, value, path)
		if !ok {
			return nil, false
		}
		if v == nil {
			x.addError(fmt.Sprintf("cannot return null for non-nullable field %s", fields[0].Name), path)
			return nil, false
		}
		return v, true
	}

	v, ok := x.completeNullable(ctx, typ, fields, value, path)
	if !ok {
		return nil, true
	}
	return v, true
}

func (x *execution) completeNullable(ctx context.Context, typ *ast.Type, fields []*ast.Field, value interface{}, path []interface{}) (interface{}, bool) {
	value, isNil := deref(value)
	if isNil {
		return nil, true
	}

	if typ.Elem != nil {
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			x.addError(fmt.Sprintf("expected a list for field %s, got %T", fields[0].Name, value), path)
			return nil, false
		}
		items := make([]interface{}, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, ok := x.completeValue(ctx, typ.Elem, fields, rv.Index(i).Interface(), appendPath(path, i))
			if !ok {
				return nil, false
			}
			items = append(items, item)
		}
		return items, true
	}

	def := x.executor.schema.Type(typ.NamedType)
	if def == nil {
		x.addError(fmt.Sprintf("unknown type %s", typ.NamedType), path)
		return nil, false
	}

	switch def.Kind {
	case ast.Scalar, ast.Enum:
		return value, true
	case ast.Object:
		return x.completeObject(ctx, def, fields, value, path)
	case ast.Union, ast.Interface:
		resolveType, ok := x.executor.typeResolvers[def.Name]
		if !ok {
			x.addError(fmt.Sprintf("no type resolver for %s", def.Name), path)
			return nil, false
		}
		concrete := x.executor.schema.Type(resolveType(value))
		if concrete == nil || !x.executor.schema.implements(def.Name, concrete.Name) {
			x.addError(fmt.Sprintf("cannot resolve concrete type of %s", def.Name), path)
			return nil, false
		}
		return x.completeObject(ctx, concrete, fields, value, path)
	default:
		x.addError(fmt.Sprintf("unsupported output type %s", def.Name), path)
		return nil, false
	}
}

func (x *execution) completeObject(ctx context.Context, def *ast.Definition, fields []*ast.Field, value interface{}, path []interface{}) (interface{}, bool) {
	var selections ast.SelectionSet
	for _, f := range fields {
		selections = append(selections, f.SelectionSet...)
	}
	obj, ok := x.executeSelectionSet(ctx, def, value, selections, path)
	if !ok {
		return nil, false
	}
	return obj, true
}

func (x *execution) addError(message string, path []interface{}) {
	x.errors = append(x.errors, Error{Message: message, Path: path})
}

// defaultResolver reads the field from a map source.
func defaultResolver(_ context.Context, p ResolveParams) (interface{}, error) {
	if m, ok := p.Source.(map[string]interface{}); ok {
		return m[p.Field.Name], nil
	}
	return nil, fmt.Errorf("no resolver for field %s", p.Field.Name)
}

// publicMessage hides the detail of unclassified errors.
func publicMessage(err error) string {
	if apperrors.KindOf(err) == "" {
		return "internal error"
	}
	return apperrors.MessageOf(err)
}

func deref(value interface{}) (interface{}, bool) {
	if value == nil {
		return nil, true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return nil, true
		}
		return rv.Elem().Interface(), false
	case reflect.Map, reflect.Slice, reflect.Interface:
		if rv.IsNil() {
			return nil, true
		}
	}
	return value, false
}

func appendPath(path []interface{}, elem interface{}) []interface{} {
	out := make([]interface{}, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}
