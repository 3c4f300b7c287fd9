package graphql

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"socialgraph/backend/internal/constants"
	"socialgraph/backend/pkg/logger"
)

// bodySchema accepts exactly one of {query, variables?} or {mutation, variables?}.
const bodySchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "oneOf": [
    {
      "properties": {
        "query": {"type": "string"},
        "variables": {"type": ["object", "null"]},
        "operationName": {"type": ["string", "null"]}
      },
      "required": ["query"],
      "additionalProperties": false
    },
    {
      "properties": {
        "mutation": {"type": "string"},
        "variables": {"type": ["object", "null"]},
        "operationName": {"type": ["string", "null"]}
      },
      "required": ["mutation"],
      "additionalProperties": false
    }
  ]
}`

// Handler serves the GraphQL endpoint over gin.
type Handler struct {
	executor     *Executor
	schema       *jsonschema.Schema
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewHandler creates a handler; maxBodyBytes <= 0 uses the default limit.
func NewHandler(executor *Executor, maxBodyBytes int64) (*Handler, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("graphql-body.json", strings.NewReader(bodySchema)); err != nil {
		return nil, err
	}
	schema, err := compiler.Compile("graphql-body.json")
	if err != nil {
		return nil, err
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = constants.DefaultMaxBodyBytes
	}

	return &Handler{
		executor:     executor,
		schema:       schema,
		maxBodyBytes: maxBodyBytes,
		logger:       logger.Get(),
	}, nil
}

// ServeGraphQL handles POST /graphql.
func (h *Handler) ServeGraphQL(c *gin.Context) {
	req, err := h.decode(c.Request)
	if err != nil {
		h.logger.Debug("Rejected GraphQL body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"statusCode": http.StatusBadRequest,
			"error":      http.StatusText(http.StatusBadRequest),
			"message":    err.Error(),
		})
		return
	}

	resp := h.executor.Execute(c.Request.Context(), req)
	c.JSON(http.StatusOK, resp)
}

// decode reads and validates the transport envelope.
func (h *Handler) decode(r *http.Request) (*Request, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, h.maxBodyBytes+1))
	if err != nil {
		return nil, errors.New("failed to read request body")
	}
	if int64(len(data)) > h.maxBodyBytes {
		return nil, errors.New("request body too large")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var body interface{}
	if err := dec.Decode(&body); err != nil {
		return nil, errors.New("body must be a JSON object")
	}

	if err := h.schema.Validate(body); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return nil, errors.New("body must contain exactly one of query or mutation, plus optional variables")
		}
		return nil, err
	}

	obj := body.(map[string]interface{})
	req := &Request{}
	if q, ok := obj["query"].(string); ok {
		req.Query = q
	} else {
		req.Query, _ = obj["mutation"].(string)
	}
	req.OperationName, _ = obj["operationName"].(string)
	req.Variables, _ = obj["variables"].(map[string]interface{})
	return req, nil
}
