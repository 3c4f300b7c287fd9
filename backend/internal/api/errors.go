package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "socialgraph/backend/pkg/errors"
)

// statusFor maps an error classification to an HTTP status
func statusFor(err error) int {
	switch {
	case apperrors.IsNotFound(err):
		return http.StatusNotFound
	case apperrors.IsValidation(err):
		return http.StatusBadRequest
	case apperrors.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"statusCode": status,
		"error":      http.StatusText(status),
		"message":    message,
	})
}

// respondError writes err with its mapped status. Unclassified errors are
// logged and hidden behind a generic message.
func (s *Server) respondError(c *gin.Context, operation string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.String("operation", operation),
			zap.Error(err))
		writeError(c, status, "internal error")
		return
	}

	s.logger.Debug("Request rejected",
		zap.String("operation", operation),
		zap.Int("status", status),
		zap.Error(err))
	writeError(c, status, apperrors.MessageOf(err))
}

var jsonFieldNames sync.Once

// useJSONFieldNames makes binding failures name fields the way clients send them
func useJSONFieldNames() {
	jsonFieldNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
}

// badRequest reports a malformed or incomplete body without echoing
// decoder internals back to the client
func badRequest(c *gin.Context, err error) {
	writeError(c, http.StatusBadRequest, bindingMessage(err))
}

func bindingMessage(err error) string {
	var (
		invalid   validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
		tooLarge  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &invalid):
		msgs := make([]string, 0, len(invalid))
		for _, fe := range invalid {
			msgs = append(msgs, fe.Field()+": "+fe.Tag())
		}
		return strings.Join(msgs, "; ")
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return "body: wrong type"
		}
		return typeErr.Field + ": wrong type"
	case errors.As(err, &tooLarge):
		return "request body too large"
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return "malformed JSON body"
	default:
		return "invalid request body"
	}
}
