package graphql

import (
	apperrors "socialgraph/backend/pkg/errors"
)

// MutationError is the failure branch of every mutation result union.
type MutationError struct {
	Kind    string
	Message string
}

const (
	kindNotFound   = "NOT_FOUND"
	kindValidation = "VALIDATION_FAILED"
	kindConflict   = "CONFLICT"
	kindInternal   = "INTERNAL"
)

// mutationResult turns a failed operation into a MutationError payload so
// business-rule failures travel inside data rather than the errors array.
func mutationResult(value interface{}, err error) (interface{}, error) {
	if err == nil {
		return value, nil
	}

	switch {
	case apperrors.IsNotFound(err):
		return MutationError{Kind: kindNotFound, Message: apperrors.MessageOf(err)}, nil
	case apperrors.IsValidation(err):
		return MutationError{Kind: kindValidation, Message: apperrors.MessageOf(err)}, nil
	case apperrors.IsConflict(err):
		return MutationError{Kind: kindConflict, Message: apperrors.MessageOf(err)}, nil
	case apperrors.IsErrorType(err, apperrors.ErrorTypeContext):
		return nil, err
	default:
		return MutationError{Kind: kindInternal, Message: "internal error"}, nil
	}
}
