package inventory

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/talkincode/stockboard/internal/repository"
	"go.uber.org/zap"
)

var (
	// ErrProductNotFound product id does not resolve
	ErrProductNotFound = errors.New("product not found")
	// ErrRecordNotFound record id does not resolve
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicateRecord a record already exists for the (product, date) pair
	ErrDuplicateRecord = errors.New("record already exists for this product and date")
	// ErrInconsistent a stored record has no matching product
	ErrInconsistent = errors.New("daily record references a missing product")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every rejected field of one request.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a rejected field
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// Err returns nil when no field was rejected.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// translate maps storage sentinels onto the service taxonomy.
// notFound is the error an unresolved id should become in the caller's context.
func translate(err error, notFound error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrDuplicateRecord
	case errors.Is(err, repository.ErrInconsistent):
		zap.L().Error("inconsistent store state", zap.String("op", op), zap.Error(err))
		return errors.Wrap(ErrInconsistent, op)
	default:
		return errors.Wrap(err, op)
	}
}
