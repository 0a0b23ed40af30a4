package pricing

import (
	"errors"
	"fmt"

	"github.com/valvequote/quote_api/internal/models"
	"github.com/valvequote/quote_api/internal/utils"
)

// PricingError describes why one component of a product could not be priced.
// It unwraps to one of the utils sentinels and, when present, the underlying cause.
type PricingError struct {
	Component string
	Table     models.ReferenceTable
	Key       models.LookupKey
	Err       error
	Cause     error
}

func (e *PricingError) Error() string {
	msg := e.Err.Error()
	if e.Component != "" {
		msg = e.Component + ": " + msg
	}
	if e.Table != "" {
		msg = fmt.Sprintf("%s in %s [%s]", msg, e.Table, e.Key)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel and the cause to errors.Is / errors.As.
func (e *PricingError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func invalidConfig(component, format string, args ...interface{}) error {
	return &PricingError{
		Component: component,
		Err:       utils.ErrInvalidConfiguration,
		Cause:     fmt.Errorf(format, args...),
	}
}

// withComponent tags a resolver error with the component being priced.
func withComponent(err error, component string) error {
	var pe *PricingError
	if errors.As(err, &pe) && pe.Component == "" {
		pe.Component = component
	}
	return err
}
