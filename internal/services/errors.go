package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks failures reading or interpreting workflow
	// or notification configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation marks malformed input to a collaborator call.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a missing record, user, or definition.
	ErrNotFound = errors.New("not found")
	// ErrDirectory marks a role or employee lookup failure.
	ErrDirectory = errors.New("directory lookup error")
	// ErrDelivery marks a channel send failure for one recipient.
	ErrDelivery = errors.New("delivery error")
	// ErrTransient marks failures worth retrying on a later save.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while
// tagging it with the provided marker for later classification. The
// marker should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
