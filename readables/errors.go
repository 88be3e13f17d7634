package readables

import (
	"errors"
	"fmt"

	"hardboiled/models"
)

// ErrStoreUnavailable wraps failures of a required query
var ErrStoreUnavailable = errors.New("store unavailable")

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

// ClassificationError means a row did not resolve to exactly one record
// type. It points at a registry defect, never at caller input.
type ClassificationError struct {
	Tag           string
	Discriminants []string // non-NULL discriminant columns of the row
	Expected      models.RecordType
}

func (e *ClassificationError) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("row tagged %q has discriminants %v, want exactly the one for %s", e.Tag, e.Discriminants, e.Expected)
	}
	return fmt.Sprintf("row tagged %q does not match a registered record type (discriminants %v)", e.Tag, e.Discriminants)
}
