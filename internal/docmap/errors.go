package docmap

import (
	"fmt"

	"github.com/dmitrijs2005/moodstream/internal/common"
)

// MalformedRecordError reports a stored document that violates the schema:
// a required field that is absent, null, or of the wrong type. It always
// identifies the offending field and document so the record can be found
// and repaired. Absence of an optional field is not an error.
type MalformedRecordError struct {
	Path  string
	Field string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("document %s: required field %q is missing or malformed", e.Path, e.Field)
}

// Is marks every malformed record as corrupt backend state, so callers can
// match with errors.Is(err, common.ErrCorruptState).
func (e *MalformedRecordError) Is(target error) bool {
	return target == common.ErrCorruptState
}

func malformed(path, field string) error {
	return &MalformedRecordError{Path: path, Field: field}
}
