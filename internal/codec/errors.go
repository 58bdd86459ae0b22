package codec

import (
	"fmt"

	"notes/internal/errors"
)

// Reason classifies why a persisted collection could not be decoded.
type Reason string

const (
	ReasonMalformed    Reason = "malformed"
	ReasonMissingField Reason = "missing_field"
	ReasonWrongType    Reason = "wrong_type"
	ReasonInvalidValue Reason = "invalid_value"
	ReasonDuplicateID  Reason = "duplicate_id"
)

// DecodeError pinpoints the first problem found while decoding.
// Index is -1 when the document itself is unreadable.
type DecodeError struct {
	Index  int
	Field  string
	Reason Reason
	Detail string
}

func (e *DecodeError) Error() string {
	where := "document"
	if e.Index >= 0 {
		where = fmt.Sprintf("record %d", e.Index)
		if e.Field != "" {
			where += fmt.Sprintf(" field %q", e.Field)
		}
	}
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", where, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", where, e.Reason, e.Detail)
}

func decodeFailure(index int, field string, reason Reason, detail string) error {
	return errors.NewDecodeError("items", &DecodeError{
		Index:  index,
		Field:  field,
		Reason: reason,
		Detail: detail,
	})
}

func encodeFailure(index int, detail string) error {
	return errors.NewEncodeError("items", fmt.Errorf("item %d: %s", index, detail))
}
