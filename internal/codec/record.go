package codec

import (
	"time"

	"notes/internal/domain"
)

// Wire field names.
const (
	fieldID        = "id"
	fieldContent   = "content"
	fieldCreatedAt = "createdAt"
	fieldKind      = "kind"
	fieldIsDone    = "isDone"
	fieldDueDate   = "dueDate"
)

// wireRecord is the encoded shape of one item.
type wireRecord struct {
	ID        string  `json:"id" yaml:"id"`
	Content   string  `json:"content" yaml:"content"`
	CreatedAt string  `json:"createdAt" yaml:"createdAt"`
	Kind      string  `json:"kind" yaml:"kind"`
	IsDone    *bool   `json:"isDone,omitempty" yaml:"isDone,omitempty"`
	DueDate   *string `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
}

func toWire(items []domain.Item) ([]wireRecord, error) {
	records := make([]wireRecord, 0, len(items))
	for i, item := range items {
		if item.ID == "" {
			return nil, encodeFailure(i, "empty id")
		}
		if item.CreatedAt.IsZero() {
			return nil, encodeFailure(i, "zero createdAt")
		}

		rec := wireRecord{
			ID:        item.ID,
			Content:   item.Content,
			CreatedAt: formatTime(item.CreatedAt),
			Kind:      string(item.Kind),
		}

		switch item.Kind {
		case domain.KindTask:
			if item.Task == nil {
				return nil, encodeFailure(i, "task without task state")
			}
			done := item.Task.Done
			rec.IsDone = &done
			if item.Task.DueDate != nil {
				due := formatTime(*item.Task.DueDate)
				rec.DueDate = &due
			}
		case domain.KindNote:
			if item.Task != nil {
				return nil, encodeFailure(i, "note with task state")
			}
		default:
			return nil, encodeFailure(i, "unknown kind "+string(item.Kind))
		}

		records = append(records, rec)
	}
	return records, nil
}

// value is one field of a decoded record, independent of the source format.
type value interface {
	isNull() bool
	asString() (string, bool)
	// asTimeText accepts strings and format-native timestamp scalars.
	asTimeText() (string, bool)
	asBool() (bool, bool)
}

// record gives field access to one undecoded item.
type record interface {
	field(name string) (value, bool)
}

// lookup treats an explicit null like an absent field.
func lookup(r record, name string) (value, bool) {
	v, ok := r.field(name)
	if !ok || v.isNull() {
		return nil, false
	}
	return v, true
}

func decodeRecord(index int, r record) (domain.Item, error) {
	var item domain.Item

	id, err := requiredString(index, r, fieldID)
	if err != nil {
		return item, err
	}
	if id == "" {
		return item, decodeFailure(index, fieldID, ReasonInvalidValue, "empty id")
	}

	content, err := requiredString(index, r, fieldContent)
	if err != nil {
		return item, err
	}

	createdAt, err := requiredTime(index, r, fieldCreatedAt)
	if err != nil {
		return item, err
	}

	// Records written before notes existed carry no kind and are tasks.
	kind := domain.KindTask
	if v, ok := lookup(r, fieldKind); ok {
		s, ok := v.asString()
		if !ok {
			return item, decodeFailure(index, fieldKind, ReasonWrongType, "expected string")
		}
		kind = domain.Kind(s)
		if !kind.IsValid() {
			return item, decodeFailure(index, fieldKind, ReasonInvalidValue, "unknown kind "+s)
		}
	}

	item = domain.Item{
		ID:        id,
		Content:   content,
		CreatedAt: createdAt,
		Kind:      kind,
	}
	if kind == domain.KindNote {
		return item, nil
	}

	state := &domain.TaskState{}
	if v, ok := lookup(r, fieldIsDone); ok {
		done, ok := v.asBool()
		if !ok {
			return item, decodeFailure(index, fieldIsDone, ReasonWrongType, "expected boolean")
		}
		state.Done = done
	}
	if _, ok := lookup(r, fieldDueDate); ok {
		due, err := requiredTime(index, r, fieldDueDate)
		if err != nil {
			return item, err
		}
		state.DueDate = &due
	}
	item.Task = state

	return item, nil
}

func requiredString(index int, r record, name string) (string, error) {
	v, ok := lookup(r, name)
	if !ok {
		return "", decodeFailure(index, name, ReasonMissingField, "")
	}
	s, ok := v.asString()
	if !ok {
		return "", decodeFailure(index, name, ReasonWrongType, "expected string")
	}
	return s, nil
}

func requiredTime(index int, r record, name string) (time.Time, error) {
	v, ok := lookup(r, name)
	if !ok {
		return time.Time{}, decodeFailure(index, name, ReasonMissingField, "")
	}
	s, ok := v.asTimeText()
	if !ok {
		return time.Time{}, decodeFailure(index, name, ReasonWrongType, "expected RFC 3339 string")
	}
	t, err := parseTime(s)
	if err != nil {
		return time.Time{}, decodeFailure(index, name, ReasonInvalidValue, err.Error())
	}
	return t, nil
}

// checkUnique fails on the first repeated id.
func checkUnique(items []domain.Item) error {
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if _, dup := seen[item.ID]; dup {
			return decodeFailure(i, fieldID, ReasonDuplicateID, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}
