package api

import (
	"strconv"
	"strings"

	"notes/internal/domain"
	"notes/internal/errors"
	"notes/internal/validation"
)

// MinPrefixLength is the shortest id prefix accepted as a reference.
const MinPrefixLength = 4

// fullIDLength is the length of a generated id in canonical form.
const fullIDLength = 36

var idValidator = validation.NewItemValidator()

// resolveIn finds the 0-based position of ref in items. A reference is a
// 1-based position, a full id or a unique id prefix.
func resolveIn(items []domain.Item, ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, errors.NewInvalidInputError("ref", ref, "item reference cannot be empty")
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(items) {
			return n - 1, nil
		}
		if len(ref) < MinPrefixLength {
			return 0, errors.NewNotFoundError("item", "#"+ref)
		}
	}

	for i, item := range items {
		if item.ID == ref {
			return i, nil
		}
	}

	if len(ref) < MinPrefixLength {
		return 0, errors.NewNotFoundError("item", ref)
	}

	match := -1
	lower := strings.ToLower(ref)
	for i, item := range items {
		if strings.HasPrefix(strings.ToLower(item.ID), lower) {
			if match >= 0 {
				return 0, errors.NewInvalidInputError("ref", ref, "matches more than one item")
			}
			match = i
		}
	}
	if match < 0 {
		if len(ref) == fullIDLength && idValidator.ValidateItemID(lower) != nil {
			return 0, errors.NewInvalidInputError("ref", ref, "not a valid item id")
		}
		return 0, errors.NewNotFoundError("item", ref)
	}
	return match, nil
}
