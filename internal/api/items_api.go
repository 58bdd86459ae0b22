// Package api holds the item workflows shared by the command line and the
// interactive UI. It turns user references and due-date expressions into
// store operations.
package api

import (
	"context"
	"io"
	"time"

	"notes/internal/domain"
	"notes/internal/errors"
	"notes/internal/projection"
)

// ItemStore is the part of the store the workflows need.
type ItemStore interface {
	Add(content string, kind domain.Kind, due *time.Time) (domain.Item, error)
	Update(id, content string, due *time.Time) error
	ToggleDone(id string)
	SetDueDate(id string, due *time.Time)
	DeleteByID(id string)
	DeleteAt(positions ...int)
	Items() []domain.Item
	Get(id string) (domain.Item, bool)
}

// ListOptions selects and orders a listing
type ListOptions struct {
	View      projection.View
	SortByDue bool
}

// Listing is a projection of the store together with the store positions
// users refer to items by.
type Listing struct {
	Items     []domain.Item
	Stats     projection.Stats
	Now       time.Time
	positions map[string]int
}

// Position returns the 1-based store position of the item with id, or 0.
func (l *Listing) Position(id string) int {
	return l.positions[id]
}

// ItemDetail is a single item with its store position
type ItemDetail struct {
	Position int
	Item     domain.Item
}

// EditOptions controls what an edit does to the due date. With neither
// field set the due date is kept.
type EditOptions struct {
	When     string
	ClearDue bool
}

// ItemsAPI defines the item workflows
type ItemsAPI interface {
	// ========== Item Workflows ==========

	// AddItem creates a note or task. when is optional and uses the ParseWhen grammar.
	AddItem(ctx context.Context, content string, kind domain.Kind, when string) (*domain.Item, error)

	// EditItem replaces the content of the referenced item
	EditItem(ctx context.Context, ref string, content string, opts EditOptions) (*domain.Item, error)

	// ToggleDone flips completion of the referenced task
	ToggleDone(ctx context.Context, ref string) (*domain.Item, error)

	// SetDue sets or, with "none", clears the due date of the referenced task
	SetDue(ctx context.Context, ref string, when string) (*domain.Item, error)

	// RemoveItems deletes every referenced item in one store mutation
	RemoveItems(ctx context.Context, refs []string) ([]domain.Item, error)

	// ========== Query Operations ==========

	// GetItem resolves a single reference
	GetItem(ctx context.Context, ref string) (*ItemDetail, error)

	// ListItems returns the requested projection of the store
	ListItems(ctx context.Context, opts ListOptions) (*Listing, error)

	// ExportItems writes the whole collection to w as json, yaml or csv
	ExportItems(ctx context.Context, format string, w io.Writer) error

	// ParseWhen converts a due-date expression relative to the API clock
	ParseWhen(when string) (*time.Time, error)
}

// itemsAPIImpl implements the ItemsAPI interface
type itemsAPIImpl struct {
	store ItemStore
	now   func() time.Time
}

// NewItemsAPI creates a new ItemsAPI instance. A nil clock means time.Now.
func NewItemsAPI(store ItemStore, now func() time.Time) ItemsAPI {
	if now == nil {
		now = time.Now
	}
	return &itemsAPIImpl{store: store, now: now}
}

// ========== Item Workflows ==========

func (a *itemsAPIImpl) AddItem(ctx context.Context, content string, kind domain.Kind, when string) (*domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var due *time.Time
	if when != "" {
		if kind != domain.KindTask {
			return nil, errors.NewInvalidInputError("due", when, "only tasks have a due date")
		}
		parsed, err := a.ParseWhen(when)
		if err != nil {
			return nil, err
		}
		due = parsed
	}

	item, err := a.store.Add(content, kind, due)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (a *itemsAPIImpl) EditItem(ctx context.Context, ref string, content string, opts EditOptions) (*domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.ClearDue && opts.When != "" {
		return nil, errors.NewInvalidInputError("due", opts.When, "cannot set and clear the due date at once")
	}

	_, item, err := a.resolve(ref)
	if err != nil {
		return nil, err
	}

	due := item.DueDate()
	switch {
	case opts.ClearDue:
		due = nil
	case opts.When != "":
		if !item.IsTask() {
			return nil, errors.NewInvalidInputError("due", opts.When, "only tasks have a due date")
		}
		if due, err = a.ParseWhen(opts.When); err != nil {
			return nil, err
		}
	}

	if err := a.store.Update(item.ID, content, due); err != nil {
		return nil, err
	}
	return a.reload(item.ID)
}

func (a *itemsAPIImpl) ToggleDone(ctx context.Context, ref string) (*domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, item, err := a.resolve(ref)
	if err != nil {
		return nil, err
	}
	if !item.IsTask() {
		return nil, errors.NewInvalidInputError("ref", ref, "notes cannot be completed")
	}

	a.store.ToggleDone(item.ID)
	return a.reload(item.ID)
}

func (a *itemsAPIImpl) SetDue(ctx context.Context, ref string, when string) (*domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, item, err := a.resolve(ref)
	if err != nil {
		return nil, err
	}
	if !item.IsTask() {
		return nil, errors.NewInvalidInputError("ref", ref, "notes have no due date")
	}
	due, err := a.ParseWhen(when)
	if err != nil {
		return nil, err
	}

	a.store.SetDueDate(item.ID, due)
	return a.reload(item.ID)
}

func (a *itemsAPIImpl) RemoveItems(ctx context.Context, refs []string) ([]domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, errors.NewInvalidInputError("ref", "", "at least one item is required")
	}

	// Resolve everything against one snapshot so positions stay meaningful.
	items := a.store.Items()
	positions := make([]int, 0, len(refs))
	removed := make([]domain.Item, 0, len(refs))
	seen := make(map[int]bool, len(refs))
	for _, ref := range refs {
		pos, err := resolveIn(items, ref)
		if err != nil {
			return nil, err
		}
		if seen[pos] {
			continue
		}
		seen[pos] = true
		positions = append(positions, pos)
		removed = append(removed, items[pos])
	}

	if len(positions) == 1 {
		a.store.DeleteByID(removed[0].ID)
	} else {
		a.store.DeleteAt(positions...)
	}
	return removed, nil
}

// ========== Query Operations ==========

func (a *itemsAPIImpl) GetItem(ctx context.Context, ref string) (*ItemDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pos, item, err := a.resolve(ref)
	if err != nil {
		return nil, err
	}
	return &ItemDetail{Position: pos + 1, Item: item}, nil
}

func (a *itemsAPIImpl) ListItems(ctx context.Context, opts ListOptions) (*Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	all := a.store.Items()
	items := projection.Apply(all, opts.View)
	if opts.SortByDue && opts.View != projection.ViewTasks {
		items = projection.TasksSortedByDueDate(items)
	}

	positions := make(map[string]int, len(all))
	for i, item := range all {
		positions[item.ID] = i + 1
	}

	now := a.now()
	return &Listing{
		Items:     items,
		Stats:     projection.Count(all, now),
		Now:       now,
		positions: positions,
	}, nil
}

func (a *itemsAPIImpl) ParseWhen(when string) (*time.Time, error) {
	return ParseWhen(when, a.now())
}

func (a *itemsAPIImpl) resolve(ref string) (int, domain.Item, error) {
	items := a.store.Items()
	pos, err := resolveIn(items, ref)
	if err != nil {
		return 0, domain.Item{}, err
	}
	return pos, items[pos], nil
}

func (a *itemsAPIImpl) reload(id string) (*domain.Item, error) {
	item, ok := a.store.Get(id)
	if !ok {
		return nil, errors.NewNotFoundError("item", id)
	}
	return &item, nil
}
