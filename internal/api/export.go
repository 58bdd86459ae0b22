package api

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"notes/internal/codec"
	"notes/internal/domain"
	"notes/internal/errors"
)

// ExportFormats lists the formats ExportItems accepts.
var ExportFormats = []string{"json", "yaml", "csv"}

var csvHeader = []string{"position", "id", "kind", "content", "created_at", "done", "due_date"}

func (a *itemsAPIImpl) ExportItems(ctx context.Context, format string, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	items := a.store.Items()

	if strings.EqualFold(format, "csv") {
		return writeCSV(w, items)
	}

	f, err := codec.ParseFormat(format)
	if err != nil {
		return errors.NewInvalidInputError("format", format, "supported formats are json, yaml and csv")
	}
	data, err := codec.MustNew(f).Encode(items)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, items []domain.Item) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, item := range items {
		var done, due string
		if item.IsTask() {
			done = strconv.FormatBool(item.IsDone())
			if d := item.DueDate(); d != nil {
				due = d.UTC().Format(time.RFC3339)
			}
		}
		row := []string{
			strconv.Itoa(i + 1),
			item.ID,
			string(item.Kind),
			item.Content,
			item.CreatedAt.UTC().Format(time.RFC3339),
			done,
			due,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
