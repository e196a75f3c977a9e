package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pfrederiksen/community-site/internal/datefmt"
	"github.com/pfrederiksen/community-site/internal/listing"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// maxCellWidth wraps long messages in the text table.
const maxCellWidth = 48

// RenderResult is the output of `render`.
type RenderResult struct {
	Page string `json:"page"`
	Path string `json:"path,omitempty"`
	HTML string `json:"html,omitempty"`
}

// SubmitResult is the output of `submit`.
type SubmitResult struct {
	Page     string   `json:"page"`
	Feedback string   `json:"feedback"`
	State    string   `json:"state,omitempty"`
	Alerts   []string `json:"alerts,omitempty"`
}

// Rejected reports whether the page refused or failed the submission.
func (r *SubmitResult) Rejected() bool {
	return r.State == "error" || len(r.Alerts) > 0
}

// ListResult is the output of `list`.
type ListResult struct {
	CheckedAt  time.Time      `json:"checked_at"`
	Collection string         `json:"collection"`
	Filter     string         `json:"filter"`
	State      string         `json:"state"`
	Total      int            `json:"total"`
	Count      int            `json:"count"`
	Items      []listing.Item `json:"items"`
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// WriteSubmit writes a submit result in the specified format
func WriteSubmit(w io.Writer, result *SubmitResult, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, result)
	}
	feedback := result.Feedback
	if feedback == "" {
		feedback = "(no feedback shown)"
	}
	if result.State != "" {
		fmt.Fprintf(w, "%s [%s]: %s\n", result.Page, result.State, feedback)
	} else {
		fmt.Fprintf(w, "%s: %s\n", result.Page, feedback)
	}
	for _, alert := range result.Alerts {
		fmt.Fprintf(w, "  ALERT: %s\n", alert)
	}
	return nil
}

// WriteList writes a list result in the specified format
func WriteList(w io.Writer, result *ListResult, columns []column, format OutputFormat, loc *time.Location, verbose bool) error {
	switch format {
	case FormatJSON:
		if result.Items == nil {
			result.Items = []listing.Item{}
		}
		return writeJSON(w, result)
	case FormatText:
		return writeListText(w, result, columns, loc, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeListText outputs results as a human-readable table
func writeListText(w io.Writer, result *ListResult, columns []column, loc *time.Location, verbose bool) error {
	if result.Count == 0 {
		switch result.State {
		case listing.NoMatch.String():
			fmt.Fprintf(w, "No %s match (%s). %d fetched.\n", result.Collection, result.Filter, result.Total)
		default:
			fmt.Fprintf(w, "No %s found.\n", result.Collection)
		}
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)

	header := table.Row{}
	for _, c := range columns {
		header = append(header, c.title)
	}
	t.AppendHeader(header)

	configs := make([]table.ColumnConfig, len(columns))
	for i := range columns {
		configs[i] = table.ColumnConfig{Number: i + 1, WidthMax: maxCellWidth}
	}
	t.SetColumnConfigs(configs)

	for _, it := range result.Items {
		row := table.Row{}
		for _, c := range columns {
			value := strings.TrimSpace(it.String(c.field))
			if c.date {
				value = datefmt.Long(value, loc)
			}
			row = append(row, value)
		}
		t.AppendRow(row)
	}

	t.SetStyle(table.StyleRounded)
	t.Render()

	fmt.Fprintf(w, "\nShowing %d of %d %s", result.Count, result.Total, result.Collection)
	if verbose {
		fmt.Fprintf(w, " (filter: %s)", result.Filter)
	}
	fmt.Fprintln(w)
	return nil
}
