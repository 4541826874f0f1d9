// Package render prints filter results for terminals and tools.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/starford/hotlines/internal/catalog"
	"github.com/starford/hotlines/internal/models"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Row is one contact localized for output.
type Row struct {
	ID          string `json:"id"`
	Number      string `json:"number"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	DialURL     string `json:"dial_url"`
}

// Rows localizes contacts into lang.
func Rows(cat *catalog.Catalog, contacts []models.Contact, lang models.Language) []Row {
	out := make([]Row, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, Row{
			ID:          c.ID,
			Number:      c.Number,
			Name:        c.Name.Get(lang),
			Category:    cat.CategoryLabel(c.Category, lang),
			Description: c.Description.Get(lang),
			DialURL:     c.DialURL(),
		})
	}
	return out
}

// Write prints rows in format.
func Write(w io.Writer, format string, rows []Row) error {
	switch format {
	case FormatTable, "":
		Table(w, rows)
		return nil
	case FormatJSON:
		return JSON(w, rows)
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", format, FormatTable, FormatJSON)
	}
}

// Table renders rows with tablewriter.
func Table(w io.Writer, rows []Row) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader([]string{"Number", "Name", "Category", "Description"})
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)

	for _, r := range rows {
		tw.Append([]string{r.Number, r.Name, r.Category, r.Description})
	}
	tw.Render()
}

// JSON writes rows as an indented array.
func JSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(rows)
}
