// Package export encodes transaction listings as CSV, JSON or YAML.
//
// Each format is a strategy behind the Encoder interface; rows carry amounts
// fixed to two decimals so every format agrees on the figures.
package export

import (
	"fmt"
	"strings"

	"fintrack/internal/core"
)

// Header is the column order shared by the CSV encoder and the sheet mirror.
var Header = []string{"id", "date", "type", "category", "description", "amount"}

// Row is one exported transaction.
type Row struct {
	ID          string `json:"id" yaml:"id"`
	Date        string `json:"date" yaml:"date"`
	Type        string `json:"type" yaml:"type"`
	Category    string `json:"category" yaml:"category"`
	Description string `json:"description" yaml:"description"`
	Amount      string `json:"amount" yaml:"amount"`
}

// Values returns the row in Header order.
func (r Row) Values() []string {
	return []string{r.ID, r.Date, r.Type, r.Category, r.Description, r.Amount}
}

func RowOf(t core.Transaction) Row {
	return Row{
		ID:          t.ID,
		Date:        t.Date.String(),
		Type:        string(t.Type),
		Category:    t.Category,
		Description: t.Description,
		Amount:      core.FormatAmount(t.Amount),
	}
}

func Rows(txs []core.Transaction) []Row {
	out := make([]Row, len(txs))
	for i, t := range txs {
		out[i] = RowOf(t)
	}
	return out
}

// Encoder is the strategy for one export format.
type Encoder interface {
	EncodeRows(rows []Row) ([]byte, error)
	ContentType() string
	Extension() string
}

// ForFormat returns the encoder for csv, json or yaml (case-insensitive).
// An empty format means csv.
func ForFormat(format string) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "csv":
		return CSVEncoder{}, nil
	case "json":
		return JSONEncoder{}, nil
	case "yaml", "yml":
		return YAMLEncoder{}, nil
	}
	return nil, fmt.Errorf("unsupported export format %q: %w", format, core.ErrInvalidFilter)
}
