// Package sheets declares the outbound ports of the spreadsheet mirror.
package sheets

import (
	"context"

	"fintrack/internal/export"
)

type (
	// RowAppender adds one transaction row at the bottom of the sheet.
	RowAppender interface {
		AppendRow(ctx context.Context, row export.Row) error
	}

	// RowDeleter removes every row carrying the transaction id and reports
	// how many were removed.
	RowDeleter interface {
		DeleteRows(ctx context.Context, id string) (int, error)
	}

	// TransactionMirror keeps a sheet in step with the transaction store.
	TransactionMirror interface {
		RowAppender
		RowDeleter
	}
)
