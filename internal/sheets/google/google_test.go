package google

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/export"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{CredentialsJSON: "{}"})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "test-id"})
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
	if !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
}

func TestToCells_EscapesFormulas(t *testing.T) {
	row := export.Row{
		ID:          "id-1",
		Date:        "2024-03-01",
		Type:        "expense",
		Category:    "@SUM(A1)",
		Description: `=IMPORTXML("http://x","//a")`,
		Amount:      "4.50",
	}
	want := []any{"id-1", "2024-03-01", "expense", "'@SUM(A1)", `'=IMPORTXML("http://x","//a")`, "4.50"}

	got := toCells(row.Values())
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cell %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEscapeCell(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Coffee", "Coffee"},
		{"=1+1", "'=1+1"},
		{"+1", "'+1"},
		{"-cmd", "'-cmd"},
		{"@A1", "'@A1"},
		{"\tx", "'\tx"},
		{"a=b", "a=b"},
		{"12.50", "12.50"},
	}
	for _, tt := range tests {
		if got := escapeCell(tt.in); got != tt.want {
			t.Errorf("escapeCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadCredentials(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(path, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	tests := []struct {
		name    string
		opts    Options
		want    string
		wantErr bool
	}{
		{name: "InlineJSON", opts: Options{CredentialsJSON: ` {"a":1} `}, want: `{"a":1}`},
		{name: "InlineWinsOverFile", opts: Options{CredentialsJSON: `{"a":1}`, CredentialsFile: path}, want: `{"a":1}`},
		{name: "File", opts: Options{CredentialsFile: path}, want: `{"type":"service_account"}`},
		{name: "MissingFile", opts: Options{CredentialsFile: filepath.Join(dir, "nope.json")}, wantErr: true},
		{name: "Nothing", opts: Options{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loadCredentials(tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("credentials = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestA1Range(t *testing.T) {
	tests := []struct {
		sheet, cells, want string
	}{
		{"Transactions", "A:F", "'Transactions'!A:F"},
		{"My Sheet", "A1:F1", "'My Sheet'!A1:F1"},
		{"Bob's", "A:A", "'Bob''s'!A:A"},
	}
	for _, tt := range tests {
		if got := a1Range(tt.sheet, tt.cells); got != tt.want {
			t.Errorf("a1Range(%q, %q) = %q, want %q", tt.sheet, tt.cells, got, tt.want)
		}
	}
}

func TestRowsWithID(t *testing.T) {
	values := [][]any{
		{"id"},
		{"tx-1"},
		{},
		{" tx-2 "},
		{"tx-1"},
	}

	tests := []struct {
		name string
		id   string
		want []int64
	}{
		{name: "Duplicates", id: "tx-1", want: []int64{1, 4}},
		{name: "Trimmed", id: "tx-2", want: []int64{3}},
		{name: "Absent", id: "tx-9", want: nil},
		{name: "EmptyID", id: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rowsWithID(values, tt.id)
			if len(got) != len(tt.want) {
				t.Fatalf("rowsWithID(%q) = %v, want %v", tt.id, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("rowsWithID(%q)[%d] = %d, want %d", tt.id, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDeleteRequestsBottomUp(t *testing.T) {
	reqs := deleteRequests(42, []int64{1, 7, 4})
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(reqs))
	}
	want := []int64{7, 4, 1}
	for i, r := range reqs {
		rng := r.DeleteDimension.Range
		if rng.SheetId != 42 || rng.Dimension != "ROWS" {
			t.Errorf("request %d targets sheet %d dimension %s", i, rng.SheetId, rng.Dimension)
		}
		if rng.StartIndex != want[i] || rng.EndIndex != want[i]+1 {
			t.Errorf("request %d = [%d,%d), want [%d,%d)", i, rng.StartIndex, rng.EndIndex, want[i], want[i]+1)
		}
	}
}

func TestClient_NotInitialized(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: DefaultSheetName}
	ctx := context.Background()

	if err := c.AppendRow(ctx, export.Row{ID: "tx-1"}); !errors.Is(err, errNoService) {
		t.Errorf("AppendRow error = %v, want errNoService", err)
	}
	if _, err := c.DeleteRows(ctx, "tx-1"); !errors.Is(err, errNoService) {
		t.Errorf("DeleteRows error = %v, want errNoService", err)
	}
	if err := c.EnsureHeader(ctx); !errors.Is(err, errNoService) {
		t.Errorf("EnsureHeader error = %v, want errNoService", err)
	}
}
