package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"fintrack/internal/core"
)

func sampleRows() []Row {
	return Rows([]core.Transaction{
		{ID: "t-1", Description: "Coffee, large", Amount: 4.5, Type: core.Expense, Category: "Food & Dining", Date: core.NewDate(2024, 3, 3)},
		{ID: "t-2", Description: "Salary", Amount: 2500, Type: core.Income, Category: "Work", Date: core.NewDate(2024, 3, 1)},
	})
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format string
		ext    string
	}{
		{"", "csv"},
		{"CSV", "csv"},
		{"json", "json"},
		{"yml", "yaml"},
		{"yaml", "yaml"},
	}
	for _, tt := range tests {
		enc, err := ForFormat(tt.format)
		if err != nil {
			t.Fatalf("ForFormat(%q) error = %v", tt.format, err)
		}
		if enc.Extension() != tt.ext {
			t.Errorf("ForFormat(%q).Extension() = %q, want %q", tt.format, enc.Extension(), tt.ext)
		}
	}
	if _, err := ForFormat("xlsx"); !errors.Is(err, core.ErrInvalidFilter) {
		t.Errorf("ForFormat(xlsx) error = %v, want ErrInvalidFilter", err)
	}
}

func TestCSVEncoder(t *testing.T) {
	data, err := CSVEncoder{}.EncodeRows(sampleRows())
	if err != nil {
		t.Fatalf("EncodeRows() error = %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want header + 2", len(records))
	}
	if strings.Join(records[0], ",") != "id,date,type,category,description,amount" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][4] != "Coffee, large" || records[1][5] != "4.50" {
		t.Errorf("first row = %v", records[1])
	}
	if records[2][2] != "Income" || records[2][5] != "2500.00" {
		t.Errorf("second row = %v", records[2])
	}
}

func TestJSONEncoder(t *testing.T) {
	data, err := JSONEncoder{}.EncodeRows(sampleRows())
	if err != nil {
		t.Fatalf("EncodeRows() error = %v", err)
	}
	var back []Row
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back) != 2 || back[0].Amount != "4.50" || back[1].Date != "2024-03-01" {
		t.Errorf("decoded = %+v", back)
	}

	empty, _ := JSONEncoder{}.EncodeRows(nil)
	if string(empty) != "[]" {
		t.Errorf("empty export = %s, want []", empty)
	}
}

func TestYAMLEncoder(t *testing.T) {
	data, err := YAMLEncoder{}.EncodeRows(sampleRows())
	if err != nil {
		t.Fatalf("EncodeRows() error = %v", err)
	}
	var back []Row
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back) != 2 || back[0].Category != "Food & Dining" || back[0].Amount != "4.50" {
		t.Errorf("decoded = %+v", back)
	}
}
