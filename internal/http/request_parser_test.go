package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"description": " Coffee\u0007 ", "amount": 4.5, "category": "Food", "password": " pw "}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}

	in := parser.TransactionInput()
	want := core.TransactionInput{Description: "Coffee", Amount: "4.5", Category: "Food"}
	if in != want {
		t.Errorf("TransactionInput() = %+v, want %+v", in, want)
	}
	if pw := parser.GetRawValue("password"); pw != " pw " {
		t.Errorf("GetRawValue(password) = %q, want untrimmed", pw)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "email=a%40b.com&password=secret1&username=form+user"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}

	reg := parser.RegistrationInput()
	if reg.Email != "a@b.com" || reg.Password != "secret1" || reg.Username != "form user" {
		t.Errorf("RegistrationInput() = %+v", reg)
	}
}

func TestRequestBodyParser_EmptyAndMalformed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))
	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}

	req = httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"broken":`))
	parser = NewRequestBodyParser(req)
	if err := parser.Parse(); err == nil {
		t.Error("Parse() on malformed JSON should fail")
	}
	if err := parser.Parse(); err == nil {
		t.Error("second Parse() should return the cached error")
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 20},
		{"5", 5},
		{"0", 20},
		{"-3", 20},
		{"abc", 20},
		{"500", 100},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			q := url.Values{"limit": {tt.raw}}
			if got := ParseLimit(q, "limit", 20, 100); got != tt.want {
				t.Errorf("ParseLimit(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseTypeFilter(t *testing.T) {
	tests := []struct {
		raw     string
		want    core.TxType
		wantErr bool
	}{
		{"", "", false},
		{"all", "", false},
		{"INCOME", core.Income, false},
		{"expense", core.Expense, false},
		{"transfer", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseTypeFilter(url.Values{"type": {tt.raw}})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseTypeFilter(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("a\x00b\tc\nd"); got != "ab\tc\nd" {
		t.Errorf("sanitizeInput = %q", got)
	}
}
