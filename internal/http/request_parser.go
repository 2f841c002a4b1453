package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

// maxBodyBytes caps request bodies read by RequestBodyParser.
const maxBodyBytes = 1 << 20

// RequestBodyParser reads a request body once and exposes its fields whether
// the client sent JSON or form-encoded data.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]interface{}
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser creates a parser for the given request.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns the sanitized value for key, or "" when absent.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
		return ""
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// GetRawValue returns the value for key without trimming. Passwords go
// through here so that leading or trailing spaces stay significant.
func (p *RequestBodyParser) GetRawValue(key string) string {
	if p.jsonData != nil {
		return stringValue(p.jsonData[key])
	}
	if p.formData != nil {
		return p.formData.Get(key)
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func (p *RequestBodyParser) TransactionInput() core.TransactionInput {
	return core.TransactionInput{
		Description: p.Get("description"),
		Amount:      p.Get("amount"),
		Type:        p.Get("type"),
		Category:    p.Get("category"),
		Date:        p.Get("date"),
	}
}

func (p *RequestBodyParser) RegistrationInput() core.RegistrationInput {
	return core.RegistrationInput{
		Username: p.Get("username"),
		Email:    p.Get("email"),
		Password: p.GetRawValue("password"),
	}
}

func (p *RequestBodyParser) LoginInput() core.LoginInput {
	return core.LoginInput{
		Email:    p.Get("email"),
		Password: p.GetRawValue("password"),
	}
}

func (p *RequestBodyParser) ProfileInput() services.ProfileInput {
	return services.ProfileInput{
		Username: p.Get("username"),
		Country:  p.Get("country"),
	}
}

// stringValue converts a decoded JSON value to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseLimit reads a positive integer query parameter, falling back to def
// when absent or malformed and clamping to max.
func ParseLimit(query url.Values, key string, def, max int) int {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// ParseTypeFilter maps ?type= to a transaction type; "" and "all" mean no filter.
func ParseTypeFilter(query url.Values) (core.TxType, error) {
	q, err := core.ParseQuery("", query.Get("type"), "")
	if err != nil {
		return "", err
	}
	return q.Type, nil
}

// sanitizeInput drops control characters other than tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
