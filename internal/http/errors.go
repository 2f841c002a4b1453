package http

import (
	"net/http"

	"fintrack/internal/core"
)

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Error     string    `json:"error"`
	Kind      core.Kind `json:"kind,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

var kindMessages = map[core.Kind]string{
	core.KindEmptyDescription:   "Please enter a description",
	core.KindDescriptionTooLong: "Description must be 255 characters or less",
	core.KindInvalidAmount:      "Please enter a valid amount greater than 0",
	core.KindMissingCategory:    "Please select a category",
	core.KindInvalidType:        "Please select a valid transaction type",
	core.KindInvalidDate:        "Please enter a valid date (YYYY-MM-DD)",

	core.KindMissingFields:      "Please fill in all fields",
	core.KindPasswordTooShort:   "Password must be at least 6 characters long",
	core.KindEmailTaken:         "An account with this email already exists",
	core.KindInvalidCredentials: "Invalid email or password. Please check your credentials.",
	core.KindMissingCredentials: "Please enter both email and password",

	core.KindEmptyName:     "Please enter a category name",
	core.KindNameTooLong:   "Category name must be 50 characters or less",
	core.KindDuplicateName: "A category with this name already exists",
	core.KindCategoryInUse: "Cannot delete category that is in use by transactions",

	core.KindNotFound:      "Expense not found",
	core.KindInvalidFilter: "Invalid filter",
	core.KindInvalidPeriod: "Invalid period. Use daily, weekly, monthly or yearly",
}

// StatusFor maps an error kind to its HTTP status. Infrastructure failures
// carry no kind and map to 500.
func StatusFor(kind core.Kind) int {
	switch kind {
	case "":
		return http.StatusInternalServerError
	case core.KindEmailTaken, core.KindDuplicateName, core.KindCategoryInUse:
		return http.StatusConflict
	case core.KindInvalidCredentials:
		return http.StatusUnauthorized
	case core.KindNotFound:
		return http.StatusNotFound
	}
	if _, ok := kindMessages[kind]; ok {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// MessageFor returns the user-facing text for a kind.
func MessageFor(kind core.Kind) string {
	if msg, ok := kindMessages[kind]; ok {
		return msg
	}
	return "Something went wrong. Please try again."
}
