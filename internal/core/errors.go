package core

import "errors"

// Kind classifies a recoverable, user-facing failure.
type Kind string

const (
	KindEmptyDescription   Kind = "empty_description"
	KindDescriptionTooLong Kind = "description_too_long"
	KindInvalidAmount      Kind = "invalid_amount"
	KindMissingCategory    Kind = "missing_category"
	KindInvalidType        Kind = "invalid_type"
	KindInvalidDate        Kind = "invalid_date"

	KindMissingFields      Kind = "missing_fields"
	KindPasswordTooShort   Kind = "password_too_short"
	KindEmailTaken         Kind = "email_taken"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindMissingCredentials Kind = "missing_credentials"

	KindEmptyName     Kind = "empty_name"
	KindNameTooLong   Kind = "name_too_long"
	KindDuplicateName Kind = "duplicate_name"
	KindCategoryInUse Kind = "category_in_use"

	KindNotFound      Kind = "not_found"
	KindInvalidFilter Kind = "invalid_filter"
	KindInvalidPeriod Kind = "invalid_period"
)

// Error is the failure type returned by core operations. The sentinels below
// are compared by identity, so errors.Is works through any wrapping.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

var (
	ErrEmptyDescription   = newError(KindEmptyDescription, "empty description")
	ErrDescriptionTooLong = newError(KindDescriptionTooLong, "description too long (max 255 characters)")
	ErrInvalidAmount      = newError(KindInvalidAmount, "invalid amount")
	ErrMissingCategory    = newError(KindMissingCategory, "missing category")
	ErrInvalidType        = newError(KindInvalidType, "invalid transaction type")
	ErrInvalidDate        = newError(KindInvalidDate, "invalid date")

	ErrMissingFields      = newError(KindMissingFields, "missing required fields")
	ErrPasswordTooShort   = newError(KindPasswordTooShort, "password too short (min 6)")
	ErrEmailTaken         = newError(KindEmailTaken, "email already registered")
	ErrInvalidCredentials = newError(KindInvalidCredentials, "invalid credentials")
	ErrMissingCredentials = newError(KindMissingCredentials, "missing credentials")

	ErrEmptyName     = newError(KindEmptyName, "empty category name")
	ErrNameTooLong   = newError(KindNameTooLong, "category name too long (max 50 characters)")
	ErrDuplicateName = newError(KindDuplicateName, "duplicate category name")
	ErrCategoryInUse = newError(KindCategoryInUse, "category in use")

	ErrNotFound      = newError(KindNotFound, "not found")
	ErrInvalidFilter = newError(KindInvalidFilter, "invalid filter")
	ErrInvalidPeriod = newError(KindInvalidPeriod, "invalid period")
)

// KindOf returns the kind carried by err, or "" for infrastructure failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
