package core

import (
	"strings"
	"time"
	"unicode/utf8"
)

type (
	// TransactionInput is raw form input, before any normalization.
	TransactionInput struct {
		Description string `json:"description"`
		Amount      string `json:"amount"`
		Type        string `json:"type"`
		Category    string `json:"category"`
		Date        string `json:"date"`
	}

	RegistrationInput struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	LoginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	// CredentialMatcher reports whether a stored credential accepts a password.
	CredentialMatcher interface {
		Matches(stored, password string) bool
	}
)

// ValidateTransaction checks raw input in order, first failure wins:
// description, amount, category, then type and date. On success the returned
// Transaction carries the normalized fields only; identity fields (ID, OwnerID,
// CreatedAt) are left for the caller to assign or preserve.
func ValidateTransaction(in TransactionInput, categories []Category, p Policy, now time.Time) (Transaction, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return Transaction{}, ErrEmptyDescription
	}
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return Transaction{}, ErrDescriptionTooLong
	}

	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Transaction{}, ErrInvalidAmount
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		return Transaction{}, ErrMissingCategory
	}
	if p.RequireLiveCategory {
		live, ok := FindCategory(categories, category, p.CategoryMatch)
		if !ok {
			return Transaction{}, ErrMissingCategory
		}
		category = live.Name
	}

	txType := Expense
	if p.Variant == VariantRich && strings.TrimSpace(in.Type) != "" {
		t, ok := ParseTxType(in.Type)
		if !ok {
			return Transaction{}, ErrInvalidType
		}
		txType = t
	}

	date := DateOf(now)
	if strings.TrimSpace(in.Date) != "" {
		d, err := ParseDate(in.Date)
		if err != nil {
			return Transaction{}, ErrInvalidDate
		}
		date = d
	}

	return Transaction{
		Description: desc,
		Amount:      amount,
		Type:        txType,
		Category:    category,
		Date:        date,
	}, nil
}

// FindCategory looks a name up among live categories under the match mode.
func FindCategory(categories []Category, name string, mode MatchMode) (Category, bool) {
	for _, c := range categories {
		if mode.SameName(c.Name, name) {
			return c, true
		}
	}
	return Category{}, false
}

// ValidateRegistration checks a sign-up form against the users already
// registered under the same email (callers usually pass the lookup result).
// The returned user has a fresh id and normalized username and email; the
// password is returned as given, hashing is the caller's concern.
func ValidateRegistration(in RegistrationInput, existing []User, newID func() string) (User, error) {
	username := strings.TrimSpace(in.Username)
	email := NormalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return User{}, ErrMissingFields
	}
	if len(in.Password) < MinPasswordLength {
		return User{}, ErrPasswordTooShort
	}
	for _, u := range existing {
		if NormalizeEmail(u.Email) == email {
			return User{}, ErrEmailTaken
		}
	}
	return User{
		ID:       newID(),
		Username: username,
		Email:    email,
		Password: in.Password,
		Country:  DefaultCountry,
	}, nil
}

// ValidateLogin finds the candidate whose email and credential both match.
func ValidateLogin(in LoginInput, candidates []User, m CredentialMatcher) (User, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return User{}, ErrMissingCredentials
	}
	email := NormalizeEmail(in.Email)
	for _, u := range candidates {
		if u.Email == email && m.Matches(u.Password, in.Password) {
			return u, nil
		}
	}
	return User{}, ErrInvalidCredentials
}

// ValidateCategoryName trims and length-checks a category name.
func ValidateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}
