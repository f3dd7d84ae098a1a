package service

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/eduventure/auth-service/internal/core/domain"
)

var validate = validator.New()

// htmlEscaper mirrors validator.js escape(): the characters below are
// replaced so stored profile fields are inert in HTML and script contexts.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&#x27;",
	"<", "&lt;",
	">", "&gt;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

func sanitize(s string) string {
	return htmlEscaper.Replace(s)
}

// sanitizeEmail validates syntax on the raw value and returns the escaped form
// used for storage and lookup.
func sanitizeEmail(email string) (string, error) {
	if email == "" {
		return "", domain.NewValidationError("email is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return "", domain.NewValidationError("invalid email address")
	}
	return sanitize(email), nil
}

// requireEmail escapes a non-empty email without re-checking its syntax.
// Only signup enforces syntax; every later lookup matches what signup stored.
func requireEmail(email string) (string, error) {
	if email == "" {
		return "", domain.NewValidationError("email is required")
	}
	return sanitize(email), nil
}
