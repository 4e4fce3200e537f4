package service

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	ErrInvalidSlug      = errors.New("slug may only contain letters, numbers, hyphens and underscores")
	ErrInvalidUsername  = errors.New("username contains invalid characters")
	ErrReservedUsername = errors.New("username 'me' is reserved")
	ErrInvalidYear      = errors.New("invalid year")
)

var (
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
)

func validateSlug(slug string) error {
	if !slugPattern.MatchString(slug) {
		return ErrInvalidSlug
	}
	return nil
}

// validateUsername enforces the platform username charset and rejects the
// literal "me", which is reserved for the self-profile endpoint.
func validateUsername(username string) error {
	if username == "me" {
		return ErrReservedUsername
	}
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// validateYear rejects years in the future and nonsensical negatives.
func validateYear(year int) error {
	current := time.Now().Year()
	if year > current {
		return fmt.Errorf("%w: %d is in the future", ErrInvalidYear, year)
	}
	if year < 0 {
		return fmt.Errorf("%w: %d is negative", ErrInvalidYear, year)
	}
	return nil
}
