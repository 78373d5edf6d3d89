// Package validator parses raw request input into typed user fields.
//
// Every parser is total: it never panics, and a failure is always reported as
// a *errors.Error carrying the HTTP status and a stable error code. Patterns
// come from config.ValidationConfig and are compiled once in New.
package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"user-portal/pkg/common/config"
	errs "user-portal/pkg/common/errors"
)

const (
	UsernameMinLength = 4
	UsernameMaxLength = 32
	EmailMaxLength    = 256
	PasswordMinLength = 8
	PasswordMaxLength = 256
	HashLength        = 60
)

type Validator struct {
	idPattern       *regexp.Regexp
	usernamePattern *regexp.Regexp
	emailPattern    *regexp.Regexp
	hashPattern     *regexp.Regexp
}

// New compiles the configured patterns. A missing or invalid pattern is a
// startup error.
func New(cfg config.ValidationConfig) (*Validator, error) {
	v := &Validator{}
	patterns := []struct {
		name string
		expr string
		dst  **regexp.Regexp
	}{
		{"userIdPattern", cfg.UserIDPattern, &v.idPattern},
		{"usernamePattern", cfg.UsernamePattern, &v.usernamePattern},
		{"emailPattern", cfg.EmailPattern, &v.emailPattern},
		{"hashPattern", cfg.HashPattern, &v.hashPattern},
	}

	for _, p := range patterns {
		if p.expr == "" {
			return nil, fmt.Errorf("invalid %s configuration: empty pattern", p.name)
		}
		re, err := regexp.Compile(p.expr)
		if err != nil {
			return nil, fmt.Errorf("invalid %s configuration: %w", p.name, err)
		}
		*p.dst = re
	}
	return v, nil
}

// Username accepts a string of 4 to 32 characters matching the username pattern.
func (v *Validator) Username(raw any) (string, error) {
	username, ok := raw.(string)
	if !ok {
		return "", errs.ErrUsernameType
	}

	n := utf8.RuneCountInString(username)
	switch {
	case n < UsernameMinLength:
		return "", errs.ErrUsernameTooShort
	case n > UsernameMaxLength:
		return "", errs.ErrUsernameTooLong
	case !v.usernamePattern.MatchString(username):
		return "", errs.ErrUsernameFormat
	}
	return username, nil
}

// Email trims the input before checking length and pattern and returns the
// trimmed value.
func (v *Validator) Email(raw any) (string, error) {
	email, ok := raw.(string)
	if !ok {
		return "", errs.ErrEmailType
	}

	email = strings.TrimSpace(email)
	switch {
	case utf8.RuneCountInString(email) > EmailMaxLength:
		return "", errs.ErrEmailLength
	case !v.emailPattern.MatchString(email):
		return "", errs.ErrEmailFormat
	}
	return email, nil
}

// Password rejects surrounding whitespace before looking at the length, so a
// short padded password reports the format error.
func (v *Validator) Password(raw any) (string, error) {
	password, ok := raw.(string)
	if !ok {
		return "", errs.ErrPasswordType
	}

	n := utf8.RuneCountInString(password)
	switch {
	case hasSurroundingSpace(password):
		return "", errs.ErrPasswordFormat
	case n < PasswordMinLength:
		return "", errs.ErrPasswordTooShort
	case n > PasswordMaxLength:
		return "", errs.ErrPasswordTooLong
	}
	return password, nil
}

// Hash checks a stored credential hash. Both the length and the pattern
// mismatch report INVALID_HASH_LENGTH.
func (v *Validator) Hash(raw any) (string, error) {
	hash, ok := raw.(string)
	if !ok {
		return "", errs.ErrHashType
	}

	hash = strings.TrimSpace(hash)
	switch {
	case utf8.RuneCountInString(hash) != HashLength:
		return "", errs.ErrHashLength
	case !v.hashPattern.MatchString(hash):
		return "", errs.ErrHashPattern
	}
	return hash, nil
}

func hasSurroundingSpace(s string) bool {
	if s == "" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(s)
	last, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(first) || unicode.IsSpace(last)
}
