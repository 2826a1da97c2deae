package domain

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	displayNameMaxLength = 255
	uniqueNameMaxLength  = 255
	customAttrKeyMaxLen  = 255
)

// uniqueNameAllowedSymbols lists the non-alphanumeric runes a unique name may contain.
const uniqueNameAllowedSymbols = "-._+@"

// DisplayName is a human-readable label: trimmed, non-empty, at most 255 runes.
type DisplayName string

// NewDisplayName validates and returns a display name.
func NewDisplayName(value string) (DisplayName, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: display name is empty", ErrInvalidDisplayName)
	}
	if len([]rune(value)) > displayNameMaxLength {
		return "", fmt.Errorf("%w: display name exceeds %d characters", ErrInvalidDisplayName, displayNameMaxLength)
	}
	return DisplayName(value), nil
}

// Description is free-form text attached to an aggregate. It is always optional;
// aggregates hold *Description, nil meaning absent.
type Description string

// NewDescription trims the value; ok is false when nothing remains.
func NewDescription(value string) (Description, bool) {
	value = strings.TrimSpace(value)
	return Description(value), value != ""
}

// UniqueName is a tenant-scoped, uniqueness-bearing name. Allowed characters are
// letters, digits and "-._+@". Uniqueness comparisons are case-insensitive.
type UniqueName string

// NewUniqueName validates and returns a unique name.
func NewUniqueName(value string) (UniqueName, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: unique name is empty", ErrInvalidUniqueName)
	}
	if len([]rune(value)) > uniqueNameMaxLength {
		return "", fmt.Errorf("%w: unique name exceeds %d characters", ErrInvalidUniqueName, uniqueNameMaxLength)
	}
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(uniqueNameAllowedSymbols, r) {
			continue
		}
		return "", fmt.Errorf("%w: unique name %q contains forbidden character %q", ErrInvalidUniqueName, value, r)
	}
	return UniqueName(value), nil
}

// Normalized returns the form under which uniqueness is evaluated.
func (n UniqueName) Normalized() string {
	return strings.ToLower(string(n))
}

// validateCustomAttribute checks a key/value pair before it enters an update patch.
// Keys follow identifier rules (letter or underscore, then letters, digits or
// underscores); values must be non-empty once trimmed.
func validateCustomAttribute(key, value string) (string, string, error) {
	key = strings.TrimSpace(key)
	if err := validateCustomAttributeKey(key); err != nil {
		return "", "", err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", "", fmt.Errorf("%w: value for key %q is empty", ErrInvalidCustomAttribute, key)
	}
	return key, value, nil
}

func trimKey(key string) string {
	return strings.TrimSpace(key)
}

func validateCustomAttributeKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key is empty", ErrInvalidCustomAttribute)
	}
	if len([]rune(key)) > customAttrKeyMaxLen {
		return fmt.Errorf("%w: key exceeds %d characters", ErrInvalidCustomAttribute, customAttrKeyMaxLen)
	}
	for i, r := range key {
		if unicode.IsLetter(r) || r == '_' || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return fmt.Errorf("%w: key %q is not a valid identifier", ErrInvalidCustomAttribute, key)
	}
	return nil
}

// copyAttributes returns a defensive copy so callers never hold a mutable
// reference into aggregate state.
func copyAttributes(attrs map[string]string) map[string]string {
	if len(attrs) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

// Change marks an optional field as explicitly modified: a nil *Change leaves
// the field untouched, a non-nil one replaces it with Value (which may be nil
// to clear the field).
type Change[T any] struct {
	Value T `json:"value"`
}

// NewChange wraps a value as an explicit modification.
func NewChange[T any](value T) *Change[T] {
	return &Change[T]{Value: value}
}
