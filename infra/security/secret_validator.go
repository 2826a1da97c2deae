package security

import (
	"fmt"
	"unicode"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// SecretValidationError represents a single secret policy violation.
type SecretValidationError struct {
	Code    string
	Message string
}

// Error implements error.
func (e *SecretValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// SecretRule validates a plaintext secret against one policy rule.
type SecretRule interface {
	Validate(secret string) error
}

// SecretRuleFunc adapts a function to be used as a SecretRule.
type SecretRuleFunc func(secret string) error

// Validate executes the underlying rule function.
func (f SecretRuleFunc) Validate(secret string) error {
	return f(secret)
}

// SecretValidator applies a sequence of rules to a plaintext secret before it
// is hashed into the Password capability. Callers pick the rules appropriate
// for the credential kind (user passwords are typically stricter than
// generated api key secrets).
type SecretValidator struct {
	rules []SecretRule
}

// NewSecretValidator constructs a validator with the provided rules.
func NewSecretValidator(rules ...SecretRule) *SecretValidator {
	copied := make([]SecretRule, len(rules))
	copy(copied, rules)
	return &SecretValidator{rules: copied}
}

// Validate executes all rules and returns the first violation.
func (v *SecretValidator) Validate(secret string) error {
	if v == nil {
		return fmt.Errorf("secret validator not configured")
	}
	for _, rule := range v.rules {
		if err := rule.Validate(secret); err != nil {
			return err
		}
	}
	return nil
}

// MinLengthRule ensures the secret has at least min characters.
func MinLengthRule(min int) SecretRule {
	return SecretRuleFunc(func(secret string) error {
		if len([]rune(secret)) < min {
			return &SecretValidationError{
				Code:    "min_length",
				Message: fmt.Sprintf("secret must be at least %d characters long", min),
			}
		}
		return nil
	})
}

// RequireCharacterClassesRule ensures the secret draws from at least min
// distinct classes (upper, lower, digit, symbol).
func RequireCharacterClassesRule(min int) SecretRule {
	return SecretRuleFunc(func(secret string) error {
		if min <= 0 {
			return nil
		}
		var upper, lower, digit, symbol bool
		for _, r := range secret {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			default:
				symbol = true
			}
		}
		classes := 0
		for _, present := range []bool{upper, lower, digit, symbol} {
			if present {
				classes++
			}
		}
		if classes < min {
			return &SecretValidationError{
				Code:    "character_classes",
				Message: fmt.Sprintf("secret must use at least %d character classes", min),
			}
		}
		return nil
	})
}

// MinStrengthRule scores the secret with zxcvbn and requires at least the
// given score (0 to 4).
func MinStrengthRule(minScore int) SecretRule {
	return SecretRuleFunc(func(secret string) error {
		if minScore <= 0 {
			return nil
		}
		result := zxcvbn.PasswordStrength(secret, nil)
		if result.Score < minScore {
			return &SecretValidationError{
				Code:    "strength",
				Message: fmt.Sprintf("secret strength %d is below the required %d", result.Score, minScore),
			}
		}
		return nil
	})
}
