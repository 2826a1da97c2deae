package domain

import (
	"errors"
	"testing"
	"time"
)

func newTestOTP(t *testing.T, secret string, expiresOn *time.Time, maximumAttempts *int) *OneTimePassword {
	t.Helper()
	return NewOneTimePassword(NewOneTimePasswordID(""), plainSecret{secret}, expiresOn, maximumAttempts, "admin")
}

func TestOneTimePasswordValidate(t *testing.T) {
	t.Run("success is single use", func(t *testing.T) {
		otp := newTestOTP(t, "123456", nil, nil)
		if err := otp.Validate("123456", ""); err != nil {
			t.Fatalf("Validate: %v", err)
		}
		if !otp.HasValidationSucceeded() {
			t.Error("validation should be recorded")
		}
		if otp.AttemptCount() != 1 {
			t.Errorf("AttemptCount = %d, want 1", otp.AttemptCount())
		}
		if err := otp.Validate("123456", ""); !errors.Is(err, ErrOneTimePasswordAlreadyUsed) {
			t.Errorf("expected ErrOneTimePasswordAlreadyUsed, got %v", err)
		}
	})

	t.Run("mismatch raises a durable failure event before erroring", func(t *testing.T) {
		otp := newTestOTP(t, "123456", nil, nil)
		version := otp.Version()
		if err := otp.Validate("000000", ""); !errors.Is(err, ErrIncorrectOneTimePassword) {
			t.Fatalf("expected ErrIncorrectOneTimePassword, got %v", err)
		}
		if otp.Version() != version+1 {
			t.Error("a failed attempt must advance the version")
		}
		if otp.AttemptCount() != 1 {
			t.Errorf("AttemptCount = %d, want 1", otp.AttemptCount())
		}
		changes := otp.Changes()
		if _, ok := changes[len(changes)-1].(*OneTimePasswordValidationFailed); !ok {
			t.Errorf("expected *OneTimePasswordValidationFailed, got %T", changes[len(changes)-1])
		}
	})

	t.Run("expired", func(t *testing.T) {
		past := time.Now().UTC().Add(-time.Minute)
		otp := newTestOTP(t, "123456", &past, nil)
		if err := otp.Validate("123456", ""); !errors.Is(err, ErrOneTimePasswordExpired) {
			t.Errorf("expected ErrOneTimePasswordExpired, got %v", err)
		}
		if otp.AttemptCount() != 0 {
			t.Error("expiration check must not count an attempt")
		}
	})

	t.Run("single attempt budget locks after one failure", func(t *testing.T) {
		one := 1
		otp := newTestOTP(t, "123456", nil, &one)
		if err := otp.Validate("000000", ""); !errors.Is(err, ErrIncorrectOneTimePassword) {
			t.Fatalf("expected ErrIncorrectOneTimePassword, got %v", err)
		}
		// The budget is exhausted; even the correct secret is refused.
		if err := otp.Validate("123456", ""); !errors.Is(err, ErrMaximumAttemptsReached) {
			t.Errorf("expected ErrMaximumAttemptsReached, got %v", err)
		}
		if otp.AttemptCount() != 1 {
			t.Errorf("AttemptCount = %d, want 1", otp.AttemptCount())
		}
	})

	t.Run("already used wins over expiration", func(t *testing.T) {
		soon := time.Now().UTC().Add(10 * time.Millisecond)
		otp := newTestOTP(t, "123456", &soon, nil)
		if err := otp.Validate("123456", ""); err != nil {
			t.Fatalf("Validate: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
		if err := otp.Validate("123456", ""); !errors.Is(err, ErrOneTimePasswordAlreadyUsed) {
			t.Errorf("expected ErrOneTimePasswordAlreadyUsed, got %v", err)
		}
	})
}

func TestLoadOneTimePasswordCarriesAttemptCount(t *testing.T) {
	otp := newTestOTP(t, "123456", nil, nil)
	_ = otp.Validate("000000", "")
	_ = otp.Validate("000000", "")

	replayed, err := LoadOneTimePassword(otp.Changes())
	if err != nil {
		t.Fatalf("LoadOneTimePassword: %v", err)
	}
	if replayed.AttemptCount() != 2 {
		t.Errorf("replayed AttemptCount = %d, want 2", replayed.AttemptCount())
	}
	if replayed.HasValidationSucceeded() {
		t.Error("replayed OTP should not be marked used")
	}
}

func TestOneTimePasswordDeleteIsIdempotent(t *testing.T) {
	otp := newTestOTP(t, "123456", nil, nil)
	otp.Delete("admin")
	version := otp.Version()
	otp.Delete("admin")
	if otp.Version() != version {
		t.Error("second delete must not raise an event")
	}
}
