package security

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newTestHasher(t *testing.T) *Argon2Hasher {
	t.Helper()
	cfg := DefaultArgon2Config()
	// Keep tests fast; production parameters are much heavier.
	cfg.Memory = 8 * 1024
	cfg.Iterations = 1
	hasher, err := NewArgon2Hasher(cfg)
	if err != nil {
		t.Fatalf("NewArgon2Hasher: %v", err)
	}
	return hasher
}

func TestArgon2HashRoundTrip(t *testing.T) {
	hasher := newTestHasher(t)

	password, err := hasher.Hash("P@s$W0rD")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	if !password.IsMatch("P@s$W0rD") {
		t.Error("hashed password should match its plaintext")
	}
	if password.IsMatch("p@s$w0rd") {
		t.Error("match must be case-sensitive")
	}

	if !strings.HasPrefix(password.Encoded(), "argon2id$") {
		t.Errorf("unexpected encoded form %q", password.Encoded())
	}

	revived, err := hasher.Decode(password.Encoded())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !revived.IsMatch("P@s$W0rD") {
		t.Error("decoded password should still match")
	}
}

func TestArgon2HashesAreSalted(t *testing.T) {
	hasher := newTestHasher(t)

	first, err := hasher.Hash("same")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	second, err := hasher.Hash("same")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if first.Encoded() == second.Encoded() {
		t.Error("two hashes of the same plaintext must differ")
	}
}

func TestArgon2DecodeRejectsGarbage(t *testing.T) {
	hasher := newTestHasher(t)
	for _, encoded := range []string{"", "plaintext", "argon2id$v=19$broken"} {
		if _, err := hasher.Decode(encoded); err == nil {
			t.Errorf("Decode(%q) should fail", encoded)
		}
	}
}

func TestArgon2PasswordMarshalsAsEncodedString(t *testing.T) {
	hasher := newTestHasher(t)

	password, err := hasher.Hash("P@s$W0rD")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	raw, err := json.Marshal(password)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if encoded != password.Encoded() {
		t.Error("password must serialize as its encoded form")
	}

	revived, err := hasher.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !revived.IsMatch("P@s$W0rD") {
		t.Error("serialized password should survive the round trip")
	}
}

func TestSecretGenerator(t *testing.T) {
	generator := NewSecretGenerator(0)

	first, err := generator.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := generator.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if first == second {
		t.Error("generated secrets must be unique")
	}
	if len(first) < 32 {
		t.Errorf("secret %q looks too short", first)
	}
}

func TestSecretValidator(t *testing.T) {
	validator := NewSecretValidator(
		MinLengthRule(8),
		RequireCharacterClassesRule(3),
	)

	if err := validator.Validate("P@s$W0rD"); err != nil {
		t.Errorf("expected valid secret, got %v", err)
	}

	var verr *SecretValidationError
	if err := validator.Validate("short"); !errors.As(err, &verr) {
		t.Errorf("expected SecretValidationError, got %v", err)
	} else if verr.Code != "min_length" {
		t.Errorf("Code = %q, want min_length", verr.Code)
	}

	if err := validator.Validate("alllowercaseonly"); !errors.As(err, &verr) {
		t.Errorf("expected SecretValidationError, got %v", err)
	} else if verr.Code != "character_classes" {
		t.Errorf("Code = %q, want character_classes", verr.Code)
	}
}
