package port

import "github.com/Logitar/Identity-sub002/core/domain"

// PasswordHasher mints and revives the opaque Password capability. Hash is
// used when a plaintext secret is first issued; Decode revives a Password from
// its stored encoded form during event deserialization.
type PasswordHasher interface {
	Hash(plaintext string) (domain.Password, error)
	Decode(encoded string) (domain.Password, error)
}

// SecretGenerator issues cryptographically random plaintext secrets for api
// keys, persistent sessions and one-time passwords. The plaintext is handed to
// the caller exactly once; only its hash survives.
type SecretGenerator interface {
	Generate() (string, error)
}
