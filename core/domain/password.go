package domain

// Password is an opaque, verifiable secret. The core never inspects hash
// internals; concrete implementations (and the hasher minting them) live in
// infra/security or in the embedding application.
type Password interface {
	// IsMatch reports whether the plaintext corresponds to this secret.
	IsMatch(plaintext string) bool
	// Encoded returns the storable encoded form of the secret.
	Encoded() string
}
