package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/Logitar/Identity-sub002/core/domain"
)

const (
	argon2Variant = "argon2id"
	argon2Version = "v=19"
)

var errInvalidHashFormat = errors.New("argon2: invalid encoded hash format")

// Argon2Config defines tunable parameters for Argon2id secret hashing.
type Argon2Config struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Config returns the library default Argon2id configuration.
func DefaultArgon2Config() Argon2Config {
	return Argon2Config{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Argon2Hasher implements port.PasswordHasher with Argon2id. The encoded form
// is "argon2id$v=19$m=<memory>,t=<iterations>,p=<parallelism>$<salt>$<hash>",
// parameters embedded so old hashes stay verifiable after retuning.
type Argon2Hasher struct {
	cfg Argon2Config
}

// NewArgon2Hasher constructs an Argon2Hasher.
func NewArgon2Hasher(cfg Argon2Config) (*Argon2Hasher, error) {
	if cfg.Memory < 8*1024 {
		return nil, fmt.Errorf("argon2: memory must be at least 8192")
	}
	if cfg.Iterations == 0 || cfg.Parallelism == 0 {
		return nil, fmt.Errorf("argon2: iterations and parallelism must be greater than zero")
	}
	if cfg.SaltLength < 8 || cfg.KeyLength < 16 {
		return nil, fmt.Errorf("argon2: salt must be at least 8 bytes and key at least 16 bytes")
	}
	return &Argon2Hasher{cfg: cfg}, nil
}

// Hash implements port.PasswordHasher.
func (h *Argon2Hasher) Hash(plaintext string) (domain.Password, error) {
	salt := make([]byte, h.cfg.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("argon2: generate salt: %w", err)
	}

	sum := argon2.IDKey([]byte(plaintext), salt, h.cfg.Iterations, h.cfg.Memory, h.cfg.Parallelism, h.cfg.KeyLength)
	encoded := strings.Join([]string{
		argon2Variant,
		argon2Version,
		fmt.Sprintf("m=%d,t=%d,p=%d", h.cfg.Memory, h.cfg.Iterations, h.cfg.Parallelism),
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	}, "$")

	return &argon2Password{encoded: encoded, cfg: h.cfg, salt: salt, sum: sum}, nil
}

// Decode implements port.PasswordHasher, reviving a Password from its stored form.
func (h *Argon2Hasher) Decode(encoded string) (domain.Password, error) {
	cfg, salt, sum, err := decodeArgon2Hash(encoded)
	if err != nil {
		return nil, err
	}
	return &argon2Password{encoded: encoded, cfg: cfg, salt: salt, sum: sum}, nil
}

// argon2Password is the concrete Password capability.
type argon2Password struct {
	encoded string
	cfg     Argon2Config
	salt    []byte
	sum     []byte
}

// IsMatch implements domain.Password.
func (p *argon2Password) IsMatch(plaintext string) bool {
	computed := argon2.IDKey([]byte(plaintext), p.salt, p.cfg.Iterations, p.cfg.Memory, p.cfg.Parallelism, uint32(len(p.sum)))
	return subtle.ConstantTimeCompare(computed, p.sum) == 1
}

// Encoded implements domain.Password.
func (p *argon2Password) Encoded() string { return p.encoded }

// MarshalJSON serializes the encoded form only, so events holding a Password
// marshal cleanly; codecs revive the capability through the hasher.
func (p *argon2Password) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.encoded)
}

func decodeArgon2Hash(encoded string) (Argon2Config, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 {
		return Argon2Config{}, nil, nil, errInvalidHashFormat
	}
	if parts[0] != argon2Variant {
		return Argon2Config{}, nil, nil, fmt.Errorf("argon2: unexpected variant %q", parts[0])
	}
	if parts[1] != argon2Version {
		return Argon2Config{}, nil, nil, fmt.Errorf("argon2: unsupported version %q", parts[1])
	}

	memory, iterations, parallelism, err := parseArgon2Params(parts[2])
	if err != nil {
		return Argon2Config{}, nil, nil, err
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return Argon2Config{}, nil, nil, fmt.Errorf("argon2: decode salt: %w", err)
	}
	sum, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Argon2Config{}, nil, nil, fmt.Errorf("argon2: decode hash: %w", err)
	}

	cfg := Argon2Config{
		Memory:      memory,
		Iterations:  iterations,
		Parallelism: parallelism,
		SaltLength:  uint32(len(salt)),
		KeyLength:   uint32(len(sum)),
	}
	return cfg, salt, sum, nil
}

func parseArgon2Params(segment string) (uint32, uint32, uint8, error) {
	entries := strings.Split(segment, ",")
	if len(entries) != 3 {
		return 0, 0, 0, errInvalidHashFormat
	}

	var (
		memory      uint32
		iterations  uint32
		parallelism uint8
	)
	for _, entry := range entries {
		kv := strings.Split(entry, "=")
		if len(kv) != 2 {
			return 0, 0, 0, errInvalidHashFormat
		}
		switch kv[0] {
		case "m":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil {
				return 0, 0, 0, fmt.Errorf("argon2: parse m: %w", err)
			}
			memory = uint32(v)
		case "t":
			v, err := strconv.ParseUint(kv[1], 10, 32)
			if err != nil {
				return 0, 0, 0, fmt.Errorf("argon2: parse t: %w", err)
			}
			iterations = uint32(v)
		case "p":
			v, err := strconv.ParseUint(kv[1], 10, 8)
			if err != nil {
				return 0, 0, 0, fmt.Errorf("argon2: parse p: %w", err)
			}
			parallelism = uint8(v)
		default:
			return 0, 0, 0, errInvalidHashFormat
		}
	}
	return memory, iterations, parallelism, nil
}
