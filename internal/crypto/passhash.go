// Package crypto implements server-side password hashing and verification.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Hasher turns plaintext passwords into storable strings and checks them later.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, encoded string) bool
}

// Params are the Argon2id cost parameters written into every encoded hash.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

// DefaultParams are tuned for server-side hashing.
var DefaultParams = Params{
	Time:    3,
	Memory:  64 * 1024, // 64 MB
	Threads: 1,
	KeyLen:  32,
	SaltLen: 16,
}

var b64 = base64.RawStdEncoding

// ErrMalformedHash is returned by Decode for strings not produced by Argon2id.Hash.
var ErrMalformedHash = errors.New("malformed argon2id hash")

// Argon2id hashes into the PHC string format:
//
//	$argon2id$v=19$m=65536,t=3,p=1$<salt>$<key>
//
// Verify reads the parameters back from the string, so hashes survive a change of Params.
type Argon2id struct{ Params Params }

// NewArgon2id returns a Hasher using p.
func NewArgon2id(p Params) *Argon2id { return &Argon2id{Params: p} }

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// Hash salts and hashes plaintext.
func (h *Argon2id) Hash(plaintext string) (string, error) {
	salt, err := RandBytes(h.Params.SaltLen)
	if err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}
	p := h.Params
	key := argon2.IDKey([]byte(plaintext), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads, b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// Verify reports whether plaintext matches encoded. Malformed input never matches.
func (h *Argon2id) Verify(plaintext, encoded string) bool {
	p, salt, key, err := Decode(encoded)
	if err != nil {
		return false
	}
	got := argon2.IDKey([]byte(plaintext), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return subtle.ConstantTimeCompare(got, key) == 1
}

// Decode splits an encoded hash into its parameters, salt and key.
func Decode(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrMalformedHash
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Params{}, nil, nil, ErrMalformedHash
	}
	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return Params{}, nil, nil, ErrMalformedHash
	}
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, ErrMalformedHash
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return Params{}, nil, nil, ErrMalformedHash
	}
	p.SaltLen = len(salt)
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}
