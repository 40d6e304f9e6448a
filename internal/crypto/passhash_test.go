package crypto

import (
	"bytes"
	"strings"
	"testing"
)

// cheap parameters keep the suite fast
var testParams = Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestRandBytes_LengthAndUniqueness(t *testing.T) {
	t.Parallel()

	const n = 64
	a, err := RandBytes(n)
	if err != nil {
		t.Fatalf("RandBytes: %v", err)
	}
	if len(a) != n {
		t.Fatalf("len=%d, want=%d", len(a), n)
	}
	b, err := RandBytes(n)
	if err != nil {
		t.Fatalf("RandBytes(2): %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatalf("two subsequent RandBytes(%d) are equal, looks non-random", n)
	}
}

func TestArgon2id_HashFormatAndSalt(t *testing.T) {
	t.Parallel()

	h := NewArgon2id(testParams)
	h1, err := h.Hash("p@ssw0rd")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(h1, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected encoding: %s", h1)
	}
	h2, err := h.Hash("p@ssw0rd")
	if err != nil {
		t.Fatalf("Hash(2): %v", err)
	}
	if h1 == h2 {
		t.Fatalf("same password hashed twice must differ by salt")
	}
}

func TestArgon2id_Verify(t *testing.T) {
	t.Parallel()

	h := NewArgon2id(testParams)
	enc, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	if !h.Verify("correct horse battery staple", enc) {
		t.Fatalf("Verify: expected true for correct password")
	}
	if h.Verify("wrong", enc) {
		t.Fatalf("Verify: expected false for wrong password")
	}
	if h.Verify("", enc) {
		t.Fatalf("Verify: expected false for empty password")
	}

	// parameters come from the encoded string, not from the verifying hasher
	other := NewArgon2id(DefaultParams)
	if !other.Verify("correct horse battery staple", enc) {
		t.Fatalf("Verify with different params: expected true")
	}
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=16$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$",
	}
	h := NewArgon2id(testParams)
	for _, c := range cases {
		if _, _, _, err := Decode(c); err == nil {
			t.Fatalf("Decode(%q): expected error", c)
		}
		if h.Verify("x", c) {
			t.Fatalf("Verify(%q): expected false", c)
		}
	}
}
