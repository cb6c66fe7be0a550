package password

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	hasher, err := NewArgon2(DefaultConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	hash, err := hasher.Hash("secret")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=2,p=2$") {
		t.Fatalf("unexpected PHC prefix: %s", hash)
	}

	ok, err := hasher.Verify("secret", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("expected password verification to succeed")
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	hasher, err := NewArgon2(DefaultConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	hash, err := hasher.Hash("correct-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := hasher.Verify("wrong-password", hash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password verification to fail")
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	hasher, err := NewArgon2(DefaultConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	if _, err := hasher.Hash(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestHashesAreSalted(t *testing.T) {
	hasher, err := NewArgon2(DefaultConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	h1, err := hasher.Hash("secret")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	h2, err := hasher.Hash("secret")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	hasher, err := NewArgon2(DefaultConfig())
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	for _, hash := range []string{
		"",
		"not-a-phc-string",
		"$argon2i$v=19$m=65536,t=2,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536$c2FsdA$aGFzaA",
	} {
		if _, err := hasher.Verify("secret", hash); err == nil {
			t.Errorf("expected error for hash %q", hash)
		}
	}
}

func TestNewArgon2RejectsWeakConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero", Config{}},
		{"low memory", Config{Memory: 1024, Time: 2, Parallelism: 2, SaltLength: 16, KeyLength: 32}},
		{"short salt", Config{Memory: 65536, Time: 2, Parallelism: 2, SaltLength: 8, KeyLength: 32}},
		{"short key", Config{Memory: 65536, Time: 2, Parallelism: 2, SaltLength: 16, KeyLength: 8}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewArgon2(tc.cfg); err == nil {
				t.Fatal("expected config validation error")
			}
		})
	}
}
