package security_test

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/angelmondragon/storerate-backend/pkg/config"
	"github.com/angelmondragon/storerate-backend/pkg/security"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

var fastCfg = config.PasswordConfig{BcryptCost: bcrypt.MinCost}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("Very$ecure1", fastCfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword returned empty string")
	}

	if !security.VerifyPassword("Very$ecure1", hash) {
		t.Fatal("VerifyPassword failed for the correct password")
	}
	if security.VerifyPassword("bogus-password", hash) {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	first, err := security.HashPassword("Same@Input", fastCfg)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := security.HashPassword("Same@Input", fastCfg)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatal("expected different hashes for identical input")
	}
}

func TestHashPasswordClampsCost(t *testing.T) {
	hash, err := security.HashPassword("Clamp#Me", config.PasswordConfig{BcryptCost: 1})
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("cost: %v", err)
	}
	if cost != bcrypt.MinCost {
		t.Fatalf("expected cost clamped to %d, got %d", bcrypt.MinCost, cost)
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := security.HashPassword("", fastCfg); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyPasswordMalformedHashIsFalse(t *testing.T) {
	for _, encoded := range []string{
		"",
		"not-a-hash",
		"$2a$10$short",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=64,t=1,p=1$!!!$aGFzaA",
		"$argon2id$v=19$m=64$c2FsdA",
	} {
		if security.VerifyPassword("irrelevant", encoded) {
			t.Fatalf("expected false for malformed hash %q", encoded)
		}
	}
}

func TestVerifyPasswordAcceptsArgon2id(t *testing.T) {
	salt := []byte("0123456789abcdef")
	key := argon2.IDKey([]byte("Legacy!Pass"), salt, 1, 64, 1, 32)
	encoded := fmt.Sprintf("$argon2id$v=19$m=64,t=1,p=1$%s$%s",
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	if !security.VerifyPassword("Legacy!Pass", encoded) {
		t.Fatal("expected argon2id hash to verify")
	}
	if security.VerifyPassword("legacy!pass", encoded) {
		t.Fatal("expected wrong password to fail against argon2id hash")
	}
}

func TestVerifyPasswordRejectsOutOfRangeArgon2id(t *testing.T) {
	salt := base64.RawStdEncoding.EncodeToString([]byte("0123456789abcdef"))
	key := base64.RawStdEncoding.EncodeToString(make([]byte, 32))
	for _, head := range []string{
		"$argon2id$v=16$m=64,t=1,p=1",
		"$argon2id$v=19$m=64,t=4294967295,p=1",
		"$argon2id$v=19$m=4294967295,t=1,p=1",
		"$argon2id$v=19$m=4,t=1,p=1",
		"$argon2id$v=19$m=64,t=11,p=1",
	} {
		encoded := head + "$" + salt + "$" + key
		if security.VerifyPassword("irrelevant", encoded) {
			t.Fatalf("expected false for %q", encoded)
		}
	}

	short := base64.RawStdEncoding.EncodeToString([]byte("salt"))
	if security.VerifyPassword("irrelevant", "$argon2id$v=19$m=64,t=1,p=1$"+short+"$"+key) {
		t.Fatal("expected false for a short salt")
	}
}

func TestCompareDummyDoesNotPanic(t *testing.T) {
	security.CompareDummy("whatever", fastCfg)
	security.CompareDummy("again", fastCfg)
}
