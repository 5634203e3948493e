package security

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/angelmondragon/storerate-backend/pkg/config"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidHash signals a malformed hash string. It never leaves this package:
// VerifyPassword folds it into a plain false.
var ErrInvalidHash = errors.New("invalid password hash")

const argonPrefix = "$argon2id$"

// Limits for stored argon2id parameters. Hashes outside them are treated as
// corrupt rather than computed.
const (
	argonVersion    = "v=19"
	argonMinMemory  = 8
	argonMaxMemory  = 512 * 1024
	argonMaxTime    = 10
	argonMinSaltLen = 8
	argonMaxSaltLen = 64
	argonMinKeyLen  = 16
	argonMaxKeyLen  = 64
)

// HashPassword returns a salted bcrypt hash using the configured cost.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), costFromConfig(cfg))
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the encoded hash. Both bcrypt
// and Argon2id encodings are accepted; anything else is simply a mismatch.
func VerifyPassword(password, encoded string) bool {
	if strings.HasPrefix(encoded, argonPrefix) {
		ok, err := verifyArgon2id(password, encoded)
		return err == nil && ok
	}
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) == nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// CompareDummy burns one bcrypt comparison so that lookups for unknown emails
// cost about as much as a wrong password.
func CompareDummy(password string, cfg config.PasswordConfig) {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("storerate-dummy-password"), costFromConfig(cfg))
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

func costFromConfig(cfg config.PasswordConfig) int {
	if cfg.BcryptCost == 0 {
		return bcrypt.DefaultCost
	}
	return clampInt(cfg.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
}

type argonParams struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
}

func verifyArgon2id(password, encoded string) (bool, error) {
	params, salt, hash, err := decodeArgon2id(encoded)
	if err != nil {
		return false, err
	}
	computed := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Parallelism, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, computed) == 1, nil
}

// decodeArgon2id parses $argon2id$v=19$m=..,t=..,p=..$salt$hash.
func decodeArgon2id(encoded string) (argonParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != argonVersion {
		return argonParams{}, nil, nil, ErrInvalidHash
	}

	var params argonParams
	for _, token := range strings.Split(parts[3], ",") {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			return argonParams{}, nil, nil, ErrInvalidHash
		}
		bits := 32
		if key == "p" {
			bits = 8
		}
		v, err := strconv.ParseUint(value, 10, bits)
		if err != nil {
			return argonParams{}, nil, nil, ErrInvalidHash
		}
		switch key {
		case "m":
			params.Memory = uint32(v)
		case "t":
			params.Time = uint32(v)
		case "p":
			params.Parallelism = uint8(v)
		}
	}
	if params.Memory < argonMinMemory || params.Memory > argonMaxMemory ||
		params.Time == 0 || params.Time > argonMaxTime ||
		params.Parallelism == 0 {
		return argonParams{}, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) < argonMinSaltLen || len(salt) > argonMaxSaltLen {
		return argonParams{}, nil, nil, ErrInvalidHash
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) < argonMinKeyLen || len(hash) > argonMaxKeyLen {
		return argonParams{}, nil, nil, ErrInvalidHash
	}
	return params, salt, hash, nil
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
