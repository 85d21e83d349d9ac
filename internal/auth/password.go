// Package auth protects the browser panel: argon2id password hashes stored
// in the config file, and short-lived bearer tokens handed out after a
// successful password check.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/term"
)

// Argon2id parameters.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLength   = 16
)

// HashPassword creates an argon2id hash of the given password in the PHC
// string format: $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// VerifyPassword reports whether password matches encodedHash. The hash's
// own parameters are used, so hashes made with other costs still verify.
func VerifyPassword(password, encodedHash string) (bool, error) {
	p, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(p.key, computed) == 1, nil
}

type decodedHash struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func decodeHash(encodedHash string) (*decodedHash, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, fmt.Errorf("invalid hash format: expected 6 parts, got %d", len(parts))
	}
	if parts[1] != "argon2id" {
		return nil, fmt.Errorf("invalid hash algorithm: expected argon2id, got %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("invalid version format: %w", err)
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("unsupported argon2 version: %d", version)
	}

	d := &decodedHash{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &d.memory, &d.time, &d.threads); err != nil {
		return nil, fmt.Errorf("invalid params format: %w", err)
	}

	var err error
	if d.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, fmt.Errorf("invalid salt encoding: %w", err)
	}
	if d.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, fmt.Errorf("invalid hash encoding: %w", err)
	}
	if len(d.key) == 0 {
		return nil, errors.New("invalid hash: empty key")
	}

	return d, nil
}

// ErrEmptyPassword is returned when the operator enters an empty password.
var ErrEmptyPassword = errors.New("password cannot be empty")

// ErrPasswordMismatch is returned when the confirmation doesn't match.
var ErrPasswordMismatch = errors.New("passwords do not match")

// PasswordReader reads one line of hidden input.
type PasswordReader func() ([]byte, error)

// StdinPasswordReader reads a password from the controlling terminal
// without echo.
func StdinPasswordReader() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

// PromptAndConfirmPassword asks for the panel password twice, writing
// prompts to out.
func PromptAndConfirmPassword(out io.Writer, read PasswordReader) (string, error) {
	password, err := prompt(out, read, "Panel password: ")
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", ErrEmptyPassword
	}

	confirm, err := prompt(out, read, "Confirm password: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", ErrPasswordMismatch
	}

	return password, nil
}

func prompt(out io.Writer, read PasswordReader, label string) (string, error) {
	fmt.Fprint(out, label)
	b, err := read()
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}
