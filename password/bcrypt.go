package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Rounds is the bcrypt cost applied to every new hash.
const Rounds = 12

// Hasher hashes and verifies passwords with bcrypt at the fixed [Rounds] cost.
// The zero value is ready to use.
type Hasher struct{}

// NewHasher returns a bcrypt password hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Hash derives a salted bcrypt hash from the plaintext password. The returned
// string embeds the salt and cost in bcrypt's standard encoding.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("password must not be empty")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), Rounds)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored hash. A mismatch is
// (false, nil); an error is returned only when the stored hash cannot be
// parsed as bcrypt output.
func (h *Hasher) Verify(plaintext, encodedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
