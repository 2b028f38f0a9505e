package security

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords with bcrypt at a fixed cost.
type Hasher struct {
	cost  int
	dummy func() string
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	h := &Hasher{cost: cost}

	h.dummy = sync.OnceValue(func() string {
		hash, err := bcrypt.GenerateFromPassword([]byte("coursehub-unknown-user"), cost)
		if err != nil {
			return ""
		}
		return string(hash)
	})

	return h
}

// Hash password hashes a plain text password with bcrypt.
func (h *Hasher) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

func (h *Hasher) Verify(hash, plain string) error {
	return CheckPassword(hash, plain)
}

// Burn runs a full comparison against a throwaway hash, so that a lookup of an
// unknown user costs the same as a wrong password for a known one.
func (h *Hasher) Burn(plain string) {
	_ = CheckPassword(h.dummy(), plain)
}

// helper that compares a bcrypt hash with a plaintext password.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
