package security

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher is the credential hasher behind the login and password-change
// flows. The cost comes from BCRYPT_ROUNDS so environments can trade compare
// latency against brute-force resistance.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher falls back to the library default when no cost is set.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
