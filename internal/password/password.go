package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns a plain password into a storable hash and checks it back.
type Hasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

// Bcrypt hashes with golang.org/x/crypto/bcrypt at the given cost.
type Bcrypt struct {
	Cost int
}

func NewBcrypt(cost int) Bcrypt {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return Bcrypt{Cost: cost}
}

func (b Bcrypt) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), b.Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (b Bcrypt) Compare(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
