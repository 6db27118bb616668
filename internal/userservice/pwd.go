package userservice

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const passwordCost = 12

// hashPassword returns the bcrypt form of plain. The plaintext is not kept.
func hashPassword(plain string) (Password, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), passwordCost)
	if err != nil {
		return Password{}, err
	}

	return Password{hash: hash}, nil
}

// matches reports whether plain hashes to p. A mismatch is not an error.
func (p Password) matches(plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(p.hash, []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}

	return err == nil, err
}
