package pkg

import "golang.org/x/crypto/bcrypt"

// bcryptCost is deliberately above bcrypt.DefaultCost, login is rare
// enough that the extra hashing time is acceptable.
const bcryptCost = 14

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return BytesToString(hash), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
