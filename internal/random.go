package internal

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/google/uuid"
)

const (
	activationCodeMin  = 1000
	activationCodeSpan = 9000
)

// NewActivationCode returns a uniformly random 4-digit numeric code in
// [1000, 9999]. The code always renders as exactly four digits, so it can
// travel through mail templates without padding concerns.
func NewActivationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(activationCodeSpan))
	if err != nil {
		return "", err
	}

	code := activationCodeMin + n.Int64()

	digits := [4]byte{
		byte('0' + code/1000%10),
		byte('0' + code/100%10),
		byte('0' + code/10%10),
		byte('0' + code%10),
	}
	out := string(digits[:])
	if len(out) != 4 {
		return "", errors.New("invalid activation code length")
	}
	return out, nil
}

// NewUserID mints a random identifier for a freshly created account.
func NewUserID() string {
	return uuid.NewString()
}
