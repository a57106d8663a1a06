package common

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const cardCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// MakeCardCode generates a human-typeable recharge card code in the form
// XXXX-XXXX-XXXX-XXXX drawn from upper-case letters and digits.
func MakeCardCode() (string, error) {
	groups := make([]string, 4)
	for g := range groups {
		var sb strings.Builder
		for i := 0; i < 4; i++ {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(cardCodeAlphabet))))
			if err != nil {
				return "", err
			}
			sb.WriteByte(cardCodeAlphabet[n.Int64()])
		}
		groups[g] = sb.String()
	}
	return strings.Join(groups, "-"), nil
}
