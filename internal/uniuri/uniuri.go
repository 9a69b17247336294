package uniuri

import (
	"crypto/rand"
	"math/big"
)

const (
	// StdLen gives ~95 bits of entropy with StdChars.
	StdLen = 16
	// PasswordLen gives ~143 bits of entropy with PasswordChars.
	PasswordLen = 24
)

var (
	// StdChars is the alphanumeric alphabet.
	StdChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")
	// PasswordChars adds symbols that survive shells and toml without quoting issues.
	PasswordChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_.~")
)

// New returns a random alphanumeric string of StdLen.
func New() string {
	return NewLenChars(StdLen, StdChars)
}

// NewLen returns a random alphanumeric string of length.
func NewLen(length int) string {
	return NewLenChars(length, StdChars)
}

// Password returns a random password of PasswordLen.
func Password() string {
	return NewLenChars(PasswordLen, PasswordChars)
}

// NewLenChars returns a random string of length drawn uniformly from chars.
// It returns "" for a non-positive length or an empty alphabet and panics
// if the system random source fails.
func NewLenChars(length int, chars []byte) string {
	if length <= 0 || len(chars) == 0 {
		return ""
	}

	if len(chars) > 256 { //nolint:mnd
		panic("uniuri: alphabet longer than 256 bytes")
	}

	limit := big.NewInt(int64(len(chars)))
	out := make([]byte, length)

	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic("uniuri: random source failed: " + err.Error())
		}

		out[i] = chars[n.Int64()]
	}

	return string(out)
}
