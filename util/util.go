package util

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
)

// SHA1Sum returns the hex encoded SHA-1 of everything left in r.
func SHA1Sum(r io.Reader) (string, error) {
	h := sha1.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
