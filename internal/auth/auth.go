// Package auth turns the user's PIN into the storage key. The credential is
// used verbatim as the document key with no verification step; that behavior
// lives behind the Keyer interface so a real credential scheme can replace it
// without touching callers.
package auth

import (
	"errors"
	"strings"
)

// MinPINLength is the login rule enforced on every client.
const MinPINLength = 4

var ErrPINTooShort = errors.New("pin must be at least 4 characters")

// Keyer derives a document-store key from the PIN and an optional secondary
// id (added in later revisions of the clients).
type Keyer interface {
	Key(pin, subID string) (string, error)
}

// PlainKeyer concatenates PIN and secondary id. Whoever supplies the same
// pair reads the same document.
type PlainKeyer struct{}

func (PlainKeyer) Key(pin, subID string) (string, error) {
	pin = strings.TrimSpace(pin)
	if len(pin) < MinPINLength {
		return "", ErrPINTooShort
	}
	return pin + strings.TrimSpace(subID), nil
}
