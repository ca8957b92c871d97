package appticket

import (
	"errors"
	"fmt"
)

// Input contract violations. These are reported before any decryption is attempted.
var (
	ErrEmptyTicket  = errors.New("appticket: empty ticket")
	ErrOversize     = errors.New("appticket: ticket exceeds maximum size")
	ErrBadKeyLength = errors.New("appticket: bad key length")
)

// ErrDecryptionFailed is returned for every cryptographic failure: wrong key, tampered
// ciphertext, malformed envelope or inconsistent plaintext. The cause is not exposed.
var ErrDecryptionFailed = errors.New("appticket: decryption failed")

// Structural decode failures, always wrapped in a *DecodeError.
var (
	ErrTruncated          = errors.New("truncated")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrMalformedLength    = errors.New("malformed length")
	ErrIntegrity          = errors.New("integrity check failed")
)

// Authorization failures returned by Verifier.Authorize.
var (
	ErrWrongApp = errors.New("appticket: ticket is for another app")
	ErrNotOwned = errors.New("appticket: app not owned")
	ErrUnsigned = errors.New("appticket: missing or invalid signature")
	ErrExpired  = errors.New("appticket: ticket has expired")
)

// DecodeError reports which section of a plaintext ticket could not be decoded.
type DecodeError struct {
	Section string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("appticket: %s: %v", e.Section, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeError(section string, err error) error {
	return &DecodeError{Section: section, Err: err}
}
