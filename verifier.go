package appticket

import (
	"bytes"
	"crypto/rsa"
	"errors"
	"log/slog"
	"time"
)

// DecryptAndDecode decrypts a ticket with the default options and decodes it. A
// decryption failure is returned as is, without attempting to decode.
func DecryptAndDecode(ticket, key []byte) (*Ticket, error) {
	plaintext, err := Decrypt(ticket, key)
	if err != nil {
		return nil, err
	}
	return Decode(plaintext)
}

// VerifierConfig holds the per-deployment settings of a Verifier.
type VerifierConfig struct {
	Options

	// Key is the symmetric key shared with the issuer.
	Key []byte

	// PublicKey is used to check ownership signatures. Defaults to SteamPublicKey.
	PublicKey *rsa.PublicKey

	// RequireSignature makes Authorize reject tickets without a valid signature.
	RequireSignature bool

	Logger *slog.Logger
}

// Verifier decrypts, decodes and authorizes tickets with a fixed key. It is safe for
// concurrent use.
type Verifier struct {
	cipher           *Cipher
	key              []byte
	publicKey        *rsa.PublicKey
	requireSignature bool
	logger           *slog.Logger
}

// NewVerifier checks the configuration and returns a Verifier.
func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	c, err := NewCipher(cfg.Options)
	if err != nil {
		return nil, err
	}
	if len(cfg.Key) != c.opts.KeyLength {
		return nil, ErrBadKeyLength
	}

	publicKey := cfg.PublicKey
	if publicKey == nil {
		publicKey = SteamPublicKey()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Verifier{
		cipher:           c,
		key:              bytes.Clone(cfg.Key),
		publicKey:        publicKey,
		requireSignature: cfg.RequireSignature,
		logger:           logger.With("component", "appticket"),
	}, nil
}

// Verify decrypts and decodes a ticket with the configured key.
func (v *Verifier) Verify(ticket []byte) (*Ticket, error) {
	plaintext, err := v.cipher.Decrypt(ticket, v.key)
	if err != nil {
		v.logger.Debug("ticket rejected", "reason", reason(err), "size", len(ticket))
		return nil, err
	}

	t, err := Decode(plaintext)
	if err != nil {
		v.logger.Debug("ticket rejected", "reason", reason(err), "error", err)
		return nil, err
	}

	v.logger.Debug("ticket decoded", "app_id", t.appID, "steam_id", t.steamID, "version", t.version)
	return t, nil
}

// Authorize verifies a ticket and checks that its holder may use the given app at
// the given instant.
func (v *Verifier) Authorize(ticket []byte, appID uint32, now time.Time) (*Ticket, error) {
	t, err := v.Verify(ticket)
	if err != nil {
		return nil, err
	}

	// A ticket issued for another app may still list the app as DLC: it proves
	// ownership but was not requested for this app.
	switch {
	case !t.UserOwnsAppInTicket(appID):
		err = ErrNotOwned
	case !t.IsTicketForApp(appID):
		err = ErrWrongApp
	case v.requireSignature && !t.IsTicketSignedBy(v.publicKey):
		err = ErrUnsigned
	case t.IsExpiredAt(now):
		err = ErrExpired
	}
	if err != nil {
		v.logger.Info("ticket refused", "reason", reason(err), "app_id", t.appID, "steam_id", t.steamID)
		return nil, err
	}

	v.logger.Debug("ticket authorized", "app_id", appID, "steam_id", t.steamID, "vac_banned", t.IsVACBanned())
	return t, nil
}

// IsSigned reports whether the ticket is signed by the configured public key.
func (v *Verifier) IsSigned(t *Ticket) bool {
	return t.IsTicketSignedBy(v.publicKey)
}

// reason names the failure class without leaking more than the error itself.
func reason(err error) string {
	var decodeErr *DecodeError
	switch {
	case errors.Is(err, ErrEmptyTicket), errors.Is(err, ErrOversize), errors.Is(err, ErrBadKeyLength):
		return "contract"
	case errors.Is(err, ErrDecryptionFailed):
		return "decryption"
	case errors.As(err, &decodeErr):
		return "decode:" + decodeErr.Section
	case errors.Is(err, ErrWrongApp):
		return "wrong_app"
	case errors.Is(err, ErrNotOwned):
		return "not_owned"
	case errors.Is(err, ErrUnsigned):
		return "unsigned"
	case errors.Is(err, ErrExpired):
		return "expired"
	default:
		return "unknown"
	}
}
