package appticket

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha1"
)

// IsTicketForApp reports whether the ticket was issued for the given app. This is a
// local consistency check, not a proof of ownership.
func IsTicketForApp(t *Ticket, appID uint32) bool {
	return t != nil && t.appID == appID
}

// UserOwnsAppInTicket reports whether the ownership claims of the ticket cover the
// given app, either as the primary app or as one of its DLC.
func UserOwnsAppInTicket(t *Ticket, appID uint32) bool {
	if t == nil {
		return false
	}
	if t.appID == appID {
		return true
	}
	for _, dlc := range t.dlc {
		if dlc.AppID == appID {
			return true
		}
	}
	return false
}

// IsTicketSigned reports whether the ownership section carries a valid signature
// from the given RSA public key, encoded as accepted by ParsePublicKey. Malformed
// keys and missing or malformed signatures yield false.
func IsTicketSigned(t *Ticket, publicKey []byte) bool {
	key, err := ParsePublicKey(publicKey)
	if err != nil {
		return false
	}
	return IsTicketSignedBy(t, key)
}

// IsTicketSignedBy is like IsTicketSigned with an already parsed key.
func IsTicketSignedBy(t *Ticket, key *rsa.PublicKey) bool {
	if t == nil || key == nil || key.N == nil || len(t.signature) != signatureSize {
		return false
	}
	digest := sha1.Sum(t.signed)
	return rsa.VerifyPKCS1v15(key, crypto.SHA1, digest[:], t.signature) == nil
}

func (t *Ticket) IsTicketForApp(appID uint32) bool {
	return IsTicketForApp(t, appID)
}

func (t *Ticket) UserOwnsAppInTicket(appID uint32) bool {
	return UserOwnsAppInTicket(t, appID)
}

func (t *Ticket) IsTicketSigned(publicKey []byte) bool {
	return IsTicketSigned(t, publicKey)
}

func (t *Ticket) IsTicketSignedBy(key *rsa.PublicKey) bool {
	return IsTicketSignedBy(t, key)
}
