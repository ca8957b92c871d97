package appticket

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"net/netip"
	"time"

	"golang.org/x/crypto/cryptobyte"
)

const (
	minVersion = 1
	maxVersion = 4

	// Signed ownership ticket, from the length field up to the expire time.
	ownershipHeaderSize = 4 + 4 + 8 + 4 + 4 + 4 + 4 + 4 + 4
	signatureSize       = 128

	// Present from version 2: two opaque uint64 then the app-defined value.
	extensionSize = 8 + 8 + 4

	trailerSaltSize = 8
	trailerSize     = trailerSaltSize + sha1.Size
)

// checkLayout validates the declared section lengths against the plaintext before
// any of them is sliced.
func checkLayout(h Header, data []byte) error {
	if h.Version < minVersion || h.Version > maxVersion {
		return decodeError("header", fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version))
	}

	size := uint64(len(data))
	userDataLen := uint64(h.UserDataLen)
	ownershipLen := uint64(h.OwnershipLen)

	if userDataLen > size {
		return decodeError("user data", ErrTruncated)
	}
	if ownershipLen < ownershipHeaderSize {
		return decodeError("ownership", fmt.Errorf("%w: section is %d bytes", ErrMalformedLength, ownershipLen))
	}
	if ownershipLen > size-userDataLen {
		return decodeError("ownership", ErrTruncated)
	}

	ticketLen := uint64(binary.LittleEndian.Uint32(data[userDataLen:]))
	if ticketLen < ownershipHeaderSize || ticketLen > ownershipLen {
		return decodeError("ownership", fmt.Errorf("%w: ticket is %d bytes in a %d bytes section", ErrMalformedLength, ticketLen, ownershipLen))
	}
	if sigLen := ownershipLen - ticketLen; sigLen != 0 && sigLen != signatureSize {
		return decodeError("signature", fmt.Errorf("%w: %d bytes", ErrMalformedLength, sigLen))
	}

	if h.Version >= 2 && size-userDataLen-ownershipLen < extensionSize {
		return decodeError("extension", ErrTruncated)
	}

	return nil
}

// Decode parses a decrypted ticket. It either returns a complete Ticket or an error
// wrapped in a *DecodeError, never a partially filled Ticket.
func Decode(p *Plaintext) (*Ticket, error) {
	if p == nil {
		return nil, decodeError("header", ErrTruncated)
	}
	if err := checkLayout(p.Header, p.Data); err != nil {
		return nil, err
	}

	raw := bytes.Clone(p.Data)
	t := &Ticket{
		version: p.Header.Version,
		raw:     raw,
	}

	userDataEnd := int(p.Header.UserDataLen)
	ownershipEnd := userDataEnd + int(p.Header.OwnershipLen)
	t.userData = raw[:userDataEnd:userDataEnd]

	ownership := raw[userDataEnd:ownershipEnd]
	ticketLen := binary.LittleEndian.Uint32(ownership)
	t.signed = ownership[:ticketLen:ticketLen]
	if len(ownership) > int(ticketLen) {
		t.signature = ownership[ticketLen:]
	}

	if err := t.decodeOwnership(cryptobyte.String(t.signed)); err != nil {
		return nil, err
	}

	end := ownershipEnd
	if t.version >= 2 {
		extension := cryptobyte.String(raw[end : end+extensionSize])
		if !readUint64(&extension, &t.extension[0]) ||
			!readUint64(&extension, &t.extension[1]) ||
			!readUint32(&extension, &t.appDefinedValue) {
			return nil, decodeError("extension", ErrTruncated)
		}
		t.hasAppDefinedValue = true
		end += extensionSize
	}

	if len(raw)-end >= trailerSize {
		salt := raw[end : end+trailerSaltSize]
		sum := raw[end+trailerSaltSize : end+trailerSize]
		if !hmac.Equal(sha1Hash(raw[:end], salt), sum) {
			return nil, decodeError("trailer", ErrIntegrity)
		}
	}

	return t, nil
}

func (t *Ticket) decodeOwnership(s cryptobyte.String) error {
	var length, issueTime, expireTime uint32
	var externalIP, internalIP []byte
	if !readUint32(&s, &length) ||
		!readUint32(&s, &t.ownershipVersion) ||
		!readUint64(&s, &t.steamID) ||
		!readUint32(&s, &t.appID) ||
		!s.ReadBytes(&externalIP, 4) ||
		!s.ReadBytes(&internalIP, 4) ||
		!readUint32(&s, &t.flags) ||
		!readUint32(&s, &issueTime) ||
		!readUint32(&s, &expireTime) {
		return decodeError("ownership", ErrTruncated)
	}

	t.externalIP = netip.AddrFrom4([4]byte(externalIP))
	t.internalIP = netip.AddrFrom4([4]byte(internalIP))
	t.issueTime = time.Unix(int64(issueTime), 0).UTC()
	if expireTime != 0 {
		t.expireTime = time.Unix(int64(expireTime), 0).UTC()
	}

	if !readUint32List(&s, &t.licenses) {
		return decodeError("licenses", ErrTruncated)
	}

	var dlcCount uint16
	if !readUint16(&s, &dlcCount) {
		return decodeError("dlc", ErrTruncated)
	}
	// Each entry takes at least 6 bytes.
	if int(dlcCount)*6 > len(s) {
		return decodeError("dlc", ErrTruncated)
	}
	t.dlc = make([]DLC, dlcCount)
	for i := range t.dlc {
		if !readUint32(&s, &t.dlc[i].AppID) || !readUint32List(&s, &t.dlc[i].Licenses) {
			return decodeError("dlc", ErrTruncated)
		}
	}

	var reserved uint16
	if !readUint16(&s, &reserved) {
		return decodeError("ownership", ErrTruncated)
	}

	return nil
}
