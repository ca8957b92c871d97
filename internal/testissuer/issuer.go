// Package testissuer builds encrypted app tickets for tests. It mirrors what Steam
// does when issuing a ticket and must not be used outside of tests.
package testissuer

import (
	"crypto"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"google.golang.org/protobuf/encoding/protowire"
)

// Ticket describes the content of a ticket to issue.
type Ticket struct {
	// Version of the envelope. Defaults to 4.
	Version uint32

	OwnershipVersion uint32
	SteamID          uint64
	AppID            uint32
	ExternalIP       [4]byte
	InternalIP       [4]byte
	Flags            uint32
	IssueTime        uint32
	ExpireTime       uint32
	Licenses         []uint32
	DLC              []DLC
	AppDefinedValue  uint32
	Extension        [2]uint64
	UserData         []byte

	// Trailer appends the salted SHA-1 trailer.
	Trailer bool

	// Extra is appended after every known section.
	Extra []byte

	// SigningKey signs the ownership section when set.
	SigningKey *rsa.PrivateKey
}

type DLC struct {
	AppID    uint32
	Licenses []uint32
}

// Sections is a plaintext ticket with the lengths of its first two sections.
type Sections struct {
	Version      uint32
	Data         []byte
	UserDataLen  uint32
	OwnershipLen uint32
}

// CRC of the plaintext, as stored in the envelope.
func (s *Sections) CRC() uint32 {
	return crc32.ChecksumIEEE(s.Data)
}

func (t *Ticket) version() uint32 {
	if t.Version == 0 {
		return 4
	}
	return t.Version
}

// Ownership returns the signed part of the ownership section.
func (t *Ticket) Ownership() []byte {
	b := make([]byte, 4, 64)
	b = binary.LittleEndian.AppendUint32(b, t.OwnershipVersion)
	b = binary.LittleEndian.AppendUint64(b, t.SteamID)
	b = binary.LittleEndian.AppendUint32(b, t.AppID)
	b = append(b, t.ExternalIP[:]...)
	b = append(b, t.InternalIP[:]...)
	b = binary.LittleEndian.AppendUint32(b, t.Flags)
	b = binary.LittleEndian.AppendUint32(b, t.IssueTime)
	b = binary.LittleEndian.AppendUint32(b, t.ExpireTime)
	b = appendList(b, t.Licenses)
	b = binary.LittleEndian.AppendUint16(b, uint16(len(t.DLC)))
	for _, dlc := range t.DLC {
		b = binary.LittleEndian.AppendUint32(b, dlc.AppID)
		b = appendList(b, dlc.Licenses)
	}
	b = binary.LittleEndian.AppendUint16(b, 0)
	binary.LittleEndian.PutUint32(b, uint32(len(b)))
	return b
}

func appendList(b []byte, list []uint32) []byte {
	b = binary.LittleEndian.AppendUint16(b, uint16(len(list)))
	for _, v := range list {
		b = binary.LittleEndian.AppendUint32(b, v)
	}
	return b
}

// Sections builds the plaintext of the ticket.
func (t *Ticket) Sections() (*Sections, error) {
	ownership := t.Ownership()
	if t.SigningKey != nil {
		digest := sha1.Sum(ownership)
		signature, err := rsa.SignPKCS1v15(rand.Reader, t.SigningKey, crypto.SHA1, digest[:])
		if err != nil {
			return nil, fmt.Errorf("testissuer: failed to sign ownership: %w", err)
		}
		ownership = append(ownership, signature...)
	}

	data := append([]byte(nil), t.UserData...)
	data = append(data, ownership...)
	if t.version() >= 2 {
		data = binary.LittleEndian.AppendUint64(data, t.Extension[0])
		data = binary.LittleEndian.AppendUint64(data, t.Extension[1])
		data = binary.LittleEndian.AppendUint32(data, t.AppDefinedValue)
	}
	if t.Trailer {
		salt := make([]byte, 8)
		if _, err := rand.Read(salt); err != nil {
			return nil, err
		}
		hash := sha1.New()
		hash.Write(data)
		hash.Write(salt)
		data = append(data, salt...)
		data = hash.Sum(data)
	}
	data = append(data, t.Extra...)

	return &Sections{
		Version:      t.version(),
		Data:         data,
		UserDataLen:  uint32(len(t.UserData)),
		OwnershipLen: uint32(len(ownership)),
	}, nil
}

// Issue builds, encrypts and wraps the ticket in its envelope.
func (t *Ticket) Issue(key []byte) ([]byte, error) {
	sections, err := t.Sections()
	if err != nil {
		return nil, err
	}
	return Seal(sections, key)
}

// Seal encrypts a plaintext ticket and wraps it in its envelope.
func Seal(s *Sections, key []byte) ([]byte, error) {
	ciphertext, err := Encrypt(s.Data, key)
	if err != nil {
		return nil, err
	}
	return Envelope(s.Version, s.CRC(), s.UserDataLen, s.OwnershipLen, ciphertext), nil
}

// Encrypt returns ECB(iv) || CBC(iv, PKCS#7(plaintext)), where the IV carries a
// truncated HMAC of the plaintext.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	if len(key) < 16 {
		return nil, errors.New("testissuer: key too short")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	random := make([]byte, 3)
	if _, err := rand.Read(random); err != nil {
		return nil, err
	}
	mac := hmac.New(sha1.New, key[:16])
	mac.Write(random)
	mac.Write(plaintext)
	iv := append(mac.Sum(nil)[:13], random...)

	padLen := aes.BlockSize - len(plaintext)%aes.BlockSize
	padded := append([]byte(nil), plaintext...)
	for i := 0; i < padLen; i++ {
		padded = append(padded, byte(padLen))
	}

	out := make([]byte, aes.BlockSize+len(padded))
	block.Encrypt(out[:aes.BlockSize], iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[aes.BlockSize:], padded)
	return out, nil
}

// Envelope encodes the EncryptedAppTicket protobuf message.
func Envelope(version, crc, userDataLen, ownershipLen uint32, ciphertext []byte) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(version))
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(crc))
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(userDataLen))
	b = protowire.AppendTag(b, 4, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(ownershipLen))
	b = protowire.AppendTag(b, 5, protowire.BytesType)
	b = protowire.AppendBytes(b, ciphertext)
	return b
}
