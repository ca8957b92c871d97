package appticket

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the EncryptedAppTicket protobuf message.
const (
	fieldVersion      protowire.Number = 1
	fieldCRC          protowire.Number = 2
	fieldUserDataLen  protowire.Number = 3
	fieldOwnershipLen protowire.Number = 4
	fieldCiphertext   protowire.Number = 5
)

// Header describes the sections of a decrypted ticket. It travels in clear next to
// the ciphertext and is bound to the plaintext by its CRC.
type Header struct {
	Version      uint32
	CRC          uint32
	UserDataLen  uint32
	OwnershipLen uint32
}

type envelope struct {
	Header
	Ciphertext []byte
}

func parseEnvelope(b []byte) (*envelope, error) {
	env := &envelope{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("envelope: failed to parse tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldCiphertext && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("envelope: failed to parse ciphertext: %w", protowire.ParseError(n))
			}
			env.Ciphertext = v
			b = b[n:]

		case num >= fieldVersion && num <= fieldOwnershipLen && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("envelope: failed to parse field %d: %w", num, protowire.ParseError(n))
			}
			if v > math.MaxUint32 {
				return nil, fmt.Errorf("envelope: field %d out of range: %d", num, v)
			}
			env.set(num, uint32(v))
			b = b[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("envelope: failed to skip field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if len(env.Ciphertext) == 0 {
		return nil, errors.New("envelope: missing ciphertext")
	}
	return env, nil
}

func (env *envelope) set(num protowire.Number, v uint32) {
	switch num {
	case fieldVersion:
		env.Version = v
	case fieldCRC:
		env.CRC = v
	case fieldUserDataLen:
		env.UserDataLen = v
	case fieldOwnershipLen:
		env.OwnershipLen = v
	}
}
