package appticket

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"fmt"
	"hash/crc32"
)

const (
	// DefaultMaxTicketSize bounds the encrypted ticket, envelope included.
	DefaultMaxTicketSize = 0x10000

	// DefaultKeyLength is the length of the symmetric key issued by Steam (AES-256).
	DefaultKeyLength = 32

	ivMACSize = 13
)

// Options configure a Cipher. Zero values select the defaults.
type Options struct {
	MaxTicketSize int
	KeyLength     int

	// SkipMAC disables the check of the truncated HMAC carried in the IV block.
	// The CRC and the structural checks still apply.
	SkipMAC bool
}

// Plaintext is a decrypted ticket together with the header that describes its sections.
type Plaintext struct {
	Header Header
	Data   []byte
}

// Cipher decrypts encrypted app tickets. It is immutable and safe for concurrent use.
type Cipher struct {
	opts Options
}

var defaultCipher = &Cipher{
	opts: Options{
		MaxTicketSize: DefaultMaxTicketSize,
		KeyLength:     DefaultKeyLength,
	},
}

// NewCipher validates the given options and returns a Cipher using them.
func NewCipher(opts Options) (*Cipher, error) {
	if opts.MaxTicketSize == 0 {
		opts.MaxTicketSize = DefaultMaxTicketSize
	}
	if opts.KeyLength == 0 {
		opts.KeyLength = DefaultKeyLength
	}

	if opts.MaxTicketSize < 0 {
		return nil, fmt.Errorf("appticket: maximum ticket size must be positive, got %d", opts.MaxTicketSize)
	}
	switch opts.KeyLength {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("appticket: key length must be 16, 24 or 32, got %d", opts.KeyLength)
	}

	return &Cipher{opts: opts}, nil
}

// Options returns the options in use, defaults applied.
func (c *Cipher) Options() Options {
	return c.opts
}

// Decrypt decrypts a ticket with the default options.
func Decrypt(ticket, key []byte) (*Plaintext, error) {
	return defaultCipher.Decrypt(ticket, key)
}

// Decrypt recovers the plaintext of an encrypted app ticket.
//
// Contract violations are reported as ErrEmptyTicket, ErrOversize or ErrBadKeyLength.
// Every other failure, including a plaintext whose sections do not fit, is reported
// as ErrDecryptionFailed.
func (c *Cipher) Decrypt(ticket, key []byte) (*Plaintext, error) {
	if len(ticket) == 0 {
		return nil, ErrEmptyTicket
	}
	if len(ticket) > c.opts.MaxTicketSize {
		return nil, ErrOversize
	}
	if len(key) != c.opts.KeyLength {
		return nil, ErrBadKeyLength
	}

	env, err := parseEnvelope(ticket)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	data, ok := c.open(env.Ciphertext, key, env.CRC)
	if !ok {
		return nil, ErrDecryptionFailed
	}

	if checkLayout(env.Header, data) != nil {
		return nil, ErrDecryptionFailed
	}

	return &Plaintext{Header: env.Header, Data: data}, nil
}

// Checks run by open on every decrypted buffer.
var (
	computeIVMAC = ivMAC
	computeCRC   = crc32.ChecksumIEEE
)

// open decrypts ECB(iv) || CBC(iv, PKCS#7(plaintext)) and checks the padding, the
// MAC and the CRC. All three checks run whatever their outcome, and are only
// combined at the end.
func (c *Cipher) open(ciphertext, key []byte, crc uint32) ([]byte, bool) {
	if len(ciphertext) < 2*aes.BlockSize || len(ciphertext)%aes.BlockSize != 0 {
		return nil, false
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, false
	}

	iv := make([]byte, aes.BlockSize)
	block.Decrypt(iv, ciphertext[:aes.BlockSize])

	padded := make([]byte, len(ciphertext)-aes.BlockSize)
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext[aes.BlockSize:])

	plaintext, good := unpadPKCS7(padded)

	macGood := subtle.ConstantTimeCompare(iv[:ivMACSize], computeIVMAC(key, iv[ivMACSize:], plaintext))
	if c.opts.SkipMAC {
		macGood = 1
	}
	good &= macGood
	good &= subtle.ConstantTimeEq(int32(computeCRC(plaintext)), int32(crc))

	if good != 1 {
		return nil, false
	}
	return plaintext, true
}

// unpadPKCS7 checks the padding of the last block in constant time, and returns 1
// when it is valid. Invalid padding strips a single byte.
func unpadPKCS7(data []byte) ([]byte, int) {
	last := data[len(data)-aes.BlockSize:]
	padLen := int(last[aes.BlockSize-1])

	good := subtle.ConstantTimeLessOrEq(1, padLen) & subtle.ConstantTimeLessOrEq(padLen, aes.BlockSize)
	for i, b := range last {
		inPadding := subtle.ConstantTimeLessOrEq(aes.BlockSize-i, padLen)
		good &= subtle.ConstantTimeSelect(inPadding, subtle.ConstantTimeByteEq(b, byte(padLen)), 1)
	}
	padLen = subtle.ConstantTimeSelect(good, padLen, 1)

	return data[:len(data)-padLen], good
}
