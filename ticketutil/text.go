package ticketutil

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

// Encoding is the text encoding of a ticket or key.
type Encoding int

const (
	// EncodingAuto guesses the encoding with DecodeText.
	EncodingAuto Encoding = iota
	EncodingBinary
	EncodingHex
	EncodingBase64
)

var encodingNames = []string{"auto", "binary", "hex", "base64"}

// ParseEncoding returns the encoding with the given name.
func ParseEncoding(name string) (Encoding, error) {
	for i, n := range encodingNames {
		if n == name {
			return Encoding(i), nil
		}
	}
	return 0, fmt.Errorf("unknown input encoding: %q", name)
}

func (e Encoding) String() string {
	if e < 0 || int(e) >= len(encodingNames) {
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
	return encodingNames[e]
}

var base64Encodings = []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding}

// Decode returns the binary form of data. Surrounding whitespace is ignored by the
// text encodings.
func (e Encoding) Decode(data []byte) ([]byte, error) {
	switch e {
	case EncodingAuto:
		return DecodeText(data), nil
	case EncodingBinary:
		return data, nil
	case EncodingHex:
		text := bytes.TrimSpace(data)
		decoded := make([]byte, hex.DecodedLen(len(text)))
		if _, err := hex.Decode(decoded, text); err != nil {
			return nil, fmt.Errorf("invalid hex: %w", err)
		}
		return decoded, nil
	case EncodingBase64:
		if decoded, ok := decodeBase64(bytes.TrimSpace(data)); ok {
			return decoded, nil
		}
		return nil, errors.New("invalid base64")
	default:
		return nil, fmt.Errorf("unknown input encoding: %v", e)
	}
}

// DecodeText returns the binary form of a ticket or key that may have been
// encoded as text. Hex is tried before base64, so base64 text made only of hex
// digits is read as hex. Anything else is returned unchanged.
func DecodeText(data []byte) []byte {
	text := bytes.TrimSpace(data)
	if len(text) == 0 {
		return data
	}

	if len(text)%2 == 0 && isHex(text) {
		decoded := make([]byte, hex.DecodedLen(len(text)))
		if _, err := hex.Decode(decoded, text); err == nil {
			return decoded
		}
	}

	if decoded, ok := decodeBase64(text); ok {
		return decoded
	}
	return data
}

func decodeBase64(text []byte) ([]byte, bool) {
	for _, encoding := range base64Encodings {
		decoded := make([]byte, encoding.DecodedLen(len(text)))
		if n, err := encoding.Decode(decoded, text); err == nil {
			return decoded[:n], true
		}
	}
	return nil, false
}

func isHex(text []byte) bool {
	for _, c := range text {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
