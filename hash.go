package appticket

import (
	"crypto/hmac"
	"crypto/sha1"
)

func sha1Hash(parts ...[]byte) []byte {
	hash := sha1.New()
	for _, part := range parts {
		hash.Write(part)
	}
	return hash.Sum(nil)
}

// ivMAC computes the truncated HMAC carried by the first bytes of the IV block.
// Only the first 16 bytes of the key are used, whatever the key length.
func ivMAC(key, random, plaintext []byte) []byte {
	mac := hmac.New(sha1.New, key[:16])
	mac.Write(random)
	mac.Write(plaintext)
	return mac.Sum(nil)[:ivMACSize]
}
