package appticket

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
)

// steamPublicKeyPEM is the key Steam signs app ownership tickets with.
var steamPublicKeyPEM = []byte(`-----BEGIN PUBLIC KEY-----
MIGdMA0GCSqGSIb3DQEBAQUAA4GLADCBhwKBgQDf7BrWLBBmLBc1OhSwfFkRf53T
2Ct64+AVzRkeRuh7h3SiGEYxqQMUeYKO6UWiSRKpI2hzic9pobFhRr3Bvr/WARvY
gdTckPv+T1JzZsuVcNfFjrocejN1oWI0Rrtgt4Bo+hOneoo3S57G9F1fOpn5nsQ6
6WOiu4gZKODnFMBCiQIBEQ==
-----END PUBLIC KEY-----`)

var steamPublicKey *rsa.PublicKey

func init() {
	key, err := ParsePublicKey(steamPublicKeyPEM)
	if err != nil {
		panic(fmt.Errorf("keys: %w", err))
	}
	steamPublicKey = key
}

// SteamPublicKey returns a copy of the public key of the Steam ticket issuer.
func SteamPublicKey() *rsa.PublicKey {
	return &rsa.PublicKey{
		N: new(big.Int).Set(steamPublicKey.N),
		E: steamPublicKey.E,
	}
}

// SteamPublicKeyPEM returns the PEM encoding of SteamPublicKey.
func SteamPublicKeyPEM() []byte {
	return append([]byte(nil), steamPublicKeyPEM...)
}

// ParsePublicKey parses an RSA public key given as PEM or DER, in either the PKIX
// (SubjectPublicKeyInfo) or the PKCS#1 form.
func ParsePublicKey(data []byte) (*rsa.PublicKey, error) {
	if block, _ := pem.Decode(data); block != nil {
		data = block.Bytes
	}
	if len(data) == 0 {
		return nil, errors.New("keys: empty public key")
	}

	if key, err := x509.ParsePKIXPublicKey(data); err == nil {
		rsaKey, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("keys: not an RSA public key: %T", key)
		}
		return rsaKey, nil
	}

	key, err := x509.ParsePKCS1PublicKey(data)
	if err != nil {
		return nil, fmt.Errorf("keys: failed to parse public key: %w", err)
	}
	return key, nil
}
