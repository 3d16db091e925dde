package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"strings"

	"github.com/LerianStudio/lib-offline-license-go/pkg"
)

// MarshalPublicKey returns the PKIX (SubjectPublicKeyInfo) DER encoding of pub.
func MarshalPublicKey(pub crypto.PublicKey) ([]byte, error) {
	switch pub.(type) {
	case *ecdsa.PublicKey, *rsa.PublicKey, ed25519.PublicKey:
	default:
		return nil, pkg.NewUnsupportedKeyError(keyTypeName(pub), 0)
	}

	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, pkg.NewInvalidKeyError("cannot encode public key", err)
	}

	return der, nil
}

// ParsePublicKey decodes PKIX DER into an ECDSA, RSA or Ed25519 public key.
func ParsePublicKey(der []byte) (crypto.PublicKey, error) {
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, pkg.NewInvalidKeyError("cannot decode public key", err)
	}

	switch pub.(type) {
	case *ecdsa.PublicKey, *rsa.PublicKey, ed25519.PublicKey:
		return pub, nil
	}

	return nil, pkg.NewUnsupportedKeyError(keyTypeName(pub), 0)
}

// ToPublicKeyString returns MarshalPublicKey as standard base64.
func ToPublicKeyString(pub crypto.PublicKey) (string, error) {
	der, err := MarshalPublicKey(pub)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(der), nil
}

// FromPublicKeyString reverses ToPublicKeyString. Surrounding whitespace is ignored.
func FromPublicKeyString(s string) (crypto.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, pkg.NewInvalidKeyError("public key is not valid base64", err)
	}

	return ParsePublicKey(der)
}

// PublicKeyEqual reports whether a and b are the same key.
func PublicKeyEqual(a, b crypto.PublicKey) bool {
	type equaler interface {
		Equal(x crypto.PublicKey) bool
	}

	if e, ok := a.(equaler); ok {
		return e.Equal(b)
	}

	return false
}
