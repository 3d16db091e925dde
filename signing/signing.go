// Package signing attaches and checks signatures over the canonical form of a License.
package signing

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/LerianStudio/lib-offline-license-go/document"
	"github.com/LerianStudio/lib-offline-license-go/keys"
	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/LerianStudio/lib-offline-license-go/pkg"
)

var errNilLicense = errors.New("license is nil")

// Sign returns a copy of l carrying a signature over Canonical(l, false).
// ECDSA keys produce ASN.1 ECDSA-SHA256, RSA keys PKCS#1 v1.5 SHA-256 and
// Ed25519 keys pure Ed25519 signatures. l is not modified.
func Sign(l *model.License, priv crypto.Signer) (*model.License, error) {
	if l == nil {
		return nil, errNilLicense
	}

	if priv == nil {
		return nil, pkg.NewInvalidKeyError("private key is nil", nil)
	}

	msg, err := document.Canonical(l, false)
	if err != nil {
		return nil, err
	}

	var (
		digest []byte
		opts   crypto.SignerOpts
	)

	switch pub := priv.Public().(type) {
	case *ecdsa.PublicKey, *rsa.PublicKey:
		sum := sha256.Sum256(msg)
		digest, opts = sum[:], crypto.SHA256
	case ed25519.PublicKey:
		digest, opts = msg, crypto.Hash(0)
	case nil:
		return nil, pkg.NewInvalidKeyError("private key is not usable", keys.ErrKeyClosed)
	default:
		return nil, pkg.NewUnsupportedKeyError(fmt.Sprintf("%T", pub), 0)
	}

	sig, err := priv.Sign(rand.Reader, digest, opts)
	if err != nil {
		return nil, fmt.Errorf("sign license: %w", err)
	}

	signed := l.Clone()
	signed.Signature = sig

	return signed, nil
}

// Verify reports whether the signature of l was made by the private half of pub
// over the current field values. A missing or mismatching signature is (false, nil);
// an error is returned only when pub itself is unusable.
func Verify(l *model.License, pub crypto.PublicKey) (bool, error) {
	if err := checkPublicKey(pub); err != nil {
		return false, err
	}

	if l == nil || len(l.Signature) == 0 {
		return false, nil
	}

	// Sign never accepts a license without a canonical form.
	msg, err := document.Canonical(l, false)
	if err != nil {
		return false, nil
	}

	switch key := pub.(type) {
	case *ecdsa.PublicKey:
		sum := sha256.Sum256(msg)
		return ecdsa.VerifyASN1(key, sum[:], l.Signature), nil
	case *rsa.PublicKey:
		sum := sha256.Sum256(msg)
		return rsa.VerifyPKCS1v15(key, crypto.SHA256, sum[:], l.Signature) == nil, nil
	case ed25519.PublicKey:
		return ed25519.Verify(key, msg, l.Signature), nil
	}

	return false, nil
}

// VerifyString is Verify with a base64 PKIX public key.
func VerifyString(l *model.License, encodedPublicKey string) (bool, error) {
	pub, err := keys.FromPublicKeyString(encodedPublicKey)
	if err != nil {
		return false, err
	}

	return Verify(l, pub)
}

// CreateAndSign decrypts an encrypted private key string, signs l and
// zeroizes the decrypted key before returning.
func CreateAndSign(l *model.License, encryptedPrivateKey, passphrase string) (*model.License, error) {
	priv, err := keys.FromEncryptedPrivateKeyString(encryptedPrivateKey, passphrase)
	if err != nil {
		return nil, err
	}
	defer priv.Close()

	return Sign(l, priv)
}

func checkPublicKey(pub crypto.PublicKey) error {
	switch key := pub.(type) {
	case nil:
		return pkg.NewInvalidKeyError("public key is nil", nil)
	case *ecdsa.PublicKey:
		if key == nil || key.Curve == nil || key.X == nil || key.Y == nil {
			return pkg.NewInvalidKeyError("incomplete ECDSA public key", nil)
		}
	case *rsa.PublicKey:
		if key == nil || key.N == nil || key.E == 0 {
			return pkg.NewInvalidKeyError("incomplete RSA public key", nil)
		}
	case ed25519.PublicKey:
		if len(key) != ed25519.PublicKeySize {
			return pkg.NewInvalidKeyError(fmt.Sprintf("Ed25519 public key must be %d bytes", ed25519.PublicKeySize), nil)
		}
	default:
		return pkg.NewUnsupportedKeyError(fmt.Sprintf("%T", pub), 0)
	}

	return nil
}
