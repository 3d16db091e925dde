package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"io"
	"math/big"
	"sync"

	"github.com/LerianStudio/lib-offline-license-go/pkg"
)

// ErrKeyClosed is wrapped by signing attempts on a closed PrivateKey.
var ErrKeyClosed = errors.New("private key is closed")

// PrivateKey holds a signing key in memory. Call Close when done with it;
// Close overwrites the secret material and makes the key unusable.
type PrivateKey struct {
	mu     sync.RWMutex
	signer crypto.Signer
	closed bool
}

// NewPrivateKey wraps an ECDSA, RSA or Ed25519 signer.
func NewPrivateKey(signer crypto.Signer) (*PrivateKey, error) {
	switch signer.(type) {
	case *ecdsa.PrivateKey, *rsa.PrivateKey, ed25519.PrivateKey:
		return &PrivateKey{signer: signer}, nil
	}

	return nil, pkg.NewUnsupportedKeyError(keyTypeName(signer), 0)
}

// Public returns the matching public key, or nil once closed.
func (k *PrivateKey) Public() crypto.PublicKey {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.closed {
		return nil
	}

	return k.signer.Public()
}

// Sign signs digest (or the message itself for Ed25519) with the wrapped key.
func (k *PrivateKey) Sign(rand io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.closed {
		return nil, pkg.NewInvalidKeyError("cannot sign", ErrKeyClosed)
	}

	return k.signer.Sign(rand, digest, opts)
}

// Algorithm reports the family of the wrapped key.
func (k *PrivateKey) Algorithm() Algorithm {
	switch k.signer.(type) {
	case *ecdsa.PrivateKey:
		return ECDSA
	case *rsa.PrivateKey:
		return RSA
	default:
		return Ed25519
	}
}

// Closed reports whether Close has run.
func (k *PrivateKey) Closed() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return k.closed
}

// Close zeroizes the secret scalars. It is safe to call more than once.
func (k *PrivateKey) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil
	}

	switch key := k.signer.(type) {
	case *ecdsa.PrivateKey:
		if key.D != nil {
			clear(key.D.Bits())
			key.D.SetInt64(0)
		}
	case *rsa.PrivateKey:
		if key.D != nil {
			clear(key.D.Bits())
			key.D.SetInt64(0)
		}

		for _, p := range key.Primes {
			clear(p.Bits())
			p.SetInt64(0)
		}

		zeroPrecomputed(&key.Precomputed)
	case ed25519.PrivateKey:
		clear(key)
	}

	k.closed = true

	return nil
}

func (k *PrivateKey) marshalPKCS8() ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.closed {
		return nil, pkg.NewInvalidKeyError("cannot export", ErrKeyClosed)
	}

	return x509.MarshalPKCS8PrivateKey(k.signer)
}

// KeyPair is a private key and its public key.
type KeyPair struct {
	Private *PrivateKey
	Public  crypto.PublicKey
}

func newKeyPair(signer crypto.Signer) *KeyPair {
	return &KeyPair{
		Private: &PrivateKey{signer: signer},
		Public:  signer.Public(),
	}
}

// ToEncryptedPrivateKeyString encrypts the private key under passphrase.
// Each call uses a fresh salt and nonce, so two calls never return the same string.
func (p *KeyPair) ToEncryptedPrivateKeyString(passphrase string) (string, error) {
	return EncryptPrivateKey(p.Private, passphrase)
}

// ToPublicKeyString returns the base64 PKIX encoding of the public key.
func (p *KeyPair) ToPublicKeyString() (string, error) {
	return ToPublicKeyString(p.Public)
}

// Close releases the private key.
func (p *KeyPair) Close() error {
	if p == nil || p.Private == nil {
		return nil
	}

	return p.Private.Close()
}

func keyTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case *ecdsa.PrivateKey, *ecdsa.PublicKey:
		return string(ECDSA)
	case *rsa.PrivateKey, *rsa.PublicKey:
		return string(RSA)
	case ed25519.PrivateKey, ed25519.PublicKey:
		return string(Ed25519)
	}

	return "unknown"
}

func zeroPrecomputed(pre *rsa.PrecomputedValues) {
	ints := []*big.Int{pre.Dp, pre.Dq, pre.Qinv}
	for _, crt := range pre.CRTValues {
		ints = append(ints, crt.Exp, crt.Coeff, crt.R)
	}

	for _, n := range ints {
		if n != nil {
			clear(n.Bits())
			n.SetInt64(0)
		}
	}
}
