package keys

import (
	"bytes"
	"crypto"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/LerianStudio/lib-offline-license-go/constant"
	"github.com/LerianStudio/lib-offline-license-go/pkg"
	"golang.org/x/crypto/scrypt"
)

// Envelope layout: magic | version | salt | nonce | AES-256-GCM(PKCS#8 DER).
const headerSize = len(constant.EnvelopeMagic) + 1

var errEnvelopeFormat = errors.New("unrecognized private key envelope")

// EncryptPrivateKey seals the PKCS#8 encoding of key under passphrase and
// returns the base64 envelope.
func EncryptPrivateKey(key *PrivateKey, passphrase string) (string, error) {
	if key == nil {
		return "", pkg.NewInvalidKeyError("private key is nil", nil)
	}

	der, err := key.marshalPKCS8()
	if err != nil {
		return "", err
	}
	defer clear(der)

	salt := make([]byte, constant.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, constant.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return "", err
	}

	header := envelopeHeader()

	out := make([]byte, 0, headerSize+len(salt)+len(nonce)+len(der)+gcm.Overhead())
	out = append(out, header...)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, der, header)

	return base64.StdEncoding.EncodeToString(out), nil
}

// DecryptPrivateKey opens an envelope produced by EncryptPrivateKey. A wrong
// passphrase and a corrupted envelope both return a DecryptionError.
func DecryptPrivateKey(encoded, passphrase string) (*PrivateKey, error) {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, pkg.NewDecryptionError(err)
	}

	minSize := headerSize + constant.SaltSize + constant.NonceSize
	if len(blob) <= minSize || !bytes.Equal(blob[:headerSize], envelopeHeader()) {
		return nil, pkg.NewDecryptionError(errEnvelopeFormat)
	}

	salt := blob[headerSize : headerSize+constant.SaltSize]
	nonce := blob[headerSize+constant.SaltSize : minSize]

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return nil, err
	}

	der, err := gcm.Open(nil, nonce, blob[minSize:], blob[:headerSize])
	if err != nil {
		return nil, pkg.NewDecryptionError(err)
	}
	defer clear(der)

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, pkg.NewDecryptionError(err)
	}

	signer, ok := parsed.(crypto.Signer)
	if !ok {
		return nil, pkg.NewUnsupportedKeyError(fmt.Sprintf("%T", parsed), 0)
	}

	return NewPrivateKey(signer)
}

// FromEncryptedPrivateKeyString is DecryptPrivateKey.
func FromEncryptedPrivateKeyString(encoded, passphrase string) (*PrivateKey, error) {
	return DecryptPrivateKey(encoded, passphrase)
}

func envelopeHeader() []byte {
	return append([]byte(constant.EnvelopeMagic), constant.EnvelopeVersion)
}

func newGCM(passphrase string, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, constant.ScryptN, constant.ScryptR, constant.ScryptP, constant.ScryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("key derivation failed: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return gcm, nil
}
