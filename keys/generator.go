// Package keys generates signing key pairs and encodes them for transport.
// Private keys only leave the process encrypted under a passphrase.
package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"io"
	"strings"

	"github.com/LerianStudio/lib-offline-license-go/constant"
	"github.com/LerianStudio/lib-offline-license-go/pkg"
)

// Algorithm names a supported signature algorithm family.
type Algorithm string

const (
	ECDSA   Algorithm = "ecdsa"
	RSA     Algorithm = "rsa"
	Ed25519 Algorithm = "ed25519"
)

const maxRSAKeySize = 8192

// ParseAlgorithm maps an algorithm name, case-insensitively, to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case ECDSA, "ec", "":
		return ECDSA, nil
	case RSA:
		return RSA, nil
	case Ed25519:
		return Ed25519, nil
	}

	return "", pkg.NewUnsupportedKeyError(s, 0)
}

// Generator produces key pairs of one algorithm and size.
type Generator struct {
	alg  Algorithm
	size int
	rand io.Reader
}

// NewGenerator validates alg and size. A zero size selects the algorithm default:
// P-256 for ECDSA and 2048 bits for RSA.
func NewGenerator(alg Algorithm, size int) (*Generator, error) {
	switch alg {
	case ECDSA:
		if size == 0 {
			size = constant.DefaultECDSACurveSize
		}

		if _, err := curveFor(size); err != nil {
			return nil, err
		}
	case RSA:
		if size == 0 {
			size = constant.DefaultRSAKeySize
		}

		if size < constant.MinRSAKeySize || size > maxRSAKeySize {
			return nil, pkg.NewUnsupportedKeyError(string(alg), size)
		}
	case Ed25519:
		if size != 0 && size != 256 {
			return nil, pkg.NewUnsupportedKeyError(string(alg), size)
		}

		size = 256
	default:
		return nil, pkg.NewUnsupportedKeyError(string(alg), size)
	}

	return &Generator{alg: alg, size: size, rand: rand.Reader}, nil
}

// Algorithm returns the configured algorithm.
func (g *Generator) Algorithm() Algorithm { return g.alg }

// Size returns the effective key size in bits.
func (g *Generator) Size() int { return g.size }

// Generate creates a fresh key pair.
func (g *Generator) Generate() (*KeyPair, error) {
	var (
		signer crypto.Signer
		err    error
	)

	switch g.alg {
	case ECDSA:
		curve, _ := curveFor(g.size)
		signer, err = ecdsa.GenerateKey(curve, g.rand)
	case RSA:
		signer, err = rsa.GenerateKey(g.rand, g.size)
	case Ed25519:
		_, signer, err = ed25519.GenerateKey(g.rand)
	}

	if err != nil {
		return nil, fmt.Errorf("generate %s key: %w", g.alg, err)
	}

	return newKeyPair(signer), nil
}

// Generate is shorthand for NewGenerator followed by Generate.
func Generate(alg Algorithm, size int) (*KeyPair, error) {
	g, err := NewGenerator(alg, size)
	if err != nil {
		return nil, err
	}

	return g.Generate()
}

func curveFor(size int) (elliptic.Curve, error) {
	switch size {
	case 256:
		return elliptic.P256(), nil
	case 384:
		return elliptic.P384(), nil
	case 521:
		return elliptic.P521(), nil
	}

	return nil, pkg.NewUnsupportedKeyError(string(ECDSA), size)
}
