// Package token is the compact, JWS-based form of a license. A token carries
// a LicenseKey with an opaque payload, signed with RSA-PSS (PS256).
//
// Two verification paths exist and they are not equivalent:
//
//   - Open and SignedLicense.VerifyWith check the token against a public key
//     the caller already trusts. This proves who issued the token.
//   - OpenWithEmbeddedKey and SignedLicense.VerifySelfConsistency check the
//     token against the key shipped inside the same SignedLicense. Anyone can
//     mint a key pair and pass this check, so it only proves the artifact was
//     not corrupted. Pair it with EmbeddedKeyMatches before trusting it.
package token

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/LerianStudio/lib-offline-license-go/constant"
	"github.com/LerianStudio/lib-offline-license-go/keys"
	"github.com/LerianStudio/lib-offline-license-go/model"
	"github.com/LerianStudio/lib-offline-license-go/pkg"
	"github.com/golang-jwt/jwt/v5"
)

// SignedLicense is a token plus the PKCS#1 public key the issuer embedded.
// The embedded key is not a trust anchor.
type SignedLicense struct {
	LicenseData string `json:"licenseData"`
	PublicKey   []byte `json:"publicKey"`
}

// Sign encodes key as base64(JSON) into the "ld" claim and signs the claim set with PS256.
func Sign[T any](key *model.LicenseKey[T], params *keys.SigningParameters) (*SignedLicense, error) {
	if key == nil {
		return nil, errors.New("license key is nil")
	}

	if params == nil {
		return nil, pkg.NewInvalidKeyError("signing parameters are nil", nil)
	}

	priv, err := params.RSAPrivateKey()
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(key)
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{
		constant.ClaimName:        key.LicenseName,
		constant.ClaimLicenseData: base64.StdEncoding.EncodeToString(body),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodPS256, claims).SignedString(priv)
	if err != nil {
		return nil, pkg.NewTokenError("unable to sign token", err)
	}

	return &SignedLicense{LicenseData: signed, PublicKey: params.PublicKey()}, nil
}

// Open verifies tokenString against trusted and decodes its LicenseKey.
// Issuer, audience and lifetime claims are ignored.
func Open[T any](tokenString string, trusted *rsa.PublicKey) (*model.LicenseKey[T], error) {
	return OpenWithCodec[T](tokenString, trusted, nil)
}

// OpenWithCodec is Open with a custom payload codec. A nil codec selects JSON.
func OpenWithCodec[T any](tokenString string, trusted *rsa.PublicKey, codec model.PayloadCodec[T]) (*model.LicenseKey[T], error) {
	ld, err := licenseData(tokenString, trusted)
	if err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(ld)
	if err != nil {
		return nil, pkg.NewTokenError("license data claim is not valid base64", err)
	}

	key := model.NewLicenseKey(*new(T))
	if codec != nil {
		key.UseCodec(codec)
	}

	if err := json.Unmarshal(raw, key); err != nil {
		return nil, pkg.NewTokenError("license data claim cannot be decoded", err)
	}

	return key, nil
}

// OpenWithEmbeddedKey decodes sl using the key embedded in sl itself.
// See the package documentation for what this does and does not prove.
func OpenWithEmbeddedKey[T any](sl *SignedLicense) (*model.LicenseKey[T], error) {
	pub, err := sl.embeddedKey()
	if err != nil {
		return nil, err
	}

	return Open[T](sl.LicenseData, pub)
}

// VerifyWith reports whether the token was signed by the private half of trusted.
func (sl *SignedLicense) VerifyWith(trusted *rsa.PublicKey) bool {
	_, err := licenseData(sl.LicenseData, trusted)
	return err == nil
}

// VerifySelfConsistency reports whether the token verifies against its own
// embedded key. It does not establish who issued the token.
func (sl *SignedLicense) VerifySelfConsistency() bool {
	pub, err := sl.embeddedKey()
	if err != nil {
		return false
	}

	return sl.VerifyWith(pub)
}

// EmbeddedKeyMatches reports whether the embedded key is trusted.
func (sl *SignedLicense) EmbeddedKeyMatches(trusted *rsa.PublicKey) bool {
	pub, err := sl.embeddedKey()
	if err != nil || trusted == nil {
		return false
	}

	return pub.Equal(trusted)
}

func (sl *SignedLicense) embeddedKey() (*rsa.PublicKey, error) {
	if sl == nil {
		return nil, pkg.NewTokenError("signed license is nil", nil)
	}

	pub, err := x509.ParsePKCS1PublicKey(sl.PublicKey)
	if err != nil {
		return nil, pkg.NewInvalidKeyError("cannot decode embedded PKCS#1 public key", err)
	}

	return pub, nil
}

func licenseData(tokenString string, trusted *rsa.PublicKey) (string, error) {
	if trusted == nil {
		return "", pkg.NewInvalidKeyError("trusted public key is nil", nil)
	}

	tok, err := jwt.Parse(tokenString, func(*jwt.Token) (any, error) {
		return trusted, nil
	}, jwt.WithValidMethods([]string{constant.TokenSigningMethod}), jwt.WithoutClaimsValidation())
	if err != nil {
		return "", pkg.NewTokenError("unable to validate token with given public key", err)
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || len(claims) == 0 {
		return "", pkg.NewTokenError("token has no claims", nil)
	}

	ld, ok := claims[constant.ClaimLicenseData].(string)
	if !ok {
		return "", pkg.NewTokenError("token has no license data claim", nil)
	}

	return ld, nil
}
