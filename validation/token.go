package validation

import (
	"crypto/rsa"

	"github.com/LerianStudio/lib-offline-license-go/pkg"
	"github.com/LerianStudio/lib-offline-license-go/token"
)

// ForToken opens tokenString against trusted and starts a chain over its key.
// A token that does not verify is a hard error, not a chain failure.
func ForToken[T any](tokenString string, trusted *rsa.PublicKey) (KeyChain[T], error) {
	key, err := token.Open[T](tokenString, trusted)
	if err != nil {
		return KeyChain[T]{}, err
	}

	return ForKey(key), nil
}

// ForSignedLicense is ForToken for a SignedLicense. The embedded key is ignored.
func ForSignedLicense[T any](sl *token.SignedLicense, trusted *rsa.PublicKey) (KeyChain[T], error) {
	if sl == nil {
		return KeyChain[T]{}, pkg.NewTokenError("signed license is nil", nil)
	}

	return ForToken[T](sl.LicenseData, trusted)
}
