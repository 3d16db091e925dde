package error

import (
	"errors"

	"github.com/LerianStudio/lib-offline-license-go/constant"
)

// IsStructuralError reports whether err means the artifact is not a license at all:
// an unparsable document or an unverifiable token.
func IsStructuralError(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, constant.ErrMalformedDocument) || errors.Is(err, constant.ErrInvalidToken)
}

// IsDecryptionError reports whether err came from opening a private key envelope
func IsDecryptionError(err error) bool {
	return err != nil && errors.Is(err, constant.ErrDecryptionFailure)
}

// IsKeyError checks if an error is related to a key that is invalid, unsupported or missing
func IsKeyError(err error) bool {
	if err == nil {
		return false
	}

	for _, target := range []error{constant.ErrInvalidKey, constant.ErrUnsupportedKey, constant.ErrMissingPrivateKey} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
