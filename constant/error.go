package constant

import "errors"

// Structured error codes for license document, key and token failures
var (
	ErrMalformedDocument  = errors.New("LCS-0001")
	ErrDecryptionFailure  = errors.New("LCS-0002")
	ErrInvalidKey         = errors.New("LCS-0003")
	ErrUnsupportedKey     = errors.New("LCS-0004")
	ErrInvalidToken       = errors.New("LCS-0005")
	ErrMissingPrivateKey  = errors.New("LCS-0006")
	ErrLicenseInvalid     = errors.New("LCS-0007")
	ErrFeatureNotLicensed = errors.New("LCS-0008")
	ErrInternalServer     = errors.New("LCS-0009")
)
