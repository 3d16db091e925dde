package pkg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/LerianStudio/lib-offline-license-go/constant"
)

// MalformedDocumentError records a license document that cannot be parsed or
// carries a field value that cannot be represented.
type MalformedDocumentError struct {
	Field   string `json:"field,omitempty"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Err     error  `json:"err,omitempty"`
}

// Error implements the error interface.
func (e MalformedDocumentError) Error() string {
	if strings.TrimSpace(e.Field) != "" {
		return fmt.Sprintf("%s - malformed license document: field %s: %v", e.Code, e.Field, e.Err)
	}

	if e.Err != nil {
		return fmt.Sprintf("%s - malformed license document: %v", e.Code, e.Err)
	}

	return fmt.Sprintf("%s - %s", e.Code, e.Message)
}

// Unwrap implements the error interface introduced in Go 1.13 to unwrap the internal error.
func (e MalformedDocumentError) Unwrap() error {
	return e.Err
}

// Is reports a match against constant.ErrMalformedDocument.
func (e MalformedDocumentError) Is(target error) bool {
	return target == constant.ErrMalformedDocument
}

// DecryptionError indicates a wrong passphrase or a corrupted private key blob.
// It never tells which of the two happened.
type DecryptionError struct {
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Err     error  `json:"err,omitempty"`
}

func (e DecryptionError) Error() string {
	return fmt.Sprintf("%s - %s", e.Code, e.Message)
}

func (e DecryptionError) Unwrap() error {
	return e.Err
}

func (e DecryptionError) Is(target error) bool {
	return target == constant.ErrDecryptionFailure
}

// InvalidKeyError records a key encoding that is structurally invalid.
type InvalidKeyError struct {
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Err     error  `json:"err,omitempty"`
}

func (e InvalidKeyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s - %s: %v", e.Code, e.Message, e.Err)
	}

	return fmt.Sprintf("%s - %s", e.Code, e.Message)
}

func (e InvalidKeyError) Unwrap() error {
	return e.Err
}

func (e InvalidKeyError) Is(target error) bool {
	return target == constant.ErrInvalidKey
}

// UnsupportedKeyError records an algorithm or key size this library does not handle.
type UnsupportedKeyError struct {
	Algorithm string `json:"algorithm,omitempty"`
	Size      int    `json:"size,omitempty"`
	Title     string `json:"title,omitempty"`
	Message   string `json:"message,omitempty"`
	Code      string `json:"code,omitempty"`
}

func (e UnsupportedKeyError) Error() string {
	return fmt.Sprintf("%s - %s", e.Code, e.Message)
}

func (e UnsupportedKeyError) Is(target error) bool {
	return target == constant.ErrUnsupportedKey
}

// TokenError records a license token that cannot be decoded or verified with the given key.
type TokenError struct {
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Err     error  `json:"err,omitempty"`
}

func (e TokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s - %s: %v", e.Code, e.Message, e.Err)
	}

	return fmt.Sprintf("%s - %s", e.Code, e.Message)
}

func (e TokenError) Unwrap() error {
	return e.Err
}

func (e TokenError) Is(target error) bool {
	return target == constant.ErrInvalidToken
}

// EntityNotFoundError records an error indicating an entity was not found in any case that caused it.
// It is used for license and key files that do not exist.
type EntityNotFoundError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

// Error implements the error interface.
func (e EntityNotFoundError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		if strings.TrimSpace(e.EntityType) != "" {
			return fmt.Sprintf("Entity %s not found", e.EntityType)
		}

		if e.Err != nil {
			return e.Err.Error()
		}

		return "entity not found"
	}

	return e.Message
}

// Unwrap implements the error interface introduced in Go 1.13 to unwrap the internal error.
func (e EntityNotFoundError) Unwrap() error {
	return e.Err
}

// ValidationError records a request or configuration that failed validation.
type ValidationError struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string
	Message    string
	Code       string
	Err        error `json:"err,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if strings.TrimSpace(e.Code) != "" {
		return fmt.Sprintf("%s - %s", e.Code, e.Message)
	}

	return e.Message
}

// Unwrap implements the error interface introduced in Go 1.13 to unwrap the internal error.
func (e ValidationError) Unwrap() error {
	return e.Err
}

// ForbiddenError indicates an operation that the active license does not entitle.
type ForbiddenError struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string `json:"title,omitempty"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"`
	Err        error  `json:"err,omitempty"`
}

func (e ForbiddenError) Error() string {
	return e.Message
}

// UnprocessableOperationError indicates an operation that couldn't be performant because it's invalid.
type UnprocessableOperationError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

func (e UnprocessableOperationError) Error() string {
	return e.Message
}

// InternalServerError indicates an unexpected failure during an operation.
type InternalServerError struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string `json:"title,omitempty"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"`
	Err        error  `json:"err,omitempty"`
}

func (e InternalServerError) Error() string {
	return e.Message
}

// ValidationKnownFieldsError records an error that occurred during a validation of known fields.
type ValidationKnownFieldsError struct {
	EntityType string           `json:"entityType,omitempty"`
	Title      string           `json:"title,omitempty"`
	Code       string           `json:"code,omitempty"`
	Message    string           `json:"message,omitempty"`
	Fields     FieldValidations `json:"fields,omitempty"`
}

// Error returns the error message for a ValidationKnownFieldsError.
func (r ValidationKnownFieldsError) Error() string {
	return r.Message
}

// FieldValidations is a map of known fields and their validation errors.
type FieldValidations map[string]string

// Methods to create errors for different scenarios:

// NewMalformedDocumentError wraps a parse failure of the named document field.
// An empty field means the XML container itself could not be parsed.
func NewMalformedDocumentError(field string, err error) error {
	return MalformedDocumentError{
		Field:   field,
		Code:    constant.ErrMalformedDocument.Error(),
		Title:   "Malformed license document",
		Message: "The license document could not be parsed.",
		Err:     err,
	}
}

// NewDecryptionError reports a private key envelope that could not be opened.
func NewDecryptionError(err error) error {
	return DecryptionError{
		Code:    constant.ErrDecryptionFailure.Error(),
		Title:   "Private key decryption failed",
		Message: "wrong passphrase or corrupted private key",
		Err:     err,
	}
}

// NewInvalidKeyError reports a structurally invalid key encoding.
func NewInvalidKeyError(message string, err error) error {
	return InvalidKeyError{
		Code:    constant.ErrInvalidKey.Error(),
		Title:   "Invalid key",
		Message: message,
		Err:     err,
	}
}

// NewUnsupportedKeyError reports an unsupported algorithm and size combination.
func NewUnsupportedKeyError(algorithm string, size int) error {
	msg := fmt.Sprintf("unsupported key algorithm %q", algorithm)
	if size > 0 {
		msg = fmt.Sprintf("unsupported key size %d for algorithm %q", size, algorithm)
	}

	return UnsupportedKeyError{
		Algorithm: algorithm,
		Size:      size,
		Code:      constant.ErrUnsupportedKey.Error(),
		Title:     "Unsupported key",
		Message:   msg,
	}
}

// NewTokenError reports a license token that could not be opened.
func NewTokenError(message string, err error) error {
	return TokenError{
		Code:    constant.ErrInvalidToken.Error(),
		Title:   "Invalid license token",
		Message: message,
		Err:     err,
	}
}

// ValidateInternalError validates the error and returns an appropriate InternalServerError.
//
// Parameters:
// - err: The error to be validated.
// - entityType: The type of the entity associated with the error.
//
// Returns:
// - An InternalServerError with the appropriate code, title, message.
func ValidateInternalError(err error, entityType string) error {
	return InternalServerError{
		EntityType: entityType,
		Code:       constant.ErrInternalServer.Error(),
		Title:      "Internal Server Error",
		Message:    "The server encountered an unexpected error. Please try again later or contact support.",
		Err:        err,
	}
}

// ValidateBusinessError validates the error and returns the appropriate business error code, title, and message.
// error: The appropriate business error with code, title, and message.
func ValidateBusinessError(err error, entityType string, args ...any) error {
	errorMap := map[error]error{
		constant.ErrLicenseInvalid: ForbiddenError{
			EntityType: entityType,
			Code:       constant.ErrLicenseInvalid.Error(),
			Title:      "License is invalid",
			Message:    fmt.Sprintf("The license failed validation: %s. Please renew your license or contact support for assistance.", args...),
		},
		constant.ErrFeatureNotLicensed: ForbiddenError{
			EntityType: entityType,
			Code:       constant.ErrFeatureNotLicensed.Error(),
			Title:      "Feature is not licensed",
			Message:    fmt.Sprintf("The feature '%s' is not included in the active license.", args...),
		},
		constant.ErrMissingPrivateKey: ValidationError{
			EntityType: entityType,
			Code:       constant.ErrMissingPrivateKey.Error(),
			Title:      "Private key is missing",
			Message:    "The signing parameters hold only a public key. A private key is required to sign.",
			Err:        constant.ErrMissingPrivateKey,
		},
		constant.ErrInvalidKey: ValidationError{
			EntityType: entityType,
			Code:       constant.ErrInvalidKey.Error(),
			Title:      "Invalid public key",
			Message:    fmt.Sprintf("The provided %s could not be decoded as a public key.", args...),
			Err:        constant.ErrInvalidKey,
		},
	}

	if mappedError, found := errorMap[err]; found {
		return mappedError
	}

	return err
}

// CodeOf returns the LCS code carried by err, or an empty string.
func CodeOf(err error) string {
	var (
		md  MalformedDocumentError
		de  DecryptionError
		ike InvalidKeyError
		uke UnsupportedKeyError
		te  TokenError
	)

	switch {
	case errors.As(err, &md):
		return md.Code
	case errors.As(err, &de):
		return de.Code
	case errors.As(err, &ike):
		return ike.Code
	case errors.As(err, &uke):
		return uke.Code
	case errors.As(err, &te):
		return te.Code
	}

	return ""
}
